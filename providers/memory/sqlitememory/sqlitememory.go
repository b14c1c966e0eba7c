// Package sqlitememory implements memory.Store with SQLite persistence via
// the pure-Go modernc.org/sqlite driver. Each Store instance is scoped to a
// single session, so several conversations can share one database file.
package sqlitememory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/zhwei/convo/providers/ai"
	"github.com/zhwei/convo/providers/memory"
)

// systemSeq is the sequence number reserved for the system message, keeping
// it ahead of every appended message without row shuffling.
const systemSeq = 0

// Store persists one conversation's messages to SQLite. Thread safety is
// provided by database/sql's connection pooling; no application-level mutex
// is needed.
type Store struct {
	db        *sql.DB
	sessionID string
}

// Compile-time check: Store must implement memory.Store.
var _ memory.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at path and returns a
// store scoped to sessionID.
func Open(path string, sessionID string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitememory: open %s: %w", path, err)
	}
	return New(db, sessionID), nil
}

// New wraps an existing database handle with a store scoped to sessionID.
func New(db *sql.DB, sessionID string) *Store {
	return &Store{db: db, sessionID: sessionID}
}

// EnsureSchema creates the messages table and its index if they do not
// already exist. A convenience for development; deployments with migration
// tooling can manage the schema themselves.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("sqlitememory: create table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createSessionSeqIndexSQL); err != nil {
		return fmt.Errorf("sqlitememory: create index: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists a message at the next sequence number for this session.
// System-role messages route through SetSystemPrompt to preserve the
// system-slot invariant.
func (s *Store) Append(ctx context.Context, message ai.Message) error {
	if message.Role == ai.RoleSystem {
		return s.SetSystemPrompt(ctx, message.Content)
	}

	const query = `INSERT INTO convo_messages (session_id, seq, role, content)
		SELECT ?, COALESCE(MAX(seq) + 1, 1), ?, ? FROM convo_messages WHERE session_id = ?`

	if _, err := s.db.ExecContext(ctx, query, s.sessionID, string(message.Role), message.Content, s.sessionID); err != nil {
		return fmt.Errorf("sqlitememory: append: %w", err)
	}
	return nil
}

// Messages returns all messages for this session in sequence order.
func (s *Store) Messages(ctx context.Context) ([]ai.Message, error) {
	const query = `SELECT role, content FROM convo_messages WHERE session_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlitememory: messages: %w", err)
	}
	defer rows.Close()

	messages := []ai.Message{}
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("sqlitememory: scan message: %w", err)
		}
		messages = append(messages, ai.Message{Role: ai.MessageRole(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitememory: messages: %w", err)
	}
	return messages, nil
}

// Count returns the number of messages stored for this session.
func (s *Store) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM convo_messages WHERE session_id = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, s.sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlitememory: count: %w", err)
	}
	return count, nil
}

// SetSystemPrompt upserts the system message at the reserved sequence slot.
func (s *Store) SetSystemPrompt(ctx context.Context, content string) error {
	const query = `INSERT INTO convo_messages (session_id, seq, role, content)
		VALUES (?, ?, 'system', ?)
		ON CONFLICT (session_id, seq) DO UPDATE SET content = excluded.content`

	if _, err := s.db.ExecContext(ctx, query, s.sessionID, systemSeq, content); err != nil {
		return fmt.Errorf("sqlitememory: set system prompt: %w", err)
	}
	return nil
}

// SystemPrompt returns the system message content when one is set.
func (s *Store) SystemPrompt(ctx context.Context) (string, bool, error) {
	const query = `SELECT content FROM convo_messages WHERE session_id = ? AND seq = ? AND role = 'system'`

	var content string
	err := s.db.QueryRowContext(ctx, query, s.sessionID, systemSeq).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlitememory: system prompt: %w", err)
	}
	return content, true, nil
}

// Clear deletes this session's messages, optionally keeping the system slot.
func (s *Store) Clear(ctx context.Context, keepSystemPrompt bool) error {
	query := `DELETE FROM convo_messages WHERE session_id = ?`
	if keepSystemPrompt {
		query += ` AND role <> 'system'`
	}

	if _, err := s.db.ExecContext(ctx, query, s.sessionID); err != nil {
		return fmt.Errorf("sqlitememory: clear: %w", err)
	}
	return nil
}
