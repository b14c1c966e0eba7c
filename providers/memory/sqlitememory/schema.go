package sqlitememory

// createTableSQL creates the messages table. The seq column provides
// monotonic ordering within a session; seq 0 is reserved for the system
// message so the system-slot invariant holds without row shuffling.
const createTableSQL = `CREATE TABLE IF NOT EXISTS convo_messages (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// createSessionSeqIndexSQL is the primary lookup index: all messages for a
// session ordered by insertion sequence. The unique constraint backs the
// system-slot upsert.
const createSessionSeqIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_convo_messages_session_seq
    ON convo_messages (session_id, seq)`
