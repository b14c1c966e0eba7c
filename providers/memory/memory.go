// Package memory defines the conversation history contract: an ordered,
// append-only log of chat turns with a stable system-message invariant.
package memory

import (
	"context"

	"github.com/zhwei/convo/providers/ai"
)

// Store holds the messages of a single conversation. Implementations must
// preserve insertion order and guarantee that at most one message carries
// ai.RoleSystem, always at index 0.
//
// A store is owned by one client instance; implementations guard their own
// state so the append-order invariant survives accidental concurrent use,
// but callers must still serialize turns (one in-flight request per store).
type Store interface {
	// Append adds a message at the end of the history. Appending a
	// system-role message routes through the system-slot invariant
	// instead of growing the log.
	Append(ctx context.Context, message ai.Message) error

	// Messages returns a defensive copy of the history in insertion
	// order; mutating the returned slice never affects the store.
	Messages(ctx context.Context) ([]ai.Message, error)

	// Count returns the number of stored messages.
	Count(ctx context.Context) (int, error)

	// SetSystemPrompt inserts the system message at index 0 when absent
	// and replaces its content when present. It never duplicates the
	// system slot.
	SetSystemPrompt(ctx context.Context, content string) error

	// SystemPrompt returns the current system prompt, or ok=false when
	// none is set.
	SystemPrompt(ctx context.Context) (content string, ok bool, err error)

	// Clear empties the history. With keepSystemPrompt it truncates to
	// just the system message instead, when one is set.
	Clear(ctx context.Context, keepSystemPrompt bool) error
}
