// Package inmemory provides the default conversation history store: a
// mutex-guarded slice holding the messages of one conversation.
package inmemory

import (
	"context"
	"sync"

	"github.com/zhwei/convo/providers/ai"
	"github.com/zhwei/convo/providers/memory"
)

// History is a concurrency-safe in-memory message store. The RWMutex is the
// one exclusive section per history instance that keeps the append-order and
// system-slot invariants intact.
type History struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns an empty history ready for use.
func New() *History {
	return &History{messages: []ai.Message{}}
}

// Compile-time check: History must implement memory.Store.
var _ memory.Store = (*History)(nil)

// Append stores the message at the end of the history. A system-role message
// routes through SetSystemPrompt so the system slot is never duplicated.
// The returned error is always nil.
func (h *History) Append(ctx context.Context, message ai.Message) error {
	if message.Role == ai.RoleSystem {
		return h.SetSystemPrompt(ctx, message.Content)
	}

	h.mu.Lock()
	h.messages = append(h.messages, message)
	h.mu.Unlock()
	return nil
}

// Messages returns a copy of all messages in insertion order.
func (h *History) Messages(_ context.Context) ([]ai.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ai.Message, len(h.messages))
	copy(out, h.messages)
	return out, nil
}

// Count returns the number of stored messages.
func (h *History) Count(_ context.Context) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages), nil
}

// SetSystemPrompt inserts the system message at index 0 when absent, or
// replaces its content in place when present.
func (h *History) SetSystemPrompt(_ context.Context, content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.messages) > 0 && h.messages[0].Role == ai.RoleSystem {
		h.messages[0].Content = content
		return nil
	}

	h.messages = append([]ai.Message{{Role: ai.RoleSystem, Content: content}}, h.messages...)
	return nil
}

// SystemPrompt returns the system message content when one is set.
func (h *History) SystemPrompt(_ context.Context) (string, bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) > 0 && h.messages[0].Role == ai.RoleSystem {
		return h.messages[0].Content, true, nil
	}
	return "", false, nil
}

// Clear empties the history, optionally keeping the system message.
func (h *History) Clear(_ context.Context, keepSystemPrompt bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if keepSystemPrompt && len(h.messages) > 0 && h.messages[0].Role == ai.RoleSystem {
		h.messages = h.messages[:1]
		return nil
	}

	h.messages = h.messages[:0]
	return nil
}
