// Package prompt orchestrates template rendering, history bookkeeping, and
// adapter invocation for one configured conversational role, such as
// "translate zh to en". A Service renders the caller's text through an
// optional user template, delegates the turn to the client, and leaves the
// history in a consistent state on every outcome.
package prompt

import (
	"context"
	"fmt"

	"github.com/zhwei/convo/core/client"
	"github.com/zhwei/convo/core/template"
	"github.com/zhwei/convo/providers/ai"
	"github.com/zhwei/convo/providers/memory"
	"github.com/zhwei/convo/providers/observability"
)

// UserInputVar is the reserved template variable that receives the caller's
// text when a user template is configured.
const UserInputVar = "user_input"

// Config describes one conversational role. Template paths are optional;
// when set, loading happens once at construction and a missing or unreadable
// file is a hard construction failure.
type Config struct {
	Provider    ai.Provider
	Model       string
	Temperature float64
	MaxTokens   int

	// History overrides the default in-memory store.
	History memory.Store

	// SystemTemplatePath, rendered with SystemVars, becomes the system
	// prompt.
	SystemTemplatePath string
	SystemVars         map[string]string

	// UserTemplatePath, rendered with UserVars plus the reserved
	// user_input variable, wraps every outgoing user message.
	UserTemplatePath string
	UserVars         map[string]string
}

// Service is an immutable, ready-to-use conversational role. Construct with
// New; a Service must not be copied.
type Service struct {
	client       *client.Client
	userTemplate string
	userVars     map[string]string
}

// New constructs a Service from the config. Template errors
// (template.ErrTemplateNotFound, template.ErrTemplateRead) surface to the
// caller: construction cannot proceed without a declared template.
func New(cfg Config) (*Service, error) {
	clientOpts := []client.Option{
		client.WithDefaultModel(cfg.Model),
		client.WithTemperature(cfg.Temperature),
		client.WithMaxTokens(cfg.MaxTokens),
	}
	if cfg.History != nil {
		clientOpts = append(clientOpts, client.WithHistory(cfg.History))
	}

	if cfg.SystemTemplatePath != "" {
		systemTemplate, err := template.Load(cfg.SystemTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("prompt: loading system template: %w", err)
		}
		clientOpts = append(clientOpts, client.WithSystemPrompt(template.Render(systemTemplate, cfg.SystemVars)))
	}

	c, err := client.New(cfg.Provider, clientOpts...)
	if err != nil {
		return nil, err
	}

	service := &Service{client: c, userVars: cfg.UserVars}

	if cfg.UserTemplatePath != "" {
		userTemplate, err := template.Load(cfg.UserTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("prompt: loading user template: %w", err)
		}
		service.userTemplate = userTemplate
	}

	return service, nil
}

// Client exposes the underlying conversational client, e.g. for history
// inspection or embeddings.
func (s *Service) Client() *client.Client { return s.client }

// SystemPrompt returns the rendered system prompt, or ok=false when the
// service has none.
func (s *Service) SystemPrompt(ctx context.Context) (string, bool, error) {
	return s.client.SystemPrompt(ctx)
}

// History returns a defensive copy of the conversation so far.
func (s *Service) History(ctx context.Context) ([]ai.Message, error) {
	return s.client.History(ctx)
}

// Send runs one synchronous turn with the rendered user text.
func (s *Service) Send(ctx context.Context, text string) (*ai.ChatResponse, error) {
	s.logState(ctx, "rendering")
	rendered := s.renderUserInput(text)

	s.logState(ctx, "awaiting_response")
	response, err := s.client.Chat(ctx, rendered)
	if err != nil {
		s.logState(ctx, "failed")
		return nil, err
	}

	s.logState(ctx, "completed")
	return response, nil
}

// Stream runs one streaming turn with the rendered user text. onChunk, when
// non-nil, receives every normalized chunk in arrival order. The commit
// semantics are those of client.StreamChat: the user message stays on any
// outcome, the assistant message is committed only for a completed stream
// that produced content.
func (s *Service) Stream(ctx context.Context, text string, onChunk func(ai.StreamChunk) error) (*ai.ChatResponse, error) {
	s.logState(ctx, "rendering")
	rendered := s.renderUserInput(text)

	s.logState(ctx, "awaiting_response")
	streaming := false
	wrapped := func(chunk ai.StreamChunk) error {
		if !streaming {
			streaming = true
			s.logState(ctx, "streaming")
		}
		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	}

	response, err := s.client.StreamChat(ctx, rendered, wrapped)
	if err != nil {
		s.logState(ctx, "failed")
		return response, err
	}

	s.logState(ctx, "completed")
	return response, nil
}

// renderUserInput merges the caller's text into the user template under the
// reserved user_input variable, or returns it verbatim when no user template
// is configured.
func (s *Service) renderUserInput(text string) string {
	if s.userTemplate == "" {
		return text
	}

	vars := make(map[string]string, len(s.userVars)+1)
	for key, value := range s.userVars {
		vars[key] = value
	}
	vars[UserInputVar] = text

	return template.Render(s.userTemplate, vars)
}

func (s *Service) logState(ctx context.Context, state string) {
	if logger := observability.FromContext(ctx); logger != nil {
		logger.Trace(ctx, "turn state", observability.String("state", state))
	}
}
