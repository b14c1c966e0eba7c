// Package auto selects a backend adapter from the credentials present in the
// environment. Selection is a pure function of the environment at startup:
// it runs once at construction time and is never re-evaluated mid-session.
//
// Precedence, checked in order:
//  1. ANTHROPIC_API_KEY — native-SDK adapter (providers/ai/anthropic)
//  2. OPENAI_API_KEY    — REST/SSE adapter (providers/ai/openai), honoring
//     OPENAI_BASE_URL for OpenAI-compatible backends
//
// When neither credential is present FromEnv returns
// ai.ErrNoCredentialConfigured.
package auto

import (
	"fmt"
	"os"

	"github.com/zhwei/convo/providers/ai"
	"github.com/zhwei/convo/providers/ai/anthropic"
	"github.com/zhwei/convo/providers/ai/openai"
)

// FromEnv constructs the adapter selected by the documented credential
// precedence.
func FromEnv() (ai.Provider, error) {
	switch {
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		return anthropic.New(), nil
	case os.Getenv("OPENAI_API_KEY") != "":
		return openai.New(), nil
	default:
		return nil, ai.ErrNoCredentialConfigured
	}
}

// New constructs the adapter for an explicitly named backend, bypassing the
// environment precedence. The adapter still reads its credential and base
// URL from the environment.
func New(name string) (ai.Provider, error) {
	switch name {
	case "anthropic":
		return anthropic.New(), nil
	case "openai":
		return openai.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnsupportedProvider, name)
	}
}
