package interfaces

import (
	"context"
	"errors"
)

// ErrNoCredential indicates no API key could be resolved for the
// configured LLM provider. This is fatal at startup, not per-unit.
var ErrNoCredential = errors.New("no API credential configured for LLM provider")

// GenerateOptions tunes a single content generation call.
type GenerateOptions struct {
	// EnableSearch asks the provider to ground the response in live
	// web search results, where the backend supports it.
	EnableSearch bool
	// Temperature overrides the configured sampling temperature when
	// non-nil.
	Temperature *float32
}

// ContentProvider produces research text from a prompt. Implementations
// are expected to be safe for concurrent use.
type ContentProvider interface {
	// Generate performs one model call and returns the raw markup
	// text. A returned error affects only the unit being generated;
	// callers must not abort the run because of it.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ProviderName identifies the active backend ("gemini", "claude").
	ProviderName() string
}
