// Package providers contains the LLM backend clients. Every backend is used
// through the same minimal contract: hand it a system prompt and a user
// prompt, get text back or an error. Failover across backends lives in
// Chain, not in the individual clients.
package providers

import (
	"context"
	"fmt"

	"github.com/selfai-agent/selfai/pkg/config"
)

// Backend is the uniform contract the pipeline uses for every LLM provider.
type Backend interface {
	// Name returns the configured backend name.
	Name() string

	// Generate sends the prompts and returns the model's text output.
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// New creates a backend client from its configuration.
func New(cfg config.BackendConfig) (Backend, error) {
	switch cfg.Kind {
	case "openai":
		return NewOpenAIBackend(cfg), nil
	case "ollama":
		return NewOllamaBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unknown backend kind: %s", cfg.Kind)
	}
}

// NewAll creates clients for every configured backend, preserving the
// configured priority order. Backends that fail to construct are skipped;
// construction fails only when no backend at all could be built.
func NewAll(cfgs []config.BackendConfig) ([]Backend, error) {
	var backends []Backend
	var lastErr error
	for _, c := range cfgs {
		b, err := New(c)
		if err != nil {
			lastErr = err
			continue
		}
		backends = append(backends, b)
	}
	if len(backends) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("no usable LLM backends: %w", lastErr)
		}
		return nil, fmt.Errorf("no LLM backends configured")
	}
	return backends, nil
}
