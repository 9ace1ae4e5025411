package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/selfai-agent/selfai/pkg/config"
)

// OllamaBackend runs prompts against a local Ollama server.
type OllamaBackend struct {
	name    string
	model   string
	timeout time.Duration
}

// NewOllamaBackend creates a client for a local Ollama instance. The server
// location follows the OLLAMA_HOST convention.
func NewOllamaBackend(cfg config.BackendConfig) *OllamaBackend {
	timeout := 180 * time.Second
	if cfg.TimeoutS > 0 {
		timeout = time.Duration(cfg.TimeoutS) * time.Second
	}
	return &OllamaBackend{
		name:    cfg.Name,
		model:   cfg.Model,
		timeout: timeout,
	}
}

func (b *OllamaBackend) Name() string { return b.name }

// Generate sends a chat request to local Ollama and collects the full
// response.
func (b *OllamaBackend) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return "", fmt.Errorf("backend %s: could not create ollama client: %w", b.name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	messages := []ollama.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    b.model,
		Messages: messages,
		Stream:   &stream,
	}
	if maxTokens > 0 {
		req.Options = map[string]interface{}{"num_predict": maxTokens}
	}

	var sb strings.Builder
	err = client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("backend %s: chat request failed: %w", b.name, err)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("backend %s: empty response", b.name)
	}
	return sb.String(), nil
}
