package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/selfai-agent/selfai/pkg/config"
)

// OpenAIBackend talks to any OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	name       string
	endpoint   string
	model      string
	apiKeyEnv  string
	httpClient *http.Client
}

// NewOpenAIBackend creates a client for an OpenAI-compatible API.
func NewOpenAIBackend(cfg config.BackendConfig) *OpenAIBackend {
	timeout := 120 * time.Second
	if cfg.TimeoutS > 0 {
		timeout = time.Duration(cfg.TimeoutS) * time.Second
	}
	return &OpenAIBackend{
		name:       cfg.Name,
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKeyEnv:  cfg.APIKeyEnv,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b *OpenAIBackend) Name() string { return b.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a chat completion request and returns the first choice.
func (b *OpenAIBackend) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	apiKey := os.Getenv(b.apiKeyEnv)
	if b.apiKeyEnv != "" && apiKey == "" {
		return "", fmt.Errorf("backend %s: API key env %s not set", b.name, b.apiKeyEnv)
	}

	reqBody := chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: maxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("backend %s: failed to marshal request: %w", b.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("backend %s: failed to build request: %w", b.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := retryWithBackoff(req, b.httpClient)
	if err != nil {
		return "", fmt.Errorf("backend %s: request failed: %w", b.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("backend %s: failed to read response: %w", b.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend %s: HTTP %d: %s", b.name, resp.StatusCode, truncateBody(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("backend %s: malformed response: %w", b.name, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("backend %s: API error: %s", b.name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("backend %s: response contained no choices", b.name)
	}
	return parsed.Choices[0].Message.Content, nil
}

// retryWithBackoff executes an HTTP request with exponential backoff.
// Retries 5xx and 429 responses and transport errors; other statuses are
// returned to the caller as-is.
func retryWithBackoff(req *http.Request, client *http.Client) (*http.Response, error) {
	const maxRetries = 3
	const baseDelay = 100 * time.Millisecond

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
		}
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
