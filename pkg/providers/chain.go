package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/selfai-agent/selfai/pkg/utils"
)

// ErrAllBackendsFailed is returned when every backend in the chain was
// tried and none produced a usable response.
var ErrAllBackendsFailed = errors.New("all LLM backends failed")

// Chain tries backends in priority order until one answers. There is no
// health cache or circuit breaker; every call starts from the top of the
// list, matching the simple ordered-retry failover policy.
type Chain struct {
	backends []Backend
	logger   *utils.Logger
}

// NewChain creates a failover chain over the given backends, in order.
func NewChain(backends []Backend, logger *utils.Logger) *Chain {
	return &Chain{backends: backends, logger: logger}
}

// Backends returns the chain members in priority order.
func (c *Chain) Backends() []Backend {
	return c.backends
}

// Generate asks each backend in turn. The first success wins; on total
// exhaustion it returns ErrAllBackendsFailed wrapping the last error.
func (c *Chain) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if len(c.backends) == 0 {
		return "", ErrAllBackendsFailed
	}
	var lastErr error
	for _, b := range c.backends {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		out, err := b.Generate(ctx, systemPrompt, userPrompt, maxTokens)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if c.logger != nil {
			c.logger.Logf("Backend %s failed, trying next: %v", b.Name(), err)
		}
	}
	return "", fmt.Errorf("%w: %w", ErrAllBackendsFailed, lastErr)
}
