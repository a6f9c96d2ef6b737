package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-simulator/internal/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/service/ratelimiter"
)

// RateLimitKey is the bucket name used for a provider.
func RateLimitKey(provider string) string { return "ai:" + provider }

// RateLimitedChat takes one token from the shared bucket before each call.
// A denied call fails fast as a rate-limited ProviderError.
type RateLimitedChat struct {
	next    domain.ChatClient
	limiter ratelimiter.Limiter
}

// NewRateLimitedChat wraps next; a nil limiter returns next unchanged.
func NewRateLimitedChat(next domain.ChatClient, limiter ratelimiter.Limiter) domain.ChatClient {
	if limiter == nil || next == nil {
		return next
	}
	if l, ok := limiter.(*ratelimiter.RedisLuaLimiter); ok && l == nil {
		return next
	}
	return &RateLimitedChat{next: next, limiter: limiter}
}

// Provider implements domain.ChatClient.
func (c *RateLimitedChat) Provider() string { return c.next.Provider() }

// ChatJSON implements domain.ChatClient.
func (c *RateLimitedChat) ChatJSON(ctx context.Context, apiKey, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	allowed, retryAfter, err := c.limiter.Allow(ctx, RateLimitKey(c.Provider()), 1)
	switch {
	case err != nil:
		observability.RecordRateLimitDecision(c.Provider(), "error")
		obsctx.LoggerFromContext(ctx).Warn("rate limiter unavailable, allowing call",
			slog.String("provider", c.Provider()), slog.Any("error", err))
	case allowed:
		observability.RecordRateLimitDecision(c.Provider(), "allowed")
	default:
		observability.RecordRateLimitDecision(c.Provider(), "denied")
	}
	if !allowed {
		return "", domain.NewProviderError(c.Provider(), domain.FailureRateLimited,
			fmt.Errorf("local token bucket exhausted, retry after %s", retryAfter.Round(time.Millisecond)))
	}
	return c.next.ChatJSON(ctx, apiKey, systemPrompt, userPrompt, maxTokens)
}
