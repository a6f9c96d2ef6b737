package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/ai-interview-simulator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/ai/anthropic"
	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/analysis"
	"github.com/fairyhunter13/ai-interview-simulator/internal/bias"
	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/internal/questionbank"
	"github.com/fairyhunter13/ai-interview-simulator/internal/scoring"
	"github.com/fairyhunter13/ai-interview-simulator/internal/service/ratelimiter"
	"github.com/fairyhunter13/ai-interview-simulator/internal/transcription"
	"github.com/fairyhunter13/ai-interview-simulator/internal/usecase"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/randx"
)

// Components are the long-lived collaborators shared by the server and the CLI.
type Components struct {
	RNG         randx.Source
	Bank        *questionbank.Bank
	Engine      *scoring.Engine
	Transcriber *transcription.Service
	Analyzer    *analysis.Analyzer
	Breakers    *ai.CircuitBreakerManager
	// Limiter is nil unless REDIS_URL is set.
	Limiter *ratelimiter.RedisLuaLimiter

	redis *redis.Client
}

// Close releases the Redis connection, if any.
func (c *Components) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

// ReadinessCheck probes the shared limiter, or returns nil without one.
func (c *Components) ReadinessCheck() func(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return BuildReadinessCheck(c.Limiter)
}

// NewInterview builds the interview context with the configured pipeline switches.
func (c *Components) NewInterview(cfg config.Config) *usecase.Interview {
	return usecase.NewInterview(c.Bank, c.Engine, c.Analyzer, usecase.InterviewOptions{
		BlindScoring: cfg.BlindScoring,
		MultiPass:    cfg.MultiPassScoring,
		Concurrency:  cfg.ScoringConcurrency,
		Normalize:    cfg.NormalizeScores,
		Thresholds:   bias.ThresholdsFromConfig(cfg),
	})
}

// BuildComponents wires providers, fallbacks, breakers and the optional
// Redis token bucket from cfg.
func BuildComponents(cfg config.Config) (*Components, error) {
	var rng randx.Source
	if cfg.RandomSeed != 0 {
		rng = randx.New(cfg.RandomSeed)
	} else {
		rng = randx.NewTimeSeeded()
	}

	bank, err := questionbank.NewDefault(rng)
	if err != nil {
		return nil, fmt.Errorf("op=app.BuildComponents: %w", err)
	}

	c := &Components{
		RNG:      rng,
		Bank:     bank,
		Analyzer: analysis.NewAnalyzer(rng),
		Breakers: ai.NewCircuitBreakerManager(cfg.CircuitFailureThreshold, cfg.CircuitRecoveryTimeout),
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("op=app.BuildComponents: redis url: %w", err)
		}
		c.redis = redis.NewClient(opts)
	}

	oa := openai.New(cfg)
	var chat domain.ChatClient = oa
	if cfg.UseAnthropic() {
		chat = anthropic.New(cfg)
	}
	c.Limiter = ratelimiter.NewRedisLuaLimiter(c.redis, map[string]ratelimiter.BucketConfig{
		ai.RateLimitKey(chat.Provider()): ratelimiter.NewBucketConfigFromPerMinute(cfg.AIRateLimitPerMin),
	})
	if c.Limiter != nil {
		chat = ai.NewRateLimitedChat(chat, c.Limiter)
	}

	drift := observability.NewScoreDriftManager(scoring.ExpectedScores(), cfg.ScoreDriftWindow, cfg.ScoreDriftThreshold)
	remote := scoring.NewLLMScorer(chat, cfg.ScoringAPIKey(), cfg.ScoringMaxTokens)
	c.Engine = scoring.NewEngine(remote,
		scoring.NewMockScorer(rng, cfg.MockScoringDelayMin, cfg.MockScoringDelayMax),
		scoring.WithBreaker(c.Breakers.GetBreaker(chat.Provider())),
		scoring.WithDriftMonitor(drift.Monitor(chat.Provider())),
	)

	c.Transcriber = transcription.New(rng,
		transcription.WithRemote(oa, openai.ProviderName, cfg.OpenAIAPIKey),
		transcription.WithBreaker(c.Breakers.GetBreaker("transcribe:"+openai.ProviderName)),
		transcription.WithMockDelay(cfg.MockTranscriptionDelayMin, cfg.MockTranscriptionDelayMax),
	)

	slog.Info("components built",
		slog.String("scoring_provider", chat.Provider()),
		slog.Bool("scoring_key", cfg.ScoringAPIKey() != ""),
		slog.Bool("transcription_key", cfg.OpenAIAPIKey != ""),
		slog.Bool("redis_limiter", c.Limiter != nil),
		slog.Bool("seeded", cfg.RandomSeed != 0))
	return c, nil
}
