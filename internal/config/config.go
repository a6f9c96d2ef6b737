// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Scoring provider: "openai" (any OpenAI-compatible endpoint) or "anthropic".
	ScoringProvider  string  `env:"SCORING_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string  `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ScoringModel     string  `env:"SCORING_MODEL" envDefault:"gpt-4"`
	ScoringMaxTokens int     `env:"SCORING_MAX_TOKENS" envDefault:"2048"`
	ScoringTemp      float64 `env:"SCORING_TEMPERATURE" envDefault:"0.3"`
	AnthropicAPIKey  string  `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string  `env:"ANTHROPIC_BASE_URL"`
	AnthropicModel   string  `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`

	TranscriptionModel    string `env:"TRANSCRIPTION_MODEL" envDefault:"whisper-1"`
	TranscriptionLanguage string `env:"TRANSCRIPTION_LANGUAGE" envDefault:"en"`
	MaxAudioMB            int64  `env:"MAX_AUDIO_MB" envDefault:"25"`

	AIRequestTimeout time.Duration `env:"AI_REQUEST_TIMEOUT" envDefault:"60s"`
	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"30s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"1s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"10s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`
	// Circuit breaker in front of each remote provider.
	CircuitFailureThreshold int           `env:"CIRCUIT_FAILURE_THRESHOLD" envDefault:"3"`
	CircuitRecoveryTimeout  time.Duration `env:"CIRCUIT_RECOVERY_TIMEOUT" envDefault:"30s"`
	// Optional shared token bucket for outbound LLM calls. Empty RedisURL disables it.
	RedisURL          string `env:"REDIS_URL"`
	AIRateLimitPerMin int    `env:"AI_RATE_LIMIT_PER_MIN" envDefault:"60"`

	// Artificial latency of the offline simulators.
	MockScoringDelayMin       time.Duration `env:"MOCK_SCORING_DELAY_MIN" envDefault:"800ms"`
	MockScoringDelayMax       time.Duration `env:"MOCK_SCORING_DELAY_MAX" envDefault:"2s"`
	MockTranscriptionDelayMin time.Duration `env:"MOCK_TRANSCRIPTION_DELAY_MIN" envDefault:"500ms"`
	MockTranscriptionDelayMax time.Duration `env:"MOCK_TRANSCRIPTION_DELAY_MAX" envDefault:"1500ms"`
	// RandomSeed makes the simulators reproducible when non-zero.
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"`

	// Scoring pipeline switches.
	BlindScoring       bool `env:"BLIND_SCORING" envDefault:"true"`
	MultiPassScoring   bool `env:"MULTI_PASS_SCORING" envDefault:"false"`
	NormalizeScores    bool `env:"NORMALIZE_SCORES" envDefault:"false"`
	ScoringConcurrency int  `env:"SCORING_CONCURRENCY" envDefault:"1"`

	// Bias heuristics thresholds.
	BiasHaloRange         float64 `env:"BIAS_HALO_RANGE" envDefault:"0.5"`
	BiasHaloMinDimensions int     `env:"BIAS_HALO_MIN_DIMENSIONS" envDefault:"4"`
	BiasAnchorMinAnswers  int     `env:"BIAS_ANCHOR_MIN_ANSWERS" envDefault:"3"`
	BiasAnchorMaxDiff     float64 `env:"BIAS_ANCHOR_MAX_DIFF" envDefault:"0.3"`
	BiasHarshBelow        float64 `env:"BIAS_HARSH_BELOW" envDefault:"2.0"`
	BiasLenientAtOrAbove  float64 `env:"BIAS_LENIENT_AT_OR_ABOVE" envDefault:"4.5"`

	// Rolling comparison of remote dimension scores against the offline distribution.
	ScoreDriftWindow    int     `env:"SCORE_DRIFT_WINDOW" envDefault:"10"`
	ScoreDriftThreshold float64 `env:"SCORE_DRIFT_THRESHOLD" envDefault:"0.75"`

	LogLevel        string `env:"LOG_LEVEL" envDefault:""`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-interview-simulator"`
	// OTELSamplingRatio overrides the env default (1.0, or 0.1 in prod) when in (0,1].
	OTELSamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0"`

	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	// Completing an interview scores every answer, so it gets a longer budget.
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	CompleteTimeout time.Duration `env:"COMPLETE_TIMEOUT" envDefault:"4m"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.ScoringProvider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("SCORING_PROVIDER must be openai or anthropic, got %q", c.ScoringProvider)
	}
	if c.MockScoringDelayMax < c.MockScoringDelayMin {
		return fmt.Errorf("MOCK_SCORING_DELAY_MAX below MOCK_SCORING_DELAY_MIN")
	}
	if c.MockTranscriptionDelayMax < c.MockTranscriptionDelayMin {
		return fmt.Errorf("MOCK_TRANSCRIPTION_DELAY_MAX below MOCK_TRANSCRIPTION_DELAY_MIN")
	}
	return nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// UseAnthropic reports whether scoring goes through the Anthropic Messages API.
func (c Config) UseAnthropic() bool { return strings.ToLower(c.ScoringProvider) == "anthropic" }

// ScoringAPIKey returns the configured key of the selected scoring provider.
func (c Config) ScoringAPIKey() string {
	if c.UseAnthropic() {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// GetAIBackoffConfig returns backoff configuration appropriate for the current environment.
// In test environments, uses much shorter timeouts for faster test execution.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 50 * time.Millisecond, 500 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
