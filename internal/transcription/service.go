// Package transcription turns recorded answers into text, through a remote
// speech-to-text provider when a key is available and from a canned corpus
// otherwise.
package transcription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-simulator/internal/observability"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/randx"
)

// Service implements the fallback policy around a domain.SpeechToText.
type Service struct {
	remote   domain.SpeechToText
	provider string
	apiKey   string
	breaker  *ai.CircuitBreaker
	rng      randx.Source
	delayMin time.Duration
	delayMax time.Duration
}

// Option customises a Service.
type Option func(*Service)

// WithRemote sets the remote provider and its configured key.
func WithRemote(stt domain.SpeechToText, provider, apiKey string) Option {
	return func(s *Service) {
		s.remote = stt
		s.provider = provider
		s.apiKey = apiKey
	}
}

// WithBreaker guards the remote provider with a circuit breaker.
func WithBreaker(cb *ai.CircuitBreaker) Option {
	return func(s *Service) { s.breaker = cb }
}

// WithMockDelay sets the artificial latency of offline transcription.
func WithMockDelay(min, max time.Duration) Option {
	return func(s *Service) {
		s.delayMin = min
		s.delayMax = max
	}
}

// New builds a Service. Without WithRemote it is offline only.
func New(rng randx.Source, opts ...Option) *Service {
	if rng == nil {
		rng = randx.NewTimeSeeded()
	}
	s := &Service{rng: rng, provider: "none"}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Transcribe returns a transcript for audio. apiKey overrides the configured
// key. Remote failures fall back to the mock corpus; the only error returned
// is the context's.
func (s *Service) Transcribe(ctx context.Context, audio []byte, apiKey string) (string, error) {
	key := apiKey
	if key == "" {
		key = s.apiKey
	}
	if s.remote != nil && key != "" {
		text, err := s.tryRemote(ctx, key, audio)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		kind := domain.FailureKindOf(err)
		obsctx.LoggerFromContext(ctx).Warn("remote transcription failed, using simulator",
			slog.String("provider", s.provider),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
		observability.RecordFallback("transcribe", s.provider, string(kind))
	}
	return s.Mock(ctx)
}

func (s *Service) tryRemote(ctx context.Context, key string, audio []byte) (string, error) {
	if s.breaker != nil && !s.breaker.ShouldAttempt() {
		return "", domain.NewProviderError(s.provider, domain.FailureCircuitOpen, errors.New("circuit open"))
	}
	text, err := s.remote.Transcribe(ctx, key, audio)
	if err == nil && text == "" {
		err = domain.NewProviderError(s.provider, domain.FailureMalformed, errors.New("empty transcript"))
	}
	if s.breaker != nil {
		switch {
		case err == nil:
			s.breaker.RecordSuccess()
		case ctx.Err() == nil:
			s.breaker.RecordFailure()
		}
	}
	return text, err
}

// Mock waits the artificial delay and returns one transcript of the corpus.
func (s *Service) Mock(ctx context.Context) (string, error) {
	if d := randx.Duration(s.rng, s.delayMin, s.delayMax); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return mockTranscripts[s.rng.IntN(len(mockTranscripts))], nil
}
