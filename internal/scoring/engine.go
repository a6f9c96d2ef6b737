package scoring

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-simulator/internal/observability"
)

// MockProvider labels scores produced by the offline simulator.
const MockProvider = "mock"

// Engine scores answers with the remote scorer when it can and with the mock
// otherwise. Remote failures are logged and counted, never returned.
type Engine struct {
	remote  *LLMScorer
	mock    *MockScorer
	breaker *ai.CircuitBreaker
	drift   *observability.ScoreDriftMonitor
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithBreaker guards the remote scorer with a circuit breaker.
func WithBreaker(cb *ai.CircuitBreaker) EngineOption {
	return func(e *Engine) { e.breaker = cb }
}

// WithDriftMonitor records remote dimension scores for drift detection.
func WithDriftMonitor(m *observability.ScoreDriftMonitor) EngineOption {
	return func(e *Engine) { e.drift = m }
}

// NewEngine builds an Engine. remote may be nil for a mock-only engine.
func NewEngine(remote *LLMScorer, mock *MockScorer, opts ...EngineOption) *Engine {
	if mock == nil {
		mock = NewMockScorer(nil, 0, 0)
	}
	e := &Engine{remote: remote, mock: mock}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Score implements domain.AnswerScorer. It only fails when ctx ends.
func (e *Engine) Score(ctx context.Context, req domain.ScoringRequest) (domain.AnswerScore, error) {
	lg := obsctx.LoggerFromContext(ctx)

	if e.remote.HasKey(req.APIKey) {
		provider := e.remote.Provider()
		res, err := e.tryRemote(ctx, req)
		if err == nil {
			e.observe(provider, res)
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.AnswerScore{}, ctxErr
		}
		kind := domain.FailureKindOf(err)
		lg.Warn("remote scoring failed, using simulator",
			slog.String("provider", provider),
			slog.String("kind", string(kind)),
			slog.String("question_id", req.Question.ID),
			slog.Any("error", err))
		observability.RecordFallback("score", provider, string(kind))
	}

	res, err := e.mock.Score(ctx, req)
	if err != nil {
		return domain.AnswerScore{}, err
	}
	e.observe(MockProvider, res)
	return res, nil
}

func (e *Engine) tryRemote(ctx context.Context, req domain.ScoringRequest) (domain.AnswerScore, error) {
	if e.breaker != nil && !e.breaker.ShouldAttempt() {
		return domain.AnswerScore{}, domain.NewProviderError(e.remote.Provider(), domain.FailureCircuitOpen, errors.New("circuit open"))
	}
	res, err := e.remote.Score(ctx, req)
	if e.breaker != nil {
		switch {
		case err == nil:
			e.breaker.RecordSuccess()
		case ctx.Err() == nil:
			e.breaker.RecordFailure()
		}
	}
	return res, err
}

func (e *Engine) observe(provider string, res domain.AnswerScore) {
	for _, d := range res.Dimensions {
		observability.ObserveDimensionScore(string(d.Dimension), provider, d.Score)
		if e.drift != nil && provider != MockProvider {
			e.drift.RecordScore(string(d.Dimension), d.Score)
		}
	}
}

// ExpectedScores returns the mean of each dimension's mock distribution.
// They serve as drift baselines for remote scorers.
func ExpectedScores() map[string]float64 {
	out := make(map[string]float64, len(Distributions))
	for d, dist := range Distributions {
		mean := 0.0
		for i, p := range dist {
			mean += float64(i+1) * p
		}
		out[string(d)] = mean
	}
	return out
}
