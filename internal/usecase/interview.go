// Package usecase holds the interview context: the session state machine
// that drives questions, answers, scoring and the final report.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/analysis"
	"github.com/fairyhunter13/ai-interview-simulator/internal/bias"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-simulator/internal/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/report"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/textx"
)

// InterviewOptions control how Complete scores a session.
type InterviewOptions struct {
	// BlindScoring redacts identifying details before answers reach the scorer.
	BlindScoring bool
	// MultiPass scores every answer twice and averages the passes.
	MultiPass bool
	// Concurrency bounds parallel scoring; values below 2 score sequentially.
	Concurrency int
	Normalize   bool
	Thresholds  bias.Thresholds
}

// ConfigPatch is a partial InterviewConfig; nil fields are left unchanged.
type ConfigPatch struct {
	Role            *domain.Role          `json:"role,omitempty" yaml:"role,omitempty" validate:"omitempty,oneof=frontend backend fullstack machine-learning data-science devops"`
	Type            *domain.InterviewType `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=behavioral technical mixed"`
	Difficulty      *domain.Difficulty    `json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,oneof=junior mid senior staff"`
	TimePerQuestion *int                  `json:"timePerQuestion,omitempty" yaml:"timePerQuestion,omitempty" validate:"omitempty,gt=0,lte=3600"`
	TotalQuestions  *int                  `json:"totalQuestions,omitempty" yaml:"totalQuestions,omitempty" validate:"omitempty,gte=1,lte=50"`
}

// Apply returns cfg with the patch merged in.
func (p ConfigPatch) Apply(cfg domain.InterviewConfig) domain.InterviewConfig {
	if p.Role != nil {
		cfg.Role = *p.Role
	}
	if p.Type != nil {
		cfg.Type = *p.Type
	}
	if p.Difficulty != nil {
		cfg.Difficulty = *p.Difficulty
	}
	if p.TimePerQuestion != nil {
		cfg.TimePerQuestion = *p.TimePerQuestion
	}
	if p.TotalQuestions != nil {
		cfg.TotalQuestions = *p.TotalQuestions
	}
	return cfg
}

// Snapshot is a copy of the interview context safe to hand to callers.
type Snapshot struct {
	Status            domain.InterviewStatus     `json:"status"`
	Config            domain.InterviewConfig     `json:"config"`
	HasAPIKey         bool                       `json:"hasApiKey"`
	Session           *domain.InterviewSession   `json:"session,omitempty"`
	Scores            []domain.AnswerScore       `json:"scores"`
	ConfidenceMetrics []domain.ConfidenceMetrics `json:"confidenceMetrics"`
	Report            *domain.InterviewReport    `json:"report,omitempty"`
}

// CurrentQuestion returns the question at the session index, if any.
func (s Snapshot) CurrentQuestion() (domain.InterviewQuestion, bool) {
	if s.Session == nil || s.Session.CurrentQuestionIndex >= len(s.Session.Questions) {
		return domain.InterviewQuestion{}, false
	}
	return s.Session.Questions[s.Session.CurrentQuestionIndex], true
}

// Interview is the single interview context: configuration, the running
// session and its results. All methods are safe for concurrent use.
type Interview struct {
	mu sync.Mutex

	questions domain.QuestionGenerator
	scorer    domain.AnswerScorer
	analyzer  *analysis.Analyzer
	sanitizer *bias.Sanitizer
	reports   *report.Generator
	opts      InterviewOptions
	newID     func() string
	now       func() time.Time

	status  domain.InterviewStatus
	config  domain.InterviewConfig
	apiKey  string
	session *domain.InterviewSession
	scores  []domain.AnswerScore
	metrics []domain.ConfidenceMetrics
	report  *domain.InterviewReport
	// scoringSession is the id of the session Complete is scoring, if any.
	scoringSession string
}

// NewInterview creates an idle interview context with the default configuration.
func NewInterview(questions domain.QuestionGenerator, scorer domain.AnswerScorer, analyzer *analysis.Analyzer, opts InterviewOptions) *Interview {
	if analyzer == nil {
		analyzer = analysis.NewAnalyzer(nil)
	}
	return &Interview{
		questions: questions,
		scorer:    scorer,
		analyzer:  analyzer,
		sanitizer: bias.NewSanitizer(),
		reports:   report.NewGenerator(report.Options{Thresholds: opts.Thresholds, Normalize: opts.Normalize}),
		opts:      opts,
		newID:     uuid.NewString,
		now:       time.Now,
		status:    domain.StatusIdle,
		config:    domain.DefaultInterviewConfig(),
	}
}

func (iv *Interview) transition(ctx context.Context, to domain.InterviewStatus) {
	from := iv.status
	iv.status = to
	if iv.session != nil {
		iv.session.Status = to
	}
	if from == to {
		return
	}
	observability.RecordTransition(string(from), string(to))
	obsctx.LoggerFromContext(ctx).Info("interview transition",
		slog.String("from", string(from)),
		slog.String("to", string(to)))
}

func invalidTransition(op string, from domain.InterviewStatus) error {
	return fmt.Errorf("op=usecase.%s: from %s: %w", op, from, domain.ErrInvalidTransition)
}

// SetConfig merges patch into the configuration. Allowed before an interview starts.
func (iv *Interview) SetConfig(ctx context.Context, patch ConfigPatch) (domain.InterviewConfig, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.status != domain.StatusIdle && iv.status != domain.StatusSetup {
		return iv.config, invalidTransition("SetConfig", iv.status)
	}
	cfg := patch.Apply(iv.config)
	if cfg.TimePerQuestion <= 0 || cfg.TotalQuestions < 1 {
		return iv.config, fmt.Errorf("op=usecase.SetConfig: timePerQuestion must be > 0 and totalQuestions >= 1: %w", domain.ErrInvalidArgument)
	}
	iv.config = cfg
	iv.transition(ctx, domain.StatusSetup)
	return cfg, nil
}

// SetAPIKey stores a per-session provider key; empty clears it.
func (iv *Interview) SetAPIKey(key string) {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.apiKey = textx.SanitizeText(key)
}

// Start materialises a new session from the configuration.
func (iv *Interview) Start(ctx context.Context) (domain.InterviewSession, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.status != domain.StatusIdle && iv.status != domain.StatusSetup {
		return domain.InterviewSession{}, invalidTransition("Start", iv.status)
	}
	qs := iv.questions.Generate(iv.config)
	iv.session = &domain.InterviewSession{
		ID:        iv.newID(),
		Config:    iv.config,
		Questions: qs,
		Answers:   []domain.InterviewAnswer{},
		Status:    domain.StatusInProgress,
		StartedAt: iv.now().UTC(),
	}
	iv.scores = nil
	iv.metrics = nil
	iv.report = nil
	iv.transition(ctx, domain.StatusInProgress)

	obsctx.LoggerFromContext(ctx).Info("interview started",
		slog.String("session_id", iv.session.ID),
		slog.String("role", string(iv.config.Role)),
		slog.String("difficulty", string(iv.config.Difficulty)),
		slog.String("type", string(iv.config.Type)),
		slog.Int("questions", len(qs)))
	return cloneSession(*iv.session), nil
}

// SubmitAnswer records an answer to a session question and derives its
// delivery metrics from the transcript. The question index does not move.
func (iv *Interview) SubmitAnswer(ctx context.Context, answer domain.InterviewAnswer) (domain.InterviewAnswer, domain.ConfidenceMetrics, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.session == nil {
		return domain.InterviewAnswer{}, domain.ConfidenceMetrics{}, fmt.Errorf("op=usecase.SubmitAnswer: %w", domain.ErrNoActiveSession)
	}
	if iv.status != domain.StatusInProgress {
		return domain.InterviewAnswer{}, domain.ConfidenceMetrics{}, invalidTransition("SubmitAnswer", iv.status)
	}
	if !slices.ContainsFunc(iv.session.Questions, func(q domain.InterviewQuestion) bool { return q.ID == answer.QuestionID }) {
		return domain.InterviewAnswer{}, domain.ConfidenceMetrics{}, fmt.Errorf("op=usecase.SubmitAnswer: unknown question %q: %w", answer.QuestionID, domain.ErrInvalidArgument)
	}
	if _, dup := iv.session.AnswerFor(answer.QuestionID); dup {
		return domain.InterviewAnswer{}, domain.ConfidenceMetrics{}, fmt.Errorf("op=usecase.SubmitAnswer: question %q already answered: %w", answer.QuestionID, domain.ErrConflict)
	}
	if answer.Duration < 0 {
		return domain.InterviewAnswer{}, domain.ConfidenceMetrics{}, fmt.Errorf("op=usecase.SubmitAnswer: negative duration: %w", domain.ErrInvalidArgument)
	}

	answer.Transcript = textx.SanitizeText(answer.Transcript)
	audio, metrics := iv.analyzer.Confidence(answer.Transcript, answer.Duration)
	trend := make([]float64, 0, len(iv.metrics)+1)
	for _, m := range iv.metrics {
		trend = append(trend, m.Overall)
	}
	metrics.Trend = append(trend, metrics.Overall)

	answer.ConfidenceScore = metrics.Overall
	answer.SpeechRate = audio.SpeechRate
	if len(answer.FillerWords) == 0 {
		answer.FillerWords = analysis.FillerInstances(analysis.AnalyzeFillerWords(answer.Transcript, answer.Duration))
	}

	iv.session.Answers = append(iv.session.Answers, answer)
	iv.metrics = append(iv.metrics, metrics)
	obsctx.LoggerFromContext(obsctx.WithSession(ctx, iv.session.ID)).Debug("answer submitted",
		slog.String("question_id", answer.QuestionID),
		slog.Int("words", audio.TotalWords),
		slog.Float64("confidence", metrics.Overall))
	return answer, metrics, nil
}

// Next advances to the next question. At the last question the interview
// moves to processing and the index stays in bounds.
func (iv *Interview) Next(ctx context.Context) (Snapshot, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.session == nil {
		return Snapshot{}, fmt.Errorf("op=usecase.Next: %w", domain.ErrNoActiveSession)
	}
	if iv.status != domain.StatusInProgress {
		return Snapshot{}, invalidTransition("Next", iv.status)
	}
	if iv.session.CurrentQuestionIndex+1 >= len(iv.session.Questions) {
		iv.transition(ctx, domain.StatusProcessing)
	} else {
		iv.session.CurrentQuestionIndex++
	}
	return iv.snapshotLocked(), nil
}

// Complete scores every question of the session and builds the report.
// The interview is in processing while scoring runs and the lock is released
// meanwhile, so reads see that status. A second Complete for the same session
// fails with ErrConflict until the first returns. A Reset issued while
// scoring discards the results. A cancelled ctx leaves the interview in
// processing and Complete may be retried. The report is nil, with no error,
// when the session has no questions.
func (iv *Interview) Complete(ctx context.Context) (*domain.InterviewReport, error) {
	iv.mu.Lock()
	if iv.session == nil {
		iv.mu.Unlock()
		return nil, fmt.Errorf("op=usecase.Complete: %w", domain.ErrNoActiveSession)
	}
	if iv.status != domain.StatusInProgress && iv.status != domain.StatusProcessing {
		iv.mu.Unlock()
		return nil, invalidTransition("Complete", iv.status)
	}
	sessionID := iv.session.ID
	if iv.scoringSession == sessionID {
		iv.mu.Unlock()
		return nil, fmt.Errorf("op=usecase.Complete: session %s is already being scored: %w", sessionID, domain.ErrConflict)
	}
	ctx = obsctx.WithSession(ctx, sessionID)
	iv.transition(ctx, domain.StatusProcessing)
	iv.scoringSession = sessionID
	reqs := iv.scoringRequestsLocked()
	iv.mu.Unlock()

	lg := obsctx.LoggerFromContext(ctx)
	start := iv.now()
	scores, err := iv.scoreAll(ctx, reqs)

	iv.mu.Lock()
	defer iv.mu.Unlock()
	if iv.scoringSession == sessionID {
		iv.scoringSession = ""
	}
	if iv.session == nil || iv.session.ID != sessionID || iv.status != domain.StatusProcessing {
		lg.Info("interview reset during scoring, results discarded")
		return nil, fmt.Errorf("op=usecase.Complete: session %s reset during scoring: %w", sessionID, domain.ErrConflict)
	}
	if err != nil {
		lg.Warn("interview scoring interrupted", slog.Any("error", err))
		return nil, fmt.Errorf("op=usecase.Complete: %w", err)
	}

	completed := iv.now().UTC()
	iv.scores = scores
	iv.session.Status = domain.StatusCompleted
	iv.session.CompletedAt = &completed

	if len(scores) > 0 {
		rep, err := iv.reports.Generate(report.Input{Session: *iv.session, Scores: scores, Confidence: iv.metrics})
		if err != nil {
			return nil, fmt.Errorf("op=usecase.Complete: %w", err)
		}
		iv.report = &rep
		observability.ObserveReport(rep.OverallScore, string(rep.Recommendation), bias.FlagTypes(rep.BiasFlags))
	}
	iv.transition(ctx, domain.StatusCompleted)

	attrs := []any{
		slog.Int("answers", len(scores)),
		slog.Duration("elapsed", iv.now().Sub(start)),
	}
	if iv.report != nil {
		attrs = append(attrs,
			slog.Float64("overall", iv.report.OverallScore),
			slog.String("recommendation", string(iv.report.Recommendation)))
	}
	lg.Info("interview completed", attrs...)

	if iv.report == nil {
		return nil, nil
	}
	rep := *iv.report
	return &rep, nil
}

// scoringRequestsLocked builds one request per session question, in order.
func (iv *Interview) scoringRequestsLocked() []domain.ScoringRequest {
	reqs := make([]domain.ScoringRequest, len(iv.session.Questions))
	for i, q := range iv.session.Questions {
		ans, ok := iv.session.AnswerFor(q.ID)
		if !ok {
			ans = domain.InterviewAnswer{QuestionID: q.ID}
		}
		if iv.opts.BlindScoring {
			ans.Transcript = iv.sanitizer.Sanitize(ans.Transcript)
		}
		reqs[i] = domain.ScoringRequest{Question: q, Answer: ans, Role: iv.session.Config.Role, APIKey: iv.apiKey}
	}
	return reqs
}

// scoreAll scores reqs without holding the lock. Results keep request order
// whatever the concurrency.
func (iv *Interview) scoreAll(ctx context.Context, reqs []domain.ScoringRequest) ([]domain.AnswerScore, error) {
	scores := make([]domain.AnswerScore, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, iv.opts.Concurrency))
	for i, req := range reqs {
		g.Go(func() error {
			s, err := iv.scoreOne(gctx, req)
			if err != nil {
				return err
			}
			scores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (iv *Interview) scoreOne(ctx context.Context, req domain.ScoringRequest) (domain.AnswerScore, error) {
	first, err := iv.scorer.Score(ctx, req)
	if err != nil {
		return domain.AnswerScore{}, err
	}
	if !iv.opts.MultiPass {
		return first, nil
	}
	second, err := iv.scorer.Score(ctx, req)
	if err != nil {
		return domain.AnswerScore{}, err
	}
	return bias.MultiPassAverage(first, second), nil
}

// Reset discards the session and its results. Configuration and API key are
// kept. It does not wait for a running Complete, whose results are dropped.
func (iv *Interview) Reset(ctx context.Context) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.session = nil
	iv.scores = nil
	iv.metrics = nil
	iv.report = nil
	iv.transition(ctx, domain.StatusIdle)
}

// Snapshot returns a copy of the current state.
func (iv *Interview) Snapshot() Snapshot {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.snapshotLocked()
}

// Report returns the report of the completed interview.
func (iv *Interview) Report() (domain.InterviewReport, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if iv.report == nil {
		return domain.InterviewReport{}, fmt.Errorf("op=usecase.Report: no report available: %w", domain.ErrNotFound)
	}
	return *iv.report, nil
}

// APIKey returns the per-session provider key.
func (iv *Interview) APIKey() string {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.apiKey
}

func (iv *Interview) snapshotLocked() Snapshot {
	s := Snapshot{
		Status:            iv.status,
		Config:            iv.config,
		HasAPIKey:         iv.apiKey != "",
		Scores:            slices.Clone(iv.scores),
		ConfidenceMetrics: slices.Clone(iv.metrics),
	}
	if s.Scores == nil {
		s.Scores = []domain.AnswerScore{}
	}
	if s.ConfidenceMetrics == nil {
		s.ConfidenceMetrics = []domain.ConfidenceMetrics{}
	}
	if iv.session != nil {
		sess := cloneSession(*iv.session)
		s.Session = &sess
	}
	if iv.report != nil {
		rep := *iv.report
		s.Report = &rep
	}
	return s
}

func cloneSession(s domain.InterviewSession) domain.InterviewSession {
	s.Questions = slices.Clone(s.Questions)
	s.Answers = slices.Clone(s.Answers)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}
