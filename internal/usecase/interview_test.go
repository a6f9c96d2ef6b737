package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-simulator/internal/analysis"
	"github.com/fairyhunter13/ai-interview-simulator/internal/bias"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/internal/questionbank"
	"github.com/fairyhunter13/ai-interview-simulator/internal/scoring"
	"github.com/fairyhunter13/ai-interview-simulator/internal/transcription"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/randx"
)

type fixedQuestions []domain.InterviewQuestion

func (f fixedQuestions) Generate(domain.InterviewConfig) []domain.InterviewQuestion {
	out := make([]domain.InterviewQuestion, len(f))
	copy(out, f)
	return out
}

func questions(n int) fixedQuestions {
	out := make(fixedQuestions, n)
	for i := range out {
		out[i] = domain.InterviewQuestion{ID: fmt.Sprintf("q-%d", i+1), Text: "Explain something", Category: domain.CategoryCodingConcepts}
	}
	return out
}

func flatScore(id string, v float64) domain.AnswerScore {
	s := domain.AnswerScore{QuestionID: id, Confidence: 80, BiasFlags: []domain.BiasFlag{}}
	for i, d := range domain.Dimensions {
		// small spread so the halo heuristic stays quiet
		s.Dimensions = append(s.Dimensions, domain.DimensionScore{Dimension: d, Score: v + float64(i%2)})
	}
	s.OverallScore = scoring.WeightedScore(s.Dimensions)
	return s
}

type fakeScorer struct {
	mu          sync.Mutex
	reqs        []domain.ScoringRequest
	inflight    int
	maxInflight int
	delay       func(req domain.ScoringRequest) time.Duration
	value       func(call int) float64
}

func (f *fakeScorer) Score(ctx context.Context, req domain.ScoringRequest) (domain.AnswerScore, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	call := len(f.reqs)
	f.inflight++
	f.maxInflight = max(f.maxInflight, f.inflight)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if f.delay != nil {
		select {
		case <-ctx.Done():
			return domain.AnswerScore{}, ctx.Err()
		case <-time.After(f.delay(req)):
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.AnswerScore{}, err
	}
	v := 3.0
	if f.value != nil {
		v = f.value(call)
	}
	return flatScore(req.Question.ID, v), nil
}

func (f *fakeScorer) requests() []domain.ScoringRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ScoringRequest(nil), f.reqs...)
}

func newTestInterview(qs domain.QuestionGenerator, sc domain.AnswerScorer, opts InterviewOptions) *Interview {
	if opts.Thresholds == (bias.Thresholds{}) {
		opts.Thresholds = bias.DefaultThresholds()
	}
	return NewInterview(qs, sc, analysis.NewAnalyzer(randx.New(3)), opts)
}

func ptr[T any](v T) *T { return &v }

func TestInterview_EndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bank, err := questionbank.NewDefault(randx.New(11))
	require.NoError(t, err)
	engine := scoring.NewEngine(nil, scoring.NewMockScorer(randx.New(5), 0, 0))
	iv := newTestInterview(bank, engine, InterviewOptions{BlindScoring: true})

	cfg, err := iv.SetConfig(ctx, ConfigPatch{
		Role:            ptr(domain.RoleFrontend),
		Difficulty:      ptr(domain.DifficultyMid),
		Type:            ptr(domain.TypeTechnical),
		TotalQuestions:  ptr(3),
		TimePerQuestion: ptr(120),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeTechnical, cfg.Type)
	assert.Equal(t, domain.StatusSetup, iv.Snapshot().Status)

	sess, err := iv.Start(ctx)
	require.NoError(t, err)
	require.Len(t, sess.Questions, 3)
	for _, q := range sess.Questions {
		assert.True(t, q.Category.IsTechnical(), "category %s", q.Category)
		assert.Equal(t, 120, q.TimeLimit)
	}
	assert.NotEmpty(t, sess.ID)

	transcripts := transcription.MockTranscripts()
	for i, q := range sess.Questions {
		_, _, err := iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: q.ID, Transcript: transcripts[i], Duration: 60})
		require.NoError(t, err)
		snap, err := iv.Next(ctx)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, domain.StatusInProgress, snap.Status)
			assert.Equal(t, i+1, snap.Session.CurrentQuestionIndex)
		} else {
			assert.Equal(t, domain.StatusProcessing, snap.Status)
			assert.Equal(t, 2, snap.Session.CurrentQuestionIndex)
		}
	}

	rep, err := iv.Complete(ctx)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Len(t, rep.AnswerScores, 3)
	assert.GreaterOrEqual(t, rep.OverallScore, 1.0)
	assert.LessOrEqual(t, rep.OverallScore, 5.0)
	assert.Contains(t, []domain.HiringRecommendation{
		domain.RecommendStrongHire, domain.RecommendHire, domain.RecommendNoHire, domain.RecommendStrongNoHire,
	}, rep.Recommendation)
	assert.Equal(t, sess.ID, rep.SessionID)

	snap := iv.Snapshot()
	assert.Equal(t, domain.StatusCompleted, snap.Status)
	require.NotNil(t, snap.Session)
	assert.Equal(t, domain.StatusCompleted, snap.Session.Status)
	assert.NotNil(t, snap.Session.CompletedAt)
	assert.Len(t, snap.Scores, 3)
	assert.Len(t, snap.ConfidenceMetrics, 3)

	got, err := iv.Report()
	require.NoError(t, err)
	assert.Equal(t, rep.OverallScore, got.OverallScore)
}

func TestInterview_InvalidTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		iv := newTestInterview(questions(2), &fakeScorer{}, InterviewOptions{})
		_, _, err := iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: "q-1"})
		assert.ErrorIs(t, err, domain.ErrNoActiveSession)
		_, err = iv.Next(ctx)
		assert.ErrorIs(t, err, domain.ErrNoActiveSession)
		_, err = iv.Complete(ctx)
		assert.ErrorIs(t, err, domain.ErrNoActiveSession)
		assert.Equal(t, domain.StatusIdle, iv.Snapshot().Status)
	})

	t.Run("start twice", func(t *testing.T) {
		iv := newTestInterview(questions(2), &fakeScorer{}, InterviewOptions{})
		first, err := iv.Start(ctx)
		require.NoError(t, err)
		_, err = iv.Start(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, first.ID, iv.Snapshot().Session.ID)
	})

	t.Run("config locked while running", func(t *testing.T) {
		iv := newTestInterview(questions(2), &fakeScorer{}, InterviewOptions{})
		_, err := iv.Start(ctx)
		require.NoError(t, err)
		_, err = iv.SetConfig(ctx, ConfigPatch{TotalQuestions: ptr(9)})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, 5, iv.Snapshot().Config.TotalQuestions)
		assert.Equal(t, domain.StatusInProgress, iv.Snapshot().Status)
	})

	t.Run("answers rejected while processing", func(t *testing.T) {
		iv := newTestInterview(questions(1), &fakeScorer{}, InterviewOptions{})
		_, err := iv.Start(ctx)
		require.NoError(t, err)
		_, err = iv.Next(ctx)
		require.NoError(t, err)
		_, _, err = iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: "q-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		_, err = iv.Next(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("complete twice", func(t *testing.T) {
		iv := newTestInterview(questions(1), &fakeScorer{}, InterviewOptions{})
		_, err := iv.Start(ctx)
		require.NoError(t, err)
		_, err = iv.Complete(ctx)
		require.NoError(t, err)
		_, err = iv.Complete(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.StatusCompleted, iv.Snapshot().Status)
	})
}

func TestInterview_SetConfigValidation(t *testing.T) {
	t.Parallel()
	iv := newTestInterview(questions(1), &fakeScorer{}, InterviewOptions{})
	_, err := iv.SetConfig(context.Background(), ConfigPatch{TotalQuestions: ptr(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	snap := iv.Snapshot()
	assert.Equal(t, domain.StatusIdle, snap.Status)
	assert.Equal(t, domain.DefaultInterviewConfig(), snap.Config)
}

func TestInterview_SubmitAnswer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	iv := newTestInterview(questions(3), &fakeScorer{}, InterviewOptions{})
	_, err := iv.Start(ctx)
	require.NoError(t, err)

	_, _, err = iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	ans, m1, err := iv.SubmitAnswer(ctx, domain.InterviewAnswer{
		QuestionID: "q-1",
		Transcript: "  Um, I think caching is, like, basically about locality.\x00 ",
		Duration:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, "Um, I think caching is, like, basically about locality.", ans.Transcript)
	assert.Equal(t, m1.Overall, ans.ConfidenceScore)
	assert.Greater(t, ans.SpeechRate, 0.0)
	assert.NotEmpty(t, ans.FillerWords)
	assert.Equal(t, []float64{m1.Overall}, m1.Trend)

	_, _, err = iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: "q-1", Transcript: "again"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, m2, err := iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: "q-2", Transcript: "Consistent hashing spreads keys.", Duration: 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{m1.Overall, m2.Overall}, m2.Trend)

	snap := iv.Snapshot()
	assert.Equal(t, 0, snap.Session.CurrentQuestionIndex)
	assert.Len(t, snap.Session.Answers, 2)
	assert.Len(t, snap.ConfidenceMetrics, 2)
}

func TestInterview_CompleteBuildsScoringRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sc := &fakeScorer{}
	iv := newTestInterview(questions(2), sc, InterviewOptions{BlindScoring: true})
	iv.SetAPIKey("sk-session")

	_, err := iv.Start(ctx)
	require.NoError(t, err)
	_, _, err = iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: "q-1", Transcript: "My name is Jane Doe and I was at Google.", Duration: 10})
	require.NoError(t, err)

	_, err = iv.Complete(ctx)
	require.NoError(t, err)

	reqs := sc.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "[REDACTED_NAME] and I was at [COMPANY].", reqs[0].Answer.Transcript)
	assert.Equal(t, "sk-session", reqs[0].APIKey)
	assert.Equal(t, domain.RoleFrontend, reqs[0].Role)
	assert.Equal(t, "q-2", reqs[1].Answer.QuestionID, "unanswered questions are still scored")
	assert.Empty(t, reqs[1].Answer.Transcript)

	// the stored answer keeps the original wording
	ans, ok := iv.Snapshot().Session.AnswerFor("q-1")
	require.True(t, ok)
	assert.Contains(t, ans.Transcript, "Jane Doe")
}

func TestInterview_CompleteWithoutBlindScoring(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sc := &fakeScorer{}
	iv := newTestInterview(questions(1), sc, InterviewOptions{})
	_, err := iv.Start(ctx)
	require.NoError(t, err)
	_, _, err = iv.SubmitAnswer(ctx, domain.InterviewAnswer{QuestionID: "q-1", Transcript: "I am Jane", Duration: 1})
	require.NoError(t, err)
	_, err = iv.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, "I am Jane", sc.requests()[0].Answer.Transcript)
}

func TestInterview_ParallelScoringKeepsOrder(t *testing.T) {
	t.Parallel()
	sc := &fakeScorer{
		// later questions finish first
		delay: func(req domain.ScoringRequest) time.Duration {
			var n int
			_, _ = fmt.Sscanf(req.Question.ID, "q-%d", &n)
			return time.Duration(6-n) * 10 * time.Millisecond
		},
	}
	iv := newTestInterview(questions(5), sc, InterviewOptions{Concurrency: 3})
	_, err := iv.Start(context.Background())
	require.NoError(t, err)

	_, err = iv.Complete(context.Background())
	require.NoError(t, err)

	snap := iv.Snapshot()
	require.Len(t, snap.Scores, 5)
	for i, s := range snap.Scores {
		assert.Equal(t, fmt.Sprintf("q-%d", i+1), s.QuestionID)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	assert.LessOrEqual(t, sc.maxInflight, 3)
	assert.Greater(t, sc.maxInflight, 1)
}

func TestInterview_SequentialByDefault(t *testing.T) {
	t.Parallel()
	sc := &fakeScorer{delay: func(domain.ScoringRequest) time.Duration { return time.Millisecond }}
	iv := newTestInterview(questions(4), sc, InterviewOptions{})
	_, err := iv.Start(context.Background())
	require.NoError(t, err)
	_, err = iv.Complete(context.Background())
	require.NoError(t, err)

	sc.mu.Lock()
	defer sc.mu.Unlock()
	assert.Equal(t, 1, sc.maxInflight)
}

func TestInterview_MultiPass(t *testing.T) {
	t.Parallel()
	sc := &fakeScorer{value: func(call int) float64 {
		if call%2 == 1 {
			return 4
		}
		return 2
	}}
	iv := newTestInterview(questions(2), sc, InterviewOptions{MultiPass: true})
	_, err := iv.Start(context.Background())
	require.NoError(t, err)
	_, err = iv.Complete(context.Background())
	require.NoError(t, err)

	assert.Len(t, sc.requests(), 4)
	for _, s := range iv.Snapshot().Scores {
		c, ok := s.Dimension(domain.DimensionCorrectness)
		require.True(t, ok)
		assert.Equal(t, 3.0, c.Score)
	}
}

func TestInterview_CompleteCancelled(t *testing.T) {
	t.Parallel()
	iv := newTestInterview(questions(2), &fakeScorer{}, InterviewOptions{})
	_, err := iv.Start(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = iv.Complete(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusProcessing, iv.Snapshot().Status)
	_, err = iv.Report()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rep, err := iv.Complete(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rep)
	assert.Equal(t, domain.StatusCompleted, iv.Snapshot().Status)
}

func TestInterview_NoQuestions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	iv := newTestInterview(questions(0), &fakeScorer{}, InterviewOptions{})
	_, err := iv.Start(ctx)
	require.NoError(t, err)

	snap, err := iv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, snap.Status)
	assert.Equal(t, 0, snap.Session.CurrentQuestionIndex)

	rep, err := iv.Complete(ctx)
	require.NoError(t, err)
	assert.Nil(t, rep)
	assert.Equal(t, domain.StatusCompleted, iv.Snapshot().Status)
	_, err = iv.Report()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInterview_ResetKeepsConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	iv := newTestInterview(questions(1), &fakeScorer{}, InterviewOptions{})
	_, err := iv.SetConfig(ctx, ConfigPatch{Role: ptr(domain.RoleDevOps)})
	require.NoError(t, err)
	iv.SetAPIKey("sk-1")
	_, err = iv.Start(ctx)
	require.NoError(t, err)
	_, err = iv.Complete(ctx)
	require.NoError(t, err)

	iv.Reset(ctx)
	snap := iv.Snapshot()
	assert.Equal(t, domain.StatusIdle, snap.Status)
	assert.Nil(t, snap.Session)
	assert.Nil(t, snap.Report)
	assert.Empty(t, snap.Scores)
	assert.Empty(t, snap.ConfidenceMetrics)
	assert.Equal(t, domain.RoleDevOps, snap.Config.Role)
	assert.True(t, snap.HasAPIKey)
	assert.Equal(t, "sk-1", iv.APIKey())

	// a fresh session can start straight from idle
	_, err = iv.Start(ctx)
	require.NoError(t, err)
}

// blockedScorer returns a scorer that holds every call until release is closed.
func blockedScorer() (*fakeScorer, chan struct{}) {
	release := make(chan struct{})
	return &fakeScorer{delay: func(domain.ScoringRequest) time.Duration {
		<-release
		return 0
	}}, release
}

func TestInterview_ReadsDuringComplete(t *testing.T) {
	t.Parallel()
	sc, release := blockedScorer()
	iv := newTestInterview(questions(2), sc, InterviewOptions{})
	iv.SetAPIKey("sk-user")
	_, err := iv.Start(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := iv.Complete(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return len(sc.requests()) == 1 }, time.Second, time.Millisecond)

	reads := make(chan Snapshot, 1)
	go func() {
		assert.Equal(t, "sk-user", iv.APIKey())
		_, err := iv.Report()
		assert.ErrorIs(t, err, domain.ErrNotFound)
		reads <- iv.Snapshot()
	}()
	select {
	case snap := <-reads:
		assert.Equal(t, domain.StatusProcessing, snap.Status)
		assert.Equal(t, domain.StatusProcessing, snap.Session.Status)
	case <-time.After(time.Second):
		t.Fatal("reads blocked while scoring")
	}

	_, err = iv.Complete(context.Background())
	require.ErrorIs(t, err, domain.ErrConflict)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, domain.StatusCompleted, iv.Snapshot().Status)
	_, err = iv.Report()
	assert.NoError(t, err)
}

func TestInterview_ResetDuringCompleteDiscardsResults(t *testing.T) {
	t.Parallel()
	sc, release := blockedScorer()
	iv := newTestInterview(questions(1), sc, InterviewOptions{})
	_, err := iv.Start(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := iv.Complete(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return len(sc.requests()) == 1 }, time.Second, time.Millisecond)

	iv.Reset(context.Background())
	assert.Equal(t, domain.StatusIdle, iv.Snapshot().Status)

	// a new session can start and be scored while the old run is pending
	_, err = iv.Start(context.Background())
	require.NoError(t, err)

	close(release)
	require.ErrorIs(t, <-done, domain.ErrConflict)

	snap := iv.Snapshot()
	assert.Equal(t, domain.StatusInProgress, snap.Status)
	assert.Empty(t, snap.Scores)
	assert.Nil(t, snap.Report)

	rep, err := iv.Complete(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, domain.StatusCompleted, iv.Snapshot().Status)
}

func TestSnapshot_IsACopy(t *testing.T) {
	t.Parallel()
	iv := newTestInterview(questions(2), &fakeScorer{}, InterviewOptions{})
	_, err := iv.Start(context.Background())
	require.NoError(t, err)

	snap := iv.Snapshot()
	snap.Session.Questions[0].Text = "mutated"
	snap.Session.CurrentQuestionIndex = 1

	again := iv.Snapshot()
	assert.Equal(t, "Explain something", again.Session.Questions[0].Text)
	q, ok := again.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "q-1", q.ID)

	_, ok = Snapshot{}.CurrentQuestion()
	assert.False(t, ok)
}

func TestConfigPatch_Apply(t *testing.T) {
	t.Parallel()
	base := domain.DefaultInterviewConfig()
	got := ConfigPatch{Difficulty: ptr(domain.DifficultyStaff), TotalQuestions: ptr(2)}.Apply(base)
	assert.Equal(t, domain.DifficultyStaff, got.Difficulty)
	assert.Equal(t, 2, got.TotalQuestions)
	assert.Equal(t, base.Role, got.Role)
	assert.Equal(t, base.TimePerQuestion, got.TimePerQuestion)
	assert.Equal(t, base, ConfigPatch{}.Apply(base))
}
