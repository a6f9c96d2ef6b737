package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-simulator/internal/bias"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

func score(id string, overall float64, dims ...float64) domain.AnswerScore {
	s := domain.AnswerScore{QuestionID: id, OverallScore: overall, BiasFlags: []domain.BiasFlag{}}
	for i, v := range dims {
		s.Dimensions = append(s.Dimensions, domain.DimensionScore{Dimension: domain.Dimensions[i], Score: v})
	}
	return s
}

func withSuggestion(s domain.AnswerScore, d domain.ScoringDimension, sug string) domain.AnswerScore {
	for i := range s.Dimensions {
		if s.Dimensions[i].Dimension == d {
			s.Dimensions[i].Suggestions = append(s.Dimensions[i].Suggestions, sug)
		}
	}
	return s
}

func TestRecommendation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want domain.HiringRecommendation
	}{
		{5, domain.RecommendStrongHire},
		{4.2, domain.RecommendStrongHire},
		{4.1, domain.RecommendHire},
		{3.2, domain.RecommendHire},
		{3.1, domain.RecommendNoHire},
		{2.2, domain.RecommendNoHire},
		{2.1, domain.RecommendStrongNoHire},
		{0, domain.RecommendStrongNoHire},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommendation(tt.in), "overall %.1f", tt.in)
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	s1 := withSuggestion(score("q1", 3.8, 4, 3, 5, 3, 2), domain.DimensionRelevance, "Tie back to the question")
	s2 := score("q2", 2.8, 2, 2, 4, 3, 1)
	s2 = withSuggestion(s2, domain.DimensionCorrectness, "Review fundamentals")
	s2 = withSuggestion(s2, domain.DimensionDepth, "Go deeper")
	s2 = withSuggestion(s2, domain.DimensionRelevance, "Tie back to the question")
	s3 := withSuggestion(score("q3", 4.1, 5, 4, 4, 4, 3), domain.DimensionCommunication, "never surfaced")

	g := NewGenerator(Options{Thresholds: bias.DefaultThresholds()})
	r, err := g.Generate(Input{
		Session:    domain.InterviewSession{ID: "sess-1"},
		Scores:     []domain.AnswerScore{s1, s2, s3},
		Confidence: []domain.ConfidenceMetrics{{Overall: 60}, {Overall: 70}, {Overall: 80}},
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", r.SessionID)
	assert.Equal(t, 3.6, r.OverallScore)
	assert.Equal(t, domain.RecommendHire, r.Recommendation)
	assert.Equal(t, []string{
		"Strong correctness skills (avg: 3.7/5)",
		"Strong communication skills (avg: 4.3/5)",
	}, r.Strengths)
	assert.Equal(t, []string{"Needs improvement in relevance (avg: 2.0/5)"}, r.Weaknesses)
	assert.Equal(t, []string{"Tie back to the question", "Review fundamentals", "Go deeper"}, r.ImprovementAreas)
	assert.Empty(t, r.RiskFactors)
	assert.Empty(t, r.BiasFlags)
	require.Len(t, r.AnswerScores, 3)
	assert.Equal(t, "q2", r.AnswerScores[1].QuestionID)
	assert.Empty(t, r.AnswerScores[0].BiasFlags)

	assert.Equal(t, 70.0, r.ConfidenceSummary.AverageConfidence)
	assert.Equal(t, domain.TrendImproving, r.ConfidenceSummary.Trend)
	assert.Equal(t, domain.ConfidencePoint{QuestionIndex: 0, Score: 60}, r.ConfidenceSummary.LowestPoint)

	require.NotNil(t, r.Calibration)
	assert.True(t, r.Calibration.OverallCalibrated)
}

func TestGenerate_BiasFlagsBecomeRisks(t *testing.T) {
	t.Parallel()
	g := NewGenerator(Options{Thresholds: bias.DefaultThresholds()})
	r, err := g.Generate(Input{
		Session: domain.InterviewSession{ID: "s"},
		Scores: []domain.AnswerScore{
			score("q1", 5, 5, 5, 5, 5, 5),
			score("q2", 5, 5, 5, 5, 5, 5),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RecommendStrongHire, r.Recommendation)
	require.Len(t, r.BiasFlags, 3)
	assert.Equal(t, domain.BiasHalo, r.BiasFlags[0].Type)
	assert.Equal(t, domain.BiasSeverity, r.BiasFlags[2].Type)
	require.Len(t, r.RiskFactors, 3)
	assert.Equal(t, r.BiasFlags[2].Description, r.RiskFactors[2])
	for _, s := range r.AnswerScores {
		assert.Equal(t, []domain.BiasFlag{r.BiasFlags[0]}, s.BiasFlags)
	}
	assert.Equal(t, DefaultConfidence, r.ConfidenceSummary.AverageConfidence)
}

func TestGenerate_Normalize(t *testing.T) {
	t.Parallel()
	in := []domain.AnswerScore{score("q1", 2, 2, 2, 3, 2, 1), score("q2", 3, 3, 3, 4, 2, 3), score("q3", 4, 4, 5, 4, 3, 4)}
	g := NewGenerator(Options{Thresholds: bias.DefaultThresholds(), Normalize: true})
	r, err := g.Generate(Input{Scores: in})
	require.NoError(t, err)

	assert.Equal(t, 3.0, r.OverallScore)
	assert.Equal(t, domain.RecommendNoHire, r.Recommendation)
	assert.Equal(t, "Normalized from 2 (μ=3.0, σ=0.8)", r.AnswerScores[0].CalibrationNote)
	assert.Empty(t, in[0].CalibrationNote)
}

func TestGenerate_NoScores(t *testing.T) {
	t.Parallel()
	_, err := NewGenerator(Options{Thresholds: bias.DefaultThresholds()}).Generate(Input{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSummarizeConfidence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		in     []float64
		avg    float64
		trend  domain.ConfidenceTrend
		lowest domain.ConfidencePoint
	}{
		{name: "empty", in: nil, avg: 65, trend: domain.TrendStable, lowest: domain.ConfidencePoint{QuestionIndex: 0, Score: 100}},
		{name: "single", in: []float64{40}, avg: 40, trend: domain.TrendStable, lowest: domain.ConfidencePoint{QuestionIndex: 0, Score: 40}},
		{name: "improving", in: []float64{60, 70, 80, 90}, avg: 75, trend: domain.TrendImproving, lowest: domain.ConfidencePoint{QuestionIndex: 0, Score: 60}},
		{name: "declining odd count", in: []float64{90, 50, 40}, avg: 60, trend: domain.TrendDeclining, lowest: domain.ConfidencePoint{QuestionIndex: 2, Score: 40}},
		{name: "small change is stable", in: []float64{70, 74}, avg: 72, trend: domain.TrendStable, lowest: domain.ConfidencePoint{QuestionIndex: 0, Score: 70}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var metrics []domain.ConfidenceMetrics
			for _, v := range tt.in {
				metrics = append(metrics, domain.ConfidenceMetrics{Overall: v})
			}
			got := SummarizeConfidence(metrics)
			assert.Equal(t, tt.avg, got.AverageConfidence)
			assert.Equal(t, tt.trend, got.Trend)
			assert.Equal(t, tt.lowest, got.LowestPoint)
		})
	}
}

func TestSummarizeFillers(t *testing.T) {
	t.Parallel()
	got := SummarizeFillers([]domain.InterviewAnswer{
		{Transcript: "Um, so I think, um, it is like basically fine.", Duration: 30},
		{Transcript: "Well, I really like it.", Duration: 30},
	})
	assert.Equal(t, 8, got.TotalFillerWords)
	assert.Equal(t, 8.0, got.FillerWordRate)
	assert.Equal(t, []domain.WordCount{
		{Word: "um", Count: 2},
		{Word: "like", Count: 2},
		{Word: "basically", Count: 1},
	}, got.MostCommon)

	empty := SummarizeFillers(nil)
	assert.Zero(t, empty.TotalFillerWords)
	assert.Zero(t, empty.FillerWordRate)
	assert.Empty(t, empty.MostCommon)
}
