package bias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

func uniform(id string, v float64) domain.AnswerScore {
	s := domain.AnswerScore{QuestionID: id, OverallScore: v}
	for _, d := range domain.Dimensions {
		s.Dimensions = append(s.Dimensions, domain.DimensionScore{Dimension: d, Score: v})
	}
	return s
}

func spread(id string, overall float64) domain.AnswerScore {
	s := domain.AnswerScore{QuestionID: id, OverallScore: overall}
	for i, d := range domain.Dimensions {
		s.Dimensions = append(s.Dimensions, domain.DimensionScore{Dimension: d, Score: float64(1 + i)})
	}
	return s
}

func types(flags []domain.BiasFlag) []domain.BiasType {
	out := make([]domain.BiasType, len(flags))
	for i, f := range flags {
		out[i] = f.Type
	}
	return out
}

func TestDetectBiasPatterns(t *testing.T) {
	t.Parallel()
	th := DefaultThresholds()

	tests := []struct {
		name   string
		scores []domain.AnswerScore
		want   []domain.BiasType
	}{
		{name: "empty", scores: nil, want: []domain.BiasType{}},
		{name: "single answer never flagged", scores: []domain.AnswerScore{uniform("q1", 5)}, want: []domain.BiasType{}},
		{
			name:   "halo per answer",
			scores: []domain.AnswerScore{uniform("q1", 3), spread("q2", 3.5)},
			want:   []domain.BiasType{domain.BiasHalo},
		},
		{
			name:   "anchor needs three answers",
			scores: []domain.AnswerScore{spread("q1", 3.0), spread("q2", 3.1), spread("q3", 3.2)},
			want:   []domain.BiasType{domain.BiasAnchor},
		},
		{
			name:   "no anchor when scores move",
			scores: []domain.AnswerScore{spread("q1", 2.0), spread("q2", 3.5), spread("q3", 4.0)},
			want:   []domain.BiasType{},
		},
		{
			name:   "harsh",
			scores: []domain.AnswerScore{spread("q1", 1.5), spread("q2", 1.8)},
			want:   []domain.BiasType{domain.BiasSeverity},
		},
		{
			name:   "lenient at threshold",
			scores: []domain.AnswerScore{spread("q1", 4.5), spread("q2", 4.5)},
			want:   []domain.BiasType{domain.BiasSeverity},
		},
		{
			name:   "halo on both plus lenient",
			scores: []domain.AnswerScore{uniform("q1", 5), uniform("q2", 4.8)},
			want:   []domain.BiasType{domain.BiasHalo, domain.BiasHalo, domain.BiasSeverity},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectBiasPatterns(tt.scores, th)
			assert.Equal(t, tt.want, types(got))
		})
	}
}

func TestDetectBiasPatterns_HaloNeedsEnoughDimensions(t *testing.T) {
	t.Parallel()
	short := domain.AnswerScore{QuestionID: "q1", OverallScore: 3, Dimensions: []domain.DimensionScore{
		{Dimension: domain.DimensionCorrectness, Score: 3},
		{Dimension: domain.DimensionDepth, Score: 3},
		{Dimension: domain.DimensionCommunication, Score: 3},
	}}
	flags := DetectBiasPatterns([]domain.AnswerScore{short, spread("q2", 3.6)}, DefaultThresholds())
	assert.Empty(t, flags)
}

func TestDetectBiasPatterns_SeverityMessages(t *testing.T) {
	t.Parallel()
	harsh := DetectBiasPatterns([]domain.AnswerScore{spread("a", 1), spread("b", 1.2)}, DefaultThresholds())
	require.Len(t, harsh, 1)
	assert.Contains(t, harsh[0].Description, "harsh")
	assert.Equal(t, "Scores calibrated against anchor examples.", harsh[0].MitigationApplied)

	lenient := DetectBiasPatterns([]domain.AnswerScore{spread("a", 4.9), spread("b", 4.7)}, DefaultThresholds())
	require.Len(t, lenient, 1)
	assert.Contains(t, lenient[0].Description, "lenient")
}

func TestThresholdsFromConfig(t *testing.T) {
	t.Parallel()
	th := ThresholdsFromConfig(config.Config{BiasHarshBelow: 2.5, BiasAnchorMinAnswers: 5})
	assert.Equal(t, 2.5, th.HarshBelow)
	assert.Equal(t, 5, th.AnchorMinAnswers)
	assert.Equal(t, 0.5, th.HaloRange)
	assert.Equal(t, 4.5, th.LenientAtOrAbove)
}

func TestNormalizeScores(t *testing.T) {
	t.Parallel()
	in := []domain.AnswerScore{spread("q1", 2), spread("q2", 3), spread("q3", 4)}
	out := NormalizeScores(in)
	require.Len(t, out, 3)

	assert.Equal(t, 2.0, out[0].OverallScore)
	assert.Equal(t, 3.0, out[1].OverallScore)
	assert.Equal(t, 4.0, out[2].OverallScore)
	assert.Equal(t, "Normalized from 2 (μ=3.0, σ=0.8)", out[0].CalibrationNote)
	assert.Empty(t, in[0].CalibrationNote, "input must not be mutated")
}

func TestNormalizeScores_Clamps(t *testing.T) {
	t.Parallel()
	in := []domain.AnswerScore{spread("a", 1), spread("b", 1), spread("c", 1), spread("d", 1), spread("e", 5)}
	out := NormalizeScores(in)
	// z for the outlier is 2, giving 4.6; the rest sit at 3-0.4
	assert.Equal(t, 4.6, out[4].OverallScore)
	assert.Equal(t, 2.6, out[0].OverallScore)
	for _, s := range out {
		assert.GreaterOrEqual(t, s.OverallScore, 1.0)
		assert.LessOrEqual(t, s.OverallScore, 5.0)
	}
}

func TestNormalizeScores_NoOp(t *testing.T) {
	t.Parallel()
	assert.Empty(t, NormalizeScores(nil))
	same := []domain.AnswerScore{spread("a", 3.3), spread("b", 3.3)}
	out := NormalizeScores(same)
	assert.Equal(t, same, out)
	assert.Empty(t, out[0].CalibrationNote)
}

func TestMultiPassAverage(t *testing.T) {
	t.Parallel()
	halo := domain.BiasFlag{Type: domain.BiasHalo, Description: "h"}
	first := domain.AnswerScore{
		QuestionID: "q1",
		Dimensions: []domain.DimensionScore{
			{Dimension: domain.DimensionCorrectness, Score: 4, Explanation: "solid", Evidence: []string{"a"}, Suggestions: []string{"x"}},
			{Dimension: domain.DimensionDepth, Score: 3, Explanation: "ok", Evidence: []string{"b"}},
		},
		Confidence: 80,
		BiasFlags:  []domain.BiasFlag{halo},
	}
	second := domain.AnswerScore{
		QuestionID: "q1",
		// reversed order: pairing is by dimension, not position
		Dimensions: []domain.DimensionScore{
			{Dimension: domain.DimensionDepth, Score: 3, Explanation: "fine", Evidence: []string{"b", "c"}},
			{Dimension: domain.DimensionCorrectness, Score: 3, Explanation: "gaps", Evidence: []string{"d"}, Suggestions: []string{"x", "y"}},
			{Dimension: domain.DimensionRelevance, Score: 5, Explanation: "on topic"},
		},
		Confidence: 85,
		BiasFlags:  []domain.BiasFlag{halo, {Type: domain.BiasAnchor, Description: "a"}},
	}

	got := MultiPassAverage(first, second)
	require.Len(t, got.Dimensions, 3)

	c := got.Dimensions[0]
	assert.Equal(t, domain.DimensionCorrectness, c.Dimension)
	assert.Equal(t, 3.5, c.Score)
	assert.Equal(t, "Pass 1: solid | Pass 2: gaps", c.Explanation)
	assert.Equal(t, []string{"a", "d"}, c.Evidence)
	assert.Equal(t, []string{"x", "y"}, c.Suggestions)

	d := got.Dimensions[1]
	assert.Equal(t, 3.0, d.Score)
	assert.Equal(t, "ok", d.Explanation, "agreeing passes keep the first explanation")
	assert.Equal(t, []string{"b", "c"}, d.Evidence)

	assert.Equal(t, domain.DimensionRelevance, got.Dimensions[2].Dimension)
	assert.Equal(t, 5.0, got.Dimensions[2].Score)

	// (3.5*0.25 + 3*0.2 + 5*0.15) / 0.6 = 3.7
	assert.Equal(t, 3.7, got.OverallScore)
	assert.Equal(t, 83.0, got.Confidence)
	assert.Len(t, got.BiasFlags, 2)
	assert.Equal(t, "q1", got.QuestionID)
}

func TestUnionFlagsAndTypes(t *testing.T) {
	t.Parallel()
	a := domain.BiasFlag{Type: domain.BiasHalo, Description: "x"}
	b := domain.BiasFlag{Type: domain.BiasSeverity, Description: "y"}
	got := UnionFlags([]domain.BiasFlag{a}, nil, []domain.BiasFlag{a, b})
	assert.Equal(t, []domain.BiasFlag{a, b}, got)
	assert.Equal(t, []string{"halo-effect", "severity-bias"}, FlagTypes(got))
	assert.NotNil(t, UnionFlags())
}
