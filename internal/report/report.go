// Package report aggregates the scores and delivery metrics of a completed
// interview into the final report.
package report

import (
	"fmt"
	"math"
	"slices"

	"github.com/fairyhunter13/ai-interview-simulator/internal/analysis"
	"github.com/fairyhunter13/ai-interview-simulator/internal/bias"
	"github.com/fairyhunter13/ai-interview-simulator/internal/calibration"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/internal/scoring"
)

const (
	// DefaultConfidence is reported when no answer carried confidence metrics.
	DefaultConfidence = 65.0
	// TrendDelta is the half-to-half change in mean confidence that counts as a trend.
	TrendDelta = 5.0

	strengthAtOrAbove = 3.5
	weaknessBelow     = 2.5
	improvementAtMost = 2.0
	topFillers        = 3
)

// Recommendation buckets a mean overall score.
func Recommendation(overall float64) domain.HiringRecommendation {
	switch {
	case overall >= 4.2:
		return domain.RecommendStrongHire
	case overall >= 3.2:
		return domain.RecommendHire
	case overall >= 2.2:
		return domain.RecommendNoHire
	default:
		return domain.RecommendStrongNoHire
	}
}

// Options tune report generation.
type Options struct {
	Thresholds bias.Thresholds
	// Normalize rescales the reported answer scores around 3.0. Overall score,
	// recommendation and bias flags are always computed from the raw scores.
	Normalize bool
}

// Input is everything a report is built from. Scores follow question order.
type Input struct {
	Session    domain.InterviewSession
	Scores     []domain.AnswerScore
	Confidence []domain.ConfidenceMetrics
}

// Generator builds interview reports.
type Generator struct {
	opts Options
}

// NewGenerator creates a Generator.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate builds the report. It needs at least one score.
func (g *Generator) Generate(in Input) (domain.InterviewReport, error) {
	if len(in.Scores) == 0 {
		return domain.InterviewReport{}, fmt.Errorf("op=report.Generate: no answer scores: %w", domain.ErrInvalidArgument)
	}

	flags := bias.DetectBiasPatterns(in.Scores, g.opts.Thresholds)
	risks := make([]string, len(flags))
	for i, f := range flags {
		risks[i] = f.Description
	}

	var sum float64
	for _, s := range in.Scores {
		sum += s.OverallScore
	}
	overall := scoring.Round1(sum / float64(len(in.Scores)))

	answerScores := in.Scores
	if g.opts.Normalize {
		answerScores = bias.NormalizeScores(answerScores)
	}
	out := make([]domain.AnswerScore, len(answerScores))
	for i, s := range answerScores {
		// the first session-level flag is surfaced on every answer
		s.BiasFlags = bias.UnionFlags(s.BiasFlags, flags[:min(1, len(flags))])
		out[i] = s
	}

	strengths, weaknesses := strengthsAndWeaknesses(in.Scores)
	cal := calibration.GenerateReport(in.Scores)

	return domain.InterviewReport{
		SessionID:         in.Session.ID,
		OverallScore:      overall,
		Recommendation:    Recommendation(overall),
		AnswerScores:      out,
		Strengths:         strengths,
		Weaknesses:        weaknesses,
		RiskFactors:       risks,
		BiasFlags:         flags,
		ImprovementAreas:  improvementAreas(in.Scores),
		FillerWordSummary: SummarizeFillers(in.Session.Answers),
		ConfidenceSummary: SummarizeConfidence(in.Confidence),
		Calibration:       &cal,
	}, nil
}

func strengthsAndWeaknesses(scores []domain.AnswerScore) ([]string, []string) {
	strengths, weaknesses := []string{}, []string{}
	for _, d := range domain.Dimensions {
		var sum float64
		var n int
		for _, s := range scores {
			if ds, ok := s.Dimension(d); ok {
				sum += ds.Score
				n++
			}
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		switch {
		case avg >= strengthAtOrAbove:
			strengths = append(strengths, fmt.Sprintf("Strong %s skills (avg: %.1f/5)", d, avg))
		case avg < weaknessBelow:
			weaknesses = append(weaknesses, fmt.Sprintf("Needs improvement in %s (avg: %.1f/5)", d, avg))
		}
	}
	return strengths, weaknesses
}

// improvementAreas lists the suggestions of every dimension scored at most 2,
// first occurrence only, in answer then rubric order.
func improvementAreas(scores []domain.AnswerScore) []string {
	out := []string{}
	for _, s := range scores {
		for _, d := range s.Dimensions {
			if d.Score > improvementAtMost {
				continue
			}
			for _, sug := range d.Suggestions {
				if !slices.Contains(out, sug) {
					out = append(out, sug)
				}
			}
		}
	}
	return out
}

// SummarizeConfidence averages per-answer confidence and compares the first
// half of the session with the second.
func SummarizeConfidence(metrics []domain.ConfidenceMetrics) domain.ConfidenceSummary {
	summary := domain.ConfidenceSummary{
		AverageConfidence: DefaultConfidence,
		Trend:             domain.TrendStable,
		LowestPoint:       domain.ConfidencePoint{QuestionIndex: 0, Score: 100},
	}
	if len(metrics) == 0 {
		return summary
	}

	values := make([]float64, len(metrics))
	for i, m := range metrics {
		values[i] = m.Overall
		if m.Overall < summary.LowestPoint.Score {
			summary.LowestPoint = domain.ConfidencePoint{QuestionIndex: i, Score: m.Overall}
		}
	}
	summary.AverageConfidence = math.Round(mean(values))

	if len(values) >= 2 {
		half := len(values) / 2
		first, second := mean(values[:half]), mean(values[half:])
		switch {
		case second-first > TrendDelta:
			summary.Trend = domain.TrendImproving
		case first-second > TrendDelta:
			summary.Trend = domain.TrendDeclining
		}
	}
	return summary
}

// SummarizeFillers counts filler words over every answer transcript. The rate
// is per minute of total answer duration.
func SummarizeFillers(answers []domain.InterviewAnswer) domain.FillerWordSummary {
	counts := make(map[string]int)
	var total int
	var seconds float64
	for _, a := range answers {
		fa := analysis.AnalyzeFillerWords(a.Transcript, a.Duration)
		for _, d := range fa.Distribution {
			counts[d.Word] += d.Count
		}
		total += fa.TotalCount
		seconds += a.Duration
	}

	common := []domain.WordCount{}
	for _, w := range analysis.FillerWords {
		if n := counts[w]; n > 0 {
			common = append(common, domain.WordCount{Word: w, Count: n})
		}
	}
	slices.SortStableFunc(common, func(a, b domain.WordCount) int { return b.Count - a.Count })
	if len(common) > topFillers {
		common = common[:topFillers]
	}

	var rate float64
	if seconds > 0 {
		rate = scoring.Round1(float64(total) / (seconds / 60))
	}
	return domain.FillerWordSummary{
		TotalFillerWords: total,
		FillerWordRate:   rate,
		MostCommon:       common,
	}
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
