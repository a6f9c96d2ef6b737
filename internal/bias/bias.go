// Package bias reduces and flags scoring bias: identity redaction before
// scoring, two-pass averaging, heuristic pattern detection and z-score
// normalisation of overall scores.
package bias

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/internal/scoring"
)

// Thresholds tune the bias heuristics.
type Thresholds struct {
	// HaloRange is the max-min dimension spread at or below which an answer
	// looks halo-scored.
	HaloRange float64
	// HaloMinDimensions is the minimum number of dimensions for a halo check.
	HaloMinDimensions int
	AnchorMinAnswers  int
	// AnchorMaxDiff is the mean distance from the first overall score below
	// which later answers look anchored.
	AnchorMaxDiff    float64
	HarshBelow       float64
	LenientAtOrAbove float64
}

// DefaultThresholds returns the stock heuristics.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HaloRange:         0.5,
		HaloMinDimensions: 4,
		AnchorMinAnswers:  3,
		AnchorMaxDiff:     0.3,
		HarshBelow:        2.0,
		LenientAtOrAbove:  4.5,
	}
}

// ThresholdsFromConfig reads thresholds from cfg, keeping defaults for unset values.
func ThresholdsFromConfig(cfg config.Config) Thresholds {
	t := DefaultThresholds()
	if cfg.BiasHaloRange > 0 {
		t.HaloRange = cfg.BiasHaloRange
	}
	if cfg.BiasHaloMinDimensions > 0 {
		t.HaloMinDimensions = cfg.BiasHaloMinDimensions
	}
	if cfg.BiasAnchorMinAnswers > 0 {
		t.AnchorMinAnswers = cfg.BiasAnchorMinAnswers
	}
	if cfg.BiasAnchorMaxDiff > 0 {
		t.AnchorMaxDiff = cfg.BiasAnchorMaxDiff
	}
	if cfg.BiasHarshBelow > 0 {
		t.HarshBelow = cfg.BiasHarshBelow
	}
	if cfg.BiasLenientAtOrAbove > 0 {
		t.LenientAtOrAbove = cfg.BiasLenientAtOrAbove
	}
	return t
}

const severityMitigation = "Scores calibrated against anchor examples."

// DetectBiasPatterns inspects a session's scores. Fewer than two scores yield no flags.
func DetectBiasPatterns(scores []domain.AnswerScore, th Thresholds) []domain.BiasFlag {
	flags := []domain.BiasFlag{}
	if len(scores) < 2 {
		return flags
	}

	for _, s := range scores {
		if len(s.Dimensions) < th.HaloMinDimensions {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, d := range s.Dimensions {
			lo = math.Min(lo, d.Score)
			hi = math.Max(hi, d.Score)
		}
		if hi-lo <= th.HaloRange {
			flags = append(flags, domain.BiasFlag{
				Type:              domain.BiasHalo,
				Description:       fmt.Sprintf("All dimensions of answer %s scored nearly identically: possible halo effect detected.", s.QuestionID),
				MitigationApplied: "Dimensions reviewed independently with focused prompts.",
			})
		}
	}

	if len(scores) >= th.AnchorMinAnswers {
		first := scores[0].OverallScore
		var dev float64
		for _, s := range scores[1:] {
			dev += math.Abs(s.OverallScore - first)
		}
		dev /= float64(len(scores) - 1)
		if dev < th.AnchorMaxDiff {
			flags = append(flags, domain.BiasFlag{
				Type:              domain.BiasAnchor,
				Description:       "Later scores cluster near the first answer's score: possible anchoring effect.",
				MitigationApplied: "Each answer scored independently with fresh context.",
			})
		}
	}

	mean := meanOverall(scores)
	switch {
	case mean < th.HarshBelow:
		flags = append(flags, domain.BiasFlag{
			Type:              domain.BiasSeverity,
			Description:       "Overall scoring appears unusually harsh.",
			MitigationApplied: severityMitigation,
		})
	case mean >= th.LenientAtOrAbove:
		flags = append(flags, domain.BiasFlag{
			Type:              domain.BiasSeverity,
			Description:       "Overall scoring appears unusually lenient.",
			MitigationApplied: severityMitigation,
		})
	}
	return flags
}

// NormalizeScores rescales overall scores to mean 3.0 using population z-scores
// (3 + z*0.8, clamped to [1,5], one decimal). Empty or zero-variance input is
// returned unchanged. The input slice is not modified.
func NormalizeScores(scores []domain.AnswerScore) []domain.AnswerScore {
	if len(scores) == 0 {
		return scores
	}
	mean := meanOverall(scores)
	var variance float64
	for _, s := range scores {
		variance += (s.OverallScore - mean) * (s.OverallScore - mean)
	}
	std := math.Sqrt(variance / float64(len(scores)))
	if std == 0 {
		return scores
	}

	out := make([]domain.AnswerScore, len(scores))
	for i, s := range scores {
		z := (s.OverallScore - mean) / std
		n := math.Max(1, math.Min(5, 3+z*0.8))
		s.CalibrationNote = fmt.Sprintf("Normalized from %g (μ=%.1f, σ=%.1f)", s.OverallScore, mean, std)
		s.OverallScore = scoring.Round1(n)
		out[i] = s
	}
	return out
}

// MultiPassAverage merges two evaluations of the same answer. Dimensions are
// paired by name; one present in only a single pass is kept as is. When the
// passes disagree on a dimension both explanations are kept.
func MultiPassAverage(first, second domain.AnswerScore) domain.AnswerScore {
	out := first
	out.Dimensions = make([]domain.DimensionScore, 0, len(first.Dimensions))

	for _, d1 := range first.Dimensions {
		d2, ok := second.Dimension(d1.Dimension)
		if !ok {
			out.Dimensions = append(out.Dimensions, d1)
			continue
		}
		merged := d1
		merged.Score = scoring.Round1((d1.Score + d2.Score) / 2)
		if d1.Score != d2.Score {
			merged.Explanation = fmt.Sprintf("Pass 1: %s | Pass 2: %s", d1.Explanation, d2.Explanation)
		}
		merged.Evidence = unionStrings(d1.Evidence, d2.Evidence)
		merged.Suggestions = unionStrings(d1.Suggestions, d2.Suggestions)
		out.Dimensions = append(out.Dimensions, merged)
	}
	for _, d2 := range second.Dimensions {
		if _, ok := first.Dimension(d2.Dimension); !ok {
			out.Dimensions = append(out.Dimensions, d2)
		}
	}

	out.OverallScore = scoring.WeightedScore(out.Dimensions)
	out.Confidence = math.Round((first.Confidence + second.Confidence) / 2)
	out.BiasFlags = UnionFlags(first.BiasFlags, second.BiasFlags)
	return out
}

// UnionFlags concatenates flag lists, dropping exact duplicates.
func UnionFlags(lists ...[]domain.BiasFlag) []domain.BiasFlag {
	out := []domain.BiasFlag{}
	seen := make(map[domain.BiasFlag]struct{})
	for _, l := range lists {
		for _, f := range l {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// FlagTypes lists the type of every flag, in order.
func FlagTypes(flags []domain.BiasFlag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f.Type)
	}
	return out
}

func unionStrings(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func meanOverall(scores []domain.AnswerScore) float64 {
	var sum float64
	for _, s := range scores {
		sum += s.OverallScore
	}
	return sum / float64(len(scores))
}
