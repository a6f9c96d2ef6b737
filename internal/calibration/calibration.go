// Package calibration compares answer scores with reference answers of known score.
package calibration

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/internal/scoring"
)

// MaxDeviation is the largest distance from the nearest anchor still considered calibrated.
const MaxDeviation = 1.0

// Anchors are the reference answers. Only correctness and communication have any.
var Anchors = []domain.CalibrationAnchor{
	{
		Dimension:    domain.DimensionCorrectness,
		ScoreLevel:   1,
		AnchorAnswer: "I think React uses threads to update the DOM directly.",
		Explanation:  "Fundamentally incorrect: React uses a virtual DOM, not threads.",
	},
	{
		Dimension:    domain.DimensionCorrectness,
		ScoreLevel:   3,
		AnchorAnswer: "React uses a virtual DOM to compare changes before updating the real DOM. It batches updates for performance.",
		Explanation:  "Correct high-level understanding with minor gaps in reconciliation details.",
	},
	{
		Dimension:    domain.DimensionCorrectness,
		ScoreLevel:   5,
		AnchorAnswer: "React maintains a virtual DOM tree. During reconciliation, it performs a diffing algorithm comparing the new virtual tree with the previous one, then batches minimal DOM mutations. React Fiber introduced incremental rendering with priority-based scheduling.",
		Explanation:  "Precise, nuanced understanding with advanced concepts (Fiber, scheduling).",
	},
	{
		Dimension:    domain.DimensionCommunication,
		ScoreLevel:   1,
		AnchorAnswer: "So like, um, the thing is... you know, it's like, basically... the DOM stuff.",
		Explanation:  "Extremely unclear, excessive filler words, no structure.",
	},
	{
		Dimension:    domain.DimensionCommunication,
		ScoreLevel:   3,
		AnchorAnswer: "React has a virtual DOM. First, it creates a copy. Then, it compares changes. Finally, it updates only what changed.",
		Explanation:  "Clear sequential structure, easy to follow.",
	},
	{
		Dimension:    domain.DimensionCommunication,
		ScoreLevel:   5,
		AnchorAnswer: "Let me break this into three parts. First, I'll explain what the Virtual DOM is. Then, I'll walk through the reconciliation process. Finally, I'll discuss why this matters for performance. The Virtual DOM is...",
		Explanation:  "Masterful structure: previews the outline, uses transitions, engaging delivery.",
	},
}

// AnchorsFor returns the anchors of one dimension.
func AnchorsFor(d domain.ScoringDimension) []domain.CalibrationAnchor {
	var out []domain.CalibrationAnchor
	for _, a := range Anchors {
		if a.Dimension == d {
			out = append(out, a)
		}
	}
	return out
}

// Check is the calibration result for one dimension of one answer.
type Check struct {
	IsCalibrated bool    `json:"isCalibrated"`
	Deviation    float64 `json:"deviation"`
	Note         string  `json:"note"`
}

// CheckCalibration measures the distance of a dimension score from the nearest
// anchor level. A dimension missing from score, or without anchors, is calibrated.
func CheckCalibration(score domain.AnswerScore, d domain.ScoringDimension) Check {
	ds, ok := score.Dimension(d)
	if !ok {
		return Check{IsCalibrated: true}
	}
	anchors := AnchorsFor(d)
	if len(anchors) == 0 {
		return Check{IsCalibrated: true}
	}

	// ties go to the lower level
	nearest := anchors[0]
	for _, a := range anchors[1:] {
		if math.Abs(float64(a.ScoreLevel)-ds.Score) < math.Abs(float64(nearest.ScoreLevel)-ds.Score) {
			nearest = a
		}
	}
	dev := math.Abs(float64(nearest.ScoreLevel) - ds.Score)
	if dev <= MaxDeviation {
		return Check{
			IsCalibrated: true,
			Deviation:    dev,
			Note:         fmt.Sprintf("Score aligns with calibration anchor at level %d.", nearest.ScoreLevel),
		}
	}
	return Check{
		Deviation: dev,
		Note:      fmt.Sprintf("Score deviates %.1f points from nearest anchor (level %d). Review recommended.", dev, nearest.ScoreLevel),
	}
}

// GenerateReport averages the per-answer deviation of every rubric dimension.
// An empty score list is reported as calibrated with zero deviation.
func GenerateReport(scores []domain.AnswerScore) domain.CalibrationReport {
	report := domain.CalibrationReport{
		Dimensions: make([]domain.DimensionCalibration, 0, len(domain.Dimensions)),
		Flags:      []string{},
	}
	for _, d := range domain.Dimensions {
		var sum float64
		for _, s := range scores {
			sum += CheckCalibration(s, d).Deviation
		}
		var avg float64
		if len(scores) > 0 {
			avg = sum / float64(len(scores))
		}
		dc := domain.DimensionCalibration{
			Dimension:    d,
			AvgDeviation: scoring.Round1(avg),
			Calibrated:   avg <= MaxDeviation,
		}
		report.Dimensions = append(report.Dimensions, dc)
		if !dc.Calibrated {
			report.Flags = append(report.Flags,
				fmt.Sprintf("%s: Average deviation of %g from calibration anchors.", d, dc.AvgDeviation))
		}
	}
	report.OverallCalibrated = len(report.Flags) == 0
	return report
}
