// Package scoring evaluates interview answers against the five-dimension rubric,
// either through an LLM provider or with the offline simulator.
package scoring

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

// DefaultWeight applies to a dimension missing from Weights.
const DefaultWeight = 0.2

// Weights maps each rubric dimension to its share of the overall score.
var Weights = map[domain.ScoringDimension]float64{
	domain.DimensionCorrectness:    0.25,
	domain.DimensionDepth:          0.20,
	domain.DimensionCommunication:  0.20,
	domain.DimensionProblemSolving: 0.20,
	domain.DimensionRelevance:      0.15,
}

// WeightOf returns the weight of d, DefaultWeight when unknown.
func WeightOf(d domain.ScoringDimension) float64 {
	if w, ok := Weights[d]; ok {
		return w
	}
	return DefaultWeight
}

// WeightedScore is the weighted mean of dims, rounded to one decimal.
// Only dimensions present contribute to the denominator. Empty input yields 0.
func WeightedScore(dims []domain.DimensionScore) float64 {
	var total, weightSum float64
	for _, d := range dims {
		w := WeightOf(d.Dimension)
		total += d.Score * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return Round1(total / weightSum)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Rubric lists the label and level descriptions of every dimension.
var Rubric = []domain.RubricCriteria{
	{
		Dimension:   domain.DimensionCorrectness,
		Label:       "Technical Correctness",
		Description: "Accuracy of technical knowledge and facts presented",
		Levels: []domain.RubricLevel{
			{Score: 1, Label: "Incorrect", Description: "Major factual errors or fundamental misunderstandings"},
			{Score: 2, Label: "Partially Correct", Description: "Some correct elements but significant gaps or errors"},
			{Score: 3, Label: "Mostly Correct", Description: "Generally accurate with minor inaccuracies"},
			{Score: 4, Label: "Correct", Description: "Accurate and demonstrates solid understanding"},
			{Score: 5, Label: "Exceptional", Description: "Precise, nuanced, and shows expert-level knowledge"},
		},
	},
	{
		Dimension:   domain.DimensionDepth,
		Label:       "Depth of Knowledge",
		Description: "Level of detail and thoroughness in the response",
		Levels: []domain.RubricLevel{
			{Score: 1, Label: "Surface", Description: "Very superficial, no meaningful detail"},
			{Score: 2, Label: "Basic", Description: "Covers basics but lacks depth"},
			{Score: 3, Label: "Moderate", Description: "Good coverage with some deeper insights"},
			{Score: 4, Label: "Deep", Description: "Thorough exploration with nuanced understanding"},
			{Score: 5, Label: "Expert", Description: "Comprehensive, explores edge cases and trade-offs"},
		},
	},
	{
		Dimension:   domain.DimensionCommunication,
		Label:       "Communication Clarity",
		Description: "How clearly and structuredly the answer is presented",
		Levels: []domain.RubricLevel{
			{Score: 1, Label: "Unclear", Description: "Disorganized, hard to follow"},
			{Score: 2, Label: "Somewhat Clear", Description: "Some structure but jumps around"},
			{Score: 3, Label: "Clear", Description: "Logical flow, easy to follow"},
			{Score: 4, Label: "Very Clear", Description: "Well-structured with clear examples"},
			{Score: 5, Label: "Exceptional", Description: "Masterful storytelling, perfect structure, engaging"},
		},
	},
	{
		Dimension:   domain.DimensionProblemSolving,
		Label:       "Problem Solving",
		Description: "Quality of reasoning, approach, and analytical thinking",
		Levels: []domain.RubricLevel{
			{Score: 1, Label: "No Approach", Description: "No clear method or reasoning shown"},
			{Score: 2, Label: "Basic Approach", Description: "Shows some reasoning but unstructured"},
			{Score: 3, Label: "Structured", Description: "Clear approach with logical steps"},
			{Score: 4, Label: "Strong", Description: "Considers alternatives and trade-offs"},
			{Score: 5, Label: "Exceptional", Description: "Systematic, creative, considers multiple dimensions"},
		},
	},
	{
		Dimension:   domain.DimensionRelevance,
		Label:       "Relevance",
		Description: "How well the answer addresses the actual question asked",
		Levels: []domain.RubricLevel{
			{Score: 1, Label: "Off-topic", Description: "Does not address the question"},
			{Score: 2, Label: "Tangential", Description: "Partially related but misses key points"},
			{Score: 3, Label: "Relevant", Description: "Addresses the question with minor tangents"},
			{Score: 4, Label: "Focused", Description: "Directly addresses all aspects of the question"},
			{Score: 5, Label: "Precise", Description: "Perfectly targeted, addresses all aspects comprehensively"},
		},
	},
}

// RubricWithWeights returns Rubric with each entry's Weight populated.
func RubricWithWeights() []domain.RubricCriteria {
	out := make([]domain.RubricCriteria, len(Rubric))
	for i, r := range Rubric {
		r.Weight = WeightOf(r.Dimension)
		out[i] = r
	}
	return out
}

// ValidateDimensions checks that dims holds exactly one in-range score per rubric dimension.
func ValidateDimensions(dims []domain.DimensionScore) error {
	if len(dims) != len(domain.Dimensions) {
		return fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrSchemaInvalid, len(domain.Dimensions), len(dims))
	}
	seen := make(map[domain.ScoringDimension]bool, len(dims))
	for _, d := range dims {
		if _, ok := Weights[d.Dimension]; !ok {
			return fmt.Errorf("%w: unknown dimension %q", domain.ErrSchemaInvalid, d.Dimension)
		}
		if seen[d.Dimension] {
			return fmt.Errorf("%w: duplicate dimension %q", domain.ErrSchemaInvalid, d.Dimension)
		}
		seen[d.Dimension] = true
		if d.Score < 1 || d.Score > 5 {
			return fmt.Errorf("%w: invalid score for %s: %.2f (must be 1.0-5.0)", domain.ErrSchemaInvalid, d.Dimension, d.Score)
		}
	}
	return nil
}
