package scoring

import (
	"context"
	"time"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/randx"
)

// Distributions holds, per dimension, the probability of scores 1..5.
var Distributions = map[domain.ScoringDimension][5]float64{
	domain.DimensionCorrectness:    {0.05, 0.15, 0.30, 0.35, 0.15},
	domain.DimensionDepth:          {0.05, 0.20, 0.30, 0.30, 0.15},
	domain.DimensionCommunication:  {0.05, 0.10, 0.25, 0.40, 0.20},
	domain.DimensionProblemSolving: {0.05, 0.15, 0.30, 0.35, 0.15},
	domain.DimensionRelevance:      {0.05, 0.10, 0.25, 0.40, 0.20},
}

const (
	defaultExplanation = "Score based on overall quality assessment."
	defaultEvidence    = "Evidence based on response analysis."
	defaultSuggestion  = "Continue practicing to improve."
)

// MockScorer produces realistic-looking scores without any provider.
// It never fails except on context cancellation during its artificial delay.
type MockScorer struct {
	rng      randx.Source
	delayMin time.Duration
	delayMax time.Duration
}

// NewMockScorer returns a MockScorer that waits between delayMin and delayMax
// before answering. Zero delays disable waiting.
func NewMockScorer(rng randx.Source, delayMin, delayMax time.Duration) *MockScorer {
	if rng == nil {
		rng = randx.NewTimeSeeded()
	}
	return &MockScorer{rng: rng, delayMin: delayMin, delayMax: delayMax}
}

// Score implements domain.AnswerScorer.
func (m *MockScorer) Score(ctx context.Context, req domain.ScoringRequest) (domain.AnswerScore, error) {
	if d := randx.Duration(m.rng, m.delayMin, m.delayMax); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.AnswerScore{}, ctx.Err()
		case <-t.C:
		}
	}
	return m.Generate(req.Question.ID), nil
}

// Generate builds a mock AnswerScore for questionID immediately.
func (m *MockScorer) Generate(questionID string) domain.AnswerScore {
	dims := make([]domain.DimensionScore, 0, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		score := m.drawScore(d)
		dims = append(dims, domain.DimensionScore{
			Dimension:   d,
			Score:       float64(score),
			Explanation: lookup(explanations, d, score, defaultExplanation),
			Evidence:    []string{lookup(evidence, d, score, defaultEvidence)},
			Suggestions: []string{lookup(suggestions, d, score, defaultSuggestion)},
		})
	}
	return domain.AnswerScore{
		QuestionID:   questionID,
		Dimensions:   dims,
		OverallScore: WeightedScore(dims),
		BiasFlags:    []domain.BiasFlag{},
		Confidence:   float64(75 + m.rng.IntN(20)),
	}
}

func (m *MockScorer) drawScore(d domain.ScoringDimension) int {
	dist, ok := Distributions[d]
	if !ok {
		dist = Distributions[domain.DimensionCorrectness]
	}
	r := m.rng.Float64()
	cumulative := 0.0
	for i, p := range dist {
		cumulative += p
		if r < cumulative {
			return i + 1
		}
	}
	return 4
}

func lookup(table map[domain.ScoringDimension]map[int]string, d domain.ScoringDimension, score int, fallback string) string {
	if s, ok := table[d][score]; ok {
		return s
	}
	return fallback
}

var explanations = map[domain.ScoringDimension]map[int]string{
	domain.DimensionCorrectness: {
		2: "Some technical inaccuracies detected in the core concepts discussed.",
		3: "Generally accurate response with minor gaps in understanding.",
		4: "Demonstrates solid technical knowledge with accurate explanations.",
		5: "Exceptional technical accuracy with precise terminology and comprehensive understanding of all concepts.",
	},
	domain.DimensionDepth: {
		2: "Response stays at surface level without exploring nuances.",
		3: "Good coverage of main points with some deeper insights.",
		4: "Thorough exploration showing strong depth of knowledge.",
		5: "Demonstrates expert-level depth with advanced concepts, edge cases, and nuanced analysis.",
	},
	domain.DimensionCommunication: {
		2: "Answer lacks clear structure and jumps between topics.",
		3: "Well-organized response with logical flow.",
		4: "Excellent clarity with well-structured examples and transitions.",
		5: "Outstanding communication with perfect structure, compelling examples, and engaging delivery.",
	},
	domain.DimensionProblemSolving: {
		2: "Shows basic reasoning but misses alternative approaches.",
		3: "Structured approach with consideration of trade-offs.",
		4: "Strong analytical thinking with creative problem decomposition.",
		5: "Demonstrates exceptional problem-solving with innovative approaches and comprehensive trade-off analysis.",
	},
	domain.DimensionRelevance: {
		2: "Partially addresses the question with some tangents.",
		3: "Directly addresses the core question with minor digressions.",
		4: "Precisely targeted response covering all aspects asked.",
		5: "Perfectly addresses all aspects of the question with insightful connections to broader contexts.",
	},
}

var evidence = map[domain.ScoringDimension]map[int]string{
	domain.DimensionCorrectness: {
		2: "Some technical details were imprecise in the explanation.",
		3: "Candidate demonstrated understanding of core concepts in their explanation.",
		4: "Accurate use of technical terminology and correct explanation of complex concepts.",
		5: "Demonstrated expert-level knowledge with precise technical details and accurate explanations of advanced concepts.",
	},
	domain.DimensionDepth: {
		2: "Basic coverage without exploring underlying principles.",
		3: "Response included discussion of edge cases and trade-offs.",
		4: "Explored multiple layers of the problem with consideration of scalability and performance.",
		5: "Provided comprehensive analysis including edge cases, performance implications, and real-world applications.",
	},
	domain.DimensionCommunication: {
		2: "Ideas were present but could be organized more clearly.",
		3: "Answer followed a clear structure with examples.",
		4: "Used clear transitions, structured examples, and maintained audience engagement.",
		5: "Exceptional use of analogies, clear explanations, and perfect pacing throughout the response.",
	},
	domain.DimensionProblemSolving: {
		2: "Identified the problem but solution approach was limited.",
		3: "Candidate broke down the problem into manageable components.",
		4: "Presented multiple approaches with clear reasoning for the chosen solution.",
		5: "Demonstrated exceptional analytical skills with innovative solutions and comprehensive risk assessment.",
	},
	domain.DimensionRelevance: {
		2: "Some aspects of the question were not fully addressed.",
		3: "Response directly addressed the key aspects of the question.",
		4: "All parts of the question were answered with appropriate detail.",
		5: "Comprehensively addressed all aspects while adding valuable context and forward-looking insights.",
	},
}

var suggestions = map[domain.ScoringDimension]map[int]string{
	domain.DimensionCorrectness: {
		2: "Review core technical concepts and practice explaining them with precise terminology.",
		3: "Consider referencing specific implementation details to strengthen accuracy.",
		4: "Continue deepening knowledge of edge cases and advanced concepts.",
		5: "Consider mentoring others to share your strong technical understanding.",
	},
	domain.DimensionDepth: {
		2: "Practice diving deeper into the 'why' behind technical decisions.",
		3: "Explore edge cases and discuss how the solution scales.",
		4: "Add more discussion of performance implications and alternative approaches.",
		5: "Great depth - consider documenting your thought process for knowledge sharing.",
	},
	domain.DimensionCommunication: {
		2: "Use the STAR framework to structure responses more clearly.",
		3: "Use the STAR framework for behavioral questions to add structure.",
		4: "Add more transitional phrases to connect complex ideas.",
		5: "Excellent communication - your structure and clarity are exemplary.",
	},
	domain.DimensionProblemSolving: {
		2: "Practice breaking down problems into smaller components before solving.",
		3: "Present multiple approaches before choosing one and explain trade-offs.",
		4: "Add more discussion of potential risks and mitigation strategies.",
		5: "Exceptional problem-solving - consider documenting approaches for team learning.",
	},
	domain.DimensionRelevance: {
		2: "Start by restating the question to ensure alignment before diving in.",
		3: "Start by restating the question to ensure alignment before diving in.",
		4: "Consider proactively addressing related concerns the interviewer might have.",
		5: "Perfect relevance - your responses are always on-point and comprehensive.",
	},
}
