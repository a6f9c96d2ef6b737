package domain

// ScoringDimension is one axis of the evaluation rubric.
type ScoringDimension string

const (
	DimensionCorrectness    ScoringDimension = "correctness"
	DimensionDepth          ScoringDimension = "depth"
	DimensionCommunication  ScoringDimension = "communication"
	DimensionProblemSolving ScoringDimension = "problem-solving"
	DimensionRelevance      ScoringDimension = "relevance"
)

// Dimensions lists the rubric dimensions in canonical order.
var Dimensions = []ScoringDimension{
	DimensionCorrectness,
	DimensionDepth,
	DimensionCommunication,
	DimensionProblemSolving,
	DimensionRelevance,
}

// DimensionScore is the score for one rubric dimension, Score in [1,5].
type DimensionScore struct {
	Dimension   ScoringDimension `json:"dimension"`
	Score       float64          `json:"score"`
	Explanation string           `json:"explanation"`
	Evidence    []string         `json:"evidence"`
	Suggestions []string         `json:"suggestions"`
}

// BiasType enumerates the bias heuristics.
type BiasType string

const (
	BiasHalo     BiasType = "halo-effect"
	BiasAnchor   BiasType = "anchor-bias"
	BiasSeverity BiasType = "severity-bias"
	BiasLanguage BiasType = "language-bias"
)

// BiasFlag is an advisory annotation; it never changes scores.
type BiasFlag struct {
	Type              BiasType `json:"type"`
	Description       string   `json:"description"`
	MitigationApplied string   `json:"mitigationApplied"`
}

// AnswerScore is the full evaluation of one answer.
// Invariant: OverallScore is the weighted mean of Dimensions rounded to 1 decimal.
type AnswerScore struct {
	QuestionID      string           `json:"questionId"`
	Dimensions      []DimensionScore `json:"dimensions"`
	OverallScore    float64          `json:"overallScore"`
	BiasFlags       []BiasFlag       `json:"biasFlags"`
	CalibrationNote string           `json:"calibrationNote,omitempty"`
	Confidence      float64          `json:"confidence"`
}

// Dimension returns the score entry for d.
func (a AnswerScore) Dimension(d ScoringDimension) (DimensionScore, bool) {
	for _, ds := range a.Dimensions {
		if ds.Dimension == d {
			return ds, true
		}
	}
	return DimensionScore{}, false
}

// HiringRecommendation is the final verdict bucket of a report.
type HiringRecommendation string

const (
	RecommendStrongHire   HiringRecommendation = "strong-hire"
	RecommendHire         HiringRecommendation = "hire"
	RecommendNoHire       HiringRecommendation = "no-hire"
	RecommendStrongNoHire HiringRecommendation = "strong-no-hire"
)

// ConfidenceTrend describes how confidence evolved across a session.
type ConfidenceTrend string

const (
	TrendImproving ConfidenceTrend = "improving"
	TrendDeclining ConfidenceTrend = "declining"
	TrendStable    ConfidenceTrend = "stable"
)

// WordCount is a filler word and how often it occurred.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// FillerWordSummary aggregates filler usage over a whole session.
type FillerWordSummary struct {
	TotalFillerWords int         `json:"totalFillerWords"`
	FillerWordRate   float64     `json:"fillerWordRate"`
	MostCommon       []WordCount `json:"mostCommon"`
}

// ConfidencePoint identifies one answer's confidence.
type ConfidencePoint struct {
	QuestionIndex int     `json:"questionIndex"`
	Score         float64 `json:"score"`
}

// ConfidenceSummary aggregates confidence over a whole session.
type ConfidenceSummary struct {
	AverageConfidence float64         `json:"averageConfidence"`
	Trend             ConfidenceTrend `json:"trend"`
	LowestPoint       ConfidencePoint `json:"lowestPoint"`
}

// DimensionCalibration is the per-dimension result of a calibration run.
type DimensionCalibration struct {
	Dimension    ScoringDimension `json:"dimension"`
	AvgDeviation float64          `json:"avgDeviation"`
	Calibrated   bool             `json:"calibrated"`
}

// CalibrationReport summarises how far scores drift from the anchor examples.
type CalibrationReport struct {
	OverallCalibrated bool                   `json:"overallCalibrated"`
	Dimensions        []DimensionCalibration `json:"dimensions"`
	Flags             []string               `json:"flags"`
}

// InterviewReport is the aggregate produced once an interview completes.
type InterviewReport struct {
	SessionID         string               `json:"sessionId"`
	OverallScore      float64              `json:"overallScore"`
	Recommendation    HiringRecommendation `json:"recommendation"`
	AnswerScores      []AnswerScore        `json:"answerScores"`
	Strengths         []string             `json:"strengths"`
	Weaknesses        []string             `json:"weaknesses"`
	RiskFactors       []string             `json:"riskFactors"`
	BiasFlags         []BiasFlag           `json:"biasFlags"`
	ImprovementAreas  []string             `json:"improvementAreas"`
	FillerWordSummary FillerWordSummary    `json:"fillerWordSummary"`
	ConfidenceSummary ConfidenceSummary    `json:"confidenceSummary"`
	Calibration       *CalibrationReport   `json:"calibration,omitempty"`
}

// RubricLevel describes what one score level means for a dimension.
type RubricLevel struct {
	Score       int    `json:"score"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// RubricCriteria describes a rubric dimension for display and prompting.
type RubricCriteria struct {
	Dimension   ScoringDimension `json:"dimension"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Weight      float64          `json:"weight"`
	Levels      []RubricLevel    `json:"levels"`
}

// CalibrationAnchor is a reference answer with a known score.
type CalibrationAnchor struct {
	Dimension    ScoringDimension `json:"dimension"`
	ScoreLevel   int              `json:"scoreLevel"`
	AnchorAnswer string           `json:"anchorAnswer"`
	Explanation  string           `json:"explanation"`
}
