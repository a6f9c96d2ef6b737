package domain

// ConfidenceMetrics are the derived delivery-confidence scores for one answer.
// All values are in [0,100].
type ConfidenceMetrics struct {
	Overall         float64   `json:"overall"`
	SpeechRateScore float64   `json:"speechRateScore"`
	PauseScore      float64   `json:"pauseScore"`
	FillerScore     float64   `json:"fillerScore"`
	VolumeScore     float64   `json:"volumeScore"`
	Trend           []float64 `json:"trend"`
}

// AudioAnalysis holds raw delivery measurements derived from a transcript.
// VolumeConsistency is simulated: there is no real audio signal.
type AudioAnalysis struct {
	SpeechRate           float64 `json:"speechRate"`
	PauseFrequency       float64 `json:"pauseFrequency"`
	AveragePauseDuration float64 `json:"averagePauseDuration"`
	VolumeConsistency    float64 `json:"volumeConsistency"`
	FillerWordRatio      float64 `json:"fillerWordRatio"`
	TotalWords           int     `json:"totalWords"`
	TotalFillerWords     int     `json:"totalFillerWords"`
}

// FillerSeverity buckets filler-word rate per minute.
type FillerSeverity string

const (
	SeverityLow      FillerSeverity = "low"
	SeverityModerate FillerSeverity = "moderate"
	SeverityHigh     FillerSeverity = "high"
	SeverityCritical FillerSeverity = "critical"
)

// FillerDistribution is one entry of a filler word breakdown.
type FillerDistribution struct {
	Word       string  `json:"word"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FillerWordAnalysis is a per-answer filler word breakdown.
type FillerWordAnalysis struct {
	TotalCount    int                  `json:"totalCount"`
	UniqueWords   []string             `json:"uniqueWords"`
	Distribution  []FillerDistribution `json:"distribution"`
	RatePerMinute float64              `json:"ratePerMinute"`
	Severity      FillerSeverity       `json:"severity"`
}
