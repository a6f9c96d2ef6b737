// Package analysis derives delivery metrics (speech rate, pauses, filler words)
// from answer transcripts and turns them into confidence scores.
package analysis

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/randx"
)

// FillerWords is the fixed list of verbal fillers that are counted.
var FillerWords = []string{
	"um", "uh", "like", "you know", "basically", "actually", "so", "right",
	"well", "literally", "honestly", "I mean", "kind of", "sort of", "just",
	"really", "very", "obviously", "essentially",
}

const (
	idealSpeechRate = 150.0
	pauseSeconds    = 1.2
)

var (
	fillerPatterns = compileFillers(FillerWords)
	pausePattern   = regexp.MustCompile(`\.\.\.|—|,\s*,|\s{3,}`)
)

func compileFillers(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

// Analyzer computes delivery metrics. Volume consistency has no real audio
// source and is drawn from rng.
type Analyzer struct {
	rng randx.Source
}

// NewAnalyzer returns an Analyzer; a nil rng uses a time-seeded source.
func NewAnalyzer(rng randx.Source) *Analyzer {
	if rng == nil {
		rng = randx.NewTimeSeeded()
	}
	return &Analyzer{rng: rng}
}

// perMinute converts a count to a per-minute rate; non-positive durations yield 0.
func perMinute(count float64, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return count / (durationSeconds / 60)
}

// AnalyzeTranscript measures a transcript spoken over durationSeconds.
func (a *Analyzer) AnalyzeTranscript(transcript string, durationSeconds float64) domain.AudioAnalysis {
	totalWords := len(strings.Fields(transcript))

	totalFillers := 0
	for _, re := range fillerPatterns {
		totalFillers += len(re.FindAllStringIndex(transcript, -1))
	}

	pauses := len(pausePattern.FindAllStringIndex(transcript, -1))
	pauseFrequency := perMinute(float64(pauses), durationSeconds)

	avgPause := 0.0
	if pauseFrequency > 0 {
		avgPause = pauseSeconds
	}
	ratio := 0.0
	if totalWords > 0 {
		ratio = float64(totalFillers) / float64(totalWords)
	}

	return domain.AudioAnalysis{
		SpeechRate:           perMinute(float64(totalWords), durationSeconds),
		PauseFrequency:       pauseFrequency,
		AveragePauseDuration: avgPause,
		VolumeConsistency:    randx.Between(a.rng, 70, 95),
		FillerWordRatio:      ratio,
		TotalWords:           totalWords,
		TotalFillerWords:     totalFillers,
	}
}

// CalculateConfidence scores an analysis. Speech rate is best at 150 wpm;
// pauses and fillers reduce the score. Trend is left empty.
func CalculateConfidence(an domain.AudioAnalysis) domain.ConfidenceMetrics {
	speechRateScore := math.Max(0, 100-math.Abs(an.SpeechRate-idealSpeechRate)/idealSpeechRate*100)
	pauseScore := math.Max(0, 100-an.PauseFrequency*10)
	fillerScore := math.Max(0, 100-an.FillerWordRatio*500)
	volumeScore := an.VolumeConsistency

	overall := speechRateScore*0.25 + pauseScore*0.20 + fillerScore*0.35 + volumeScore*0.20

	return domain.ConfidenceMetrics{
		Overall:         math.Round(clamp(overall, 0, 100)),
		SpeechRateScore: math.Round(speechRateScore),
		PauseScore:      math.Round(pauseScore),
		FillerScore:     math.Round(fillerScore),
		VolumeScore:     math.Round(volumeScore),
		Trend:           []float64{},
	}
}

// Confidence runs AnalyzeTranscript followed by CalculateConfidence.
func (a *Analyzer) Confidence(transcript string, durationSeconds float64) (domain.AudioAnalysis, domain.ConfidenceMetrics) {
	an := a.AnalyzeTranscript(transcript, durationSeconds)
	return an, CalculateConfidence(an)
}

// AnalyzeFillerWords breaks down filler usage by word, most frequent first.
func AnalyzeFillerWords(transcript string, durationSeconds float64) domain.FillerWordAnalysis {
	dist := []domain.FillerDistribution{}
	total := 0
	for i, re := range fillerPatterns {
		n := len(re.FindAllStringIndex(transcript, -1))
		if n == 0 {
			continue
		}
		total += n
		dist = append(dist, domain.FillerDistribution{Word: FillerWords[i], Count: n})
	}
	for i := range dist {
		dist[i].Percentage = float64(dist[i].Count) / float64(total) * 100
	}
	slices.SortStableFunc(dist, func(x, y domain.FillerDistribution) int { return y.Count - x.Count })

	unique := make([]string, len(dist))
	for i, d := range dist {
		unique[i] = d.Word
	}

	rate := perMinute(float64(total), durationSeconds)
	return domain.FillerWordAnalysis{
		TotalCount:    total,
		UniqueWords:   unique,
		Distribution:  dist,
		RatePerMinute: rate,
		Severity:      fillerSeverity(rate),
	}
}

func fillerSeverity(ratePerMinute float64) domain.FillerSeverity {
	switch {
	case ratePerMinute > 15:
		return domain.SeverityCritical
	case ratePerMinute > 10:
		return domain.SeverityHigh
	case ratePerMinute > 5:
		return domain.SeverityModerate
	default:
		return domain.SeverityLow
	}
}

// FillerInstances converts a breakdown into the per-answer instance list.
// Timestamps are unknown without real audio and are left at zero.
func FillerInstances(fa domain.FillerWordAnalysis) []domain.FillerWordInstance {
	out := make([]domain.FillerWordInstance, 0, len(fa.Distribution))
	for _, d := range fa.Distribution {
		out = append(out, domain.FillerWordInstance{Word: d.Word, Count: d.Count})
	}
	return out
}

// MockConfidence returns plausible random metrics for demo mode.
func (a *Analyzer) MockConfidence() domain.ConfidenceMetrics {
	base := randx.Between(a.rng, 55, 85)
	trend := make([]float64, 5)
	for i := range trend {
		trend[i] = math.Round(base + (a.rng.Float64()-0.5)*20)
	}
	return domain.ConfidenceMetrics{
		Overall:         math.Round(base),
		SpeechRateScore: math.Round(randx.Between(a.rng, 60, 95)),
		PauseScore:      math.Round(randx.Between(a.rng, 50, 90)),
		FillerScore:     math.Round(randx.Between(a.rng, 40, 90)),
		VolumeScore:     math.Round(randx.Between(a.rng, 65, 95)),
		Trend:           trend,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
