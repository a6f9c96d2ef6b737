// Package observability provides logging, metrics, and tracing.
//
// It integrates with OpenTelemetry for tracing and Prometheus for metrics,
// and watches remote scorers for drift away from the expected distribution.
package observability

import (
	"log/slog"
	"sync"
)

// ScoreDriftMonitor compares a rolling window of dimension scores produced by
// one provider against per-dimension baselines.
type ScoreDriftMonitor struct {
	mu             sync.RWMutex
	provider       string
	baselineScores map[string]float64
	recentScores   map[string][]float64
	windowSize     int
	driftThreshold float64
}

// NewScoreDriftMonitor creates a monitor for provider.
func NewScoreDriftMonitor(provider string, windowSize int, driftThreshold float64) *ScoreDriftMonitor {
	if windowSize <= 0 {
		windowSize = 10
	}
	return &ScoreDriftMonitor{
		provider:       provider,
		baselineScores: make(map[string]float64),
		recentScores:   make(map[string][]float64),
		windowSize:     windowSize,
		driftThreshold: driftThreshold,
	}
}

// UpdateBaseline sets the expected mean score for a dimension.
func (sdm *ScoreDriftMonitor) UpdateBaseline(dimension string, score float64) {
	sdm.mu.Lock()
	defer sdm.mu.Unlock()
	sdm.baselineScores[dimension] = score
}

// RecordScore adds a score to the window and reports whether the full window
// drifted past the threshold.
func (sdm *ScoreDriftMonitor) RecordScore(dimension string, score float64) bool {
	sdm.mu.Lock()
	defer sdm.mu.Unlock()

	window := append(sdm.recentScores[dimension], score)
	if len(window) > sdm.windowSize {
		window = window[len(window)-sdm.windowSize:]
	}
	sdm.recentScores[dimension] = window

	if len(window) < sdm.windowSize {
		return false
	}
	drift := sdm.calculateDrift(dimension)
	ScoreDrift.WithLabelValues(dimension, sdm.provider).Set(drift)
	if drift <= sdm.driftThreshold {
		return false
	}
	slog.Warn("score drift detected",
		slog.String("provider", sdm.provider),
		slog.String("dimension", dimension),
		slog.Float64("drift", drift),
		slog.Float64("threshold", sdm.driftThreshold))
	return true
}

func (sdm *ScoreDriftMonitor) calculateDrift(dimension string) float64 {
	baseline, ok := sdm.baselineScores[dimension]
	if !ok {
		return 0
	}
	recent := sdm.recentScores[dimension]
	if len(recent) == 0 {
		return 0
	}
	avg := 0.0
	for _, s := range recent {
		avg += s
	}
	avg /= float64(len(recent))
	drift := avg - baseline
	if drift < 0 {
		drift = -drift
	}
	return drift
}

// GetDrift returns the current drift for a dimension.
func (sdm *ScoreDriftMonitor) GetDrift(dimension string) float64 {
	sdm.mu.RLock()
	defer sdm.mu.RUnlock()
	return sdm.calculateDrift(dimension)
}

// GetRecentScores returns a copy of the window for a dimension.
func (sdm *ScoreDriftMonitor) GetRecentScores(dimension string) []float64 {
	sdm.mu.RLock()
	defer sdm.mu.RUnlock()
	out := make([]float64, len(sdm.recentScores[dimension]))
	copy(out, sdm.recentScores[dimension])
	return out
}

// Reset clears recorded scores; baselines are kept.
func (sdm *ScoreDriftMonitor) Reset() {
	sdm.mu.Lock()
	defer sdm.mu.Unlock()
	sdm.recentScores = make(map[string][]float64)
}

// ScoreDriftManager hands out one monitor per provider, all seeded with the
// same baselines.
type ScoreDriftManager struct {
	mu             sync.Mutex
	monitors       map[string]*ScoreDriftMonitor
	baselines      map[string]float64
	windowSize     int
	driftThreshold float64
}

// NewScoreDriftManager creates a manager.
func NewScoreDriftManager(baselines map[string]float64, windowSize int, driftThreshold float64) *ScoreDriftManager {
	return &ScoreDriftManager{
		monitors:       make(map[string]*ScoreDriftMonitor),
		baselines:      baselines,
		windowSize:     windowSize,
		driftThreshold: driftThreshold,
	}
}

// Monitor returns or creates the monitor for provider.
func (m *ScoreDriftManager) Monitor(provider string) *ScoreDriftMonitor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mon, ok := m.monitors[provider]; ok {
		return mon
	}
	mon := NewScoreDriftMonitor(provider, m.windowSize, m.driftThreshold)
	for dim, b := range m.baselines {
		mon.baselineScores[dim] = b
	}
	m.monitors[provider] = mon
	return mon
}
