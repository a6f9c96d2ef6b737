package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)
	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Estimated tokens sent to and received from AI providers",
		},
		[]string{"provider", "kind"},
	)
	// ProviderFallbackTotal counts every time a remote call was replaced by the
	// offline simulator. kind is a domain.FailureKind.
	ProviderFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_fallback_total",
			Help: "Remote provider calls replaced by the offline simulator",
		},
		[]string{"operation", "provider", "kind"},
	)
	// AIRateLimitDecisionsTotal counts shared token bucket outcomes:
	// allowed, denied, or error (Redis unreachable, call allowed).
	AIRateLimitDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_rate_limit_decisions_total",
			Help: "Token bucket decisions taken before AI provider calls",
		},
		[]string{"provider", "result"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=open, 2=half-open)",
		},
		[]string{"provider"},
	)

	InterviewTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_transitions_total",
			Help: "Interview session state transitions",
		},
		[]string{"from", "to"},
	)
	InterviewsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviews_completed_total",
			Help: "Completed interviews by hiring recommendation",
		},
		[]string{"recommendation"},
	)
	DimensionScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "answer_dimension_score",
			Help:    "Distribution of per-dimension answer scores ([1,5])",
			Buckets: []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
		},
		[]string{"dimension", "provider"},
	)
	OverallScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_overall_score",
			Help:    "Distribution of interview overall scores ([1,5])",
			Buckets: []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
		},
	)
	BiasFlagsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bias_flags_total",
			Help: "Bias flags raised by type",
		},
		[]string{"type"},
	)
	ScoreDrift = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "score_drift",
			Help: "Absolute drift of recent dimension scores from baseline",
		},
		[]string{"dimension", "provider"},
	)
)

// InitMetrics registers all collectors with the default registry.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AITokensTotal)
	prometheus.MustRegister(ProviderFallbackTotal)
	prometheus.MustRegister(AIRateLimitDecisionsTotal)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(InterviewTransitionsTotal)
	prometheus.MustRegister(InterviewsCompletedTotal)
	prometheus.MustRegister(DimensionScoreHistogram)
	prometheus.MustRegister(OverallScoreHistogram)
	prometheus.MustRegister(BiasFlagsTotal)
	prometheus.MustRegister(ScoreDrift)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// RecordFallback counts a remote call replaced by the simulator.
func RecordFallback(operation, provider, kind string) {
	ProviderFallbackTotal.WithLabelValues(operation, provider, kind).Inc()
}

// RecordRateLimitDecision counts one token bucket outcome for provider.
func RecordRateLimitDecision(provider, result string) {
	AIRateLimitDecisionsTotal.WithLabelValues(provider, result).Inc()
}

// RecordTransition counts a session state change.
func RecordTransition(from, to string) {
	InterviewTransitionsTotal.WithLabelValues(from, to).Inc()
}

// ObserveDimensionScore records one dimension score in [1,5].
func ObserveDimensionScore(dimension, provider string, score float64) {
	if score >= 1 && score <= 5 {
		DimensionScoreHistogram.WithLabelValues(dimension, provider).Observe(score)
	}
}

// ObserveReport records the outcome of a completed interview.
func ObserveReport(overall float64, recommendation string, biasTypes []string) {
	if overall >= 1 && overall <= 5 {
		OverallScoreHistogram.Observe(overall)
	}
	InterviewsCompletedTotal.WithLabelValues(recommendation).Inc()
	for _, t := range biasTypes {
		BiasFlagsTotal.WithLabelValues(t).Inc()
	}
}
