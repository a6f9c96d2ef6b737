package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsMiddleware_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	mw := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) }))
	mw.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Result().StatusCode)
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	before := counterValue(HTTPRequestsTotal.WithLabelValues("/v1/items/{id}", http.MethodGet, "OK"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/items/42", nil))
	after := counterValue(HTTPRequestsTotal.WithLabelValues("/v1/items/{id}", http.MethodGet, "OK"))
	assert.Equal(t, before+1, after)
}

func TestDomainMetricHelpers(t *testing.T) {
	before := counterValue(ProviderFallbackTotal.WithLabelValues("score", "openai", "network"))
	RecordFallback("score", "openai", "network")
	assert.Equal(t, before+1, counterValue(ProviderFallbackTotal.WithLabelValues("score", "openai", "network")))

	denied := counterValue(AIRateLimitDecisionsTotal.WithLabelValues("openai", "denied"))
	RecordRateLimitDecision("openai", "denied")
	assert.Equal(t, denied+1, counterValue(AIRateLimitDecisionsTotal.WithLabelValues("openai", "denied")))

	RecordTransition("idle", "setup")
	assert.GreaterOrEqual(t, counterValue(InterviewTransitionsTotal.WithLabelValues("idle", "setup")), 1.0)

	ObserveDimensionScore("depth", "mock", 4)
	ObserveDimensionScore("depth", "mock", 9) // ignored

	halo := counterValue(BiasFlagsTotal.WithLabelValues("halo-effect"))
	ObserveReport(3.4, "hire", []string{"halo-effect"})
	assert.Equal(t, halo+1, counterValue(BiasFlagsTotal.WithLabelValues("halo-effect")))
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
