// Package app wires the HTTP surface: middleware chain, routes and readiness.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/ai-interview-simulator/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpserver.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	reqTimeout := orDefault(cfg.RequestTimeout, 30*time.Second)
	completeTimeout := orDefault(cfg.CompleteTimeout, 4*time.Minute)
	perMin := cfg.RateLimitPerMin
	if perMin <= 0 {
		perMin = 120
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(httpserver.AcceptJSON)

		// read-only
		v1.Group(func(ro chi.Router) {
			ro.Use(httpserver.TimeoutMiddleware(reqTimeout))
			ro.Get("/questions", srv.QuestionsHandler())
			ro.Get("/rubrics", srv.RubricsHandler())
			ro.Get("/interview", srv.SnapshotHandler())
			ro.Get("/interview/report", srv.ReportHandler())
		})

		// mutating
		v1.Group(func(mu chi.Router) {
			mu.Use(httprate.LimitByIP(perMin, time.Minute))
			mu.Group(func(g chi.Router) {
				g.Use(httpserver.TimeoutMiddleware(reqTimeout))
				g.Put("/interview/config", srv.ConfigHandler())
				g.Put("/interview/api-key", srv.APIKeyHandler())
				g.Post("/interview/start", srv.StartHandler())
				g.Post("/interview/answers", srv.AnswerHandler())
				g.Post("/interview/next", srv.NextHandler())
				g.Post("/interview/reset", srv.ResetHandler())
				g.Post("/analysis/confidence", srv.ConfidenceHandler())
				g.Post("/bias/sanitize", srv.SanitizeHandler())
			})
			mu.Group(func(g chi.Router) {
				g.Use(httpserver.TimeoutMiddleware(completeTimeout))
				g.Post("/interview/complete", srv.CompleteHandler())
				g.Post("/interview/transcribe", srv.TranscribeHandler())
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/readyz", srv.ReadyzHandler())

	return httpserver.SecurityHeaders(r)
}
