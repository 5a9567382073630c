package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/career-readiness/internal/adapter/httpserver"
	"github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/config"
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

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(30 * time.Second))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/v1", func(v1 chi.Router) {
		// Mutating endpoints share a per-IP budget.
		v1.Group(func(wr chi.Router) {
			if cfg.RateLimitPerMin > 0 {
				wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
			}
			wr.Post("/interviews", srv.StartInterviewHandler())
			wr.Post("/interviews/{id}/next", srv.NextInteractionHandler())
			wr.Post("/interviews/{id}/answers", srv.SubmitInterviewAnswerHandler())
			wr.Post("/interviews/{id}/end", srv.EndInterviewHandler())

			wr.Post("/tests", srv.StartTestHandler())
			wr.Post("/tests/{id}/answers", srv.SubmitTestAnswerHandler())
			wr.Post("/tests/{id}/submit", srv.SubmitTestHandler())

			wr.Post("/communication/tests", srv.StartCommunicationHandler())
			wr.Post("/communication/tests/{id}/tasks/{taskId}", srv.SubmitCommunicationTaskHandler())

			wr.Post("/resume/analyze", srv.AnalyzeResumeHandler())

			wr.Post("/quick-tests", srv.StartQuickTestHandler())
			wr.Post("/quick-tests/{id}/submit", srv.SubmitQuickTestHandler())
		})

		v1.Get("/interviews/{id}", srv.GetInterviewHandler())
		v1.Get("/tests/config", srv.TestConfigHandler())
		v1.Get("/tests/{id}/result", srv.TestResultHandler())
		v1.Get("/communication/tests/{id}/result", srv.CommunicationResultHandler())
		v1.Get("/resume/roles", srv.ResumeRolesHandler())
		v1.Get("/resume/analyses/{id}", srv.GetResumeAnalysisHandler())
		v1.Get("/users/{userId}/progress", srv.ProgressHandler())
		v1.Get("/users/{userId}/activity", srv.ActivityHandler())
	})

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}
