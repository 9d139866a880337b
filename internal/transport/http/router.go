package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/config"
	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/infrastructure"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/services"
)

// NewRouter assembles the loopback status API: license endpoints, the
// Prometheus scrape handler and a liveness probe.
func NewRouter(svc services.LicenseService, metricsHandler http.Handler, cfg config.ServerConfig, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(traceMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	licenseHandler := NewLicenseHandler(svc, logger)
	r.Route("/api/license", func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			r.Use(rateLimitMiddleware(cfg.RateLimit))
		}
		r.Mount("/", licenseHandler.Routes())
	})

	return r
}

// traceMiddleware assigns each request a trace ID and carries it through
// context so handler logs correlate.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := infrastructure.EnsureTraceID(r.Context())
		w.Header().Set("X-Trace-Id", infrastructure.GetTraceID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware throttles activation attempts. The limiter is
// shared across requests: the API listens on loopback for one desktop
// session, per-client buckets would be overkill.
func rateLimitMiddleware(cfg config.RateLimit) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				render.Render(w, r, apperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
