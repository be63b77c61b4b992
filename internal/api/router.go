// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/facultypulse/internal/middleware"
)

// RouterConfig holds the HTTP-level settings of the router.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int // 0 disables rate limiting
	RateLimitWindow   time.Duration
}

// NewRouter mounts the handler on a chi router with the standard middleware
// chain.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(h *Handler, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "ETag"},
		MaxAge:         86400,
	}))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Use(securityHeaders)
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/health", h.Health)

		r.Get("/professors", h.ListProfessors)
		r.Get("/professors/{id}", h.GetProfessor)
		r.Get("/professors/{id}/trend", h.GetProfessorTrend)

		r.Route("/indices", func(r chi.Router) {
			r.Get("/meta", h.Meta)
			r.Get("/list-min", h.ListMin)
			r.Get("/pareto", h.Pareto)
			r.Get("/subjects", h.Subjects)
			r.Get("/subjects/{subject}", h.SubjectBoard)
		})

		r.Get("/subjects/{subject}/report", h.SubjectReport)
		r.Get("/subjects/{subject}/top", h.SubjectTop)

		r.Get("/recommendations", h.Recommendations)
		r.Get("/anomalies", h.Anomalies)
		r.Get("/compare", h.Compare)

		r.Get("/runs", h.Runs)
		r.Get("/runs/last", h.LastRun)
		r.Post("/runs", h.TriggerRun)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "route not found", nil)
	})

	return r
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
