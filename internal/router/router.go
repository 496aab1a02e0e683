// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router wires the HTTP routes and middleware chains for the
// Inkwell API server.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// Generation endpoints get a much tighter budget than reads: every
// accepted request locks credits and occupies a provider slot.
const (
	apiRateLimit  = 120
	apiRateWindow = time.Minute
	genRateLimit  = 10
	genRateWindow = time.Minute
)

// New creates the configured chi router with all middleware and routes.
// The returned limiters must be stopped on shutdown.
func New(users middleware.Authenticator, api *handlers.API) (chi.Router, []*middleware.RateLimiter) {
	r := chi.NewRouter()

	apiLimiter := middleware.NewRateLimiter(apiRateLimit, apiRateWindow)
	genLimiter := middleware.NewRateLimiter(genRateLimit, genRateWindow)

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Authenticate(users))
	r.Use(middleware.Logger)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Use(apiLimiter.Middleware)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", api.JobCreate)
			r.Get("/", api.JobList)
			r.Get("/{id}", api.JobGet)
			r.Get("/{id}/progress", api.JobProgress)
			r.Get("/{id}/preview", api.JobPreview)

			r.Group(func(r chi.Router) {
				r.Use(genLimiter.Middleware)
				r.Post("/{id}/generate", api.JobGenerate)
			})
		})

		r.Get("/credits", api.Credits)
	})

	return r, []*middleware.RateLimiter{apiLimiter, genLimiter}
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
