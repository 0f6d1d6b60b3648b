// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// campus directory. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusdir/internal/handlers"
	"campusdir/internal/middleware"
	"campusdir/internal/session"
)

// Options carries the handler groups and cross-cutting dependencies the
// router wires together.
type Options struct {
	Sessions    *session.Store
	Admin       *handlers.Admin
	Auth        *handlers.Auth
	Public      *handlers.Public
	Submissions *handlers.Submissions

	// SubmitLimiter throttles the public suggestion endpoint. Optional.
	SubmitLimiter *middleware.RateLimiter

	// SecureCookies marks CSRF cookies Secure; set when serving over TLS.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(opts.Sessions))

	// Health check and metrics scrape, no auth, no CSRF.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	// Public read API.
	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", opts.Public.Categories)
			r.Get("/{id}", opts.Public.Category)
			r.Get("/{id}/breadcrumb", opts.Public.Breadcrumb)
		})
		r.Get("/browse", opts.Public.Browse)
		r.Get("/services", opts.Public.Services)

		// Public suggestion intake, rate limited.
		r.Group(func(r chi.Router) {
			if opts.SubmitLimiter != nil {
				r.Use(opts.SubmitLimiter.Middleware)
			}
			r.Post("/submissions", opts.Submissions.Create)
		})
	})

	// Admin API, CSRF-protected.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		// Login is reachable without a session.
		r.Post("/login", opts.Auth.Login)
		r.Post("/logout", opts.Auth.Logout)

		// 2FA enrollment, requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", opts.Auth.Setup2FA)
			r.Post("/2fa/verify", opts.Auth.Verify2FA)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/me", opts.Auth.Me)
			r.Get("/dashboard", opts.Admin.Dashboard)
			r.Get("/audit", opts.Admin.AuditLog)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", opts.Admin.CreateCategory)
				r.Put("/{id}", opts.Admin.UpdateCategory)
				r.Delete("/{id}", opts.Admin.DeleteCategory)
			})

			r.Route("/services", func(r chi.Router) {
				r.Post("/", opts.Admin.CreateService)
				r.Put("/{id}", opts.Admin.UpdateService)
				r.Delete("/{id}", opts.Admin.DeleteService)
			})

			r.Route("/submissions", func(r chi.Router) {
				r.Get("/", opts.Admin.Submissions)
				r.Put("/{id}", opts.Admin.ResolveSubmission)
			})

			// User management, admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", opts.Admin.Users)
				r.Post("/", opts.Admin.CreateUser)
				r.Post("/{id}/reset-2fa", opts.Admin.ResetUser2FA)
				r.Delete("/{id}", opts.Admin.DeleteUser)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
