// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/jetlog/internal/auth"
	"github.com/tomtom215/jetlog/internal/middleware"
)

// Router wires the handler and middleware into a chi route tree.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates the router. The auth middleware's 401 responses are
// switched to the JSON envelope.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, config *ChiMiddlewareConfig) *Router {
	authMiddleware.Unauthorized = func(w http.ResponseWriter, r *http.Request, message string) {
		WriteError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message)
	}
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		chiMiddleware: NewChiMiddleware(config),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	mw := router.chiMiddleware

	// Global middleware, applied to every route in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.AccessLog))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("No route for " + sanitizeLogValue(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// Unauthenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/config", h.ClientConfig)
		r.Handle("/metrics", promhttp.Handler())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.With(mw.RateLimitLogin()).Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(router.auth.Authenticate)

			r.Get("/users/me", h.CurrentUser)
			r.Patch("/users/me", h.UpdateProfile)

			r.Route("/flights", func(r chi.Router) {
				r.With(chiMiddleware(middleware.Compression)).Get("/", h.GetFlights)
				r.Post("/", h.CreateFlight)
				r.Patch("/", h.UpdateFlight)
				r.Delete("/", h.DeleteFlight)
				r.Post("/many", h.CreateFlights)
				r.Get("/distance", h.Distance)
				r.Get("/duration", h.Duration)

				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimitPass())
					r.Post("/connections", h.InferConnections)
					r.Post("/airlines_from_callsigns", h.AirlinesFromCallsigns)
					r.Post("/enrich", h.EnrichFlights)
				})
			})

			r.Get("/statistics", h.Statistics)

			r.With(chiMiddleware(middleware.Compression)).Get("/airports", h.SearchAirports)
			r.Get("/airports/{code}", h.GetAirport)
			r.With(chiMiddleware(middleware.Compression)).Get("/airlines", h.SearchAirlines)
			r.Get("/airlines/{code}", h.GetAirline)

			r.With(mw.RateLimitSync()).Post("/fr24/sync", h.SyncFR24)

			r.With(mw.RateLimitExport(), chiMiddleware(middleware.Compression)).
				Post("/exporting/{format}", h.Export)

			r.With(mw.RateLimitWebSocket()).Get("/ws", h.WebSocket)
		})
	})

	return r
}
