// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/clipstream/internal/config"
	"github.com/tomtom215/clipstream/internal/middleware"
)

// Router wires handlers and middleware into the chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from the security configuration and handler
// dependencies.
func NewRouter(store ClipStore, syncer SyncManager, cfg *config.Config) *Router {
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled

	return &Router{
		handler:       NewHandler(store, syncer, &cfg.Salesforce),
		chiMiddleware: NewChiMiddleware(mwCfg),
	}
}

// Setup configures all HTTP routes.
//
// The front-end routes live at the root (not under /api) because the deployed
// UI calls them by bare path. Inbound requests are unauthenticated; the
// service is expected to sit behind platform-level access control.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Probe endpoints get permissive rate limiting so monitors can poll
	// aggressively without tripping the API limit.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/health", router.handler.Health)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/clips", router.handler.Clips)
		r.Post("/process-clips", router.handler.ProcessClips)
		r.Get("/salesforce-auth", router.handler.SalesforceAuth)
		r.Get("/salesforce-callback", router.handler.SalesforceCallback)
		r.Post("/webhook", router.handler.Webhook)

		r.Get("/sync/status", router.handler.SyncStatus)
		r.Post("/sync/trigger", router.handler.SyncTrigger)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
