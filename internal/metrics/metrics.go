// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

// Package metrics provides Prometheus instrumentation for the sync pipeline
// and the HTTP API.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/clipstream/internal/database"
	"github.com/tomtom215/clipstream/internal/zoom"
)

var (
	// Sync Cycle Metrics
	SyncCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_cycle_duration_seconds",
			Help:    "Duration of clip sync cycles in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_cycles_total",
			Help: "Total number of sync cycles by outcome",
		},
		[]string{"outcome", "error_type"},
	)

	SyncClipsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_clips_fetched_total",
			Help: "Total clips returned by the Zoom API across all cycles",
		},
	)

	SyncClipsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_clips_stored_total",
			Help: "Total new clips inserted into the store",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Clip Processing Metrics
	ClipsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clips_processed_total",
			Help: "Total clips marked processed through the API",
		},
	)
)

// RecordSyncCycle records the outcome of one sync cycle.
func RecordSyncCycle(duration time.Duration, fetched, stored int, err error) {
	SyncCycleDuration.Observe(duration.Seconds())
	SyncClipsFetched.Add(float64(fetched))
	SyncClipsStored.Add(float64(stored))

	if err == nil {
		SyncCyclesTotal.WithLabelValues("success", "").Inc()
		return
	}
	SyncCyclesTotal.WithLabelValues("failure", classifyError(err)).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// classifyError maps pipeline errors onto stable label values.
func classifyError(err error) string {
	switch {
	case errors.Is(err, zoom.ErrPageLimit):
		return "page_limit"
	case errors.Is(err, zoom.ErrAuth):
		return "auth"
	case errors.Is(err, zoom.ErrFetch):
		return "fetch"
	case errors.Is(err, database.ErrStore):
		return "store"
	default:
		return "unknown"
	}
}
