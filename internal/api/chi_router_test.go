// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/clipstream/internal/config"
)

func newTestRouter(store *mockClipStore) http.Handler {
	cfg := &config.Config{
		Salesforce: config.SalesforceConfig{
			ClientID: "sf-client",
			LoginURL: "https://login.salesforce.com",
		},
		Security: config.SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
	}
	return NewRouter(store, newMockSyncManager(), cfg).Setup()
}

func TestRouterRoutes(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/clips", "", http.StatusOK},
		{http.MethodPost, "/process-clips", `{"clipIds":["clip-1"]}`, http.StatusOK},
		{http.MethodGet, "/salesforce-auth", "", http.StatusFound},
		{http.MethodPost, "/webhook", `{"event":"clip.created"}`, http.StatusOK},
		{http.MethodGet, "/sync/status", "", http.StatusOK},
		{http.MethodPost, "/sync/trigger", "", http.StatusAccepted},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/nonexistent", "", http.StatusNotFound},
		{http.MethodDelete, "/clips", "", http.StatusMethodNotAllowed},
	}

	router := newTestRouter(newMockClipStore())
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status: expected %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(newMockClipStore())

	req := httptest.NewRequest(http.MethodOptions, "/clips", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: expected *, got %q", got)
	}
}

func TestRouterMetricsExposition(t *testing.T) {
	router := newTestRouter(newMockClipStore())

	// Generate one request so the counters exist, then scrape.
	warm := httptest.NewRequest(http.MethodGet, "/clips", nil)
	router.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics scrape failed with %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("API request counter missing from exposition")
	}
}
