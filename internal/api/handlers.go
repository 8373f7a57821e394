// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

// Package api provides the HTTP surface of Clipstream: the clip listing and
// processing endpoints, the Salesforce OAuth handshake, the Zoom webhook
// receiver, and the operational endpoints.
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/clipstream/internal/config"
	"github.com/tomtom215/clipstream/internal/logging"
	"github.com/tomtom215/clipstream/internal/metrics"
	"github.com/tomtom215/clipstream/internal/models"
)

// mockArticleID is the placeholder knowledge article reference recorded until
// the real Salesforce write path lands.
const mockArticleID = "mock-article-id"

// maxWebhookBodySize bounds inbound webhook payload reads.
const maxWebhookBodySize = 1 << 20 // 1MB

// ClipStore defines the persistence operations the handlers need.
// Implemented by database.DB for production and by mocks in tests.
type ClipStore interface {
	ListClipsWithStatus(ctx context.Context) ([]models.ClipWithStatus, error)
	MarkProcessed(ctx context.Context, clipID, articleID string) error
	CountClips(ctx context.Context) (int64, error)
	SaveCRMToken(ctx context.Context, accessToken, instanceURL string) error
	Ping(ctx context.Context) error
}

// SyncManager defines the sync operations the handlers need.
type SyncManager interface {
	Status() models.SyncStatus
	TriggerSync(ctx context.Context) error
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	store      ClipStore
	syncer     SyncManager
	salesforce *config.SalesforceConfig
	httpClient *http.Client
}

// NewHandler creates a handler with its dependencies injected.
func NewHandler(store ClipStore, syncer SyncManager, sf *config.SalesforceConfig) *Handler {
	return &Handler{
		store:      store,
		syncer:     syncer,
		salesforce: sf,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Clips handles GET /clips.
//
// Returns every stored clip joined with its processing status as a bare JSON
// array, newest first. An empty store yields [] rather than null.
func (h *Handler) Clips(w http.ResponseWriter, r *http.Request) {
	clips, err := h.store.ListClipsWithStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch clips", err)
		return
	}
	respondRawJSON(w, http.StatusOK, clips)
}

// ProcessClipsRequest is the POST /process-clips request body.
type ProcessClipsRequest struct {
	ClipIDs []string `json:"clipIds" validate:"required,min=1,dive,required"`
}

// processClipsResponse is the POST /process-clips success body.
type processClipsResponse struct {
	Success bool `json:"success"`
}

// ProcessClips handles POST /process-clips.
//
// Marks each requested clip processed with the mock knowledge article ID.
// Clips are processed sequentially with no batch atomicity: a mid-batch
// failure leaves earlier clips marked, and because the status write is an
// idempotent overwrite the client can simply retry the whole batch.
func (h *Handler) ProcessClips(w http.ResponseWriter, r *http.Request) {
	var req ProcessClipsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body must be JSON with a clipIds array", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	for _, clipID := range req.ClipIDs {
		if err := h.store.MarkProcessed(r.Context(), clipID, mockArticleID); err != nil {
			respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process clips", err)
			return
		}
		metrics.ClipsProcessedTotal.Inc()
	}

	logging.Info().Int("count", len(req.ClipIDs)).Msg("Clips marked processed")
	respondRawJSON(w, http.StatusOK, processClipsResponse{Success: true})
}

// SalesforceAuth handles GET /salesforce-auth.
//
// Redirects the browser to the Salesforce authorization page requesting the
// api and refresh_token scopes.
func (h *Handler) SalesforceAuth(w http.ResponseWriter, r *http.Request) {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", h.salesforce.ClientID)
	params.Set("redirect_uri", h.callbackURL(r))
	params.Set("scope", "api refresh_token")

	authURL := h.salesforce.LoginURL + "/services/oauth2/authorize?" + params.Encode()
	http.Redirect(w, r, authURL, http.StatusFound)
}

// sfTokenResponse is the Salesforce token endpoint payload.
type sfTokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

// SalesforceCallback handles GET /salesforce-callback.
//
// Exchanges the authorization code for an access token, persists it, and
// sends the browser back to the front end.
func (h *Handler) SalesforceCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing authorization code", nil)
		return
	}

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("client_id", h.salesforce.ClientID)
	params.Set("client_secret", h.salesforce.ClientSecret)
	params.Set("redirect_uri", h.callbackURL(r))

	tokenURL := h.salesforce.LoginURL + "/services/oauth2/token?" + params.Encode()
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, tokenURL, http.NoBody)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Salesforce authentication failed", err)
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Salesforce authentication failed", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Salesforce authentication failed", nil)
		return
	}

	var tok sfTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Salesforce authentication failed", err)
		return
	}

	if err := h.store.SaveCRMToken(r.Context(), tok.AccessToken, tok.InstanceURL); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store Salesforce token", err)
		return
	}

	logging.Info().Str("instance_url", sanitizeLogValue(tok.InstanceURL)).Msg("Salesforce authorization complete")
	http.Redirect(w, r, "/", http.StatusFound)
}

// callbackURL builds the Salesforce redirect URI: the configured value when
// set, otherwise derived from the inbound request's host.
func (h *Handler) callbackURL(r *http.Request) string {
	if h.salesforce.RedirectURI != "" {
		return h.salesforce.RedirectURI
	}
	return "https://" + r.Host + "/salesforce-callback"
}

// webhookEvent is the subset of a Zoom webhook payload worth logging.
type webhookEvent struct {
	Event   string `json:"event"`
	EventTS int64  `json:"event_ts"`
}

// Webhook handles POST /webhook.
//
// Zoom events are acknowledged and logged but not yet acted upon; delivery
// succeeds regardless of payload shape so Zoom never retries into a wall.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	deliveryID := uuid.NewString()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		logging.Warn().Err(err).Str("delivery_id", deliveryID).Msg("Failed to read webhook body")
		w.WriteHeader(http.StatusOK)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err == nil && event.Event != "" {
		logging.Info().
			Str("delivery_id", deliveryID).
			Str("event", sanitizeLogValue(event.Event)).
			Int64("event_ts", event.EventTS).
			Msg("Webhook received")
	} else {
		logging.Info().
			Str("delivery_id", deliveryID).
			Int("bytes", len(body)).
			Msg("Webhook received with unrecognized payload")
	}

	w.WriteHeader(http.StatusOK)
}

// Health handles GET /health: a plain-text liveness probe.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// syncStatusData is the GET /sync/status payload.
type syncStatusData struct {
	Sync       models.SyncStatus `json:"sync"`
	TotalClips int64             `json:"total_clips"`
}

// SyncStatus handles GET /sync/status.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	total, err := h.store.CountClips(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to read sync status", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: syncStatusData{
			Sync:       h.syncer.Status(),
			TotalClips: total,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// SyncTrigger handles POST /sync/trigger.
//
// Kicks off a cycle in the background and returns immediately; the cycle
// outcome is observable through GET /sync/status.
func (h *Handler) SyncTrigger(w http.ResponseWriter, _ *http.Request) {
	go func() {
		if err := h.syncer.TriggerSync(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Manually triggered sync failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"message": "sync triggered"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
