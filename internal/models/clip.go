// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

// Package models defines the shared data structures exchanged between the
// Zoom client, the database layer, and the HTTP API.
package models

import (
	"time"
)

// Clip is a Zoom clip as persisted in the clips table. Rows are created by
// sync cycles and never updated or deleted afterward; the first write for a
// clip_id wins and later observations of the same clip are ignored.
type Clip struct {
	ClipID             string    `json:"clip_id" db:"clip_id"`
	Title              string    `json:"title" db:"title"`
	DownloadURL        string    `json:"download_url" db:"download_url"`
	RecordingMeetingID *string   `json:"recording_meeting_id" db:"recording_meeting_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// ClipStatus is the processing state of a clip, written by the Status API.
// A missing row means the clip has not been processed.
type ClipStatus struct {
	ClipID             string  `json:"clip_id" db:"clip_id"`
	IsProcessed        bool    `json:"is_processed" db:"is_processed"`
	KnowledgeArticleID *string `json:"knowledge_article_id" db:"knowledge_article_id"`
}

// ClipWithStatus is the joined view returned by the clip listing endpoint:
// every stored clip merged with its processing status, unprocessed clips
// reporting is_processed=false and a null article ID.
type ClipWithStatus struct {
	ClipID             string    `json:"clip_id"`
	Title              string    `json:"title"`
	DownloadURL        string    `json:"download_url"`
	RecordingMeetingID *string   `json:"recording_meeting_id"`
	CreatedAt          time.Time `json:"created_at"`
	IsProcessed        bool      `json:"is_processed"`
	KnowledgeArticleID *string   `json:"knowledge_article_id"`
}

// CycleOutcome records the result of one sync cycle for observability.
type CycleOutcome struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ms"`
	Fetched   int           `json:"fetched"`
	Filtered  int           `json:"filtered"`
	Stored    int           `json:"stored"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// SyncStatus is the sync manager state exposed through the status endpoint.
type SyncStatus struct {
	Running      bool          `json:"running"`
	LastSyncTime *time.Time    `json:"last_sync_time"`
	LastOutcome  *CycleOutcome `json:"last_outcome"`
	Interval     string        `json:"interval"`
}

// CRMToken is a persisted Salesforce access token obtained through the OAuth
// callback. A single current row is kept and overwritten on each exchange.
type CRMToken struct {
	ID          int       `json:"id" db:"id"`
	AccessToken string    `json:"-" db:"access_token"`
	InstanceURL string    `json:"instance_url" db:"instance_url"`
	ObtainedAt  time.Time `json:"obtained_at" db:"obtained_at"`
}
