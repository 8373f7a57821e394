// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/clipstream/internal/models"
)

// UpsertClip inserts a clip if no row with its clip_id exists, otherwise it
// does nothing. The first observation of a clip wins permanently; changed
// titles or refreshed download URLs on later syncs are intentionally ignored.
// Returns true when a new row was inserted.
func (db *DB) UpsertClip(ctx context.Context, clip *models.Clip) (bool, error) {
	tag, err := db.pool.Exec(ctx, `
		INSERT INTO clips (clip_id, title, download_url, recording_meeting_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (clip_id) DO NOTHING`,
		clip.ClipID, clip.Title, clip.DownloadURL, clip.RecordingMeetingID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: upsert clip %s: %v", ErrStore, clip.ClipID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListClipsWithStatus returns every stored clip joined with its processing
// status, newest first. Clips without a status row report is_processed=false
// and a null knowledge article ID.
func (db *DB) ListClipsWithStatus(ctx context.Context) ([]models.ClipWithStatus, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT c.clip_id, c.title, c.download_url, c.recording_meeting_id, c.created_at,
		       COALESCE(s.is_processed, false), s.knowledge_article_id
		FROM clips c
		LEFT JOIN clip_statuses s ON s.clip_id = c.clip_id
		ORDER BY c.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list clips: %v", ErrStore, err)
	}
	defer rows.Close()

	clips := make([]models.ClipWithStatus, 0)
	for rows.Next() {
		var c models.ClipWithStatus
		if err := rows.Scan(
			&c.ClipID, &c.Title, &c.DownloadURL, &c.RecordingMeetingID, &c.CreatedAt,
			&c.IsProcessed, &c.KnowledgeArticleID,
		); err != nil {
			return nil, fmt.Errorf("%w: scan clip row: %v", ErrStore, err)
		}
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate clip rows: %v", ErrStore, err)
	}
	return clips, nil
}

// MarkProcessed records that a clip was turned into a knowledge article.
// Unlike clip inserts this is a full overwrite so the operation stays
// idempotent for repeated processing requests.
func (db *DB) MarkProcessed(ctx context.Context, clipID, articleID string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO clip_statuses (clip_id, is_processed, knowledge_article_id)
		VALUES ($1, true, $2)
		ON CONFLICT (clip_id) DO UPDATE
		SET is_processed = EXCLUDED.is_processed,
		    knowledge_article_id = EXCLUDED.knowledge_article_id`,
		clipID, articleID,
	)
	if err != nil {
		return fmt.Errorf("%w: mark clip %s processed: %v", ErrStore, clipID, err)
	}
	return nil
}

// CountClips returns the number of stored clips, used by the status endpoint.
func (db *DB) CountClips(ctx context.Context) (int64, error) {
	var n int64
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM clips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count clips: %v", ErrStore, err)
	}
	return n, nil
}
