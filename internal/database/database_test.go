// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/clipstream/internal/config"
	"github.com/tomtom215/clipstream/internal/models"
)

// openTestDB connects to the database named by TEST_DATABASE_URL and clears
// the clip tables. Tests are skipped when the variable is unset so the suite
// runs without a Postgres instance.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database tests")
	}

	ctx := context.Background()
	db, err := New(ctx, config.DatabaseConfig{URL: url, MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(db.Close)

	for _, table := range []string{"clip_statuses", "crm_tokens", "clips"} {
		if _, err := db.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	return db
}

func testClip(id string) *models.Clip {
	return &models.Clip{
		ClipID:      id,
		Title:       "clip " + id,
		DownloadURL: fmt.Sprintf("https://zoom.us/clips/download/%s", id),
	}
}

func TestUpsertClipFirstWriteWins(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	inserted, err := db.UpsertClip(ctx, testClip("clip-1"))
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if !inserted {
		t.Error("first write should report an insert")
	}

	// A later observation with different fields must be ignored.
	changed := testClip("clip-1")
	changed.Title = "renamed upstream"
	inserted, err = db.UpsertClip(ctx, changed)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if inserted {
		t.Error("duplicate write should report no insert")
	}

	clips, err := db.ListClipsWithStatus(ctx)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}
	if clips[0].Title != "clip clip-1" {
		t.Errorf("original title should win, got %q", clips[0].Title)
	}
}

func TestListClipsWithStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	meetingID := "847201"
	older := testClip("clip-old")
	older.RecordingMeetingID = &meetingID
	for _, clip := range []*models.Clip{older, testClip("clip-new")} {
		if _, err := db.UpsertClip(ctx, clip); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		time.Sleep(10 * time.Millisecond) // distinct created_at for ordering
	}
	if err := db.MarkProcessed(ctx, "clip-old", "mock-article-id"); err != nil {
		t.Fatalf("mark processed failed: %v", err)
	}

	clips, err := db.ListClipsWithStatus(ctx)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}

	// Newest first; the unprocessed clip reports defaults, not nulls.
	if clips[0].ClipID != "clip-new" {
		t.Errorf("expected clip-new first, got %q", clips[0].ClipID)
	}
	if clips[0].IsProcessed {
		t.Error("unprocessed clip should report is_processed=false")
	}
	if clips[0].KnowledgeArticleID != nil {
		t.Error("unprocessed clip should have no article ID")
	}

	if !clips[1].IsProcessed {
		t.Error("processed clip should report is_processed=true")
	}
	if clips[1].KnowledgeArticleID == nil || *clips[1].KnowledgeArticleID != "mock-article-id" {
		t.Errorf("processed clip article ID: got %v", clips[1].KnowledgeArticleID)
	}
	if clips[1].RecordingMeetingID == nil || *clips[1].RecordingMeetingID != meetingID {
		t.Errorf("recording meeting ID lost: got %v", clips[1].RecordingMeetingID)
	}
}

func TestMarkProcessedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.UpsertClip(ctx, testClip("clip-1")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := db.MarkProcessed(ctx, "clip-1", "article-a"); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if err := db.MarkProcessed(ctx, "clip-1", "article-b"); err != nil {
		t.Fatalf("second mark failed: %v", err)
	}

	clips, err := db.ListClipsWithStatus(ctx)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if clips[0].KnowledgeArticleID == nil || *clips[0].KnowledgeArticleID != "article-b" {
		t.Errorf("reprocessing should overwrite the article ID, got %v", clips[0].KnowledgeArticleID)
	}
}

func TestCountClips(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	count, err := db.CountClips(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d", count)
	}

	for i := 0; i < 3; i++ {
		if _, err := db.UpsertClip(ctx, testClip(fmt.Sprintf("clip-%d", i))); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	count, err = db.CountClips(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 clips, got %d", count)
	}
}

func TestCRMTokenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tok, err := db.CurrentCRMToken(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if tok != nil {
		t.Fatal("expected no token before the first exchange")
	}

	if err := db.SaveCRMToken(ctx, "tok-1", "https://na1.salesforce.com"); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := db.SaveCRMToken(ctx, "tok-2", "https://na2.salesforce.com"); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	tok, err = db.CurrentCRMToken(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if tok == nil {
		t.Fatal("expected a stored token")
	}
	if tok.AccessToken != "tok-2" {
		t.Errorf("latest token should win, got %q", tok.AccessToken)
	}
	if tok.InstanceURL != "https://na2.salesforce.com" {
		t.Errorf("instance URL: got %q", tok.InstanceURL)
	}
}
