// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

// Package sync orchestrates the periodic clip synchronization cycle:
// acquire a Zoom token, walk the paginated clips listing, keep the
// "on the fly" clips, and insert the unseen ones.
//
// Cycle errors never stop the loop. A failed cycle is logged, recorded in
// the last outcome, and the next tick starts clean; persistence idempotence
// makes rerunning after any partial failure safe.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/clipstream/internal/config"
	"github.com/tomtom215/clipstream/internal/logging"
	"github.com/tomtom215/clipstream/internal/metrics"
	"github.com/tomtom215/clipstream/internal/models"
	"github.com/tomtom215/clipstream/internal/zoom"
)

// ClipStore defines the persistence operations the manager needs.
// Implemented by database.DB for production and by mocks in tests.
type ClipStore interface {
	UpsertClip(ctx context.Context, clip *models.Clip) (bool, error)
}

// ZoomAPI defines the Zoom operations the manager needs.
// Implemented by zoom.Client for production and by mocks in tests.
type ZoomAPI interface {
	AcquireToken(ctx context.Context) (string, error)
	ListAllClips(ctx context.Context, token string) ([]zoom.Clip, error)
}

// Manager runs the periodic clip sync cycle.
//
// Thread Safety:
//   - syncMu serializes cycle execution so a slow cycle and the next tick
//     (or a manual trigger) never run concurrently
//   - mu protects running, lastSync, and lastOutcome
type Manager struct {
	store    ClipStore
	client   ZoomAPI
	cfg      *config.SyncConfig
	running  bool
	lastSync time.Time
	lastOut  *models.CycleOutcome
	mu       sync.RWMutex
	syncMu   sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewManager creates a sync manager with its dependencies injected.
func NewManager(store ClipStore, client ZoomAPI, cfg *config.SyncConfig) *Manager {
	return &Manager{
		store:    store,
		client:   client,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic synchronization process. When configured, an
// initial cycle runs in the background so server startup is never blocked
// on the Zoom API.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.mu.Unlock()

	logging.Info().
		Dur("interval", m.cfg.Interval).
		Int("page_size", m.cfg.PageSize).
		Msg("Starting clip sync manager")

	// Add goroutines to the WaitGroup before starting them so Stop() cannot
	// call Wait() before all Add() calls complete.
	m.wg.Add(1)
	if m.cfg.OnStartup {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runCycle(ctx)
		}()
	}

	go m.syncLoop(ctx)
	return nil
}

// Stop gracefully stops the synchronization process, waiting for any
// in-flight cycle to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	m.mu.Unlock()

	logging.Info().Msg("Stopping clip sync manager")
	close(m.stopChan)
	m.wg.Wait()
	logging.Info().Msg("Clip sync manager stopped")
	return nil
}

// syncLoop runs the periodic synchronization.
func (m *Manager) syncLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// TriggerSync manually runs one synchronization cycle, waiting for any
// in-flight cycle first. Returns the cycle error for the caller to report;
// the scheduled loop keeps running regardless.
func (m *Manager) TriggerSync(ctx context.Context) error {
	return m.runCycle(ctx)
}

// runCycle executes one cycle under the sync mutex, records the outcome,
// and swallows the error after logging it.
func (m *Manager) runCycle(ctx context.Context) error {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	start := time.Now()
	fetched, filtered, stored, err := m.syncClips(ctx)
	duration := time.Since(start)

	outcome := &models.CycleOutcome{
		StartedAt: start,
		Duration:  duration,
		Fetched:   fetched,
		Filtered:  filtered,
		Stored:    stored,
		Success:   err == nil,
	}
	if err != nil {
		outcome.Error = err.Error()
		logging.Error().Err(err).
			Int("fetched", fetched).
			Int("stored", stored).
			Dur("duration", duration).
			Msg("Clip sync cycle failed")
	} else {
		logging.Info().
			Int("fetched", fetched).
			Int("on_the_fly", filtered).
			Int("stored", stored).
			Dur("duration", duration).
			Msg("Clip sync cycle complete")
	}

	metrics.RecordSyncCycle(duration, fetched, stored, err)

	m.mu.Lock()
	if err == nil {
		m.lastSync = start
	}
	m.lastOut = outcome
	m.mu.Unlock()

	return err
}

// syncClips performs the fetch-filter-store sequence of one cycle.
// Returns counts for observability alongside the first error encountered.
// A store failure mid-batch leaves earlier inserts in place; the next cycle
// re-fetches everything and the insert-if-absent write makes that harmless.
func (m *Manager) syncClips(ctx context.Context) (fetched, filtered, stored int, err error) {
	token, err := m.client.AcquireToken(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	clips, err := m.client.ListAllClips(ctx, token)
	if err != nil {
		return 0, 0, 0, err
	}
	fetched = len(clips)

	for i := range clips {
		clip := &clips[i]
		if !clip.IsOnTheFly() {
			continue
		}
		filtered++

		inserted, err := m.store.UpsertClip(ctx, &models.Clip{
			ClipID:             clip.ID,
			Title:              clip.Title,
			DownloadURL:        clip.DownloadURL,
			RecordingMeetingID: clip.MeetingIDOrNil(),
		})
		if err != nil {
			return fetched, filtered, stored, err
		}
		if inserted {
			stored++
		}
	}

	return fetched, filtered, stored, nil
}

// LastSyncTime returns the start time of the last successful cycle.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// Status returns the manager state for the status endpoint.
func (m *Manager) Status() models.SyncStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := models.SyncStatus{
		Running:     m.running,
		LastOutcome: m.lastOut,
		Interval:    m.cfg.Interval.String(),
	}
	if !m.lastSync.IsZero() {
		t := m.lastSync
		status.LastSyncTime = &t
	}
	return status
}
