// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package services

import (
	"context"
	"fmt"
)

// StartStopManager matches the sync manager's lifecycle, letting this wrapper
// adapt it to suture's Serve pattern without modifying the manager.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService wraps the clip sync manager as a supervised service:
//
//  1. Calls Start(ctx) to begin the manager's internal goroutines
//  2. Blocks until the context is canceled
//  3. Calls Stop() and waits for those goroutines to finish
type SyncService struct {
	manager StartStopManager
	name    string
}

// NewSyncService creates a new sync service wrapper.
func NewSyncService(manager StartStopManager) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "clip-sync",
	}
}

// Serve implements suture.Service. If Start fails the error is returned
// immediately and suture restarts the service per its backoff policy.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sync manager stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it to identify the service.
func (s *SyncService) String() string {
	return s.name
}
