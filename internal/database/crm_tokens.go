// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tomtom215/clipstream/internal/models"
)

// SaveCRMToken stores the Salesforce access token obtained from the OAuth
// callback. A single current token is kept; each successful exchange
// overwrites the previous one.
func (db *DB) SaveCRMToken(ctx context.Context, accessToken, instanceURL string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO crm_tokens (id, access_token, instance_url, obtained_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    instance_url = EXCLUDED.instance_url,
		    obtained_at = EXCLUDED.obtained_at`,
		accessToken, instanceURL,
	)
	if err != nil {
		return fmt.Errorf("%w: save crm token: %v", ErrStore, err)
	}
	return nil
}

// CurrentCRMToken returns the stored Salesforce token, or nil when no
// authorization has completed yet.
func (db *DB) CurrentCRMToken(ctx context.Context) (*models.CRMToken, error) {
	var t models.CRMToken
	err := db.pool.QueryRow(ctx, `
		SELECT id, access_token, instance_url, obtained_at
		FROM crm_tokens WHERE id = 1`,
	).Scan(&t.ID, &t.AccessToken, &t.InstanceURL, &t.ObtainedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load crm token: %v", ErrStore, err)
	}
	return &t, nil
}
