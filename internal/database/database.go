// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

// Package database provides PostgreSQL persistence for clips, clip processing
// statuses, and CRM tokens, backed by a pgx connection pool.
package database

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/clipstream/internal/config"
	"github.com/tomtom215/clipstream/internal/logging"
)

// DB wraps the pgx connection pool and implements the clip, status, and token
// store interfaces consumed by the sync manager and the HTTP API.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a pgx pool from the configuration, verifies connectivity, and
// ensures the schema exists. The pool is shared by every component and closed
// once at shutdown; nothing else opens database connections.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: database URL is required", ErrStore)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database URL: %v", ErrStore, err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	// Hosted Postgres (Heroku and friends) terminates TLS with certs that do
	// not verify; the toggle mirrors rejectUnauthorized=false.
	if cfg.SSLInsecure && poolCfg.ConnConfig.TLSConfig != nil {
		poolCfg.ConnConfig.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in via DATABASE_SSL_INSECURE
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create connection pool: %v", ErrStore, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStore, err)
	}

	db := &DB{pool: pool}
	if err := db.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logging.Info().
		Str("component", "database").
		Str("host", poolCfg.ConnConfig.Host).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL connected")

	return db, nil
}

// Close releases the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping verifies database connectivity, used by readiness checks.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrStore, err)
	}
	return nil
}

// schemaStatements creates the tables on first boot. Schema evolution beyond
// this bootstrap is handled operationally, not by the service.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clips (
		clip_id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		download_url TEXT NOT NULL DEFAULT '',
		recording_meeting_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS clip_statuses (
		clip_id TEXT PRIMARY KEY REFERENCES clips(clip_id),
		is_processed BOOLEAN NOT NULL DEFAULT false,
		knowledge_article_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS crm_tokens (
		id INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		access_token TEXT NOT NULL,
		instance_url TEXT NOT NULL DEFAULT '',
		obtained_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func (db *DB) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", ErrStore, err)
		}
	}
	return nil
}
