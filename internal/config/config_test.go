// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the minimum environment for Load to succeed.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("ZOOM_CLIENT_ID", "test-zoom-id")
	t.Setenv("ZOOM_CLIENT_SECRET", "test-zoom-secret")
	t.Setenv("DATABASE_URL", "postgres://clipstream:pw@localhost:5432/clipstream")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Zoom.TokenURL != "https://zoom.us/oauth/token" {
		t.Errorf("token URL default: got %q", cfg.Zoom.TokenURL)
	}
	if cfg.Zoom.APIBaseURL != "https://api.zoom.us/v2" {
		t.Errorf("API base URL default: got %q", cfg.Zoom.APIBaseURL)
	}
	if cfg.Sync.Interval != 5*time.Minute {
		t.Errorf("sync interval default: expected 5m, got %s", cfg.Sync.Interval)
	}
	if cfg.Sync.PageSize != 50 {
		t.Errorf("page size default: expected 50, got %d", cfg.Sync.PageSize)
	}
	if cfg.Sync.MaxPages != 100 {
		t.Errorf("max pages default: expected 100, got %d", cfg.Sync.MaxPages)
	}
	if !cfg.Sync.OnStartup {
		t.Error("sync on startup should default to true")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port default: expected 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ListenAddr() != "0.0.0.0:3000" {
		t.Errorf("listen addr: got %q", cfg.Server.ListenAddr())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults: got level=%q format=%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("SYNC_MAX_PAGES", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("PORT override: expected 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sync.Interval != 30*time.Second {
		t.Errorf("SYNC_INTERVAL override: expected 30s, got %s", cfg.Sync.Interval)
	}
	if cfg.Sync.MaxPages != 5 {
		t.Errorf("SYNC_MAX_PAGES override: expected 5, got %d", cfg.Sync.MaxPages)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("LOG_LEVEL override: expected debug, got %q", cfg.Logging.Level)
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORS origins: expected %d entries, got %v", len(want), cfg.Security.CORSOrigins)
	}
	for i, origin := range want {
		if cfg.Security.CORSOrigins[i] != origin {
			t.Errorf("CORS origin %d: expected %q, got %q", i, origin, cfg.Security.CORSOrigins[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "sync:\n  page_size: 25\nserver:\n  port: 9090\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sync.PageSize != 25 {
		t.Errorf("file override: expected page size 25, got %d", cfg.Sync.PageSize)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("file override: expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("env should beat file: expected 8080, got %d", cfg.Server.Port)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantMsg string
	}{
		{"missing zoom client id", "ZOOM_CLIENT_ID", "ZOOM_CLIENT_ID"},
		{"missing zoom client secret", "ZOOM_CLIENT_SECRET", "ZOOM_CLIENT_SECRET"},
		{"missing database url", "DATABASE_URL", "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error should name %s, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Zoom.ClientID = "id"
		cfg.Zoom.ClientSecret = "secret"
		cfg.Database.URL = "postgres://localhost/clipstream"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"postgresql scheme accepted", func(c *Config) { c.Database.URL = "postgresql://localhost/db" }, false},
		{"non-postgres database url", func(c *Config) { c.Database.URL = "mysql://localhost/db" }, true},
		{"bad token url scheme", func(c *Config) { c.Zoom.TokenURL = "ftp://zoom.us/oauth/token" }, true},
		{"token url without host", func(c *Config) { c.Zoom.TokenURL = "https://" }, true},
		{"zero sync interval", func(c *Config) { c.Sync.Interval = 0 }, true},
		{"page size too large", func(c *Config) { c.Sync.PageSize = 301 }, true},
		{"zero max pages", func(c *Config) { c.Sync.MaxPages = 0 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"min conns above max", func(c *Config) { c.Database.MinConns = 20 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"ZOOM_CLIENT_ID", "zoom.client_id"},
		{"SALESFORCE_LOGIN_URL", "salesforce.login_url"},
		{"DATABASE_URL", "database.url"},
		{"PORT", "server.port"},
		{"HTTP_PORT", "server.port"},
		{"SYNC_INTERVAL", "sync.interval"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q): expected %q, got %q", tt.key, tt.want, got)
		}
	}
}
