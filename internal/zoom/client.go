// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

// Package zoom implements the Zoom OAuth and Clips API client used by the
// sync manager: client-credentials token acquisition and cursor-paginated
// clip retrieval with a bounded page walk.
package zoom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/clipstream/internal/config"
)

// maxErrorBodySize limits how much of a response body is read for error
// reporting, preventing unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// Client talks to the Zoom OAuth and Clips endpoints.
//
// Thread Safety: safe for concurrent use. Each request creates its own
// HTTP request; the rate limiter serializes page fetches.
type Client struct {
	tokenURL     string
	apiBaseURL   string
	clientID     string
	clientSecret string
	pageSize     int
	maxPages     int
	client       *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a Zoom API client from configuration.
func NewClient(cfg *config.ZoomConfig, sync *config.SyncConfig) *Client {
	return &Client{
		tokenURL:     cfg.TokenURL,
		apiBaseURL:   cfg.APIBaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		pageSize:     sync.PageSize,
		maxPages:     sync.MaxPages,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		// Zoom allows a handful of requests per second on the clips
		// endpoint; 4/s with a small burst stays well under it.
		limiter: rate.NewLimiter(rate.Limit(4), 2),
	}
}

// tokenResponse is the Zoom OAuth token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AcquireToken performs the client-credentials grant and returns a fresh
// access token. Tokens are not cached; every sync cycle requests a new one
// and discards it afterward, so expiry never has to be tracked.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	reqURL := c.tokenURL + "?grant_type=client_credentials"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: create token request: %v", ErrAuth, err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request failed: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return "", fmt.Errorf("%w: token endpoint returned HTTP %d: %s", ErrAuth, resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", ErrAuth, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned empty access token", ErrAuth)
	}
	return tok.AccessToken, nil
}

// clipsPage is one page of the Zoom clips listing.
type clipsPage struct {
	Clips         []Clip `json:"clips"`
	NextPageToken string `json:"next_page_token"`
}

// ListAllClips walks the cursor-paginated clips listing for the authorized
// user and returns every clip in API order. The walk follows next_page_token
// until the API returns an empty token, or fails with ErrPageLimit once the
// configured page cap is exceeded (a cycle never loops forever on a cursor
// that does not converge).
func (c *Client) ListAllClips(ctx context.Context, token string) ([]Clip, error) {
	var all []Clip
	nextPageToken := ""

	for page := 0; ; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("%w: %d pages fetched without an empty next_page_token", ErrPageLimit, c.maxPages)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}

		result, err := c.fetchPage(ctx, token, nextPageToken)
		if err != nil {
			return nil, err
		}

		all = append(all, result.Clips...)
		nextPageToken = result.NextPageToken
		if nextPageToken == "" {
			return all, nil
		}
	}
}

// fetchPage retrieves a single page of the clips listing.
func (c *Client) fetchPage(ctx context.Context, token, nextPageToken string) (*clipsPage, error) {
	params := url.Values{}
	params.Set("user_id", "me")
	params.Set("page_size", fmt.Sprintf("%d", c.pageSize))
	if nextPageToken != "" {
		params.Set("next_page_token", nextPageToken)
	}
	reqURL := fmt.Sprintf("%s/users/me/clips?%s", c.apiBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create clips request: %v", ErrFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: clips request failed: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%w: clips endpoint returned HTTP %d: %s", ErrFetch, resp.StatusCode, body)
	}

	var page clipsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode clips response: %v", ErrFetch, err)
	}
	return &page, nil
}

// readBodyForError reads a response body for error reporting (max 64KB).
// Returns the body content or a placeholder if reading fails.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
