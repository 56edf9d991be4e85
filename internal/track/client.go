// Package track provides a client for the Toggl-style time-tracking REST
// API, covering the two calls the suggestion cache feeds on: listing
// recent time entries and starting a new timer.
package track

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"timeat/internal/ratelimit"
	"timeat/internal/utils"
	"timeat/recents"
)

const (
	// DefaultBaseURL is the production API base URL
	DefaultBaseURL = "https://api.track.toggl.com"

	clientName = "timeat"
)

// Config holds API connection settings
type Config struct {
	APIToken    string
	BaseURL     string // Override for testing
	WorkspaceID int64
}

// TimeEntry is the authoritative record shape returned by the API
type TimeEntry struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	ProjectID   *int64    `json:"project_id"`
	TagIDs      []int64   `json:"tag_ids"`
	Start       time.Time `json:"start"`
	Duration    int64     `json:"duration"` // negative while running
}

// Suggestion maps a time entry to its cached-configuration form
func (e TimeEntry) Suggestion() recents.Entry {
	return recents.Entry{
		ID:          e.ID,
		Description: e.Description,
		ProjectID:   e.ProjectID,
		TagIDs:      e.TagIDs,
	}
}

// Client talks to the time-tracking API
type Client struct {
	config  Config
	client  *http.Client
	baseURL string
}

// New creates a new API client
func New(cfg Config) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("API token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &ratelimit.Transport{EnableJitter: true},
		},
		baseURL: baseURL,
	}, nil
}

// doRequest performs an authenticated API request. Every request carries a
// fresh X-Request-Id so retried timer starts stay idempotent server-side.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(c.config.APIToken, "api_token")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, utils.ErrAPIUnreachable(err)
	}
	return resp, nil
}

// RecentEntries returns the time entries started since the given time,
// newest first, as the API reports them.
func (c *Client) RecentEntries(ctx context.Context, since time.Time) ([]TimeEntry, error) {
	query := url.Values{}
	query.Set("since", strconv.FormatInt(since.Unix(), 10))

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v9/me/time_entries", query, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("authentication failed: invalid API token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get time entries: status %d", resp.StatusCode)
	}

	var entries []TimeEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// StartTimer starts a running time entry with the given configuration and
// returns the record the server created.
func (c *Client) StartTimer(ctx context.Context, description string, projectID *int64, tagIDs []int64) (*TimeEntry, error) {
	if c.config.WorkspaceID == 0 {
		return nil, fmt.Errorf("workspace ID is required to start a timer")
	}

	body := map[string]interface{}{
		"description":  description,
		"workspace_id": c.config.WorkspaceID,
		"start":        time.Now().UTC().Format(time.RFC3339),
		"duration":     -1,
		"created_with": clientName,
	}
	if projectID != nil {
		body["project_id"] = *projectID
	}
	if len(tagIDs) > 0 {
		body["tag_ids"] = tagIDs
	}

	path := fmt.Sprintf("/api/v9/workspaces/%d/time_entries", c.config.WorkspaceID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("authentication failed: invalid API token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to start timer: status %d", resp.StatusCode)
	}

	var entry TimeEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	if c.client != nil {
		c.client.CloseIdleConnections()
	}
	return nil
}
