// Package client is an HTTP client for the restage daemon API, used by
// front ends such as the menu-bar wrapper.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/restage/restage/internal/workspace"
)

// Client talks to a running restage daemon.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger // optional logger for client operations
}

// DefaultConfig returns the local daemon defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8553/api",
		Timeout: 5 * time.Minute, // capture/restore block on automation
	}
}

// New creates a new restage API client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
}

type errorResp struct {
	Error string `json:"error"`
}

// APIError carries the daemon's HTTP status alongside its message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// IsReachable reports whether the daemon answers its health endpoint.
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rootURL()+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Capture asks the daemon to capture the current workspace under name.
func (c *Client) Capture(ctx context.Context, name string) (*workspace.Report, error) {
	var report workspace.Report
	u := fmt.Sprintf("%s/capture?name=%s", c.baseURL, url.QueryEscape(name))
	if err := c.do(ctx, http.MethodPost, u, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Restore asks the daemon to restore the named workspace.
func (c *Client) Restore(ctx context.Context, name string) (*workspace.Report, error) {
	var report workspace.Report
	u := fmt.Sprintf("%s/restore?name=%s", c.baseURL, url.QueryEscape(name))
	if err := c.do(ctx, http.MethodPost, u, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns stored workspace names, newest first.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var out struct {
		Workspaces []string `json:"workspaces"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/workspaces", &out); err != nil {
		return nil, err
	}
	return out.Workspaces, nil
}

// Get fetches one stored snapshot.
func (c *Client) Get(ctx context.Context, name string) (*workspace.Snapshot, error) {
	var snap workspace.Snapshot
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/workspaces/"+url.PathEscape(name), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Delete removes the named workspace.
func (c *Client) Delete(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+"/workspaces/"+url.PathEscape(name), nil)
}

func (c *Client) do(ctx context.Context, method, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var er errorResp
		msg := string(body)
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		c.logger.Debug("api call failed", "method", method, "url", u, "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) rootURL() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	u.Path = ""
	return u.String()
}
