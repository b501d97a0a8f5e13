// Package dataapi reads monument and community data from the Travisco
// backend. Payloads are returned exactly as received.
package dataapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Sama2911arth/Travisco/internal/metrics"
)

var ErrInvalidPayload = errors.New("data api returned invalid json")

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv reads DATA_API_URL (default http://localhost:8000) and DATA_API_TIMEOUT.
func ConfigFromEnv() Config {
	base := strings.TrimRight(os.Getenv("DATA_API_URL"), "/")
	if base == "" {
		base = "http://localhost:8000"
	}
	timeout := 10 * time.Second
	if v, err := time.ParseDuration(os.Getenv("DATA_API_TIMEOUT")); err == nil && v > 0 {
		timeout = v
	}
	return Config{BaseURL: base, Timeout: timeout}
}

// Doer is the HTTP layer; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx answer.
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

type Client struct {
	baseURL string
	doer    Doer
}

// New returns a client. A nil doer gets an *http.Client with cfg.Timeout.
func New(cfg Config, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), doer: doer}
}

// Monuments fetches GET /api/monuments.
func (c *Client) Monuments(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "monuments", "/api/monuments")
}

// Community fetches every community post, GET /community.
func (c *Client) Community(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "community", "/community")
}

// CommunityByMonument fetches the posts for one monument, GET /community/{name}.
func (c *Client) CommunityByMonument(ctx context.Context, name string) (json.RawMessage, error) {
	return c.get(ctx, "community_by_monument", "/community/"+url.PathEscape(name))
}

// get issues one GET. Transport errors come back exactly as the Doer
// returned them.
func (c *Client) get(ctx context.Context, endpoint, path string) (json.RawMessage, error) {
	payload, err := c.fetch(ctx, c.baseURL+path)
	metrics.RecordDataAPI(endpoint, err)
	return payload, err
}

func (c *Client) fetch(ctx context.Context, u string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Body: body}
	}
	if !json.Valid(body) {
		return nil, ErrInvalidPayload
	}
	return json.RawMessage(body), nil
}
