// Package buildsvc is the client for the external build collaborator: the
// service that bundles a TSX/CSS file set into deployable artifacts or
// reports a compilation diagnostic.
package buildsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Result is a successful build response: the compiled artifact mapping plus
// the (possibly auto-corrected) source files echoed back by the builder.
type Result struct {
	Compiled map[string]string `json:"compiled"`
	Source   map[string]string `json:"source"`
}

// Error is a build failure: the collaborator accepted the request but the
// file set did not compile. It is a recoverable condition: the gate feeds
// Diagnostic back to the model and retries.
type Error struct {
	Status     int
	Diagnostic string
}

func (e *Error) Error() string {
	return fmt.Sprintf("build failed (%d): %s", e.Status, e.Diagnostic)
}

// Client submits file sets to the build collaborator.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// NewClient creates a Client for the given build endpoint
// (e.g. "http://localhost:3000/build").
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build submits the complete file set and returns the compiled result.
// A non-200 response becomes an *Error carrying the plain-text diagnostic;
// transport and decoding failures are returned as ordinary errors.
func (c *Client) Build(ctx context.Context, files map[string]string) (*Result, error) {
	body, err := json.Marshal(struct {
		Files map[string]string `json:"files"`
	}{Files: files})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		diagnostic, _ := io.ReadAll(resp.Body)
		return nil, &Error{
			Status:     resp.StatusCode,
			Diagnostic: strings.TrimSpace(string(diagnostic)),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode build response: %w", err)
	}
	return &result, nil
}
