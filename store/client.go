// Package store is the client for the external key-value persistence
// collaborator. Entries live under a project namespace with hierarchical
// /-separated keys; durability is the collaborator's concern, not ours.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when a project or key does not exist.
var ErrNotFound = errors.New("entry not found")

// KeyInfo describes one stored entry.
type KeyInfo struct {
	Key      string `json:"key"`
	MimeType string `json:"mime_type"`
}

// Client talks to the persistence collaborator's REST surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL
// (e.g. "http://localhost:3001").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Store writes content under project/key, creating or overwriting the entry.
func (c *Client) Store(ctx context.Context, project, key, mimeType string, content []byte) error {
	u := fmt.Sprintf("%s/project/%s/%s", c.baseURL, url.PathEscape(project), key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to create store request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store error (%d): %s", resp.StatusCode, body)
	}
	return nil
}

// Get retrieves the content and MIME type for project/key.
func (c *Client) Get(ctx context.Context, project, key string) ([]byte, string, error) {
	u := fmt.Sprintf("%s/project/%s/get/%s", c.baseURL, url.PathEscape(project), key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create get request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%w: %s/%s", ErrNotFound, project, key)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("get error (%d): %s", resp.StatusCode, body)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read entry content: %w", err)
	}
	return content, resp.Header.Get("Content-Type"), nil
}

// List returns the entries under project whose keys start with prefix.
// An empty prefix lists every entry in the project.
func (c *Client) List(ctx context.Context, project, prefix string) ([]KeyInfo, error) {
	u := fmt.Sprintf("%s/project/%s/list/%s", c.baseURL, url.PathEscape(project), prefix)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list error (%d): %s", resp.StatusCode, body)
	}

	var keys []KeyInfo
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return keys, nil
}

// Delete removes project/key. Deleting a missing key reports ErrNotFound.
func (c *Client) Delete(ctx context.Context, project, key string) error {
	u := fmt.Sprintf("%s/project/%s/%s", c.baseURL, url.PathEscape(project), key)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, project, key)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete error (%d): %s", resp.StatusCode, body)
	}
	return nil
}
