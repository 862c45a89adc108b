package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Key prefixes within a project namespace.
const (
	sourcePrefix   = "source/"
	compiledPrefix = "compiled/"
	metaKey        = "_meta/app.json"
)

// AppMetadata describes a stored app.
type AppMetadata struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Summary       string    `json:"summary"`
	SourceFiles   []string  `json:"source_files"`
	CompiledFiles []string  `json:"compiled_files"`
}

// AppStore provides a high-level app persistence interface over the
// key-value client: source files under source/, compiled artifacts under
// compiled/, and metadata at _meta/app.json.
type AppStore struct {
	client *Client
}

// NewAppStore creates an AppStore backed by the given client.
func NewAppStore(client *Client) *AppStore {
	return &AppStore{client: client}
}

// NewProjectID generates a fresh project identifier.
func NewProjectID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SaveApp persists a generated app's files, artifacts, and metadata under
// projectID, overwriting any previous revision's entries. Compiled artifacts
// from the previous revision are removed first so stale bundles cannot
// survive a rebuild.
func (s *AppStore) SaveApp(ctx context.Context, projectID string, files, compiled map[string]string, summary string) error {
	if old, err := s.client.List(ctx, projectID, compiledPrefix); err == nil {
		for _, entry := range old {
			_ = s.client.Delete(ctx, projectID, entry.Key)
		}
	}

	sourceList := make([]string, 0, len(files))
	for path, content := range files {
		if err := s.client.Store(ctx, projectID, sourcePrefix+path, mimeType(path), []byte(content)); err != nil {
			return fmt.Errorf("failed to store source %s: %w", path, err)
		}
		sourceList = append(sourceList, path)
	}

	compiledList := make([]string, 0, len(compiled))
	for path, content := range compiled {
		if err := s.client.Store(ctx, projectID, compiledPrefix+path, mimeType(path), []byte(content)); err != nil {
			return fmt.Errorf("failed to store artifact %s: %w", path, err)
		}
		compiledList = append(compiledList, path)
	}

	now := time.Now().UTC()
	meta := AppMetadata{
		CreatedAt:     now,
		UpdatedAt:     now,
		Summary:       summary,
		SourceFiles:   sourceList,
		CompiledFiles: compiledList,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal app metadata: %w", err)
	}
	return s.client.Store(ctx, projectID, metaKey, "application/json", metaJSON)
}

// LoadApp retrieves a stored app's source files and metadata.
func (s *AppStore) LoadApp(ctx context.Context, projectID string) (map[string]string, *AppMetadata, error) {
	entries, err := s.client.List(ctx, projectID, sourcePrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sources: %w", err)
	}

	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		content, _, err := s.client.Get(ctx, projectID, entry.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load %s: %w", entry.Key, err)
		}
		files[strings.TrimPrefix(entry.Key, sourcePrefix)] = string(content)
	}

	metaJSON, _, err := s.client.Get(ctx, projectID, metaKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	var meta AppMetadata
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return files, &meta, nil
}

func mimeType(path string) string {
	switch filepath.Ext(path) {
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".json", ".map":
		return "application/json"
	case ".html":
		return "text/html"
	default:
		return "text/plain"
	}
}
