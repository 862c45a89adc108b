package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/forge/store"
)

// fakeDB is a minimal in-memory stand-in for the persistence collaborator.
type fakeDB struct {
	mu      sync.Mutex
	entries map[string]entry // "project/key" → entry
}

type entry struct {
	mimeType string
	content  []byte
}

func newFakeDB() *fakeDB {
	return &fakeDB{entries: make(map[string]entry)}
}

func (db *fakeDB) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db.mu.Lock()
		defer db.mu.Unlock()

		path := strings.TrimPrefix(r.URL.Path, "/project/")
		project, rest, _ := strings.Cut(path, "/")

		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(rest, "get/"):
			key := strings.TrimPrefix(rest, "get/")
			e, exists := db.entries[project+"/"+key]
			if !exists {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", e.mimeType)
			_, _ = w.Write(e.content)

		case r.Method == http.MethodGet && strings.HasPrefix(rest, "list/"):
			prefix := strings.TrimPrefix(rest, "list/")
			keys := []store.KeyInfo{}
			for k, e := range db.entries {
				proj, key, _ := strings.Cut(k, "/")
				if proj == project && strings.HasPrefix(key, prefix) {
					keys = append(keys, store.KeyInfo{Key: key, MimeType: e.mimeType})
				}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(keys)

		case r.Method == http.MethodPost:
			content, _ := io.ReadAll(r.Body)
			db.entries[project+"/"+rest] = entry{
				mimeType: r.Header.Get("Content-Type"),
				content:  content,
			}

		case r.Method == http.MethodDelete:
			if _, exists := db.entries[project+"/"+rest]; !exists {
				http.NotFound(w, r)
				return
			}
			delete(db.entries, project+"/"+rest)

		default:
			http.NotFound(w, r)
		}
	}
}

func TestClient_StoreGetRoundTrip(t *testing.T) {
	db := newFakeDB()
	srv := httptest.NewServer(db.handler())
	defer srv.Close()

	client := store.NewClient(srv.URL)
	ctx := context.Background()

	if err := client.Store(ctx, "proj-1", "source/app.tsx", "text/plain", []byte("content")); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	content, mime, err := client.Get(ctx, "proj-1", "source/app.tsx")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(content) != "content" {
		t.Errorf("content = %q", content)
	}
	if mime != "text/plain" {
		t.Errorf("mime = %q", mime)
	}
}

func TestClient_GetMissing(t *testing.T) {
	db := newFakeDB()
	srv := httptest.NewServer(db.handler())
	defer srv.Close()

	client := store.NewClient(srv.URL)
	_, _, err := client.Get(context.Background(), "proj-1", "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestClient_ListByPrefix(t *testing.T) {
	db := newFakeDB()
	srv := httptest.NewServer(db.handler())
	defer srv.Close()

	client := store.NewClient(srv.URL)
	ctx := context.Background()

	_ = client.Store(ctx, "proj-1", "source/app.tsx", "text/plain", []byte("a"))
	_ = client.Store(ctx, "proj-1", "compiled/app.js", "application/javascript", []byte("b"))
	_ = client.Store(ctx, "proj-2", "source/other.tsx", "text/plain", []byte("c"))

	keys, err := client.List(ctx, "proj-1", "source/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 1 || keys[0].Key != "source/app.tsx" {
		t.Errorf("keys = %+v", keys)
	}
}

func TestClient_Delete(t *testing.T) {
	db := newFakeDB()
	srv := httptest.NewServer(db.handler())
	defer srv.Close()

	client := store.NewClient(srv.URL)
	ctx := context.Background()

	_ = client.Store(ctx, "proj-1", "source/app.tsx", "text/plain", []byte("a"))
	if err := client.Delete(ctx, "proj-1", "source/app.tsx"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := client.Delete(ctx, "proj-1", "source/app.tsx"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestAppStore_SaveAndLoad(t *testing.T) {
	db := newFakeDB()
	srv := httptest.NewServer(db.handler())
	defer srv.Close()

	apps := store.NewAppStore(store.NewClient(srv.URL))
	ctx := context.Background()
	projectID := store.NewProjectID()

	files := map[string]string{
		"app.tsx":               "export default function App() {}",
		"components/Button.tsx": "export function Button() {}",
	}
	compiled := map[string]string{"assets/app.js": "bundle"}

	if err := apps.SaveApp(ctx, projectID, files, compiled, "A button demo"); err != nil {
		t.Fatalf("SaveApp failed: %v", err)
	}

	loaded, meta, err := apps.LoadApp(ctx, projectID)
	if err != nil {
		t.Fatalf("LoadApp failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("got %d files, want 2", len(loaded))
	}
	if loaded["app.tsx"] != files["app.tsx"] {
		t.Errorf("app.tsx = %q", loaded["app.tsx"])
	}
	if meta.Summary != "A button demo" {
		t.Errorf("summary = %q", meta.Summary)
	}
	if len(meta.CompiledFiles) != 1 {
		t.Errorf("compiled files = %v", meta.CompiledFiles)
	}
}

func TestAppStore_SaveRemovesStaleArtifacts(t *testing.T) {
	db := newFakeDB()
	srv := httptest.NewServer(db.handler())
	defer srv.Close()

	client := store.NewClient(srv.URL)
	apps := store.NewAppStore(client)
	ctx := context.Background()
	projectID := store.NewProjectID()

	first := map[string]string{"assets/old.js": "stale"}
	if err := apps.SaveApp(ctx, projectID, map[string]string{"app.tsx": "v1"}, first, "v1"); err != nil {
		t.Fatalf("first SaveApp failed: %v", err)
	}

	second := map[string]string{"assets/new.js": "fresh"}
	if err := apps.SaveApp(ctx, projectID, map[string]string{"app.tsx": "v2"}, second, "v2"); err != nil {
		t.Fatalf("second SaveApp failed: %v", err)
	}

	keys, err := client.List(ctx, projectID, "compiled/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 1 || keys[0].Key != "compiled/assets/new.js" {
		t.Errorf("stale artifact survived rebuild: %+v", keys)
	}
}
