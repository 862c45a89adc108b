package buildsvc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tailored-agentic-units/forge/buildsvc"
)

func TestBuild_Success(t *testing.T) {
	var gotFiles map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Files map[string]string `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		gotFiles = req.Files

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"compiled": map[string]string{"assets/app.js": "bundle", "assets/app.js.map": "{}"},
			"source":   map[string]string{"app.tsx": "const x = 1;\n"},
		})
	}))
	defer srv.Close()

	client := buildsvc.NewClient(srv.URL)
	result, err := client.Build(context.Background(), map[string]string{"app.tsx": "const x=1"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if gotFiles["app.tsx"] != "const x=1" {
		t.Errorf("request files = %v", gotFiles)
	}
	if result.Compiled["assets/app.js"] != "bundle" {
		t.Errorf("compiled = %v", result.Compiled)
	}
	if result.Source["app.tsx"] != "const x = 1;\n" {
		t.Errorf("source = %v", result.Source)
	}
}

func TestBuild_CompileFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "app.tsx(3,5): error TS2304: Cannot find name 'Foo'.", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := buildsvc.NewClient(srv.URL)
	_, err := client.Build(context.Background(), map[string]string{"app.tsx": "Foo"})

	var buildErr *buildsvc.Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("got %v, want *buildsvc.Error", err)
	}
	if buildErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d", buildErr.Status)
	}
	if buildErr.Diagnostic != "app.tsx(3,5): error TS2304: Cannot find name 'Foo'." {
		t.Errorf("Diagnostic = %q", buildErr.Diagnostic)
	}
}

func TestBuild_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client := buildsvc.NewClient(srv.URL)
	_, err := client.Build(context.Background(), map[string]string{"app.tsx": "x"})

	var buildErr *buildsvc.Error
	if errors.As(err, &buildErr) {
		t.Error("transport failures must not be classified as build diagnostics")
	}
	if err == nil {
		t.Error("expected error for unreachable endpoint")
	}
}

func TestBuild_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := buildsvc.NewClient(srv.URL)
	if _, err := client.Build(ctx, map[string]string{"app.tsx": "x"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
