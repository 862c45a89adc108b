package workspace_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/forge/workspace"
)

func TestCreateReadRoundTrip(t *testing.T) {
	ws := workspace.New()

	result := ws.Create("app.tsx", "<div>Hi</div>")
	if !strings.Contains(result, "app.tsx") {
		t.Errorf("confirmation missing path: %q", result)
	}

	content, err := ws.Read("app.tsx")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if content != "<div>Hi</div>" {
		t.Errorf("content = %q, want %q", content, "<div>Hi</div>")
	}
}

func TestCreate_OverwritesExisting(t *testing.T) {
	ws := workspace.New()
	ws.Create("app.tsx", "old")
	ws.Create("app.tsx", "new")

	content, err := ws.Read("app.tsx")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if content != "new" {
		t.Errorf("content = %q, want %q", content, "new")
	}
	if ws.Len() != 1 {
		t.Errorf("Len = %d, want 1", ws.Len())
	}
}

func TestRead_NotFound(t *testing.T) {
	ws := workspace.New()

	_, err := ws.Read("missing.tsx")
	if !errors.Is(err, workspace.ErrFileNotFound) {
		t.Errorf("got %v, want ErrFileNotFound", err)
	}
}

func TestDelete_RemovesAndRecordsMarker(t *testing.T) {
	ws := workspace.New()
	ws.Create("app.tsx", "<div>Hi</div>")

	if _, err := ws.ApplyEdit("app.tsx", []workspace.Hunk{{Search: "Hi", Replace: "Hello"}}); err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}

	result, err := ws.Delete("app.tsx")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !strings.Contains(result, "app.tsx") {
		t.Errorf("confirmation missing path: %q", result)
	}

	if _, err := ws.Read("app.tsx"); !errors.Is(err, workspace.ErrFileNotFound) {
		t.Errorf("Read after Delete: got %v, want ErrFileNotFound", err)
	}

	// Deletion appends the marker after prior history; it does not clear it.
	hunks := ws.Diffs()["app.tsx"].Hunks
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2 (edit + deletion marker)", len(hunks))
	}
	if hunks[0].Search != "Hi" {
		t.Errorf("prior hunk lost: %+v", hunks[0])
	}
	marker := hunks[1]
	if marker.Search != workspace.DeletedMarkerSearch || marker.Replace != workspace.DeletedMarkerReplace {
		t.Errorf("deletion marker = %+v", marker)
	}
}

func TestDelete_NotFoundLeavesSetUnchanged(t *testing.T) {
	ws := workspace.New()
	ws.Create("app.tsx", "content")

	_, err := ws.Delete("missing.tsx")
	if !errors.Is(err, workspace.ErrFileNotFound) {
		t.Errorf("got %v, want ErrFileNotFound", err)
	}
	if ws.Len() != 1 {
		t.Errorf("Len = %d, want 1", ws.Len())
	}
	if len(ws.Diffs()) != 0 {
		t.Errorf("diff history recorded for failed delete: %v", ws.Diffs())
	}
}

func TestSeed_CopySemantics(t *testing.T) {
	original := map[string]string{"app.tsx": "<div>Hi</div>"}
	ws := workspace.Seed(original)

	ws.Create("app.tsx", "mutated")
	ws.Create("extra.ts", "new")

	if original["app.tsx"] != "<div>Hi</div>" {
		t.Error("seeding aliased the caller's map")
	}
	if _, exists := original["extra.ts"]; exists {
		t.Error("mutation leaked into the caller's map")
	}
}

func TestFiles_ReturnsCopy(t *testing.T) {
	ws := workspace.New()
	ws.Create("app.tsx", "content")

	files := ws.Files()
	files["app.tsx"] = "mutated"

	content, _ := ws.Read("app.tsx")
	if content != "content" {
		t.Error("mutation of Files() copy affected the workspace")
	}
}

func TestApplyCorrections_OverwritesEntries(t *testing.T) {
	ws := workspace.New()
	ws.Create("app.tsx", "const x=1")

	ws.ApplyCorrections(map[string]string{"app.tsx": "const x = 1;"})

	content, err := ws.Read("app.tsx")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if content != "const x = 1;" {
		t.Errorf("content = %q, want corrected source", content)
	}
}

func TestArtifacts_EmptyUntilSet(t *testing.T) {
	ws := workspace.New()
	if len(ws.Artifacts()) != 0 {
		t.Error("expected empty artifacts before a successful build")
	}

	ws.SetArtifacts(map[string]string{"assets/app.js": "bundle"})
	artifacts := ws.Artifacts()
	if artifacts["assets/app.js"] != "bundle" {
		t.Errorf("artifacts = %v", artifacts)
	}
}
