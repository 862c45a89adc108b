// Package workspace owns the virtual file set for one generation session:
// the path → content mapping mutated by model tool calls, the compiled
// artifacts produced by a successful build, and the append-only diff history.
//
// Paths are opaque, case-sensitive identifiers. No normalization or directory
// semantics are applied beyond string equality.
//
// A Workspace is exclusively owned by the single loop execution processing
// its session and is not safe for concurrent use.
package workspace

import "fmt"

// Workspace is the in-memory file set for one session.
type Workspace struct {
	files     map[string]string
	artifacts map[string]string
	diffs     map[string]Diff
}

// New creates an empty Workspace (create mode).
func New() *Workspace {
	return &Workspace{
		files:     make(map[string]string),
		artifacts: make(map[string]string),
		diffs:     make(map[string]Diff),
	}
}

// Seed creates a Workspace pre-populated with the given files (edit mode).
// The map is copied; later mutations never affect the caller's original.
func Seed(files map[string]string) *Workspace {
	w := New()
	for path, content := range files {
		w.files[path] = content
	}
	return w
}

// Create writes content to path, overwriting any existing entry.
// Returns a confirmation suitable as a tool result.
func (w *Workspace) Create(path, content string) string {
	w.files[path] = content
	return fmt.Sprintf("Created file: %s", path)
}

// Read returns the current content of path, or ErrFileNotFound.
func (w *Workspace) Read(path string) (string, error) {
	content, exists := w.files[path]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return content, nil
}

// Delete removes path from the file set and appends the deletion marker to
// its diff history. Prior history for the path is retained.
// Returns ErrFileNotFound if the path is absent.
func (w *Workspace) Delete(path string) (string, error) {
	if _, exists := w.files[path]; !exists {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	delete(w.files, path)
	w.appendHistory(path, []Hunk{{Search: DeletedMarkerSearch, Replace: DeletedMarkerReplace}})

	return fmt.Sprintf("Deleted file: %s", path), nil
}

// ApplyEdit applies the hunks to path in order and writes the result back.
// Every hunk, found or not, is appended to the path's diff history. Returns
// a per-hunk summary enumerating replacements and misses so the model can
// correct mismatched search text on its next turn, or ErrFileNotFound if
// the path is absent (the file set is left unchanged and nothing is recorded).
func (w *Workspace) ApplyEdit(path string, hunks []Hunk) (string, error) {
	content, exists := w.files[path]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	if len(hunks) == 0 {
		return fmt.Sprintf("Edited file: %s. Changes: none", path), nil
	}

	updated, notes := applyHunks(content, hunks)
	w.files[path] = updated
	w.appendHistory(path, hunks)

	summary := fmt.Sprintf("Edited file: %s. Changes: ", path)
	for i, note := range notes {
		if i > 0 {
			summary += "; "
		}
		summary += note
	}
	return summary, nil
}

// Len returns the number of files currently in the set.
func (w *Workspace) Len() int {
	return len(w.files)
}

// Files returns a copy of the current file set.
func (w *Workspace) Files() map[string]string {
	return copyMap(w.files)
}

// Diffs returns a copy of the diff history for all touched paths.
func (w *Workspace) Diffs() map[string]Diff {
	copied := make(map[string]Diff, len(w.diffs))
	for path, d := range w.diffs {
		hunks := make([]Hunk, len(d.Hunks))
		copy(hunks, d.Hunks)
		copied[path] = Diff{Hunks: hunks}
	}
	return copied
}

// SetArtifacts records the compiled artifact mapping from a successful build.
func (w *Workspace) SetArtifacts(artifacts map[string]string) {
	w.artifacts = copyMap(artifacts)
}

// Artifacts returns a copy of the compiled artifact mapping. Empty until a
// build has succeeded.
func (w *Workspace) Artifacts() map[string]string {
	return copyMap(w.artifacts)
}

// ApplyCorrections overwrites file entries with build-corrected source text
// (e.g. formatting fixes returned by the build collaborator). The final file
// set may therefore differ from what the model last wrote.
func (w *Workspace) ApplyCorrections(corrected map[string]string) {
	for path, content := range corrected {
		w.files[path] = content
	}
}

func (w *Workspace) appendHistory(path string, hunks []Hunk) {
	d := w.diffs[path]
	d.Hunks = append(d.Hunks, hunks...)
	w.diffs[path] = d
}

func copyMap(m map[string]string) map[string]string {
	copied := make(map[string]string, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return copied
}
