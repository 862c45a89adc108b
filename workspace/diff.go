package workspace

import (
	"fmt"
	"strings"
)

// Hunk is a single literal search/replace instruction applied to one file's
// content. When ReplaceAll is false only the first occurrence is replaced.
type Hunk struct {
	Search     string `json:"search"`
	Replace    string `json:"replace"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

// Diff is the ordered sequence of hunks applied to one file, in call order.
// It is append-only: a file's history survives later edits and deletion.
type Diff struct {
	Hunks []Hunk `json:"hunks"`
}

// Deletion marker hunk appended to a file's diff history when it is removed.
const (
	DeletedMarkerSearch  = "<entire file>"
	DeletedMarkerReplace = "<deleted>"
)

const snippetLen = 30

// applyHunks folds the hunks over content in order. Each hunk's search runs
// against the content produced by the hunks before it. A hunk whose search
// text is absent leaves content unchanged and records a warning; later hunks
// still apply. Returns the new content and one note per hunk.
func applyHunks(content string, hunks []Hunk) (string, []string) {
	notes := make([]string, 0, len(hunks))

	for _, h := range hunks {
		count := strings.Count(content, h.Search)
		if h.Search == "" || count == 0 {
			notes = append(notes, fmt.Sprintf("Warning: Could not find %q in file", snippet(h.Search)))
			continue
		}

		if h.ReplaceAll {
			content = strings.ReplaceAll(content, h.Search, h.Replace)
			notes = append(notes, fmt.Sprintf("Replaced %d occurrences of %q with %q",
				count, snippet(h.Search), snippet(h.Replace)))
		} else {
			content = strings.Replace(content, h.Search, h.Replace, 1)
			notes = append(notes, fmt.Sprintf("Replaced %q with %q",
				snippet(h.Search), snippet(h.Replace)))
		}
	}

	return content, notes
}

func snippet(s string) string {
	if len(s) <= snippetLen {
		return s
	}
	return s[:snippetLen] + "..."
}
