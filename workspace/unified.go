package workspace

import (
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const unifiedContext = 3

// RenderUnified renders a unified diff between two revisions of a file,
// suitable for display in CLI output. Returns the empty string when the
// revisions are identical. The diff is a single hunk spanning the changed
// region with up to three lines of surrounding context.
func RenderUnified(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}

	orig := splitLines(before)
	updated := splitLines(after)

	prefix := 0
	for prefix < len(orig) && prefix < len(updated) && orig[prefix] == updated[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(orig)-prefix && suffix < len(updated)-prefix &&
		orig[len(orig)-1-suffix] == updated[len(updated)-1-suffix] {
		suffix++
	}

	ctxBefore := min(unifiedContext, prefix)
	ctxAfter := min(unifiedContext, suffix)

	var body strings.Builder
	for _, line := range orig[prefix-ctxBefore : prefix] {
		body.WriteString(" " + line + "\n")
	}
	for _, line := range orig[prefix : len(orig)-suffix] {
		body.WriteString("-" + line + "\n")
	}
	for _, line := range updated[prefix : len(updated)-suffix] {
		body.WriteString("+" + line + "\n")
	}
	for _, line := range orig[len(orig)-suffix : len(orig)-suffix+ctxAfter] {
		body.WriteString(" " + line + "\n")
	}

	origLines := ctxBefore + (len(orig) - prefix - suffix) + ctxAfter
	newLines := ctxBefore + (len(updated) - prefix - suffix) + ctxAfter

	origStart := prefix - ctxBefore + 1
	if origLines == 0 {
		origStart = prefix - ctxBefore
	}
	newStart := prefix - ctxBefore + 1
	if newLines == 0 {
		newStart = prefix - ctxBefore
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks: []*diff.Hunk{{
			OrigStartLine: int32(origStart),
			OrigLines:     int32(origLines),
			NewStartLine:  int32(newStart),
			NewLines:      int32(newLines),
			Body:          []byte(body.String()),
		}},
	}

	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
