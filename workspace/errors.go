package workspace

import "errors"

// ErrFileNotFound is returned when an edit, read, or delete targets a path
// that is not present in the file set. Callers surface it to the model as a
// textual tool result rather than failing the run.
var ErrFileNotFound = errors.New("file not found")
