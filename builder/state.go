package builder

// State is the validation gate's position in a session's lifecycle.
type State int

const (
	// StateGenerating: the model is producing tool calls or drafting output.
	StateGenerating State = iota
	// StateValidating: a final summary was received and the file set has
	// been submitted to the build collaborator.
	StateValidating
	// StateRetryPending: the build failed with budget remaining; the loop
	// resumes generation with the diagnostic as feedback.
	StateRetryPending
	// StateSucceeded: terminal. The build passed (or validation was bypassed).
	StateSucceeded
	// StateFailed: terminal. The retry budget is exhausted.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateValidating:
		return "validating"
	case StateRetryPending:
		return "retry_pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the session.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
