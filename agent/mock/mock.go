// Package mock provides a scriptable Agent for testing the generation loop
// without a live model endpoint.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/tailored-agentic-units/forge/core/protocol"
	"github.com/tailored-agentic-units/forge/core/response"
)

// ErrScriptExhausted is returned when Tools is called more times than
// responses were scripted.
var ErrScriptExhausted = errors.New("no more scripted responses")

// Agent replays a scripted sequence of responses, or delegates to a custom
// function. Safe for concurrent use.
type Agent struct {
	mu        sync.Mutex
	responses []*response.ToolsResponse
	errs      []error
	fn        ToolsFunc
	calls     int
}

// ToolsFunc is the signature of a custom Tools implementation.
type ToolsFunc func(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error)

// Option configures a mock Agent.
type Option func(*Agent)

// WithScript sets the ordered responses returned by successive Tools calls.
func WithScript(responses ...*response.ToolsResponse) Option {
	return func(a *Agent) { a.responses = responses }
}

// WithErrors sets per-call errors aligned with the scripted responses.
// A nil entry means that call succeeds.
func WithErrors(errs ...error) Option {
	return func(a *Agent) { a.errs = errs }
}

// WithToolsFunc replaces the scripted behavior with a custom function.
func WithToolsFunc(fn ToolsFunc) Option {
	return func(a *Agent) { a.fn = fn }
}

// New creates a mock Agent from options.
func New(opts ...Option) *Agent {
	a := &Agent{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tools replays the next scripted response or delegates to the custom
// function when one is configured.
func (a *Agent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	a.mu.Lock()
	i := a.calls
	a.calls++
	fn := a.fn
	a.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, tools, opts...)
	}

	if i >= len(a.responses) {
		return nil, ErrScriptExhausted
	}

	var err error
	if i < len(a.errs) {
		err = a.errs[i]
	}
	return a.responses[i], err
}

// Calls returns the number of Tools invocations so far.
func (a *Agent) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
