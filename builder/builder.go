// Package builder implements the generation loop: the
// model-driven tool dispatch over a session's virtual file set, coupled to
// the external build collaborator through a bounded-retry validation gate.
//
// The builder initializes from configuration via New, creating all
// subsystems internally. Functional options allow test overrides of any
// collaborator.
//
//	b, err := builder.New(&cfg)
//	result, err := b.Create(ctx, "Build a pomodoro timer")
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/forge/agent"
	"github.com/tailored-agentic-units/forge/buildsvc"
	"github.com/tailored-agentic-units/forge/core/protocol"
	"github.com/tailored-agentic-units/forge/observability"
	"github.com/tailored-agentic-units/forge/session"
	"github.com/tailored-agentic-units/forge/workspace"
)

// BuildClient abstracts the build collaborator for testability. The default
// implementation is a buildsvc.Client for the configured endpoint.
type BuildClient interface {
	Build(ctx context.Context, files map[string]string) (*buildsvc.Result, error)
}

// Result holds the outcome of one generation session.
type Result struct {
	Files      map[string]string         // Final file set, including build corrections.
	Artifacts  map[string]string         // Compiled artifacts; empty unless State is StateSucceeded.
	Diffs      map[string]workspace.Diff // Append-only hunk history per touched path.
	Summary    string                    // The model's final summary text.
	SessionID  string                    // Conversation session identifier.
	State      State                     // Terminal gate state.
	Attempts   int                       // Number of build calls consumed.
	Diagnostic string                    // Last build diagnostic; set when State is StateFailed.
	ToolCalls  []ToolCallRecord          // Log of all tool invocations.
}

// ToolCallRecord is one entry in the session's tool invocation log.
type ToolCallRecord struct {
	protocol.ToolCall
	Turn    int    // Loop turn in which the call occurred.
	Result  string // Tool execution output fed back to the model.
	IsError bool   // Whether the operation reported an error result.
}

// Option configures a Builder after config-driven initialization.
// Overrides replace config-created defaults.
type Option func(*Builder)

// WithAgent overrides the config-created agent.
func WithAgent(a agent.Agent) Option {
	return func(b *Builder) { b.agent = a }
}

// WithRegistry overrides the config-created agent registry.
func WithRegistry(r *agent.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// WithBuildClient overrides the config-created build collaborator client.
func WithBuildClient(c BuildClient) Option {
	return func(b *Builder) { b.build = c }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(b *Builder) { b.observer = o }
}

// Builder runs generation sessions. It is immutable after New and safe for
// concurrent use; each session's mutable state (workspace, conversation) is
// created per run.
type Builder struct {
	agent    agent.Agent
	registry *agent.Registry
	build    BuildClient
	observer observability.Observer
	cfg      Config
}

// New creates a Builder from configuration. Subsystems (agent, build client)
// are initialized from their respective config sections. Functional options
// applied after initialization can override any collaborator for testing.
func New(cfg *Config, opts ...Option) (*Builder, error) {
	a, err := agent.New(&cfg.Agent)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	reg := agent.NewRegistry()
	for name, agentCfg := range cfg.Agents {
		if err := reg.Register(name, agentCfg); err != nil {
			return nil, fmt.Errorf("failed to register agent %q: %w", name, err)
		}
	}

	b := &Builder{
		agent:    a,
		registry: reg,
		build:    buildsvc.NewClient(cfg.BuildEndpoint),
		observer: observability.NewSlogObserver(slog.Default()),
		cfg:      *cfg,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Registry returns the builder's agent registry.
func (b *Builder) Registry() *agent.Registry {
	return b.registry
}

// Create runs a session over an empty file set (create mode).
func (b *Builder) Create(ctx context.Context, prompt string) (*Result, error) {
	return b.run(ctx, prompt, nil)
}

// Edit runs a session seeded with the caller's existing files (edit mode).
// The files map is copied; the caller's mapping is never mutated.
func (b *Builder) Edit(ctx context.Context, prompt string, files map[string]string) (*Result, error) {
	return b.run(ctx, prompt, files)
}

// run executes the dispatch loop for one session until the validation gate
// reaches a terminal state. Tool calls within a turn are applied in the
// order the model emitted them; hunks within an edit in the order supplied.
func (b *Builder) run(ctx context.Context, prompt string, seed map[string]string) (*Result, error) {
	if timeout := b.cfg.SessionTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ws := workspace.Seed(seed)
	sess := session.NewMemorySession()
	sess.AddMessage(protocol.NewMessage(protocol.RoleUser, prompt))

	result := &Result{
		SessionID: sess.ID(),
		State:     StateGenerating,
	}

	b.emit(ctx, EventRunStart, observability.LevelInfo, map[string]any{
		"session":       sess.ID(),
		"seed_files":    len(seed),
		"max_attempts":  b.cfg.MaxAttempts,
		"prompt_length": len(prompt),
	})

	for turn := 1; ; turn++ {
		if err := ctx.Err(); err != nil {
			b.snapshot(result, ws)
			return result, err
		}

		b.emit(ctx, EventTurnStart, observability.LevelVerbose, map[string]any{
			"session": sess.ID(),
			"turn":    turn,
		})

		resp, err := b.agent.Tools(ctx, b.buildMessages(sess), operationSchemas())
		if err != nil {
			b.snapshot(result, ws)
			return result, fmt.Errorf("agent call failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			b.snapshot(result, ws)
			return result, fmt.Errorf("agent returned empty response")
		}

		choice := resp.Choices[0]

		if len(choice.Message.ToolCalls) == 0 {
			done, err := b.runGate(ctx, sess, ws, result, choice.Message.Content)
			if done || err != nil {
				return result, err
			}
			continue
		}

		sess.AddMessage(protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   choice.Message.Content,
			ToolCalls: choice.Message.ToolCalls,
		})

		for _, tc := range choice.Message.ToolCalls {
			b.emit(ctx, EventToolCall, observability.LevelVerbose, map[string]any{
				"session": sess.ID(),
				"turn":    turn,
				"name":    tc.Name,
			})

			res := dispatch(ws, tc)
			sess.AddMessage(protocol.Message{
				Role:       protocol.RoleTool,
				Content:    res.Content,
				ToolCallID: tc.ID,
			})

			result.ToolCalls = append(result.ToolCalls, ToolCallRecord{
				ToolCall: tc,
				Turn:     turn,
				Result:   res.Content,
				IsError:  res.IsError,
			})

			b.emit(ctx, EventToolComplete, observability.LevelVerbose, map[string]any{
				"session": sess.ID(),
				"turn":    turn,
				"name":    tc.Name,
				"error":   res.IsError,
			})
		}
	}
}

// runGate drives the validation gate once the model has produced a final
// summary. It returns done=true when the session reached a terminal state;
// otherwise a retry has been scheduled and the loop continues generating.
func (b *Builder) runGate(ctx context.Context, sess session.Session, ws *workspace.Workspace, result *Result, summary string) (bool, error) {
	result.State = StateValidating
	b.emit(ctx, EventValidateStart, observability.LevelInfo, map[string]any{
		"session": sess.ID(),
		"files":   ws.Len(),
		"attempt": result.Attempts + 1,
		"bypass":  b.cfg.SkipValidation,
	})

	if b.cfg.SkipValidation {
		sess.AddMessage(protocol.NewMessage(protocol.RoleAssistant, summary))
		b.finalize(result, ws, summary, StateSucceeded)
		b.emit(ctx, EventRunComplete, observability.LevelInfo, map[string]any{
			"session":  sess.ID(),
			"attempts": result.Attempts,
			"files":    ws.Len(),
		})
		return true, nil
	}

	result.Attempts++
	buildResult, err := b.build.Build(ctx, ws.Files())
	if err != nil {
		var buildErr *buildsvc.Error
		if !errors.As(err, &buildErr) {
			// Transport-level failure, not a compile diagnostic.
			b.snapshot(result, ws)
			return true, fmt.Errorf("build submission failed: %w", err)
		}

		result.Diagnostic = buildErr.Diagnostic

		if result.Attempts >= b.cfg.MaxAttempts {
			result.State = StateFailed
			b.snapshot(result, ws)
			b.emit(ctx, EventRunFailed, observability.LevelWarning, map[string]any{
				"session":  sess.ID(),
				"attempts": result.Attempts,
			})
			return true, fmt.Errorf("%w after %d attempts: %s", ErrBudgetExhausted, result.Attempts, buildErr.Diagnostic)
		}

		// Accumulated file mutations are retained across attempts; only the
		// conversation gains the diagnostic as feedback.
		result.State = StateRetryPending
		sess.AddMessage(protocol.NewMessage(protocol.RoleAssistant, summary))
		sess.AddMessage(protocol.NewMessage(protocol.RoleUser, retryFeedback(buildErr.Diagnostic)))

		b.emit(ctx, EventValidateRetry, observability.LevelWarning, map[string]any{
			"session":  sess.ID(),
			"attempts": result.Attempts,
			"budget":   b.cfg.MaxAttempts,
		})

		result.State = StateGenerating
		return false, nil
	}

	ws.SetArtifacts(buildResult.Compiled)
	ws.ApplyCorrections(buildResult.Source)
	sess.AddMessage(protocol.NewMessage(protocol.RoleAssistant, summary))
	b.finalize(result, ws, summary, StateSucceeded)

	b.emit(ctx, EventValidateSuccess, observability.LevelInfo, map[string]any{
		"session":   sess.ID(),
		"attempts":  result.Attempts,
		"artifacts": len(buildResult.Compiled),
	})
	b.emit(ctx, EventRunComplete, observability.LevelInfo, map[string]any{
		"session":  sess.ID(),
		"attempts": result.Attempts,
		"files":    ws.Len(),
	})
	return true, nil
}

func (b *Builder) buildMessages(sess session.Session) []protocol.Message {
	sessionMsgs := sess.Messages()

	if b.cfg.SystemPrompt == "" {
		return sessionMsgs
	}

	messages := make([]protocol.Message, 0, len(sessionMsgs)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, b.cfg.SystemPrompt))
	messages = append(messages, sessionMsgs...)
	return messages
}

func (b *Builder) finalize(result *Result, ws *workspace.Workspace, summary string, state State) {
	result.Summary = summary
	result.State = state
	b.snapshot(result, ws)
}

func (b *Builder) snapshot(result *Result, ws *workspace.Workspace) {
	result.Files = ws.Files()
	result.Artifacts = ws.Artifacts()
	result.Diffs = ws.Diffs()
}

func (b *Builder) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	b.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "builder.run",
		Data:      data,
	})
}

func retryFeedback(diagnostic string) string {
	return fmt.Sprintf("The build failed with the following output:\n\n%s\n\nFix the errors in the files and provide an updated summary.", diagnostic)
}
