package builder

import "github.com/tailored-agentic-units/forge/observability"

// Builder event types emitted during the generation loop.
const (
	EventRunStart        observability.EventType = "builder.run.start"
	EventRunComplete     observability.EventType = "builder.run.complete"
	EventRunFailed       observability.EventType = "builder.run.failed"
	EventTurnStart       observability.EventType = "builder.turn.start"
	EventToolCall        observability.EventType = "builder.tool.call"
	EventToolComplete    observability.EventType = "builder.tool.complete"
	EventValidateStart   observability.EventType = "builder.validate.start"
	EventValidateRetry   observability.EventType = "builder.validate.retry"
	EventValidateSuccess observability.EventType = "builder.validate.success"
)
