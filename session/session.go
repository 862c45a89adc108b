// Package session manages conversation history for one generation run.
// A session is created per request and discarded when the run's response
// has been assembled; durable persistence belongs to the store collaborator.
package session

import (
	"github.com/tailored-agentic-units/forge/core/protocol"
)

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the conversation history.
	AddMessage(msg protocol.Message)
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Clear resets the conversation history.
	Clear()
}

// Config holds session initialization parameters. Currently empty; serves as
// an extension point for future session backends.
type Config struct{}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {}

// New creates a Session from configuration. Currently returns an in-memory session.
func New(cfg *Config) (Session, error) {
	return NewMemorySession(), nil
}
