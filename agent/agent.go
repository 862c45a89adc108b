// Package agent abstracts the model completion capability behind a small
// interface. The default implementation speaks the OpenAI-compatible chat
// completions API with tool calling; the registry manages named agent
// configurations with lazy instantiation.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/forge/core/protocol"
	"github.com/tailored-agentic-units/forge/core/response"
)

// Sentinel errors for agent construction and lookup.
var (
	ErrAgentNotFound   = errors.New("agent not found")
	ErrAgentExists     = errors.New("agent already registered")
	ErrEmptyAgentName  = errors.New("agent name is empty")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingAPIKey   = errors.New("API key not configured")
)

// Agent executes one tools-protocol round trip: given the conversation so far
// and the available tool schemas, it returns either tool invocations or a
// final text response.
type Agent interface {
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error)
}

// Config holds initialization parameters for one agent.
type Config struct {
	Provider string         `json:"provider,omitempty"` // "openai" (default)
	Model    string         `json:"model,omitempty"`
	BaseURL  string         `json:"base_url,omitempty"` // empty uses the provider default
	APIKey   string         `json:"api_key,omitempty"`  // empty falls back to the environment
	Options  map[string]any `json:"options,omitempty"`  // provider options (temperature, max_tokens, ...)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Model:    defaultModel,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if len(source.Options) > 0 {
		c.Options = source.Options
	}
}

// New creates an Agent from configuration.
func New(cfg *Config) (Agent, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return newOpenAIAgent(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}
