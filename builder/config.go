package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailored-agentic-units/forge/agent"
	"github.com/tailored-agentic-units/forge/session"
)

const (
	defaultMaxAttempts           = 10
	defaultSessionTimeoutSeconds = 300
	defaultBuildEndpoint         = "http://localhost:3000/build"
)

const defaultSystemPrompt = `You are a React application builder. Create client-side React applications following these rules:

1. All code must be TypeScript (.tsx or .ts files)
2. React, TailwindCSS, and shadcn/ui components are available
3. Every function and class must have a docstring
4. Non-trivial logic must have concise explanation comments
5. Use modern React patterns (hooks, functional components)
6. Structure: app.tsx as entry point, components in components/
7. Use shadcn/ui components for professional, accessible UI:
   - Import from "shadcn/components/ui/[component]"
   - Available: Button, Card, Input, Label, Badge, Alert, Separator, Progress, Checkbox, Switch, Tabs,
     Tooltip, Dialog, Select, ScrollArea, AlertDialog, DropdownMenu, Avatar, Accordion, Popover, Table
   - Use lucide-react for icons: import { Icon } from "lucide-react"
   - Example: import { Button } from "shadcn/components/ui/button"

When creating files, use appropriate file paths like:
- app.tsx for the main app component (required, default export)
- components/ComponentName.tsx for components
- types.ts for TypeScript type definitions
- hooks/useHookName.ts for custom hooks

Always provide a summary of what you built and list your design decisions.`

// Config holds initialization parameters for all builder subsystems.
// Each subsystem section delegates to that subsystem's config-driven
// constructor.
type Config struct {
	Agent                 agent.Config            `json:"agent"`
	Agents                map[string]agent.Config `json:"agents,omitempty"`
	Session               session.Config          `json:"session"`
	BuildEndpoint         string                  `json:"build_endpoint,omitempty"`
	MaxAttempts           int                     `json:"max_attempts,omitempty"`
	SkipValidation        bool                    `json:"skip_validation,omitempty"`
	SessionTimeoutSeconds int                     `json:"session_timeout_seconds,omitempty"`
	SystemPrompt          string                  `json:"system_prompt,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:                 agent.DefaultConfig(),
		Session:               session.DefaultConfig(),
		BuildEndpoint:         defaultBuildEndpoint,
		MaxAttempts:           defaultMaxAttempts,
		SessionTimeoutSeconds: defaultSessionTimeoutSeconds,
		SystemPrompt:          defaultSystemPrompt,
	}
}

// SessionTimeout returns the per-session wall-clock bound; zero disables it.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSeconds) * time.Second
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)

	if source.BuildEndpoint != "" {
		c.BuildEndpoint = source.BuildEndpoint
	}
	if source.MaxAttempts > 0 {
		c.MaxAttempts = source.MaxAttempts
	}
	if source.SkipValidation {
		c.SkipValidation = true
	}
	if source.SessionTimeoutSeconds != 0 {
		c.SessionTimeoutSeconds = source.SessionTimeoutSeconds
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}

	if len(source.Agents) > 0 {
		c.Agents = source.Agents
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
