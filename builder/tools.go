package builder

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/forge/core/protocol"
	"github.com/tailored-agentic-units/forge/workspace"
)

// The closed set of file operations exposed to the model. Dispatch is an
// exhaustive switch over these names; there is no open registration.
const (
	OpCreateFile = "create_file"
	OpEditFile   = "edit_file"
	OpDeleteFile = "delete_file"
)

// toolResult is the textual outcome of one operation, fed back to the model
// as the tool message for its next turn. IsError flags invalid or
// unsatisfiable invocations; the loop itself never fails on them.
type toolResult struct {
	Content string
	IsError bool
}

func operationSchemas() []protocol.Tool {
	return []protocol.Tool{
		{
			Name:        OpCreateFile,
			Description: "Create a new file with the given content. Overwrites the file if it already exists.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"file_path": map[string]any{
						"type":        "string",
						"description": "The path where the file should be created (e.g. 'app.tsx').",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "The content to write to the file.",
					},
				},
				"required": []string{"file_path", "content"},
			},
		},
		{
			Name:        OpEditFile,
			Description: "Edit an existing file by applying search/replace hunks in order. Hunks whose search text is not found are reported back without aborting the edit.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"file_path": map[string]any{
						"type":        "string",
						"description": "The path of the file to edit.",
					},
					"hunks": map[string]any{
						"type":        "array",
						"description": "Ordered search/replace operations applied to the current content.",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"search": map[string]any{
									"type":        "string",
									"description": "Exact text to find.",
								},
								"replace": map[string]any{
									"type":        "string",
									"description": "Replacement text.",
								},
								"replace_all": map[string]any{
									"type":        "boolean",
									"description": "Replace every occurrence instead of the first.",
								},
							},
							"required": []string{"search", "replace"},
						},
					},
				},
				"required": []string{"file_path", "hunks"},
			},
		},
		{
			Name:        OpDeleteFile,
			Description: "Delete a file.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"file_path": map[string]any{
						"type":        "string",
						"description": "The path of the file to delete.",
					},
				},
				"required": []string{"file_path"},
			},
		},
	}
}

// dispatch applies one model-issued operation to the workspace. Missing
// files and malformed arguments come back as textual results the model can
// observe and correct; they never abort the session.
func dispatch(ws *workspace.Workspace, call protocol.ToolCall) toolResult {
	switch call.Name {
	case OpCreateFile:
		var args struct {
			FilePath string `json:"file_path"`
			Content  string `json:"content"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return toolResult{Content: "invalid arguments: " + err.Error(), IsError: true}
		}
		if args.FilePath == "" {
			return toolResult{Content: "Error: file_path is required", IsError: true}
		}
		return toolResult{Content: ws.Create(args.FilePath, args.Content)}

	case OpEditFile:
		var args struct {
			FilePath string           `json:"file_path"`
			Hunks    []workspace.Hunk `json:"hunks"`

			// Single-hunk form used by some model revisions.
			Search     string `json:"search"`
			Replace    string `json:"replace"`
			ReplaceAll bool   `json:"replace_all"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return toolResult{Content: "invalid arguments: " + err.Error(), IsError: true}
		}
		if args.FilePath == "" {
			return toolResult{Content: "Error: file_path is required", IsError: true}
		}

		hunks := args.Hunks
		if len(hunks) == 0 && args.Search != "" {
			hunks = []workspace.Hunk{{Search: args.Search, Replace: args.Replace, ReplaceAll: args.ReplaceAll}}
		}

		summary, err := ws.ApplyEdit(args.FilePath, hunks)
		if err != nil {
			return notFoundResult(args.FilePath, err)
		}
		return toolResult{Content: summary}

	case OpDeleteFile:
		var args struct {
			FilePath string `json:"file_path"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return toolResult{Content: "invalid arguments: " + err.Error(), IsError: true}
		}
		if args.FilePath == "" {
			return toolResult{Content: "Error: file_path is required", IsError: true}
		}

		confirmation, err := ws.Delete(args.FilePath)
		if err != nil {
			return notFoundResult(args.FilePath, err)
		}
		return toolResult{Content: confirmation}

	default:
		return toolResult{Content: fmt.Sprintf("Error: unknown tool %q", call.Name), IsError: true}
	}
}

func notFoundResult(path string, err error) toolResult {
	if errors.Is(err, workspace.ErrFileNotFound) {
		return toolResult{Content: fmt.Sprintf("Error: File %s does not exist", path), IsError: true}
	}
	return toolResult{Content: "Error: " + err.Error(), IsError: true}
}
