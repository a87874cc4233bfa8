// Package tools provides the assistant's tool catalogue and dispatcher.
//
// Each tool is a named handler with a JSON-schema argument description.
// The registry validates required arguments, dispatches invocations, and
// renders the catalogue as Gemini function declarations.
package tools

import (
	"context"
)

// ToolCategory groups tools for result presentation. Aggregated replies
// render category sections in the order of CategoryOrder.
type ToolCategory string

const (
	// CategoryBoard covers kanban card creation and updates.
	CategoryBoard ToolCategory = "board"

	// CategoryDocuments covers reading uploaded documents.
	CategoryDocuments ToolCategory = "documents"

	// CategoryKnowledge covers summaries and canonical knowledge.
	CategoryKnowledge ToolCategory = "knowledge"

	// CategoryMessaging covers outbound Slack messages.
	CategoryMessaging ToolCategory = "messaging"

	// CategoryResearch covers web research.
	CategoryResearch ToolCategory = "research"

	// CategoryDrive covers Google Drive file operations.
	CategoryDrive ToolCategory = "drive"
)

// CategoryOrder fixes the presentation order of category sections in
// aggregated replies.
var CategoryOrder = []ToolCategory{
	CategoryBoard,
	CategoryDocuments,
	CategoryKnowledge,
	CategoryMessaging,
	CategoryResearch,
	CategoryDrive,
}

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns a human-readable result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is one named operation the model may invoke.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description explains what the tool does, for the model.
	Description string

	// Category classifies the tool for result presentation.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	if t.Category == "" {
		return ErrToolCategoryEmpty
	}
	return nil
}

// ToolResult wraps the result of one tool invocation.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Category is the tool's category, for result grouping.
	Category ToolCategory

	// Result is the markdown output from the tool.
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
