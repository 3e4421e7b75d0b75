// Package tools defines the callable tool surface shared by the MCP server
// and the CLI, and the JSON result envelope every tool returns.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a workflow exposed to callers by name with a JSON schema.
//
// Execute never returns a Go error for workflow failures: those are data,
// reported through the Result's status and error fields.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "v0_publish")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool with the given JSON arguments
	Execute(ctx context.Context, argumentsJSON []byte) *Result
}

// BaseToolSchema creates a standard JSON schema structure for tool parameters.
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty is a schema property of type string.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// IntegerProperty is a schema property of type integer with a default.
func IntegerProperty(description string, def int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"default":     def,
	}
}

// UnmarshalArgs decodes tool arguments. Empty input decodes as an empty object.
func UnmarshalArgs(argumentsJSON []byte, v interface{}) error {
	if len(argumentsJSON) == 0 || string(argumentsJSON) == "null" {
		argumentsJSON = []byte("{}")
	}
	if err := json.Unmarshal(argumentsJSON, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// RequireString returns an error naming the field when value is empty.
func RequireString(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
