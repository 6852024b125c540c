// Package tools defines the tool abstraction and the dispatcher that validates
// tool-call arguments against each tool's schema before running it.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Tool is one named, schema-declared action callers can invoke.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "navigate")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON Schema for this tool's arguments
	Schema() map[string]interface{}

	// Execute runs the tool with arguments already validated against Schema.
	// The returned value becomes the data of a successful result.
	Execute(ctx context.Context, args json.RawMessage) (interface{}, error)
}

// TimeoutProvider is implemented by tools whose deadline differs from the
// dispatcher default.
type TimeoutProvider interface {
	Timeout() time.Duration
}

// BaseToolSchema creates a standard object schema for tool arguments.
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

// DecodeArgs unmarshals validated arguments into v. Empty arguments decode as
// an empty object.
func DecodeArgs(args json.RawMessage, v interface{}) error {
	if len(strings.TrimSpace(string(args))) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
