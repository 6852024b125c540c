package browser

import (
	"context"
	"encoding/json"

	"github.com/entrhq/mcp-bridge/pkg/capture"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

// ConsoleLogsTool returns captured console messages.
type ConsoleLogsTool struct {
	env *Env
}

// NewConsoleLogsTool creates a new get_console_logs tool.
func NewConsoleLogsTool(env *Env) *ConsoleLogsTool {
	return &ConsoleLogsTool{env: env}
}

// Name returns the tool name.
func (t *ConsoleLogsTool) Name() string {
	return "get_console_logs"
}

// Description returns the tool description.
func (t *ConsoleLogsTool) Description() string {
	return "Return console messages captured from the page, oldest first. Optionally filter by type; clear removes only the returned entries."
}

// Schema returns the tool's JSON schema.
func (t *ConsoleLogsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"log", "debug", "info", "warning", "error", "trace"},
				"description": "Only return messages of this type",
			},
			"clear": boolProp("Remove the returned entries from the buffer; entries the filter excludes are kept"),
		},
		nil,
	)
}

type consoleInput struct {
	Type  string `json:"type"`
	Clear bool   `json:"clear"`
}

// Execute reads the console buffer.
func (t *ConsoleLogsTool) Execute(_ context.Context, args json.RawMessage) (interface{}, error) {
	var input consoleInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	buf := t.env.Sessions.Store().Console
	filter := capture.ConsoleFilter{Type: input.Type}
	if input.Clear {
		return nonNil(buf.Take(filter.Match)), nil
	}
	return filter.Apply(buf.Snapshot()), nil
}

// NetworkTool returns observed network responses.
type NetworkTool struct {
	env *Env
}

// NewNetworkTool creates a new get_network tool.
func NewNetworkTool(env *Env) *NetworkTool {
	return &NetworkTool{env: env}
}

// Name returns the tool name.
func (t *NetworkTool) Name() string {
	return "get_network"
}

// Description returns the tool description.
func (t *NetworkTool) Description() string {
	return "Return network responses observed by the page, oldest first. Filter by URL glob (plain text matches as a substring) and minimum status."
}

// Schema returns the tool's JSON schema.
func (t *NetworkTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"filter": stringProp("URL glob such as *api/* or a plain substring"),
			"minStatus": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"maximum":     599,
				"description": "Only return responses with at least this status, e.g. 400 for failures",
			},
			"clear": boolProp("Remove the returned entries from the buffer; entries the filter excludes are kept"),
		},
		nil,
	)
}

type networkInput struct {
	Filter    string `json:"filter"`
	MinStatus int    `json:"minStatus"`
	Clear     bool   `json:"clear"`
}

// Execute reads the network buffer.
func (t *NetworkTool) Execute(_ context.Context, args json.RawMessage) (interface{}, error) {
	var input networkInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	filter, err := capture.NewNetworkFilter(input.Filter, input.MinStatus)
	if err != nil {
		return nil, err
	}

	buf := t.env.Sessions.Store().Network
	if input.Clear {
		return nonNil(buf.Take(filter.Match)), nil
	}
	return filter.Apply(buf.Snapshot()), nil
}

// nonNil keeps an empty result encoding as [] rather than null.
func nonNil[T any](entries []T) []T {
	if entries == nil {
		return []T{}
	}
	return entries
}
