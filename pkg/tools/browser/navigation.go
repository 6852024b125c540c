package browser

import (
	"context"
	"encoding/json"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

const historyTimeout = 10000.0

// NavigateTool loads a URL in the session page.
type NavigateTool struct {
	env *Env
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(env *Env) *NavigateTool {
	return &NavigateTool{env: env}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate the browser to a URL. Returns once the response has committed; the page may still be loading."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"format":      "uri",
				"description": "Absolute URL to open, including the scheme",
			},
		},
		[]string{"url"},
	)
}

// Timeout returns the navigation deadline.
func (t *NavigateTool) Timeout() time.Duration {
	return millis(browser.NavigateTimeout)
}

type navigateInput struct {
	URL string `json:"url"`
}

// Execute navigates to the requested URL.
func (t *NavigateTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input navigateInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	return page.Navigate(input.URL, browser.NavigateTimeout)
}

// HistoryTool moves through the session history.
type HistoryTool struct {
	env     *Env
	forward bool
}

// NewGoBackTool creates the go_back tool.
func NewGoBackTool(env *Env) *HistoryTool {
	return &HistoryTool{env: env}
}

// NewGoForwardTool creates the go_forward tool.
func NewGoForwardTool(env *Env) *HistoryTool {
	return &HistoryTool{env: env, forward: true}
}

// Name returns the tool name.
func (t *HistoryTool) Name() string {
	if t.forward {
		return "go_forward"
	}
	return "go_back"
}

// Description returns the tool description.
func (t *HistoryTool) Description() string {
	if t.forward {
		return "Go forward one entry in the browser history."
	}
	return "Go back one entry in the browser history."
}

// Schema returns the tool's JSON schema.
func (t *HistoryTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Timeout returns the history navigation deadline.
func (t *HistoryTool) Timeout() time.Duration {
	return millis(historyTimeout)
}

// Execute moves one step and reports where the page ended up.
func (t *HistoryTool) Execute(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	if t.forward {
		return page.GoForward(historyTimeout)
	}
	return page.GoBack(historyTimeout)
}

func millis(ms float64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
