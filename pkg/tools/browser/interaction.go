package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

const (
	elementTimeout  = 5000.0
	fillFormTimeout = 15000.0
	maxWaitTimeout  = 30000
)

type selectorInput struct {
	Selector string `json:"selector"`
}

// ClickTool clicks an element once it is visible.
type ClickTool struct {
	env *Env
}

// NewClickTool creates a new click tool.
func NewClickTool(env *Env) *ClickTool {
	return &ClickTool{env: env}
}

// Name returns the tool name.
func (t *ClickTool) Name() string {
	return "click"
}

// Description returns the tool description.
func (t *ClickTool) Description() string {
	return "Click the first element matching a CSS selector. Waits up to 3s for it to become visible and does not wait for navigation."
}

// Schema returns the tool's JSON schema.
func (t *ClickTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{"selector": selectorProp()},
		[]string{"selector"},
	)
}

// Timeout covers the visibility wait plus the click itself.
func (t *ClickTool) Timeout() time.Duration {
	return 2 * millis(browser.ActionTimeout)
}

// Execute clicks the element.
func (t *ClickTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input selectorInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.Click(input.Selector, browser.ActionTimeout); err != nil {
		return nil, err
	}
	return map[string]interface{}{"selector": input.Selector, "clicked": true}, nil
}

// TypeTool replaces the value of an input element.
type TypeTool struct {
	env *Env
}

// NewTypeTool creates a new type tool.
func NewTypeTool(env *Env) *TypeTool {
	return &TypeTool{env: env}
}

// Name returns the tool name.
func (t *TypeTool) Name() string {
	return "type"
}

// Description returns the tool description.
func (t *TypeTool) Description() string {
	return "Fill an input or textarea with text, replacing its current value. Waits up to 3s for the element to become visible."
}

// Schema returns the tool's JSON schema.
func (t *TypeTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": selectorProp(),
			"text":     stringProp("Text to enter"),
		},
		[]string{"selector", "text"},
	)
}

// Timeout covers the visibility wait plus the fill.
func (t *TypeTool) Timeout() time.Duration {
	return 2 * millis(browser.ActionTimeout)
}

type typeInput struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

// Execute fills the element.
func (t *TypeTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input typeInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.Type(input.Selector, input.Text, browser.ActionTimeout); err != nil {
		return nil, err
	}
	return map[string]interface{}{"selector": input.Selector, "typed": input.Text}, nil
}

// HoverTool moves the pointer over an element.
type HoverTool struct {
	env *Env
}

// NewHoverTool creates a new hover tool.
func NewHoverTool(env *Env) *HoverTool {
	return &HoverTool{env: env}
}

// Name returns the tool name.
func (t *HoverTool) Name() string {
	return "hover"
}

// Description returns the tool description.
func (t *HoverTool) Description() string {
	return "Hover the mouse over the first element matching a CSS selector."
}

// Schema returns the tool's JSON schema.
func (t *HoverTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{"selector": selectorProp()},
		[]string{"selector"},
	)
}

// Timeout returns the hover deadline.
func (t *HoverTool) Timeout() time.Duration {
	return millis(elementTimeout)
}

// Execute hovers the element.
func (t *HoverTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input selectorInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.Hover(input.Selector, elementTimeout); err != nil {
		return nil, err
	}
	return map[string]interface{}{"selector": input.Selector, "hovered": true}, nil
}

// ScrollTool scrolls the window or brings an element into view.
type ScrollTool struct {
	env *Env
}

// NewScrollTool creates a new scroll tool.
func NewScrollTool(env *Env) *ScrollTool {
	return &ScrollTool{env: env}
}

// Name returns the tool name.
func (t *ScrollTool) Name() string {
	return "scroll"
}

// Description returns the tool description.
func (t *ScrollTool) Description() string {
	return "Scroll the page. With a selector the element is scrolled into view; otherwise the window scrolls by x/y pixels."
}

// Schema returns the tool's JSON schema.
func (t *ScrollTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "integer",
				"description": "Horizontal offset in pixels (default 0)",
			},
			"y": map[string]interface{}{
				"type":        "integer",
				"description": "Vertical offset in pixels (default 0)",
			},
			"selector": selectorProp(),
		},
		nil,
	)
}

// Timeout returns the scroll deadline.
func (t *ScrollTool) Timeout() time.Duration {
	return millis(elementTimeout)
}

type scrollInput struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Selector string `json:"selector"`
}

// Execute scrolls.
func (t *ScrollTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input scrollInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}

	if input.Selector != "" {
		if err := page.ScrollTo(input.Selector, elementTimeout); err != nil {
			return nil, err
		}
		return map[string]interface{}{"selector": input.Selector}, nil
	}
	return page.ScrollBy(input.X, input.Y)
}

// WaitForSelectorTool blocks until an element reaches a state.
type WaitForSelectorTool struct {
	env *Env
}

// NewWaitForSelectorTool creates a new wait_for_selector tool.
func NewWaitForSelectorTool(env *Env) *WaitForSelectorTool {
	return &WaitForSelectorTool{env: env}
}

// Name returns the tool name.
func (t *WaitForSelectorTool) Name() string {
	return "wait_for_selector"
}

// Description returns the tool description.
func (t *WaitForSelectorTool) Description() string {
	return "Wait until the first element matching a selector is attached, detached, visible or hidden."
}

// Schema returns the tool's JSON schema.
func (t *WaitForSelectorTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": selectorProp(),
			"state": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"attached", "detached", "visible", "hidden"},
				"description": "State to wait for (default visible)",
			},
			"timeout": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"maximum":     maxWaitTimeout,
				"description": "Maximum wait in milliseconds (default 30000)",
			},
		},
		[]string{"selector"},
	)
}

// Timeout is the upper bound; the per-call wait is set by the timeout argument.
func (t *WaitForSelectorTool) Timeout() time.Duration {
	return millis(maxWaitTimeout) + time.Second
}

type waitInput struct {
	Selector string `json:"selector"`
	State    string `json:"state"`
	Timeout  int    `json:"timeout"`
}

// Execute waits for the element state.
func (t *WaitForSelectorTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input waitInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.State == "" {
		input.State = "visible"
	}
	if input.Timeout <= 0 {
		input.Timeout = maxWaitTimeout
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.WaitForSelector(input.Selector, input.State, float64(input.Timeout)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"selector": input.Selector, "state": input.State}, nil
}

// SelectOptionTool chooses an option of a <select> element.
type SelectOptionTool struct {
	env *Env
}

// NewSelectOptionTool creates a new select_option tool.
func NewSelectOptionTool(env *Env) *SelectOptionTool {
	return &SelectOptionTool{env: env}
}

// Name returns the tool name.
func (t *SelectOptionTool) Name() string {
	return "select_option"
}

// Description returns the tool description.
func (t *SelectOptionTool) Description() string {
	return "Select an option in a <select> element by value or by visible label."
}

// Schema returns the tool's JSON schema.
func (t *SelectOptionTool) Schema() map[string]interface{} {
	schema := tools.BaseToolSchema(
		map[string]interface{}{
			"selector": selectorProp(),
			"value":    stringProp("Option value to select"),
			"label":    stringProp("Option label to select when value is not given"),
		},
		[]string{"selector"},
	)
	schema["anyOf"] = []interface{}{
		map[string]interface{}{"required": []string{"value"}},
		map[string]interface{}{"required": []string{"label"}},
	}
	return schema
}

// Timeout returns the selection deadline.
func (t *SelectOptionTool) Timeout() time.Duration {
	return millis(elementTimeout)
}

type selectInput struct {
	Selector string `json:"selector"`
	Value    string `json:"value"`
	Label    string `json:"label"`
}

// Execute selects the option.
func (t *SelectOptionTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input selectInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.Value == "" && input.Label == "" {
		return nil, fmt.Errorf("%w: value or label is required", tools.ErrInvalidArguments)
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := page.SelectOption(input.Selector, input.Value, input.Label, elementTimeout)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"selector": input.Selector, "selected": selected}, nil
}

// FillFormTool fills several fields in one call.
type FillFormTool struct {
	env *Env
}

// NewFillFormTool creates a new fill_form tool.
func NewFillFormTool(env *Env) *FillFormTool {
	return &FillFormTool{env: env}
}

// Name returns the tool name.
func (t *FillFormTool) Name() string {
	return "fill_form"
}

// Description returns the tool description.
func (t *FillFormTool) Description() string {
	return "Fill multiple form fields in order. Stops at the first field that cannot be filled."
}

// Schema returns the tool's JSON schema.
func (t *FillFormTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"fields": map[string]interface{}{
				"type":     "array",
				"minItems": 1,
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"selector": selectorProp(),
						"value":    stringProp("Value to enter"),
					},
					"required": []string{"selector", "value"},
				},
				"description": "Fields to fill, in order",
			},
		},
		[]string{"fields"},
	)
}

// Timeout returns the deadline for the whole form.
func (t *FillFormTool) Timeout() time.Duration {
	return millis(fillFormTimeout)
}

type fillFormInput struct {
	Fields []browser.FormField `json:"fields"`
}

// Execute fills the fields.
func (t *FillFormTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input fillFormInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	filled, err := page.FillForm(input.Fields, browser.ActionTimeout)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"filled": len(filled), "fields": filled}, nil
}
