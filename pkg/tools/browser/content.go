package browser

import (
	"context"
	"encoding/json"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

const (
	contentTimeout  = 10000.0
	evaluateTimeout = 10000.0
)

// ElementTextTool reads the text content of an element.
type ElementTextTool struct {
	env *Env
}

// NewElementTextTool creates a new get_element_text tool.
func NewElementTextTool(env *Env) *ElementTextTool {
	return &ElementTextTool{env: env}
}

// Name returns the tool name.
func (t *ElementTextTool) Name() string {
	return "get_element_text"
}

// Description returns the tool description.
func (t *ElementTextTool) Description() string {
	return "Return the text content of the first element matching a CSS selector."
}

// Schema returns the tool's JSON schema.
func (t *ElementTextTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{"selector": selectorProp()},
		[]string{"selector"},
	)
}

// Timeout returns the lookup deadline.
func (t *ElementTextTool) Timeout() time.Duration {
	return millis(elementTimeout)
}

// Execute reads the text.
func (t *ElementTextTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input selectorInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	text, err := page.ElementText(input.Selector, elementTimeout)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"selector": input.Selector, "text": text}, nil
}

// ElementAttributeTool reads one attribute of an element.
type ElementAttributeTool struct {
	env *Env
}

// NewElementAttributeTool creates a new get_element_attribute tool.
func NewElementAttributeTool(env *Env) *ElementAttributeTool {
	return &ElementAttributeTool{env: env}
}

// Name returns the tool name.
func (t *ElementAttributeTool) Name() string {
	return "get_element_attribute"
}

// Description returns the tool description.
func (t *ElementAttributeTool) Description() string {
	return "Return an attribute of the first element matching a CSS selector. The value is null when the attribute is absent."
}

// Schema returns the tool's JSON schema.
func (t *ElementAttributeTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": selectorProp(),
			"attribute": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": "Attribute name, e.g. href",
			},
		},
		[]string{"selector", "attribute"},
	)
}

// Timeout returns the lookup deadline.
func (t *ElementAttributeTool) Timeout() time.Duration {
	return millis(elementTimeout)
}

type attributeInput struct {
	Selector  string `json:"selector"`
	Attribute string `json:"attribute"`
}

// Execute reads the attribute.
func (t *ElementAttributeTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input attributeInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	value, ok, err := page.ElementAttribute(input.Selector, input.Attribute, elementTimeout)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{
		"selector":  input.Selector,
		"attribute": input.Attribute,
		"value":     nil,
	}
	if ok {
		out["value"] = value
	}
	return out, nil
}

// PageContentTool extracts page content.
type PageContentTool struct {
	env *Env
}

// NewPageContentTool creates a new get_page_content tool.
func NewPageContentTool(env *Env) *PageContentTool {
	return &PageContentTool{env: env}
}

// Name returns the tool name.
func (t *PageContentTool) Name() string {
	return "get_page_content"
}

// Description returns the tool description.
func (t *PageContentTool) Description() string {
	return `Return the page (or one element) as raw html, visible text, or "cleaned" HTML stripped of scripts, styles and presentational attributes.`
}

// Schema returns the tool's JSON schema.
func (t *PageContentTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{string(browser.ContentHTML), string(browser.ContentText), string(browser.ContentCleaned)},
				"description": "Representation to return (default text)",
			},
			"selector": selectorProp(),
			"maxLength": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"description": "Truncate the content to this many characters (default 100000)",
			},
		},
		nil,
	)
}

// Timeout returns the extraction deadline.
func (t *PageContentTool) Timeout() time.Duration {
	return millis(contentTimeout)
}

type contentInput struct {
	Type      string `json:"type"`
	Selector  string `json:"selector"`
	MaxLength int    `json:"maxLength"`
}

// Execute extracts the content.
func (t *PageContentTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input contentInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	return page.Content(browser.ContentOptions{
		Type:      browser.ContentType(input.Type),
		Selector:  input.Selector,
		MaxLength: input.MaxLength,
		Timeout:   browser.ActionTimeout,
	})
}

// ExecuteJSTool evaluates a script in the page.
type ExecuteJSTool struct {
	env *Env
}

// NewExecuteJSTool creates a new execute_js tool.
func NewExecuteJSTool(env *Env) *ExecuteJSTool {
	return &ExecuteJSTool{env: env}
}

// Name returns the tool name.
func (t *ExecuteJSTool) Name() string {
	return "execute_js"
}

// Description returns the tool description.
func (t *ExecuteJSTool) Description() string {
	return "Evaluate a JavaScript expression or function in the page and return its JSON-serializable result."
}

// Schema returns the tool's JSON schema.
func (t *ExecuteJSTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"script": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": "Expression or function source, e.g. document.title or () => location.href",
			},
		},
		[]string{"script"},
	)
}

// Timeout returns the evaluation deadline.
func (t *ExecuteJSTool) Timeout() time.Duration {
	return millis(evaluateTimeout)
}

type executeJSInput struct {
	Script string `json:"script"`
}

// Execute evaluates the script.
func (t *ExecuteJSTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input executeJSInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	result, err := page.Evaluate(input.Script)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"result": result}, nil
}
