package browser

import (
	"context"
	"encoding/json"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

const cookieTimeout = 5000.0

// GetCookiesTool lists cookies of the browser context.
type GetCookiesTool struct {
	env *Env
}

// NewGetCookiesTool creates a new get_cookies tool.
func NewGetCookiesTool(env *Env) *GetCookiesTool {
	return &GetCookiesTool{env: env}
}

// Name returns the tool name.
func (t *GetCookiesTool) Name() string {
	return "get_cookies"
}

// Description returns the tool description.
func (t *GetCookiesTool) Description() string {
	return "List cookies stored in the browser profile, optionally only those with a given name."
}

// Schema returns the tool's JSON schema.
func (t *GetCookiesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{"name": stringProp("Only return cookies with this name")},
		nil,
	)
}

// Timeout returns the lookup deadline.
func (t *GetCookiesTool) Timeout() time.Duration {
	return millis(cookieTimeout)
}

type getCookiesInput struct {
	Name string `json:"name"`
}

// Execute lists the cookies.
func (t *GetCookiesTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input getCookiesInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	return page.Cookies(input.Name)
}

// SetCookiesTool adds cookies to the browser context.
type SetCookiesTool struct {
	env *Env
}

// NewSetCookiesTool creates a new set_cookies tool.
func NewSetCookiesTool(env *Env) *SetCookiesTool {
	return &SetCookiesTool{env: env}
}

// Name returns the tool name.
func (t *SetCookiesTool) Name() string {
	return "set_cookies"
}

// Description returns the tool description.
func (t *SetCookiesTool) Description() string {
	return "Add cookies to the browser profile. Each cookie needs either a url or both domain and path."
}

// Schema returns the tool's JSON schema.
func (t *SetCookiesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"cookies": map[string]interface{}{
				"type":     "array",
				"minItems": 1,
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":     map[string]interface{}{"type": "string", "minLength": 1},
						"value":    map[string]interface{}{"type": "string"},
						"url":      map[string]interface{}{"type": "string", "format": "uri"},
						"domain":   map[string]interface{}{"type": "string"},
						"path":     map[string]interface{}{"type": "string"},
						"expires":  map[string]interface{}{"type": "number", "description": "Unix time in seconds"},
						"httpOnly": map[string]interface{}{"type": "boolean"},
						"secure":   map[string]interface{}{"type": "boolean"},
						"sameSite": map[string]interface{}{"type": "string", "enum": []string{"Strict", "Lax", "None"}},
					},
					"required": []string{"name", "value"},
					"anyOf": []interface{}{
						map[string]interface{}{"required": []string{"url"}},
						map[string]interface{}{"required": []string{"domain", "path"}},
					},
				},
			},
		},
		[]string{"cookies"},
	)
}

// Timeout returns the update deadline.
func (t *SetCookiesTool) Timeout() time.Duration {
	return millis(cookieTimeout)
}

type setCookiesInput struct {
	Cookies []browser.CookieParam `json:"cookies"`
}

// Execute adds the cookies.
func (t *SetCookiesTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input setCookiesInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.SetCookies(input.Cookies); err != nil {
		return nil, err
	}
	return map[string]interface{}{"count": len(input.Cookies)}, nil
}
