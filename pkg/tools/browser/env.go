package browser

import (
	"context"
	"fmt"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/capture"
	"github.com/entrhq/mcp-bridge/pkg/report"
	"github.com/entrhq/mcp-bridge/pkg/security/workspace"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

// Page is the set of page actions the tools drive. *browser.Session
// implements it.
type Page interface {
	Info() (*browser.PageInfo, error)
	Navigate(url string, timeout float64) (*browser.PageInfo, error)
	GoBack(timeout float64) (*browser.PageInfo, error)
	GoForward(timeout float64) (*browser.PageInfo, error)
	Click(selector string, timeout float64) error
	Type(selector, text string, timeout float64) error
	Hover(selector string, timeout float64) error
	WaitForSelector(selector, state string, timeout float64) error
	ElementText(selector string, timeout float64) (string, error)
	ElementAttribute(selector, attribute string, timeout float64) (string, bool, error)
	SelectOption(selector, value, label string, timeout float64) ([]string, error)
	FillForm(fields []browser.FormField, timeout float64) ([]string, error)
	ScrollTo(selector string, timeout float64) error
	ScrollBy(x, y int) (*browser.ScrollPosition, error)
	Evaluate(script string) (interface{}, error)
	Screenshot(path string, fullPage bool) ([]byte, error)
	SetViewport(width, height int) error
	Content(opts browser.ContentOptions) (*browser.Content, error)
	Snapshot() (*browser.Snapshot, error)
	ExportPDF(path string, fullPage bool) (*browser.PDFResult, error)
	Cookies(name string) ([]browser.Cookie, error)
	SetCookies(params []browser.CookieParam) error
}

// Sessions hands out the live page and the diagnostic store.
type Sessions interface {
	Page(ctx context.Context) (Page, error)
	Store() *capture.Store
}

// Env is everything the browser tools depend on.
type Env struct {
	Sessions      Sessions
	ScreenshotDir string
	Artifacts     *workspace.Guard
	Reports       report.Sink
}

// FromManager adapts a Session Manager to Sessions.
func FromManager(m *browser.Manager) Sessions {
	return managerSessions{m: m}
}

type managerSessions struct {
	m *browser.Manager
}

func (s managerSessions) Page(ctx context.Context) (Page, error) {
	session, err := s.m.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire browser session: %w", err)
	}
	return session, nil
}

func (s managerSessions) Store() *capture.Store {
	return s.m.Store()
}

// NewTools returns the browser tool catalog in registration order.
func NewTools(env *Env) []tools.Tool {
	return []tools.Tool{
		NewNavigateTool(env),
		NewClickTool(env),
		NewTypeTool(env),
		NewScreenshotTool(env),
		NewConsoleLogsTool(env),
		NewNetworkTool(env),
		NewExecuteJSTool(env),
		NewScrollTool(env),
		NewGoBackTool(env),
		NewGoForwardTool(env),
		NewHoverTool(env),
		NewWaitForSelectorTool(env),
		NewElementTextTool(env),
		NewElementAttributeTool(env),
		NewSelectOptionTool(env),
		NewFillFormTool(env),
		NewPageContentTool(env),
		NewPDFExportTool(env),
		NewGetCookiesTool(env),
		NewSetCookiesTool(env),
		NewPageReportTool(env),
		NewSetViewportTool(env),
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func selectorProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"minLength":   1,
		"description": "CSS selector of the target element (first match is used)",
	}
}

func boolProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}
