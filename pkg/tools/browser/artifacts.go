package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

const (
	pdfTimeout     = 30000.0
	minViewportDim = 100
	maxViewportDim = 5000
)

// ScreenshotTool saves a PNG of the page.
type ScreenshotTool struct {
	env *Env
	now func() time.Time
}

// NewScreenshotTool creates a new take_screenshot tool.
func NewScreenshotTool(env *Env) *ScreenshotTool {
	return &ScreenshotTool{env: env, now: time.Now}
}

// Name returns the tool name.
func (t *ScreenshotTool) Name() string {
	return "take_screenshot"
}

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Capture the page as a PNG in the screenshot directory. Animations are disabled while capturing."
}

// Schema returns the tool's JSON schema.
func (t *ScreenshotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"pattern":     "^[A-Za-z0-9][A-Za-z0-9._-]*$",
				"maxLength":   128,
				"description": "File name without extension (default screenshot-<unix ms>)",
			},
			"fullPage": boolProp("Capture the whole scrollable page instead of the viewport"),
		},
		nil,
	)
}

// Timeout returns the capture deadline.
func (t *ScreenshotTool) Timeout() time.Duration {
	return millis(browser.ScreenshotTimeout)
}

type screenshotInput struct {
	Name     string `json:"name"`
	FullPage bool   `json:"fullPage"`
}

// Execute captures the screenshot.
func (t *ScreenshotTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input screenshotInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.Name == "" {
		input.Name = fmt.Sprintf("screenshot-%d", t.now().UnixMilli())
	}

	dir, err := filepath.Abs(t.env.ScreenshotDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve screenshot directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, input.Name+".png")
	data, err := page.Screenshot(path, input.FullPage)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": path, "fullPage": input.FullPage, "bytes": len(data)}, nil
}

// PDFExportTool prints the page to a PDF inside the output directory.
type PDFExportTool struct {
	env *Env
}

// NewPDFExportTool creates a new pdf_export tool.
func NewPDFExportTool(env *Env) *PDFExportTool {
	return &PDFExportTool{env: env}
}

// Name returns the tool name.
func (t *PDFExportTool) Name() string {
	return "pdf_export"
}

// Description returns the tool description.
func (t *PDFExportTool) Description() string {
	return "Print the page to a PDF file. The path is relative to the output directory and may not leave it. Requires headless mode."
}

// Schema returns the tool's JSON schema.
func (t *PDFExportTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": "Destination file, e.g. exports/page.pdf",
			},
			"fullPage": boolProp("Size the paper to the whole document instead of A4"),
		},
		[]string{"path"},
	)
}

// Timeout returns the export deadline.
func (t *PDFExportTool) Timeout() time.Duration {
	return millis(pdfTimeout)
}

type pdfInput struct {
	Path     string `json:"path"`
	FullPage bool   `json:"fullPage"`
}

// Execute exports the PDF.
func (t *PDFExportTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input pdfInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	if t.env.Artifacts == nil {
		return nil, errors.New("pdf export is not configured")
	}
	if !strings.EqualFold(filepath.Ext(input.Path), ".pdf") {
		input.Path += ".pdf"
	}

	path, err := t.env.Artifacts.ValidatePath(input.Path)
	if err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	return page.ExportPDF(path, input.FullPage)
}

// SetViewportTool resizes the page viewport.
type SetViewportTool struct {
	env *Env
}

// NewSetViewportTool creates a new set_viewport tool.
func NewSetViewportTool(env *Env) *SetViewportTool {
	return &SetViewportTool{env: env}
}

// Name returns the tool name.
func (t *SetViewportTool) Name() string {
	return "set_viewport"
}

// Description returns the tool description.
func (t *SetViewportTool) Description() string {
	return "Resize the page viewport."
}

// Schema returns the tool's JSON schema.
func (t *SetViewportTool) Schema() map[string]interface{} {
	dim := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "integer",
			"minimum":     minViewportDim,
			"maximum":     maxViewportDim,
			"description": desc,
		}
	}
	return tools.BaseToolSchema(
		map[string]interface{}{
			"width":  dim("Viewport width in CSS pixels"),
			"height": dim("Viewport height in CSS pixels"),
		},
		[]string{"width", "height"},
	)
}

// Timeout returns the resize deadline.
func (t *SetViewportTool) Timeout() time.Duration {
	return millis(elementTimeout)
}

// Execute resizes the viewport.
func (t *SetViewportTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input browser.Viewport
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.SetViewport(input.Width, input.Height); err != nil {
		return nil, err
	}
	return input, nil
}
