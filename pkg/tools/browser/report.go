package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/report"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

const reportTimeout = 15000.0

// PageReportTool analyzes the current page and publishes the result.
type PageReportTool struct {
	env *Env
}

// NewPageReportTool creates a new generate_page_report tool.
func NewPageReportTool(env *Env) *PageReportTool {
	return &PageReportTool{env: env}
}

// Name returns the tool name.
func (t *PageReportTool) Name() string {
	return "generate_page_report"
}

// Description returns the tool description.
func (t *PageReportTool) Description() string {
	return "Analyze the current page (headings, links, forms, images, console errors and failed requests) and publish the report to the /report view."
}

// Schema returns the tool's JSON schema.
func (t *PageReportTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"includeLinks":  boolProp("Include the link list (default true)"),
			"includeForms":  boolProp("Include the form list (default true)"),
			"includeImages": boolProp("Include the image list (default true)"),
		},
		nil,
	)
}

// Timeout returns the analysis deadline.
func (t *PageReportTool) Timeout() time.Duration {
	return millis(reportTimeout)
}

type reportInput struct {
	IncludeLinks  *bool `json:"includeLinks"`
	IncludeForms  *bool `json:"includeForms"`
	IncludeImages *bool `json:"includeImages"`
}

// Execute builds and publishes the report.
func (t *PageReportTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input reportInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	page, err := t.env.Sessions.Page(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := page.Snapshot()
	if err != nil {
		return nil, err
	}

	store := t.env.Sessions.Store()
	r, err := report.Build(report.Input{
		URL:     snap.URL,
		Title:   snap.Title,
		HTML:    snap.HTML,
		Console: store.Console.Snapshot(),
		Network: store.Network.Snapshot(),
	}, report.Options{
		IncludeLinks:  orTrue(input.IncludeLinks),
		IncludeForms:  orTrue(input.IncludeForms),
		IncludeImages: orTrue(input.IncludeImages),
	})
	if err != nil {
		return nil, err
	}

	if t.env.Reports != nil {
		if err := t.env.Reports.Publish(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to publish report: %w", err)
		}
	}
	return r, nil
}

func orTrue(b *bool) bool {
	return b == nil || *b
}
