package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/playwright-community/playwright-go"
)

// Content extracts the page (or the first element matching Selector) as
// HTML, visible text, or cleaned HTML.
func (s *Session) Content(opts ContentOptions) (*Content, error) {
	if opts.Type == "" {
		opts.Type = ContentText
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxContentLength
	}

	var (
		raw string
		err error
	)
	switch opts.Type {
	case ContentHTML, ContentCleaned:
		raw, err = s.html(opts.Selector, opts.Timeout)
	case ContentText:
		raw, err = s.innerText(opts.Selector, opts.Timeout)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", opts.Type)
	}
	if err != nil {
		return nil, err
	}

	if opts.Type == ContentCleaned {
		cleaned, err := CleanHTML(raw, opts.MaxLength)
		if err != nil {
			return nil, err
		}
		return &Content{
			Type:      opts.Type,
			Content:   cleaned.HTML,
			Length:    len(cleaned.HTML),
			Truncated: cleaned.Truncated,
		}, nil
	}

	out := &Content{Type: opts.Type, Content: raw, Length: len(raw)}
	if len(raw) > opts.MaxLength {
		out.Content = truncateRunes(raw, opts.MaxLength)
		out.Truncated = true
	}
	return out, nil
}

func (s *Session) html(selector string, timeout float64) (string, error) {
	if selector == "" {
		content, err := s.page.Content()
		if err != nil {
			return "", fmt.Errorf("failed to read page content: %w", err)
		}
		return content, nil
	}

	content, err := s.locate(selector).InnerHTML(playwright.LocatorInnerHTMLOptions{
		Timeout: playwright.Float(timeout),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read %q content: %w", selector, err)
	}
	return content, nil
}

func (s *Session) innerText(selector string, timeout float64) (string, error) {
	if selector == "" {
		selector = "body"
	}
	text, err := s.locate(selector).InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(timeout),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read %q text: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

// Snapshot captures URL, title and full HTML for report generation.
func (s *Session) Snapshot() (*Snapshot, error) {
	info, err := s.Info()
	if err != nil {
		return nil, err
	}
	content, err := s.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return &Snapshot{URL: info.URL, Title: info.Title, HTML: content}, nil
}

// PDFResult describes an exported PDF.
type PDFResult struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Bytes int    `json:"bytes"`
}

// ExportPDF prints the page to path. With fullPage the paper size matches the
// whole document instead of A4. Only headless Chromium can print.
func (s *Session) ExportPDF(path string, fullPage bool) (*PDFResult, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	opts := playwright.PagePdfOptions{
		Path:            playwright.String(path),
		PrintBackground: playwright.Bool(true),
	}
	if fullPage {
		size, err := s.documentSize()
		if err != nil {
			return nil, err
		}
		opts.Width = playwright.String(fmt.Sprintf("%dpx", size.X))
		opts.Height = playwright.String(fmt.Sprintf("%dpx", size.Y))
	} else {
		opts.Format = playwright.String("A4")
	}

	data, err := s.page.PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("pdf export failed: %w", err)
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exported pdf: %w", err)
	}

	return &PDFResult{Path: path, Pages: pages, Bytes: len(data)}, nil
}

// documentSize returns the scrollable document dimensions.
func (s *Session) documentSize() (*ScrollPosition, error) {
	v, err := s.page.Evaluate(`() => [
		document.documentElement.scrollWidth,
		document.documentElement.scrollHeight
	]`)
	if err != nil {
		return nil, fmt.Errorf("failed to measure document: %w", err)
	}
	size := &ScrollPosition{}
	if arr, ok := v.([]interface{}); ok && len(arr) == 2 {
		size.X = toInt(arr[0])
		size.Y = toInt(arr[1])
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("document has no measurable size")
	}
	return size, nil
}
