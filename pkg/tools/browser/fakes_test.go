package browser

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/capture"
)

var errTimeout = errors.New(`element "#missing" not visible: Timeout 3000ms exceeded`)

// fakePage records the actions it receives.
type fakePage struct {
	mu      sync.Mutex
	calls   []string
	info    browser.PageInfo
	visible map[string]bool
	attrs   map[string]string
	html    string
	cookies []browser.Cookie
	added   []browser.CookieParam
	pdfPath string
	waited  struct {
		state   string
		timeout float64
	}
}

func newFakePage() *fakePage {
	return &fakePage{
		info:    browser.PageInfo{URL: "about:blank"},
		visible: map[string]bool{},
		attrs:   map[string]string{},
	}
}

func (p *fakePage) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) Info() (*browser.PageInfo, error) {
	info := p.info
	return &info, nil
}

func (p *fakePage) Navigate(url string, _ float64) (*browser.PageInfo, error) {
	p.record("navigate " + url)
	p.info = browser.PageInfo{URL: url, Title: "Example Domain"}
	return p.Info()
}

func (p *fakePage) GoBack(float64) (*browser.PageInfo, error) {
	p.record("back")
	return p.Info()
}

func (p *fakePage) GoForward(float64) (*browser.PageInfo, error) {
	p.record("forward")
	return p.Info()
}

func (p *fakePage) Click(selector string, _ float64) error {
	p.record("click " + selector)
	if !p.visible[selector] {
		return errTimeout
	}
	return nil
}

func (p *fakePage) Type(selector, text string, _ float64) error {
	p.record("type " + selector + "=" + text)
	if !p.visible[selector] {
		return errTimeout
	}
	return nil
}

func (p *fakePage) Hover(selector string, _ float64) error {
	p.record("hover " + selector)
	return nil
}

func (p *fakePage) WaitForSelector(selector, state string, timeout float64) error {
	p.record("wait " + selector)
	p.waited.state = state
	p.waited.timeout = timeout
	return nil
}

func (p *fakePage) ElementText(selector string, _ float64) (string, error) {
	return "text of " + selector, nil
}

func (p *fakePage) ElementAttribute(_, attribute string, _ float64) (string, bool, error) {
	v, ok := p.attrs[attribute]
	return v, ok, nil
}

func (p *fakePage) SelectOption(_, value, label string, _ float64) ([]string, error) {
	if value != "" {
		return []string{value}, nil
	}
	return []string{"by-label:" + label}, nil
}

func (p *fakePage) FillForm(fields []browser.FormField, _ float64) ([]string, error) {
	filled := make([]string, 0, len(fields))
	for _, f := range fields {
		filled = append(filled, f.Selector)
	}
	return filled, nil
}

func (p *fakePage) ScrollTo(selector string, _ float64) error {
	p.record("scrollto " + selector)
	return nil
}

func (p *fakePage) ScrollBy(x, y int) (*browser.ScrollPosition, error) {
	return &browser.ScrollPosition{X: x, Y: y}, nil
}

func (p *fakePage) Evaluate(script string) (interface{}, error) {
	if script == "throw" {
		return nil, errors.New("script evaluation failed: boom")
	}
	return float64(42), nil
}

func (p *fakePage) Screenshot(path string, _ bool) ([]byte, error) {
	data := []byte("\x89PNG")
	return data, os.WriteFile(path, data, 0o600)
}

func (p *fakePage) SetViewport(int, int) error {
	return nil
}

func (p *fakePage) Content(opts browser.ContentOptions) (*browser.Content, error) {
	return &browser.Content{Type: opts.Type, Content: "content", Length: 7}, nil
}

func (p *fakePage) Snapshot() (*browser.Snapshot, error) {
	return &browser.Snapshot{URL: p.info.URL, Title: p.info.Title, HTML: p.html}, nil
}

func (p *fakePage) ExportPDF(path string, _ bool) (*browser.PDFResult, error) {
	p.pdfPath = path
	return &browser.PDFResult{Path: path, Pages: 1, Bytes: 10}, nil
}

func (p *fakePage) Cookies(name string) ([]browser.Cookie, error) {
	if name == "" {
		return p.cookies, nil
	}
	var out []browser.Cookie
	for _, c := range p.cookies {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *fakePage) SetCookies(params []browser.CookieParam) error {
	p.added = append(p.added, params...)
	return nil
}

// fakeSessions hands out one fakePage, or a scripted error.
type fakeSessions struct {
	page     *fakePage
	store    *capture.Store
	err      error
	acquired int
}

func (s *fakeSessions) Page(context.Context) (Page, error) {
	s.acquired++
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func (s *fakeSessions) Store() *capture.Store {
	return s.store
}
