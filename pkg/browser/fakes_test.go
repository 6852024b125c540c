package browser

import (
	"errors"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// fakePage implements the parts of playwright.Page the manager and session use.
type fakePage struct {
	playwright.Page

	mu         sync.Mutex
	closed     bool
	panicCheck bool
	url        string
	title      string
	content    string
	gotoErr    error
	locators   map[string]*fakeLocator
	onConsole  func(playwright.ConsoleMessage)
	onResponse func(playwright.Response)
	onCrash    func(playwright.Page)
}

func newFakePage() *fakePage {
	return &fakePage{url: "about:blank", locators: map[string]*fakeLocator{}}
}

func (p *fakePage) IsClosed() bool {
	if p.panicCheck {
		panic("target closed")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePage) OnConsole(fn func(playwright.ConsoleMessage)) { p.onConsole = fn }
func (p *fakePage) OnResponse(fn func(playwright.Response))      { p.onResponse = fn }
func (p *fakePage) OnCrash(fn func(playwright.Page))             { p.onCrash = fn }
func (p *fakePage) SetDefaultTimeout(float64) {}
func (p *fakePage) URL() string              { return p.url }
func (p *fakePage) Title() (string, error)   { return p.title, nil }
func (p *fakePage) Content() (string, error) { return p.content, nil }

func (p *fakePage) Goto(url string, _ ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.gotoErr != nil {
		return nil, p.gotoErr
	}
	p.url = url
	return nil, nil
}

func (p *fakePage) WaitForLoadState(...playwright.PageWaitForLoadStateOptions) error { return nil }

func (p *fakePage) Locator(selector string, _ ...playwright.PageLocatorOptions) playwright.Locator {
	if loc, ok := p.locators[selector]; ok {
		return loc
	}
	return &fakeLocator{missing: true}
}

// fakeLocator resolves to an element unless missing is set, in which case
// every wait or action fails the way a timeout would.
type fakeLocator struct {
	locator

	missing bool
	text    string
	html    string
	clicks  int
}

// locator aliases playwright.Locator so the embedded field is not named
// Locator, which would shadow the interface's Locator method.
type locator = playwright.Locator

var errLocatorTimeout = errors.New("Timeout 3000ms exceeded")

func (l *fakeLocator) First() playwright.Locator { return l }

func (l *fakeLocator) WaitFor(...playwright.LocatorWaitForOptions) error {
	if l.missing {
		return errLocatorTimeout
	}
	return nil
}

func (l *fakeLocator) Click(...playwright.LocatorClickOptions) error {
	if l.missing {
		return errLocatorTimeout
	}
	l.clicks++
	return nil
}

func (l *fakeLocator) InnerText(...playwright.LocatorInnerTextOptions) (string, error) {
	if l.missing {
		return "", errLocatorTimeout
	}
	return l.text, nil
}

func (l *fakeLocator) InnerHTML(...playwright.LocatorInnerHTMLOptions) (string, error) {
	if l.missing {
		return "", errLocatorTimeout
	}
	return l.html, nil
}

// fakeContext implements the parts of playwright.BrowserContext used here.
type fakeContext struct {
	playwright.BrowserContext

	pages      []playwright.Page
	newPage    *fakePage
	closeCalls int
	cookies    []playwright.Cookie
	added      []playwright.OptionalCookie
}

func (c *fakeContext) Pages() []playwright.Page { return c.pages }

func (c *fakeContext) NewPage() (playwright.Page, error) {
	if c.newPage == nil {
		return nil, errors.New("cannot open page")
	}
	c.pages = append(c.pages, c.newPage)
	return c.newPage, nil
}

func (c *fakeContext) Close(...playwright.BrowserContextCloseOptions) error {
	c.closeCalls++
	return nil
}

func (c *fakeContext) Cookies(...string) ([]playwright.Cookie, error) { return c.cookies, nil }

func (c *fakeContext) AddCookies(cookies []playwright.OptionalCookie) error {
	c.added = append(c.added, cookies...)
	return nil
}

// fakeLauncher hands out prepared contexts in order.
type fakeLauncher struct {
	contexts []*fakeContext
	calls    int
	err      error
	stopped  bool
	lastDir  string
	lastOpts playwright.BrowserTypeLaunchPersistentContextOptions

	// hold, when set, blocks the launch after closing entered
	hold    chan struct{}
	entered chan struct{}
}

func (l *fakeLauncher) LaunchPersistentContext(dir string, opts playwright.BrowserTypeLaunchPersistentContextOptions) (playwright.BrowserContext, error) {
	if l.hold != nil {
		close(l.entered)
		<-l.hold
	}
	l.lastDir = dir
	l.lastOpts = opts
	if l.err != nil {
		return nil, l.err
	}
	if l.calls >= len(l.contexts) {
		return nil, errors.New("no more contexts")
	}
	ctx := l.contexts[l.calls]
	l.calls++
	return ctx, nil
}

func (l *fakeLauncher) Stop() error {
	l.stopped = true
	return nil
}

type fakeConsoleMessage struct {
	playwright.ConsoleMessage
	kind, text string
}

func (m *fakeConsoleMessage) Type() string { return m.kind }
func (m *fakeConsoleMessage) Text() string { return m.text }

type fakeRequest struct {
	playwright.Request
	method, resourceType string
}

func (r *fakeRequest) Method() string       { return r.method }
func (r *fakeRequest) ResourceType() string { return r.resourceType }

type fakeResponse struct {
	playwright.Response
	url    string
	status int
	req    *fakeRequest
}

func (r *fakeResponse) URL() string                 { return r.url }
func (r *fakeResponse) Status() int                 { return r.status }
func (r *fakeResponse) Request() playwright.Request { return r.req }
