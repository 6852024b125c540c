package browser

import (
	"errors"
	"time"
)

// Default timeouts in milliseconds, as Playwright expects them.
const (
	DefaultTimeout    = 30000.0
	NavigateTimeout   = 30000.0
	ActionTimeout     = 3000.0
	ScreenshotTimeout = 10000.0
	loadStateTimeout  = 5000.0

	// DefaultMaxContentLength caps extracted page content (characters)
	DefaultMaxContentLength = 100000
)

// ErrNoSession is returned by Session operations after the page is gone.
var ErrNoSession = errors.New("no active browser session")

// launchArgs suppress automation fingerprints and trim background work.
var launchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-accelerated-2d-canvas",
	"--no-first-run",
	"--disable-extensions",
	"--disable-background-networking",
	"--disable-background-timer-throttling",
	"--disable-backgrounding-occluded-windows",
	"--disable-breakpad",
	"--disable-component-extensions-with-background-pages",
	"--disable-component-update",
	"--disable-default-apps",
	"--disable-hang-monitor",
	"--disable-ipc-flooding-protection",
	"--disable-popup-blocking",
	"--disable-prompt-on-repost",
	"--disable-renderer-backgrounding",
	"--disable-sync",
	"--enable-features=NetworkService,NetworkServiceInProcess",
	"--force-color-profile=srgb",
	"--metrics-recording-only",
	"--password-store=basic",
	"--use-mock-keychain",
	"--js-flags=--max-old-space-size=512",
}

var devtoolsArgs = []string{
	"--auto-open-devtools-for-tabs",
	"--remote-debugging-port=9222",
}

// ignoredDefaultArgs are removed from Playwright's own launch defaults.
var ignoredDefaultArgs = []string{"--enable-automation"}

// Options configures how the Session is launched.
type Options struct {
	// UserDataDir is the persistent profile directory (created if missing)
	UserDataDir string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// SlowMo delays each browser operation (milliseconds)
	SlowMo float64

	// Viewport sets the initial viewport size
	Viewport Viewport

	// Devtools opens DevTools for each tab and exposes a remote debugging port
	Devtools bool
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Status describes the Session Manager state for health reporting.
type Status struct {
	Alive     bool      `json:"alive"`
	Launching bool      `json:"launching,omitempty"`
	URL       string    `json:"url,omitempty"`
	StartedAt time.Time `json:"startedAt,omitempty"`
	Launches  int       `json:"launches"`
}

// PageInfo identifies the current document.
type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ContentType selects the representation returned by Content.
type ContentType string

const (
	ContentHTML    ContentType = "html"
	ContentText    ContentType = "text"
	ContentCleaned ContentType = "cleaned"
)

// ContentOptions configures page content extraction.
type ContentOptions struct {
	Type      ContentType
	Selector  string
	MaxLength int
	Timeout   float64
}

// Content is extracted page content.
type Content struct {
	Type      ContentType `json:"type"`
	Content   string      `json:"content"`
	Length    int         `json:"length"`
	Truncated bool        `json:"truncated"`
}

// FormField is one selector/value pair for FillForm.
type FormField struct {
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

// Cookie is a browser cookie as reported by the context.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// CookieParam describes a cookie to add. Either URL or Domain and Path
// must be set.
type CookieParam struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	URL      string   `json:"url,omitempty"`
	Domain   string   `json:"domain,omitempty"`
	Path     string   `json:"path,omitempty"`
	Expires  *float64 `json:"expires,omitempty"`
	HTTPOnly *bool    `json:"httpOnly,omitempty"`
	Secure   *bool    `json:"secure,omitempty"`
	SameSite string   `json:"sameSite,omitempty"`
}

// ScrollPosition is the window scroll offset after a scroll.
type ScrollPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Snapshot is the raw material for a page report.
type Snapshot struct {
	URL   string
	Title string
	HTML  string
}
