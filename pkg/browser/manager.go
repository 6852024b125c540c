package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/capture"
	"github.com/entrhq/mcp-bridge/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// Manager owns the lifecycle of the single persistent browser profile.
//
// States: no Session, launching, or one live Session. Acquire creates the
// Session on demand; a page crash or Release returns the manager to no
// Session, and the next Acquire rebuilds it. All methods are safe for
// concurrent use. The launch runs outside m.mu, so Status and IsAlive answer
// immediately while Chromium starts, and concurrent Acquire calls share one
// launch.
type Manager struct {
	mu       sync.Mutex
	opts     Options
	launcher Launcher
	store    *capture.Store
	logger   *logging.Logger

	// bctx outlives session after a crash so the profile lock can be released
	bctx      playwright.BrowserContext
	session   *Session
	launches  int
	launching *launch
}

// launch is one in-flight browser start. done is closed once session or
// err is set.
type launch struct {
	done    chan struct{}
	session *Session
	err     error
}

// NewManager creates a Session Manager. Diagnostic events from every Session
// it creates are recorded in store.
func NewManager(opts Options, launcher Launcher, store *capture.Store) *Manager {
	if opts.Viewport.Width == 0 {
		opts.Viewport.Width = 1280
	}
	if opts.Viewport.Height == 0 {
		opts.Viewport.Height = 720
	}
	if store == nil {
		store = capture.NewStore()
	}
	return &Manager{
		opts:     opts,
		launcher: launcher,
		store:    store,
		logger:   logging.NewLogger("browser"),
	}
}

// Store returns the diagnostic Session Store fed by this manager.
func (m *Manager) Store() *capture.Store {
	return m.store
}

// Acquire returns the live Session, launching one if none exists or the
// previous one crashed. Launch failures are returned to the caller.
//
// If ctx ends while the browser is starting, Acquire returns ctx's error and
// the launch carries on; its Session is handed to the next caller.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.aliveLocked() {
		s := m.session
		m.mu.Unlock()
		return s, nil
	}

	l := m.launching
	if l == nil {
		if err := ctx.Err(); err != nil {
			m.mu.Unlock()
			return nil, err
		}
		l = &launch{done: make(chan struct{})}
		m.launching = l

		// a crashed page leaves its context (and the profile lock) behind
		stale := m.bctx
		m.bctx = nil
		m.session = nil
		go m.run(l, stale)
	}
	m.mu.Unlock()

	select {
	case <-l.done:
		return l.session, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run performs the launch described by l and installs the result.
func (m *Manager) run(l *launch, stale playwright.BrowserContext) {
	session, bctx, err := m.start(stale)

	m.mu.Lock()
	if err == nil {
		m.bctx = bctx
		m.session = session
		m.launches++
	}
	l.session, l.err = session, err
	m.launching = nil
	m.mu.Unlock()

	close(l.done)
}

func (m *Manager) start(stale playwright.BrowserContext) (*Session, playwright.BrowserContext, error) {
	if stale != nil {
		m.logger.Warnf("Discarding stale browser context before relaunch")
		if err := stale.Close(); err != nil {
			m.logger.Debugf("Closing stale context: %v", err)
		}
	}

	dir, err := filepath.Abs(m.opts.UserDataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve user data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create user data directory: %w", err)
	}

	started := time.Now()
	bctx, err := m.launcher.LaunchPersistentContext(dir, m.launchOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			return nil, nil, fmt.Errorf("failed to create page: %w", err)
		}
	}
	page.SetDefaultTimeout(DefaultTimeout)

	session := newSession(page, bctx)
	m.attachListeners(session)

	m.logger.Infof("Browser session launched in %s (profile %s, headless=%t)",
		time.Since(started).Round(time.Millisecond), dir, m.opts.Headless)
	return session, bctx, nil
}

// lockIdle acquires m.mu once no launch is in flight.
func (m *Manager) lockIdle() {
	for {
		m.mu.Lock()
		l := m.launching
		if l == nil {
			return
		}
		m.mu.Unlock()
		<-l.done
	}
}

// launchOptions builds the persistent context options from Options.
func (m *Manager) launchOptions() playwright.BrowserTypeLaunchPersistentContextOptions {
	args := append([]string{}, launchArgs...)
	if m.opts.Devtools {
		args = append(args, devtoolsArgs...)
	}

	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(m.opts.Headless),
		Viewport: &playwright.Size{
			Width:  m.opts.Viewport.Width,
			Height: m.opts.Viewport.Height,
		},
		Args:              args,
		IgnoreDefaultArgs: append([]string{}, ignoredDefaultArgs...),
	}
	if m.opts.SlowMo > 0 {
		opts.SlowMo = playwright.Float(m.opts.SlowMo)
	}
	return opts
}

// attachListeners wires console, response and crash events for session.
func (m *Manager) attachListeners(s *Session) {
	s.page.OnConsole(func(msg playwright.ConsoleMessage) {
		m.store.RecordConsole(msg.Type(), msg.Text())
	})

	s.page.OnResponse(func(resp playwright.Response) {
		method, resourceType := "", ""
		if req := resp.Request(); req != nil {
			method = req.Method()
			resourceType = req.ResourceType()
		}
		m.store.RecordResponse(resp.URL(), method, resp.Status(), resourceType)
	})

	// handlers run on the driver's dispatch goroutine and must not take m.mu
	s.page.OnCrash(func(playwright.Page) {
		s.crashed.Store(true)
		m.logger.Errorf("Browser page crashed; session will be rebuilt on next use")
	})
}

// IsAlive reports whether a Session exists and its page is open. Any panic
// raised by the driver during the check counts as not alive.
func (m *Manager) IsAlive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aliveLocked()
}

func (m *Manager) aliveLocked() (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			alive = false
		}
	}()
	return m.session != nil && m.bctx != nil && !m.session.crashed.Load() && !m.session.page.IsClosed()
}

// Release tears down the Session, waiting for an in-flight launch first.
// Calling it with no Session is a no-op.
func (m *Manager) Release() error {
	m.lockIdle()
	defer m.mu.Unlock()
	return m.releaseLocked()
}

func (m *Manager) releaseLocked() error {
	if m.bctx == nil {
		m.session = nil
		return nil
	}

	err := m.bctx.Close()
	m.bctx = nil
	m.session = nil
	if err != nil {
		return fmt.Errorf("failed to close browser context: %w", err)
	}
	m.logger.Infof("Browser session released")
	return nil
}

// Shutdown releases the Session and stops the launcher.
func (m *Manager) Shutdown() error {
	m.lockIdle()
	defer m.mu.Unlock()

	releaseErr := m.releaseLocked()
	var stopErr error
	if m.launcher != nil {
		stopErr = m.launcher.Stop()
	}
	return errors.Join(releaseErr, stopErr)
}

// Status reports the manager state without launching anything.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{Alive: m.aliveLocked(), Launching: m.launching != nil, Launches: m.launches}
	if st.Alive {
		st.StartedAt = m.session.CreatedAt
		st.URL = m.session.safeURL()
	}
	return st
}
