package browser

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Launcher starts a persistent Chromium context. The default implementation
// drives a Playwright server; tests substitute their own.
type Launcher interface {
	LaunchPersistentContext(userDataDir string, opts playwright.BrowserTypeLaunchPersistentContextOptions) (playwright.BrowserContext, error)
	Stop() error
}

// PlaywrightLauncher launches Chromium through the Playwright driver,
// starting the driver lazily on first launch.
type PlaywrightLauncher struct {
	mu         sync.Mutex
	install    bool
	playwright *playwright.Playwright
}

// NewPlaywrightLauncher creates a launcher. When install is true the driver
// and browsers are downloaded on first use if missing.
func NewPlaywrightLauncher(install bool) *PlaywrightLauncher {
	return &PlaywrightLauncher{install: install}
}

func (l *PlaywrightLauncher) start() error {
	if l.playwright != nil {
		return nil
	}

	// Driver output would interleave with structured logs
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if l.install {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	l.playwright = pw
	return nil
}

// LaunchPersistentContext starts the driver if needed and launches Chromium
// with its profile rooted at userDataDir.
func (l *PlaywrightLauncher) LaunchPersistentContext(userDataDir string, opts playwright.BrowserTypeLaunchPersistentContextOptions) (playwright.BrowserContext, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.start(); err != nil {
		return nil, err
	}
	return l.playwright.Chromium.LaunchPersistentContext(userDataDir, opts)
}

// Stop shuts the driver down. Safe to call when it never started.
func (l *PlaywrightLauncher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.playwright == nil {
		return nil
	}
	err := l.playwright.Stop()
	l.playwright = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
