// Command browser-bridge exposes a persistent Chromium profile as MCP tools
// over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/mcp-bridge/pkg/browser"
	"github.com/entrhq/mcp-bridge/pkg/capture"
	"github.com/entrhq/mcp-bridge/pkg/config"
	"github.com/entrhq/mcp-bridge/pkg/logging"
	"github.com/entrhq/mcp-bridge/pkg/mcp"
	"github.com/entrhq/mcp-bridge/pkg/report"
	"github.com/entrhq/mcp-bridge/pkg/security/workspace"
	"github.com/entrhq/mcp-bridge/pkg/tools"
	browsertools "github.com/entrhq/mcp-bridge/pkg/tools/browser"
	"github.com/entrhq/mcp-bridge/pkg/transport"
)

const (
	serviceName = "windsurf-mcp-bridge"
	version     = "1.0.0"
	defaultPort = 3211
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", serviceName, version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath, defaultPort)
	if err != nil {
		return err
	}
	if err := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Dir:    cfg.Logging.Dir,
	}); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logging.Close()
	logger := logging.NewLogger("main")

	artifacts, err := workspace.NewGuard(cfg.Browser.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	manager := browser.NewManager(browser.Options{
		UserDataDir: cfg.Browser.UserDataDir,
		Headless:    cfg.Browser.Headless,
		SlowMo:      float64(cfg.Browser.SlowMo),
		Viewport:    browser.Viewport{Width: cfg.Browser.ViewportWidth, Height: cfg.Browser.ViewportHeight},
		Devtools:    cfg.Browser.Devtools,
	}, browser.NewPlaywrightLauncher(cfg.Browser.Install), capture.NewStore())
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("Browser shutdown failed: %v", err)
		}
	}()

	logger.Infof("Launching browser with profile %s", cfg.Browser.UserDataDir)
	if _, err := manager.Acquire(ctx); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	reports := report.NewStore()
	registry := tools.NewRegistry()
	if err := registry.Register(browsertools.NewTools(&browsertools.Env{
		Sessions:      browsertools.FromManager(manager),
		ScreenshotDir: cfg.Browser.ScreenshotDir,
		Artifacts:     artifacts,
		Reports:       reports,
	})...); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	server := mcp.NewServer(serviceName, version, tools.NewDispatcher(registry))
	router := transport.NewRouter(ctx, server, transport.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Reports:        reports,
		Health: func(context.Context) (bool, map[string]interface{}) {
			status := manager.Status()
			return status.Alive, map[string]interface{}{
				"browserAlive": status.Alive,
				"launching":    status.Launching,
				"url":          status.URL,
				"launches":     status.Launches,
			}
		},
	})

	return transport.NewServer(cfg.Server, router).Run(ctx, cfg.Server.ShutdownTimeout)
}
