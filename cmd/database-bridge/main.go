// Command database-bridge exposes a PostgreSQL or MySQL connection as MCP
// tools over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/mcp-bridge/pkg/config"
	"github.com/entrhq/mcp-bridge/pkg/database"
	"github.com/entrhq/mcp-bridge/pkg/logging"
	"github.com/entrhq/mcp-bridge/pkg/mcp"
	"github.com/entrhq/mcp-bridge/pkg/tools"
	dbtools "github.com/entrhq/mcp-bridge/pkg/tools/database"
	"github.com/entrhq/mcp-bridge/pkg/transport"
)

const (
	serviceName = "mcp-database-bridge"
	version     = "1.0.0"
	defaultPort = 3212
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

	db := cfg.Database
	presets := make(map[string]database.Config, len(db.Presets))
	for alias, p := range db.Presets {
		presets[alias] = toDatabaseConfig(p, db)
	}

	manager := database.NewManager(database.Options{
		Presets:         presets,
		CacheTTL:        db.CacheTTL,
		CacheMaxEntries: db.CacheMaxEntries,
	})
	defer func() {
		if err := manager.Disconnect(); err != nil {
			logger.Warnf("Closing database connection failed: %v", err)
		}
	}()

	if db.Default.Complete() {
		if err := manager.Connect(ctx, toDatabaseConfig(db.Default, db)); err != nil {
			logger.Warnf("Auto-connect failed, starting disconnected: %v", err)
		}
	}

	registry := tools.NewRegistry()
	if err := registry.Register(dbtools.NewTools(manager)...); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	server := mcp.NewServer(serviceName, version, tools.NewDispatcher(registry))
	router := transport.NewRouter(ctx, server, transport.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Health: func(ctx context.Context) (bool, map[string]interface{}) {
			status := manager.Status()
			extra := map[string]interface{}{"database": status}
			if status.Connected {
				if err := manager.Ping(ctx); err != nil {
					extra["error"] = err.Error()
					return false, extra
				}
			}
			return true, extra
		},
	})

	return transport.NewServer(cfg.Server, router).Run(ctx, cfg.Server.ShutdownTimeout)
}

func toDatabaseConfig(c config.ConnectionConfig, db config.DatabaseConfig) database.Config {
	return database.Config{
		Kind:             database.Kind(c.Type),
		Host:             c.Host,
		Port:             c.Port,
		Database:         c.Name,
		User:             c.User,
		Password:         c.Password,
		SSL:              c.SSL,
		MaxConns:         db.MaxConns,
		StatementTimeout: db.StatementTimeout,
	}
}
