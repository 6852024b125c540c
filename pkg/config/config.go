// Package config loads bridge configuration from an optional YAML file
// overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all bridge configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Browser  BrowserConfig  `yaml:"browser"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BrowserConfig holds Session launch settings and artifact locations.
type BrowserConfig struct {
	Headless       bool   `yaml:"headless"`
	UserDataDir    string `yaml:"user_data_dir"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	Devtools       bool   `yaml:"devtools"`
	// SlowMo delays every browser operation by this many milliseconds
	SlowMo        int    `yaml:"slow_mo"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	OutputDir     string `yaml:"output_dir"`
	// Install downloads the driver and Chromium on first launch
	Install bool `yaml:"install"`
}

// ConnectionConfig describes one database target.
type ConnectionConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"` //nolint:gosec // connection config
	SSL      bool   `yaml:"ssl"`
}

// Complete reports whether enough is set to connect without user input.
func (c ConnectionConfig) Complete() bool {
	return c.Type != "" && c.Host != "" && c.Port > 0 && c.Name != "" && c.User != ""
}

// DatabaseConfig holds Connection Manager settings.
type DatabaseConfig struct {
	Default          ConnectionConfig            `yaml:"default"`
	Presets          map[string]ConnectionConfig `yaml:"presets"`
	CacheTTL         time.Duration               `yaml:"cache_ttl"`
	CacheMaxEntries  int                         `yaml:"cache_max_entries"`
	MaxConns         int                         `yaml:"max_conns"`
	StatementTimeout time.Duration               `yaml:"statement_timeout"`
}

// LoggingConfig holds log sink settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

// Defaults returns the built-in configuration for a service listening on port.
func Defaults(port int) Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            port,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitRPS:    20,
			RateLimitBurst:  40,
		},
		Browser: BrowserConfig{
			Headless:       false,
			UserDataDir:    "storage/user_data",
			ViewportWidth:  1280,
			ViewportHeight: 720,
			ScreenshotDir:  "storage/screenshots",
			OutputDir:      "storage",
			Install:        true,
		},
		Database: DatabaseConfig{
			Presets:          map[string]ConnectionConfig{},
			CacheTTL:         60 * time.Second,
			CacheMaxEntries:  100,
			MaxConns:         10,
			StatementTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty), then environment variables. Environment always wins.
func Load(path string, defaultPort int) (*Config, error) {
	cfg := Defaults(defaultPort)

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// env presets are keyed lower-case; align file presets before the overlay
	presets := make(map[string]ConnectionConfig, len(c.Database.Presets))
	for alias, p := range c.Database.Presets {
		presets[strings.ToLower(alias)] = p
	}
	c.Database.Presets = presets
	return nil
}

func (c *Config) normalize() {
	c.Database.Default.Type = NormalizeDBType(c.Database.Default.Type)

	presets := make(map[string]ConnectionConfig, len(c.Database.Presets))
	for alias, p := range c.Database.Presets {
		p.Type = NormalizeDBType(p.Type)
		presets[strings.ToLower(alias)] = p
	}
	c.Database.Presets = presets

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// NormalizeDBType maps accepted spellings onto "postgresql" or "mysql".
// Unknown values are returned lower-cased for validation to reject.
func NormalizeDBType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "postgres", "postgresql", "pg":
		return "postgresql"
	case "mysql", "mariadb":
		return "mysql"
	default:
		return strings.ToLower(strings.TrimSpace(t))
	}
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}

	if c.Browser.ViewportWidth < 100 || c.Browser.ViewportWidth > 5000 {
		return fmt.Errorf("VIEWPORT_WIDTH must be 100-5000, got %d", c.Browser.ViewportWidth)
	}
	if c.Browser.ViewportHeight < 100 || c.Browser.ViewportHeight > 5000 {
		return fmt.Errorf("VIEWPORT_HEIGHT must be 100-5000, got %d", c.Browser.ViewportHeight)
	}
	if c.Browser.SlowMo < 0 {
		return fmt.Errorf("SLOW_MO must be >= 0, got %d", c.Browser.SlowMo)
	}
	if c.Browser.UserDataDir == "" {
		return errors.New("USER_DATA_DIR must not be empty")
	}

	if c.Database.CacheTTL < 0 {
		return fmt.Errorf("DB_CACHE_TTL must be >= 0, got %s", c.Database.CacheTTL)
	}
	if c.Database.CacheMaxEntries < 1 {
		return fmt.Errorf("DB_CACHE_MAX_ENTRIES must be >= 1, got %d", c.Database.CacheMaxEntries)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Database.StatementTimeout <= 0 {
		return fmt.Errorf("DB_STATEMENT_TIMEOUT must be positive, got %s", c.Database.StatementTimeout)
	}
	if t := c.Database.Default.Type; t != "" && !validDBType(t) {
		return fmt.Errorf("DB_TYPE must be postgresql or mysql, got %q", t)
	}
	for alias, p := range c.Database.Presets {
		if !validDBType(p.Type) {
			return fmt.Errorf("preset %q: type must be postgresql or mysql, got %q", alias, p.Type)
		}
		if p.Host == "" || p.Name == "" {
			return fmt.Errorf("preset %q: host and database name are required", alias)
		}
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format)
	}

	return nil
}

func validDBType(t string) bool {
	return t == "postgresql" || t == "mysql"
}
