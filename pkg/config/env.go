package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const presetPrefix = "DB_PRESET_"

// applyEnv overlays environment variables. Values already on c act as the
// fallbacks, so an unset variable keeps the file or default value.
func (c *Config) applyEnv() error {
	var err error

	s := &c.Server
	s.Host = getEnv("HOST", s.Host)
	if s.Port, err = getEnvInt("PORT", s.Port); err != nil {
		return err
	}
	if s.ReadTimeout, err = getEnvDuration("SERVER_READ_TIMEOUT", s.ReadTimeout); err != nil {
		return err
	}
	if s.WriteTimeout, err = getEnvDuration("SERVER_WRITE_TIMEOUT", s.WriteTimeout); err != nil {
		return err
	}
	if s.ShutdownTimeout, err = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", s.ShutdownTimeout); err != nil {
		return err
	}
	s.CORSOrigins = getEnvList("CORS_ORIGINS", s.CORSOrigins)
	if s.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", s.RateLimitRPS); err != nil {
		return err
	}
	if s.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", s.RateLimitBurst); err != nil {
		return err
	}

	b := &c.Browser
	if b.Headless, err = getEnvBool("HEADLESS", b.Headless); err != nil {
		return err
	}
	b.UserDataDir = getEnv("USER_DATA_DIR", b.UserDataDir)
	if b.ViewportWidth, err = getEnvInt("VIEWPORT_WIDTH", b.ViewportWidth); err != nil {
		return err
	}
	if b.ViewportHeight, err = getEnvInt("VIEWPORT_HEIGHT", b.ViewportHeight); err != nil {
		return err
	}
	if b.Devtools, err = getEnvBool("DEVTOOLS", b.Devtools); err != nil {
		return err
	}
	if b.SlowMo, err = getEnvInt("SLOW_MO", b.SlowMo); err != nil {
		return err
	}
	b.ScreenshotDir = getEnv("SCREENSHOT_DIR", b.ScreenshotDir)
	b.OutputDir = getEnv("OUTPUT_DIR", b.OutputDir)
	if b.Install, err = getEnvBool("BROWSER_INSTALL", b.Install); err != nil {
		return err
	}

	d := &c.Database
	if d.Default, err = connectionFromEnv("DB_", d.Default); err != nil {
		return err
	}
	if d.CacheTTL, err = getEnvDuration("DB_CACHE_TTL", d.CacheTTL); err != nil {
		return err
	}
	if d.CacheMaxEntries, err = getEnvInt("DB_CACHE_MAX_ENTRIES", d.CacheMaxEntries); err != nil {
		return err
	}
	if d.MaxConns, err = getEnvInt("DB_MAX_CONNS", d.MaxConns); err != nil {
		return err
	}
	if d.StatementTimeout, err = getEnvDuration("DB_STATEMENT_TIMEOUT", d.StatementTimeout); err != nil {
		return err
	}
	if d.Presets == nil {
		d.Presets = map[string]ConnectionConfig{}
	}
	for _, alias := range presetAliases(os.Environ()) {
		key := strings.ToLower(alias)
		preset, err := connectionFromEnv(presetPrefix+alias+"_", d.Presets[key])
		if err != nil {
			return err
		}
		d.Presets[key] = preset
	}

	l := &c.Logging
	l.Level = getEnv("LOG_LEVEL", l.Level)
	l.Format = getEnv("LOG_FORMAT", l.Format)
	l.Dir = getEnv("LOG_DIR", l.Dir)

	return nil
}

// connectionFromEnv reads <prefix>{TYPE,HOST,PORT,NAME,USER,PASSWORD,SSL}.
func connectionFromEnv(prefix string, base ConnectionConfig) (ConnectionConfig, error) {
	var err error
	base.Type = getEnv(prefix+"TYPE", base.Type)
	base.Host = getEnv(prefix+"HOST", base.Host)
	if base.Port, err = getEnvInt(prefix+"PORT", base.Port); err != nil {
		return base, err
	}
	base.Name = getEnv(prefix+"NAME", base.Name)
	base.User = getEnv(prefix+"USER", base.User)
	base.Password = getEnv(prefix+"PASSWORD", base.Password)
	if base.SSL, err = getEnvBool(prefix+"SSL", base.SSL); err != nil {
		return base, err
	}
	return base, nil
}

// presetAliases finds every alias declared through DB_PRESET_<ALIAS>_TYPE.
// Aliases are returned as written in the environment.
func presetAliases(environ []string) []string {
	var aliases []string
	seen := map[string]bool{}
	for _, kv := range environ {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, presetPrefix) || !strings.HasSuffix(key, "_TYPE") {
			continue
		}
		alias := strings.TrimSuffix(strings.TrimPrefix(key, presetPrefix), "_TYPE")
		if alias == "" || seen[alias] {
			continue
		}
		seen[alias] = true
		aliases = append(aliases, alias)
	}
	return aliases
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

// getEnvDuration accepts Go durations ("30s") or bare milliseconds ("30000").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
