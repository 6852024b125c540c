// Package database manages the single active database pool of the bridge:
// connecting, querying with a read cache, and schema introspection for
// PostgreSQL and MySQL.
package database

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies a supported database engine.
type Kind string

const (
	KindPostgres Kind = "postgresql"
	KindMySQL    Kind = "mysql"
)

// ParseKind accepts the canonical kind names and their common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgresql", "postgres", "pg":
		return KindPostgres, nil
	case "mysql", "mariadb":
		return KindMySQL, nil
	default:
		return "", fmt.Errorf("unsupported database type %q (expected postgresql or mysql)", s)
	}
}

var (
	// ErrNotConnected is returned by every operation that needs a pool
	// while none is open.
	ErrNotConnected = errors.New("not connected: call connect first")

	// ErrUnknownPreset is returned by SwitchPreset for an unconfigured alias.
	ErrUnknownPreset = errors.New("unknown preset")
)

const (
	DefaultMaxConns         = 10
	DefaultIdleTimeout      = 30 * time.Second
	DefaultConnectTimeout   = 5 * time.Second
	DefaultStatementTimeout = 30 * time.Second
)

// Config describes one connection.
type Config struct {
	Kind     Kind   `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"-"`
	SSL      bool   `json:"ssl"`

	MaxConns         int           `json:"-"`
	StatementTimeout time.Duration `json:"-"`
}

func (c Config) withDefaults() Config {
	if c.MaxConns <= 0 {
		c.MaxConns = DefaultMaxConns
	}
	if c.StatementTimeout <= 0 {
		c.StatementTimeout = DefaultStatementTimeout
	}
	return c
}

func (c Config) validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	switch {
	case c.Host == "":
		return errors.New("host is required")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.Database == "":
		return errors.New("database is required")
	case c.User == "":
		return errors.New("user is required")
	}
	return nil
}

// QueryResult is the normalized result of a read query.
type QueryResult struct {
	Rows     []map[string]interface{} `json:"rows"`
	RowCount int                      `json:"rowCount"`
	Fields   []string                 `json:"fields"`
	Cached   bool                     `json:"cached"`
}

// ExecResult is the result of a mutating statement.
type ExecResult struct {
	AffectedRows int64 `json:"affectedRows"`
}

// TableInfo describes a table or view.
type TableInfo struct {
	Name   string `json:"name"`
	Schema string `json:"schema,omitempty"`
	Type   string `json:"type"`
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Nullable     bool    `json:"nullable"`
	DefaultValue *string `json:"defaultValue"`
	IsPrimaryKey bool    `json:"isPrimaryKey"`
}

// Status reports the current connection.
type Status struct {
	Connected bool   `json:"connected"`
	Type      Kind   `json:"type,omitempty"`
	Host      string `json:"host,omitempty"`
	Database  string `json:"database,omitempty"`
	Preset    string `json:"preset,omitempty"`
}

// PresetInfo describes a configured preset without its credentials.
type PresetInfo struct {
	Alias    string `json:"alias"`
	Type     Kind   `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Active   bool   `json:"active"`
}
