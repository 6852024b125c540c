// Package database exposes the Connection Manager as a catalog of tools.
package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/database"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

// Connections is the subset of *database.Manager the tools use.
type Connections interface {
	Connect(ctx context.Context, cfg database.Config) error
	Disconnect() error
	Status() database.Status
	Query(ctx context.Context, sql string, params []interface{}) (*database.QueryResult, error)
	Execute(ctx context.Context, sql string, params []interface{}) (*database.ExecResult, error)
	ListTables(ctx context.Context, schema string) ([]database.TableInfo, error)
	DescribeTable(ctx context.Context, table, schema string) ([]database.ColumnInfo, error)
	ListDatabases(ctx context.Context) ([]string, error)
	SwitchPreset(ctx context.Context, alias string) (database.Status, error)
	Presets() []database.PresetInfo
}

const (
	connectTimeout   = 15 * time.Second
	statementTimeout = 30 * time.Second
	catalogTimeout   = 10 * time.Second
)

// NewTools returns the database tool catalog in registration order.
func NewTools(conns Connections) []tools.Tool {
	return []tools.Tool{
		&ConnectTool{conns: conns},
		&DisconnectTool{conns: conns},
		&StatusTool{conns: conns},
		&QueryTool{conns: conns},
		&ExecuteTool{conns: conns},
		&ListTablesTool{conns: conns},
		&DescribeTableTool{conns: conns},
		&ListDatabasesTool{conns: conns},
		&SwitchDBTool{conns: conns},
		&ListPresetsTool{conns: conns},
	}
}

func emptySchema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

func sqlSchema(description string) map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"sql": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": description,
			},
			"params": map[string]interface{}{
				"type":        "array",
				"description": "Positional parameters ($1.. for PostgreSQL, ? for MySQL)",
			},
		},
		[]string{"sql"},
	)
}

type sqlInput struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params"`
}

// ConnectTool opens a connection.
type ConnectTool struct {
	conns Connections
}

func (t *ConnectTool) Name() string { return "connect" }

func (t *ConnectTool) Description() string {
	return "Connect to a PostgreSQL or MySQL database, replacing any existing connection."
}

func (t *ConnectTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{string(database.KindPostgres), string(database.KindMySQL)},
				"description": "Database engine",
			},
			"host":     map[string]interface{}{"type": "string", "minLength": 1},
			"port":     map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 65535},
			"database": map[string]interface{}{"type": "string", "minLength": 1},
			"user":     map[string]interface{}{"type": "string", "minLength": 1},
			"password": map[string]interface{}{"type": "string"},
			"ssl":      map[string]interface{}{"type": "boolean", "description": "Encrypt the connection (certificate not verified)"},
		},
		[]string{"type", "host", "port", "database", "user", "password"},
	)
}

func (t *ConnectTool) Timeout() time.Duration { return connectTimeout }

type connectInput struct {
	Type     string `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSL      bool   `json:"ssl"`
}

func (t *ConnectTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input connectInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	err := t.conns.Connect(ctx, database.Config{
		Kind:     database.Kind(input.Type),
		Host:     input.Host,
		Port:     input.Port,
		Database: input.Database,
		User:     input.User,
		Password: input.Password,
		SSL:      input.SSL,
	})
	if err != nil {
		return nil, err
	}
	return t.conns.Status(), nil
}

// DisconnectTool closes the connection.
type DisconnectTool struct {
	conns Connections
}

func (t *DisconnectTool) Name() string { return "disconnect" }

func (t *DisconnectTool) Description() string { return "Close the current database connection." }

func (t *DisconnectTool) Schema() map[string]interface{} { return emptySchema() }

func (t *DisconnectTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	if err := t.conns.Disconnect(); err != nil {
		return nil, err
	}
	return map[string]interface{}{"disconnected": true}, nil
}

// StatusTool reports the connection.
type StatusTool struct {
	conns Connections
}

func (t *StatusTool) Name() string { return "status" }

func (t *StatusTool) Description() string {
	return "Report whether a database is connected and which one."
}

func (t *StatusTool) Schema() map[string]interface{} { return emptySchema() }

func (t *StatusTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	return t.conns.Status(), nil
}

// QueryTool runs a read statement.
type QueryTool struct {
	conns Connections
}

func (t *QueryTool) Name() string { return "query" }

func (t *QueryTool) Description() string {
	return "Run a read query and return its rows. Read-only results are cached briefly; cached responses carry cached=true."
}

func (t *QueryTool) Schema() map[string]interface{} {
	return sqlSchema("SELECT-style statement")
}

func (t *QueryTool) Timeout() time.Duration { return statementTimeout }

func (t *QueryTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input sqlInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	return t.conns.Query(ctx, input.SQL, input.Params)
}

// ExecuteTool runs a mutating statement.
type ExecuteTool struct {
	conns Connections
}

func (t *ExecuteTool) Name() string { return "execute" }

func (t *ExecuteTool) Description() string {
	return "Run an INSERT, UPDATE, DELETE or DDL statement and return the number of affected rows. Clears the query cache."
}

func (t *ExecuteTool) Schema() map[string]interface{} {
	return sqlSchema("Mutating statement")
}

func (t *ExecuteTool) Timeout() time.Duration { return statementTimeout }

func (t *ExecuteTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input sqlInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	return t.conns.Execute(ctx, input.SQL, input.Params)
}

// ListTablesTool lists tables and views.
type ListTablesTool struct {
	conns Connections
}

func (t *ListTablesTool) Name() string { return "list_tables" }

func (t *ListTablesTool) Description() string {
	return "List tables and views. For PostgreSQL the schema defaults to public; MySQL uses the connected database."
}

func (t *ListTablesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"schema": map[string]interface{}{"type": "string", "description": "Schema name (PostgreSQL)"},
		},
		nil,
	)
}

func (t *ListTablesTool) Timeout() time.Duration { return catalogTimeout }

type schemaInput struct {
	Table  string `json:"table"`
	Schema string `json:"schema"`
}

func (t *ListTablesTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input schemaInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	return t.conns.ListTables(ctx, input.Schema)
}

// DescribeTableTool lists the columns of a table.
type DescribeTableTool struct {
	conns Connections
}

func (t *DescribeTableTool) Name() string { return "describe_table" }

func (t *DescribeTableTool) Description() string {
	return "Describe the columns of a table: type, nullability, default and primary key membership."
}

func (t *DescribeTableTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"table":  map[string]interface{}{"type": "string", "minLength": 1},
			"schema": map[string]interface{}{"type": "string", "description": "Schema name (PostgreSQL)"},
		},
		[]string{"table"},
	)
}

func (t *DescribeTableTool) Timeout() time.Duration { return catalogTimeout }

func (t *DescribeTableTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input schemaInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	return t.conns.DescribeTable(ctx, input.Table, input.Schema)
}

// ListDatabasesTool lists databases on the server.
type ListDatabasesTool struct {
	conns Connections
}

func (t *ListDatabasesTool) Name() string { return "list_databases" }

func (t *ListDatabasesTool) Description() string {
	return "List the databases on the connected server."
}

func (t *ListDatabasesTool) Schema() map[string]interface{} { return emptySchema() }

func (t *ListDatabasesTool) Timeout() time.Duration { return catalogTimeout }

func (t *ListDatabasesTool) Execute(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return t.conns.ListDatabases(ctx)
}

// SwitchDBTool connects to a configured preset.
type SwitchDBTool struct {
	conns Connections
}

func (t *SwitchDBTool) Name() string { return "switch_db" }

func (t *SwitchDBTool) Description() string {
	return "Connect to a preset database by alias (see list_presets), replacing the current connection."
}

func (t *SwitchDBTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"alias": map[string]interface{}{"type": "string", "minLength": 1, "description": "Preset alias, e.g. prod"},
		},
		[]string{"alias"},
	)
}

func (t *SwitchDBTool) Timeout() time.Duration { return connectTimeout }

type switchInput struct {
	Alias string `json:"alias"`
}

func (t *SwitchDBTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var input switchInput
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	return t.conns.SwitchPreset(ctx, input.Alias)
}

// ListPresetsTool lists configured presets.
type ListPresetsTool struct {
	conns Connections
}

func (t *ListPresetsTool) Name() string { return "list_presets" }

func (t *ListPresetsTool) Description() string {
	return "List preset database aliases with host, port and database. Passwords are never returned."
}

func (t *ListPresetsTool) Schema() map[string]interface{} { return emptySchema() }

func (t *ListPresetsTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	return t.conns.Presets(), nil
}
