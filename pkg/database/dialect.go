package database

import (
	"fmt"
	"strings"
)

// dialect holds the catalog queries of one engine.
type dialect struct {
	listTables    string
	describeTable string
	listDatabases string
	// usesSchema reports whether catalog queries take an explicit schema.
	usesSchema    bool
	defaultSchema string
	databaseField string
}

var dialects = map[Kind]dialect{
	KindPostgres: {
		listTables: `SELECT table_name AS name, table_schema AS schema, table_type
FROM information_schema.tables
WHERE table_schema = $1
ORDER BY table_name`,
		describeTable: `SELECT
  c.column_name AS name,
  c.data_type AS type,
  c.is_nullable = 'YES' AS nullable,
  c.column_default AS default_value,
  pk.column_name IS NOT NULL AS is_primary_key
FROM information_schema.columns c
LEFT JOIN (
  SELECT ku.column_name
  FROM information_schema.table_constraints tc
  JOIN information_schema.key_column_usage ku
    ON tc.constraint_name = ku.constraint_name
   AND tc.table_schema = ku.table_schema
  WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = 'PRIMARY KEY'
) pk ON c.column_name = pk.column_name
WHERE c.table_schema = $1 AND c.table_name = $2
ORDER BY c.ordinal_position`,
		listDatabases: `SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname`,
		usesSchema:    true,
		defaultSchema: "public",
		databaseField: "datname",
	},
	KindMySQL: {
		listTables: `SELECT table_name AS name, table_type AS table_type
FROM information_schema.tables
WHERE table_schema = DATABASE()
ORDER BY table_name`,
		describeTable: `SELECT
  column_name AS name,
  data_type AS type,
  is_nullable = 'YES' AS nullable,
  column_default AS default_value,
  column_key = 'PRI' AS is_primary_key
FROM information_schema.columns
WHERE table_schema = DATABASE() AND table_name = ?
ORDER BY ordinal_position`,
		listDatabases: `SHOW DATABASES`,
		databaseField: "Database",
	},
}

func dialectFor(kind Kind) (dialect, error) {
	d, ok := dialects[kind]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database type %q", kind)
	}
	return d, nil
}

func (d dialect) schema(s string) string {
	if s == "" {
		return d.defaultSchema
	}
	return s
}

func (d dialect) listTablesArgs(schema string) []interface{} {
	if d.usesSchema {
		return []interface{}{d.schema(schema)}
	}
	return nil
}

func (d dialect) describeTableArgs(table, schema string) []interface{} {
	if d.usesSchema {
		return []interface{}{d.schema(schema), table}
	}
	return []interface{}{table}
}

func toTables(r *QueryResult) []TableInfo {
	tables := make([]TableInfo, 0, len(r.Rows))
	for _, row := range r.Rows {
		t := TableInfo{Name: asString(row["name"]), Type: "table"}
		if s, ok := row["schema"]; ok {
			t.Schema = asString(s)
		}
		if strings.EqualFold(asString(row["table_type"]), "VIEW") {
			t.Type = "view"
		}
		tables = append(tables, t)
	}
	return tables
}

func toColumns(r *QueryResult) []ColumnInfo {
	cols := make([]ColumnInfo, 0, len(r.Rows))
	for _, row := range r.Rows {
		c := ColumnInfo{
			Name:         asString(row["name"]),
			Type:         asString(row["type"]),
			Nullable:     asBool(row["nullable"]),
			IsPrimaryKey: asBool(row["is_primary_key"]),
		}
		if v := row["default_value"]; v != nil {
			s := asString(v)
			c.DefaultValue = &s
		}
		cols = append(cols, c)
	}
	return cols
}

func toNames(r *QueryResult, field string) []string {
	names := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		names = append(names, asString(row[field]))
	}
	return names
}

func asString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// asBool handles native booleans and MySQL's 0/1 comparison results.
func asBool(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case int32:
		return x != 0
	case int:
		return x != 0
	case string:
		return x == "1" || strings.EqualFold(x, "true")
	default:
		return false
	}
}
