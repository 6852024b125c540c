package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Pool is an open connection pool of either kind.
type Pool interface {
	Query(ctx context.Context, sql string, args ...interface{}) (*QueryResult, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Opener opens a pool for cfg. The returned pool has been pinged.
type Opener func(ctx context.Context, cfg Config) (Pool, error)

// Open is the default Opener.
func Open(ctx context.Context, cfg Config) (Pool, error) {
	switch cfg.Kind {
	case KindPostgres:
		return openPostgres(ctx, cfg)
	case KindMySQL:
		return openMySQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Kind)
	}
}

// normalizeValue converts driver values into JSON-friendly ones.
func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

func newResult(fields []string) *QueryResult {
	return &QueryResult{Rows: []map[string]interface{}{}, Fields: fields}
}

func (r *QueryResult) appendRow(values []interface{}) {
	row := make(map[string]interface{}, len(r.Fields))
	for i, name := range r.Fields {
		if i < len(values) {
			row[name] = normalizeValue(values[i])
		}
	}
	r.Rows = append(r.Rows, row)
	r.RowCount = len(r.Rows)
}
