package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

type mysqlPool struct {
	db *sql.DB
}

// mysqlConfig builds the driver config. SSL uses TLS without certificate
// verification.
func mysqlConfig(cfg Config) *mysql.Config {
	mcfg := mysql.NewConfig()
	mcfg.User = cfg.User
	mcfg.Passwd = cfg.Password
	mcfg.Net = "tcp"
	mcfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mcfg.DBName = cfg.Database
	mcfg.Timeout = DefaultConnectTimeout
	mcfg.ReadTimeout = cfg.StatementTimeout
	mcfg.WriteTimeout = cfg.StatementTimeout
	mcfg.ParseTime = true
	if cfg.SSL {
		mcfg.TLSConfig = "skip-verify"
	}
	return mcfg
}

func openMySQL(ctx context.Context, cfg Config) (Pool, error) {
	cfg = cfg.withDefaults()

	connector, err := mysql.NewConnector(mysqlConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("mysql: config: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxIdleTime(DefaultIdleTimeout)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &mysqlPool{db: db}, nil
}

func (p *mysqlPool) Query(ctx context.Context, query string, args ...interface{}) (*QueryResult, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := newResult(fields)
	values := make([]interface{}, len(fields))
	ptrs := make([]interface{}, len(fields))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.appendRow(values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *mysqlPool) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (p *mysqlPool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *mysqlPool) Close() error {
	return p.db.Close()
}
