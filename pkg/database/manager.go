package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/logging"
)

const (
	DefaultCacheTTL        = 60 * time.Second
	DefaultCacheMaxEntries = 100
)

// Options configures a Manager.
type Options struct {
	// Presets maps lower-cased aliases to connection configs
	Presets map[string]Config

	// CacheTTL is how long read results are served from cache; 0 disables caching
	CacheTTL time.Duration

	// CacheMaxEntries caps the number of cached results
	CacheMaxEntries int

	// Opener opens pools; defaults to Open
	Opener Opener
}

// DefaultOptions returns the cache defaults with no presets.
func DefaultOptions() Options {
	return Options{CacheTTL: DefaultCacheTTL, CacheMaxEntries: DefaultCacheMaxEntries}
}

// Manager owns the single active pool.
type Manager struct {
	mu      sync.RWMutex
	open    Opener
	presets map[string]Config
	ttl     time.Duration
	size    int
	logger  *logging.Logger

	pool   Pool
	cfg    Config
	preset string
	cache  *queryCache
}

// NewManager creates a disconnected Manager.
func NewManager(opts Options) *Manager {
	if opts.Opener == nil {
		opts.Opener = Open
	}
	presets := make(map[string]Config, len(opts.Presets))
	for alias, cfg := range opts.Presets {
		if kind, err := ParseKind(string(cfg.Kind)); err == nil {
			cfg.Kind = kind
		}
		presets[strings.ToLower(alias)] = cfg
	}
	return &Manager{
		open:    opts.Opener,
		presets: presets,
		ttl:     opts.CacheTTL,
		size:    opts.CacheMaxEntries,
		logger:  logging.NewLogger("database"),
	}
}

// Connect closes any open pool and opens a new one for cfg. On failure the
// manager is left disconnected.
func (m *Manager) Connect(ctx context.Context, cfg Config) error {
	return m.connect(ctx, cfg, "")
}

func (m *Manager) connect(ctx context.Context, cfg Config, preset string) error {
	kind, err := ParseKind(string(cfg.Kind))
	if err != nil {
		return err
	}
	cfg.Kind = kind
	if err := cfg.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeLocked(); err != nil {
		m.logger.Warnf("Closing previous pool failed: %v", err)
	}

	pool, err := m.open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s at %s:%d/%s: %w", cfg.Kind, cfg.Host, cfg.Port, cfg.Database, err)
	}

	m.pool = pool
	m.cfg = cfg
	m.preset = preset
	m.cache = newQueryCache(m.size, m.ttl)
	metricConnected.Set(1)

	m.logger.Infof("Connected to %s at %s:%d/%s", cfg.Kind, cfg.Host, cfg.Port, cfg.Database)
	return nil
}

// Disconnect closes the open pool. It is a no-op when disconnected.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	if m.pool == nil {
		return nil
	}
	err := m.pool.Close()
	m.cache.purge()
	m.pool = nil
	m.cache = nil
	m.cfg = Config{}
	m.preset = ""
	metricConnected.Set(0)
	return err
}

// Status reports the current connection.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pool == nil {
		return Status{}
	}
	return Status{
		Connected: true,
		Type:      m.cfg.Kind,
		Host:      m.cfg.Host,
		Database:  m.cfg.Database,
		Preset:    m.preset,
	}
}

// active returns the open pool with its kind and cache.
func (m *Manager) active() (Pool, Kind, *queryCache, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pool == nil {
		return nil, "", nil, ErrNotConnected
	}
	return m.pool, m.cfg.Kind, m.cache, nil
}

// Query runs a read statement. Results of read-only statements are cached
// per connection for the configured TTL.
func (m *Manager) Query(ctx context.Context, sql string, params []interface{}) (*QueryResult, error) {
	pool, _, cache, err := m.active()
	if err != nil {
		return nil, err
	}

	key, cacheable := "", cache != nil && isReadOnly(sql)
	if cacheable {
		key, cacheable = cacheKey(sql, params)
	}
	if !cacheable {
		metricCacheLookups.WithLabelValues("bypass").Inc()
		return pool.Query(ctx, sql, params...)
	}

	if hit, ok := cache.get(key); ok {
		metricCacheLookups.WithLabelValues("hit").Inc()
		return hit, nil
	}
	metricCacheLookups.WithLabelValues("miss").Inc()

	gen := cache.generation()
	result, err := pool.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	cache.put(key, result, gen)
	return result, nil
}

// Execute runs a mutating statement. It is never cached and a successful
// execution invalidates every cached result.
func (m *Manager) Execute(ctx context.Context, sql string, params []interface{}) (*ExecResult, error) {
	pool, _, cache, err := m.active()
	if err != nil {
		return nil, err
	}

	affected, err := pool.Exec(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	cache.purge()
	return &ExecResult{AffectedRows: affected}, nil
}

// ListTables lists tables and views. schema applies to PostgreSQL only and
// defaults to public.
func (m *Manager) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	pool, kind, _, err := m.active()
	if err != nil {
		return nil, err
	}
	d, err := dialectFor(kind)
	if err != nil {
		return nil, err
	}

	r, err := pool.Query(ctx, d.listTables, d.listTablesArgs(schema)...)
	if err != nil {
		return nil, err
	}
	return toTables(r), nil
}

// DescribeTable lists the columns of table in ordinal order.
func (m *Manager) DescribeTable(ctx context.Context, table, schema string) ([]ColumnInfo, error) {
	pool, kind, _, err := m.active()
	if err != nil {
		return nil, err
	}
	d, err := dialectFor(kind)
	if err != nil {
		return nil, err
	}

	r, err := pool.Query(ctx, d.describeTable, d.describeTableArgs(table, schema)...)
	if err != nil {
		return nil, err
	}
	return toColumns(r), nil
}

// ListDatabases lists the databases visible to the connected user.
func (m *Manager) ListDatabases(ctx context.Context) ([]string, error) {
	pool, kind, _, err := m.active()
	if err != nil {
		return nil, err
	}
	d, err := dialectFor(kind)
	if err != nil {
		return nil, err
	}

	r, err := pool.Query(ctx, d.listDatabases)
	if err != nil {
		return nil, err
	}
	return toNames(r, d.databaseField), nil
}

// SwitchPreset connects to the preset registered under alias.
func (m *Manager) SwitchPreset(ctx context.Context, alias string) (Status, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	cfg, ok := m.presets[alias]
	if !ok {
		return Status{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, alias, strings.Join(m.aliases(), ", "))
	}
	if err := m.connect(ctx, cfg, alias); err != nil {
		return Status{}, err
	}
	return m.Status(), nil
}

// Presets lists configured presets sorted by alias.
func (m *Manager) Presets() []PresetInfo {
	active := m.Status().Preset

	out := make([]PresetInfo, 0, len(m.presets))
	for _, alias := range m.aliases() {
		cfg := m.presets[alias]
		out = append(out, PresetInfo{
			Alias:    alias,
			Type:     cfg.Kind,
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Database,
			Active:   alias == active,
		})
	}
	return out
}

func (m *Manager) aliases() []string {
	aliases := make([]string, 0, len(m.presets))
	for alias := range m.presets {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Ping checks the open pool.
func (m *Manager) Ping(ctx context.Context) error {
	pool, _, _, err := m.active()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}
