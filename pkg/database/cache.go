package database

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// queryCache holds read query results for a fixed TTL. Reads do not refresh
// recency, so once full the oldest inserted entry is evicted first.
//
// Every purge advances the generation. A result read under an older
// generation is discarded by put, so a read racing a write cannot repopulate
// the cache with pre-write rows.
type queryCache struct {
	lru *expirable.LRU[string, *QueryResult]

	mu  sync.Mutex
	gen uint64
}

// newQueryCache returns nil when caching is disabled (ttl or size <= 0).
func newQueryCache(size int, ttl time.Duration) *queryCache {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &queryCache{lru: expirable.NewLRU[string, *QueryResult](size, nil, ttl)}
}

func (c *queryCache) get(key string) (*QueryResult, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.lru.Peek(key)
	if !ok {
		return nil, false
	}
	hit := *r
	hit.Cached = true
	return &hit, true
}

// generation returns the token to pass to put for a read starting now.
func (c *queryCache) generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// put stores r unless the cache was purged since gen was taken. It reports
// whether the result was stored.
func (c *queryCache) put(key string, r *QueryResult, gen uint64) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(key, r)
	return true
}

func (c *queryCache) purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Purge()
}

func (c *queryCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// cacheKey combines the statement text with its serialized parameters.
func cacheKey(sql string, params []interface{}) (string, bool) {
	p, err := json.Marshal(params)
	if err != nil {
		return "", false
	}
	return sql + "\x00" + string(p), true
}

var readOnlyVerbs = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
}

var writeVerbs = map[string]bool{
	"INSERT":   true,
	"UPDATE":   true,
	"DELETE":   true,
	"MERGE":    true,
	"UPSERT":   true,
	"REPLACE":  true,
	"TRUNCATE": true,
	"CREATE":   true,
	"DROP":     true,
	"ALTER":    true,
	"GRANT":    true,
	"REVOKE":   true,
	"INTO":     true,
	"LOCK":     true,
	"FOR":      true,
}

// isReadOnly reports whether sql looks like a statement whose result is
// safe to cache: it starts with a read verb and names no write keyword
// anywhere (which also excludes data-modifying CTEs and SELECT ... FOR UPDATE).
func isReadOnly(sql string) bool {
	words := strings.FieldsFunc(stripComments(sql), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	if len(words) == 0 || !readOnlyVerbs[strings.ToUpper(words[0])] {
		return false
	}
	for _, w := range words[1:] {
		if writeVerbs[strings.ToUpper(w)] {
			return false
		}
	}
	return true
}

func stripComments(sql string) string {
	var b strings.Builder
	for i := 0; i < len(sql); i++ {
		switch {
		case strings.HasPrefix(sql[i:], "--"):
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case strings.HasPrefix(sql[i:], "/*"):
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			b.WriteByte(' ')
		default:
			b.WriteByte(sql[i])
		}
	}
	return b.String()
}
