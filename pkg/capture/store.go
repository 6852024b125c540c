package capture

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

const (
	ConsoleCapacity = 1000
	ConsoleRetain   = 500
	NetworkCapacity = 500
	NetworkRetain   = 250
)

// ConsoleEntry is one captured console message.
type ConsoleEntry struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NetworkEntry is one observed network response.
type NetworkEntry struct {
	URL          string `json:"url"`
	Method       string `json:"method"`
	Status       int    `json:"status"`
	ResourceType string `json:"resourceType"`
	Timestamp    int64  `json:"timestamp"`
}

// Failed reports whether the response status is a client or server error.
func (e NetworkEntry) Failed() bool {
	return e.Status >= 400
}

// Store bundles the console and network buffers of one process.
type Store struct {
	Console *Buffer[ConsoleEntry]
	Network *Buffer[NetworkEntry]
}

// NewStore creates a Store with the default capacities.
func NewStore() *Store {
	return &Store{
		Console: NewBuffer[ConsoleEntry](ConsoleCapacity, ConsoleRetain),
		Network: NewBuffer[NetworkEntry](NetworkCapacity, NetworkRetain),
	}
}

// RecordConsole appends a console message stamped with the current time.
func (s *Store) RecordConsole(kind, text string) {
	s.Console.Append(ConsoleEntry{Type: kind, Text: text, Timestamp: nowMillis()})
}

// RecordResponse appends a network response stamped with the current time.
func (s *Store) RecordResponse(url, method string, status int, resourceType string) {
	s.Network.Append(NetworkEntry{
		URL:          url,
		Method:       method,
		Status:       status,
		ResourceType: resourceType,
		Timestamp:    nowMillis(),
	})
}

// Reset empties both buffers.
func (s *Store) Reset() {
	s.Console.Clear()
	s.Network.Clear()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// ConsoleFilter selects console entries by message type. Empty matches all.
type ConsoleFilter struct {
	Type string
}

// Match reports whether e passes the filter.
func (f ConsoleFilter) Match(e ConsoleEntry) bool {
	return f.Type == "" || e.Type == f.Type
}

// Apply returns the matching entries in order.
func (f ConsoleFilter) Apply(entries []ConsoleEntry) []ConsoleEntry {
	out := make([]ConsoleEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// NetworkFilter selects network entries by URL glob and minimum status.
type NetworkFilter struct {
	url       glob.Glob
	minStatus int
}

// NewNetworkFilter compiles pattern (empty matches every URL). A bare pattern
// without wildcards is treated as a substring match.
func NewNetworkFilter(pattern string, minStatus int) (NetworkFilter, error) {
	f := NetworkFilter{minStatus: minStatus}
	if pattern == "" {
		return f, nil
	}

	if !hasWildcard(pattern) {
		pattern = "*" + pattern + "*"
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return f, fmt.Errorf("invalid url filter %q: %w", pattern, err)
	}
	f.url = g
	return f, nil
}

// Match reports whether e passes the filter.
func (f NetworkFilter) Match(e NetworkEntry) bool {
	if e.Status < f.minStatus {
		return false
	}
	return f.url == nil || f.url.Match(e.URL)
}

// Apply returns the matching entries in order.
func (f NetworkFilter) Apply(entries []NetworkEntry) []NetworkEntry {
	out := make([]NetworkEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

func hasWildcard(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
