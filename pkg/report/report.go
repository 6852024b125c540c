// Package report builds page reports from browser snapshots and keeps the
// latest one for human viewing.
package report

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/capture"
)

// Report summarizes one page.
type Report struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generatedAt"`
	Meta        Meta      `json:"meta"`
	Summary     Summary   `json:"summary"`

	Headings       []Heading              `json:"headings"`
	Links          []Link                 `json:"links,omitempty"`
	Forms          []Form                 `json:"forms,omitempty"`
	Images         []Image                `json:"images,omitempty"`
	ConsoleErrors  []capture.ConsoleEntry `json:"consoleErrors"`
	FailedRequests []capture.NetworkEntry `json:"failedRequests"`
}

// Meta holds document-level metadata.
type Meta struct {
	Description string `json:"description,omitempty"`
	Lang        string `json:"lang,omitempty"`
	Viewport    string `json:"viewport,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
}

// Summary counts page features. Counts are always filled in, whether or not
// the detailed lists were requested.
type Summary struct {
	Links            int  `json:"links"`
	ExternalLinks    int  `json:"externalLinks"`
	Forms            int  `json:"forms"`
	Images           int  `json:"images"`
	ImagesMissingAlt int  `json:"imagesMissingAlt"`
	Headings         int  `json:"headings"`
	Scripts          int  `json:"scripts"`
	ConsoleErrors    int  `json:"consoleErrors"`
	FailedRequests   int  `json:"failedRequests"`
	HasSingleH1      bool `json:"hasSingleH1"`
}

// Heading is an h1-h6 element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is an anchor with an href.
type Link struct {
	Text     string `json:"text"`
	Href     string `json:"href"`
	External bool   `json:"external"`
}

// Form is a form element and its controls.
type Form struct {
	ID     string  `json:"id,omitempty"`
	Action string  `json:"action,omitempty"`
	Method string  `json:"method"`
	Fields []Field `json:"fields"`
}

// Field is a form control.
type Field struct {
	Tag      string `json:"tag"`
	Type     string `json:"type,omitempty"`
	Name     string `json:"name,omitempty"`
	ID       string `json:"id,omitempty"`
	Required bool   `json:"required"`
}

// Image is an img element.
type Image struct {
	Src        string `json:"src"`
	Alt        string `json:"alt"`
	MissingAlt bool   `json:"missingAlt"`
}

// Sink receives generated reports.
type Sink interface {
	Publish(ctx context.Context, r *Report) error
}

// Entry is a stored report payload.
type Entry struct {
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// Store keeps the most recent report payload in memory. It is a Sink for
// generated reports and also accepts free-form payloads posted over HTTP.
type Store struct {
	mu     sync.RWMutex
	latest *Entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Publish stores r as the latest report.
func (s *Store) Publish(_ context.Context, r *Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.Put(raw)
	return nil
}

// Put stores an arbitrary JSON payload as the latest report.
func (s *Store) Put(payload json.RawMessage) {
	cp := make(json.RawMessage, len(payload))
	copy(cp, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &Entry{Payload: cp, ReceivedAt: time.Now()}
}

// Latest returns the most recent entry.
func (s *Store) Latest() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Entry{}, false
	}
	return *s.latest, true
}
