package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type entry struct {
	tool   Tool
	schema *jsonschema.Schema
}

// Registry holds tools in registration order with their compiled schemas.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds tools, compiling each schema once. Duplicate names and
// invalid schemas are rejected; on error nothing from the call is added.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]entry, len(tools))
	order := make([]string, 0, len(tools))
	for _, t := range tools {
		name := t.Name()
		if _, exists := r.entries[name]; exists {
			return fmt.Errorf("tool %q already registered", name)
		}
		if _, exists := pending[name]; exists {
			return fmt.Errorf("tool %q already registered", name)
		}

		schema, err := compileSchema(name, t.Schema())
		if err != nil {
			return err
		}
		pending[name] = entry{tool: t, schema: schema}
		order = append(order, name)
	}

	for _, name := range order {
		r.entries[name] = pending[name]
	}
	r.order = append(r.order, order...)
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.tool, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].tool)
	}
	return out
}

// Validate checks args against the named tool's schema.
func (r *Registry) Validate(name string, args json.RawMessage) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return validateArgs(e.schema, args)
}
