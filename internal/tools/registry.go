package tools

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xonecas/symb/internal/core"
	"github.com/xonecas/symb/internal/tools/toolkit"
)

type registration struct {
	tool  toolkit.Tool
	class toolkit.Classification
}

// Registry holds every Tool the agent can invoke, keyed by name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register adds t to the registry under its own Name(), along with the
// Classification the executor uses to permission-gate and lock calls to it.
func (r *Registry) Register(t toolkit.Tool, class toolkit.Classification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[t.Name()] = registration{tool: t, class: class}
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (toolkit.Tool, toolkit.Classification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.tool, e.class, ok
}

// Definitions returns the core.ToolDefinition for every registered tool, in
// a stable (name-sorted) order so repeated requests build identical
// CompletionRequests.
func (r *Registry) Definitions() []core.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	defs := make([]core.ToolDefinition, len(names))
	for i, n := range names {
		defs[i] = toolkit.Definition(r.entries[n].tool)
	}
	return defs
}

// Names returns every registered tool name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IsEmpty reports whether no tools are registered.
func (r *Registry) IsEmpty() bool { return r.Len() == 0 }

// errUnknownTool builds the error returned when a call names an unregistered tool.
func errUnknownTool(name string) error {
	return fmt.Errorf("tool not found: %s", name)
}
