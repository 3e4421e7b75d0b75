package tools

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Registry holds tools by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Execute runs the named tool. It always returns a result: unknown tools,
// nil results and panics become error envelopes, and a zero duration is
// filled with the wall time of the call.
func (r *Registry) Execute(ctx context.Context, name string, argumentsJSON []byte) (result *Result) {
	start := time.Now()

	t, ok := r.Get(name)
	if !ok {
		return Errorf(0, "unknown tool: %s", name)
	}

	defer func() {
		if p := recover(); p != nil {
			result = Errorf(time.Since(start), "tool %s panicked: %v", name, p)
		}
	}()

	result = t.Execute(ctx, argumentsJSON)
	if result == nil {
		return Errorf(time.Since(start), "tool %s returned no result", name)
	}
	if result.DurationSeconds == 0 {
		result.WithDuration(time.Since(start))
	}
	return result
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	list := r.List()
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.Name()
	}
	return names
}
