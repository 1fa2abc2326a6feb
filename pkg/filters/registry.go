package filters

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownFilter is returned when a template references a filter name that
// is not registered.
var ErrUnknownFilter = errors.New("filters: unknown filter")

// Func is a pure text transform applied to an interpolated value.
type Func func(string) string

// Registry stores filters by name. Later registrations replace earlier ones so
// callers can override the built-ins.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]Func
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		filters: make(map[string]Func),
	}
}

// Register adds or replaces the filter stored under name.
func (r *Registry) Register(name string, fn Func) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("filters: filter name is required")
	}
	if fn == nil {
		return fmt.Errorf("filters: filter %q has no function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.filters[name] = fn
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Resolve returns the filter stored under name or an error wrapping
// ErrUnknownFilter.
func (r *Registry) Resolve(name string) (Func, error) {
	if r == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownFilter, name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.filters[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFilter, name)
	}
	return fn, nil
}

// Has reports whether a filter is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.filters[name]
	return ok
}

// Names returns the registered filter names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	out := New()
	if r == nil {
		return out
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, fn := range r.filters {
		out.filters[name] = fn
	}
	return out
}

// Merge copies every filter from other into r, replacing entries that share a
// name.
func (r *Registry) Merge(other *Registry) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	snapshot := make(map[string]Func, len(other.filters))
	for name, fn := range other.filters {
		snapshot[name] = fn
	}
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range snapshot {
		r.filters[name] = fn
	}
}

// Apply resolves name and runs the filter against text. A panicking filter
// yields the unmodified text so malformed resume content never aborts a
// render.
func (r *Registry) Apply(name, text string) (out string, err error) {
	fn, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	defer func() {
		if recover() != nil {
			out = text
		}
	}()
	return fn(text), nil
}
