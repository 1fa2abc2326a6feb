package format

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned when an output format has not been registered.
var ErrUnknownFormat = errors.New("format: unknown format")

// Registry stores output formats by name, providing discovery and
// duplication safeguards.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Format
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Format),
	}
}

// Register adds a format by its Name. Duplicate names return an error.
func (r *Registry) Register(f Format) error {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	if name == "" {
		return fmt.Errorf("format: format name is required")
	}
	f.Name = name
	if f.Template == "" {
		f.Template = name
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formats[name]; exists {
		return fmt.Errorf("format: format %q already registered", name)
	}

	r.formats[name] = f
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(f Format) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Get retrieves a format by name.
func (r *Registry) Get(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, fmt.Errorf("%w %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// ForExtension finds the format whose Extension matches ext (with or without
// the leading dot).
func (r *Registry) ForExtension(ext string) (Format, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.sortedNames() {
		f := r.formats[name]
		if strings.TrimPrefix(f.Extension, ".") == ext {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w for extension %q", ErrUnknownFormat, ext)
}

// List returns a sorted list of format names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames()
}

// Has reports whether a format is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.formats[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
