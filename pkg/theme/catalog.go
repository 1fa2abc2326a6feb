package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	gotheme "github.com/goliatone/go-theme"
)

// Catalog is the set of themes found under a themes root. Manifests are also
// registered with a go-theme registry, which rejects malformed ones.
type Catalog struct {
	Root string

	registry manifestRegistry
	themes   map[string]*Theme
}

type manifestRegistry interface {
	Register(*gotheme.Manifest) error
}

// LoadCatalog opens every theme folder directly under root.
func LoadCatalog(root string) (*Catalog, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("theme: read themes root: %w", err)
	}

	c := &Catalog{
		Root:     root,
		registry: gotheme.NewRegistry(),
		themes:   make(map[string]*Theme),
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		t, err := Open(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, err
		}
		if len(t.Formats()) == 0 {
			continue
		}
		if err := c.add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(t *Theme) error {
	if _, exists := c.themes[t.Name]; exists {
		return fmt.Errorf("theme: duplicate theme %q under %s", t.Name, c.Root)
	}
	if err := c.registry.Register(t.Manifest()); err != nil {
		return fmt.Errorf("theme: register %q: %w", t.Name, err)
	}
	c.themes[t.Name] = t
	return nil
}

// Names returns the catalog's theme names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.themes))
	for name := range c.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named theme.
func (c *Catalog) Get(name string) (*Theme, error) {
	t, ok := c.themes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return t, nil
}

// WithFormat returns the names of themes that provide tag.
func (c *Catalog) WithFormat(tag string) []string {
	var names []string
	for _, name := range c.Names() {
		if c.themes[name].HasFormat(tag) {
			names = append(names, name)
		}
	}
	return names
}
