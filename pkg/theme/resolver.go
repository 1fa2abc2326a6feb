package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrThemeNotFound is returned when a theme name resolves to no folder.
var ErrThemeNotFound = errors.New("theme: theme not found")

// ErrFormatNotFound is returned when a theme has no template for a format.
var ErrFormatNotFound = errors.New("theme: format not found")

// Option configures theme resolution.
type Option func(*config)

type config struct {
	exists func(string) bool
}

// WithExists overrides the predicate used to test candidate folders.
func WithExists(fn func(string) bool) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.exists = fn
		}
	}
}

// Locate finds the folder for name. It tries name relative to base first and
// then name as a path of its own.
func Locate(name, base string, options ...Option) (string, error) {
	cfg := &config{exists: dirExists}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty theme name", ErrThemeNotFound)
	}

	candidates := make([]string, 0, 2)
	if base != "" && !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(base, name))
	}
	candidates = append(candidates, name)

	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if cfg.exists(abs) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrThemeNotFound, name)
}

// Resolve locates and opens the named theme.
func Resolve(name, base string, options ...Option) (*Theme, error) {
	folder, err := Locate(name, base, options...)
	if err != nil {
		return nil, err
	}
	return Open(folder)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
