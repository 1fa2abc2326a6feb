package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest file names checked in order.
var manifestNames = []string{"theme.yaml", "theme.yml", "theme.json"}

type manifestFile struct {
	Name        string                  `yaml:"name" json:"name"`
	Version     string                  `yaml:"version" json:"version"`
	Description string                  `yaml:"description" json:"description"`
	Tokens      map[string]string       `yaml:"tokens" json:"tokens"`
	Formats     map[string]formatEntry  `yaml:"formats" json:"formats"`
	Variants    map[string]variantEntry `yaml:"variants" json:"variants"`
}

type formatEntry struct {
	Template string `yaml:"template" json:"template"`
	CSS      string `yaml:"css" json:"css"`
}

type variantEntry struct {
	Tokens  map[string]string      `yaml:"tokens" json:"tokens"`
	Formats map[string]formatEntry `yaml:"formats" json:"formats"`
}

// readManifest loads the first manifest present in folder. A folder without
// one yields an empty manifest.
func readManifest(folder string) (manifestFile, error) {
	for _, name := range manifestNames {
		path := filepath.Join(folder, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return manifestFile{}, fmt.Errorf("theme: read %s: %w", path, err)
		}
		return parseManifest(data, path)
	}
	return manifestFile{}, nil
}

func parseManifest(data []byte, path string) (manifestFile, error) {
	var doc manifestFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return manifestFile{}, fmt.Errorf("theme: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return manifestFile{}, fmt.Errorf("theme: parse %s: %w", path, err)
		}
	}
	return doc, nil
}

// Extensions mapped onto format tags when discovering templates by
// convention. Other extensions map to themselves.
var extensionTags = map[string]string{
	"htm": "html",
	"tex": "latex",
}

// discoverFormats scans folder/templates for resume.<ext> style files.
func discoverFormats(folder string) (map[string]formatEntry, error) {
	dir := filepath.Join(folder, "templates")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("theme: read templates: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := make(map[string]formatEntry)
	for _, name := range names {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		if ext == "" || ext == "css" {
			continue
		}
		tag := ext
		if mapped, ok := extensionTags[ext]; ok {
			tag = mapped
		}
		if _, exists := out[tag]; exists {
			continue
		}
		entry := formatEntry{Template: filepath.Join("templates", name)}
		if tag == "html" {
			entry.CSS = conventionalCSS(folder, strings.TrimSuffix(name, filepath.Ext(name)))
		}
		out[tag] = entry
	}
	return out, nil
}

// conventionalCSS looks for a stylesheet beside the template, then under css/.
func conventionalCSS(folder, base string) string {
	for _, candidate := range []string{
		filepath.Join("templates", base+".css"),
		filepath.Join("css", base+".css"),
		filepath.Join("css", "style.css"),
	} {
		if fileExists(filepath.Join(folder, candidate)) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
