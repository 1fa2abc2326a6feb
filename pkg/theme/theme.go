// Package theme loads resume themes from disk. A theme is a folder holding
// one template per output format plus optional stylesheets, described either
// by a theme.yaml manifest or by the templates/resume.<ext> convention.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

// DefaultVersion is assigned to themes whose manifest omits a version.
const DefaultVersion = "0.0.0"

// Style is a format's stylesheet: its path and its inline contents.
type Style struct {
	Path string
	Data string
}

// Format is one output kind within a theme.
type Format struct {
	Tag          string
	TemplatePath string
	TemplateText string
	Style        Style
}

// Theme is a loaded, read-only theme folder.
type Theme struct {
	Name        string
	Version     string
	Description string
	Folder      string

	manifest *gotheme.Manifest
	formats  map[string]formatEntry
	variants map[string]variantEntry
}

var _ gotheme.ThemeSelector = (*Theme)(nil)

// Open loads the theme in folder.
func Open(folder string) (*Theme, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("theme: resolve %s: %w", folder, err)
	}
	if !dirExists(abs) {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, folder)
	}

	doc, err := readManifest(abs)
	if err != nil {
		return nil, err
	}

	discovered, err := discoverFormats(abs)
	if err != nil {
		return nil, err
	}
	formats := make(map[string]formatEntry, len(discovered)+len(doc.Formats))
	for tag, entry := range discovered {
		formats[tag] = entry
	}
	for tag, entry := range doc.Formats {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if entry.Template == "" {
			entry.Template = formats[tag].Template
		}
		formats[tag] = entry
	}

	t := &Theme{
		Name:        strings.TrimSpace(doc.Name),
		Version:     strings.TrimSpace(doc.Version),
		Description: strings.TrimSpace(doc.Description),
		Folder:      abs,
		formats:     formats,
		variants:    doc.Variants,
	}
	if t.Name == "" {
		t.Name = filepath.Base(abs)
	}
	if t.Version == "" {
		t.Version = DefaultVersion
	}
	t.manifest = t.buildManifest(doc.Tokens)
	return t, nil
}

// Formats returns the format tags the theme provides, sorted.
func (t *Theme) Formats() []string {
	tags := make([]string, 0, len(t.formats))
	for tag, entry := range t.formats {
		if entry.Template == "" {
			continue
		}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// HasFormat reports whether the theme carries a template for tag.
func (t *Theme) HasFormat(tag string) bool {
	entry, ok := t.formats[strings.ToLower(tag)]
	return ok && entry.Template != ""
}

// Format loads the template text and stylesheet for tag.
func (t *Theme) Format(tag string) (Format, error) {
	return t.VariantFormat(tag, "")
}

// VariantFormat loads tag with the named variant's overrides applied. An
// empty variant selects the base theme.
func (t *Theme) VariantFormat(tag, variant string) (Format, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	entry, ok := t.formats[tag]
	if variant != "" {
		v, found := t.variants[variant]
		if !found {
			return Format{}, fmt.Errorf("theme: %s has no variant %q", t.Name, variant)
		}
		if override, has := v.Formats[tag]; has {
			if override.Template != "" {
				entry.Template = override.Template
			}
			if override.CSS != "" {
				entry.CSS = override.CSS
			}
			ok = true
		}
	}
	if !ok || entry.Template == "" {
		return Format{}, fmt.Errorf("%w: %s has no %q template", ErrFormatNotFound, t.Name, tag)
	}

	templatePath := t.path(entry.Template)
	text, err := os.ReadFile(templatePath)
	if err != nil {
		return Format{}, fmt.Errorf("theme: read %s template: %w", tag, err)
	}

	out := Format{
		Tag:          tag,
		TemplatePath: templatePath,
		TemplateText: string(text),
	}
	if entry.CSS != "" {
		cssPath := t.path(entry.CSS)
		css, err := os.ReadFile(cssPath)
		if err != nil {
			return Format{}, fmt.Errorf("theme: read %s stylesheet: %w", tag, err)
		}
		out.Style = Style{Path: cssPath, Data: string(css)}
	}
	return out, nil
}

// TemplateDir is the folder named templates are resolved against, used for
// {% include %} inside theme templates.
func (t *Theme) TemplateDir() string {
	dir := filepath.Join(t.Folder, "templates")
	if dirExists(dir) {
		return dir
	}
	return t.Folder
}

// Manifest returns the go-theme manifest describing this theme.
func (t *Theme) Manifest() *gotheme.Manifest {
	return t.manifest
}

// Select implements go-theme's ThemeSelector for this single theme.
func (t *Theme) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	if name != "" && name != t.Name {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	if variant != "" {
		if _, ok := t.variants[variant]; !ok {
			return nil, fmt.Errorf("theme: %s has no variant %q", t.Name, variant)
		}
	}
	return &gotheme.Selection{
		Theme:    t.Name,
		Variant:  variant,
		Manifest: t.manifest,
	}, nil
}

// RendererConfig flattens a selection into the values exposed to templates:
// tokens with variant overrides, CSS custom properties derived from them,
// the template for every format, and an asset resolver.
func (t *Theme) RendererConfig(variant string) (*gotheme.RendererConfig, error) {
	selection, err := t.Select(t.Name, variant)
	if err != nil {
		return nil, err
	}
	manifest := selection.Manifest

	tokens := copyStrings(manifest.Tokens)
	partials := copyStrings(manifest.Templates)
	files := copyStrings(manifest.Assets.Files)
	if v, ok := manifest.Variants[variant]; ok {
		for key, value := range v.Tokens {
			tokens[key] = value
		}
		for key, value := range v.Templates {
			partials[key] = value
		}
		for key, value := range v.Assets.Files {
			files[key] = value
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	prefix := manifest.Assets.Prefix
	return &gotheme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			return filepath.ToSlash(filepath.Join(prefix, file))
		},
	}, nil
}

func (t *Theme) buildManifest(tokens map[string]string) *gotheme.Manifest {
	templates := make(map[string]string, len(t.formats))
	files := make(map[string]string)
	for tag, entry := range t.formats {
		if entry.Template != "" {
			templates[tag] = entry.Template
		}
		if entry.CSS != "" {
			files[tag+".css"] = entry.CSS
		}
	}

	variants := make(map[string]gotheme.Variant, len(t.variants))
	for name, v := range t.variants {
		vTemplates := make(map[string]string)
		vFiles := make(map[string]string)
		for tag, entry := range v.Formats {
			if entry.Template != "" {
				vTemplates[tag] = entry.Template
			}
			if entry.CSS != "" {
				vFiles[tag+".css"] = entry.CSS
			}
		}
		variants[name] = gotheme.Variant{
			Tokens:    copyStrings(v.Tokens),
			Templates: vTemplates,
			Assets:    gotheme.Assets{Files: vFiles},
		}
	}

	return &gotheme.Manifest{
		Name:      t.Name,
		Version:   t.Version,
		Tokens:    copyStrings(tokens),
		Templates: templates,
		Assets: gotheme.Assets{
			Prefix: t.Folder,
			Files:  files,
		},
		Variants: variants,
	}
}

func (t *Theme) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(t.Folder, filepath.FromSlash(rel))
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
