package render

import (
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-resumegen/pkg/filters"
	"github.com/goliatone/go-resumegen/pkg/rewrite"
)

// Context keys exposed to templates.
const (
	KeyDocument     = "r"
	KeyFilters      = rewrite.FilterBinding
	KeyCSSInfo      = "cssInfo"
	KeyHeadFragment = "headFragment"
	KeyTheme        = "theme"
	KeyFormat       = "format"
)

// CSSInfo describes a format's stylesheet: a file path, inline data, or both.
type CSSInfo struct {
	File string
	Data string
}

func (c CSSInfo) values() map[string]any {
	info := map[string]any{"file": nil, "data": nil}
	if c.File != "" {
		info["file"] = c.File
	}
	if c.Data != "" {
		info["data"] = c.Data
	}
	return info
}

// filterBinding is the per-render view of a filter registry. It remembers the
// first unknown filter so the failure surfaces even when the evaluator only
// reports a generic error.
type filterBinding struct {
	registry *filters.Registry

	mu  sync.Mutex
	err error
}

func newFilterBinding(registry *filters.Registry) *filterBinding {
	return &filterBinding{registry: registry}
}

// ApplyFilter implements template.FilterApplier.
func (b *filterBinding) ApplyFilter(name, text string) (string, error) {
	out, err := b.registry.Apply(name, text)
	if err != nil {
		b.mu.Lock()
		if b.err == nil {
			b.err = err
		}
		b.mu.Unlock()
		return "", err
	}
	return out, nil
}

func (b *filterBinding) failure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func buildContext(req Request, binding *filterBinding, opts Options) map[string]any {
	ctx := map[string]any{
		KeyDocument:     req.Document,
		KeyFilters:      binding,
		KeyCSSInfo:      req.CSS.values(),
		KeyHeadFragment: opts.HeadFragment,
		KeyFormat:       req.Format,
	}
	if req.Theme != nil {
		ctx[KeyTheme] = themeValues(req.Theme)
	}
	return ctx
}

func themeValues(cfg *theme.RendererConfig) map[string]any {
	return map[string]any{
		"name":         cfg.Theme,
		"variant":      cfg.Variant,
		"tokens":       copyStringMap(cfg.Tokens),
		"cssVars":      copyStringMap(cfg.CSSVars),
		"cssVarsStyle": cssVarsStyle(cfg.CSSVars),
		"partials":     copyStringMap(cfg.Partials),
	}
}

func copyStringMap(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}
