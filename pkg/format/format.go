// Package format describes the text outputs a theme can be rendered to and
// the post-processing each one receives before it is saved.
package format

import (
	"github.com/goliatone/go-resumegen/pkg/prettify"
)

// PostProcessor transforms rendered output before it is persisted.
type PostProcessor func(output string, opts prettify.Options) (string, error)

// Format is one output kind. Template names the theme template used to
// produce it, which may differ from Name (several outputs can share one
// template).
type Format struct {
	Name        string
	Template    string
	Extension   string
	ContentType string
	PostProcess PostProcessor
}

// Process runs the format's post-processor, if any.
func (f Format) Process(output string, opts prettify.Options) (string, error) {
	if f.PostProcess == nil {
		return output, nil
	}
	return f.PostProcess(output, opts)
}

// Built-in format names.
const (
	HTML     = "html"
	Text     = "txt"
	Markdown = "md"
	Doc      = "doc"
	LaTeX    = "latex"
)

// Defaults returns a registry with the built-in text formats.
func Defaults() *Registry {
	r := NewRegistry()
	r.MustRegister(Format{
		Name:        HTML,
		Extension:   ".html",
		ContentType: "text/html; charset=utf-8",
		PostProcess: prettify.HTML,
	})
	r.MustRegister(Format{
		Name:        Text,
		Extension:   ".txt",
		ContentType: "text/plain; charset=utf-8",
	})
	r.MustRegister(Format{
		Name:        Markdown,
		Extension:   ".md",
		ContentType: "text/markdown; charset=utf-8",
	})
	r.MustRegister(Format{
		Name:        Doc,
		Extension:   ".doc",
		ContentType: "application/msword",
	})
	r.MustRegister(Format{
		Name:        LaTeX,
		Extension:   ".tex",
		ContentType: "application/x-latex",
	})
	return r
}
