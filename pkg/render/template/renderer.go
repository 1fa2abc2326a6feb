package template

import (
	"io"
)

// TemplateRenderer is the seam between the render pipeline and the
// general-purpose evaluator. RenderString compiles templateContent and
// executes it against data; RenderTemplate loads a named template from the
// engine's loaders first.
type TemplateRenderer interface {
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// FilterApplier is placed in a render context to expose named filters to
// templates. Engines adapt it to their own calling convention.
type FilterApplier interface {
	ApplyFilter(name, text string) (string, error)
}
