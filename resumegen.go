package resumegen

import (
	"context"

	"github.com/goliatone/go-resumegen/pkg/filters"
	"github.com/goliatone/go-resumegen/pkg/generator"
	"github.com/goliatone/go-resumegen/pkg/render"
	"github.com/goliatone/go-resumegen/pkg/rewrite"
	"github.com/goliatone/go-resumegen/pkg/theme"
)

// Options is the render configuration; alias exported via the root package
// for convenience.
type Options = render.Options

// Overrides describes caller supplied changes to the default Options.
type Overrides = render.Overrides

// CSSInfo describes the stylesheet exposed to templates as cssInfo.
type CSSInfo = render.CSSInfo

// Request describes one theme based generation.
type Request = generator.Request

// Result is a completed generation.
type Result = generator.Result

// EvaluationError wraps failures raised by the template evaluator.
type EvaluationError = render.EvaluationError

var (
	ErrThemeNotFound       = theme.ErrThemeNotFound
	ErrFormatNotFound      = theme.ErrFormatNotFound
	ErrUnknownFilter       = filters.ErrUnknownFilter
	ErrMalformedExpression = rewrite.ErrMalformedExpression
)

// DefaultOptions returns the stock render configuration.
func DefaultOptions() Options {
	return render.DefaultOptions()
}

// NewOptions merges overrides over DefaultOptions.
func NewOptions(overrides ...Overrides) Options {
	return render.NewOptions(overrides...)
}

// NewGenerator exposes the generator constructor from the top-level module.
func NewGenerator(options ...generator.Option) *generator.Generator {
	return generator.New(options...)
}

// Render expands a template string against doc without touching the
// filesystem. Unset fields of opts take their DefaultOptions values.
func Render(ctx context.Context, doc any, tpl, format string, css CSSInfo, opts Options) (string, error) {
	return render.Render(ctx, doc, tpl, format, css, opts)
}

// Generate resolves a theme, renders it for req.Format and writes req.Output
// when set.
func Generate(ctx context.Context, req Request, options ...generator.Option) (*Result, error) {
	return generator.New(options...).Generate(ctx, req)
}
