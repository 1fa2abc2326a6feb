package render

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-resumegen/pkg/render/template"
	"github.com/goliatone/go-resumegen/pkg/render/template/pongo"
	"github.com/goliatone/go-resumegen/pkg/rewrite"
)

// Request is one render: a document, the theme template for a format and the
// format's stylesheet.
type Request struct {
	Document any
	Template string
	Format   string
	CSS      CSSInfo
	// Theme, when set, is exposed to templates as "theme".
	Theme *theme.RendererConfig
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEvaluator overrides the template evaluator. Defaults to a pongo2 engine.
func WithEvaluator(evaluator template.TemplateRenderer) Option {
	return func(p *Pipeline) {
		if evaluator != nil {
			p.evaluator = evaluator
		}
	}
}

// WithOptions sets the render options used by the pipeline. Unset fields,
// including a nil filter registry, fall back to DefaultOptions.
func WithOptions(opts Options) Option {
	return func(p *Pipeline) {
		p.options = opts
	}
}

// Pipeline runs the freeze, rewrite, evaluate, unfreeze sequence. It holds no
// per-render state, so one Pipeline may serve concurrent renders.
type Pipeline struct {
	evaluator template.TemplateRenderer
	options   Options
}

// NewPipeline builds a pipeline with DefaultOptions and a pongo2 evaluator
// unless overridden.
func NewPipeline(options ...Option) (*Pipeline, error) {
	p := &Pipeline{options: DefaultOptions()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	p.options = p.options.withDefaults()
	if p.evaluator == nil {
		engine, err := pongo.New()
		if err != nil {
			return nil, fmt.Errorf("render: create evaluator: %w", err)
		}
		p.evaluator = engine
	}
	return p, nil
}

// Options returns the pipeline's render options.
func (p *Pipeline) Options() Options {
	return p.options
}

// Render expands req.Template against req.Document. The steps run in a fixed
// order: freeze line breaks, rewrite delimiters, check referenced filters,
// evaluate, unfreeze.
func (p *Pipeline) Render(ctx context.Context, req Request) (string, error) {
	if ctx == nil {
		return "", errors.New("render: context is required")
	}
	opts := p.options
	guard := opts.guard()

	tpl := guard.Freeze(req.Template)

	rw, err := rewrite.New(opts.Delimiters, rewrite.PongoSyntax)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	rewritten, err := rw.Rewrite(tpl)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	for _, name := range rewritten.Filters {
		if _, err := opts.Filters.Resolve(name); err != nil {
			return "", fmt.Errorf("render: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	binding := newFilterBinding(opts.Filters)
	out, err := p.evaluator.RenderString(rewritten.Template, buildContext(req, binding, opts))
	if failure := binding.failure(); failure != nil {
		return "", fmt.Errorf("render: %w", failure)
	}
	if err != nil {
		return "", &EvaluationError{Format: req.Format, Err: err}
	}

	return guard.Unfreeze(out), nil
}

// Render expands tpl for doc with a one-off pipeline. It is the string-only
// entry point for callers without theme folders.
func Render(ctx context.Context, doc any, tpl, format string, css CSSInfo, opts Options) (string, error) {
	p, err := NewPipeline(WithOptions(opts))
	if err != nil {
		return "", err
	}
	return p.Render(ctx, Request{
		Document: doc,
		Template: tpl,
		Format:   format,
		CSS:      css,
	})
}
