package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/goliatone/go-resumegen/pkg/format"
	"github.com/goliatone/go-resumegen/pkg/render"
	"github.com/goliatone/go-resumegen/pkg/render/template/pongo"
	"github.com/goliatone/go-resumegen/pkg/resume"
	"github.com/goliatone/go-resumegen/pkg/theme"
)

// BeforeSave may rewrite generated output before it is written to path. It
// runs after the format's own post-processing.
type BeforeSave func(output string, th *theme.Theme, path string) (string, error)

// Option customises the generator configuration.
type Option func(*Generator)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithFormats injects the output format registry.
func WithFormats(registry *format.Registry) Option {
	return func(g *Generator) {
		if registry != nil {
			g.formats = registry
		}
	}
}

// WithOverrides merges render overrides into the generator's options.
func WithOverrides(overrides ...render.Overrides) Option {
	return func(g *Generator) {
		g.options = render.MergeOptions(g.options, overrides...)
	}
}

// WithThemesRoot sets the folder theme names are resolved against.
func WithThemesRoot(root string) Option {
	return WithOverrides(render.Overrides{ThemeRelative: root})
}

// WithThemeOptions forwards options to theme resolution.
func WithThemeOptions(options ...theme.Option) Option {
	return func(g *Generator) {
		g.themeOptions = append(g.themeOptions, options...)
	}
}

// WithBeforeSave registers a hook run on every generated output.
func WithBeforeSave(hook BeforeSave) Option {
	return func(g *Generator) {
		g.beforeSave = hook
	}
}

// Generator turns a resume plus a theme into a file for one output format.
// It holds no per-generation state and is safe for concurrent use.
type Generator struct {
	logger       *slog.Logger
	formats      *format.Registry
	options      render.Options
	themeOptions []theme.Option
	beforeSave   BeforeSave
}

// New constructs a Generator with default render options and the built-in
// formats, then applies options.
func New(options ...Option) *Generator {
	g := &Generator{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		formats: format.Defaults(),
		options: render.DefaultOptions(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	return g
}

// Request describes one generation.
type Request struct {
	// Resume is the document to render. When nil, ResumePath is loaded.
	Resume     any
	ResumePath string

	// Theme names a theme folder under the themes root, or a path of its own.
	// ThemeObj bypasses resolution when the caller already opened the theme.
	Theme    string
	ThemeObj *theme.Theme
	Variant  string

	// Format names a registered output format.
	Format string

	// Output is the destination file. When empty nothing is written and the
	// output is only returned.
	Output string

	// Overrides apply to this request only.
	Overrides []render.Overrides
}

// Result is a completed generation.
type Result struct {
	Output string
	Path   string
	Theme  *theme.Theme
	Format format.Format
}

// Generate resolves the theme, renders the format's template against the
// resume, post-processes and, when an output path is given, writes the result
// atomically.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		return nil, errors.New("generator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	opts := render.MergeOptions(g.options, req.Overrides...)

	doc, err := g.resolveResume(req)
	if err != nil {
		return nil, err
	}

	outFormat, err := g.formats.Get(req.Format)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	th, err := g.resolveTheme(req, opts)
	if err != nil {
		return nil, err
	}

	tf, err := th.VariantFormat(outFormat.Template, req.Variant)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	cfg, err := th.RendererConfig(req.Variant)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	engine, err := pongo.New(pongo.WithBaseDir(th.TemplateDir()))
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	pipeline, err := render.NewPipeline(render.WithEvaluator(engine), render.WithOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	g.logger.Debug("rendering",
		"theme", th.Name,
		"variant", req.Variant,
		"format", outFormat.Name,
		"template", tf.TemplatePath,
	)
	out, err := pipeline.Render(ctx, render.Request{
		Document: doc,
		Template: tf.TemplateText,
		Format:   outFormat.Name,
		CSS:      render.CSSInfo{File: tf.Style.Path, Data: tf.Style.Data},
		Theme:    cfg,
	})
	if err != nil {
		return nil, err
	}

	out, err = outFormat.Process(out, opts.Prettify)
	if err != nil {
		return nil, fmt.Errorf("generator: post-process %s: %w", outFormat.Name, err)
	}
	if g.beforeSave != nil {
		out, err = g.beforeSave(out, th, req.Output)
		if err != nil {
			return nil, fmt.Errorf("generator: before save: %w", err)
		}
	}

	if req.Output != "" {
		if err := write(req.Output, out); err != nil {
			return nil, err
		}
	}

	g.logger.Info("generated",
		"theme", th.Name,
		"format", outFormat.Name,
		"output", req.Output,
		"bytes", len(out),
		"elapsed", time.Since(started),
	)

	return &Result{
		Output: out,
		Path:   req.Output,
		Theme:  th,
		Format: outFormat,
	}, nil
}

// Single renders tpl for doc without touching the filesystem.
func (g *Generator) Single(ctx context.Context, doc any, tpl, formatName string, css render.CSSInfo) (string, error) {
	return render.Render(ctx, doc, tpl, formatName, css, g.options)
}

// Formats returns the generator's output format registry.
func (g *Generator) Formats() *format.Registry {
	return g.formats
}

// ThemesRoot is the folder theme names are resolved against.
func (g *Generator) ThemesRoot() string {
	return g.options.ThemeRelative
}

func (g *Generator) resolveResume(req Request) (any, error) {
	if req.Resume != nil {
		return req.Resume, nil
	}
	if strings.TrimSpace(req.ResumePath) == "" {
		return nil, errors.New("generator: resume is required")
	}
	doc, err := resume.Load(req.ResumePath)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return doc, nil
}

func (g *Generator) resolveTheme(req Request, opts render.Options) (*theme.Theme, error) {
	if req.ThemeObj != nil {
		return req.ThemeObj, nil
	}
	th, err := theme.Resolve(req.Theme, opts.ThemeRelative, g.themeOptions...)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return th, nil
}

func write(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("generator: create output dir: %w", err)
		}
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("generator: write %s: %w", path, err)
	}
	return nil
}
