package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-resumegen/internal/prompt"
	"github.com/goliatone/go-resumegen/internal/watch"
	"github.com/goliatone/go-resumegen/pkg/format"
	"github.com/goliatone/go-resumegen/pkg/generator"
	"github.com/goliatone/go-resumegen/pkg/render"
	"github.com/goliatone/go-resumegen/pkg/theme"
)

func main() {
	resumePath := flag.String("resume", "", "resume document (.json, .yaml or .yml)")
	themeName := flag.String("theme", "", "theme name under -themes, or a theme folder path")
	variant := flag.String("variant", "", "theme variant")
	formatName := flag.String("format", "html", "output format")
	output := flag.String("o", "", "output file (stdout if empty)")
	themesRoot := flag.String("themes", render.DefaultThemeRelative, "folder holding theme folders")
	headFragment := flag.String("head", "", "markup exposed to templates as headFragment")
	watchMode := flag.Bool("watch", false, "regenerate when the resume or theme changes")
	interactive := flag.Bool("interactive", false, "prompt for missing settings")
	noFreeze := flag.Bool("no-freeze", false, "do not protect line breaks during evaluation")
	listThemes := flag.Bool("list-themes", false, "list themes under -themes and exit")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *listThemes {
		if err := printThemes(*themesRoot); err != nil {
			log.Fatalf("Failed to list themes: %v", err)
		}
		return
	}

	formats := format.Defaults()
	gen := generator.New(
		generator.WithLogger(logger),
		generator.WithFormats(formats),
		generator.WithThemesRoot(*themesRoot),
		generator.WithOverrides(render.Overrides{
			FreezeBreaks: render.Bool(!*noFreeze),
			HeadFragment: *headFragment,
		}),
	)

	sel := prompt.Selection{
		Resume:  strings.TrimSpace(*resumePath),
		Theme:   strings.TrimSpace(*themeName),
		Variant: strings.TrimSpace(*variant),
		Format:  strings.TrimSpace(*formatName),
		Output:  strings.TrimSpace(*output),
	}
	if *interactive {
		completed, err := prompt.Complete(ctx, prompt.NewSurveyDriver(), choices(*themesRoot, formats), sel)
		if err != nil {
			log.Fatalf("Failed to read settings: %v", err)
		}
		sel = completed
	}
	if sel.Resume == "" || sel.Theme == "" {
		flag.Usage()
		os.Exit(2)
	}

	req := generator.Request{
		ResumePath: sel.Resume,
		Theme:      sel.Theme,
		Variant:    sel.Variant,
		Format:     sel.Format,
		Output:     sel.Output,
	}

	if err := run(ctx, gen, req); err != nil {
		log.Fatalf("Failed to generate resume: %v", err)
	}
	if !*watchMode {
		return
	}

	themeFolder, err := theme.Locate(req.Theme, gen.ThemesRoot())
	if err != nil {
		log.Fatalf("Failed to watch theme: %v", err)
	}
	watcher, err := watch.New(0, req.ResumePath, themeFolder)
	if err != nil {
		log.Fatalf("Failed to start watcher: %v", err)
	}
	defer watcher.Close()

	logger.Info("watching", "resume", req.ResumePath, "theme", themeFolder)
	err = watcher.Run(ctx, func(changed string) error {
		logger.Info("change detected", "path", changed)
		if err := run(ctx, gen, req); err != nil {
			logger.Error("generation failed", "error", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Watch stopped: %v", err)
	}
}

func run(ctx context.Context, gen *generator.Generator, req generator.Request) error {
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	if req.Output == "" {
		fmt.Print(res.Output)
		return nil
	}
	fmt.Printf("Resume written to %s\n", req.Output)
	return nil
}

func printThemes(root string) error {
	catalog, err := theme.LoadCatalog(root)
	if err != nil {
		return err
	}
	for _, name := range catalog.Names() {
		th, err := catalog.Get(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\t%s\n", th.Name, th.Version, strings.Join(th.Formats(), ","))
	}
	return nil
}

func choices(themesRoot string, formats *format.Registry) prompt.Choices {
	catalog, err := theme.LoadCatalog(themesRoot)
	if err != nil {
		catalog = nil
	}

	c := prompt.Choices{
		Extension: func(name string) string {
			f, err := formats.Get(name)
			if err != nil || f.Extension == "" {
				return "." + name
			}
			return f.Extension
		},
	}
	if catalog != nil {
		c.Themes = catalog.Names()
	}
	c.Formats = func(name string) []string {
		th, err := lookupTheme(catalog, themesRoot, name)
		if err != nil {
			return formats.List()
		}
		var out []string
		for _, candidate := range formats.List() {
			f, _ := formats.Get(candidate)
			if th.HasFormat(f.Template) {
				out = append(out, candidate)
			}
		}
		return out
	}
	return c
}

func lookupTheme(catalog *theme.Catalog, themesRoot, name string) (*theme.Theme, error) {
	if catalog != nil {
		if th, err := catalog.Get(name); err == nil {
			return th, nil
		}
	}
	return theme.Resolve(name, filepath.Clean(themesRoot))
}
