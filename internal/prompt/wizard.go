// Package prompt asks for generation settings the command line left out.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Selection is the set of choices a generation needs.
type Selection struct {
	Resume  string
	Theme   string
	Variant string
	Format  string
	Output  string
}

// Choices lists what the user may pick from.
type Choices struct {
	Themes []string
	// Formats returns the formats a theme provides.
	Formats func(theme string) []string
	// Extension returns the file extension for a format, used for the
	// suggested output name.
	Extension func(format string) string
}

// Complete fills the empty fields of sel by prompting through driver. Fields
// already set are left alone.
func Complete(ctx context.Context, driver Driver, choices Choices, sel Selection) (Selection, error) {
	if driver == nil {
		return sel, errors.New("prompt: driver is required")
	}

	if sel.Resume == "" {
		resume, err := driver.Input(ctx, InputConfig{
			Message:   "Resume file:",
			Default:   "resume.json",
			Validator: required("resume file"),
		})
		if err != nil {
			return sel, err
		}
		sel.Resume = strings.TrimSpace(resume)
	}

	if sel.Theme == "" {
		theme, err := pick(ctx, driver, "Theme:", choices.Themes)
		if err != nil {
			return sel, err
		}
		sel.Theme = theme
	}

	if sel.Format == "" {
		var formats []string
		if choices.Formats != nil {
			formats = choices.Formats(sel.Theme)
		}
		format, err := pick(ctx, driver, "Format:", formats)
		if err != nil {
			return sel, err
		}
		sel.Format = format
	}

	if sel.Output == "" {
		ext := "." + sel.Format
		if choices.Extension != nil {
			ext = choices.Extension(sel.Format)
		}
		base := strings.TrimSuffix(filepath.Base(sel.Resume), filepath.Ext(sel.Resume))
		output, err := driver.Input(ctx, InputConfig{
			Message: "Output file:",
			Default: filepath.Join("out", base+ext),
		})
		if err != nil {
			return sel, err
		}
		sel.Output = strings.TrimSpace(output)
	}

	return sel, nil
}

func pick(ctx context.Context, driver Driver, message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("prompt: nothing to choose for %q", strings.TrimSuffix(message, ":"))
	}
	if len(options) == 1 {
		return options[0], nil
	}
	idx, err := driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("prompt: invalid selection %d", idx)
	}
	return options[idx], nil
}

func required(label string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}
