package rewrite

import (
	"fmt"
	"regexp"
)

// Delimiters holds the patterns recognised in theme templates. Interpolate,
// Escape and Evaluate must carry one capture group holding the inner text.
// Comment matches are removed entirely. A nil pattern falls back to the
// matching DefaultDelimiters pattern when passed to New, Rewrite or Merge;
// there is no way to switch a delimiter off.
type Delimiters struct {
	Interpolate *regexp.Regexp
	Escape      *regexp.Regexp
	Evaluate    *regexp.Regexp
	Comment     *regexp.Regexp
}

// DefaultDelimiters returns the stock {{ }}, {{= }}, {% %} and {# #} syntax.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Interpolate: regexp.MustCompile(`\{\{(.+?)\}\}`),
		Escape:      regexp.MustCompile(`\{\{=(.+?)\}\}`),
		Evaluate:    regexp.MustCompile(`\{%(.+?)%\}`),
		Comment:     regexp.MustCompile(`\{#(.+?)#\}`),
	}
}

// Merge returns d with every nil pattern replaced by the matching pattern from
// fallback.
func (d Delimiters) Merge(fallback Delimiters) Delimiters {
	if d.Interpolate == nil {
		d.Interpolate = fallback.Interpolate
	}
	if d.Escape == nil {
		d.Escape = fallback.Escape
	}
	if d.Evaluate == nil {
		d.Evaluate = fallback.Evaluate
	}
	if d.Comment == nil {
		d.Comment = fallback.Comment
	}
	return d
}

// Validate checks that every capturing pattern exposes a capture group.
func (d Delimiters) Validate() error {
	check := func(name string, re *regexp.Regexp) error {
		if re == nil {
			return nil
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("rewrite: %s pattern %q has no capture group", name, re.String())
		}
		return nil
	}
	if err := check("interpolate", d.Interpolate); err != nil {
		return err
	}
	if err := check("escape", d.Escape); err != nil {
		return err
	}
	return check("evaluate", d.Evaluate)
}

// Syntax is the directive syntax understood by the evaluator that consumes
// rewritten templates.
type Syntax struct {
	VariableStart string
	VariableEnd   string
	BlockStart    string
	BlockEnd      string
}

// PongoSyntax is the native pongo2 syntax.
var PongoSyntax = Syntax{
	VariableStart: "{{",
	VariableEnd:   "}}",
	BlockStart:    "{%",
	BlockEnd:      "%}",
}
