// Package rewrite translates theme interpolation syntax into directives for
// the underlying template evaluator.
//
// The interpolation grammar is deliberately small:
//
//	{{ expr }}          prints filt.Apply("out", expr)
//	{{ expr|filter }}   prints filt.Apply("filter", expr)
//
// Exactly zero or one pipe is allowed. Expressions with more pipes, an empty
// expression or an empty filter name are rejected with ErrMalformedExpression.
// Escape ({{= expr }}) and evaluate ({% code %}) spans are re-emitted in the
// evaluator's own syntax and comments ({# ... #}) are dropped.
package rewrite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedExpression reports an interpolation outside the single-pipe
// grammar.
var ErrMalformedExpression = errors.New("rewrite: malformed expression")

const (
	// FilterBinding is the context key under which renderers expose filters.
	FilterBinding = "filt"
	// FilterMethod is the method invoked on the binding.
	FilterMethod = "Apply"
	// DefaultFilter is used for interpolations without a pipe.
	DefaultFilter = "out"
)

// Result is the outcome of a rewrite.
type Result struct {
	Template string
	// Filters lists the distinct filter names referenced, in first-use order.
	Filters []string
}

// Rewriter rewrites templates for a fixed delimiter set and target syntax.
type Rewriter struct {
	delims Delimiters
	syntax Syntax
}

// New builds a Rewriter. Nil patterns in delims are taken from
// DefaultDelimiters.
func New(delims Delimiters, syntax Syntax) (*Rewriter, error) {
	delims = delims.Merge(DefaultDelimiters())
	if err := delims.Validate(); err != nil {
		return nil, err
	}
	return &Rewriter{delims: delims, syntax: syntax}, nil
}

// Rewrite rewrites src using delims and the pongo2 syntax.
func Rewrite(src string, delims Delimiters) (Result, error) {
	rw, err := New(delims, PongoSyntax)
	if err != nil {
		return Result{}, err
	}
	return rw.Rewrite(src)
}

type spanKind int

const (
	spanEscape spanKind = iota
	spanInterpolate
	spanEvaluate
)

// Rewrite strips comments, then rewrites escape, interpolate and evaluate
// spans in a single left-to-right pass. When spans start at the same offset
// escape wins over interpolate, which wins over evaluate.
func (rw *Rewriter) Rewrite(src string) (Result, error) {
	if rw.delims.Comment != nil {
		src = rw.delims.Comment.ReplaceAllString(src, "")
	}

	type matcher struct {
		kind spanKind
		find func(string) []int
		loc  []int
		done bool
	}

	var matchers []*matcher
	if re := rw.delims.Escape; re != nil {
		matchers = append(matchers, &matcher{kind: spanEscape, find: re.FindStringSubmatchIndex})
	}
	if re := rw.delims.Interpolate; re != nil {
		matchers = append(matchers, &matcher{kind: spanInterpolate, find: re.FindStringSubmatchIndex})
	}
	if re := rw.delims.Evaluate; re != nil {
		matchers = append(matchers, &matcher{kind: spanEvaluate, find: re.FindStringSubmatchIndex})
	}

	var (
		out    strings.Builder
		result Result
		seen   = make(map[string]struct{})
		cursor int
	)
	out.Grow(len(src))

	for cursor <= len(src) {
		var best *matcher
		for _, m := range matchers {
			if m.done {
				continue
			}
			if m.loc == nil || m.loc[0] < cursor {
				loc := m.find(src[cursor:])
				if loc == nil {
					m.done = true
					m.loc = nil
					continue
				}
				for i := range loc {
					if loc[i] >= 0 {
						loc[i] += cursor
					}
				}
				m.loc = loc
			}
			if best == nil || m.loc[0] < best.loc[0] {
				best = m
			}
		}
		if best == nil {
			out.WriteString(src[cursor:])
			break
		}

		start, end := best.loc[0], best.loc[1]
		out.WriteString(src[cursor:start])

		inner := ""
		if len(best.loc) >= 4 && best.loc[2] >= 0 {
			inner = src[best.loc[2]:best.loc[3]]
		}

		switch best.kind {
		case spanEscape:
			out.WriteString(rw.variable(strings.TrimSpace(inner)))
		case spanEvaluate:
			out.WriteString(rw.syntax.BlockStart)
			out.WriteString(inner)
			out.WriteString(rw.syntax.BlockEnd)
		case spanInterpolate:
			expr, filter, err := ParseExpression(inner)
			if err != nil {
				return Result{}, err
			}
			if _, ok := seen[filter]; !ok {
				seen[filter] = struct{}{}
				result.Filters = append(result.Filters, filter)
			}
			out.WriteString(rw.variable(fmt.Sprintf("%s.%s(%s, %s)|safe",
				FilterBinding, FilterMethod, strconv.Quote(filter), expr)))
		}

		if end == start {
			// Zero-width match; copy one byte to guarantee progress.
			if end < len(src) {
				out.WriteByte(src[end])
			}
			end++
		}
		cursor = end
	}

	result.Template = out.String()
	return result, nil
}

func (rw *Rewriter) variable(expr string) string {
	return rw.syntax.VariableStart + " " + expr + " " + rw.syntax.VariableEnd
}

// ParseExpression splits an interpolation body into its expression and filter
// name. A body without a pipe uses DefaultFilter.
func ParseExpression(body string) (expr, filter string, err error) {
	parts := strings.Split(body, "|")
	switch len(parts) {
	case 1:
		expr, filter = strings.TrimSpace(parts[0]), DefaultFilter
	case 2:
		expr, filter = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if filter == "" {
			return "", "", fmt.Errorf("%w: empty filter name in %q", ErrMalformedExpression, body)
		}
	default:
		return "", "", fmt.Errorf("%w: %d pipes in %q", ErrMalformedExpression, len(parts)-1, body)
	}
	if expr == "" {
		return "", "", fmt.Errorf("%w: empty expression in %q", ErrMalformedExpression, body)
	}
	return expr, filter, nil
}
