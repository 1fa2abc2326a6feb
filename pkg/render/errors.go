package render

import (
	"fmt"

	"github.com/goliatone/go-resumegen/pkg/filters"
	"github.com/goliatone/go-resumegen/pkg/rewrite"
	themes "github.com/goliatone/go-resumegen/pkg/theme"
)

// Sentinels surfaced by rendering, re-exported from the packages that own them.
var (
	ErrUnknownFilter       = filters.ErrUnknownFilter
	ErrMalformedExpression = rewrite.ErrMalformedExpression
	ErrThemeNotFound       = themes.ErrThemeNotFound
	ErrFormatNotFound      = themes.ErrFormatNotFound
)

// EvaluationError wraps any failure raised by the template evaluator.
type EvaluationError struct {
	Format string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("render: evaluate template: %v", e.Err)
	}
	return fmt.Sprintf("render: evaluate %s template: %v", e.Format, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
