// Package template defines the evaluator interface used by the render
// pipeline. The pongo2 implementation lives in the pongo subpackage; callers
// can supply their own for tests or alternative engines.
package template
