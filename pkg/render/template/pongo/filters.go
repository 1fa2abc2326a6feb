package pongo

import (
	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-resumegen/pkg/render/template"
)

// filterBinding exposes a template.FilterApplier to pongo2 as
// filt.Apply("name", value). Taking the value as *pongo2.Value keeps
// undefined resume fields renderable as empty strings.
type filterBinding struct {
	applier template.FilterApplier
}

// Apply runs the named filter. The result is marked safe: filters own their
// escaping.
func (b *filterBinding) Apply(name string, in *pongo2.Value) (*pongo2.Value, error) {
	text := ""
	if in != nil && !in.IsNil() {
		text = in.String()
	}
	out, err := b.applier.ApplyFilter(name, text)
	if err != nil {
		return nil, err
	}
	return pongo2.AsSafeValue(out), nil
}
