package render

import (
	"github.com/goliatone/go-resumegen/pkg/filters"
	"github.com/goliatone/go-resumegen/pkg/prettify"
	"github.com/goliatone/go-resumegen/pkg/rewrite"
	"github.com/goliatone/go-resumegen/pkg/whitespace"
)

// DefaultThemeRelative is the themes root used when callers do not set one.
const DefaultThemeRelative = "themes"

// Options configures a single render. Build it with NewOptions so defaults and
// overrides are merged consistently.
type Options struct {
	// ThemeRelative is the base path themes are resolved against.
	ThemeRelative string
	// KeepBreaks is reserved; line breaks are always kept.
	KeepBreaks bool
	// FreezeBreaks enables the whitespace guard around evaluation.
	FreezeBreaks bool
	NSym         string
	RSym         string
	Delimiters   rewrite.Delimiters
	Filters      *filters.Registry
	Prettify     prettify.Options
	HeadFragment string
}

// Overrides carries caller supplied settings. Zero values keep the default;
// pointer fields distinguish "unset" from false.
type Overrides struct {
	ThemeRelative string
	KeepBreaks    *bool
	FreezeBreaks  *bool
	NSym          string
	RSym          string
	Delimiters    rewrite.Delimiters
	// Filters are merged into the defaults by name.
	Filters      *filters.Registry
	Prettify     prettify.Options
	HeadFragment string
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		ThemeRelative: DefaultThemeRelative,
		KeepBreaks:    true,
		FreezeBreaks:  true,
		NSym:          whitespace.DefaultNSym,
		RSym:          whitespace.DefaultRSym,
		Delimiters:    rewrite.DefaultDelimiters(),
		Filters:       filters.Defaults(),
		Prettify:      prettify.DefaultOptions(),
	}
}

// NewOptions merges overrides, in order, over DefaultOptions.
func NewOptions(overrides ...Overrides) Options {
	return MergeOptions(DefaultOptions(), overrides...)
}

// MergeOptions applies overrides to base. Later overrides win. The filter
// registry of base is cloned so callers never mutate a shared registry.
func MergeOptions(base Options, overrides ...Overrides) Options {
	out := base
	out.Filters = base.Filters.Clone()

	for _, o := range overrides {
		if o.ThemeRelative != "" {
			out.ThemeRelative = o.ThemeRelative
		}
		if o.KeepBreaks != nil {
			out.KeepBreaks = *o.KeepBreaks
		}
		if o.FreezeBreaks != nil {
			out.FreezeBreaks = *o.FreezeBreaks
		}
		if o.NSym != "" {
			out.NSym = o.NSym
		}
		if o.RSym != "" {
			out.RSym = o.RSym
		}
		out.Delimiters = o.Delimiters.Merge(out.Delimiters)
		out.Filters.Merge(o.Filters)
		out.Prettify = o.Prettify.Merge(out.Prettify)
		if o.HeadFragment != "" {
			out.HeadFragment = o.HeadFragment
		}
	}
	return out
}

// withDefaults fills unset fields from DefaultOptions. Booleans are taken as
// given since false is a valid setting.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ThemeRelative == "" {
		o.ThemeRelative = def.ThemeRelative
	}
	if o.NSym == "" {
		o.NSym = def.NSym
	}
	if o.RSym == "" {
		o.RSym = def.RSym
	}
	if o.Filters == nil {
		o.Filters = def.Filters
	}
	o.Delimiters = o.Delimiters.Merge(def.Delimiters)
	o.Prettify = o.Prettify.Merge(def.Prettify)
	return o
}

// Bool returns a pointer to v, for Overrides fields.
func Bool(v bool) *bool {
	return &v
}

func (o Options) guard() whitespace.Guard {
	return whitespace.New(o.FreezeBreaks, o.NSym, o.RSym)
}
