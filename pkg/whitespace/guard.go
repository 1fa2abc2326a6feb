// Package whitespace protects literal line breaks from template evaluators
// that collapse or reformat whitespace. Freeze swaps them for sentinel
// strings before evaluation and Unfreeze restores them afterwards.
package whitespace

import "strings"

// Default sentinels substituted for '\n' and '\r'.
const (
	DefaultNSym = "&newl;"
	DefaultRSym = "&retn;"
)

// Guard freezes and unfreezes line breaks. A disabled Guard is the identity.
//
// Round-tripping is only guaranteed for text that does not already contain
// NSym or RSym.
type Guard struct {
	Enabled bool
	NSym    string
	RSym    string
}

// New returns a guard with the supplied sentinels, falling back to the
// defaults for empty values.
func New(enabled bool, nSym, rSym string) Guard {
	if nSym == "" {
		nSym = DefaultNSym
	}
	if rSym == "" {
		rSym = DefaultRSym
	}
	return Guard{Enabled: enabled, NSym: nSym, RSym: rSym}
}

// Freeze replaces every '\n' with NSym, then every '\r' with RSym. The order
// is fixed: a "\r\n" pair becomes RSym followed by NSym.
func (g Guard) Freeze(text string) string {
	if !g.Enabled {
		return text
	}
	text = strings.ReplaceAll(text, "\n", g.NSym)
	return strings.ReplaceAll(text, "\r", g.RSym)
}

// Unfreeze reverses Freeze: RSym first, then NSym.
func (g Guard) Unfreeze(text string) string {
	if !g.Enabled {
		return text
	}
	text = strings.ReplaceAll(text, g.RSym, "\r")
	return strings.ReplaceAll(text, g.NSym, "\n")
}
