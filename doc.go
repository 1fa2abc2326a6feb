// Package resumegen renders resume documents through themeable templates.
//
// Templates use {{ expr }} and {{ expr|filter }} for filtered output,
// {{= expr }} for escaped output, {% ... %} for logic and {# ... #} for
// comments. Rendering is available as a plain string transform (Render) or
// as a full theme to file generation (Generate).
package resumegen
