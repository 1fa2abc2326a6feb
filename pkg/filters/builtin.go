package filters

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Built-in filter names.
const (
	Out   = "out"
	Raw   = "raw"
	XML   = "xml"
	MD    = "md"
	MDIn  = "mdin"
	Lower = "lower"
	Clean = "clean"
	Trim  = "trim"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown

	cleanPolicyOnce sync.Once
	cleanPolicy     *bluemonday.Policy

	paragraphWrapper = regexp.MustCompile(`(?i)^\s*<p>|</p>\s*$`)

	xmlReplacer = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

// Defaults returns a registry seeded with the built-in filters.
func Defaults() *Registry {
	r := New()
	r.MustRegister(Out, Identity)
	r.MustRegister(Raw, Identity)
	r.MustRegister(XML, EscapeXML)
	r.MustRegister(MD, Markdown)
	r.MustRegister(MDIn, MarkdownInline)
	r.MustRegister(Lower, strings.ToLower)
	r.MustRegister(Clean, Sanitize)
	r.MustRegister(Trim, strings.TrimSpace)
	return r
}

// Identity returns text unchanged.
func Identity(text string) string {
	return text
}

// EscapeXML escapes the five XML special characters.
func EscapeXML(text string) string {
	return xmlReplacer.Replace(text)
}

// Markdown converts Markdown to HTML. Conversion failures return the input.
func Markdown(text string) string {
	var buf bytes.Buffer
	if err := markdownConverter().Convert([]byte(text), &buf); err != nil {
		return text
	}
	return buf.String()
}

// MarkdownInline converts Markdown to HTML and drops the enclosing paragraph
// so the result can sit inside an existing block element.
func MarkdownInline(text string) string {
	return paragraphWrapper.ReplaceAllString(Markdown(text), "")
}

// Sanitize strips markup that is unsafe to embed in a generated page.
func Sanitize(text string) string {
	return sanitizer().Sanitize(text)
}

func markdownConverter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

func sanitizer() *bluemonday.Policy {
	cleanPolicyOnce.Do(func() {
		cleanPolicy = bluemonday.UGCPolicy()
	})
	return cleanPolicy
}
