// Package prettify re-indents generated HTML. Block elements go on their own
// lines, inline and "unformatted" elements stay inside the surrounding text,
// and the contents of pre, textarea, script and style are copied verbatim.
// Line breaks inside text are kept.
package prettify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Options mirrors the knobs themes historically passed to the HTML
// beautifier.
type Options struct {
	IndentSize  int
	Unformatted []string
	// MaxChar wraps text lines longer than this many characters. Zero
	// disables wrapping.
	MaxChar int
}

// DefaultOptions returns two-space indentation, em/strong kept inline and an
// 80 character wrap.
func DefaultOptions() Options {
	return Options{
		IndentSize:  2,
		Unformatted: []string{"em", "strong"},
		MaxChar:     80,
	}
}

// Merge returns o with zero fields taken from fallback.
func (o Options) Merge(fallback Options) Options {
	if o.IndentSize == 0 {
		o.IndentSize = fallback.IndentSize
	}
	if len(o.Unformatted) == 0 {
		o.Unformatted = append([]string(nil), fallback.Unformatted...)
	}
	if o.MaxChar == 0 {
		o.MaxChar = fallback.MaxChar
	}
	return o
}

var inlineElements = map[string]struct{}{
	"a": {}, "abbr": {}, "b": {}, "br": {}, "cite": {}, "code": {}, "em": {},
	"i": {}, "img": {}, "kbd": {}, "mark": {}, "q": {}, "s": {}, "small": {},
	"span": {}, "strong": {}, "sub": {}, "sup": {}, "time": {}, "u": {},
}

var verbatimElements = map[string]struct{}{
	"pre": {}, "textarea": {}, "script": {}, "style": {},
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "param": {},
	"source": {}, "track": {}, "wbr": {},
}

type printer struct {
	opts   Options
	inline map[string]struct{}
	out    bytes.Buffer
	line   strings.Builder
	depth  int
	code   int
}

// HTML re-indents src according to opts.
func HTML(src string, opts Options) (string, error) {
	opts = opts.Merge(DefaultOptions())

	p := &printer{opts: opts, inline: make(map[string]struct{}, len(inlineElements)+len(opts.Unformatted))}
	for name := range inlineElements {
		p.inline[name] = struct{}{}
	}
	for _, name := range opts.Unformatted {
		p.inline[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return "", fmt.Errorf("prettify: %w", z.Err())
		}
		raw := string(z.Raw())

		switch tt {
		case html.TextToken:
			p.text(raw)
		case html.DoctypeToken, html.CommentToken:
			p.flush()
			p.writeLine(raw)
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if p.isInline(string(name)) {
				p.line.WriteString(raw)
				continue
			}
			p.flush()
			p.writeLine(raw)
		case html.StartTagToken:
			nameBytes, _ := z.TagName()
			name := string(nameBytes)
			if p.isInline(name) {
				if name == "code" {
					p.code++
				}
				p.line.WriteString(raw)
				continue
			}
			p.flush()
			if _, ok := verbatimElements[name]; ok {
				if err := p.verbatim(z, name, raw); err != nil {
					return "", err
				}
				continue
			}
			p.writeLine(raw)
			if _, void := voidElements[name]; !void {
				p.depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if p.isInline(string(name)) {
				if string(name) == "code" && p.code > 0 {
					p.code--
				}
				p.line.WriteString(raw)
				continue
			}
			p.flush()
			if p.depth > 0 {
				p.depth--
			}
			p.writeLine(raw)
		}
	}
	p.flush()
	return p.out.String(), nil
}

func (p *printer) isInline(name string) bool {
	_, ok := p.inline[name]
	return ok
}

// text keeps the line breaks of raw. Each line is collapsed on spaces and
// tabs and emitted at the current indent. Text inside code is kept as is.
func (p *printer) text(raw string) {
	if p.code > 0 {
		p.line.WriteString(raw)
		return
	}
	for i, segment := range strings.Split(raw, "\n") {
		if i > 0 {
			p.flush()
		}
		p.segment(segment)
	}
}

func (p *printer) segment(raw string) {
	collapsed := strings.Join(strings.FieldsFunc(raw, isBlank), " ")
	if collapsed == "" {
		if p.line.Len() > 0 && raw != "" {
			p.line.WriteByte(' ')
		}
		return
	}
	if p.line.Len() > 0 && isBlank(rune(raw[0])) {
		p.line.WriteByte(' ')
	}
	p.line.WriteString(collapsed)
	if isBlank(rune(raw[len(raw)-1])) {
		p.line.WriteByte(' ')
	}
}

// verbatim copies everything up to the matching end tag unchanged.
func (p *printer) verbatim(z *html.Tokenizer, name, open string) error {
	var block strings.Builder
	block.WriteString(open)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				p.writeLine(block.String())
				return nil
			}
			return fmt.Errorf("prettify: %w", z.Err())
		}
		block.Write(z.Raw())
		if tt == html.EndTagToken {
			if tag, _ := z.TagName(); string(tag) == name {
				break
			}
		}
	}
	p.out.WriteString(p.indent())
	p.out.WriteString(block.String())
	p.out.WriteByte('\n')
	return nil
}

func (p *printer) flush() {
	content := strings.TrimSpace(p.line.String())
	p.line.Reset()
	if content == "" {
		return
	}
	for _, line := range wrap(content, p.opts.MaxChar-len(p.indent())) {
		p.writeLine(line)
	}
}

func (p *printer) writeLine(content string) {
	p.out.WriteString(p.indent())
	p.out.WriteString(content)
	p.out.WriteByte('\n')
}

func (p *printer) indent() string {
	return strings.Repeat(" ", p.depth*p.opts.IndentSize)
}

// wrap splits text at spaces that sit outside tags and quoted attribute
// values so no line exceeds width where a break is possible.
func wrap(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}

	var (
		lines     []string
		lineStart int
		lastBreak = -1
		inTag     bool
		quote     byte
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case inTag && (c == '"' || c == '\''):
			quote = c
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case c == ' ' && !inTag:
			lastBreak = i
		}
		if i-lineStart >= width && lastBreak > lineStart {
			lines = append(lines, text[lineStart:lastBreak])
			lineStart = lastBreak + 1
			lastBreak = -1
		}
	}
	return append(lines, text[lineStart:])
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f'
}
