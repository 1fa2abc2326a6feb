package rewrite

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewrite_Interpolations(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "default filter",
			in:   "<h1>{{ r.name }}</h1>",
			want: `<h1>{{ filt.Apply("out", r.name)|safe }}</h1>`,
		},
		{
			name: "explicit filter",
			in:   "<h1>{{ r.name|xml }}</h1>",
			want: `<h1>{{ filt.Apply("xml", r.name)|safe }}</h1>`,
		},
		{
			name: "padded filter",
			in:   "{{r.summary | md }}",
			want: `{{ filt.Apply("md", r.summary)|safe }}`,
		},
		{
			name: "escape",
			in:   "{{= r.name }}",
			want: "{{ r.name }}",
		},
		{
			name: "evaluate passthrough",
			in:   "{% for job in r.work %}{{ job.company }}{% endfor %}",
			want: `{% for job in r.work %}{{ filt.Apply("out", job.company)|safe }}{% endfor %}`,
		},
		{
			name: "comment",
			in:   "a{# drop me #}b",
			want: "ab",
		},
		{
			name: "comment keeps surrounding whitespace",
			in:   "a {# drop #} b",
			want: "a  b",
		},
		{
			name: "no directives",
			in:   "plain text",
			want: "plain text",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Rewrite(tc.in, DefaultDelimiters())
			if err != nil {
				t.Fatalf("rewrite: %v", err)
			}
			if got.Template != tc.want {
				t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", tc.want, got.Template)
			}
		})
	}
}

func TestRewrite_DefaultFilterEquivalentToOut(t *testing.T) {
	bare, err := Rewrite("{{ name }}", DefaultDelimiters())
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	explicit, err := Rewrite("{{ name|out }}", DefaultDelimiters())
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if bare.Template != explicit.Template {
		t.Fatalf("expected identical rewrites\nbare:     %q\nexplicit: %q", bare.Template, explicit.Template)
	}
}

func TestRewrite_Deterministic(t *testing.T) {
	src := "{# c #}{{ a|md }} {{= b }} {% if c %}{{ c|lower }}{% endif %}"
	first, err := Rewrite(src, DefaultDelimiters())
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	second, err := Rewrite(src, DefaultDelimiters())
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rewrite not deterministic (-first +second):\n%s", diff)
	}
}

func TestRewrite_ReportsFiltersInFirstUseOrder(t *testing.T) {
	got, err := Rewrite("{{ a|xml }}{{ b }}{{ c|xml }}{{ d|bogus }}", DefaultDelimiters())
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	want := []string{"xml", "out", "bogus"}
	if diff := cmp.Diff(want, got.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
}

func TestRewrite_CommentsDoNotContributeFilters(t *testing.T) {
	got, err := Rewrite("{# {{ a|bogus }} #}{{ b }}", DefaultDelimiters())
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if diff := cmp.Diff([]string{"out"}, got.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
}

func TestRewrite_Malformed(t *testing.T) {
	inputs := []string{
		"{{ a|xml|lower }}",
		"{{ a| }}",
		"{{ |xml }}",
		"{{   }}",
	}
	for _, in := range inputs {
		_, err := Rewrite(in, DefaultDelimiters())
		if !errors.Is(err, ErrMalformedExpression) {
			t.Fatalf("Rewrite(%q): expected ErrMalformedExpression, got %v", in, err)
		}
	}
}

func TestRewrite_CustomDelimiters(t *testing.T) {
	delims := Delimiters{
		Interpolate: regexp.MustCompile(`<%=(.+?)%>`),
		Escape:      regexp.MustCompile(`<%-(.+?)%>`),
		Evaluate:    regexp.MustCompile(`<%(.+?)%>`),
		Comment:     regexp.MustCompile(`<%#(.+?)%>`),
	}

	got, err := Rewrite("<%# note %><% if r.name %><%= r.name|xml %><%- r.title %><% endif %>", delims)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	want := `{% if r.name %}{{ filt.Apply("xml", r.name)|safe }}{{ r.title }}{% endif %}`
	if got.Template != want {
		t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", want, got.Template)
	}
}

func TestRewrite_NilPatternsFallBackToDefaults(t *testing.T) {
	delims := Delimiters{Interpolate: regexp.MustCompile(`<%=(.+?)%>`)}

	got, err := Rewrite("{# note #}{% if r.name %}<%= r.name %>{{= r.title }}{% endif %}", delims)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	want := `{% if r.name %}{{ filt.Apply("out", r.name)|safe }}{{ r.title }}{% endif %}`
	if got.Template != want {
		t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", want, got.Template)
	}

	merged := Delimiters{}.Merge(DefaultDelimiters())
	if merged.Interpolate == nil || merged.Escape == nil || merged.Evaluate == nil || merged.Comment == nil {
		t.Fatalf("merge left a nil pattern: %+v", merged)
	}
}

func TestNew_RejectsPatternWithoutCapture(t *testing.T) {
	_, err := New(Delimiters{Interpolate: regexp.MustCompile(`\{\{.+?\}\}`)}, PongoSyntax)
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseExpression(t *testing.T) {
	expr, filter, err := ParseExpression(" job.summary | mdin ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if expr != "job.summary" || filter != "mdin" {
		t.Fatalf("unexpected parse result %q %q", expr, filter)
	}
}
