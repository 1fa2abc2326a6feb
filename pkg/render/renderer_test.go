package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-resumegen/pkg/filters"
	"github.com/goliatone/go-resumegen/pkg/resume"
	"github.com/goliatone/go-resumegen/pkg/rewrite"
	themes "github.com/goliatone/go-resumegen/pkg/theme"
)

func renderString(t *testing.T, tpl string, doc any, overrides ...Overrides) string {
	t.Helper()

	out, err := Render(context.Background(), doc, tpl, "html", CSSInfo{}, NewOptions(overrides...))
	if err != nil {
		t.Fatalf("render %q: %v", tpl, err)
	}
	return out
}

func TestRender_FilterDispatch(t *testing.T) {
	doc := map[string]any{"name": "<b>"}

	if got := renderString(t, "<h1>{{ r.name|xml }}</h1>", doc); got != "<h1>&lt;b&gt;</h1>" {
		t.Fatalf("xml filter not applied, got %q", got)
	}
	if got := renderString(t, "{{ r.name|raw }}", doc); got != "<b>" {
		t.Fatalf("raw filter should not escape, got %q", got)
	}
}

func TestRender_DefaultFilterMatchesOut(t *testing.T) {
	doc := map[string]any{"name": "Ada <Lovelace>"}

	bare := renderString(t, "{{ r.name }}", doc)
	explicit := renderString(t, "{{ r.name|out }}", doc)
	if bare != explicit {
		t.Fatalf("default filter mismatch: %q vs %q", bare, explicit)
	}
	if bare != "Ada <Lovelace>" {
		t.Fatalf("out filter should be identity, got %q", bare)
	}
}

func TestRender_OverriddenOutFilter(t *testing.T) {
	custom := filters.New()
	custom.MustRegister(filters.Out, strings.ToUpper)

	got := renderString(t, "{{ r.name }}", map[string]any{"name": "ada"}, Overrides{Filters: custom})
	if got != "ADA" {
		t.Fatalf("expected overridden out filter, got %q", got)
	}
}

func TestRender_MarkdownFilters(t *testing.T) {
	doc := map[string]any{"summary": "Builds *engines*."}

	if got := renderString(t, "{{ r.summary|md }}", doc); got != "<p>Builds <em>engines</em>.</p>\n" {
		t.Fatalf("md filter mismatch, got %q", got)
	}
	if got := renderString(t, "<span>{{ r.summary|mdin }}</span>", doc); got != "<span>Builds <em>engines</em>.</span>" {
		t.Fatalf("mdin filter mismatch, got %q", got)
	}
}

func TestRender_EscapeDelimiterUsesAutoescape(t *testing.T) {
	got := renderString(t, "{{= r.name }}", map[string]any{"name": "<b>"})
	if got != "&lt;b&gt;" {
		t.Fatalf("expected escaped output, got %q", got)
	}
}

func TestRender_CommentsAndControlFlow(t *testing.T) {
	doc := map[string]any{
		"work": []any{
			map[string]any{"company": "Acme"},
			map[string]any{"company": "Globex"},
		},
	}
	tpl := "{# employers #}{% for job in r.work %}[{{ job.company|lower }}]{% endfor %}"

	if got := renderString(t, tpl, doc); got != "[acme][globex]" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRender_MissingFieldRendersEmpty(t *testing.T) {
	if got := renderString(t, "<{{ r.website|xml }}>", map[string]any{}); got != "<>" {
		t.Fatalf("expected empty output for missing field, got %q", got)
	}
}

func TestRender_UnknownFilterFailsBeforeEvaluation(t *testing.T) {
	stub := &recordingEvaluator{}
	p, err := NewPipeline(WithEvaluator(stub), WithOptions(NewOptions()))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	_, err = p.Render(context.Background(), Request{Template: "{{ x|bogus }}", Format: "html"})
	if !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("evaluator should not run for unknown filters, got %d calls", stub.calls)
	}
}

func TestRender_UnknownFilterAtEvaluationTime(t *testing.T) {
	tpl := `{{= filt.Apply("bogus", r.name) }}`
	_, err := Render(context.Background(), map[string]any{"name": "x"}, tpl, "html", CSSInfo{}, NewOptions())
	if !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestRender_MalformedExpression(t *testing.T) {
	_, err := Render(context.Background(), nil, "{{ a|xml|lower }}", "html", CSSInfo{}, NewOptions())
	if !errors.Is(err, ErrMalformedExpression) {
		t.Fatalf("expected ErrMalformedExpression, got %v", err)
	}
}

func TestRender_EvaluationErrorWrapsCause(t *testing.T) {
	_, err := Render(context.Background(), nil, "{% if %}broken{% endif %}", "txt", CSSInfo{}, NewOptions())

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Format != "txt" {
		t.Fatalf("expected format on error, got %q", evalErr.Format)
	}
	if errors.Unwrap(evalErr) == nil {
		t.Fatalf("expected wrapped cause")
	}
}

func TestRender_EvaluatorErrorIsWrapped(t *testing.T) {
	cause := errors.New("boom")
	p, err := NewPipeline(WithEvaluator(&recordingEvaluator{err: cause}), WithOptions(NewOptions()))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	_, err = p.Render(context.Background(), Request{Template: "x", Format: "html"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
}

func TestRender_WhitespacePreservedWhenFrozen(t *testing.T) {
	tpl := "{% spaceless %}<p>\n<b>{{ r.name }}</b>\n</p>{% endspaceless %}"
	doc := map[string]any{"name": "Ada"}

	frozen := renderString(t, tpl, doc)
	if frozen != "<p>\n<b>Ada</b>\n</p>" {
		t.Fatalf("expected newlines preserved, got %q", frozen)
	}

	thawed := renderString(t, tpl, doc, Overrides{FreezeBreaks: Bool(false)})
	if thawed != "<p><b>Ada</b></p>" {
		t.Fatalf("expected evaluator to collapse whitespace, got %q", thawed)
	}
}

func TestRender_StepOrdering(t *testing.T) {
	stub := &recordingEvaluator{}
	p, err := NewPipeline(WithEvaluator(stub), WithOptions(NewOptions()))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	out, err := p.Render(context.Background(), Request{Template: "a\n{{ r.name }}\r\nb", Format: "txt"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `a&newl;{{ filt.Apply("out", r.name)|safe }}&retn;&newl;b`
	if stub.template != want {
		t.Fatalf("evaluator saw unexpected template\nwant: %q\n got: %q", want, stub.template)
	}
	if out != "a\n{{ filt.Apply(\"out\", r.name)|safe }}\r\nb" {
		t.Fatalf("output not unfrozen: %q", out)
	}
}

func TestRender_CustomSentinels(t *testing.T) {
	out := renderString(t, "line1\nline2", nil, Overrides{NSym: "@@N@@", RSym: "@@R@@"})
	if out != "line1\nline2" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRender_ContextValues(t *testing.T) {
	p, err := NewPipeline(WithOptions(NewOptions(Overrides{HeadFragment: "<meta name=\"x\">"})))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	tpl := "{{ headFragment|raw }}|{{ cssInfo.file }}|{{ cssInfo.data }}|{{ theme.tokens.brand }}|{{ format }}"
	out, err := p.Render(context.Background(), Request{
		Template: tpl,
		Format:   "html",
		CSS:      CSSInfo{File: "style.css", Data: "body{}"},
		Theme: &theme.RendererConfig{
			Theme:  "modern",
			Tokens: map[string]string{"brand": "#123456"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<meta name=\"x\">|style.css|body{}|#123456|html"
	if out != want {
		t.Fatalf("context mismatch\nwant: %q\n got: %q", want, out)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Render(ctx, nil, "{{ r }}", "html", CSSInfo{}, NewOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRender_NilContext(t *testing.T) {
	p, err := NewPipeline()
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	var ctx context.Context
	_, err = p.Render(ctx, Request{Template: "{{ r }}"})
	if err == nil || !strings.Contains(err.Error(), "context is required") {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRender_ZeroOptionsUseDefaults(t *testing.T) {
	doc := map[string]any{"name": "Ada", "bio": "line1\nline2"}
	for _, opts := range []Options{{}, {FreezeBreaks: true}} {
		out, err := Render(context.Background(), doc, "<b>{{ r.name }}</b>|{{ r.bio|raw }}", "html", CSSInfo{}, opts)
		if err != nil {
			t.Fatalf("render with %+v: %v", opts, err)
		}
		if out != "<b>Ada</b>|line1\nline2" {
			t.Fatalf("unexpected output %q", out)
		}
	}
}

func TestPipeline_PartialOptionsKeepExplicitFields(t *testing.T) {
	custom := filters.New()
	custom.MustRegister("out", strings.ToUpper)

	p, err := NewPipeline(WithOptions(Options{Filters: custom, NSym: "@N@"}))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	got := p.Options()
	if got.Filters != custom || got.NSym != "@N@" {
		t.Fatalf("explicit fields replaced: %+v", got)
	}
	if got.RSym == "" || got.Delimiters.Interpolate == nil || got.Prettify.IndentSize == 0 || got.ThemeRelative != DefaultThemeRelative {
		t.Fatalf("unset fields not defaulted: %+v", got)
	}
	if got.FreezeBreaks {
		t.Fatalf("explicit false FreezeBreaks should be kept")
	}
}

func TestRender_DecodedJSONNumbers(t *testing.T) {
	doc, err := resume.Decode(strings.NewReader(`{"years":10,"n":2}`), resume.JSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := renderString(t, "{% if r.n == 2 %}two{% else %}nottwo{% endif %}|{{= r.years|add:1 }}", doc)
	if got != "two|11" {
		t.Fatalf("numbers not numeric in templates, got %q", got)
	}
}

func TestErrors_ReexportThemeSentinels(t *testing.T) {
	_, err := themes.Resolve("no-such-theme", t.TempDir())
	if !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if !errors.Is(fmt.Errorf("wrap: %w", themes.ErrFormatNotFound), ErrFormatNotFound) {
		t.Fatalf("ErrFormatNotFound should match the theme sentinel")
	}
}

func TestRender_ConcurrentDelimiters(t *testing.T) {
	angle := NewOptions(Overrides{Delimiters: rewrite.Delimiters{
		Interpolate: regexp.MustCompile(`<%=(.+?)%>`),
	}})
	curly := NewOptions()

	angleP, err := NewPipeline(WithOptions(angle))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	curlyP, err := NewPipeline(WithOptions(curly))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	doc := map[string]any{"name": "Ada"}
	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			out, err := angleP.Render(context.Background(), Request{Document: doc, Template: "<%= r.name|lower %>"})
			if err != nil || out != "ada" {
				errs <- errors.New("angle render: " + out)
			}
		}()
		go func() {
			defer wg.Done()
			out, err := curlyP.Render(context.Background(), Request{Document: doc, Template: "{{ r.name|lower }}"})
			if err != nil || out != "ada" {
				errs <- errors.New("curly render: " + out)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

type recordingEvaluator struct {
	mu       sync.Mutex
	calls    int
	template string
	err      error
}

func (r *recordingEvaluator) RenderString(templateContent string, _ any, _ ...io.Writer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.template = templateContent
	if r.err != nil {
		return "", r.err
	}
	return templateContent, nil
}

func (r *recordingEvaluator) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderString(name, data, out...)
}
