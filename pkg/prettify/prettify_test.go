package prettify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHTML_IndentsBlocksAndKeepsInline(t *testing.T) {
	src := "<html><body><div><p>Hello <strong>World</strong></p><pre>  keep\n   this</pre></div></body></html>"

	got, err := HTML(src, DefaultOptions())
	if err != nil {
		t.Fatalf("prettify: %v", err)
	}

	want := "<html>\n" +
		"  <body>\n" +
		"    <div>\n" +
		"      <p>\n" +
		"        Hello <strong>World</strong>\n" +
		"      </p>\n" +
		"      <pre>  keep\n   this</pre>\n" +
		"    </div>\n" +
		"  </body>\n" +
		"</html>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prettify mismatch (-want +got):\n%s", diff)
	}
}

func TestHTML_KeepsLineBreaksInText(t *testing.T) {
	got, err := HTML("<div><p>Line one\nLine   two\r\n\tLine three</p><p>a\nb</p></div>", DefaultOptions())
	if err != nil {
		t.Fatalf("prettify: %v", err)
	}
	want := "<div>\n" +
		"  <p>\n" +
		"    Line one\n" +
		"    Line two\n" +
		"    Line three\n" +
		"  </p>\n" +
		"  <p>\n" +
		"    a\n" +
		"    b\n" +
		"  </p>\n" +
		"</div>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prettify mismatch (-want +got):\n%s", diff)
	}
}

func TestHTML_CodeKeepsSpacing(t *testing.T) {
	got, err := HTML("<p>run <code>a   b</code> then  stop</p>", DefaultOptions())
	if err != nil {
		t.Fatalf("prettify: %v", err)
	}
	want := "<p>\n  run <code>a   b</code> then stop\n</p>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prettify mismatch (-want +got):\n%s", diff)
	}
}

func TestHTML_UnformattedOption(t *testing.T) {
	got, err := HTML("<div><section>inner</section></div>", Options{IndentSize: 4, Unformatted: []string{"section"}})
	if err != nil {
		t.Fatalf("prettify: %v", err)
	}
	want := "<div>\n    <section>inner</section>\n</div>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prettify mismatch (-want +got):\n%s", diff)
	}
}

func TestHTML_VoidAndDoctype(t *testing.T) {
	got, err := HTML("<!DOCTYPE html><head><meta charset=\"utf-8\"><link rel=\"stylesheet\" href=\"a.css\"></head>", DefaultOptions())
	if err != nil {
		t.Fatalf("prettify: %v", err)
	}
	want := "<!DOCTYPE html>\n<head>\n  <meta charset=\"utf-8\">\n  <link rel=\"stylesheet\" href=\"a.css\">\n</head>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prettify mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap(t *testing.T) {
	if diff := cmp.Diff([]string{"aaa bbb", "ccc"}, wrap("aaa bbb ccc", 7)); diff != "" {
		t.Fatalf("wrap mismatch (-want +got):\n%s", diff)
	}

	got := wrap(`<a title="x y z">long</a> tail`, 5)
	want := []string{`<a title="x y z">long</a>`, "tail"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrap split inside a tag (-want +got):\n%s", diff)
	}
}

func TestOptionsMerge(t *testing.T) {
	got := Options{MaxChar: 120}.Merge(DefaultOptions())
	want := Options{IndentSize: 2, Unformatted: []string{"em", "strong"}, MaxChar: 120}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}
