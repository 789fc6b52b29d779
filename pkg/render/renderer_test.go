package render

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/reflow/pkg/reconcile"
	"github.com/vango-dev/reflow/pkg/tree"
	. "github.com/vango-dev/reflow/pkg/vdom"
)

func result(t *testing.T, root any) tree.Node {
	t.Helper()
	s := reconcile.New(root, reconcile.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	res, err := s.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return res
}

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		root any
		want string
	}{
		{
			name: "text escaping",
			root: Div("<script>alert('x')</script>"),
			want: `<div>&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;</div>`,
		},
		{
			name: "attributes sorted and escaped",
			root: Input(Value(`a"b`), Type("text"), Disabled(true)),
			want: `<input disabled type="text" value="a&quot;b">`,
		},
		{
			name: "false attributes dropped",
			root: Input(Checked(false), Name("n")),
			want: `<input name="n">`,
		},
		{
			name: "fragments spliced and text merged",
			root: Div("a", Fragment("b", Span("c")), ""),
			want: `<div>ab<span>c</span></div>`,
		},
		{
			name: "key prop not rendered",
			root: Ul(Li(Keyed("a"), "x")),
			want: `<ul><li>x</li></ul>`,
		},
		{
			name: "handler announced with modifiers",
			root: Button(OnClick(PreventDefault(func() {})), "go"),
			want: `<button data-onclick="prevent">go</button>`,
		},
		{
			name: "raw text in script",
			root: Script("if (a < b) {}</script>"),
			want: `<script>if (a < b) {}<\/script></script>`,
		},
		{
			name: "top-level fragment",
			root: Fragment(P("1"), P("2")),
			want: `<p>1</p><p>2</p>`,
		},
		{
			name: "newline escaped in attribute",
			root: Div(TitleAttr("a\nb")),
			want: `<div title="a&#10;b"></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTML(result(t, tt.root)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(result(t, Div(P("x"), Span("y"))))
	if err != nil {
		t.Fatal(err)
	}
	want := "<div>\n  <p>\n    x\n  </p>\n  <span>y</span>\n</div>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderDocument(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(RendererConfig{Pretty: true})
	err := r.RenderDocument(&buf, result(t, Div(P("hi"))), Document{
		Title:     "Demo & co",
		SessionID: "abc 1",
	})
	if err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>Demo &amp; co</title>",
		`<script src="/_reflow.js?session=abc+1" defer></script>`,
		`<div id="reflow-root"><div><p>hi</p></div></div>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q:\n%s", want, html)
		}
	}
}

func TestRenderDocumentWithoutSession(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderDocument(&buf, result(t, P("x")), Document{MountID: "app"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script") {
		t.Errorf("static document should not load the client:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `<div id="app"><p>x</p></div>`) {
		t.Errorf("mount element missing:\n%s", buf.String())
	}
}

func TestEscape(t *testing.T) {
	if got := escapeHTML("a\tb"); got != "a\tb" {
		t.Errorf("escapeHTML kept tab: got %q", got)
	}
	if got := escapeAttr("a\tb"); got != "a&#9;b" {
		t.Errorf("escapeAttr(tab) = %q", got)
	}
	if got := escapeHTML("plain"); got != "plain" {
		t.Errorf("escapeHTML(plain) = %q", got)
	}
}
