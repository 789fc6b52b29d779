package demo

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/reconcile"
	"github.com/vango-dev/reflow/pkg/render"
	"github.com/vango-dev/reflow/pkg/tree"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// harness drives a scheduler the way a session does and checks that the
// ops of every pass carry the previous tree to the new one.
type harness struct {
	t     *testing.T
	sched *reconcile.Scheduler
	prev  tree.Node
	urls  []string
}

func start(t *testing.T, name, location string) *harness {
	t.Helper()
	app, err := Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{t: t}
	h.sched = reconcile.New(app.Root(),
		reconcile.WithLogger(quiet),
		reconcile.WithLocation(location),
		reconcile.WithNavigator(func(url string, _ bool) { h.urls = append(h.urls, url) }),
	)
	res, err := h.sched.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	h.prev = res
	t.Cleanup(func() { h.sched.Close() })
	return h
}

func encode(t *testing.T, n tree.Node) string {
	t.Helper()
	b, err := json.Marshal(tree.EncodeRoots(n))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func (h *harness) html() string {
	return render.HTML(h.prev)
}

func (h *harness) fire(typ string, payload map[string]any, path ...int) {
	h.t.Helper()
	if err := h.sched.Invoke(tree.Event{Type: typ, Path: path, Payload: payload}); err != nil {
		h.t.Fatalf("Invoke %s %v: %v", typ, path, err)
	}
	res, changed, err := h.sched.Rerender()
	if err != nil {
		h.t.Fatalf("Rerender: %v", err)
	}
	if !changed {
		return
	}
	applied, err := tree.Apply(h.prev, tree.Diff(h.prev, res))
	if err != nil {
		h.t.Fatalf("Apply: %v", err)
	}
	if got, want := encode(h.t, applied), encode(h.t, res); got != want {
		h.t.Fatalf("ops do not reproduce the tree:\n got %s\nwant %s", got, want)
	}
	h.prev = res
}

func (h *harness) contains(want ...string) {
	h.t.Helper()
	got := h.html()
	for _, w := range want {
		if !strings.Contains(got, w) {
			h.t.Errorf("missing %q in %s", w, got)
		}
	}
}

func TestLookup(t *testing.T) {
	if got := strings.Join(Names(), ","); got != "counter,nav,todo" {
		t.Errorf("Names() = %s", got)
	}

	_, err := Lookup("tetris")
	e, ok := err.(*errors.Error)
	if !ok || e.Code != "E180" {
		t.Fatalf("Lookup(tetris) = %v, want E180", err)
	}
	if !strings.Contains(e.Suggestion, "counter, nav, todo") {
		t.Errorf("suggestion = %q", e.Suggestion)
	}
}

func TestCounter(t *testing.T) {
	h := start(t, "counter", "/")
	h.contains(`<span class="count">0</span>`, `<button disabled data-onclick="">reset</button>`)

	h.fire("click", nil, 0, 2)
	h.fire("click", nil, 0, 2)
	h.contains(`<span class="count">2</span>`, `<button data-onclick="">reset</button>`)

	h.fire("click", nil, 0, 0)
	h.contains(`<span class="count">1</span>`)

	h.fire("click", nil, 0, 3)
	h.contains(`<span class="count">0</span>`, "disabled")
}

func TestTodo(t *testing.T) {
	h := start(t, "todo", "/")
	h.contains("0 left")

	add := func(title string) {
		h.fire("input", map[string]any{"value": title}, 0, 0, 0)
		h.fire("submit", nil, 0, 0)
	}
	add("milk")
	add("eggs")
	h.contains("<span>milk</span>", "<span>eggs</span>", "2 left")

	// Blank drafts are ignored.
	add("   ")
	if strings.Count(h.html(), "<li") != 2 {
		t.Fatalf("blank todo added: %s", h.html())
	}

	h.fire("click", nil, 0, 3)
	if strings.Index(h.html(), "eggs") > strings.Index(h.html(), "milk") {
		t.Fatalf("reverse did not reorder: %s", h.html())
	}

	// Toggle the first item, now eggs.
	h.fire("change", map[string]any{"checked": true}, 0, 1, 0, 0)
	h.contains(`<li class="done">`, "1 left")

	// Remove it.
	h.fire("click", nil, 0, 1, 0, 2)
	if strings.Contains(h.html(), "eggs") {
		t.Errorf("eggs not removed: %s", h.html())
	}
	h.contains("<span>milk</span>", "1 left")
}

func TestNav(t *testing.T) {
	h := start(t, "nav", "/about")
	h.contains("<h1>About</h1>", `<a class="active" href="/about"`)

	// nav > a(home) " " a(about) " " a(counter)
	h.fire("click", nil, 0, 0, 4)
	if len(h.urls) != 1 || h.urls[0] != "/counter" {
		t.Fatalf("navigated to %v", h.urls)
	}
	h.contains(`<span class="count">0</span>`, `<a class="active" href="/counter"`)

	h.fire("click", nil, 0, 1, 0, 2)
	h.contains(`<span class="count">1</span>`)
}

func TestNavNotFound(t *testing.T) {
	h := start(t, "nav", "/missing?x=1")
	h.contains("<h1>Not found</h1>", "<p>/missing</p>", `<a href="/" data-onclick="prevent">home</a>`)
}
