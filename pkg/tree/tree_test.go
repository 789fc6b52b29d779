package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// h builds a Result element, deriving child keys the way the reconciler
// does.
func h(tag string, props vdom.Props, children ...Node) *Element {
	if props == nil {
		props = vdom.Props{}
	}
	el := &Element{Tag: tag, Props: props}
	seen := map[vdom.Key]int{}
	for _, c := range children {
		var k vdom.Key
		switch c := c.(type) {
		case Text:
			k = vdom.Key{Kind: vdom.KeyText, Name: string(c)}
		case *Element:
			if key, ok := c.Props["key"]; ok {
				k = vdom.Key{Kind: vdom.KeyExplicit, Name: fmt.Sprint(key)}
			} else {
				k = vdom.Key{Kind: vdom.KeyElement, Name: c.Tag}
			}
		}
		base := k
		k.Index = seen[base]
		seen[base]++
		el.Children = append(el.Children, Child{Key: k, Node: c})
	}
	return el
}

func keyed(tag, key string, children ...Node) *Element {
	return h(tag, vdom.Props{"key": key}, children...)
}

func opsJSON(t *testing.T, ops []Op) string {
	t.Helper()
	b, err := json.Marshal(ops)
	if err != nil {
		t.Fatalf("marshal ops: %v", err)
	}
	return string(b)
}

// checkApply verifies that applying Diff(prev, next) to prev yields next.
func checkApply(t *testing.T, prev, next Node) []Op {
	t.Helper()
	ops := Diff(prev, next)
	got, err := Apply(prev, ops)
	if err != nil {
		t.Fatalf("Apply: %v\nops: %s", err, opsJSON(t, ops))
	}
	if !reflect.DeepEqual(EncodeRoots(got), EncodeRoots(next)) {
		t.Fatalf("Apply result mismatch\ngot:  %v\nwant: %v\nops: %s",
			EncodeRoots(got), EncodeRoots(next), opsJSON(t, ops))
	}
	return ops
}

func TestCleanProps(t *testing.T) {
	cb := vdom.PreventDefault(func() {})
	got := CleanProps(vdom.Props{
		"key":      "k",
		"nil":      nil,
		"hidden":   false,
		"disabled": true,
		"onclick":  cb,
		"onfocus":  vdom.NewCallback(nil),
		"n":        3,
		"f":        1.5,
		"class":    "x",
	})
	want := map[string]string{
		"disabled": "",
		"onclick":  "prevent",
		"onfocus":  "",
		"n":        "3",
		"f":        "1.5",
		"class":    "x",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanProps() = %v, want %v", got, want)
	}
}

func TestFlattenAndMerge(t *testing.T) {
	root := h("div", nil,
		Text("a"),
		h("", nil, Text("b"), h("span", nil)),
		Text(""),
		h("", nil, Text("c")),
		Text("d"),
		h("", nil),
		Text(""),
	)

	got := Encode(root)
	want := []any{"div", map[string]string{}, "ab", []any{"span", map[string]string{}}, "cd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Encode() = %#v, want %#v", got, want)
	}

	empty := h("p", nil, Text(""), h("", nil, Text("")))
	if got := Children(empty); len(got) != 0 {
		t.Errorf("Children(empty) = %v, want none", got)
	}
}

func TestLookup(t *testing.T) {
	button := h("button", vdom.Props{"onclick": vdom.NewCallback(nil)}, Text("+"))
	root := h("", nil,
		h("div", nil, Text("x"), h("", nil, h("span", nil), button)),
		h("p", nil),
	)

	tests := []struct {
		path []int
		want Node
		ok   bool
	}{
		{[]int{0, 2}, button, true},
		{[]int{0, 2, 0}, Text("+"), true},
		{[]int{1}, root.Children[1].Node, true},
		{[]int{2}, nil, false},
		{[]int{0, 0, 0}, nil, false},
		{nil, nil, false},
	}
	for _, tt := range tests {
		got, ok := Lookup(root, tt.path)
		if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Lookup(%v) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDiffCounterReplacesText(t *testing.T) {
	minus := h("button", nil, Text("-"))
	plus := h("button", nil, Text("+"))
	prev := h("div", nil, minus, Text(" count: 0 "), plus)
	next := h("div", nil, minus, Text(" count: 2 "), plus)

	ops := checkApply(t, prev, next)
	if got, want := opsJSON(t, ops), `[["replace",0,1," count: 2 "]]`; got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestDiffKeyedListRemoval(t *testing.T) {
	prev := h("ul", nil, keyed("li", "a", Text("A")), keyed("li", "b", Text("B")), keyed("li", "c", Text("C")))
	next := h("ul", nil, keyed("li", "a", Text("A")), keyed("li", "c", Text("C")))

	ops := checkApply(t, prev, next)
	if got, want := opsJSON(t, ops), `[["delete",0,1]]`; got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestDiffMoveToFront(t *testing.T) {
	a, b, c := keyed("li", "a"), keyed("li", "b"), keyed("li", "c")
	prev := h("ul", nil, a, b, c)
	next := h("ul", nil, c, a, b)

	ops := checkApply(t, prev, next)
	if got, want := opsJSON(t, ops), `[["move",0,2,0]]`; got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestDiffProps(t *testing.T) {
	prev := h("input", vdom.Props{"type": "text", "value": "a", "disabled": true})
	next := h("input", vdom.Props{"type": "text", "value": "b", "placeholder": "p"})

	ops := checkApply(t, prev, next)
	want := `[["set",0,"placeholder","p"],["set",0,"value","b"],["unset",0,"disabled"]]`
	if got := opsJSON(t, ops); got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestDiffSharedSubtreeIsSkipped(t *testing.T) {
	shared := h("section", vdom.Props{"a": "1"}, Text("x"))
	prev := h("div", nil, shared)
	next := h("div", nil, shared)
	if ops := Diff(prev, next); len(ops) != 0 {
		t.Errorf("ops = %s, want none", opsJSON(t, ops))
	}
	if ops := Diff(prev, prev); len(ops) != 0 {
		t.Errorf("Diff(x, x) = %s, want none", opsJSON(t, ops))
	}
}

func TestDiffTagChangeReplaces(t *testing.T) {
	prev := h("div", nil, h("span", nil, Text("x")))
	next := h("div", nil, h("p", nil, Text("x")))

	ops := checkApply(t, prev, next)
	if got, want := opsJSON(t, ops), `[["replace",0,0,["p",{},"x"]]]`; got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestDiffCreateAndTrailingDeletes(t *testing.T) {
	prev := h("div", nil, keyed("i", "1"), keyed("i", "2"), keyed("i", "3"))
	next := h("div", nil, keyed("i", "0"), keyed("i", "1"))

	ops := checkApply(t, prev, next)
	want := `[["create",0,0,["i",{}]],["delete",0,2],["delete",0,2]]`
	if got := opsJSON(t, ops); got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestDiffRoundTrips(t *testing.T) {
	li := func(k string) *Element { return keyed("li", k, Text("item "+k)) }

	cases := []struct {
		name       string
		prev, next Node
	}{
		{"reverse", h("ul", nil, li("a"), li("b"), li("c"), li("d")), h("ul", nil, li("d"), li("c"), li("b"), li("a"))},
		{"interleave", h("ul", nil, li("a"), li("b"), li("c")), h("ul", nil, li("x"), li("c"), li("y"), li("a"))},
		{"fragments", h("", nil, Text("a"), h("", nil, Text("b"), h("hr", nil))), h("", nil, h("hr", nil), Text("ab"))},
		{"root tag change", h("div", nil), h("span", nil)},
		{"to empty", h("div", nil, li("a"), Text("t")), h("div", nil)},
		{"from empty", h("div", nil), h("div", nil, li("a"), Text("t"), li("b"))},
		{"nested", h("div", nil, h("p", vdom.Props{"class": "a"}, Text("one"), li("z"))),
			h("div", nil, h("p", vdom.Props{"class": "b"}, li("z"), Text("two")))},
		{"text runs", h("p", nil, Text("a"), Text("b"), h("br", nil), Text("c")),
			h("p", nil, Text("ab"), h("br", nil), Text("c"), Text("d"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkApply(t, tc.prev, tc.next)
		})
	}
}

func TestApplyRejectsBadPath(t *testing.T) {
	prev := h("div", nil)
	_, err := Apply(prev, []Op{{Kind: OpDelete, Path: []int{0, 5}}})
	if !errors.Is(err, ErrApply) {
		t.Errorf("Apply() error = %v, want ErrApply", err)
	}
}

func TestParseOpKind(t *testing.T) {
	for k := OpCreate; k <= OpUnset; k++ {
		got, ok := ParseOpKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseOpKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseOpKind("bogus"); ok {
		t.Error("ParseOpKind(bogus) succeeded")
	}
}
