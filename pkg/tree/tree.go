// Package tree holds the output of reconciliation: a plain, immutable
// Result tree, and the differ that turns two consecutive Result trees into
// an ordered list of DOM edit operations.
//
// A Result tree mirrors the node tree with components resolved away.
// Fragments (elements with an empty tag) are kept so that child keys stay
// stable, but every consumer sees the flattened view: fragment children
// spliced into their parent and adjacent text runs merged, exactly as a
// browser parses the rendered HTML. Child indices in Op paths and event
// paths always refer to that flattened view.
package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// Node is a Result tree node: Text or *Element.
type Node interface {
	isNode()
}

// Text is a text result.
type Text string

func (Text) isNode() {}

// Element is an element result. An empty Tag marks a fragment.
type Element struct {
	Tag      string
	Props    vdom.Props
	Children []Child
}

func (*Element) isNode() {}

// IsFragment reports whether e groups children without a wrapper.
func (e *Element) IsFragment() bool {
	return e.Tag == ""
}

// Child is a keyed child of an Element.
type Child struct {
	Key  vdom.Key
	Node Node
}

// Handler is an event handler stored in a Result prop.
// *vdom.Callback implements it.
type Handler interface {
	HandleEvent(vdom.Event)
	Modifiers() string
}

// CleanProps converts props to the attribute strings sent to the client.
// The key prop, nil and false are dropped; true becomes "", handlers become
// their modifier list and everything else is formatted as a string.
func CleanProps(props vdom.Props) map[string]string {
	cleaned := make(map[string]string, len(props))
	for k, v := range props {
		if k == vdom.KeyProp {
			continue
		}
		switch val := v.(type) {
		case nil:
			continue
		case bool:
			if !val {
				continue
			}
			cleaned[k] = ""
		case Handler:
			cleaned[k] = val.Modifiers()
		default:
			cleaned[k] = propToString(v)
		}
	}
	return cleaned
}

// propToString converts a prop value to its attribute string.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// flatChild is a child in the flattened view. node is a Text or a
// non-fragment *Element.
type flatChild struct {
	key  string
	node Node
}

// flatten splices fragment children into the list, prefixing their keys
// with the fragment's key.
func flatten(dst []flatChild, children []Child, prefix string) []flatChild {
	for _, c := range children {
		key := prefix + "/" + c.Key.String()
		if el, ok := c.Node.(*Element); ok && el.IsFragment() {
			dst = flatten(dst, el.Children, key)
			continue
		}
		dst = append(dst, flatChild{key: key, node: c.Node})
	}
	return dst
}

// mergeText joins adjacent text children into one. A merged run is keyed
// by its content and the number of earlier runs with the same content.
// Runs that merge to the empty string are dropped.
func mergeText(children []flatChild) []flatChild {
	out := children[:0:0]
	var (
		run    strings.Builder
		inRun  bool
		counts map[string]int
	)
	flush := func() {
		if !inRun {
			return
		}
		inRun = false
		text := run.String()
		run.Reset()
		if text == "" {
			return
		}
		if counts == nil {
			counts = make(map[string]int)
		}
		out = append(out, flatChild{
			key:  "text" + strconv.Quote(text) + "#" + strconv.Itoa(counts[text]),
			node: Text(text),
		})
		counts[text]++
	}

	for _, c := range children {
		if t, ok := c.node.(Text); ok {
			run.WriteString(string(t))
			inRun = true
			continue
		}
		flush()
		out = append(out, c)
	}
	flush()
	return out
}

// visibleChildren returns the flattened, text-merged children of a list.
func visibleChildren(children []Child) []flatChild {
	return mergeText(flatten(nil, children, ""))
}

// rootChildren returns the flattened view of the mount container holding
// root.
func rootChildren(root Node) []flatChild {
	if root == nil {
		return nil
	}
	return visibleChildren([]Child{{Node: root}})
}

// Children returns the flattened, text-merged children of n, i.e. the
// nodes a browser sees. Text has no children.
func Children(n Node) []Node {
	el, ok := n.(*Element)
	if !ok {
		return nil
	}
	return nodesOf(visibleChildren(el.Children))
}

// Roots returns the flattened top-level nodes of a tree rendered into a
// mount container.
func Roots(root Node) []Node {
	return nodesOf(rootChildren(root))
}

func nodesOf(fc []flatChild) []Node {
	nodes := make([]Node, len(fc))
	for i, c := range fc {
		nodes[i] = c.node
	}
	return nodes
}

// Lookup resolves an index path, as used by Ops and events, against the
// flattened view of root inside its mount container.
func Lookup(root Node, path []int) (Node, bool) {
	if len(path) == 0 {
		return nil, false
	}
	children := rootChildren(root)
	var cur Node
	for _, i := range path {
		if i < 0 || i >= len(children) {
			return nil, false
		}
		cur = children[i].node
		el, ok := cur.(*Element)
		if !ok {
			children = nil
			continue
		}
		children = visibleChildren(el.Children)
	}
	return cur, true
}

// Encode converts n to its JSON wire form: a string for text, and
// [tag, {attributes}, ...children] for elements with children flattened.
// A fragment encodes with an empty tag.
func Encode(n Node) any {
	switch n := n.(type) {
	case Text:
		return string(n)
	case *Element:
		children := visibleChildren(n.Children)
		out := make([]any, 0, 2+len(children))
		out = append(out, n.Tag, CleanProps(n.Props))
		for _, c := range children {
			out = append(out, Encode(c.node))
		}
		return out
	default:
		panic(fmt.Sprintf("tree: unknown node type %T", n))
	}
}

// EncodeRoots encodes the flattened top-level nodes of root.
func EncodeRoots(root Node) []any {
	children := rootChildren(root)
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = Encode(c.node)
	}
	return out
}
