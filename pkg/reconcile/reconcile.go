package reconcile

import (
	"fmt"
	"maps"

	"github.com/vango-dev/reflow/pkg/tree"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// elementState is the retained state of an Element: one entry per child
// key, in child order.
type elementState struct {
	keys    []vdom.Key
	entries map[vdom.Key]entry
	index   map[vdom.Key]int // position of the child's result
}

type entry struct {
	node  vdom.Node
	state any
}

// componentState is the retained state of a Component activation.
type componentState struct {
	refs  []*vdom.Ref
	node  vdom.Node // the descriptor returned by the last render
	state any       // the descriptor's state
}

// render mounts n for the first time at c.path.
func (c *Context) render(n vdom.Node) (any, tree.Node) {
	switch n := n.(type) {
	case *vdom.Text:
		return nil, tree.Text(n.Content)
	case *vdom.Element:
		return c.rerenderElement(n, nil, nil)
	case *vdom.Component:
		return c.renderComponent(n, nil, nil)
	default:
		panic(fmt.Sprintf("reconcile: unknown node type %T", n))
	}
}

// rerender updates the mounted n in place. The previous state and result
// belong to a node compatible with n.
func (c *Context) rerender(n vdom.Node, st any, res tree.Node) (any, tree.Node) {
	switch n := n.(type) {
	case *vdom.Text:
		panic(fatal("E103", c.path.Clone(), ErrTextRerender))
	case *vdom.Element:
		prev, _ := st.(*elementState)
		prevResult, _ := res.(*tree.Element)
		return c.rerenderElement(n, prev, prevResult)
	case *vdom.Component:
		prev, _ := st.(*componentState)
		return c.renderComponent(n, prev, res)
	default:
		panic(fmt.Sprintf("reconcile: unknown node type %T", n))
	}
}

// unmount releases st, running ref cleanups bottom-up.
func (c *Context) unmount(n vdom.Node, st any) {
	switch n := n.(type) {
	case *vdom.Element:
		es, _ := st.(*elementState)
		if es == nil {
			return
		}
		for _, k := range es.keys {
			e := es.entries[k]
			c.unmount(e.node, e.state)
		}
	case *vdom.Component:
		cs, _ := st.(*componentState)
		if cs == nil {
			return
		}
		c.unmount(cs.node, cs.state)
		for _, r := range cs.refs {
			r.Cleanup()
		}
		c.logger.Debug("unmounted", "component", n.Def.Name(), "path", c.path)
	}
}

func (c *Context) rerenderElement(n *vdom.Element, prev *elementState, prevResult *tree.Element) (*elementState, tree.Node) {
	keys := vdom.ChildKeys(n.Children)
	next := &elementState{
		keys:    keys,
		entries: make(map[vdom.Key]entry, len(keys)),
		index:   make(map[vdom.Key]int, len(keys)),
	}
	children := make([]tree.Child, len(keys))

	for i, child := range n.Children {
		k := keys[i]

		var (
			old entry
			had bool
			cat = vdom.Incompatible
			st  any
			res tree.Node
		)
		if prev != nil {
			if old, had = prev.entries[k]; had {
				cat = vdom.Classify(child, old.node)
				st = old.state
				res = prevResult.Children[prev.index[k]].Node
			}
		}

		c.push(k)
		switch cat {
		case vdom.Equal:
		case vdom.Compatible:
			st, res = c.rerender(child, st, res)
		default:
			if had {
				c.unmount(old.node, old.state)
				c.purge(c.path)
			}
			st, res = c.render(child)
		}
		c.pop()

		next.entries[k] = entry{node: child, state: st}
		next.index[k] = i
		children[i] = tree.Child{Key: k, Node: res}
	}

	if prev != nil {
		for _, k := range prev.keys {
			if _, ok := next.entries[k]; ok {
				continue
			}
			old := prev.entries[k]
			c.push(k)
			c.unmount(old.node, old.state)
			c.purge(c.path)
			c.pop()
		}
	}

	return next, &tree.Element{
		Tag:      n.Tag,
		Props:    c.resultProps(n.Props),
		Children: children,
	}
}

func (c *Context) renderComponent(n *vdom.Component, prev *componentState, prevResult tree.Node) (*componentState, tree.Node) {
	path := c.path.Clone()
	c.clearMark(path)

	alloc := &refAllocator{}
	if prev != nil {
		alloc.refs, alloc.replay = prev.refs, true
	}
	s := &scope{ctx: c, path: path, alloc: alloc}
	out := n.Def.Render(s, n.ActivationProps())
	s.alloc = nil
	alloc.finish(path)
	desc := vdom.Coerce(out)

	var (
		st  any
		res tree.Node
	)
	c.push(vdom.RenderKey)
	if prev == nil {
		st, res = c.render(desc)
	} else {
		switch vdom.Classify(desc, prev.node) {
		case vdom.Equal:
			st, res = prev.state, prevResult
		case vdom.Compatible:
			st, res = c.rerender(desc, prev.state, prevResult)
		default:
			c.unmount(prev.node, prev.state)
			c.purge(c.path)
			st, res = c.render(desc)
		}
	}
	c.pop()

	return &componentState{refs: alloc.refs, node: desc, state: st}, res
}

// resultProps replaces callback values with Handlers bound to the current
// path. Props without callbacks are returned unchanged.
func (c *Context) resultProps(props vdom.Props) vdom.Props {
	var out vdom.Props
	for name, v := range props {
		var cb *vdom.Callback
		switch v := v.(type) {
		case *vdom.Callback:
			cb = v
		case func(vdom.Event), func():
			cb = vdom.ToCallback(v)
		default:
			continue
		}
		if out == nil {
			out = maps.Clone(props)
		}
		out[name] = &Handler{cb: cb, path: c.path.Clone()}
	}
	if out == nil {
		return props
	}
	return out
}
