package reconcile

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vango-dev/reflow/pkg/tree"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// extract descends one step from a mounted node to its child at k.
func extract(n vdom.Node, st any, res tree.Node, k vdom.Key) (vdom.Node, any, tree.Node, error) {
	switch n := n.(type) {
	case *vdom.Element:
		es, _ := st.(*elementState)
		er, _ := res.(*tree.Element)
		if es == nil || er == nil {
			return nil, nil, nil, addressError(k.String(), "element has no state")
		}
		e, ok := es.entries[k]
		if !ok {
			return nil, nil, nil, addressError(k.String(), fmt.Sprintf("no child %s under <%s>", k, n.Tag))
		}
		return e.node, e.state, er.Children[es.index[k]].Node, nil

	case *vdom.Component:
		cs, _ := st.(*componentState)
		if k != vdom.RenderKey || cs == nil {
			return nil, nil, nil, addressError(k.String(), "components only have a render child")
		}
		return cs.node, cs.state, res, nil

	default:
		return nil, nil, nil, addressError(k.String(), "text has no children")
	}
}

// inject is the inverse of extract. It returns a new state and result for
// the parent with the child at k replaced; the inputs are not modified.
func inject(n vdom.Node, st any, res tree.Node, k vdom.Key, childState any, childResult tree.Node) (any, tree.Node, error) {
	switch n := n.(type) {
	case *vdom.Element:
		es, _ := st.(*elementState)
		er, _ := res.(*tree.Element)
		if es == nil || er == nil {
			return nil, nil, addressError(k.String(), "element has no state")
		}
		e, ok := es.entries[k]
		if !ok {
			return nil, nil, addressError(k.String(), fmt.Sprintf("no child %s under <%s>", k, n.Tag))
		}
		entries := maps.Clone(es.entries)
		entries[k] = entry{node: e.node, state: childState}
		children := slices.Clone(er.Children)
		children[es.index[k]].Node = childResult
		return &elementState{keys: es.keys, entries: entries, index: es.index},
			&tree.Element{Tag: er.Tag, Props: er.Props, Children: children},
			nil

	case *vdom.Component:
		cs, _ := st.(*componentState)
		if k != vdom.RenderKey || cs == nil {
			return nil, nil, addressError(k.String(), "components only have a render child")
		}
		return &componentState{refs: cs.refs, node: cs.node, state: childState}, childResult, nil

	default:
		return nil, nil, addressError(k.String(), "text has no children")
	}
}
