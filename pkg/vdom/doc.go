// Package vdom provides the immutable node model for reflow.
//
// A UI is described by a tree of Nodes. There are exactly three node
// variants:
//
//   - *Text holds a literal string.
//   - *Element holds a tag, props and children. An Element with an empty
//     tag is a fragment: it groups children without a wrapper.
//   - *Component pairs a Definition (a render function with a stable
//     identity) with props and children.
//
// Nodes are plain data. Builders always return fresh values and With
// returns a modified copy, so a node that has been handed to the
// reconciler is never mutated.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    P("Content"),
//	    OnClick(handler),
//	)
//
// # Components
//
// Components are defined once and instantiated with props:
//
//	var Counter = vdom.Define("counter", func(s vdom.Scope, p vdom.Props) any {
//	    count, set := hooks.UseState(s, p.Int("start"))
//	    ...
//	})
//
//	Counter.New(vdom.Props{"start": 10})
//
// # Comparison
//
// Classify compares two nodes and returns Equal, Compatible or
// Incompatible. The reconciler uses the category to decide whether prior
// state is reused as is, recomputed in place, or discarded.
//
// # Keys
//
// ChildKeys derives a stable Key for every child of an element. Keys are
// unique among siblings and are what the reconciler, the dirty set and the
// differ use to match children across renders.
package vdom
