package vdom

import (
	"fmt"
	"maps"
	"strconv"
)

// Kind is the node variant discriminator.
type Kind uint8

const (
	KindText      Kind = iota + 1 // Literal text
	KindElement                   // <div>, <button>, or a fragment
	KindComponent                 // Render function with props
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Node is an immutable description of one point in the UI tree.
//
// The set of implementations is closed: *Text, *Element and *Component.
type Node interface {
	Kind() Kind
	node() // marker method restricting implementations to this package
}

// Props holds attributes and event handlers.
type Props map[string]any

// ChildrenProp is the reserved prop under which a Component receives its
// positional children.
const ChildrenProp = "children"

// KeyProp is the prop that gives a child an explicit reconciliation key.
const KeyProp = "key"

// String returns the prop as a string, or "" if it is not one.
func (p Props) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Int returns the prop as an int. Strings are parsed; anything else is 0.
func (p Props) Int(name string) int {
	switch v := p[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Bool returns the prop as a bool.
func (p Props) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

// Children returns the positional children passed to a Component.
func (p Props) Children() []Node {
	c, _ := p[ChildrenProp].([]Node)
	return c
}

// Text is a literal text node.
type Text struct {
	Content string
}

// Kind implements Node.
func (*Text) Kind() Kind { return KindText }
func (*Text) node()      {}

// Element is a tagged element or, when Tag is empty, a fragment.
type Element struct {
	Tag      string
	Props    Props
	Children []Node
}

// Kind implements Node.
func (*Element) Kind() Kind { return KindElement }
func (*Element) node()      {}

// IsFragment reports whether the element is an untagged grouping.
func (e *Element) IsFragment() bool {
	return e.Tag == ""
}

// With returns a copy of the element with the given arguments applied on
// top of its props and children. The receiver is not modified.
func (e *Element) With(args ...any) *Element {
	next := &Element{
		Tag:      e.Tag,
		Props:    maps.Clone(e.Props),
		Children: append([]Node(nil), e.Children...),
	}
	if next.Props == nil {
		next.Props = make(Props)
	}
	applyArgs(next, args)
	return next
}

// RenderFunc produces a description for a Component. The returned value is
// coerced with Coerce, so a render function may return a Node, a string,
// nil, a slice of children or any printable value.
type RenderFunc func(s Scope, props Props) any

// Definition is a named render function with a stable identity. Two
// Components are only ever compatible when they share the same *Definition.
type Definition struct {
	name   string
	render RenderFunc
}

// Define creates a component definition. Call it once, at package level or
// during setup, and reuse the result: a Definition created inside a render
// function is a new identity on every render.
func Define(name string, render RenderFunc) *Definition {
	if render == nil {
		panic("vdom: Define called with nil render function")
	}
	return &Definition{name: name, render: render}
}

// Name returns the definition's name.
func (d *Definition) Name() string {
	return d.name
}

// Render invokes the render function.
func (d *Definition) Render(s Scope, props Props) any {
	return d.render(s, props)
}

// New creates a Component node. children are coerced like element children.
func (d *Definition) New(props Props, children ...any) *Component {
	if _, ok := props[ChildrenProp]; ok {
		panic(fmt.Sprintf("vdom: component %q: %q is a reserved prop", d.name, ChildrenProp))
	}
	c := &Component{Def: d, Props: maps.Clone(props)}
	if c.Props == nil {
		c.Props = make(Props)
	}
	for _, child := range children {
		c.Children = appendChild(c.Children, child)
	}
	return c
}

// Component is an instance of a Definition with props and children.
type Component struct {
	Def      *Definition
	Props    Props
	Children []Node
}

// Kind implements Node.
func (*Component) Kind() Kind { return KindComponent }
func (*Component) node()      {}

// ActivationProps returns the props handed to the render function: the
// component's props plus, when it has any, its children under
// ChildrenProp.
func (c *Component) ActivationProps() Props {
	if len(c.Children) == 0 {
		return c.Props
	}
	props := make(Props, len(c.Props)+1)
	maps.Copy(props, c.Props)
	props[ChildrenProp] = c.Children
	return props
}
