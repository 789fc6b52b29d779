package vdom

import (
	"fmt"
	"reflect"
)

// Coerce converts an arbitrary value into a Node:
//
//   - a Node is returned unchanged (a nil *Text, *Element or *Component
//     becomes an empty fragment)
//   - a string becomes a Text node
//   - nil and false become an empty fragment
//   - a slice or array becomes a fragment of its coerced elements
//   - anything else becomes a Text node of its %v representation
func Coerce(v any) Node {
	switch v := v.(type) {
	case nil:
		return Fragment()
	case *Text:
		if v == nil {
			return Fragment()
		}
		return v
	case *Element:
		if v == nil {
			return Fragment()
		}
		return v
	case *Component:
		if v == nil {
			return Fragment()
		}
		return v
	case string:
		return &Text{Content: v}
	case bool:
		if !v {
			return Fragment()
		}
		return &Text{Content: "true"}
	case []Node:
		return &Element{Props: Props{}, Children: appendChild(nil, v)}
	case []any:
		f := &Element{Props: Props{}}
		for _, child := range v {
			f.Children = appendChild(f.Children, child)
		}
		return f
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		f := &Element{Props: Props{}, Children: make([]Node, 0, rv.Len())}
		for i := range rv.Len() {
			f.Children = append(f.Children, Coerce(rv.Index(i).Interface()))
		}
		return f
	}
	return &Text{Content: fmt.Sprint(v)}
}

// appendChild appends v as a child. A []Node is spread into individual
// children; everything else is coerced to a single child.
func appendChild(children []Node, v any) []Node {
	switch v := v.(type) {
	case []Node:
		for _, child := range v {
			children = append(children, Coerce(child))
		}
		return children
	default:
		return append(children, Coerce(v))
	}
}
