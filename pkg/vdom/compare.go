package vdom

import (
	"fmt"
	"reflect"
)

// Category is the result of comparing two nodes.
type Category uint8

const (
	// Incompatible nodes share no state: different variants, tags or
	// component definitions.
	Incompatible Category = iota
	// Compatible nodes can be updated in place.
	Compatible
	// Equal nodes produce the same output; prior state is reused as is.
	Equal
)

// String returns the string representation of the Category.
func (c Category) String() string {
	switch c {
	case Incompatible:
		return "incompatible"
	case Compatible:
		return "compatible"
	case Equal:
		return "equal"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// Classify compares next against prev.
func Classify(next, prev Node) Category {
	switch n := next.(type) {
	case *Text:
		p, ok := prev.(*Text)
		if ok && (n == p || n.Content == p.Content) {
			return Equal
		}
		return Incompatible

	case *Element:
		p, ok := prev.(*Element)
		if !ok || n.Tag != p.Tag {
			return Incompatible
		}
		if n == p || (PropsEqual(n.Props, p.Props) && ChildrenEqual(n.Children, p.Children)) {
			return Equal
		}
		return Compatible

	case *Component:
		p, ok := prev.(*Component)
		if !ok || n.Def != p.Def {
			return Incompatible
		}
		if n == p || (PropsEqual(n.Props, p.Props) && ChildrenEqual(n.Children, p.Children)) {
			return Equal
		}
		return Compatible

	default:
		panic(fmt.Sprintf("vdom: unknown node type %T", next))
	}
}

// ChildrenEqual reports whether both lists have the same length and are
// pairwise Equal.
func ChildrenEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if Classify(a[i], b[i]) != Equal {
			return false
		}
	}
	return true
}

// PropsEqual reports whether both maps hold the same keys with
// ShallowEqual values.
func PropsEqual(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ShallowEqual(av, bv) {
			return false
		}
	}
	return true
}

// ShallowEqual compares two prop values.
//
// Scalars compare by value and pointers by identity. Function values are
// never equal, even to themselves; wrap handlers in a *Callback to give
// them a comparable identity. Slices, maps and other non-comparable values
// fall back to reflect.DeepEqual.
func ShallowEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Callback:
		bv, ok := b.(*Callback)
		return ok && av == bv
	case nil:
		return b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return false
	}
	if ta.Comparable() {
		if eq, ok := safeEqual(a, b); ok {
			return eq
		}
	}
	return reflect.DeepEqual(a, b)
}

// safeEqual compares with ==, which can still panic for comparable types
// holding non-comparable dynamic values (an interface field containing a
// slice, for example).
func safeEqual(a, b any) (eq, ok bool) {
	defer func() {
		if recover() != nil {
			eq, ok = false, false
		}
	}()
	return a == b, true
}
