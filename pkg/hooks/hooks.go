// Package hooks provides per-component persistent state for render
// functions.
//
// Every hook is built on a single primitive, Scope.NextRef, which hands out
// refs in call order. Hooks must therefore be called unconditionally and in
// the same order on every render of a component; calling a different number
// of hooks than the previous render is a fatal error.
//
// Example:
//
//	var Counter = vdom.Define("counter", func(s vdom.Scope, p vdom.Props) any {
//	    count, setCount := hooks.UseState(s, 0)
//	    inc := hooks.UseCallback(s, func(vdom.Event) {
//	        setCount.Update(func(n int) int { return n + 1 })
//	    }, setCount)
//	    return vdom.Div(
//	        vdom.Button(vdom.OnClick(inc), "+"),
//	        vdom.Textf(" count: %d", count),
//	    )
//	})
package hooks

import (
	"fmt"
	"sync"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// UseRef returns the component's next ref. The same *vdom.Ref is returned
// on every render.
func UseRef(s vdom.Scope) *vdom.Ref {
	return s.NextRef()
}

// slot returns the typed value stored in ref, creating it with init on
// first use.
func slot[T any](ref *vdom.Ref, hook string, init func() T) T {
	if !ref.Initialized() {
		v := init()
		ref.Init(v)
		return v
	}
	v, ok := ref.Value.(T)
	if !ok {
		panic(fmt.Sprintf("hooks: slot type mismatch for %s: have %T", hook, ref.Value))
	}
	return v
}

// Setter updates a state hook. Its identity is stable across renders, so
// it may be used as a memo dependency. Its methods are safe to call from
// any goroutine.
type Setter[T any] struct {
	cell  *stateCell[T]
	scope vdom.Scope
	path  vdom.Path
}

type stateCell[T any] struct {
	mu     sync.Mutex
	value  T
	setter *Setter[T]
}

func (c *stateCell[T]) load() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the state and schedules the owning component for rerender.
func (s *Setter[T]) Set(v T) {
	s.cell.mu.Lock()
	s.cell.value = v
	s.cell.mu.Unlock()
	s.scope.Invalidate(s.path)
}

// Update applies fn to the current state and schedules the owning
// component for rerender. Several updates before the next render each see
// the result of the previous one. fn runs with the state locked and must
// not call back into the same Setter.
func (s *Setter[T]) Update(fn func(T) T) {
	s.cell.mu.Lock()
	s.cell.value = fn(s.cell.value)
	s.cell.mu.Unlock()
	s.scope.Invalidate(s.path)
}

// Get returns the current state, including updates not yet rendered.
func (s *Setter[T]) Get() T {
	return s.cell.load()
}

// UseState returns the current state and its setter. init is used on the
// first render only.
func UseState[T any](s vdom.Scope, init T) (T, *Setter[T]) {
	return UseStateFunc(s, func() T { return init })
}

// UseStateFunc is like UseState but calls init to compute the initial
// value. init is called once.
func UseStateFunc[T any](s vdom.Scope, init func() T) (T, *Setter[T]) {
	ref := s.NextRef()
	cell := slot(ref, "State", func() *stateCell[T] {
		c := &stateCell[T]{value: init()}
		c.setter = &Setter[T]{cell: c, scope: s, path: s.Path().Clone()}
		return c
	})
	return cell.load(), cell.setter
}

type memoCell[T any] struct {
	deps  []any
	value T
}

// UseMemo returns fn's result, recomputing it only when deps differ from
// the previous render's deps by vdom.ShallowEqual.
func UseMemo[T any](s vdom.Scope, fn func() T, deps ...any) T {
	ref := s.NextRef()
	cell := slot(ref, "Memo", func() *memoCell[T] {
		return &memoCell[T]{deps: deps, value: fn()}
	})
	if !depsEqual(cell.deps, deps) {
		cell.deps = deps
		cell.value = fn()
	}
	return cell.value
}

// UseCallback returns a *vdom.Callback wrapping fn. The pointer stays the
// same while deps are unchanged, which keeps elements using it Equal
// across renders.
func UseCallback(s vdom.Scope, fn func(vdom.Event), deps ...any) *vdom.Callback {
	return UseMemo(s, func() *vdom.Callback { return vdom.NewCallback(fn) }, deps...)
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !vdom.ShallowEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// OnUnmount registers fn to run when the component is removed from the
// tree. The first registration wins; later renders do not replace it.
func OnUnmount(s vdom.Scope, fn func()) {
	ref := s.NextRef()
	if !ref.Initialized() {
		ref.Init(nil)
		ref.OnCleanup(fn)
	}
}

// UseLocation returns the current location and subscribes the component
// to location changes: it is rerendered whenever the location changes.
func UseLocation(s vdom.Scope) string {
	ref := s.NextRef()
	if !ref.Initialized() {
		ref.Init(nil)
		ref.OnCleanup(s.WatchLocation(s.Path().Clone()))
	}
	return s.Location()
}

// Navigate pushes url as the new location. It may be called from event
// handlers after the render that captured s has returned.
func Navigate(s vdom.Scope, url string) {
	s.Navigate(url, false)
}

// Replace replaces the current location with url.
func Replace(s vdom.Scope, url string) {
	s.Navigate(url, true)
}
