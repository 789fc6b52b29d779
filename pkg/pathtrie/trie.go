// Package pathtrie implements a sparse, ordered prefix tree keyed by paths.
//
// A path is a sequence of segments. Every path may carry a value; paths
// without a value only exist as interior branches and are pruned as soon as
// nothing below them holds a value. Iteration visits entries in ascending
// path order, so an ancestor is always visited before its descendants.
//
// The reconciler uses a Trie[vdom.Key, struct{}] as its dirty set and a
// Trie[vdom.Key, int] to count location subscriptions.
package pathtrie

import (
	"iter"
	"slices"
)

type node[K comparable, V any] struct {
	children map[K]*node[K, V]
	value    V
	has      bool
	count    int // entries in this subtree, self included
}

// Trie maps paths of K to values of V.
//
// A Trie is not safe for concurrent use.
type Trie[K comparable, V any] struct {
	root *node[K, V]
	cmp  func(a, b K) int
}

// New creates an empty Trie. cmp orders sibling segments during iteration.
func New[K comparable, V any](cmp func(a, b K) int) *Trie[K, V] {
	return &Trie[K, V]{root: &node[K, V]{}, cmp: cmp}
}

// Len returns the number of entries.
func (t *Trie[K, V]) Len() int {
	return t.root.count
}

// IsEmpty reports whether the trie holds no entries.
func (t *Trie[K, V]) IsEmpty() bool {
	return t.root.count == 0
}

// Clear removes every entry.
func (t *Trie[K, V]) Clear() {
	t.root = &node[K, V]{}
}

// Set stores value at path, replacing any previous value.
func (t *Trie[K, V]) Set(path []K, value V) {
	stack := make([]*node[K, V], 0, len(path)+1)
	n := t.root
	stack = append(stack, n)
	for _, seg := range path {
		child := n.children[seg]
		if child == nil {
			if n.children == nil {
				n.children = make(map[K]*node[K, V])
			}
			child = &node[K, V]{}
			n.children[seg] = child
		}
		n = child
		stack = append(stack, n)
	}

	n.value = value
	if n.has {
		return
	}
	n.has = true
	for _, s := range stack {
		s.count++
	}
}

// Insert marks path as present with the zero value.
func (t *Trie[K, V]) Insert(path []K) {
	var zero V
	t.Set(path, zero)
}

// Get returns the value stored at path.
func (t *Trie[K, V]) Get(path []K) (V, bool) {
	n := t.find(path)
	if n == nil || !n.has {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Contains reports whether path holds an entry.
func (t *Trie[K, V]) Contains(path []K) bool {
	n := t.find(path)
	return n != nil && n.has
}

// HasPrefix reports whether any entry lives at or below prefix.
func (t *Trie[K, V]) HasPrefix(prefix []K) bool {
	n := t.find(prefix)
	return n != nil && n.count > 0
}

func (t *Trie[K, V]) find(path []K) *node[K, V] {
	n := t.root
	for _, seg := range path {
		n = n.children[seg]
		if n == nil {
			return nil
		}
	}
	return n
}

// Delete removes the entry at path. Entries below path are kept.
// It returns false if path held no entry.
func (t *Trie[K, V]) Delete(path []K) bool {
	stack := make([]*node[K, V], 0, len(path)+1)
	n := t.root
	stack = append(stack, n)
	for _, seg := range path {
		n = n.children[seg]
		if n == nil {
			return false
		}
		stack = append(stack, n)
	}
	if !n.has {
		return false
	}

	var zero V
	n.value = zero
	n.has = false
	for _, s := range stack {
		s.count--
	}
	t.prune(stack, path)
	return true
}

// DeleteSubtree removes path and every entry below it, returning the removed
// entries (keyed by their full paths) as a new Trie. The cost is
// proportional to the length of prefix, not to the number of entries removed.
func (t *Trie[K, V]) DeleteSubtree(prefix []K) *Trie[K, V] {
	if len(prefix) == 0 {
		removed := &Trie[K, V]{root: t.root, cmp: t.cmp}
		t.root = &node[K, V]{}
		return removed
	}

	stack := make([]*node[K, V], 0, len(prefix))
	n := t.root
	for _, seg := range prefix[:len(prefix)-1] {
		stack = append(stack, n)
		n = n.children[seg]
		if n == nil {
			return New[K, V](t.cmp)
		}
	}
	stack = append(stack, n)

	last := prefix[len(prefix)-1]
	popped := n.children[last]
	if popped == nil {
		return New[K, V](t.cmp)
	}
	delete(n.children, last)
	for _, s := range stack {
		s.count -= popped.count
	}
	t.prune(stack, prefix[:len(prefix)-1])

	// Rebuild the chain from the root down to the popped branch.
	child := popped
	for i := len(prefix) - 1; i >= 0; i-- {
		parent := &node[K, V]{
			children: map[K]*node[K, V]{prefix[i]: child},
			count:    popped.count,
		}
		child = parent
	}
	return &Trie[K, V]{root: child, cmp: t.cmp}
}

// prune drops empty branches bottom-up. stack[i] is the node reached after
// path[:i]; stack[0] is the root and is never removed.
func (t *Trie[K, V]) prune(stack []*node[K, V], path []K) {
	for i := len(stack) - 1; i > 0; i-- {
		if stack[i].count > 0 {
			return
		}
		delete(stack[i-1].children, path[i-1])
	}
}

// All iterates over entries in ascending path order. Yielded paths are
// fresh slices owned by the caller. The trie must not be modified while
// the iteration is in progress; collect Paths first if you need to.
func (t *Trie[K, V]) All() iter.Seq2[[]K, V] {
	return func(yield func([]K, V) bool) {
		t.walk(t.root, nil, yield)
	}
}

func (t *Trie[K, V]) walk(n *node[K, V], path []K, yield func([]K, V) bool) bool {
	if n.has {
		p := make([]K, len(path))
		copy(p, path)
		if !yield(p, n.value) {
			return false
		}
	}
	if len(n.children) == 0 {
		return true
	}

	keys := make([]K, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, t.cmp)

	for _, k := range keys {
		if !t.walk(n.children[k], append(path, k), yield) {
			return false
		}
	}
	return true
}

// Paths returns every entry's path in ascending order.
func (t *Trie[K, V]) Paths() [][]K {
	paths := make([][]K, 0, t.Len())
	for p := range t.All() {
		paths = append(paths, p)
	}
	return paths
}
