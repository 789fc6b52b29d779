package tree

import (
	"maps"
	"slices"
)

// Diff returns the operations that transform the client's copy of prev
// into next. Both trees are treated as the content of a mount container,
// so the first path index selects a top-level node.
//
// Children are matched by flattened key. A new child with no compatible
// old counterpart is created (or replaces an old child that is being
// dropped at the same position); a matched child that is out of place is
// moved, never recreated. Elements shared by pointer between the two trees
// are not descended into.
func Diff(prev, next Node) []Op {
	var d differ
	d.children(nil, rootChildren(prev), rootChildren(next))
	return d.ops
}

type differ struct {
	ops []Op
}

func (d *differ) emit(op Op) {
	d.ops = append(d.ops, op)
}

func (d *differ) children(path []int, oldC, newC []flatChild) {
	old := slices.Clone(oldC)
	newByKey := make(map[string]Node, len(newC))
	for _, c := range newC {
		newByKey[c.key] = c.node
	}

	oldI := 0
	deletes := 0

	for newI, nc := range newC {
		// Skip old children at the cursor that no new child can reuse.
		for oldI < len(old) {
			n, ok := newByKey[old[oldI].key]
			if ok && diffable(old[oldI].node, n) {
				break
			}
			deletes++
			oldI++
		}

		curI := -1
		for i := oldI; i < len(old); i++ {
			if old[i].key == nc.key {
				if diffable(old[i].node, nc.node) {
					curI = i
				}
				break
			}
		}

		if curI < 0 {
			kind := OpCreate
			if deletes > 0 {
				kind = OpReplace
				deletes--
			}
			d.emit(Op{Kind: kind, Path: childPath(path, newI), Node: nc.node})
			continue
		}

		for ; deletes > 0; deletes-- {
			d.emit(Op{Kind: OpDelete, Path: childPath(path, newI)})
		}

		if curI > oldI {
			d.emit(Op{Kind: OpMove, Path: slices.Clone(path), From: newI + (curI - oldI), To: newI})
			moved := old[curI]
			copy(old[oldI+1:curI+1], old[oldI:curI])
			old[oldI] = moved
		}

		oldEl, ok := old[oldI].node.(*Element)
		newEl, _ := nc.node.(*Element)
		if ok && newEl != nil && oldEl != newEl {
			p := childPath(path, newI)
			d.props(p, oldEl, newEl)
			d.children(p, visibleChildren(oldEl.Children), visibleChildren(newEl.Children))
		}

		oldI++
	}

	for range deletes + len(old) - oldI {
		d.emit(Op{Kind: OpDelete, Path: childPath(path, len(newC))})
	}
}

func (d *differ) props(path []int, oldEl, newEl *Element) {
	oldProps := CleanProps(oldEl.Props)
	newProps := CleanProps(newEl.Props)

	for _, name := range slices.Sorted(maps.Keys(newProps)) {
		value := newProps[name]
		if prev, ok := oldProps[name]; !ok || prev != value {
			d.emit(Op{Kind: OpSet, Path: slices.Clone(path), Name: name, Value: value})
		}
		delete(oldProps, name)
	}
	for _, name := range slices.Sorted(maps.Keys(oldProps)) {
		d.emit(Op{Kind: OpUnset, Path: slices.Clone(path), Name: name})
	}
}

// diffable reports whether prev can be updated in place to become next.
func diffable(prev, next Node) bool {
	switch n := next.(type) {
	case Text:
		p, ok := prev.(Text)
		return ok && p == n
	case *Element:
		p, ok := prev.(*Element)
		return ok && p.Tag == n.Tag
	}
	return false
}

func childPath(parent []int, i int) []int {
	p := make([]int, len(parent)+1)
	copy(p, parent)
	p[len(parent)] = i
	return p
}
