package vdom

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// KeyKind classifies how a child key was derived.
type KeyKind uint8

const (
	KeyText      KeyKind = iota + 1 // Text child, Name is the content
	KeyExplicit                     // Child with a "key" prop
	KeyElement                      // Unkeyed element, Name is the tag
	KeyComponent                    // Unkeyed component, Name is the definition name
	KeyRender                       // Link from a Component to its descriptor
)

var keyKindPrefix = [...]string{
	KeyText:      "t",
	KeyExplicit:  "k",
	KeyElement:   "e",
	KeyComponent: "c",
	KeyRender:    "r",
}

// Key identifies a child among its siblings. Index counts earlier siblings
// with the same Kind and Name, so keys are unique within a sibling group.
type Key struct {
	Kind  KeyKind
	Name  string
	Index int
}

// RenderKey is the only key a Component accepts.
var RenderKey = Key{Kind: KeyRender}

// String returns a compact, unambiguous representation of the key.
func (k Key) String() string {
	if k.Kind == KeyRender {
		return "render"
	}
	prefix := "?"
	if int(k.Kind) < len(keyKindPrefix) {
		prefix = keyKindPrefix[k.Kind]
	}
	return prefix + strconv.Quote(k.Name) + "#" + strconv.Itoa(k.Index)
}

// CompareKeys orders keys by kind, then name, then index.
func CompareKeys(a, b Key) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Path addresses a node from the root by the keys traversed to reach it.
// The empty path is the root.
type Path []Key

// String joins the keys with "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, k := range p {
		sb.WriteByte('/')
		sb.WriteString(k.String())
	}
	return sb.String()
}

// Append returns a new path with k added. p is not modified.
func (p Path) Append(k Key) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, k)
}

// Clone returns a copy of p.
func (p Path) Clone() Path {
	next := make(Path, len(p))
	copy(next, p)
	return next
}

// HasPrefix reports whether prefix is a (not necessarily proper) prefix of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, k := range prefix {
		if p[i] != k {
			return false
		}
	}
	return true
}

// ComparePaths orders paths lexicographically; a proper prefix sorts
// before its extensions.
func ComparePaths(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareKeys(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// baseKey returns the kind and name a child is keyed by, before
// disambiguation.
func baseKey(n Node) (KeyKind, string) {
	switch n := n.(type) {
	case *Text:
		return KeyText, n.Content
	case *Element:
		if k, ok := n.Props[KeyProp]; ok && k != nil {
			return KeyExplicit, fmt.Sprint(k)
		}
		return KeyElement, n.Tag
	case *Component:
		if k, ok := n.Props[KeyProp]; ok && k != nil {
			return KeyExplicit, fmt.Sprint(k)
		}
		return KeyComponent, n.Def.Name()
	default:
		panic(fmt.Sprintf("vdom: unknown node type %T", n))
	}
}

type baseKeyID struct {
	kind KeyKind
	name string
}

// ChildKeys derives the key of every child. Children with the same base
// key are numbered in order of appearance.
func ChildKeys(children []Node) []Key {
	keys := make([]Key, len(children))
	var seen map[baseKeyID]int
	for i, child := range children {
		kind, name := baseKey(child)
		id := baseKeyID{kind, name}
		if seen == nil {
			seen = make(map[baseKeyID]int, len(children))
		}
		keys[i] = Key{Kind: kind, Name: name, Index: seen[id]}
		seen[id]++
	}
	return keys
}
