package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// OpKind is the type of edit operation.
type OpKind uint8

const (
	OpCreate  OpKind = 0x01 // Insert a node at Path
	OpReplace OpKind = 0x02 // Replace the node at Path
	OpDelete  OpKind = 0x03 // Remove the node at Path
	OpMove    OpKind = 0x04 // Move child From to To under the parent at Path
	OpSet     OpKind = 0x05 // Set attribute Name to Value on the node at Path
	OpUnset   OpKind = 0x06 // Remove attribute Name from the node at Path
)

// String returns the wire name of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	case OpMove:
		return "move"
	case OpSet:
		return "set"
	case OpUnset:
		return "unset"
	default:
		return "unknown"
	}
}

// ParseOpKind returns the OpKind for a wire name.
func ParseOpKind(s string) (OpKind, bool) {
	for k := OpCreate; k <= OpUnset; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Op is a single edit operation.
//
// For create, replace and delete, Path addresses the affected position:
// the parent's path followed by the child index. For move, Path is the
// parent's path. For set and unset, Path addresses the element itself.
type Op struct {
	Kind  OpKind
	Path  []int
	Node  Node   // create, replace
	Name  string // set, unset
	Value string // set
	From  int    // move
	To    int    // move
}

// MarshalJSON encodes the op in wire form:
//
//	["create", ...path, node]
//	["replace", ...path, node]
//	["delete", ...path]
//	["move", ...parentPath, from, to]
//	["set", ...path, name, value]
//	["unset", ...path, name]
func (op Op) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(op.Path)+3)
	out = append(out, op.Kind.String())
	for _, i := range op.Path {
		out = append(out, i)
	}
	switch op.Kind {
	case OpCreate, OpReplace:
		out = append(out, Encode(op.Node))
	case OpMove:
		out = append(out, op.From, op.To)
	case OpSet:
		out = append(out, op.Name, op.Value)
	case OpUnset:
		out = append(out, op.Name)
	}
	return json.Marshal(out)
}

// ErrApply is returned by Apply when an op does not fit the tree.
var ErrApply = errors.New("tree: op does not apply")

// mnode is the mutable flattened model Apply edits, standing in for the
// client's DOM.
type mnode struct {
	text     string
	isText   bool
	tag      string
	attrs    map[string]string
	children []*mnode
}

func toModel(n Node) *mnode {
	switch n := n.(type) {
	case Text:
		return &mnode{text: string(n), isText: true}
	case *Element:
		m := &mnode{tag: n.Tag, attrs: CleanProps(n.Props)}
		for _, c := range visibleChildren(n.Children) {
			m.children = append(m.children, toModel(c.node))
		}
		return m
	default:
		panic(fmt.Sprintf("tree: unknown node type %T", n))
	}
}

func (m *mnode) toNode() Node {
	if m.isText {
		return Text(m.text)
	}
	el := &Element{Tag: m.tag, Props: make(vdom.Props, len(m.attrs))}
	for k, v := range m.attrs {
		el.Props[k] = v
	}
	for i, c := range m.children {
		el.Children = append(el.Children, Child{
			Key:  vdom.Key{Kind: vdom.KeyExplicit, Name: strconv.Itoa(i)},
			Node: c.toNode(),
		})
	}
	return el
}

// Apply replays ops against prev the way the client does and returns the
// resulting tree as a fragment holding the top-level nodes. Applying
// Diff(prev, next) to prev yields a tree whose EncodeRoots equals
// EncodeRoots(next).
func Apply(prev Node, ops []Op) (Node, error) {
	mount := &mnode{}
	for _, c := range rootChildren(prev) {
		mount.children = append(mount.children, toModel(c.node))
	}

	for i, op := range ops {
		if err := applyOp(mount, op); err != nil {
			return nil, fmt.Errorf("op %d (%s %v): %w", i, op.Kind, op.Path, err)
		}
	}

	root := &Element{Props: vdom.Props{}}
	for i, c := range mount.children {
		root.Children = append(root.Children, Child{
			Key:  vdom.Key{Kind: vdom.KeyExplicit, Name: strconv.Itoa(i)},
			Node: c.toNode(),
		})
	}
	return root, nil
}

func resolve(mount *mnode, path []int) (*mnode, error) {
	n := mount
	for _, i := range path {
		if n.isText || i < 0 || i >= len(n.children) {
			return nil, ErrApply
		}
		n = n.children[i]
	}
	return n, nil
}

func applyOp(mount *mnode, op Op) error {
	if op.Kind == OpMove {
		parent, err := resolve(mount, op.Path)
		if err != nil {
			return err
		}
		if parent.isText || op.From < 0 || op.From >= len(parent.children) ||
			op.To < 0 || op.To >= len(parent.children) {
			return ErrApply
		}
		n := parent.children[op.From]
		parent.children = append(parent.children[:op.From], parent.children[op.From+1:]...)
		parent.children = append(parent.children[:op.To], append([]*mnode{n}, parent.children[op.To:]...)...)
		return nil
	}

	if len(op.Path) == 0 {
		return ErrApply
	}

	switch op.Kind {
	case OpSet, OpUnset:
		n, err := resolve(mount, op.Path)
		if err != nil {
			return err
		}
		if n.isText {
			return ErrApply
		}
		if op.Kind == OpSet {
			if n.attrs == nil {
				n.attrs = make(map[string]string)
			}
			n.attrs[op.Name] = op.Value
		} else {
			delete(n.attrs, op.Name)
		}
		return nil
	}

	parent, err := resolve(mount, op.Path[:len(op.Path)-1])
	if err != nil || parent.isText {
		return ErrApply
	}
	i := op.Path[len(op.Path)-1]

	switch op.Kind {
	case OpCreate:
		if i < 0 || i > len(parent.children) {
			return ErrApply
		}
		n := toModel(op.Node)
		parent.children = append(parent.children[:i], append([]*mnode{n}, parent.children[i:]...)...)
	case OpReplace:
		if i < 0 || i >= len(parent.children) {
			return ErrApply
		}
		parent.children[i] = toModel(op.Node)
	case OpDelete:
		if i < 0 || i >= len(parent.children) {
			return ErrApply
		}
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	default:
		return ErrApply
	}
	return nil
}
