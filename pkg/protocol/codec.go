package protocol

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	rerrors "github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/tree"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// Node tags.
const (
	nodeText    byte = 0x00
	nodeElement byte = 0x01
)

// decodeError wraps err as a transcript decode error.
func decodeError(what string, err error) error {
	return rerrors.New("E121").WithDetail("decoding " + what).Wrap(err)
}

// EncodeNode appends n in binary form. Elements are written with their
// cleaned attributes in name order and their flattened children, so the
// encoding carries exactly what the client sees.
//
//	text:    [0x00][text: string]
//	element: [0x01][tag: string][attrCount: varint]([name][value])*
//	         [childCount: varint](node)*
func EncodeNode(e *Encoder, n tree.Node) {
	switch n := n.(type) {
	case tree.Text:
		e.WriteByte(nodeText)
		e.WriteString(string(n))
	case *tree.Element:
		e.WriteByte(nodeElement)
		e.WriteString(n.Tag)

		attrs := tree.CleanProps(n.Props)
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		slices.Sort(names)
		e.WriteInt(len(names))
		for _, name := range names {
			e.WriteString(name)
			e.WriteString(attrs[name])
		}

		children := tree.Children(n)
		e.WriteInt(len(children))
		for _, c := range children {
			EncodeNode(e, c)
		}
	default:
		panic(fmt.Sprintf("protocol: unknown node type %T", n))
	}
}

// DecodeNode reads a node written by EncodeNode. Decoded children are keyed
// by index; attribute values are strings.
func DecodeNode(d *Decoder) (tree.Node, error) {
	return decodeNode(d, 0)
}

func decodeNode(d *Decoder, depth int) (tree.Node, error) {
	if depth > MaxNodeDepth {
		return nil, ErrMaxDepthExceeded
	}
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case nodeText:
		s, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return tree.Text(s), nil
	case nodeElement:
	default:
		return nil, fmt.Errorf("protocol: unknown node tag 0x%02x", tag)
	}

	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	el := &tree.Element{Tag: name}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	el.Props = make(vdom.Props, count)
	for range count {
		k, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		el.Props[k] = v
	}

	count, err = d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		el.Children = make([]tree.Child, count)
	}
	for i := range count {
		child, err := decodeNode(d, depth+1)
		if err != nil {
			return nil, err
		}
		el.Children[i] = tree.Child{Key: indexKey(i), Node: child}
	}
	return el, nil
}

func indexKey(i int) vdom.Key {
	return vdom.Key{Kind: vdom.KeyExplicit, Name: strconv.Itoa(i)}
}

// EncodeTree encodes the top-level nodes of root as a FrameTree payload.
func EncodeTree(root tree.Node) []byte {
	e := NewEncoder()
	roots := tree.Roots(root)
	e.WriteInt(len(roots))
	for _, n := range roots {
		EncodeNode(e, n)
	}
	return e.Bytes()
}

// DecodeTree decodes a FrameTree payload into a fragment holding the
// top-level nodes.
func DecodeTree(payload []byte) (tree.Node, error) {
	d := NewDecoder(payload)
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, decodeError("tree", err)
	}
	root := &tree.Element{Props: vdom.Props{}}
	for i := range count {
		n, err := DecodeNode(d)
		if err != nil {
			return nil, decodeError("tree", err)
		}
		root.Children = append(root.Children, tree.Child{Key: indexKey(i), Node: n})
	}
	return root, nil
}

func encodePath(e *Encoder, path []int) {
	e.WriteInt(len(path))
	for _, i := range path {
		e.WriteInt(i)
	}
}

func decodePath(d *Decoder) ([]int, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count > MaxNodeDepth {
		return nil, ErrMaxDepthExceeded
	}
	path := make([]int, count)
	for i := range path {
		if path[i], err = d.ReadInt(); err != nil {
			return nil, err
		}
	}
	return path, nil
}

// EncodeOps encodes an op batch as a FrameOps payload.
//
//	[count: varint]([kind: byte][path](payload))*
//
// The payload depends on the kind: a node for create and replace, from
// and to for move, name and value for set, name for unset.
func EncodeOps(ops []tree.Op) []byte {
	e := NewEncoder()
	e.WriteInt(len(ops))
	for _, op := range ops {
		e.WriteByte(byte(op.Kind))
		encodePath(e, op.Path)
		switch op.Kind {
		case tree.OpCreate, tree.OpReplace:
			EncodeNode(e, op.Node)
		case tree.OpMove:
			e.WriteInt(op.From)
			e.WriteInt(op.To)
		case tree.OpSet:
			e.WriteString(op.Name)
			e.WriteString(op.Value)
		case tree.OpUnset:
			e.WriteString(op.Name)
		}
	}
	return e.Bytes()
}

// DecodeOps decodes a FrameOps payload.
func DecodeOps(payload []byte) ([]tree.Op, error) {
	d := NewDecoder(payload)
	ops, err := decodeOps(d)
	if err != nil {
		return nil, decodeError("ops", err)
	}
	return ops, nil
}

func decodeOps(d *Decoder) ([]tree.Op, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	ops := make([]tree.Op, 0, count)
	for range count {
		kind, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		op := tree.Op{Kind: tree.OpKind(kind)}
		if op.Path, err = decodePath(d); err != nil {
			return nil, err
		}

		switch op.Kind {
		case tree.OpCreate, tree.OpReplace:
			op.Node, err = DecodeNode(d)
		case tree.OpDelete:
		case tree.OpMove:
			if op.From, err = d.ReadInt(); err == nil {
				op.To, err = d.ReadInt()
			}
		case tree.OpSet:
			if op.Name, err = d.ReadString(); err == nil {
				op.Value, err = d.ReadString()
			}
		case tree.OpUnset:
			op.Name, err = d.ReadString()
		default:
			err = fmt.Errorf("protocol: unknown op kind 0x%02x", kind)
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// EncodeEvent encodes an inbound event as a FrameEvent payload. The
// payload map is carried as JSON.
//
//	[type: string][path][payload: len-prefixed JSON]
func EncodeEvent(ev tree.Event) ([]byte, error) {
	e := NewEncoder()
	e.WriteString(ev.Type)
	encodePath(e, ev.Path)
	var payload []byte
	if len(ev.Payload) > 0 {
		var err error
		if payload, err = json.Marshal(ev.Payload); err != nil {
			return nil, err
		}
	}
	e.WriteLenBytes(payload)
	return e.Bytes(), nil
}

// DecodeEvent decodes a FrameEvent payload.
func DecodeEvent(payload []byte) (tree.Event, error) {
	d := NewDecoder(payload)
	var ev tree.Event
	var err error
	if ev.Type, err = d.ReadString(); err != nil {
		return tree.Event{}, decodeError("event", err)
	}
	if ev.Path, err = decodePath(d); err != nil {
		return tree.Event{}, decodeError("event", err)
	}
	raw, err := d.ReadLenBytes()
	if err != nil {
		return tree.Event{}, decodeError("event", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ev.Payload); err != nil {
			return tree.Event{}, decodeError("event", err)
		}
	}
	return ev, nil
}

// Start is the FrameStart payload opening a transcript.
type Start struct {
	SessionID string
	Location  string
	Time      time.Time
}

// EncodeStart encodes a FrameStart payload.
//
//	[sessionID: string][location: string][unixMillis: int64]
func EncodeStart(s Start) []byte {
	e := NewEncoder()
	e.WriteString(s.SessionID)
	e.WriteString(s.Location)
	e.WriteInt64(s.Time.UnixMilli())
	return e.Bytes()
}

// DecodeStart decodes a FrameStart payload.
func DecodeStart(payload []byte) (Start, error) {
	d := NewDecoder(payload)
	var s Start
	var err error
	if s.SessionID, err = d.ReadString(); err != nil {
		return Start{}, decodeError("start", err)
	}
	if s.Location, err = d.ReadString(); err != nil {
		return Start{}, decodeError("start", err)
	}
	ms, err := d.ReadInt64()
	if err != nil {
		return Start{}, decodeError("start", err)
	}
	s.Time = time.UnixMilli(ms).UTC()
	return s, nil
}

// EncodeLocation encodes a FrameLocation payload.
func EncodeLocation(url string) []byte {
	e := NewEncoder()
	e.WriteString(url)
	return e.Bytes()
}

// DecodeLocation decodes a FrameLocation payload.
func DecodeLocation(payload []byte) (string, error) {
	url, err := NewDecoder(payload).ReadString()
	if err != nil {
		return "", decodeError("location", err)
	}
	return url, nil
}

// ErrorInfo is the FrameError payload.
type ErrorInfo struct {
	Code    string
	Message string
}

// EncodeError encodes err as a FrameError payload, keeping its code when
// it carries one.
func EncodeError(err error) []byte {
	e := NewEncoder()
	e.WriteString(rerrors.Code(err))
	e.WriteString(err.Error())
	return e.Bytes()
}

// DecodeError decodes a FrameError payload.
func DecodeError(payload []byte) (ErrorInfo, error) {
	d := NewDecoder(payload)
	var info ErrorInfo
	var err error
	if info.Code, err = d.ReadString(); err != nil {
		return ErrorInfo{}, decodeError("error", err)
	}
	if info.Message, err = d.ReadString(); err != nil {
		return ErrorInfo{}, decodeError("error", err)
	}
	return info, nil
}
