package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	rerrors "github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/tree"
)

// MaxEventSize caps an inbound event message.
const MaxEventSize = 64 * 1024

// ErrMalformedEvent is wrapped by every ParseEvent failure.
var ErrMalformedEvent = errors.New("protocol: malformed event")

func malformed(detail string) error {
	return rerrors.New("E120").WithDetail(detail).Wrap(ErrMalformedEvent)
}

// ParseEvent decodes a client event message:
//
//	[eventType, ...path, payload]
//
// eventType is a string and path a list of non-negative integers. payload
// is an optional trailing object.
func ParseEvent(data []byte) (tree.Event, error) {
	if len(data) > MaxEventSize {
		return tree.Event{}, malformed(fmt.Sprintf("message of %d bytes", len(data)))
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return tree.Event{}, malformed("not a JSON array")
	}
	if len(parts) == 0 {
		return tree.Event{}, malformed("empty message")
	}

	var ev tree.Event
	if err := json.Unmarshal(parts[0], &ev.Type); err != nil || ev.Type == "" {
		return tree.Event{}, malformed("event type must be a non-empty string")
	}
	parts = parts[1:]

	if n := len(parts); n > 0 && bytes.HasPrefix(bytes.TrimSpace(parts[n-1]), []byte("{")) {
		if err := json.Unmarshal(parts[n-1], &ev.Payload); err != nil {
			return tree.Event{}, malformed("invalid payload")
		}
		parts = parts[:n-1]
	}

	if len(parts) > MaxNodeDepth {
		return tree.Event{}, malformed("path too deep")
	}
	ev.Path = make([]int, len(parts))
	for i, raw := range parts {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return tree.Event{}, malformed("path elements must be numbers")
		}
		if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return tree.Event{}, malformed(fmt.Sprintf("invalid path index %v", f))
		}
		ev.Path[i] = int(f)
	}
	return ev, nil
}

// Action is a browser instruction sent alongside ops.
type Action struct {
	Name string
	URL  string
}

// Action names.
const (
	ActionPushURL    = "push_url"
	ActionReplaceURL = "replace_url"
)

// PushURL returns an action adding url to the browser history.
func PushURL(url string) Action {
	return Action{Name: ActionPushURL, URL: url}
}

// ReplaceURL returns an action replacing the current history entry.
func ReplaceURL(url string) Action {
	return Action{Name: ActionReplaceURL, URL: url}
}

// MarshalJSON encodes the action as [name, url].
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{a.Name, a.URL})
}

// Message is one server to client batch: the ops of a pass followed by
// any actions. It encodes as a flat JSON array, e.g.
//
//	[["replace",0,1," count: 2 "],["push_url","/about"]]
type Message struct {
	Ops     []tree.Op
	Actions []Action
}

// Empty reports whether the message carries nothing.
func (m Message) Empty() bool {
	return len(m.Ops) == 0 && len(m.Actions) == 0
}

// MarshalJSON encodes the message as a single array.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(m.Ops)+len(m.Actions))
	for _, op := range m.Ops {
		out = append(out, op)
	}
	for _, a := range m.Actions {
		out = append(out, a)
	}
	return json.Marshal(out)
}
