package tree

import "github.com/vango-dev/reflow/pkg/vdom"

// Event is an inbound interaction addressed by index path into the
// flattened Result tree, as the client sees it.
type Event struct {
	Type    string
	Path    []int
	Payload map[string]any
}

// HandlerProp returns the prop name holding the handler for the event.
func (e Event) HandlerProp() string {
	return "on" + e.Type
}

// VDOM returns the event as delivered to handlers.
func (e Event) VDOM() vdom.Event {
	return vdom.Event{Type: e.Type, Payload: e.Payload}
}
