package reconcile

import "github.com/vango-dev/reflow/pkg/vdom"

// Handler is the Result-tree form of an event callback. It remembers the
// path of the Element it was rendered on.
type Handler struct {
	cb   *vdom.Callback
	path vdom.Path
}

// HandleEvent runs the callback.
func (h *Handler) HandleEvent(e vdom.Event) {
	h.cb.HandleEvent(e)
}

// Modifiers returns the client-side modifiers, see vdom.Callback.
func (h *Handler) Modifiers() string {
	return h.cb.Modifiers()
}

// Path returns the key path of the Element carrying the handler.
func (h *Handler) Path() vdom.Path {
	return h.path
}
