package vdom

import (
	"fmt"
	"strings"
)

// Event is delivered to a handler when the client reports an interaction.
type Event struct {
	// Type is the DOM event type without the "on" prefix, e.g. "click".
	Type string
	// Payload carries event details sent by the client, such as "value"
	// for input events or "key" for keyboard events.
	Payload map[string]any
}

// String returns the payload entry as a string, or "" if absent.
func (e Event) String(name string) string {
	switch v := e.Payload[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Value returns the "value" payload entry.
func (e Event) Value() string {
	return e.String("value")
}

// Bool returns the payload entry as a bool.
func (e Event) Bool(name string) bool {
	b, _ := e.Payload[name].(bool)
	return b
}

// Callback is an event handler with a stable identity. Props compare
// callbacks by pointer, so a component that keeps returning the same
// *Callback (see hooks.UseCallback) does not cause its element to be
// reconsidered.
type Callback struct {
	Fn              func(Event)
	PreventDefault  bool
	StopPropagation bool
}

// NewCallback wraps fn in a Callback.
func NewCallback(fn func(Event)) *Callback {
	return &Callback{Fn: fn}
}

// HandleEvent invokes the callback. A nil callback does nothing.
func (c *Callback) HandleEvent(e Event) {
	if c == nil || c.Fn == nil {
		return
	}
	c.Fn(e)
}

// Modifiers returns the client-side modifiers as a space separated list:
// "", "prevent", "stop" or "prevent stop".
func (c *Callback) Modifiers() string {
	if c == nil {
		return ""
	}
	var mods []string
	if c.PreventDefault {
		mods = append(mods, "prevent")
	}
	if c.StopPropagation {
		mods = append(mods, "stop")
	}
	return strings.Join(mods, " ")
}

// PreventDefault returns a copy of handler whose client-side event has
// its default action prevented.
func PreventDefault(handler any) *Callback {
	cb := *ToCallback(handler)
	cb.PreventDefault = true
	return &cb
}

// StopPropagation returns a copy of handler whose client-side event does
// not bubble.
func StopPropagation(handler any) *Callback {
	cb := *ToCallback(handler)
	cb.StopPropagation = true
	return &cb
}

// ToCallback converts a handler into a *Callback. Accepted handler types
// are *Callback (returned as is), func(Event) and func(). It panics on any
// other type.
func ToCallback(handler any) *Callback {
	switch h := handler.(type) {
	case *Callback:
		if h == nil {
			return &Callback{}
		}
		return h
	case func(Event):
		return &Callback{Fn: h}
	case func():
		return &Callback{Fn: func(Event) { h() }}
	default:
		panic(fmt.Sprintf("vdom: unsupported event handler type %T", handler))
	}
}

// On attaches a handler for the named event. The prop name is "on" + event.
func On(event string, handler any) Attr {
	return attr("on"+event, ToCallback(handler))
}

// Mouse events

// OnClick handles click events.
func OnClick(handler any) Attr { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) Attr { return On("dblclick", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler any) Attr { return On("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler any) Attr { return On("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) Attr { return On("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler any) Attr { return On("keyup", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler any) Attr { return On("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) Attr { return On("change", handler) }

// OnSubmit handles form submission.
func OnSubmit(handler any) Attr { return On("submit", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) Attr { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) Attr { return On("blur", handler) }
