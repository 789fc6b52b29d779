// Package render writes Result trees as HTML.
//
// Output follows the flattened view of the tree: fragments disappear,
// adjacent text is written as a single run and empty text is omitted, so
// the DOM a browser builds from the HTML has exactly the child indices that
// patch ops address.
//
// Handlers are not JavaScript; an element with an onclick handler is
// written with a data-onclick attribute whose value is the handler's
// modifier list ("", "prevent", "stop" or "prevent stop"). The client
// script binds listeners from these attributes.
//
// # Basic Usage
//
//	html := render.HTML(result)
//
// or, with options:
//
//	r := render.NewRenderer(render.RendererConfig{Pretty: true})
//	err := r.RenderToWriter(w, result)
//
// # Documents
//
// RenderDocument wraps a tree in a complete page whose body holds a single
// mount element. When a session ID is set, the page loads the client
// script, which connects back to that session over a WebSocket:
//
//	err := r.RenderDocument(w, result, render.Document{
//	    Title:     "Counter",
//	    SessionID: id,
//	})
package render
