package server

import (
	"github.com/vango-dev/reflow/pkg/hooks"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// LinkDef renders an <a> that navigates without reloading the page: the
// click's default action is prevented on the client and the server pushes
// the new URL into the browser history.
//
// Props: "href" (string) and "replace" (bool, replace the current history
// entry instead of pushing one). Any other prop is passed to the <a>.
var LinkDef = vdom.Define("Link", func(s vdom.Scope, props vdom.Props) any {
	href := props.String("href")
	replace := props.Bool("replace")

	onClick := hooks.UseMemo(s, func() *vdom.Callback {
		return vdom.PreventDefault(func(vdom.Event) {
			if replace {
				hooks.Replace(s, href)
			} else {
				hooks.Navigate(s, href)
			}
		})
	}, href, replace)

	attrs := make(vdom.Props, len(props))
	for k, v := range props {
		switch k {
		case "href", "replace", vdom.ChildrenProp:
			continue
		}
		attrs[k] = v
	}
	return vdom.A(attrs, vdom.Href(href), vdom.OnClick(onClick), props.Children())
})

// Link creates a Link component. args are vdom.Attr props for the <a> and
// children, as for element builders.
//
//	server.Link("/about", vdom.Class("nav"), "About")
func Link(href string, args ...any) *vdom.Component {
	props := vdom.Props{"href": href}
	var children []any
	for _, arg := range args {
		switch v := arg.(type) {
		case vdom.Attr:
			if v.Key != "" {
				props[v.Key] = v.Value
			}
		case []vdom.Attr:
			for _, a := range v {
				if a.Key != "" {
					props[a.Key] = a.Value
				}
			}
		default:
			children = append(children, v)
		}
	}
	return LinkDef.New(props, children...)
}
