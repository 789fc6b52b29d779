package vdom

import (
	"fmt"
	"maps"
	"slices"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates a new Element with the given tag and arguments.
func createElement(tag string, args []any) *Element {
	el := &Element{
		Tag:   tag,
		Props: make(Props),
	}
	applyArgs(el, args)
	return el
}

// applyArgs applies builder arguments to el.
// Arguments can be: nil, Attr, []Attr, Props, Node, []Node, string, or
// any other value, which is coerced to a child.
func applyArgs(el *Element, args []any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			el.setProp(v.Key, v.Value)

		case []Attr:
			for _, a := range v {
				el.setProp(a.Key, a.Value)
			}

		case Props:
			for _, k := range slices.Sorted(maps.Keys(v)) {
				el.setProp(k, v[k])
			}

		case string:
			// Shorthand for text node
			el.Children = append(el.Children, &Text{Content: v})

		default:
			el.Children = appendChild(el.Children, v)
		}
	}
}

func (el *Element) setProp(key string, value any) {
	if key == "" {
		return
	}
	if key == ChildrenProp {
		panic(fmt.Sprintf("vdom: <%s>: %q is a reserved prop", el.Tag, ChildrenProp))
	}
	el.Props[key] = value
}

// H creates an element with an arbitrary tag.
func H(tag string, args ...any) *Element {
	return createElement(tag, args)
}

// Fragment groups children without a wrapping element.
func Fragment(args ...any) *Element {
	return createElement("", args)
}

// Textf creates a Text node from a format string.
func Textf(format string, args ...any) *Text {
	return &Text{Content: fmt.Sprintf(format, args...)}
}

// Document structure elements

func Html(args ...any) *Element  { return createElement("html", args) }
func Head(args ...any) *Element  { return createElement("head", args) }
func Body(args ...any) *Element  { return createElement("body", args) }
func Title(args ...any) *Element { return createElement("title", args) }
func Meta(args ...any) *Element  { return createElement("meta", args) }
func Link(args ...any) *Element  { return createElement("link", args) }

// Content sectioning elements

func Header(args ...any) *Element  { return createElement("header", args) }
func Footer(args ...any) *Element  { return createElement("footer", args) }
func Main(args ...any) *Element    { return createElement("main", args) }
func Nav(args ...any) *Element     { return createElement("nav", args) }
func Section(args ...any) *Element { return createElement("section", args) }
func Article(args ...any) *Element { return createElement("article", args) }
func Aside(args ...any) *Element   { return createElement("aside", args) }
func H1(args ...any) *Element      { return createElement("h1", args) }
func H2(args ...any) *Element      { return createElement("h2", args) }
func H3(args ...any) *Element      { return createElement("h3", args) }

// Text content elements

func Div(args ...any) *Element  { return createElement("div", args) }
func P(args ...any) *Element    { return createElement("p", args) }
func Span(args ...any) *Element { return createElement("span", args) }
func Pre(args ...any) *Element  { return createElement("pre", args) }
func Ul(args ...any) *Element   { return createElement("ul", args) }
func Ol(args ...any) *Element   { return createElement("ol", args) }
func Li(args ...any) *Element   { return createElement("li", args) }
func Hr(args ...any) *Element   { return createElement("hr", args) }

// Inline text semantics

func A(args ...any) *Element      { return createElement("a", args) }
func Strong(args ...any) *Element { return createElement("strong", args) }
func Em(args ...any) *Element     { return createElement("em", args) }
func Small(args ...any) *Element  { return createElement("small", args) }
func Code(args ...any) *Element   { return createElement("code", args) }
func Br(args ...any) *Element     { return createElement("br", args) }

// Form elements

func Form(args ...any) *Element     { return createElement("form", args) }
func Input(args ...any) *Element    { return createElement("input", args) }
func Textarea(args ...any) *Element { return createElement("textarea", args) }
func Select(args ...any) *Element   { return createElement("select", args) }
func Option(args ...any) *Element   { return createElement("option", args) }
func Button(args ...any) *Element   { return createElement("button", args) }
func Label(args ...any) *Element    { return createElement("label", args) }

// Table elements

func Table(args ...any) *Element { return createElement("table", args) }
func Thead(args ...any) *Element { return createElement("thead", args) }
func Tbody(args ...any) *Element { return createElement("tbody", args) }
func Tr(args ...any) *Element    { return createElement("tr", args) }
func Th(args ...any) *Element    { return createElement("th", args) }
func Td(args ...any) *Element    { return createElement("td", args) }

// Media elements

func Img(args ...any) *Element { return createElement("img", args) }

// Scripting elements

func Script(args ...any) *Element { return createElement("script", args) }
func Style(args ...any) *Element  { return createElement("style", args) }
