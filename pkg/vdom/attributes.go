package vdom

import (
	"maps"
	"slices"
	"strings"
)

// Attr is a single prop passed to an element builder.
type Attr struct {
	Key   string
	Value any
}

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Prop sets an arbitrary prop.
func Prop(name string, value any) Attr { return attr(name, value) }

// Keyed sets the reconciliation key. Siblings with equal keys are told
// apart by order of appearance.
func Keyed(key any) Attr { return attr(KeyProp, key) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute (named to avoid conflict with Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// ClassIf sets the class attribute only when condition is true.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("class", class)
	}
	return Attr{}
}

// Classes builds a class list from strings and map[string]bool entries.
// Map entries are added in name order.
func Classes(classes ...any) Attr {
	var parts []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				parts = append(parts, v)
			}
		case map[string]bool:
			for _, name := range slices.Sorted(maps.Keys(v)) {
				if v[name] {
					parts = append(parts, name)
				}
			}
		}
	}
	return attr("class", strings.Join(parts, " "))
}

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaCurrent sets the aria-current attribute.
func AriaCurrent(value string) Attr { return attr("aria-current", value) }

// Visibility attributes

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute (named to avoid conflict with Title element).
func TitleAttr(title string) Attr { return attr("title", title) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Form input attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute when disabled is true.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Checked sets the checked attribute when checked is true.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Autofocus sets the autofocus attribute.
func Autofocus() Attr { return attr("autofocus", true) }

// For sets the for attribute on labels.
func For(id string) Attr { return attr("for", id) }

// Media attributes

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Meta attributes

// Charset sets the charset attribute.
func Charset(charset string) Attr { return attr("charset", charset) }

// Content sets the content attribute.
func Content(content string) Attr { return attr("content", content) }

// Defer_ sets the defer attribute on scripts.
func Defer_() Attr { return attr("defer", true) }
