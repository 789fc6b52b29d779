package render

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vango-dev/reflow/pkg/tree"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// HandlerAttrPrefix is prepended to a handler prop name to form the HTML
// attribute announcing it, e.g. onclick becomes data-onclick. The value is
// the handler's modifier list.
const HandlerAttrPrefix = "data-"

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty indents block elements. The extra whitespace adds text nodes,
	// so pretty output must not be used for a live mount point.
	Pretty bool

	// Indent is the string used for each level in pretty mode.
	// Defaults to two spaces.
	Indent string
}

// Renderer writes Result trees as HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// HTML renders n compactly. Fragments are spliced and adjacent text is
// written as one run, so the browser sees exactly the flattened view the
// differ addresses.
func HTML(n tree.Node) string {
	var buf bytes.Buffer
	_ = NewRenderer(RendererConfig{}).RenderToWriter(&buf, n)
	return buf.String()
}

// RenderToString renders n to a string.
func (r *Renderer) RenderToString(n tree.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter renders the top-level nodes of n to w.
func (r *Renderer) RenderToWriter(w io.Writer, n tree.Node) error {
	for _, root := range tree.Roots(n) {
		if err := r.renderNode(w, root, 0, ""); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderNode(w io.Writer, n tree.Node, depth int, parent string) error {
	switch n := n.(type) {
	case tree.Text:
		s := string(n)
		if rawTextElements[parent] {
			s = escapeRawText(s)
		} else {
			s = escapeHTML(s)
		}
		_, err := io.WriteString(w, s)
		return err
	case *tree.Element:
		return r.renderElement(w, n, depth)
	default:
		return fmt.Errorf("render: unknown node type %T", n)
	}
}

func (r *Renderer) renderElement(w io.Writer, el *tree.Element, depth int) error {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "<"+el.Tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, el); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if vdom.IsVoidElement(el.Tag) {
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	children := tree.Children(el)
	block := r.config.Pretty && len(children) > 0 && !isInlineElement(el.Tag)
	if block {
		io.WriteString(w, "\n")
	}
	for _, child := range children {
		if block {
			if _, ok := child.(tree.Text); ok {
				r.writeIndent(w, depth+1)
			}
		}
		if err := r.renderNode(w, child, depth+1, el.Tag); err != nil {
			return err
		}
		if block {
			if _, ok := child.(tree.Text); ok {
				io.WriteString(w, "\n")
			}
		}
	}
	if block {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "</"+el.Tag+">"); err != nil {
		return err
	}
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

// renderAttributes writes the cleaned props in name order. Handlers are
// announced as data- attributes carrying their modifiers.
func (r *Renderer) renderAttributes(w io.Writer, el *tree.Element) error {
	attrs := tree.CleanProps(el.Props)
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		value := attrs[name]
		if _, ok := el.Props[name].(tree.Handler); ok {
			name = HandlerAttrPrefix + name
		}
		if !validAttrName(name) {
			continue
		}

		var err error
		if value == "" && isBooleanAttr(name) {
			_, err = fmt.Fprintf(w, " %s", name)
		} else {
			_, err = fmt.Fprintf(w, ` %s="%s"`, name, escapeAttr(value))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// validAttrName rejects names that would break out of the tag.
func validAttrName(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t\n\r\f\"'<>/=")
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat(r.config.Indent, depth))
}
