package render

import (
	"fmt"
	"io"
	"net/url"

	"github.com/vango-dev/reflow/pkg/tree"
)

const (
	// DefaultClientScript is the path the client script is served from.
	DefaultClientScript = "/_reflow.js"

	// DefaultMountID is the id of the element holding the rendered tree.
	DefaultMountID = "reflow-root"
)

// Document describes the HTML page wrapped around a rendered tree.
type Document struct {
	// Title is the page title.
	Title string

	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	// Meta contains extra meta tags.
	Meta []MetaTag

	// StyleSheets contains stylesheet URLs.
	StyleSheets []string

	// SessionID is passed to the client script so it can connect back to
	// the session that rendered the page. Empty means a static page with
	// no client script.
	SessionID string

	// ClientScript is the client script path. Defaults to
	// DefaultClientScript.
	ClientScript string

	// MountID is the id of the mount element. Defaults to DefaultMountID.
	MountID string
}

// MetaTag is a name/content meta element.
type MetaTag struct {
	Name    string
	Content string
}

// RenderDocument writes a complete HTML page with body rendered inside the
// mount element. The mount content is always compact, whatever the
// renderer's Pretty setting, so that client paths match the tree.
func (r *Renderer) RenderDocument(w io.Writer, body tree.Node, doc Document) error {
	lang := doc.Lang
	if lang == "" {
		lang = "en"
	}
	mountID := doc.MountID
	if mountID == "" {
		mountID = DefaultMountID
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, doc); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "<body>\n<div id=\"%s\">", escapeAttr(mountID)); err != nil {
		return err
	}

	compact := NewRenderer(RendererConfig{})
	if err := compact.RenderToWriter(w, body); err != nil {
		return err
	}

	_, err := io.WriteString(w, "</div>\n</body>\n</html>\n")
	return err
}

func (r *Renderer) renderHead(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, "<head>\n"+
		`  <meta charset="utf-8">`+"\n"+
		`  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}

	if doc.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(doc.Title)); err != nil {
			return err
		}
	}
	for _, meta := range doc.Meta {
		if _, err := fmt.Fprintf(w, "  <meta name=\"%s\" content=\"%s\">\n", escapeAttr(meta.Name), escapeAttr(meta.Content)); err != nil {
			return err
		}
	}
	for _, href := range doc.StyleSheets {
		if _, err := fmt.Fprintf(w, "  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href)); err != nil {
			return err
		}
	}

	if doc.SessionID != "" {
		src := doc.ClientScript
		if src == "" {
			src = DefaultClientScript
		}
		src += "?session=" + url.QueryEscape(doc.SessionID)
		if _, err := fmt.Fprintf(w, "  <script src=\"%s\" defer></script>\n", escapeAttr(src)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</head>\n")
	return err
}
