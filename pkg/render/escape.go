package render

import (
	"strconv"
	"strings"
)

// escapeHTML escapes text content.
func escapeHTML(s string) string {
	return escape(s, false)
}

// escapeAttr escapes a quoted attribute value. Whitespace control
// characters are escaped as well so values survive attribute parsing
// unchanged.
func escapeAttr(s string) string {
	return escape(s, true)
}

func escape(s string, attr bool) string {
	if !strings.ContainsAny(s, "&<>\"'\n\r\t") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 16)
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n', '\r', '\t':
			if attr {
				buf.WriteString("&#")
				buf.WriteString(strconv.Itoa(int(r)))
				buf.WriteByte(';')
				continue
			}
			buf.WriteRune(r)
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeRawText neutralizes "</" inside script and style bodies.
func escapeRawText(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}
