package glue

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const indentUnit = "    "

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// Write serializes the document to w.
//
// The output starts with an XML declaration, followed by the header items
// and the root element indented with four spaces per level. Synthetic
// elements are written transparently. The output is fully determined by the
// document state.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	if len(d.header) > 0 {
		bw.WriteString("\n")
		for _, h := range d.header {
			if h.Comment {
				bw.WriteString("<!--" + h.Data + "-->\n")
				continue
			}
			bw.WriteString("<?" + h.Target)
			if h.Data != "" {
				bw.WriteString(" " + h.Data)
			}
			bw.WriteString("?>\n")
		}
	}
	if d.root != nil {
		bw.WriteString("\n")
		writeElement(bw, d.root, 0)
	}
	return bw.Flush()
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_ = d.Write(&buf)
	return buf.Bytes()
}

// String returns the serialized document.
func (d *Document) String() string { return string(d.Bytes()) }

func writeElement(w *bufio.Writer, e *Element, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	if e.IsComment() {
		w.WriteString(indent + "<!--" + e.text + "-->\n")
		return
	}
	if e.synthetic && e.parent != nil {
		for _, c := range e.children {
			writeElement(w, c, depth)
		}
		return
	}

	w.WriteString(indent + "<" + e.tag)
	for _, a := range e.attrs {
		w.WriteString(" " + a.Name + `="` + attrEscaper.Replace(a.Value) + `"`)
	}

	children := visibleChildren(e)
	switch {
	case len(children) == 0 && e.text == "":
		w.WriteString("/>\n")
	case len(children) == 0:
		w.WriteString(">" + textEscaper.Replace(e.text) + "</" + e.tag + ">\n")
	default:
		w.WriteString(">\n")
		if e.text != "" {
			w.WriteString(indent + indentUnit + textEscaper.Replace(e.text) + "\n")
		}
		for _, c := range e.children {
			writeElement(w, c, depth+1)
		}
		w.WriteString(indent + "</" + e.tag + ">\n")
	}
}

// visibleChildren returns the children that produce output, looking through
// synthetic elements.
func visibleChildren(e *Element) []*Element {
	var out []*Element
	for _, c := range e.children {
		if c.synthetic {
			out = append(out, visibleChildren(c)...)
			continue
		}
		out = append(out, c)
	}
	return out
}
