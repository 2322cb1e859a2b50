package glue

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads markup text from r into a new document.
//
// Namespace prefixes are kept verbatim in tags and attribute names. The XML
// declaration is dropped because [Document.Write] always emits one. Text
// content is trimmed; whitespace-only text is discarded. Processing
// instructions and comments before the root become header items; those after
// the root are dropped.
//
// Parse returns an error for malformed markup, mismatched end tags, missing
// root elements, or content after the root element.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	doc := NewDocument()
	var (
		stack []*Element
		texts []*strings.Builder
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line(dec), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && doc.root != nil {
				return nil, fmt.Errorf("line %d: multiple root elements", line(dec))
			}
			e := NewElement(doc, qualified(t.Name))
			for _, a := range t.Attr {
				e.attrs = append(e.attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				doc.root = e
			} else {
				parent := stack[len(stack)-1]
				e.parent = parent
				parent.children = append(parent.children, e)
			}
			stack = append(stack, e)
			texts = append(texts, &strings.Builder{})

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("line %d: unexpected end element </%s>", line(dec), qualified(t.Name))
			}
			top := stack[len(stack)-1]
			if name := qualified(t.Name); name != top.tag {
				return nil, fmt.Errorf("line %d: element <%s> closed by </%s>", line(dec), top.tag, name)
			}
			top.text = strings.TrimSpace(texts[len(texts)-1].String())
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("line %d: text outside root element", line(dec))
				}
				continue
			}
			texts[len(texts)-1].Write(t)

		case xml.Comment:
			switch {
			case len(stack) > 0:
				parent := stack[len(stack)-1]
				c := NewComment(doc, string(t))
				c.parent = parent
				parent.children = append(parent.children, c)
			case doc.root == nil:
				doc.header = append(doc.header, Header{Comment: true, Data: string(t)})
			}

		case xml.ProcInst:
			if t.Target == "xml" || len(stack) > 0 || doc.root != nil {
				continue
			}
			doc.header = append(doc.header, Header{Target: t.Target, Data: strings.TrimSpace(string(t.Inst))})
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].tag)
	}
	if doc.root == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// ParseBytes parses markup text held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func line(dec *xml.Decoder) int {
	l, _ := dec.InputPos()
	return l
}
