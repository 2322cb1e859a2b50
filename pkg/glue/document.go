package glue

import (
	"errors"
	"slices"
)

// ErrNoRoot is returned when markup text contains no root element.
var ErrNoRoot = errors.New("document has no root element")

// Header is an item preceding the root element: a processing instruction
// (Target and Data) or a comment (Comment set, Data holds its content).
type Header struct {
	Target  string
	Data    string
	Comment bool
}

// Document is a glue tree: header items and at most one root element.
type Document struct {
	header []Header
	root   *Element
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Root returns the root element, or nil for an empty document.
func (d *Document) Root() *Element { return d.root }

// SetRoot makes e the root element, detaching the previous root. e must be
// detached and owned by d; nil empties the document.
func (d *Document) SetRoot(e *Element) error {
	if e != nil {
		if e.doc != d {
			return ErrForeignElement
		}
		if e.parent != nil {
			return ErrHasParent
		}
	}
	d.root = e
	return nil
}

// Header returns a copy of the header items.
func (d *Document) Header() []Header { return slices.Clone(d.header) }

// AddInstruction appends a processing instruction to the header.
func (d *Document) AddInstruction(target, data string) {
	d.header = append(d.header, Header{Target: target, Data: data})
}

// Instructions returns the data of every header instruction with the given
// target, in document order.
func (d *Document) Instructions(target string) []string {
	var out []string
	for _, h := range d.header {
		if !h.Comment && h.Target == target {
			out = append(out, h.Data)
		}
	}
	return out
}

// SetInstructions replaces every instruction with the given target by one
// instruction per entry of datas. The new instructions take the position of
// the first replaced one, or are prepended when there was none.
func (d *Document) SetInstructions(target string, datas []string) {
	pos := slices.IndexFunc(d.header, func(h Header) bool { return !h.Comment && h.Target == target })
	if pos < 0 {
		pos = 0
	}

	kept := make([]Header, 0, len(d.header)+len(datas))
	inserted := false
	for i, h := range d.header {
		if i == pos && !inserted {
			kept = appendInstructions(kept, target, datas)
			inserted = true
		}
		if !h.Comment && h.Target == target {
			continue
		}
		kept = append(kept, h)
	}
	if !inserted {
		kept = appendInstructions(kept, target, datas)
	}
	d.header = kept
}

func appendInstructions(dst []Header, target string, datas []string) []Header {
	for _, data := range datas {
		dst = append(dst, Header{Target: target, Data: data})
	}
	return dst
}

// Walk visits every element of the document in document order.
func (d *Document) Walk(fn func(*Element) bool) {
	if d.root != nil {
		d.root.Walk(fn)
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{header: slices.Clone(d.header)}
	if d.root != nil {
		c.root = d.root.Clone(c)
	}
	return c
}
