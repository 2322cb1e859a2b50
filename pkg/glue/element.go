package glue

import (
	"errors"
	"slices"
)

// CommentTag is the tag of elements holding a comment found inside an
// element body. Their text is the comment content.
const CommentTag = "#comment"

var (
	// ErrHasParent is returned by [Element.Insert] when the child is still
	// attached somewhere else. Detach it with [Element.Remove] first.
	ErrHasParent = errors.New("element already has a parent")

	// ErrCycle is returned when an insertion would make an element its own
	// ancestor.
	ErrCycle = errors.New("insertion would create a cycle")

	// ErrForeignElement is returned when elements owned by different
	// documents are linked. Use [Element.Adopt] to change ownership.
	ErrForeignElement = errors.New("element belongs to another document")
)

// Attr is a single attribute. Name keeps its namespace prefix verbatim
// (e.g. "fx:id", "xmlns:fx").
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the glue tree.
//
// The zero value is not usable; create elements with [NewElement].
type Element struct {
	tag       string
	attrs     []Attr
	children  []*Element
	text      string
	parent    *Element
	synthetic bool
	doc       *Document
}

// NewElement creates a detached element owned by doc.
func NewElement(doc *Document, tag string) *Element {
	return &Element{tag: tag, doc: doc}
}

// NewComment creates a detached comment element owned by doc.
func NewComment(doc *Document, text string) *Element {
	return &Element{tag: CommentTag, text: text, doc: doc}
}

// Tag returns the element tag including any namespace prefix.
func (e *Element) Tag() string { return e.tag }

// SetTag renames the element.
func (e *Element) SetTag(tag string) { e.tag = tag }

// IsComment reports whether the element holds a comment.
func (e *Element) IsComment() bool { return e.tag == CommentTag }

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Parent returns the parent element, or nil for a root or detached element.
func (e *Element) Parent() *Element { return e.parent }

// Synthetic reports whether the element was inserted by the model rather
// than read from the source text.
func (e *Element) Synthetic() bool { return e.synthetic }

// SetSynthetic sets the synthetic flag.
func (e *Element) SetSynthetic(v bool) { e.synthetic = v }

// Text returns the text content.
func (e *Element) Text() string { return e.text }

// SetText replaces the text content.
func (e *Element) SetText(s string) { e.text = s }

// Attrs returns a copy of the attribute list in document order.
func (e *Element) Attrs() []Attr { return slices.Clone(e.attrs) }

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute. An existing attribute keeps its position;
// a new one is appended.
func (e *Element) SetAttr(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes an attribute and reports whether it existed.
func (e *Element) RemoveAttr(name string) bool {
	n := len(e.attrs)
	e.attrs = slices.DeleteFunc(e.attrs, func(a Attr) bool { return a.Name == name })
	return len(e.attrs) != n
}

// Children returns the child elements. The slice must not be modified.
func (e *Element) Children() []*Element { return e.children }

// Index returns the position of e in its parent's child list, or -1.
func (e *Element) Index() int {
	if e.parent == nil {
		return -1
	}
	return slices.Index(e.parent.children, e)
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for p := other; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

// Insert attaches child under e at index. An index outside [0, len]
// appends.
func (e *Element) Insert(child *Element, index int) error {
	if child.doc != e.doc {
		return ErrForeignElement
	}
	if child.parent != nil || (e.doc != nil && e.doc.root == child) {
		return ErrHasParent
	}
	if child.Contains(e) {
		return ErrCycle
	}
	if index < 0 || index > len(e.children) {
		index = len(e.children)
	}
	e.children = slices.Insert(e.children, index, child)
	child.parent = e
	return nil
}

// Append attaches child as the last child of e.
func (e *Element) Append(child *Element) error { return e.Insert(child, -1) }

// Remove detaches e from its parent. Removing the document root empties
// the document. Removing a detached element is a no-op.
func (e *Element) Remove() {
	if e.parent == nil {
		if e.doc != nil && e.doc.root == e {
			e.doc.root = nil
		}
		return
	}
	p := e.parent
	if i := slices.Index(p.children, e); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}

// Move re-parents e under parent at index. The cycle check runs before e
// is detached, so a failed move leaves the tree unchanged.
func (e *Element) Move(parent *Element, index int) error {
	if parent.doc != e.doc {
		return ErrForeignElement
	}
	if e.Contains(parent) {
		return ErrCycle
	}
	if e.parent == parent && index > e.Index() {
		index--
	}
	e.Remove()
	return parent.Insert(e, index)
}

// Adopt transfers ownership of the detached subtree rooted at e to doc.
func (e *Element) Adopt(doc *Document) error {
	if e.parent != nil {
		return ErrHasParent
	}
	if e.doc != nil && e.doc.root == e {
		e.doc.root = nil
	}
	e.Walk(func(x *Element) bool {
		x.doc = doc
		return true
	})
	return nil
}

// Clone returns a detached deep copy of e owned by doc.
func (e *Element) Clone(doc *Document) *Element {
	c := &Element{
		tag:       e.tag,
		attrs:     slices.Clone(e.attrs),
		text:      e.text,
		synthetic: e.synthetic,
		doc:       doc,
	}
	for _, child := range e.children {
		cc := child.Clone(doc)
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Walk visits e and its descendants in document order. Returning false
// from fn skips the children of the visited element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range slices.Clone(e.children) {
		c.Walk(fn)
	}
}
