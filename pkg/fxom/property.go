package fxom

import (
	"fmt"
	"slices"

	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/markup"
)

// Property is a named slot of an Instance: *TextProperty or
// *ComplexProperty.
type Property interface {
	// Name returns the property name. Static properties are named
	// "Owner.name".
	Name() string
	// Instance returns the owning instance, or nil when detached.
	Instance() *Instance
	// Glue returns the property element, or nil for attribute properties.
	Glue() *glue.Element
	// Document returns the owning document.
	Document() *Document
	// StaticOwner returns the fully-qualified owner type of a static
	// property, or "".
	StaticOwner() string

	propBase() *propertyBase
}

type propertyBase struct {
	self  Property
	name  string
	doc   *Document
	elem  *glue.Element
	inst  *Instance
	owner string
}

func (p *propertyBase) Name() string             { return p.name }
func (p *propertyBase) Instance() *Instance      { return p.inst }
func (p *propertyBase) Glue() *glue.Element      { return p.elem }
func (p *propertyBase) Document() *Document      { return p.doc }
func (p *propertyBase) StaticOwner() string      { return p.owner }
func (p *propertyBase) propBase() *propertyBase  { return p }
func (p *propertyBase) touched() *glue.Element {
	if p.inst != nil {
		return p.inst.elem
	}
	return p.elem
}

// TextRepr is the physical representation of a text property.
type TextRepr int

const (
	// AsAttribute writes the value as an attribute: <Label text="hi"/>.
	AsAttribute TextRepr = iota
	// AsElementText writes a property element: <text>hi</text>.
	AsElementText
	// AsValueElement wraps a value object: <text><String fx:value="hi"/></text>.
	AsValueElement
)

// String returns a short name of the representation.
func (r TextRepr) String() string {
	switch r {
	case AsAttribute:
		return "attribute"
	case AsElementText:
		return "element-text"
	case AsValueElement:
		return "value-element"
	}
	return fmt.Sprintf("TextRepr(%d)", int(r))
}

// DefaultValueType is the type of value elements built by
// [NewTextProperty].
const DefaultValueType = "java.lang.String"

// TextProperty holds one string value. Its representation is fixed at
// construction.
type TextProperty struct {
	propertyBase
	repr      TextRepr
	text      string
	valueElem *glue.Element
	valueType string
	valueObj  *Instance
}

// ComplexProperty holds an ordered, non-empty list of objects.
type ComplexProperty struct {
	propertyBase
	values []Object
}

var (
	_ Property = (*TextProperty)(nil)
	_ Property = (*ComplexProperty)(nil)
)

// Repr returns the physical representation.
func (p *TextProperty) Repr() TextRepr { return p.repr }

// Value returns the text value.
func (p *TextProperty) Value() string { return p.text }

// ValueType returns the fully-qualified type of the value element of an
// AsValueElement property.
func (p *TextProperty) ValueType() string { return p.valueType }

// IDExpression returns the id the value refers to when it is written as
// "$id".
func (p *TextProperty) IDExpression() (string, bool) {
	return markup.IDExpression(p.text)
}

// SetValue replaces the value, keeping the representation.
func (p *TextProperty) SetValue(v string) error {
	return p.doc.update(p.touched(), func() error {
		p.setValue(v)
		return nil
	})
}

func (p *TextProperty) setValue(v string) {
	p.text = v
	switch p.repr {
	case AsAttribute:
		if p.inst != nil {
			p.inst.elem.SetAttr(p.name, v)
		}
	case AsElementText:
		p.elem.SetText(v)
	case AsValueElement:
		p.valueElem.SetAttr(markup.AttrValue, v)
	}
	p.doc.invalidate()
}

// Values returns the property values. The slice must not be modified.
func (p *ComplexProperty) Values() []Object { return p.values }

// Synthetic reports whether the property element was synthesized for
// objects written directly inside their instance.
func (p *ComplexProperty) Synthetic() bool { return p.elem.Synthetic() }

// AddValue attaches a detached object at index. An index outside
// [0, len] appends.
func (p *ComplexProperty) AddValue(obj Object, index int) error {
	return p.doc.update(p.touched(), func() error { return attachValue(p, obj, index) })
}

// RemoveValue detaches obj. Removing the last value removes the property
// from its instance.
func (p *ComplexProperty) RemoveValue(obj Object) error {
	if obj.ParentProperty() != p {
		return ErrNotChild
	}
	return obj.RemoveFromParent()
}

// IndexOf returns the position of obj among the values, or -1.
func (p *ComplexProperty) IndexOf(obj Object) int { return slices.Index(p.values, obj) }
