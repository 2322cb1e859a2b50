package fxom

import (
	"fmt"
	"slices"

	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/markup"
)

// Object is a node of the object graph: *Instance, *Collection or
// *Intrinsic.
type Object interface {
	// ID returns the object id, or "" when it has none.
	ID() string
	// SetID changes the id. An empty id removes it.
	SetID(id string) error

	// Glue returns the element the object is paired with.
	Glue() *glue.Element
	// Document returns the owning document.
	Document() *Document
	// Value returns the instantiated value, nil when unresolved or not yet
	// refreshed.
	Value() any

	// ParentProperty returns the owning property, if any.
	ParentProperty() *ComplexProperty
	// ParentCollection returns the owning collection, if any.
	ParentCollection() *Collection

	// SpecialAttr returns one of the special attributes "constant",
	// "value", "factory" or "controller".
	SpecialAttr(name string) (string, bool)
	// SetSpecialAttr sets a special attribute. An empty value removes it.
	SetSpecialAttr(name, value string) error

	// RemoveFromParent detaches the object from its owner.
	RemoveFromParent() error

	base() *objectBase
}

// SpecialAttrs lists the special attribute names in the order they are
// copied.
var SpecialAttrs = []string{"constant", "value", "factory", "controller"}

type objectBase struct {
	self             Object
	doc              *Document
	elem             *glue.Element
	value            any
	parentProperty   *ComplexProperty
	parentCollection *Collection
}

func (o *objectBase) base() *objectBase { return o }

func (o *objectBase) ID() string {
	id, _ := o.elem.Attr(markup.AttrID)
	return id
}

func (o *objectBase) SetID(id string) error {
	if id != "" && !markup.IsIdentifier(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return o.doc.update(o.elem, func() error {
		o.setID(id)
		return nil
	})
}

func (o *objectBase) setID(id string) {
	if id == "" {
		o.elem.RemoveAttr(markup.AttrID)
	} else {
		o.elem.SetAttr(markup.AttrID, id)
	}
	o.doc.invalidate()
}

func (o *objectBase) Glue() *glue.Element              { return o.elem }
func (o *objectBase) Document() *Document               { return o.doc }
func (o *objectBase) Value() any                        { return o.value }
func (o *objectBase) ParentProperty() *ComplexProperty  { return o.parentProperty }
func (o *objectBase) ParentCollection() *Collection     { return o.parentCollection }
func (o *objectBase) attached() bool                    { return o.parentProperty != nil || o.parentCollection != nil || o.isRoot() }
func (o *objectBase) isRoot() bool                      { return o.doc != nil && o.doc.root == o.self }

func (o *objectBase) SpecialAttr(name string) (string, bool) {
	if !slices.Contains(SpecialAttrs, name) {
		return "", false
	}
	return o.elem.Attr("fx:" + name)
}

func (o *objectBase) SetSpecialAttr(name, value string) error {
	if !slices.Contains(SpecialAttrs, name) {
		return fmt.Errorf("unknown special attribute %q", name)
	}
	return o.doc.update(o.elem, func() error {
		if value == "" {
			o.elem.RemoveAttr("fx:" + name)
		} else {
			o.elem.SetAttr("fx:"+name, value)
		}
		return nil
	})
}

func (o *objectBase) RemoveFromParent() error {
	var touched *glue.Element
	switch {
	case o.parentProperty != nil:
		touched = o.parentProperty.elem
	case o.parentCollection != nil:
		touched = o.parentCollection.elem
	case o.isRoot():
		touched = o.elem
	default:
		return nil
	}
	return o.doc.update(touched, func() error {
		detachObject(o.self)
		return nil
	})
}

// Instance is an object of a declared type.
type Instance struct {
	objectBase
	typ   string
	props map[string]Property
}

// Collection is an ordered sequence of objects.
type Collection struct {
	objectBase
	typ   string
	items []Object
}

// IntrinsicKind identifies an intrinsic placeholder.
type IntrinsicKind int

const (
	// Include inserts another markup file.
	Include IntrinsicKind = iota
	// Reference points at the object with the source id.
	Reference
	// Copy duplicates the object with the source id.
	Copy
)

// String returns the markup tag of the kind.
func (k IntrinsicKind) String() string {
	switch k {
	case Include:
		return markup.TagInclude
	case Reference:
		return markup.TagReference
	case Copy:
		return markup.TagCopy
	}
	return fmt.Sprintf("IntrinsicKind(%d)", int(k))
}

// Intrinsic is an include, reference or copy placeholder. Its source is an
// id for references and copies, and a relative markup path for includes.
type Intrinsic struct {
	objectBase
	kind IntrinsicKind
}

var (
	_ Object = (*Instance)(nil)
	_ Object = (*Collection)(nil)
	_ Object = (*Intrinsic)(nil)
)

// Type returns the fully-qualified type, or "" when unresolved.
func (i *Instance) Type() string { return i.typ }

// Resolved reports whether the type is known.
func (i *Instance) Resolved() bool { return i.typ != "" }

// Tag returns the type name as written in the markup.
func (i *Instance) Tag() string {
	if i.elem.Tag() == markup.TagRoot {
		t, _ := i.elem.Attr(markup.AttrType)
		return t
	}
	return i.elem.Tag()
}

// IsRootElement reports whether the instance is written as fx:root.
func (i *Instance) IsRootElement() bool { return i.elem.Tag() == markup.TagRoot }

// Properties returns the properties sorted by name.
func (i *Instance) Properties() []Property {
	names := make([]string, 0, len(i.props))
	for name := range i.props {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]Property, len(names))
	for j, name := range names {
		out[j] = i.props[name]
	}
	return out
}

// Property returns the named property, or nil.
func (i *Instance) Property(name string) Property { return i.props[name] }

// AddProperty attaches a detached property.
func (i *Instance) AddProperty(p Property) error {
	return i.doc.update(i.elem, func() error { return attachProperty(i, p) })
}

// RemoveProperty detaches the named property. Removing a missing property
// is a no-op.
func (i *Instance) RemoveProperty(name string) error {
	p, ok := i.props[name]
	if !ok {
		return nil
	}
	return i.doc.update(i.elem, func() error {
		detachProperty(p)
		return nil
	})
}

// Type returns the fully-qualified item container type.
func (c *Collection) Type() string { return c.typ }

// Items returns the collection items. The slice must not be modified.
func (c *Collection) Items() []Object { return c.items }

// AddItem attaches a detached object at index. An index outside
// [0, len] appends.
func (c *Collection) AddItem(obj Object, index int) error {
	return c.doc.update(c.elem, func() error { return attachItem(c, obj, index) })
}

// RemoveItem detaches obj from the collection.
func (c *Collection) RemoveItem(obj Object) error {
	if obj.ParentCollection() != c {
		return ErrNotChild
	}
	return obj.RemoveFromParent()
}

// Kind returns the intrinsic kind.
func (x *Intrinsic) Kind() IntrinsicKind { return x.kind }

// Source returns the referenced id or include path.
func (x *Intrinsic) Source() string {
	s, _ := x.elem.Attr(markup.AttrSource)
	return s
}

// SetSource changes the referenced id or include path.
func (x *Intrinsic) SetSource(source string) error {
	if source == "" {
		return fmt.Errorf("%s: empty source", x.kind)
	}
	return x.doc.update(x.elem, func() error {
		x.setSource(source)
		return nil
	})
}

func (x *Intrinsic) setSource(source string) {
	x.elem.SetAttr(markup.AttrSource, source)
	x.doc.invalidate()
}
