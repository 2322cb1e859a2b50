package fxom

import (
	"fmt"
	"slices"

	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/markup"
)

// NewInstance creates a detached instance of a fully-qualified type. The
// instance is written with the simple type name; the saver adds the
// matching import.
func NewInstance(doc *Document, fqn string) *Instance {
	return newInstance(doc, glue.NewElement(doc.glue, markup.SimpleName(fqn)), fqn)
}

func newInstance(doc *Document, elem *glue.Element, typ string) *Instance {
	i := &Instance{typ: typ, props: make(map[string]Property)}
	i.objectBase = objectBase{self: i, doc: doc, elem: elem}
	return i
}

// NewCollection creates a detached, empty collection of a fully-qualified
// type.
func NewCollection(doc *Document, fqn string) *Collection {
	return newCollection(doc, glue.NewElement(doc.glue, markup.SimpleName(fqn)), fqn)
}

func newCollection(doc *Document, elem *glue.Element, typ string) *Collection {
	c := &Collection{typ: typ}
	c.objectBase = objectBase{self: c, doc: doc, elem: elem}
	return c
}

// NewIntrinsic creates a detached intrinsic.
func NewIntrinsic(doc *Document, kind IntrinsicKind, source string) *Intrinsic {
	elem := glue.NewElement(doc.glue, kind.String())
	elem.SetAttr(markup.AttrSource, source)
	return newIntrinsic(doc, elem, kind)
}

func newIntrinsic(doc *Document, elem *glue.Element, kind IntrinsicKind) *Intrinsic {
	x := &Intrinsic{kind: kind}
	x.objectBase = objectBase{self: x, doc: doc, elem: elem}
	return x
}

// NewTextProperty creates a detached text property. Value element
// properties wrap the value in a java.lang.String element.
func NewTextProperty(doc *Document, name, value string, repr TextRepr) (*TextProperty, error) {
	return newTextProperty(doc, name, value, repr, markup.SimpleName(DefaultValueType), DefaultValueType)
}

func newTextProperty(doc *Document, name, value string, repr TextRepr, valueTag, valueType string) (*TextProperty, error) {
	if err := checkPropertyName(name); err != nil {
		return nil, err
	}
	p := &TextProperty{repr: repr, text: value}
	p.propertyBase = propertyBase{self: p, name: name, doc: doc, owner: doc.staticOwner(name)}
	switch repr {
	case AsAttribute:
	case AsElementText:
		p.elem = glue.NewElement(doc.glue, name)
		p.elem.SetText(value)
	case AsValueElement:
		p.elem = glue.NewElement(doc.glue, name)
		p.valueElem = glue.NewElement(doc.glue, valueTag)
		p.valueElem.SetAttr(markup.AttrValue, value)
		p.valueType = valueType
		if err := p.elem.Append(p.valueElem); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown text representation %d", repr)
	}
	return p, nil
}

// NewComplexProperty creates a detached complex property holding detached
// values.
func NewComplexProperty(doc *Document, name string, values ...Object) (*ComplexProperty, error) {
	if err := checkPropertyName(name); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrEmptyProperty
	}
	p := newComplexProperty(doc, glue.NewElement(doc.glue, name), name)
	for _, v := range values {
		if err := attachValue(p, v, -1); err != nil {
			for _, added := range slices.Clone(p.values) {
				detachObject(added)
			}
			return nil, err
		}
	}
	return p, nil
}

func newComplexProperty(doc *Document, elem *glue.Element, name string) *ComplexProperty {
	p := &ComplexProperty{}
	p.propertyBase = propertyBase{self: p, name: name, doc: doc, elem: elem, owner: doc.staticOwner(name)}
	return p
}

func checkPropertyName(name string) error {
	if _, _, ok := markup.SplitStatic(name); ok {
		return nil
	}
	if !markup.IsIdentifier(name) || markup.IsReservedAttr(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// staticOwner resolves the owner type of a static property name.
func (d *Document) staticOwner(name string) string {
	owner, _, ok := markup.SplitStatic(name)
	if !ok || d.classes == nil {
		return ""
	}
	fqn, _ := d.classes.Resolve(owner, d.glue.Instructions(markup.InstructionImport))
	return fqn
}

func glueIndex(siblings []Object, index int) int {
	if index < 0 || index >= len(siblings) {
		return -1
	}
	return siblings[index].Glue().Index()
}

func clampIndex(index, n int) int {
	if index < 0 || index > n {
		return n
	}
	return index
}

func checkAttachable(doc *Document, obj Object, parent *glue.Element) error {
	ob := obj.base()
	if ob.doc != doc {
		return ErrForeignDocument
	}
	if ob.attached() {
		return ErrAttached
	}
	if ob.elem.Contains(parent) {
		return ErrCycle
	}
	return nil
}

func attachValue(p *ComplexProperty, obj Object, index int) error {
	if err := checkAttachable(p.doc, obj, p.elem); err != nil {
		return err
	}
	if err := p.elem.Insert(obj.Glue(), glueIndex(p.values, index)); err != nil {
		return err
	}
	p.values = slices.Insert(p.values, clampIndex(index, len(p.values)), obj)
	obj.base().parentProperty = p
	p.doc.invalidate()
	return nil
}

func attachItem(c *Collection, obj Object, index int) error {
	if err := checkAttachable(c.doc, obj, c.elem); err != nil {
		return err
	}
	if err := c.elem.Insert(obj.Glue(), glueIndex(c.items, index)); err != nil {
		return err
	}
	c.items = slices.Insert(c.items, clampIndex(index, len(c.items)), obj)
	obj.base().parentCollection = c
	c.doc.invalidate()
	return nil
}

// detachObject removes obj from its owner on both sides. A complex
// property left without values is removed from its instance.
func detachObject(obj Object) {
	ob := obj.base()
	switch {
	case ob.parentProperty != nil:
		p := ob.parentProperty
		if i := slices.Index(p.values, obj); i >= 0 {
			p.values = slices.Delete(p.values, i, i+1)
		}
		ob.elem.Remove()
		ob.parentProperty = nil
		if len(p.values) == 0 {
			detachProperty(p)
		}
	case ob.parentCollection != nil:
		c := ob.parentCollection
		if i := slices.Index(c.items, obj); i >= 0 {
			c.items = slices.Delete(c.items, i, i+1)
		}
		ob.elem.Remove()
		ob.parentCollection = nil
	case ob.isRoot():
		ob.doc.root = nil
		ob.elem.Remove()
	}
	ob.doc.invalidate()
}

func attachProperty(inst *Instance, p Property) error {
	pb := p.propBase()
	if pb.doc != inst.doc {
		return ErrForeignDocument
	}
	if pb.inst != nil {
		return ErrAttached
	}
	if _, dup := inst.props[pb.name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateProperty, pb.name)
	}
	switch tp := p.(type) {
	case *TextProperty:
		if tp.repr == AsAttribute {
			inst.elem.SetAttr(tp.name, tp.text)
			break
		}
		if err := inst.elem.Append(tp.elem); err != nil {
			return err
		}
	case *ComplexProperty:
		if len(tp.values) == 0 {
			return ErrEmptyProperty
		}
		if tp.elem.Contains(inst.elem) {
			return ErrCycle
		}
		if err := inst.elem.Append(tp.elem); err != nil {
			return err
		}
	}
	inst.props[pb.name] = p
	pb.inst = inst
	inst.doc.invalidate()
	return nil
}

func detachProperty(p Property) {
	pb := p.propBase()
	inst := pb.inst
	if inst == nil {
		return
	}
	if tp, ok := p.(*TextProperty); ok && tp.repr == AsAttribute {
		inst.elem.RemoveAttr(pb.name)
	} else {
		pb.elem.Remove()
		pb.elem.SetSynthetic(false)
	}
	delete(inst.props, pb.name)
	pb.inst = nil
	inst.doc.invalidate()
}

// replaceProperty swaps old for p at the glue position of old.
func replaceProperty(old Property, p Property) error {
	inst := old.Instance()
	pos := -1
	if e := old.Glue(); e != nil {
		pos = e.Index()
	}
	detachProperty(old)
	if err := attachProperty(inst, p); err != nil {
		return err
	}
	if e := p.Glue(); e != nil && pos >= 0 {
		return e.Move(inst.elem, pos)
	}
	return nil
}

// Walk visits obj and its descendants in depth-first order, properties in
// name order. Returning false skips the descendants of the visited object.
func Walk(obj Object, fn func(Object) bool) {
	if obj == nil || !fn(obj) {
		return
	}
	switch o := obj.(type) {
	case *Instance:
		for _, p := range o.Properties() {
			if cp, ok := p.(*ComplexProperty); ok {
				for _, v := range slices.Clone(cp.values) {
					Walk(v, fn)
				}
			}
		}
	case *Collection:
		for _, it := range slices.Clone(o.items) {
			Walk(it, fn)
		}
	}
}

// Contains reports whether obj is ancestor or one of its descendants.
func Contains(ancestor, obj Object) bool {
	return ancestor.Glue().Contains(obj.Glue())
}

// Parent returns the object owning obj, or nil.
func Parent(obj Object) Object {
	ob := obj.base()
	switch {
	case ob.parentProperty != nil && ob.parentProperty.inst != nil:
		return ob.parentProperty.inst
	case ob.parentCollection != nil:
		return ob.parentCollection
	}
	return nil
}
