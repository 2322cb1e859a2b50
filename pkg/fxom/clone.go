package fxom

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/gluedoc/pkg/fxom/idmerge"
	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/markup"
	"github.com/matzehuels/gluedoc/pkg/observability"
)

// DefaultWeakProperties are back-reference properties that are dropped
// rather than deep-cloned when their target lies outside the cloned
// subtree.
var DefaultWeakProperties = []string{"labelFor", "clip", "expandedPane"}

// WeakSet is a set of weak property names.
type WeakSet map[string]bool

// NewWeakSet returns a set holding names.
func NewWeakSet(names ...string) WeakSet {
	w := make(WeakSet, len(names))
	for _, n := range names {
		w[n] = true
	}
	return w
}

// DefaultWeakSet returns a set of [DefaultWeakProperties].
func DefaultWeakSet() WeakSet { return NewWeakSet(DefaultWeakProperties...) }

// Has reports whether name is weak.
func (w WeakSet) Has(name string) bool { return w[name] }

// Cloner copies subtrees into a target document.
type Cloner struct {
	target *Document
	weak   WeakSet

	srcRoot  Object
	subIndex *Index
	docIndex *Index
	copied   map[Object]Object
}

// NewCloner returns a cloner producing objects owned by target. A nil weak
// set treats no property as weak.
func NewCloner(target *Document, weak WeakSet) *Cloner {
	return &Cloner{target: target, weak: weak}
}

// Clone deep-copies obj into the target document and returns the detached
// copy. The fx:define blocks of copied objects are copied with them.
//
// References, copies and id expressions whose target lies inside obj, or
// was copied earlier in the same call, are copied as they are. Otherwise
// the target itself is cloned in their place; for id expressions the
// property becomes a complex property holding the clone, and weak
// properties are dropped instead. References to an object containing obj
// are dropped, as are complex properties they leave empty. Finally every
// id in the copy is renamed with [idmerge.Merge] against the ids of the
// target document, updating references inside the copy. With
// preserveRootID the id of the copy's root is kept unless the target
// already declares it.
//
// Clone returns [ErrCycle] when obj itself is a reference to an object
// containing it.
func (c *Cloner) Clone(obj Object, preserveRootID bool) (Object, error) {
	c.srcRoot = obj
	c.subIndex = NewIndex(obj)
	c.docIndex = obj.Document().Index()
	c.copied = make(map[Object]Object)
	defer func() { c.srcRoot, c.subIndex, c.docIndex, c.copied = nil, nil, nil, nil }()

	clone, err := c.object(obj)
	if err != nil {
		return nil, err
	}
	if clone == nil {
		return nil, fmt.Errorf("clone <%s>: %w", obj.Glue().Tag(), ErrCycle)
	}
	renamed := c.renameIDs(clone, preserveRootID)
	observability.Document().OnClone(context.Background(), len(c.copied), renamed)
	c.target.logger.Debug("cloned", "objects", len(c.copied), "renamed", renamed)
	return clone, nil
}

func (c *Cloner) lookup(id string) (Object, bool) {
	if o, ok := c.subIndex.Lookup(id); ok {
		return o, true
	}
	return c.docIndex.Lookup(id)
}

// refAction is what the cloner does with a reference.
type refAction int

const (
	// keepRef copies the reference as it is.
	keepRef refAction = iota
	// copyTarget clones the referenced object in place of the reference.
	copyTarget
	// dropRef drops the reference. Its target contains the cloned root and
	// cannot be copied.
	dropRef
)

// resolveRef decides how a reference to id is cloned.
func (c *Cloner) resolveRef(id string) (Object, refAction) {
	target, ok := c.lookup(id)
	switch {
	case !ok, Contains(c.srcRoot, target):
		return nil, keepRef
	case Contains(target, c.srcRoot):
		return nil, dropRef
	}
	if _, done := c.copied[target]; done {
		return nil, keepRef
	}
	return target, copyTarget
}

func (c *Cloner) object(o Object) (Object, error) {
	switch x := o.(type) {
	case *Instance:
		return c.instance(x)
	case *Collection:
		elem, err := c.element(x.elem)
		if err != nil {
			return nil, err
		}
		clone := newCollection(c.target, elem, x.typ)
		c.copied[x] = clone
		for _, it := range x.items {
			ci, err := c.object(it)
			if err != nil {
				return nil, err
			}
			if ci == nil {
				continue
			}
			if err := attachItem(clone, ci, -1); err != nil {
				return nil, err
			}
		}
		return clone, nil
	case *Intrinsic:
		if x.kind != Include {
			switch target, action := c.resolveRef(x.Source()); action {
			case copyTarget:
				return c.object(target)
			case dropRef:
				return nil, nil
			}
		}
		elem, err := c.element(x.elem)
		if err != nil {
			return nil, err
		}
		clone := newIntrinsic(c.target, elem, x.kind)
		clone.elem.SetAttr(markup.AttrSource, x.Source())
		c.copied[x] = clone
		return clone, nil
	}
	return nil, nil
}

// element returns a copy of e carrying its reserved attributes, its text
// and copies of its fx:define blocks.
func (c *Cloner) element(e *glue.Element) (*glue.Element, error) {
	out := glue.NewElement(c.target.glue, e.Tag())
	for _, a := range e.Attrs() {
		switch {
		case a.Name == markup.AttrXMLNS || strings.HasPrefix(a.Name, "xmlns:"):
		case markup.IsReservedAttr(a.Name),
			a.Name == markup.AttrType && e.Tag() == markup.TagRoot:
			out.SetAttr(a.Name, a.Value)
		}
	}
	out.SetText(e.Text())
	for _, child := range e.Children() {
		if child.Tag() != markup.TagDefine {
			continue
		}
		if err := out.Append(child.Clone(c.target.glue)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Cloner) instance(x *Instance) (Object, error) {
	elem, err := c.element(x.elem)
	if err != nil {
		return nil, err
	}
	clone := newInstance(c.target, elem, x.typ)
	c.copied[x] = clone
	for _, p := range propertiesInGlueOrder(x) {
		cp, err := c.property(p)
		if err != nil {
			return nil, err
		}
		if cp == nil {
			continue
		}
		if err := attachProperty(clone, cp); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

func (c *Cloner) property(p Property) (Property, error) {
	switch p := p.(type) {
	case *TextProperty:
		if id, ok := p.IDExpression(); ok {
			switch target, action := c.resolveRef(id); action {
			case dropRef:
				return nil, nil
			case copyTarget:
				if c.weak.Has(p.name) {
					return nil, nil
				}
				clone, err := c.object(target)
				if err != nil || clone == nil {
					return nil, err
				}
				cp := newComplexProperty(c.target, glue.NewElement(c.target.glue, p.name), p.name)
				cp.owner = p.owner
				if err := attachValue(cp, clone, -1); err != nil {
					return nil, err
				}
				return cp, nil
			}
		}
		valueTag := ""
		if p.valueElem != nil {
			valueTag = p.valueElem.Tag()
		}
		tp, err := newTextProperty(c.target, p.name, p.text, p.repr, valueTag, p.valueType)
		if err != nil {
			return nil, err
		}
		tp.owner = p.owner
		return tp, nil
	case *ComplexProperty:
		if c.weak.Has(p.name) && slices.ContainsFunc(p.values, c.isOutsideReference) {
			return nil, nil
		}
		cp := newComplexProperty(c.target, glue.NewElement(c.target.glue, p.name), p.name)
		cp.owner = p.owner
		cp.elem.SetSynthetic(p.elem.Synthetic())
		for _, v := range p.values {
			cv, err := c.object(v)
			if err != nil {
				return nil, err
			}
			if cv == nil {
				continue
			}
			if err := attachValue(cp, cv, -1); err != nil {
				return nil, err
			}
		}
		if len(cp.values) == 0 {
			return nil, nil
		}
		return cp, nil
	}
	return nil, nil
}

func (c *Cloner) isOutsideReference(o Object) bool {
	x, ok := o.(*Intrinsic)
	if !ok || x.kind == Include {
		return false
	}
	_, action := c.resolveRef(x.Source())
	return action == copyTarget
}

// renameIDs merges the ids of clone into the target namespace and returns
// the number of renamed ids.
func (c *Cloner) renameIDs(clone Object, preserveRootID bool) int {
	idx := c.target.Index()
	existing := append(idx.IDs(), idx.DefinedIDs()...)
	var imported []string
	Walk(clone, func(o Object) bool {
		if id := o.ID(); id != "" {
			imported = append(imported, id)
		}
		return true
	})
	defined := definedIDs(clone.Glue())
	for id := range defined {
		imported = append(imported, id)
	}
	slices.Sort(imported[len(imported)-len(defined):])
	if rootID := clone.ID(); preserveRootID && rootID != "" && !slices.Contains(existing, rootID) {
		existing = append(existing, rootID)
		imported = slices.DeleteFunc(imported, func(id string) bool { return id == rootID })
	}

	mapping := idmerge.Merge(existing, imported)
	renamed := 0
	for old, id := range mapping {
		if old != id {
			renamed++
		}
	}
	if renamed == 0 {
		return 0
	}
	rename := func(id string) (string, bool) {
		n, ok := mapping[id]
		return n, ok && n != id
	}
	for id, e := range defined {
		if n, ok := rename(id); ok {
			e.SetAttr(markup.AttrID, n)
		}
	}
	Walk(clone, func(o Object) bool {
		if n, ok := rename(o.ID()); ok {
			o.base().setID(n)
		}
		switch x := o.(type) {
		case *Intrinsic:
			if x.kind != Include {
				if n, ok := rename(x.Source()); ok {
					x.setSource(n)
				}
			}
		case *Instance:
			for _, p := range x.props {
				tp, ok := p.(*TextProperty)
				if !ok {
					continue
				}
				if id, ok := tp.IDExpression(); ok {
					if n, ok := rename(id); ok {
						tp.setValue(markup.MakeIDExpression(n))
					}
				}
			}
		}
		return true
	})
	return renamed
}

// propertiesInGlueOrder returns attribute properties in attribute order
// followed by element properties in element order.
func propertiesInGlueOrder(inst *Instance) []Property {
	out := make([]Property, 0, len(inst.props))
	for _, a := range inst.elem.Attrs() {
		if p, ok := inst.props[a.Name].(*TextProperty); ok && p.repr == AsAttribute {
			out = append(out, p)
		}
	}
	var elems []Property
	for _, p := range inst.props {
		if p.Glue() != nil {
			elems = append(elems, p)
		}
	}
	slices.SortFunc(elems, func(a, b Property) int { return a.Glue().Index() - b.Glue().Index() })
	return append(out, elems...)
}
