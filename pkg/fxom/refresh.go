package fxom

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/instantiate"
	"github.com/matzehuels/gluedoc/pkg/observability"
)

// ErrShapeMismatch is the cause of refresh failures where the rebuilt
// object graph differs in shape from the live one.
var ErrShapeMismatch = errors.New("rebuilt object graph differs from live graph")

// maxRefreshPasses bounds the rebuild and normalize cycles of one refresh.
const maxRefreshPasses = 3

// Refresh rebuilds the instantiated values of the document from its glue
// tree.
//
// The current state is serialized and loaded into a throwaway document.
// Its values are copied onto the live nodes, which keep their identity,
// walking both graphs in lock-step. The live document is then normalized
// and rebuilt again when that changed it. The selection of containers
// showing one child at a time is carried over. Every refresh increments
// the revision, also when nothing changed.
//
// A failed refresh returns an INCONSISTENT error carrying the serialized
// text, which is also written to the document's dump store. The document
// must not be used after such a failure.
func (d *Document) Refresh() error {
	if d.refreshing {
		return nil
	}
	start := time.Now()
	d.refreshing = true
	defer func() { d.refreshing = false }()

	d.observer.BeforeRefresh(d)
	err := d.refresh()
	if err == nil {
		d.revision++
		d.dirty = false
	}
	observability.Document().OnRefresh(context.Background(), d.location, d.revision, time.Since(start), err)
	d.observer.AfterRefresh(d)
	return err
}

func (d *Document) refresh() error {
	d.invalidate()
	if d.root == nil {
		d.unresolved = nil
		return nil
	}
	snap := d.snapshotSelection()
	for pass := 1; ; pass++ {
		if err := d.rebuild(); err != nil {
			return err
		}
		if pass == maxRefreshPasses || Normalize(d) == 0 {
			break
		}
		d.logger.Debug("normalized during refresh", "location", d.location, "pass", pass)
	}
	d.restoreSelection(snap)
	return nil
}

func (d *Document) rebuild() error {
	d.prepareForSave()
	text := d.glue.Bytes()
	fresh, err := build(context.Background(), text, d.options())
	if err != nil {
		return d.inconsistent(text, "reload", err)
	}
	if err := graft(d.root, fresh.root); err != nil {
		return d.inconsistent(text, "graft", err)
	}
	d.invalidate()
	d.unresolved = collectUnresolved(d)
	return nil
}

func (d *Document) inconsistent(text []byte, stage string, cause error) error {
	key, err := d.dumps.Put(context.Background(), d.location, cause.Error(), text)
	if err != nil {
		d.logger.Warn("dump failed", "location", d.location, "err", err)
	}
	d.logger.Error("refresh failed", "location", d.location, "stage", stage, "dump", key, "err", cause)
	return gerr.Wrap(gerr.ErrCodeInconsistent, cause, "refresh %s: %s", d.location, stage).WithDump(text)
}

// graft copies the values of a rebuilt graph onto the live graph of the
// same shape.
func graft(live, fresh Object) error {
	switch l := live.(type) {
	case *Instance:
		f, ok := fresh.(*Instance)
		if !ok {
			return mismatch(live, fresh, "kind")
		}
		l.value, l.typ = f.value, f.typ
		if len(l.props) != len(f.props) {
			return mismatch(live, fresh, "property count")
		}
		for name, lp := range l.props {
			fp, ok := f.props[name]
			if !ok {
				return mismatch(live, fresh, "property "+name)
			}
			if err := graftProperty(lp, fp); err != nil {
				return err
			}
		}
	case *Collection:
		f, ok := fresh.(*Collection)
		if !ok {
			return mismatch(live, fresh, "kind")
		}
		if len(l.items) != len(f.items) {
			return mismatch(live, fresh, "item count")
		}
		l.value, l.typ = f.value, f.typ
		for i := range l.items {
			if err := graft(l.items[i], f.items[i]); err != nil {
				return err
			}
		}
	case *Intrinsic:
		f, ok := fresh.(*Intrinsic)
		if !ok || f.kind != l.kind {
			return mismatch(live, fresh, "kind")
		}
		l.value = f.value
	}
	return nil
}

func graftProperty(live, fresh Property) error {
	switch lp := live.(type) {
	case *TextProperty:
		if fp, ok := fresh.(*ComplexProperty); ok && lp.repr == AsValueElement {
			return expandValueElement(lp, fp)
		}
		fp, ok := fresh.(*TextProperty)
		if !ok || fp.repr != lp.repr {
			return fmt.Errorf("%w: property %s of <%s> changed representation", ErrShapeMismatch, lp.name, lp.inst.elem.Tag())
		}
		lp.owner, lp.valueType, lp.text = fp.owner, fp.valueType, fp.text
	case *ComplexProperty:
		if fp, ok := fresh.(*TextProperty); ok && fp.repr == AsValueElement {
			return collapseValueElement(lp, fp)
		}
		fp, ok := fresh.(*ComplexProperty)
		if !ok || len(fp.values) != len(lp.values) {
			return fmt.Errorf("%w: property %s of <%s> changed values", ErrShapeMismatch, lp.name, lp.inst.elem.Tag())
		}
		lp.owner = fp.owner
		for i := range lp.values {
			if err := graft(lp.values[i], fp.values[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// collapseValueElement replaces a complex property holding one bare value
// object, such as <String fx:value="x"/>, with the value element text
// property the loader reads it as. The value object is kept so a later
// expansion restores it.
func collapseValueElement(live *ComplexProperty, fresh *TextProperty) error {
	if len(live.values) != 1 || !isValueElement(live.values[0]) {
		return fmt.Errorf("%w: property %s of <%s> changed representation", ErrShapeMismatch, live.name, live.inst.elem.Tag())
	}
	v := live.values[0].(*Instance)
	tp := &TextProperty{repr: AsValueElement, text: fresh.text, valueElem: v.elem, valueType: fresh.valueType, valueObj: v}
	tp.propertyBase = propertyBase{self: tp, name: live.name, doc: live.doc, elem: live.elem, inst: live.inst, owner: fresh.owner}
	live.inst.props[live.name] = tp
	v.parentProperty = nil
	live.values, live.inst = nil, nil
	return nil
}

// expandValueElement is the inverse of collapseValueElement, for value
// elements that gained attributes making them an object.
func expandValueElement(live *TextProperty, fresh *ComplexProperty) error {
	f, ok := fresh.values[0].(*Instance)
	if len(fresh.values) != 1 || !ok || len(f.props) > 0 {
		return fmt.Errorf("%w: property %s of <%s> changed representation", ErrShapeMismatch, live.name, live.inst.elem.Tag())
	}
	v := live.valueObj
	if v == nil || v.elem != live.valueElem {
		v = newInstance(live.doc, live.valueElem, f.typ)
	}
	v.typ, v.value = f.typ, f.value
	cp := newComplexProperty(live.doc, live.elem, live.name)
	cp.owner, cp.inst, cp.values = fresh.owner, live.inst, []Object{v}
	v.parentProperty = cp
	live.inst.props[live.name] = cp
	live.inst, live.valueObj = nil, nil
	return nil
}

func mismatch(live, fresh Object, what string) error {
	return fmt.Errorf("%w: <%s> %s (live %T, rebuilt %T)", ErrShapeMismatch, live.Glue().Tag(), what, live, fresh)
}

// selection records which descendant a selection holder showed.
type selection struct {
	holder   Object
	selected Object
}

func (d *Document) snapshotSelection() []selection {
	var out []selection
	Walk(d.root, func(o Object) bool {
		h, ok := o.Value().(instantiate.SelectionHolder)
		if !ok {
			return true
		}
		sel := h.Selected()
		if sel == nil {
			return true
		}
		Walk(o, func(c Object) bool {
			if c != o && sameValue(c.Value(), sel) {
				out = append(out, selection{holder: o, selected: c})
				return false
			}
			return true
		})
		return true
	})
	return out
}

func (d *Document) restoreSelection(snap []selection) {
	for _, s := range snap {
		if !d.inTree(s.holder.Glue()) || !s.holder.Glue().Contains(s.selected.Glue()) {
			continue
		}
		h, ok := s.holder.Value().(instantiate.SelectionHolder)
		if !ok || s.selected.Value() == nil {
			continue
		}
		h.Select(s.selected.Value())
	}
}

// sameValue compares instantiated values by identity.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	if ta.Kind() != reflect.Pointer {
		return false
	}
	return a == b
}
