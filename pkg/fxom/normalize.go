package fxom

import (
	"strings"

	"github.com/matzehuels/gluedoc/pkg/instantiate"
)

// Normalize rewrites markup idioms the object graph must not keep and
// returns the number of changes. It relies on instantiated values, so it
// should run on a refreshed document; the caller refreshes when the count
// is non-zero. Running it again without edits returns zero.
//
// Two rewrites are applied:
//
//   - Null properties. A text property whose instantiated value is nil is
//     removed. A single-valued complex property whose value is a reference
//     the service could not resolve yet (a forward reference) takes the
//     referenced object in place of the reference: the object leaves the
//     position where it was declared and the reference is deleted. When
//     the referenced id does not exist the property is removed.
//   - Grid constraints. On grid containers a text constraint property
//     holding a comma-separated array ("25,50,25") is expanded into one
//     constraint object per column or row. The count is the larger of the
//     array length and the grid's runtime column or row count.
func Normalize(d *Document) int {
	if d.root == nil || d.service == nil {
		return 0
	}
	n := normalizeNullProperties(d)
	n += normalizeGrids(d)
	if n > 0 {
		d.invalidate()
		d.dirty = true
	}
	return n
}

func instances(root Object) []*Instance {
	var out []*Instance
	Walk(root, func(o Object) bool {
		if inst, ok := o.(*Instance); ok {
			out = append(out, inst)
		}
		return true
	})
	return out
}

func normalizeNullProperties(d *Document) int {
	changes := 0
	for _, inst := range instances(d.root) {
		if inst.value == nil {
			continue
		}
		for _, p := range inst.Properties() {
			v, ok := d.service.PropertyValue(inst.value, p.Name())
			if !ok || v != nil {
				continue
			}
			switch p := p.(type) {
			case *TextProperty:
				detachProperty(p)
				changes++
			case *ComplexProperty:
				if len(p.values) != 1 {
					continue
				}
				ref, ok := p.values[0].(*Intrinsic)
				if !ok || ref.kind != Reference {
					continue
				}
				target, found := d.Index().Lookup(ref.Source())
				switch {
				case !found:
					detachProperty(p)
					changes++
				case target != d.root && !target.Glue().Contains(p.elem):
					if err := replaceReference(ref, target); err != nil {
						d.logger.Warn("forward reference not resolved", "property", p.name, "source", ref.Source(), "err", err)
						continue
					}
					changes++
				}
			}
		}
	}
	return changes
}

// replaceReference moves target into the position of ref and deletes ref.
// The owner of target loses it; a property left empty is removed.
func replaceReference(ref *Intrinsic, target Object) error {
	p := ref.parentProperty
	if p == nil {
		return ErrNotChild
	}
	i := p.IndexOf(ref)
	detachObject(target)
	if err := p.elem.Insert(target.Glue(), ref.elem.Index()); err != nil {
		return err
	}
	ref.elem.Remove()
	ref.parentProperty = nil
	p.values[i] = target
	target.base().parentProperty = p
	p.doc.invalidate()
	return nil
}

func normalizeGrids(d *Document) int {
	changes := 0
	for _, inst := range instances(d.root) {
		if !inst.Resolved() || inst.value == nil {
			continue
		}
		ti, ok := d.service.TypeInfo(inst.typ)
		if !ok || ti.Grid == nil {
			continue
		}
		shape, ok := inst.value.(instantiate.GridShape)
		if !ok {
			continue
		}
		axes := []struct {
			c     instantiate.Constraint
			count int
		}{
			{ti.Grid.Columns, shape.ColumnCount()},
			{ti.Grid.Rows, shape.RowCount()},
		}
		for _, axis := range axes {
			if axis.c.Property == "" || axis.c.Type == "" {
				continue
			}
			tp, ok := inst.props[axis.c.Property].(*TextProperty)
			if !ok {
				continue
			}
			if err := expandConstraints(d, tp, axis.c, axis.count); err != nil {
				d.logger.Warn("grid constraints not expanded", "property", axis.c.Property, "err", err)
				continue
			}
			changes++
		}
	}
	return changes
}

func expandConstraints(d *Document, tp *TextProperty, c instantiate.Constraint, count int) error {
	entries := splitArray(tp.text)
	n := max(len(entries), count)
	if n == 0 {
		detachProperty(tp)
		return nil
	}
	objs := make([]Object, n)
	for i := range objs {
		ci := NewInstance(d, c.Type)
		if i < len(entries) && entries[i] != "" && c.ValueProperty != "" {
			vp, err := NewTextProperty(d, c.ValueProperty, entries[i], AsAttribute)
			if err != nil {
				return err
			}
			if err := attachProperty(ci, vp); err != nil {
				return err
			}
		}
		objs[i] = ci
	}
	cp, err := NewComplexProperty(d, c.Property, objs...)
	if err != nil {
		return err
	}
	return replaceProperty(tp, cp)
}

func splitArray(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
