package cli

import (
	"strings"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/fxom"
)

// target is an insertion point given as "<id>/<property>". A collection id
// needs no property.
type target struct {
	id       string
	property string
}

// parseTarget parses an --into value.
func parseTarget(s string) (target, error) {
	id, prop, _ := strings.Cut(s, "/")
	if id == "" {
		return target{}, gerr.New(gerr.ErrCodeInvalidInput, "invalid target %q (want <id>/<property>)", s)
	}
	return target{id: id, property: prop}, nil
}

func (t target) String() string {
	if t.property == "" {
		return t.id
	}
	return t.id + "/" + t.property
}

// attach appends obj at t in d. A missing complex property is created.
func attach(d *fxom.Document, t target, obj fxom.Object) error {
	owner, ok := d.Index().Lookup(t.id)
	if !ok {
		return gerr.New(gerr.ErrCodeNotFound, "no object with id %q", t.id)
	}
	switch o := owner.(type) {
	case *fxom.Collection:
		if t.property != "" {
			return gerr.New(gerr.ErrCodeInvalidInput, "%q is a collection and has no properties", t.id)
		}
		return o.AddItem(obj, -1)
	case *fxom.Instance:
		if t.property == "" {
			return gerr.New(gerr.ErrCodeInvalidInput, "target %q needs a property", t.id)
		}
		switch p := o.Property(t.property).(type) {
		case *fxom.ComplexProperty:
			return p.AddValue(obj, -1)
		case *fxom.TextProperty:
			return gerr.New(gerr.ErrCodeInvalidInput, "%s is a text property", t)
		}
		p, err := fxom.NewComplexProperty(d, t.property, obj)
		if err != nil {
			return err
		}
		return o.AddProperty(p)
	}
	return gerr.New(gerr.ErrCodeInvalidInput, "%q cannot hold values", t.id)
}

// objectKind returns a short kind name and the type or source of o.
func objectKind(o fxom.Object) (kind, detail string) {
	switch x := o.(type) {
	case *fxom.Instance:
		if !x.Resolved() {
			return "unresolved", x.Tag()
		}
		return "instance", x.Type()
	case *fxom.Collection:
		return "collection", x.Type()
	case *fxom.Intrinsic:
		return x.Kind().String(), x.Source()
	}
	return "", ""
}
