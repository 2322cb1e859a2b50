package fxom

import (
	"slices"

	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/markup"
)

// Index maps ids to the objects declaring them and tracks every node
// referring to an id. Ids declared inside fx:define blocks have no object;
// they are tracked by element. It is a snapshot; [Document.Index] rebuilds
// it after mutations.
type Index struct {
	ids         map[string]Object
	order       []string
	defined     map[string]*glue.Element
	intrinsics  []*Intrinsic
	expressions []*TextProperty
}

// NewIndex indexes the subtree rooted at root. When an id is declared more
// than once the first declaration in walk order wins.
func NewIndex(root Object) *Index {
	x := &Index{ids: make(map[string]Object), defined: make(map[string]*glue.Element)}
	if root == nil {
		return x
	}
	Walk(root, func(o Object) bool {
		if id := o.ID(); id != "" {
			if _, dup := x.ids[id]; !dup {
				x.ids[id] = o
				x.order = append(x.order, id)
			}
		}
		switch n := o.(type) {
		case *Intrinsic:
			if n.kind != Include {
				x.intrinsics = append(x.intrinsics, n)
			}
		case *Instance:
			for _, p := range n.Properties() {
				if tp, ok := p.(*TextProperty); ok {
					if _, ok := tp.IDExpression(); ok {
						x.expressions = append(x.expressions, tp)
					}
				}
			}
		}
		return true
	})
	for id, e := range definedIDs(root.Glue()) {
		if _, dup := x.ids[id]; !dup {
			x.defined[id] = e
		}
	}
	return x
}

// definedIDs returns the ids declared inside fx:define blocks of the
// subtree rooted at e.
func definedIDs(e *glue.Element) map[string]*glue.Element {
	out := make(map[string]*glue.Element)
	e.Walk(func(d *glue.Element) bool {
		if d.Tag() != markup.TagDefine {
			return true
		}
		d.Walk(func(c *glue.Element) bool {
			if id, ok := c.Attr(markup.AttrID); ok && id != "" {
				if _, dup := out[id]; !dup {
					out[id] = c
				}
			}
			return true
		})
		return false
	})
	return out
}

// Lookup returns the object declaring id.
func (x *Index) Lookup(id string) (Object, bool) {
	o, ok := x.ids[id]
	return o, ok
}

// IDs returns every declared id, sorted.
func (x *Index) IDs() []string {
	ids := slices.Clone(x.order)
	slices.Sort(ids)
	return ids
}

// Defined returns the element declaring id inside an fx:define block.
func (x *Index) Defined(id string) (*glue.Element, bool) {
	e, ok := x.defined[id]
	return e, ok
}

// DefinedIDs returns the ids declared inside fx:define blocks, sorted.
func (x *Index) DefinedIDs() []string {
	ids := make([]string, 0, len(x.defined))
	for id := range x.defined {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Declares reports whether id is declared by an object or inside an
// fx:define block.
func (x *Index) Declares(id string) bool {
	if _, ok := x.ids[id]; ok {
		return true
	}
	_, ok := x.defined[id]
	return ok
}

// Len returns the number of declared ids.
func (x *Index) Len() int { return len(x.order) }

// Intrinsics returns the references or copies whose source is id. An
// empty id matches every source.
func (x *Index) Intrinsics(kind IntrinsicKind, id string) []*Intrinsic {
	var out []*Intrinsic
	for _, in := range x.intrinsics {
		if in.kind == kind && (id == "" || in.Source() == id) {
			out = append(out, in)
		}
	}
	return out
}

// Expressions returns the text properties whose value is "$id". An empty
// id matches every expression.
func (x *Index) Expressions(id string) []*TextProperty {
	var out []*TextProperty
	for _, tp := range x.expressions {
		if ref, _ := tp.IDExpression(); id == "" || ref == id {
			out = append(out, tp)
		}
	}
	return out
}

// References returns every id referred to inside the indexed subtree by
// references, copies or id expressions, sorted and without duplicates.
func (x *Index) References() []string {
	var refs []string
	for _, in := range x.intrinsics {
		refs = append(refs, in.Source())
	}
	for _, tp := range x.expressions {
		id, _ := tp.IDExpression()
		refs = append(refs, id)
	}
	slices.Sort(refs)
	return slices.Compact(refs)
}

// IsSelfContained reports whether every reference, copy and id expression
// inside obj targets an object declared inside obj.
func IsSelfContained(obj Object) bool {
	return len(ExternalReferences(obj)) == 0
}

// ExternalReferences returns the ids referred to inside obj that are not
// declared inside obj, by an object or an fx:define block.
func ExternalReferences(obj Object) []string {
	x := NewIndex(obj)
	var out []string
	for _, id := range x.References() {
		if !x.Declares(id) {
			out = append(out, id)
		}
	}
	return out
}
