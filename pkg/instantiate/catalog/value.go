package catalog

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/gluedoc/pkg/instantiate"
	"github.com/matzehuels/gluedoc/pkg/markup"
)

// Value is an instantiated object.
type Value struct {
	Type  string
	Props map[string]any

	def      *typeDef
	selected any
}

// List is an instantiated sequence container.
type List struct {
	Type  string
	Items []any
}

var (
	_ instantiate.SelectionHolder = (*Value)(nil)
	_ instantiate.GridShape       = (*Value)(nil)
)

func newValue(def *typeDef) *Value {
	return &Value{Type: def.Name, Props: make(map[string]any), def: def}
}

// Get returns a property value. The boolean reports whether the property
// is set, including explicitly set to nil.
func (v *Value) Get(name string) (any, bool) {
	val, ok := v.Props[name]
	return val, ok
}

// Items returns the values held by a property as a list. A single value
// yields a one-element list and an unset property yields nil.
func (v *Value) Items(name string) []any {
	switch x := v.Props[name].(type) {
	case nil:
		return nil
	case []any:
		return x
	default:
		return []any{x}
	}
}

// Selected returns the item currently shown by a container with a
// selection property. The first item is selected by default.
func (v *Value) Selected() any {
	if v.def == nil || v.def.Selection == "" {
		return nil
	}
	items := v.Items(v.def.Selection)
	if v.selected != nil && containsValue(items, v.selected) {
		return v.selected
	}
	if len(items) > 0 {
		return items[0]
	}
	return nil
}

// Select makes x the selected item and reports whether x is one of the
// items.
func (v *Value) Select(x any) bool {
	if v.def == nil || v.def.Selection == "" {
		return false
	}
	if !containsValue(v.Items(v.def.Selection), x) {
		return false
	}
	v.selected = x
	return true
}

// ColumnCount returns the number of columns used by a grid: the larger of
// the number of column constraints and the extent of the children.
func (v *Value) ColumnCount() int {
	return v.gridCount(func(g *gridDef) string { return g.Columns.Property }, "columnIndex", "columnSpan")
}

// RowCount returns the number of rows used by a grid.
func (v *Value) RowCount() int {
	return v.gridCount(func(g *gridDef) string { return g.Rows.Property }, "rowIndex", "rowSpan")
}

func (v *Value) gridCount(constraints func(*gridDef) string, index, span string) int {
	if v.def == nil || v.def.Grid == nil {
		return 0
	}
	n := 0
	if _, ok := v.Props[constraints(v.def.Grid)].([]any); ok {
		n = len(v.Items(constraints(v.def.Grid)))
	}
	owner := markup.SimpleName(v.Type)
	for _, child := range v.Items(v.def.DefaultProperty) {
		cv, ok := child.(*Value)
		if !ok {
			continue
		}
		extent := intProp(cv, owner+"."+index, 0) + intProp(cv, owner+"."+span, 1)
		n = max(n, extent)
	}
	return n
}

func intProp(v *Value, name string, def int) int {
	s, ok := v.Props[name].(string)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func containsValue(items []any, x any) bool {
	for _, it := range items {
		if same(it, x) {
			return true
		}
	}
	return false
}

// same compares by identity for pointers and by value otherwise.
func same(a, b any) bool {
	switch x := a.(type) {
	case *Value:
		y, ok := b.(*Value)
		return ok && x == y
	case *List:
		y, ok := b.(*List)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	}
	return a == nil && b == nil
}

// shallowCopy returns a copy of v sharing nested values.
func shallowCopy(v any) any {
	switch x := v.(type) {
	case *Value:
		return &Value{Type: x.Type, Props: maps.Clone(x.Props), def: x.def}
	case *List:
		return &List{Type: x.Type, Items: slices.Clone(x.Items)}
	}
	return v
}

// Equal reports whether two value graphs are structurally equal. Runtime
// state such as the selection is ignored. Graphs may share values and
// contain cycles.
func Equal(a, b any) bool {
	return equal(a, b, make(map[[2]any]bool))
}

func equal(a, b any, seen map[[2]any]bool) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i], seen) {
				return false
			}
		}
		return true
	case *Value:
		y, ok := b.(*Value)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		key := [2]any{x, y}
		if seen[key] {
			return true
		}
		seen[key] = true
		if x.Type != y.Type || len(x.Props) != len(y.Props) {
			return false
		}
		for k, xv := range x.Props {
			yv, ok := y.Props[k]
			if !ok || !equal(xv, yv, seen) {
				return false
			}
		}
		return true
	case *List:
		y, ok := b.(*List)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		key := [2]any{x, y}
		if seen[key] {
			return true
		}
		seen[key] = true
		return x.Type == y.Type && equal(x.Items, y.Items, seen)
	}
	return false
}
