// Package catalog implements [instantiate.Service] from a table of type
// descriptions loaded from TOML.
//
// Instantiated objects are [*Value] maps of property values and sequence
// containers are [*List] values. Property values are strings, nested
// values, []any for list-valued properties, or nil for the null literal
// and unresolved objects. The catalog never converts text.
//
// A catalog file looks like:
//
//	weak = ["labelFor", "clip"]
//
//	[[types]]
//	name = "javafx.scene.layout.VBox"
//	properties = ["spacing", "alignment"]
//	default_property = "children"
//	lists = ["children"]
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gluedoc/pkg/instantiate"
)

//go:embed default.toml
var defaultCatalog []byte

// Catalog is a set of known types. It is immutable once loaded and safe
// for concurrent use.
type Catalog struct {
	types map[string]*typeDef
	weak  []string
}

type catalogFile struct {
	Weak  []string  `toml:"weak"`
	Types []typeDef `toml:"types"`
}

type typeDef struct {
	Name                string   `toml:"name"`
	Properties          []string `toml:"properties"`
	DefaultProperty     string   `toml:"default_property"`
	Lists               []string `toml:"lists"`
	Collection          bool     `toml:"collection"`
	CollectionFactories []string `toml:"collection_factories"`
	Selection           string   `toml:"selection"`
	Grid                *gridDef `toml:"grid"`
}

type gridDef struct {
	Columns constraintDef `toml:"columns"`
	Rows    constraintDef `toml:"rows"`
}

type constraintDef struct {
	Property string `toml:"property"`
	Type     string `toml:"type"`
	Value    string `toml:"value"`
}

var _ instantiate.Service = (*Catalog)(nil)

// Parse reads a catalog from TOML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{types: make(map[string]*typeDef, len(f.Types)), weak: f.Weak}
	for i := range f.Types {
		t := &f.Types[i]
		if t.Name == "" {
			return nil, fmt.Errorf("catalog type %d: missing name", i)
		}
		if _, dup := c.types[t.Name]; dup {
			return nil, fmt.Errorf("catalog type %s: declared twice", t.Name)
		}
		if t.Collection && t.DefaultProperty != "" {
			return nil, fmt.Errorf("catalog type %s: collections have no default property", t.Name)
		}
		t.normalize()
		c.types[t.Name] = t
	}
	return c, nil
}

// LoadFile reads a catalog from a TOML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog of common layout and control
// types.
func DefaultCatalog() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog: %v", err))
	}
	return c
}

// Weak returns the property names the catalog declares as weak
// back-references. The result is nil when the catalog declares none.
func (c *Catalog) Weak() []string { return slices.Clone(c.weak) }

// Types returns every known type name, sorted.
func (c *Catalog) Types() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TypeInfo implements [instantiate.Service].
func (c *Catalog) TypeInfo(fqn string) (instantiate.TypeInfo, bool) {
	t, ok := c.types[fqn]
	if !ok {
		return instantiate.TypeInfo{}, false
	}
	return t.info(), true
}

// PropertyValue implements [instantiate.Service].
func (c *Catalog) PropertyValue(v any, name string) (any, bool) {
	if val, ok := v.(*Value); ok {
		return val.Get(name)
	}
	return nil, false
}

// normalize folds the default property, list properties and grid
// constraint properties into the declared property set.
func (t *typeDef) normalize() {
	if t.DefaultProperty != "" {
		t.Properties = append(t.Properties, t.DefaultProperty)
	}
	t.Properties = append(t.Properties, t.Lists...)
	if t.Selection != "" {
		t.Properties = append(t.Properties, t.Selection)
	}
	if t.Grid != nil {
		for _, cd := range []constraintDef{t.Grid.Columns, t.Grid.Rows} {
			if cd.Property == "" {
				continue
			}
			t.Properties = append(t.Properties, cd.Property)
			if !slices.Contains(t.Lists, cd.Property) {
				t.Lists = append(t.Lists, cd.Property)
			}
		}
	}
	slices.Sort(t.Properties)
	t.Properties = slices.Compact(t.Properties)
}

func (t *typeDef) isList(prop string) bool {
	return slices.Contains(t.Lists, prop)
}

func (t *typeDef) info() instantiate.TypeInfo {
	ti := instantiate.TypeInfo{
		Name:            t.Name,
		Properties:      slices.Clone(t.Properties),
		DefaultProperty: t.DefaultProperty,
		Collection:      t.Collection,
		Selection:       t.Selection,
	}
	if t.Grid != nil {
		ti.Grid = &instantiate.GridInfo{
			Columns: instantiate.Constraint{Property: t.Grid.Columns.Property, Type: t.Grid.Columns.Type, ValueProperty: t.Grid.Columns.Value},
			Rows:    instantiate.Constraint{Property: t.Grid.Rows.Property, Type: t.Grid.Rows.Type, ValueProperty: t.Grid.Rows.Value},
		}
	}
	return ti
}
