package fxom

import (
	"context"
	"os"
	"slices"

	"github.com/matzehuels/gluedoc/pkg/markup"
	"github.com/matzehuels/gluedoc/pkg/observability"
)

// Save serializes the document.
//
// Before writing, the root element gets the default and fx namespace
// declarations and the import instructions are recomputed: one wildcard
// import per package of every type reachable from the root, plus the
// built-in package, sorted. They replace the previous imports at the
// position of the first one. Documents with unresolved types keep their
// previous imports as well, since the types behind them are unknown.
func (d *Document) Save() ([]byte, error) {
	d.prepareForSave()
	data := d.glue.Bytes()
	observability.Document().OnSave(context.Background(), d.location, len(data))
	return data, nil
}

// SaveFile writes the serialized document to path.
func (d *Document) SaveFile(path string) error {
	data, err := d.Save()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (d *Document) prepareForSave() {
	root := d.glue.Root()
	if root == nil {
		return
	}
	root.SetAttr(markup.AttrXMLNS, markup.NamespaceDefault)
	root.SetAttr(markup.AttrXMLNSFX, markup.NamespaceFX)
	d.glue.SetInstructions(markup.InstructionImport, d.computeImports())
}

func (d *Document) computeImports() []string {
	pkgs := map[string]bool{markup.BuiltinPackage: true}
	add := func(fqn string) {
		if pkg := markup.PackageOf(fqn); pkg != "" {
			pkgs[pkg] = true
		}
	}
	unresolved := false
	Walk(d.root, func(o Object) bool {
		switch x := o.(type) {
		case *Instance:
			if x.Resolved() {
				add(x.typ)
			} else {
				unresolved = true
			}
			for _, p := range x.props {
				add(p.StaticOwner())
				if tp, ok := p.(*TextProperty); ok && tp.repr == AsValueElement {
					add(tp.valueType)
				}
			}
		case *Collection:
			add(x.typ)
		}
		return true
	})

	imports := make([]string, 0, len(pkgs))
	for pkg := range pkgs {
		imports = append(imports, pkg+".*")
	}
	slices.Sort(imports)
	if unresolved {
		for _, imp := range d.glue.Instructions(markup.InstructionImport) {
			if !slices.Contains(imports, imp) {
				imports = append(imports, imp)
			}
		}
	}
	return imports
}

// Text returns the serialized document as a string.
func (d *Document) Text() string {
	data, _ := d.Save()
	return string(data)
}
