// Package pkg provides the core libraries for gluedoc live markup documents.
//
// # Overview
//
// gluedoc keeps a declarative UI markup document and the object graph
// instantiated from it in sync. Edits go through the object graph; each
// completed edit serializes the markup, re-instantiates it and grafts the
// fresh values onto the live objects so both views stay consistent.
//
// # Architecture
//
// The typical data flow:
//
//	markup text
//	     ↓
//	[glue] package (ordered element tree, header instructions)
//	     ↓
//	[instantiate] service (events per element, runtime values)
//	     ↓
//	[fxom] package (object graph paired with the glue tree)
//	     ↓
//	edits → refresh → save
//
// # Quick Start
//
// Load a document, clone a subtree into it and save it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/gluedoc/pkg/fxom"
//	    "github.com/matzehuels/gluedoc/pkg/instantiate/catalog"
//	)
//
//	d, _ := fxom.LoadFile(ctx, "form.fxml", fxom.Options{Service: catalog.DefaultCatalog()})
//	row, _ := d.Index().Lookup("row")
//	clone, _ := fxom.NewCloner(d, fxom.DefaultWeakSet()).Clone(row, false)
//	children := d.Root().(*fxom.Instance).Property("children").(*fxom.ComplexProperty)
//	_ = children.AddValue(clone, -1)
//	_ = d.SaveFile("form.fxml")
//
// # Main Packages
//
// [glue] - Ordered, lossless element tree with a canonical writer.
//
// [markup] - Names of the reserved tags, attributes and id expressions.
//
// [instantiate] - The instantiation service contract, class resolution and
// resources. [instantiate/catalog] is a service driven by TOML type
// catalogs.
//
// [fxom] - The live object graph: loader, normalizer, saver, refresher, id
// index and cloner. [fxom/idmerge] renames colliding ids.
//
// [archive] - Self-contained subtrees as portable YAML archives.
//
// [clipboard] - Persistent archive store on bbolt.
//
// [dump] - Diagnostics store for the markup of failed refreshes.
//
// [observability] - Hooks for loads, refreshes, saves, clones and clipboard
// access.
//
// [render/nodelink] - Graphviz diagrams of object graphs.
//
// [watch] - Reloads a document when its file changes.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./...               # All tests
//	go test ./pkg/fxom/...      # Specific package
//	go test -run Example ./...  # Examples only
//
// [glue]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/glue
// [markup]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/markup
// [instantiate]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/instantiate
// [instantiate/catalog]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/instantiate/catalog
// [fxom]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/fxom
// [fxom/idmerge]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/fxom/idmerge
// [archive]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/archive
// [clipboard]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/clipboard
// [dump]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/dump
// [observability]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/observability
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/render/nodelink
// [watch]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/watch
// [errors]: https://pkg.go.dev/github.com/matzehuels/gluedoc/pkg/errors
package pkg
