// Package fxom is a live document model for markup-described object graphs.
//
// A [Document] keeps two synchronized representations of the same markup:
// a glue tree ([glue.Document]) that preserves the exact element layout, and
// an object graph of [Object] and [Property] nodes paired with the glue
// elements and carrying the values produced by an
// [instantiate.Service].
//
// # Nodes
//
// Objects come in three kinds:
//
//   - [Instance]: a typed value with properties
//   - [Collection]: a typed sequence of objects
//   - [Intrinsic]: an include, reference or copy placeholder
//
// Properties are either a [TextProperty] holding one string or a
// [ComplexProperty] holding an ordered, non-empty list of objects. An
// object is owned by one complex property, one collection, or is the
// document root. A property is owned by one instance.
//
// # Mutation
//
// Every mutation updates the glue tree and the object graph in one step
// and then rebuilds the instantiated values with [Document.Refresh]. Wrap
// related edits in [Document.BeginUpdate] and [Document.EndUpdate] to
// rebuild once:
//
//	doc.BeginUpdate()
//	_ = prop.AddValue(button, 0)
//	_ = button.SetID("ok")
//	err := doc.EndUpdate() // one refresh
//
// Documents are single-writer. Separate documents may be used from
// different goroutines.
package fxom
