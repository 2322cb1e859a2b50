// Package nodelink renders document object graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz. Every
// object of a document becomes a box; properties and collection items are
// labelled edges from the owner to its values. References, copies and id
// expressions are drawn as dashed edges to the object they name, and
// unresolved instances are greyed out. The diagrams are meant for
// inspecting a document, not for previewing its user interface.
//
// # Usage
//
// Convert a document to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the text properties of instances
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
