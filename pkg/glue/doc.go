// Package glue provides the attributed element tree that mirrors the exact
// layout of a markup document.
//
// # Overview
//
// A glue [Document] holds an ordered list of header items (processing
// instructions such as imports, and comments preceding the root) and at most
// one root [Element]. Elements carry a tag, an ordered attribute list, an
// ordered child list, optional text content and a back-reference to their
// parent. The tree is pure data: it knows nothing about the values the
// markup describes.
//
// # Structure
//
// Every element is owned by exactly one document. A child's parent pointer
// always mirrors its position in the parent's child list; [Element.Insert],
// [Element.Remove] and [Element.Move] are the only ways to change that
// relationship and they reject cycles and double parenting.
//
// Comments found inside element bodies are kept as elements tagged
// [CommentTag] so they survive a load/save cycle.
//
// # Synthetic Elements
//
// Elements inserted by higher layers rather than read from the source are
// flagged synthetic. [Document.Write] emits synthetic elements transparently:
// their children are written in place of the element itself, which keeps the
// serialized layout identical to the source.
//
// # Concurrency
//
// Documents are not safe for concurrent use. Derived indices held by other
// components must be invalidated by the caller after structural changes; the
// tree has no listeners.
package glue
