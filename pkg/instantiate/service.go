// Package instantiate defines the contract between the document model and
// the service that turns markup into live values.
//
// The model never constructs values itself. It hands markup text to a
// [Service], which parses and instantiates it and reports what it found as
// a flat stream of [Event] values in document order. Every element of the
// markup yields exactly one Begin event and one matching [End] event. The
// children of ignored constructs (defines, scripts, comments) yield no
// events.
//
// The catalog subpackage provides a table-driven implementation.
package instantiate

import "context"

// EventKind identifies the construct an event reports.
type EventKind int

const (
	// BeginInstance starts a resolved object element.
	BeginInstance EventKind = iota
	// BeginUnknownType starts an object element whose type is not known.
	BeginUnknownType
	// BeginInclude starts an fx:include intrinsic.
	BeginInclude
	// BeginReference starts an fx:reference intrinsic.
	BeginReference
	// BeginCopy starts an fx:copy intrinsic.
	BeginCopy
	// BeginRoot starts an fx:root element.
	BeginRoot
	// BeginProperty starts a property element.
	BeginProperty
	// BeginIgnored starts a define, script or comment.
	BeginIgnored
	// End closes the innermost open element.
	End
)

var eventKindNames = [...]string{
	BeginInstance:    "begin-instance",
	BeginUnknownType: "begin-unknown-type",
	BeginInclude:     "begin-include",
	BeginReference:   "begin-reference",
	BeginCopy:        "begin-copy",
	BeginRoot:        "begin-root",
	BeginProperty:    "begin-property",
	BeginIgnored:     "begin-ignored",
	End:              "end",
}

// String returns the event kind name.
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is one step of the instantiation protocol.
type Event struct {
	Kind EventKind

	// Tag is the element tag for Begin events.
	Tag string

	// Type is the fully-qualified type of BeginInstance and BeginRoot
	// events, and the owner type of a static BeginProperty event.
	Type string

	// Hint carries structural facts about BeginInstance and BeginRoot
	// elements.
	Hint Hint

	// Value is the instantiated value on End events of object elements.
	// It is nil for unresolved objects and for property elements.
	Value any
}

// Hint describes the structure of an instantiated element.
type Hint struct {
	// Collection is set when the value is a sequence container.
	Collection bool
	// DefaultProperty names the property that receives object children
	// written directly inside the element.
	DefaultProperty string
}

// Source is markup handed to a [Service].
type Source struct {
	Text      []byte
	Location  string
	Classes   ClassResolver
	Resources Resources
}

// Service instantiates markup.
//
// Implementations must be safe to call from several goroutines as long as
// each call works on its own Source.
type Service interface {
	// Load parses and instantiates src. Any failure is returned as a single
	// error and no events are reported.
	Load(ctx context.Context, src Source) ([]Event, error)

	// TypeInfo describes a fully-qualified type.
	TypeInfo(fqn string) (TypeInfo, bool)

	// PropertyValue reads a property of an instantiated value. The boolean
	// is false when the value has no such property.
	PropertyValue(v any, name string) (any, bool)
}

// TypeInfo is the metadata of a constructible type.
type TypeInfo struct {
	Name            string
	Properties      []string
	DefaultProperty string
	Collection      bool

	// Selection names the property whose items the value shows one at a
	// time.
	Selection string

	// Grid is set for grid containers.
	Grid *GridInfo
}

// HasProperty reports whether name is a declared property of the type.
func (t TypeInfo) HasProperty(name string) bool {
	for _, p := range t.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// GridInfo describes the constraint properties of a grid container.
type GridInfo struct {
	Columns Constraint
	Rows    Constraint
}

// Constraint describes one axis of grid constraints. Property holds one
// constraint object of type Type per column or row and ValueProperty is
// the property set on each of them by the compact array form.
type Constraint struct {
	Property      string
	Type          string
	ValueProperty string
}

// SelectionHolder is implemented by values that show one child at a time.
type SelectionHolder interface {
	Selected() any
	Select(v any) bool
}

// GridShape is implemented by grid container values.
type GridShape interface {
	ColumnCount() int
	RowCount() int
}
