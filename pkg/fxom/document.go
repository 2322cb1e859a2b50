package fxom

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gluedoc/pkg/dump"
	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/instantiate"
)

// Observer is notified around every refresh of a document.
type Observer interface {
	BeforeRefresh(d *Document)
	AfterRefresh(d *Document)
}

// ObserverFuncs adapts functions to an Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Before func(*Document)
	After  func(*Document)
}

func (f ObserverFuncs) BeforeRefresh(d *Document) {
	if f.Before != nil {
		f.Before(d)
	}
}

func (f ObserverFuncs) AfterRefresh(d *Document) {
	if f.After != nil {
		f.After(d)
	}
}

type noopObserver struct{}

func (noopObserver) BeforeRefresh(*Document) {}
func (noopObserver) AfterRefresh(*Document)  {}

// Options configures document construction.
type Options struct {
	// Location is the source path of the markup, used to resolve includes.
	Location string

	// Service instantiates markup. It is required.
	Service instantiate.Service

	// Classes resolves type names. Defaults to the types known to Service.
	Classes instantiate.ClassResolver

	// Resources resolves assets. Defaults to no resources.
	Resources instantiate.Resources

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger

	// Dumps stores the markup of failed refreshes. Defaults to discarding.
	Dumps dump.Store

	// Observer is notified around refreshes.
	Observer Observer

	// SkipNormalize disables normalization after load.
	SkipNormalize bool
}

// UnresolvedKind classifies unresolved nodes.
type UnresolvedKind string

const (
	UnresolvedType      UnresolvedKind = "type"
	UnresolvedInclude   UnresolvedKind = "include"
	UnresolvedReference UnresolvedKind = "reference"
)

// Unresolved describes a node left unresolved by the last load or refresh.
type Unresolved struct {
	Kind   UnresolvedKind
	Name   string
	Object Object
}

// Document owns a glue tree and the object graph paired with it.
type Document struct {
	glue      *glue.Document
	root      Object
	location  string
	service   instantiate.Service
	classes   instantiate.ClassResolver
	resources instantiate.Resources
	logger    *log.Logger
	dumps     dump.Store
	observer  Observer

	updateDepth int
	dirty       bool
	refreshing  bool
	revision    int
	index       *Index
	unresolved  []Unresolved
}

// NewDocument creates an empty document.
func NewDocument(opts Options) *Document {
	d := &Document{glue: glue.NewDocument()}
	d.configure(opts)
	return d
}

func (d *Document) configure(opts Options) {
	d.location = opts.Location
	d.service = opts.Service
	d.classes = opts.Classes
	if d.classes == nil && d.service != nil {
		d.classes = instantiate.NewTypeResolver(d.service)
	}
	d.resources = opts.Resources
	if d.resources == nil {
		d.resources = instantiate.NoResources{}
	}
	d.logger = opts.Logger
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	d.dumps = opts.Dumps
	if d.dumps == nil {
		d.dumps = dump.NewNullStore()
	}
	d.observer = opts.Observer
	if d.observer == nil {
		d.observer = noopObserver{}
	}
}

// options returns the configuration of d for loading related documents.
func (d *Document) options() Options {
	return Options{
		Location:  d.location,
		Service:   d.service,
		Classes:   d.classes,
		Resources: d.resources,
		Logger:    d.logger,
		Dumps:     d.dumps,
	}
}

// Glue returns the glue tree.
func (d *Document) Glue() *glue.Document { return d.glue }

// Root returns the root object, or nil for an empty document.
func (d *Document) Root() Object { return d.root }

// Location returns the source location.
func (d *Document) Location() string { return d.location }

// SetLocation changes the source location.
func (d *Document) SetLocation(loc string) { d.location = loc }

// Service returns the instantiation service.
func (d *Document) Service() instantiate.Service { return d.service }

// Classes returns the class resolver.
func (d *Document) Classes() instantiate.ClassResolver { return d.classes }

// Resources returns the resource resolver.
func (d *Document) Resources() instantiate.Resources { return d.resources }

// Logger returns the document logger.
func (d *Document) Logger() *log.Logger { return d.logger }

// Revision returns a counter incremented by every refresh.
func (d *Document) Revision() int { return d.revision }

// SetObserver registers the refresh observer. Nil removes it.
func (d *Document) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	d.observer = o
}

// Unresolved returns the nodes left unresolved by the last load or refresh.
func (d *Document) Unresolved() []Unresolved { return d.unresolved }

// Index returns the id index, building it when needed.
func (d *Document) Index() *Index {
	if d.index == nil {
		d.index = NewIndex(d.root)
	}
	return d.index
}

func (d *Document) invalidate() { d.index = nil }

// BeginUpdate opens an update bracket. Brackets nest.
func (d *Document) BeginUpdate() { d.updateDepth++ }

// EndUpdate closes an update bracket. Closing the outermost bracket
// refreshes the document when a mutation touched it.
func (d *Document) EndUpdate() error {
	if d.updateDepth == 0 {
		return ErrUnbalancedUpdate
	}
	d.updateDepth--
	if d.updateDepth > 0 || !d.dirty || d.refreshing {
		return nil
	}
	return d.Refresh()
}

// update runs a mutation inside an update bracket. touched is the glue
// element the mutation changes; mutations outside the document tree do
// not require a refresh.
func (d *Document) update(touched *glue.Element, fn func() error) error {
	d.BeginUpdate()
	before := d.inTree(touched)
	err := fn()
	if err == nil && (before || d.inTree(touched)) {
		d.dirty = true
	}
	if endErr := d.EndUpdate(); err == nil {
		err = endErr
	}
	return err
}

func (d *Document) inTree(e *glue.Element) bool {
	root := d.glue.Root()
	return e != nil && root != nil && root.Contains(e)
}

// SetRoot makes a detached object of this document the root. Nil empties
// the document.
func (d *Document) SetRoot(obj Object) error {
	if obj != nil {
		if obj.Document() != d {
			return ErrForeignDocument
		}
		if obj.base().attached() {
			return ErrAttached
		}
	}
	var touched *glue.Element
	switch {
	case obj != nil:
		touched = obj.Glue()
	case d.root != nil:
		touched = d.root.Glue()
	}
	return d.update(touched, func() error {
		if d.root != nil {
			detachObject(d.root)
		}
		if obj == nil {
			return nil
		}
		if err := d.glue.SetRoot(obj.Glue()); err != nil {
			return err
		}
		d.root = obj
		d.invalidate()
		return nil
	})
}

// MoveToDocument transfers a detached object and its subtree to target.
func MoveToDocument(obj Object, target *Document) error {
	if obj.base().attached() {
		return ErrAttached
	}
	if obj.Document() == target {
		return nil
	}
	if err := obj.Glue().Adopt(target.glue); err != nil {
		return err
	}
	Walk(obj, func(o Object) bool {
		o.base().doc = target
		if inst, ok := o.(*Instance); ok {
			for _, p := range inst.props {
				p.propBase().doc = target
			}
		}
		return true
	})
	return nil
}
