package fxom

import (
	"context"
	"fmt"
	"os"
	"time"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/instantiate"
	"github.com/matzehuels/gluedoc/pkg/markup"
	"github.com/matzehuels/gluedoc/pkg/observability"
)

// Load parses markup text into a document.
//
// The glue tree is parsed from text and opts.Service instantiates the same
// text; the object graph is built by consuming the service events in
// lock-step with the glue elements. Objects written directly inside an
// instance are gathered under a synthetic element named after the type's
// default property.
//
// Unless opts.SkipNormalize is set, the document is normalized and
// refreshed when normalization changed it.
//
// Load returns a PARSE_ERROR for malformed markup, service failures and
// event streams that do not match the markup. No partial document is
// returned. Unknown types and unresolvable includes or references do not
// fail the load; they are reported by [Document.Unresolved].
func Load(ctx context.Context, text []byte, opts Options) (*Document, error) {
	start := time.Now()
	d, err := load(ctx, text, opts)
	objects := 0
	if d != nil {
		Walk(d.root, func(Object) bool { objects++; return true })
	}
	observability.Document().OnLoad(ctx, opts.Location, objects, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile reads and loads a markup file. opts.Location defaults to path.
func LoadFile(ctx context.Context, path string, opts Options) (*Document, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gerr.Wrap(gerr.ErrCodeFileNotFound, err, "load %s", path)
		}
		return nil, err
	}
	if opts.Location == "" {
		opts.Location = path
	}
	return Load(ctx, text, opts)
}

func load(ctx context.Context, text []byte, opts Options) (*Document, error) {
	if opts.Service == nil {
		return nil, gerr.New(gerr.ErrCodeInvalidInput, "load %s: no instantiation service", opts.Location)
	}
	d, err := build(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	if opts.SkipNormalize {
		return d, nil
	}
	if n := Normalize(d); n > 0 {
		d.logger.Debug("normalized", "location", d.location, "changes", n)
		if err := d.Refresh(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// build parses text and pairs it with the service events without
// normalizing.
func build(ctx context.Context, text []byte, opts Options) (*Document, error) {
	g, err := glue.ParseBytes(text)
	if err != nil {
		return nil, gerr.Wrap(gerr.ErrCodeParse, err, "parse %s", opts.Location)
	}
	d := &Document{glue: g}
	d.configure(opts)

	events, err := d.service.Load(ctx, instantiate.Source{
		Text:      text,
		Location:  d.location,
		Classes:   d.classes,
		Resources: d.resources,
	})
	if err != nil {
		return nil, gerr.Wrap(gerr.ErrCodeParse, err, "instantiate %s", opts.Location)
	}

	b := &builder{doc: d, events: events, imports: g.Instructions(markup.InstructionImport)}
	root, err := b.object(g.Root())
	if err == nil && b.pos != len(b.events) {
		err = fmt.Errorf("%d unconsumed instantiation events", len(b.events)-b.pos)
	}
	if err != nil {
		return nil, gerr.Wrap(gerr.ErrCodeParse, err, "load %s", opts.Location)
	}
	d.root = root
	d.unresolved = collectUnresolved(d)
	d.logger.Debug("loaded", "location", d.location, "events", len(events), "unresolved", len(d.unresolved))
	return d, nil
}

// builder consumes instantiation events while walking the glue tree.
type builder struct {
	doc     *Document
	events  []instantiate.Event
	pos     int
	imports []string
}

func (b *builder) peek(e *glue.Element) (instantiate.Event, error) {
	if b.pos >= len(b.events) {
		return instantiate.Event{}, fmt.Errorf("<%s>: instantiation events ended early", e.Tag())
	}
	return b.events[b.pos], nil
}

func (b *builder) take(e *glue.Element) (instantiate.Event, error) {
	ev, err := b.peek(e)
	if err != nil {
		return ev, err
	}
	if ev.Kind != instantiate.End && ev.Tag != "" && ev.Tag != e.Tag() {
		return ev, fmt.Errorf("<%s>: instantiation event %s is for <%s>", e.Tag(), ev.Kind, ev.Tag)
	}
	b.pos++
	return ev, nil
}

func (b *builder) end(e *glue.Element) (instantiate.Event, error) {
	ev, err := b.take(e)
	if err != nil {
		return ev, err
	}
	if ev.Kind != instantiate.End {
		return ev, fmt.Errorf("<%s>: expected end of element, got %s", e.Tag(), ev.Kind)
	}
	return ev, nil
}

func (b *builder) skip(e *glue.Element) error {
	if _, err := b.take(e); err != nil {
		return err
	}
	_, err := b.end(e)
	return err
}

func (b *builder) object(e *glue.Element) (Object, error) {
	ev, err := b.take(e)
	if err != nil {
		return nil, err
	}
	switch ev.Kind {
	case instantiate.BeginInstance, instantiate.BeginRoot, instantiate.BeginUnknownType:
		if ev.Hint.Collection {
			return b.collection(e, ev)
		}
		return b.instance(e, ev)
	case instantiate.BeginInclude, instantiate.BeginReference, instantiate.BeginCopy:
		return b.intrinsic(e, ev)
	default:
		return nil, fmt.Errorf("<%s>: unexpected %s where an object was expected", e.Tag(), ev.Kind)
	}
}

func (b *builder) intrinsic(e *glue.Element, ev instantiate.Event) (Object, error) {
	if len(e.Children()) > 0 {
		return nil, fmt.Errorf("<%s> cannot have child elements", e.Tag())
	}
	end, err := b.end(e)
	if err != nil {
		return nil, err
	}
	kind := Include
	switch ev.Kind {
	case instantiate.BeginReference:
		kind = Reference
	case instantiate.BeginCopy:
		kind = Copy
	}
	x := newIntrinsic(b.doc, e, kind)
	x.value = end.Value
	return x, nil
}

func (b *builder) collection(e *glue.Element, ev instantiate.Event) (Object, error) {
	c := newCollection(b.doc, e, ev.Type)
	for _, child := range e.Children() {
		next, err := b.peek(child)
		if err != nil {
			return nil, err
		}
		switch next.Kind {
		case instantiate.BeginIgnored:
			if err := b.skip(child); err != nil {
				return nil, err
			}
		case instantiate.BeginProperty, instantiate.End:
			return nil, fmt.Errorf("<%s>: collections hold objects only, got <%s>", e.Tag(), child.Tag())
		default:
			item, err := b.object(child)
			if err != nil {
				return nil, err
			}
			c.items = append(c.items, item)
			item.base().parentCollection = c
		}
	}
	end, err := b.end(e)
	if err != nil {
		return nil, err
	}
	c.value = end.Value
	return c, nil
}

func (b *builder) instance(e *glue.Element, ev instantiate.Event) (Object, error) {
	inst := newInstance(b.doc, e, ev.Type)
	if ev.Kind == instantiate.BeginUnknownType {
		inst.typ = ""
	}

	var (
		direct []Object
		props  []Property
	)
	for _, child := range e.Children() {
		next, err := b.peek(child)
		if err != nil {
			return nil, err
		}
		switch next.Kind {
		case instantiate.BeginIgnored:
			if err := b.skip(child); err != nil {
				return nil, err
			}
		case instantiate.BeginProperty:
			p, err := b.property(child)
			if err != nil {
				return nil, err
			}
			props = append(props, p)
		case instantiate.End:
			return nil, fmt.Errorf("<%s>: instantiation events ended before <%s>", e.Tag(), child.Tag())
		default:
			obj, err := b.object(child)
			if err != nil {
				return nil, err
			}
			direct = append(direct, obj)
		}
	}
	end, err := b.end(e)
	if err != nil {
		return nil, err
	}
	inst.value = end.Value

	for _, a := range e.Attrs() {
		if markup.IsReservedAttr(a.Name) || a.Name == markup.AttrType && e.Tag() == markup.TagRoot {
			continue
		}
		p := &TextProperty{repr: AsAttribute, text: a.Value}
		p.propertyBase = propertyBase{self: p, name: a.Name, doc: b.doc, owner: b.staticOwner(a.Name)}
		if err := b.register(inst, p); err != nil {
			return nil, err
		}
	}
	for _, p := range props {
		if err := b.register(inst, p); err != nil {
			return nil, err
		}
	}
	if len(direct) > 0 {
		if err := b.synthesize(inst, ev.Hint.DefaultProperty, direct); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (b *builder) register(inst *Instance, p Property) error {
	pb := p.propBase()
	if _, dup := inst.props[pb.name]; dup {
		return fmt.Errorf("<%s>: %w: %s", inst.elem.Tag(), ErrDuplicateProperty, pb.name)
	}
	inst.props[pb.name] = p
	pb.inst = inst
	return nil
}

// synthesize attaches objects written directly inside an instance to its
// default property. They join an explicit property element of the same
// name when there is one, in document order; otherwise a synthetic element
// is inserted at the position of the first object.
func (b *builder) synthesize(inst *Instance, name string, direct []Object) error {
	e := inst.elem
	if existing, ok := inst.props[name]; ok {
		if tp, ok := existing.(*TextProperty); ok && tp.repr == AsElementText && tp.text == "" {
			cp := newComplexProperty(b.doc, tp.elem, name)
			cp.inst = inst
			inst.props[name] = cp
			existing = cp
		}
		cp, ok := existing.(*ComplexProperty)
		if !ok {
			return fmt.Errorf("<%s>: default property %q is already set as text", e.Tag(), name)
		}
		pos := cp.elem.Index()
		var before, after []Object
		for _, o := range direct {
			if o.Glue().Index() < pos {
				before = append(before, o)
			} else {
				after = append(after, o)
			}
		}
		for i, o := range before {
			if err := o.Glue().Move(cp.elem, i); err != nil {
				return err
			}
		}
		for _, o := range after {
			if err := o.Glue().Move(cp.elem, -1); err != nil {
				return err
			}
		}
		values := append(append(before, cp.values...), after...)
		cp.values = values
		for _, o := range direct {
			o.base().parentProperty = cp
		}
		return nil
	}

	syn := glue.NewElement(b.doc.glue, name)
	syn.SetSynthetic(true)
	if err := e.Insert(syn, direct[0].Glue().Index()); err != nil {
		return err
	}
	cp := newComplexProperty(b.doc, syn, name)
	for _, o := range direct {
		if err := o.Glue().Move(syn, -1); err != nil {
			return err
		}
		o.base().parentProperty = cp
	}
	cp.values = direct
	return b.register(inst, cp)
}

func (b *builder) property(e *glue.Element) (Property, error) {
	ev, err := b.take(e)
	if err != nil {
		return nil, err
	}
	var values []Object
	for _, child := range e.Children() {
		next, err := b.peek(child)
		if err != nil {
			return nil, err
		}
		switch next.Kind {
		case instantiate.BeginIgnored:
			if err := b.skip(child); err != nil {
				return nil, err
			}
		case instantiate.BeginProperty, instantiate.End:
			return nil, fmt.Errorf("<%s>: property cannot contain <%s>", e.Tag(), child.Tag())
		default:
			obj, err := b.object(child)
			if err != nil {
				return nil, err
			}
			values = append(values, obj)
		}
	}
	if _, err := b.end(e); err != nil {
		return nil, err
	}

	name := e.Tag()
	owner := ev.Type
	if owner == "" {
		owner = b.staticOwner(name)
	}
	switch {
	case len(values) == 0:
		p := &TextProperty{repr: AsElementText, text: e.Text()}
		p.propertyBase = propertyBase{self: p, name: name, doc: b.doc, elem: e, owner: owner}
		return p, nil
	case len(values) == 1 && isValueElement(values[0]):
		v := values[0].(*Instance)
		text, _ := v.elem.Attr(markup.AttrValue)
		p := &TextProperty{repr: AsValueElement, text: text, valueElem: v.elem, valueType: v.typ}
		p.propertyBase = propertyBase{self: p, name: name, doc: b.doc, elem: e, owner: owner}
		return p, nil
	}
	cp := newComplexProperty(b.doc, e, name)
	cp.owner = owner
	cp.values = values
	for _, v := range values {
		v.base().parentProperty = cp
	}
	return cp, nil
}

// isValueElement reports whether obj is a bare value object such as
// <String fx:value="x"/>.
func isValueElement(obj Object) bool {
	inst, ok := obj.(*Instance)
	if !ok || len(inst.props) > 0 || len(inst.elem.Children()) > 0 {
		return false
	}
	attrs := inst.elem.Attrs()
	return len(attrs) == 1 && attrs[0].Name == markup.AttrValue
}

func (b *builder) staticOwner(name string) string {
	owner, _, ok := markup.SplitStatic(name)
	if !ok {
		return ""
	}
	fqn, _ := b.doc.classes.Resolve(owner, b.imports)
	return fqn
}

// collectUnresolved lists unknown types, includes without a value and
// references to ids declared neither by an object nor in an fx:define
// block.
func collectUnresolved(d *Document) []Unresolved {
	var out []Unresolved
	idx := NewIndex(d.root)
	Walk(d.root, func(o Object) bool {
		switch x := o.(type) {
		case *Instance:
			if !x.Resolved() {
				out = append(out, Unresolved{Kind: UnresolvedType, Name: x.Tag(), Object: x})
			}
		case *Intrinsic:
			switch x.kind {
			case Include:
				if x.value == nil {
					out = append(out, Unresolved{Kind: UnresolvedInclude, Name: x.Source(), Object: x})
				}
			default:
				if !idx.Declares(x.Source()) {
					out = append(out, Unresolved{Kind: UnresolvedReference, Name: x.Source(), Object: x})
				}
			}
		}
		return true
	})
	return out
}
