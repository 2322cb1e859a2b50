package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/gluedoc/pkg/glue"
	"github.com/matzehuels/gluedoc/pkg/instantiate"
	"github.com/matzehuels/gluedoc/pkg/markup"
)

// maxIncludeDepth bounds nested fx:include resolution.
const maxIncludeDepth = 16

// Load implements [instantiate.Service]. Unknown types, unresolvable
// includes and references to ids that are not yet defined produce nil
// values. Id expressions that do not resolve evaluate to their own text.
func (c *Catalog) Load(ctx context.Context, src instantiate.Source) ([]instantiate.Event, error) {
	l := c.newLoader(ctx, src, 0)
	if _, err := l.run(); err != nil {
		return nil, err
	}
	return l.events, nil
}

// Instantiate parses src and returns its root value without reporting
// events.
func (c *Catalog) Instantiate(ctx context.Context, src instantiate.Source) (any, error) {
	l := c.newLoader(ctx, src, 0)
	l.silent = 1
	return l.run()
}

type loader struct {
	cat     *Catalog
	ctx     context.Context
	src     instantiate.Source
	classes instantiate.ClassResolver
	imports []string
	ids     map[string]any
	events  []instantiate.Event
	silent  int
	depth   int
}

// frame is the object receiving the children of an element.
type frame struct {
	def   *typeDef
	value *Value
	list  *List
}

func (c *Catalog) newLoader(ctx context.Context, src instantiate.Source, depth int) *loader {
	classes := src.Classes
	if classes == nil {
		classes = instantiate.NewTypeResolver(c)
	}
	return &loader{
		cat:     c,
		ctx:     ctx,
		src:     src,
		classes: classes,
		ids:     make(map[string]any),
		depth:   depth,
	}
}

func (l *loader) run() (any, error) {
	doc, err := glue.ParseBytes(l.src.Text)
	if err != nil {
		return nil, err
	}
	l.imports = doc.Instructions(markup.InstructionImport)
	root := doc.Root()
	switch markup.Classify(root.Tag(), glue.CommentTag) {
	case markup.ConstructObject, markup.ConstructRoot, markup.ConstructInclude:
	default:
		return nil, fmt.Errorf("root element <%s> is not an object", root.Tag())
	}
	return l.object(root)
}

func (l *loader) emit(ev instantiate.Event) {
	if l.silent == 0 {
		l.events = append(l.events, ev)
	}
}

func (l *loader) resolve(name string) (*typeDef, string) {
	fqn, ok := l.classes.Resolve(name, l.imports)
	if !ok {
		return nil, ""
	}
	return l.cat.types[fqn], fqn
}

func (l *loader) object(e *glue.Element) (any, error) {
	if err := l.ctx.Err(); err != nil {
		return nil, err
	}
	switch c := markup.Classify(e.Tag(), glue.CommentTag); c {
	case markup.ConstructObject:
		return l.instance(e, instantiate.BeginInstance, e.Tag())
	case markup.ConstructRoot:
		typ, ok := e.Attr(markup.AttrType)
		if !ok || typ == "" {
			return nil, fmt.Errorf("<%s> requires a %s attribute", e.Tag(), markup.AttrType)
		}
		return l.instance(e, instantiate.BeginRoot, typ)
	case markup.ConstructInclude:
		return l.intrinsic(e, instantiate.BeginInclude)
	case markup.ConstructReference:
		return l.intrinsic(e, instantiate.BeginReference)
	case markup.ConstructCopy:
		return l.intrinsic(e, instantiate.BeginCopy)
	default:
		return nil, fmt.Errorf("<%s> is not allowed here (%s)", e.Tag(), c)
	}
}

func (l *loader) instance(e *glue.Element, kind instantiate.EventKind, typeName string) (any, error) {
	def, fqn := l.resolve(typeName)
	if def == nil {
		l.emit(instantiate.Event{Kind: instantiate.BeginUnknownType, Tag: e.Tag()})
		if err := l.children(e, frame{}); err != nil {
			return nil, err
		}
		l.emit(instantiate.Event{Kind: instantiate.End})
		return nil, nil
	}

	collection := def.Collection
	if f, ok := e.Attr(markup.AttrFactory); ok && slices.Contains(def.CollectionFactories, f) {
		collection = true
	}
	hint := instantiate.Hint{Collection: collection}
	if !collection {
		hint.DefaultProperty = def.DefaultProperty
	}
	l.emit(instantiate.Event{Kind: kind, Tag: e.Tag(), Type: fqn, Hint: hint})

	var (
		value any
		fr    = frame{def: def}
	)
	if v, ok := e.Attr(markup.AttrValue); ok && !collection {
		value = v
	} else if k, ok := e.Attr(markup.AttrConstant); ok && !collection {
		value = markup.SimpleName(fqn) + "." + k
	} else if collection {
		fr.list = &List{Type: fqn}
		value = fr.list
	} else {
		fr.value = newValue(def)
		value = fr.value
	}
	if id, ok := e.Attr(markup.AttrID); ok {
		l.ids[id] = value
	}
	if fr.value != nil {
		for _, a := range e.Attrs() {
			if markup.IsReservedAttr(a.Name) || kind == instantiate.BeginRoot && a.Name == markup.AttrType {
				continue
			}
			fr.value.Props[a.Name] = l.textValue(a.Value)
		}
	}
	if err := l.children(e, fr); err != nil {
		return nil, err
	}
	l.emit(instantiate.Event{Kind: instantiate.End, Value: value})
	return value, nil
}

func (l *loader) children(e *glue.Element, fr frame) error {
	for _, c := range e.Children() {
		switch markup.Classify(c.Tag(), glue.CommentTag) {
		case markup.ConstructIgnored:
			if err := l.ignored(c); err != nil {
				return err
			}
		case markup.ConstructProperty, markup.ConstructStaticProperty:
			if fr.list != nil {
				return fmt.Errorf("<%s>: collection %s cannot hold property <%s>", e.Tag(), fr.def.Name, c.Tag())
			}
			if err := l.property(c, fr); err != nil {
				return err
			}
		default:
			v, err := l.object(c)
			if err != nil {
				return err
			}
			switch {
			case fr.list != nil:
				fr.list.Items = append(fr.list.Items, v)
			case fr.value != nil:
				if fr.def.DefaultProperty == "" {
					return fmt.Errorf("<%s>: type %s has no default property", e.Tag(), fr.def.Name)
				}
				fr.value.set(fr.def.DefaultProperty, fr.def.isList(fr.def.DefaultProperty), v)
			}
		}
	}
	return nil
}

func (l *loader) property(e *glue.Element, fr frame) error {
	ev := instantiate.Event{Kind: instantiate.BeginProperty, Tag: e.Tag()}
	if owner, _, ok := markup.SplitStatic(e.Tag()); ok {
		if _, fqn := l.resolve(owner); fqn != "" {
			ev.Type = fqn
		}
	}
	l.emit(ev)

	var values []any
	for _, c := range e.Children() {
		switch markup.Classify(c.Tag(), glue.CommentTag) {
		case markup.ConstructIgnored:
			if err := l.ignored(c); err != nil {
				return err
			}
		case markup.ConstructProperty, markup.ConstructStaticProperty:
			return fmt.Errorf("property <%s> cannot contain property <%s>", e.Tag(), c.Tag())
		default:
			v, err := l.object(c)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
	}
	l.emit(instantiate.Event{Kind: instantiate.End})

	if fr.value == nil {
		return nil
	}
	name := e.Tag()
	list := fr.def.isList(name)
	switch {
	case len(values) > 0:
		for _, v := range values {
			fr.value.set(name, list || len(values) > 1, v)
		}
	case list:
		if _, ok := fr.value.Props[name]; !ok {
			fr.value.Props[name] = []any{}
		}
	default:
		fr.value.Props[name] = l.textValue(e.Text())
	}
	return nil
}

func (l *loader) intrinsic(e *glue.Element, kind instantiate.EventKind) (any, error) {
	if len(e.Children()) > 0 {
		return nil, fmt.Errorf("<%s> cannot have child elements", e.Tag())
	}
	source, ok := e.Attr(markup.AttrSource)
	if !ok || source == "" {
		return nil, fmt.Errorf("<%s> requires a %s attribute", e.Tag(), markup.AttrSource)
	}
	l.emit(instantiate.Event{Kind: kind, Tag: e.Tag()})

	var value any
	switch kind {
	case instantiate.BeginInclude:
		value = l.include(source)
	case instantiate.BeginReference:
		value = l.ids[source]
	case instantiate.BeginCopy:
		value = shallowCopy(l.ids[source])
	}
	if id, ok := e.Attr(markup.AttrID); ok && kind != instantiate.BeginReference {
		l.ids[id] = value
	}
	l.emit(instantiate.Event{Kind: instantiate.End, Value: value})
	return value, nil
}

// include instantiates an included document with its own id namespace.
// Any failure leaves the include unresolved.
func (l *loader) include(source string) any {
	res := l.src.Resources
	if res == nil || l.depth >= maxIncludeDepth {
		return nil
	}
	loc, err := res.Resolve(l.src.Location, source)
	if err != nil {
		return nil
	}
	data, err := res.ReadFile(loc)
	if err != nil {
		return nil
	}
	sub := l.cat.newLoader(l.ctx, instantiate.Source{
		Text:      data,
		Location:  loc,
		Classes:   l.src.Classes,
		Resources: res,
	}, l.depth+1)
	sub.silent = 1
	v, err := sub.run()
	if err != nil {
		return nil
	}
	return v
}

// ignored reports a define, script or comment. The children of a define
// are instantiated silently so the ids they declare can be referenced.
func (l *loader) ignored(e *glue.Element) error {
	l.emit(instantiate.Event{Kind: instantiate.BeginIgnored, Tag: e.Tag()})
	if e.Tag() == markup.TagDefine {
		l.silent++
		for _, c := range e.Children() {
			if markup.Classify(c.Tag(), glue.CommentTag) == markup.ConstructIgnored {
				continue
			}
			if _, err := l.object(c); err != nil {
				l.silent--
				return err
			}
		}
		l.silent--
	}
	l.emit(instantiate.Event{Kind: instantiate.End})
	return nil
}

// textValue evaluates an attribute or element text.
func (l *loader) textValue(s string) any {
	if s == markup.NullLiteral {
		return nil
	}
	if id, ok := markup.IDExpression(s); ok {
		if v := l.ids[id]; v != nil {
			return v
		}
		return s
	}
	if rest, ok := strings.CutPrefix(s, `\$`); ok {
		return "$" + rest
	}
	return s
}

// set stores x under name, appending to a list when list is set.
func (v *Value) set(name string, list bool, x any) {
	if !list {
		v.Props[name] = x
		return
	}
	items, _ := v.Props[name].([]any)
	v.Props[name] = append(items, x)
}
