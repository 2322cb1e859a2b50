package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gluedoc/pkg/fxom"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes text properties in instance labels.
	// When false, only the tag and id are shown.
	Detailed bool
}

// ToDOT converts the object graph of doc to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(doc *fxom.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=18];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	root := doc.Root()
	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	names := make(map[fxom.Object]string)
	var order []fxom.Object
	fxom.Walk(root, func(o fxom.Object) bool {
		names[o] = "n" + strconv.Itoa(len(order))
		order = append(order, o)
		return true
	})

	for _, o := range order {
		attrs := fmtAttrs(o, fmtLabel(o, opts.Detailed))
		fmt.Fprintf(&buf, "  %s [%s];\n", names[o], strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	idx := doc.Index()
	for _, o := range order {
		switch x := o.(type) {
		case *fxom.Instance:
			for _, p := range x.Properties() {
				switch p := p.(type) {
				case *fxom.ComplexProperty:
					for _, v := range p.Values() {
						fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", names[x], names[v], p.Name())
					}
				case *fxom.TextProperty:
					id, ok := p.IDExpression()
					if !ok {
						continue
					}
					if target, ok := idx.Lookup(id); ok {
						fmt.Fprintf(&buf, "  %s -> %s [label=%q, style=dashed];\n", names[x], names[target], p.Name())
					}
				}
			}
		case *fxom.Collection:
			for i, it := range x.Items() {
				fmt.Fprintf(&buf, "  %s -> %s [label=\"%d\"];\n", names[x], names[it], i)
			}
		case *fxom.Intrinsic:
			if x.Kind() == fxom.Include {
				continue
			}
			if target, ok := idx.Lookup(x.Source()); ok {
				fmt.Fprintf(&buf, "  %s -> %s [style=dashed, constraint=false];\n", names[x], names[target])
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(o fxom.Object, detailed bool) string {
	var head string
	switch x := o.(type) {
	case *fxom.Instance:
		head = x.Tag()
	case *fxom.Collection:
		head = x.Glue().Tag() + " [" + strconv.Itoa(len(x.Items())) + "]"
	case *fxom.Intrinsic:
		head = x.Kind().String() + " " + x.Source()
	}
	if id := o.ID(); id != "" {
		head += " #" + id
	}

	inst, ok := o.(*fxom.Instance)
	if !detailed || !ok {
		return head
	}
	parts := []string{head}
	for _, p := range inst.Properties() {
		if tp, ok := p.(*fxom.TextProperty); ok {
			parts = append(parts, fmt.Sprintf("%s: %s", tp.Name(), tp.Value()))
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(o fxom.Object, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch x := o.(type) {
	case *fxom.Instance:
		if !x.Resolved() {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
		}
	case *fxom.Intrinsic:
		attrs = append(attrs, "shape=note")
	case *fxom.Collection:
		attrs = append(attrs, "shape=folder")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	fixed := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(fixed))
}
