// Package archive bundles self-contained subtrees of documents into
// independent markup texts and reconstructs them in another document.
//
// Each archived subtree becomes a standalone document of its own together
// with the location it came from, so includes inside it still resolve
// relative to its origin. The archive is serialized as YAML:
//
//	version: 1
//	entries:
//	  - location: forms/login.fxml
//	    text: |
//	      <?xml version="1.0" encoding="UTF-8"?>
//	      ...
//
// Archiving requires every subtree to be self-contained; call [Check]
// before [Encode]. Encode itself only copies.
package archive

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/fxom"
	"github.com/matzehuels/gluedoc/pkg/markup"
)

// Version is the archive format version written by [Marshal].
const Version = 1

// Entry is one archived subtree.
type Entry struct {
	Location string `yaml:"location,omitempty"`
	Text     string `yaml:"text"`
}

// Archive is an ordered list of archived subtrees.
type Archive struct {
	Version int     `yaml:"version"`
	Entries []Entry `yaml:"entries"`
}

// Check returns a PRECONDITION error naming the first object of objs that
// refers to ids declared outside itself.
func Check(objs []fxom.Object) error {
	for i, obj := range objs {
		if ext := fxom.ExternalReferences(obj); len(ext) > 0 {
			return gerr.New(gerr.ErrCodePrecondition, "%s is not self-contained: refers to %s",
				describe(obj, i), strings.Join(ext, ", "))
		}
	}
	return nil
}

// Encode archives objs in order. Each object is copied into a standalone
// document carrying the location of its source document.
func Encode(objs []fxom.Object) (*Archive, error) {
	a := &Archive{Version: Version, Entries: make([]Entry, 0, len(objs))}
	for i, obj := range objs {
		src := obj.Document()
		tmp := fxom.NewDocument(fxom.Options{
			Location:  src.Location(),
			Service:   src.Service(),
			Classes:   src.Classes(),
			Resources: src.Resources(),
			Logger:    src.Logger(),
		})
		clone, err := fxom.NewCloner(tmp, nil).Clone(obj, true)
		if err != nil {
			return nil, fmt.Errorf("archive %s: %w", describe(obj, i), err)
		}
		if err := tmp.SetRoot(clone); err != nil {
			return nil, fmt.Errorf("archive %s: %w", describe(obj, i), err)
		}
		text, err := tmp.Save()
		if err != nil {
			return nil, fmt.Errorf("archive %s: %w", describe(obj, i), err)
		}
		a.Entries = append(a.Entries, Entry{Location: src.Location(), Text: string(text)})
	}
	return a, nil
}

// Decode loads every entry against the class resolution and resources of
// target and moves the roots into target. The returned objects are
// detached; the caller attaches them and resolves id collisions, for
// instance by cloning them with [fxom.Cloner].
func Decode(ctx context.Context, a *Archive, target *fxom.Document) ([]fxom.Object, error) {
	if a.Version != Version {
		return nil, gerr.New(gerr.ErrCodeUnsupported, "archive version %d", a.Version)
	}
	out := make([]fxom.Object, 0, len(a.Entries))
	for i, e := range a.Entries {
		doc, err := fxom.Load(ctx, []byte(e.Text), fxom.Options{
			Location:  e.Location,
			Service:   target.Service(),
			Classes:   target.Classes(),
			Resources: target.Resources(),
			Logger:    target.Logger(),
		})
		if err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", i, err)
		}
		root := doc.Root()
		if root == nil {
			return nil, gerr.New(gerr.ErrCodeInvalidInput, "decode entry %d: empty document", i)
		}
		if err := doc.SetRoot(nil); err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", i, err)
		}
		if err := fxom.MoveToDocument(root, target); err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", i, err)
		}
		root.Glue().RemoveAttr(markup.AttrXMLNS)
		root.Glue().RemoveAttr(markup.AttrXMLNSFX)
		out = append(out, root)
	}
	return out, nil
}

// Marshal encodes a as YAML.
func Marshal(a *Archive) ([]byte, error) {
	return yaml.Marshal(a)
}

// Unmarshal decodes a YAML archive.
func Unmarshal(data []byte) (*Archive, error) {
	var a Archive
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, gerr.Wrap(gerr.ErrCodeParse, err, "decode archive")
	}
	return &a, nil
}

func describe(obj fxom.Object, i int) string {
	if id := obj.ID(); id != "" {
		return fmt.Sprintf("object %q", id)
	}
	return fmt.Sprintf("object %d <%s>", i, obj.Glue().Tag())
}
