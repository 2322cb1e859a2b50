package fxom

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/gluedoc/pkg/dump"
	gerr "github.com/matzehuels/gluedoc/pkg/errors"
)

type refreshCounter struct {
	before, after int
}

func (c *refreshCounter) observer() Observer {
	return ObserverFuncs{
		Before: func(*Document) { c.before++ },
		After:  func(*Document) { c.after++ },
	}
}

func textProperty(t *testing.T, inst *Instance, name string) *TextProperty {
	t.Helper()
	p, ok := inst.Property(name).(*TextProperty)
	if !ok {
		t.Fatalf("<%s> %s = %T, want *TextProperty", inst.Tag(), name, inst.Property(name))
	}
	return p
}

func TestSetValueRefreshes(t *testing.T) {
	d := loadDoc(t, `<VBox><Button fx:id="ok" text="OK"/></VBox>`)
	var c refreshCounter
	d.SetObserver(c.observer())
	button := instanceOf(t, d, "ok")
	old := button.Value()

	if err := textProperty(t, button, "text").SetValue("Go"); err != nil {
		t.Fatalf("SetValue() error: %v", err)
	}
	if c.before != 1 || c.after != 1 {
		t.Errorf("refreshes = %d/%d, want 1/1", c.before, c.after)
	}
	if got := d.Revision(); got != 1 {
		t.Errorf("Revision() = %d, want 1", got)
	}
	if button.Value() == old {
		t.Error("value was not rebuilt")
	}
	if got, _ := valueOf(t, button).Get("text"); got != "Go" {
		t.Errorf("text = %v, want Go", got)
	}
	if !strings.Contains(d.Text(), `text="Go"`) {
		t.Errorf("Save() lacks the new value:\n%s", d.Text())
	}
}

func TestUpdateBracket(t *testing.T) {
	d := loadDoc(t, `<VBox><Button fx:id="a" text="A"/><Button fx:id="b" text="B"/></VBox>`)
	var c refreshCounter
	d.SetObserver(c.observer())

	d.BeginUpdate()
	d.BeginUpdate()
	if err := textProperty(t, instanceOf(t, d, "a"), "text").SetValue("1"); err != nil {
		t.Fatal(err)
	}
	if err := d.EndUpdate(); err != nil {
		t.Fatal(err)
	}
	if err := textProperty(t, instanceOf(t, d, "b"), "text").SetValue("2"); err != nil {
		t.Fatal(err)
	}
	if c.before != 0 {
		t.Errorf("refreshed inside an open bracket")
	}
	if err := d.EndUpdate(); err != nil {
		t.Fatal(err)
	}
	if c.before != 1 {
		t.Errorf("refreshes = %d, want 1", c.before)
	}
	if err := d.EndUpdate(); !errors.Is(err, ErrUnbalancedUpdate) {
		t.Errorf("EndUpdate() error = %v, want ErrUnbalancedUpdate", err)
	}
}

func TestDetachedMutationDoesNotRefresh(t *testing.T) {
	d := loadDoc(t, `<VBox/>`)
	button := NewInstance(d, "javafx.scene.control.Button")
	p, err := NewTextProperty(d, "text", "x", AsAttribute)
	if err != nil {
		t.Fatal(err)
	}
	if err := button.AddProperty(p); err != nil {
		t.Fatalf("AddProperty() error: %v", err)
	}
	if err := button.SetID("late"); err != nil {
		t.Fatal(err)
	}
	if got := d.Revision(); got != 0 {
		t.Errorf("Revision() = %d, want 0", got)
	}
	if button.Value() != nil {
		t.Errorf("detached instance has value %v", button.Value())
	}
}

func TestAttachAndRemove(t *testing.T) {
	d := loadDoc(t, `<VBox fx:id="root"><Label/></VBox>`)
	root := d.Root().(*Instance)
	button := NewInstance(d, "javafx.scene.control.Button")
	cp := root.Property("children").(*ComplexProperty)

	if err := cp.AddValue(button, 0); err != nil {
		t.Fatalf("AddValue() error: %v", err)
	}
	if got := tags(cp.Values()); len(got) != 2 || got[0] != "Button" {
		t.Errorf("children = %v, want [Button Label]", got)
	}
	if button.Value() == nil {
		t.Error("attached instance was not instantiated")
	}
	if err := cp.AddValue(button, -1); !errors.Is(err, ErrAttached) {
		t.Errorf("AddValue(attached) error = %v, want ErrAttached", err)
	}

	other := NewDocument(testOptions())
	if err := cp.AddValue(NewInstance(other, "javafx.scene.control.Label"), -1); !errors.Is(err, ErrForeignDocument) {
		t.Errorf("AddValue(foreign) error = %v, want ErrForeignDocument", err)
	}

	for _, v := range slices.Clone(cp.Values()) {
		if err := v.RemoveFromParent(); err != nil {
			t.Fatalf("RemoveFromParent() error: %v", err)
		}
	}
	if root.Property("children") != nil {
		t.Error("empty complex property kept")
	}
	if items := valueOf(t, root).Items("children"); len(items) != 0 {
		t.Errorf("instantiated children = %d, want 0", len(items))
	}
}

func TestAddPropertyErrors(t *testing.T) {
	d := loadDoc(t, `<Label fx:id="l" text="a"/>`)
	label := d.Root().(*Instance)

	dup, _ := NewTextProperty(d, "text", "b", AsAttribute)
	if err := label.AddProperty(dup); !errors.Is(err, ErrDuplicateProperty) {
		t.Errorf("AddProperty(duplicate) error = %v, want ErrDuplicateProperty", err)
	}
	if _, err := NewTextProperty(d, "fx:id", "x", AsAttribute); !errors.Is(err, ErrInvalidName) {
		t.Errorf("NewTextProperty(fx:id) error = %v, want ErrInvalidName", err)
	}
	if _, err := NewComplexProperty(d, "graphic"); !errors.Is(err, ErrEmptyProperty) {
		t.Errorf("NewComplexProperty() error = %v, want ErrEmptyProperty", err)
	}
	if err := label.SetID("not an id"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("SetID() error = %v, want ErrInvalidID", err)
	}
}

func TestRefreshIdempotent(t *testing.T) {
	d := loadDoc(t, `<VBox fx:id="root"><Button text="OK"/></VBox>`)
	before := d.Text()
	for i := 1; i <= 3; i++ {
		if err := d.Refresh(); err != nil {
			t.Fatalf("Refresh() error: %v", err)
		}
		if got := d.Revision(); got != i {
			t.Errorf("Revision() = %d, want %d", got, i)
		}
	}
	if after := d.Text(); after != before {
		t.Errorf("Refresh changed the markup:\n%s\nwant:\n%s", after, before)
	}
}

func TestRefreshPreservesSelection(t *testing.T) {
	d := loadDoc(t, `<TabPane fx:id="tabs">
    <Tab fx:id="one" text="One"/>
    <Tab fx:id="two" text="Two"/>
</TabPane>`)
	tabs := valueOf(t, lookup(t, d, "tabs"))
	two := lookup(t, d, "two")
	if !tabs.Select(two.Value()) {
		t.Fatal("Select() = false")
	}

	if err := textProperty(t, instanceOf(t, d, "one"), "text").SetValue("First"); err != nil {
		t.Fatal(err)
	}
	tabs = valueOf(t, lookup(t, d, "tabs"))
	if got := tabs.Selected(); got != two.Value() {
		t.Errorf("Selected() = %v, want the second tab", got)
	}
}

type recordingStore struct {
	dump.Store
	puts []string
}

func (s *recordingStore) Put(ctx context.Context, name, reason string, data []byte) (string, error) {
	s.puts = append(s.puts, string(data))
	return dump.Hash(data), nil
}

func TestRefreshInconsistent(t *testing.T) {
	store := &recordingStore{Store: dump.NewNullStore()}
	opts := testOptions()
	opts.Dumps = store
	d, err := Load(context.Background(), []byte(header+`<VBox/>`), opts)
	if err != nil {
		t.Fatal(err)
	}
	broken := NewIntrinsic(d, Reference, "")
	cp, err := NewComplexProperty(d, "children", broken)
	if err != nil {
		t.Fatal(err)
	}

	err = d.Root().(*Instance).AddProperty(cp)
	if !gerr.Is(err, gerr.ErrCodeInconsistent) {
		t.Fatalf("AddProperty() error = %v, want INCONSISTENT", err)
	}
	text := gerr.DumpOf(err)
	if !strings.Contains(string(text), "<fx:reference") {
		t.Errorf("dump = %q, want the serialized document", text)
	}
	if len(store.puts) != 1 || store.puts[0] != string(text) {
		t.Errorf("dump store got %d entries, want the error dump", len(store.puts))
	}
}

func TestSetRoot(t *testing.T) {
	d := NewDocument(testOptions())
	box := NewInstance(d, "javafx.scene.layout.VBox")
	if err := d.SetRoot(box); err != nil {
		t.Fatalf("SetRoot() error: %v", err)
	}
	if d.Root() != box || box.Value() == nil {
		t.Fatal("root not installed and instantiated")
	}
	if err := d.SetRoot(nil); err != nil {
		t.Fatalf("SetRoot(nil) error: %v", err)
	}
	if d.Root() != nil || d.Glue().Root() != nil {
		t.Error("document not emptied")
	}
}

func TestMoveToDocument(t *testing.T) {
	src := loadDoc(t, `<VBox/>`)
	dst := loadDoc(t, `<HBox/>`)
	label := NewInstance(src, "javafx.scene.control.Label")
	p, _ := NewTextProperty(src, "text", "moved", AsAttribute)
	if err := label.AddProperty(p); err != nil {
		t.Fatal(err)
	}
	if err := MoveToDocument(label, dst); err != nil {
		t.Fatalf("MoveToDocument() error: %v", err)
	}
	if label.Document() != dst || p.Document() != dst {
		t.Fatal("ownership not transferred")
	}
	cp, err := NewComplexProperty(dst, "children", label)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.Root().(*Instance).AddProperty(cp); err != nil {
		t.Fatalf("AddProperty() error: %v", err)
	}
	if got, _ := valueOf(t, label).Get("text"); got != "moved" {
		t.Errorf("text = %v, want moved", got)
	}
}

func TestAddBareValueObject(t *testing.T) {
	d := loadDoc(t, `<VBox fx:id="root"><Button fx:id="b" text="OK"/></VBox>`)
	root := d.Root().(*Instance)

	s := NewInstance(d, "java.lang.String")
	if err := s.SetSpecialAttr("value", "x"); err != nil {
		t.Fatalf("SetSpecialAttr() error: %v", err)
	}
	cp, err := NewComplexProperty(d, "userData", s)
	if err != nil {
		t.Fatalf("NewComplexProperty() error: %v", err)
	}
	if err := root.AddProperty(cp); err != nil {
		t.Fatalf("AddProperty() error: %v", err)
	}

	tp := textProperty(t, root, "userData")
	if tp.Repr() != AsValueElement || tp.Value() != "x" {
		t.Errorf("userData = %s %q, want value-element x", tp.Repr(), tp.Value())
	}
	if got, _ := valueOf(t, root).Get("userData"); got != "x" {
		t.Errorf("userData value = %v, want x", got)
	}
	if err := d.Refresh(); err != nil {
		t.Errorf("Refresh() error: %v", err)
	}
}

func TestValueElementFollowsID(t *testing.T) {
	d := loadDoc(t, `<VBox fx:id="root">
    <userData>
        <String fx:id="s" fx:value="x"/>
    </userData>
</VBox>`)
	root := d.Root().(*Instance)
	s := lookup(t, d, "s")
	if _, ok := root.Property("userData").(*ComplexProperty); !ok {
		t.Fatalf("userData = %T, want *ComplexProperty", root.Property("userData"))
	}

	if err := s.SetID(""); err != nil {
		t.Fatalf("SetID(\"\") error: %v", err)
	}
	if tp := textProperty(t, root, "userData"); tp.Repr() != AsValueElement || tp.Value() != "x" {
		t.Errorf("userData = %s %q, want value-element x", tp.Repr(), tp.Value())
	}

	if err := s.SetID("s2"); err != nil {
		t.Fatalf("SetID(\"s2\") error: %v", err)
	}
	cp, ok := root.Property("userData").(*ComplexProperty)
	if !ok {
		t.Fatalf("userData = %T, want *ComplexProperty", root.Property("userData"))
	}
	if got := lookup(t, d, "s2"); got != s || cp.Values()[0] != s {
		t.Error("value object identity was not kept")
	}
	if s.ParentProperty() != cp {
		t.Error("value object is not attached to userData")
	}
	if got := d.Revision(); got != 2 {
		t.Errorf("Revision() = %d, want 2", got)
	}
}
