package fxom

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeNullText(t *testing.T) {
	d := loadDoc(t, `<VBox><Button fx:id="b" text="$null" style="x"/></VBox>`)
	button := instanceOf(t, d, "b")
	if button.Property("text") != nil {
		t.Error("null text property kept")
	}
	if button.Property("style") == nil {
		t.Error("style property removed")
	}
	if strings.Contains(d.Text(), "$null") {
		t.Errorf("Save() kept the null value:\n%s", d.Text())
	}
}

func TestNormalizeForwardReference(t *testing.T) {
	d := loadDoc(t, `<VBox fx:id="root">
    <Label fx:id="caption" text="Name">
        <labelFor>
            <fx:reference source="field"/>
        </labelFor>
    </Label>
    <TextField fx:id="field"/>
</VBox>`)

	caption := instanceOf(t, d, "caption")
	cp, ok := caption.Property("labelFor").(*ComplexProperty)
	if !ok || len(cp.Values()) != 1 {
		t.Fatalf("labelFor = %v, want one value", caption.Property("labelFor"))
	}
	field, ok := cp.Values()[0].(*Instance)
	if !ok || field.ID() != "field" {
		t.Fatalf("labelFor holds %T, want the text field", cp.Values()[0])
	}

	kids := children(t, d.Root().(*Instance))
	if diff := cmp.Diff([]string{"Label"}, tags(kids)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if got, _ := valueOf(t, caption).Get("labelFor"); got != field.Value() {
		t.Error("labelFor does not resolve to the text field")
	}
	if refs := d.Index().Intrinsics(Reference, "field"); len(refs) != 0 {
		t.Errorf("Intrinsics(Reference, field) = %d, want 0", len(refs))
	}
	if strings.Contains(d.Text(), "fx:reference") {
		t.Errorf("Save() kept the reference:\n%s", d.Text())
	}
	if got := d.Revision(); got != 1 {
		t.Errorf("Revision() = %d, want 1", got)
	}
	if n := Normalize(d); n != 0 {
		t.Errorf("Normalize() again = %d, want 0", n)
	}
}

func TestNormalizeForwardReferenceEmptiesOwner(t *testing.T) {
	d := loadDoc(t, `<BorderPane fx:id="root">
    <left>
        <Label fx:id="caption"><labelFor><fx:reference source="field"/></labelFor></Label>
    </left>
    <center>
        <TextField fx:id="field"/>
    </center>
</BorderPane>`)

	root := d.Root().(*Instance)
	if root.Property("center") != nil {
		t.Error("property emptied by the move was kept")
	}
	field := lookup(t, d, "field")
	if Parent(field) != lookup(t, d, "caption") {
		t.Errorf("Parent(field) = %v, want caption", Parent(field))
	}
	if len(d.Unresolved()) != 0 {
		t.Errorf("Unresolved() = %v, want none", d.Unresolved())
	}
}

func TestNormalizeMissingReference(t *testing.T) {
	d := loadDoc(t, `<VBox><Label fx:id="l"><labelFor><fx:reference source="ghost"/></labelFor></Label></VBox>`)
	if instanceOf(t, d, "l").Property("labelFor") != nil {
		t.Error("reference to a missing id kept")
	}
	if len(d.Unresolved()) != 0 {
		t.Errorf("Unresolved() = %v, want none", d.Unresolved())
	}
}

func TestNormalizeGridConstraints(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
		want  []string
	}{
		{
			name:  "array",
			body:  `<GridPane fx:id="grid" columnConstraints="25,50,25"><Label/></GridPane>`,
			count: 3,
			want:  []string{"25", "50", "25"},
		},
		{
			name:  "children extend the grid",
			body:  `<GridPane fx:id="grid" columnConstraints="25,75"><Label GridPane.columnIndex="2" GridPane.columnSpan="2"/></GridPane>`,
			count: 4,
			want:  []string{"25", "75", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := loadDoc(t, tt.body)
			grid := instanceOf(t, d, "grid")
			cp, ok := grid.Property("columnConstraints").(*ComplexProperty)
			if !ok {
				t.Fatalf("columnConstraints = %T, want *ComplexProperty", grid.Property("columnConstraints"))
			}
			var got []string
			for _, v := range cp.Values() {
				inst := v.(*Instance)
				if inst.Type() != "javafx.scene.layout.ColumnConstraints" {
					t.Errorf("constraint type = %q", inst.Type())
				}
				w := ""
				if p, ok := inst.Property("percentWidth").(*TextProperty); ok {
					w = p.Value()
				}
				got = append(got, w)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("constraints mismatch (-want +got):\n%s", diff)
			}
			if n := valueOf(t, grid).ColumnCount(); n != tt.count {
				t.Errorf("ColumnCount() = %d, want %d", n, tt.count)
			}
			if n := Normalize(d); n != 0 {
				t.Errorf("Normalize() again = %d, want 0", n)
			}
		})
	}
}

func TestSkipNormalize(t *testing.T) {
	opts := testOptions()
	opts.SkipNormalize = true
	d, err := Load(context.Background(), []byte(header+`<GridPane fx:id="grid" columnConstraints="50,50"/>`), opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := instanceOf(t, d, "grid").Property("columnConstraints").(*TextProperty); !ok {
		t.Fatal("constraints expanded despite SkipNormalize")
	}
	if n := Normalize(d); n != 1 {
		t.Errorf("Normalize() = %d, want 1", n)
	}
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if n := Normalize(d); n != 0 {
		t.Errorf("Normalize() after refresh = %d, want 0", n)
	}
}
