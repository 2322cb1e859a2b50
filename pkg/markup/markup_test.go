package markup

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		tag  string
		want Construct
	}{
		{"Button", ConstructObject},
		{"javafx.scene.control.Button", ConstructObject},
		{"children", ConstructProperty},
		{"GridPane.rowIndex", ConstructStaticProperty},
		{"fx:include", ConstructInclude},
		{"fx:reference", ConstructReference},
		{"fx:copy", ConstructCopy},
		{"fx:root", ConstructRoot},
		{"fx:define", ConstructIgnored},
		{"fx:script", ConstructIgnored},
		{"#comment", ConstructIgnored},
		{"fx:bogus", ConstructInvalid},
	}
	for _, tt := range tests {
		if got := Classify(tt.tag, "#comment"); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestIDExpression(t *testing.T) {
	tests := []struct {
		value  string
		wantID string
		wantOK bool
	}{
		{"$k1", "k1", true},
		{"$_x", "_x", true},
		{"$null", "", false},
		{"${a.b}", "", false},
		{"\\$k1", "", false},
		{"$", "", false},
		{"$1a", "", false},
		{"plain", "", false},
	}
	for _, tt := range tests {
		id, ok := IDExpression(tt.value)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("IDExpression(%q) = %q, %v; want %q, %v", tt.value, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestSplitStatic(t *testing.T) {
	owner, prop, ok := SplitStatic("GridPane.columnIndex")
	if !ok || owner != "GridPane" || prop != "columnIndex" {
		t.Errorf("SplitStatic() = %q, %q, %v", owner, prop, ok)
	}
	for _, name := range []string{"text", "a.b", "Button", ".x", "A."} {
		if _, _, ok := SplitStatic(name); ok {
			t.Errorf("SplitStatic(%q) ok = true, want false", name)
		}
	}
}

func TestPackageOf(t *testing.T) {
	tests := map[string]string{
		"javafx.scene.control.Button": "javafx.scene.control",
		"a.b.Outer.Inner":             "a.b",
		"java.lang.String":            "java.lang",
		"Button":                      "",
	}
	for in, want := range tests {
		if got := PackageOf(in); got != want {
			t.Errorf("PackageOf(%q) = %q, want %q", in, got, want)
		}
	}
}
