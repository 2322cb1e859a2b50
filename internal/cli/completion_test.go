package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gluedoc/pkg/clipboard"
)

func TestCompleteArguments(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "form.fxml", formDoc)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"markup file", []string{"check", ""}, []string{"fxml", ":8"}, nil},
		{"catalog flag", []string{"ids", "--catalog", ""}, []string{"toml", ":8"}, nil},
		{"copy ids", []string{"copy", src, ""}, []string{"root", "row", "field", ":4"}, nil},
		{"copy skips given ids", []string{"copy", src, "row", ""}, []string{"field", ":4"}, []string{"row\n"}},
		{"copy id prefix", []string{"copy", src, "ca"}, []string{"caption"}, []string{"field"}},
		{"clone id", []string{"clone", src, ""}, []string{"echo", ":4"}, nil},
		{"clone destination", []string{"clone", src, "row", ""}, []string{"fxml", ":8"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"__complete"}, tt.args...)
			got, err := execute(t, newTestCLI(), args...)
			if err != nil {
				t.Fatalf("__complete error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("completions missing %q:\n%s", want, got)
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains(got, bad) {
					t.Errorf("completions contain %q:\n%s", bad, got)
				}
			}
		})
	}
}

func TestCompleteClipboardKeys(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "clipboard.db")
	src := writeFile(t, dir, "form.fxml", formDoc)

	if _, err := execute(t, newTestCLI(), "--clipboard", db, "copy", src, "row"); err != nil {
		t.Fatalf("copy error: %v", err)
	}
	store, err := clipboard.Open(db)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	items, err := store.List(context.Background())
	store.Close()
	if err != nil || len(items) != 1 {
		t.Fatalf("List() = %d items, %v", len(items), err)
	}
	key := items[0].Key

	for _, args := range [][]string{
		{"clipboard", "show", ""},
		{"clipboard", "delete", ""},
		{"paste", src, "--key", ""},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			full := append([]string{"__complete", "--clipboard", db}, args...)
			got, err := execute(t, newTestCLI(), full...)
			if err != nil {
				t.Fatalf("__complete error: %v", err)
			}
			if !strings.Contains(got, key) || !strings.Contains(got, ":4") {
				t.Errorf("completions = %q, want key %q", got, key)
			}
		})
	}
}
