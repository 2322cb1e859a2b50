package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gluedoc/pkg/archive"
	"github.com/matzehuels/gluedoc/pkg/buildinfo"
	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/fxom"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<?import javafx.scene.control.*?>
<?import javafx.scene.layout.*?>
`

const formDoc = header + `<VBox fx:id="root">
    <HBox fx:id="row">
        <TextField fx:id="field"/>
        <Label fx:id="caption" text="Name">
            <labelFor>
                <fx:reference source="field"/>
            </labelFor>
        </Label>
    </HBox>
    <Label fx:id="echo" text="$field"/>
</VBox>`

const targetDoc = header + `<VBox fx:id="root">
    <Label fx:id="title" text="Title"/>
</VBox>`

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	return string(data)
}

// execute runs the root command of c with args and returns its output.
func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func newTestCLI() *CLI {
	return New(&bytes.Buffer{}, LogInfo)
}

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form.fxml", header+`<VBox><Button text="OK"/></VBox>`)

	got, err := execute(t, newTestCLI(), "format", path)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>

<?import java.lang.*?>
<?import javafx.scene.control.*?>
<?import javafx.scene.layout.*?>

<VBox xmlns="http://javafx.com/javafx" xmlns:fx="http://javafx.com/fxml/1">
    <Button text="OK"/>
</VBox>
`
	if got != want {
		t.Errorf("format output =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form.fxml", formDoc)
	out := filepath.Join(dir, "out.fxml")

	if _, err := execute(t, newTestCLI(), "format", path, "-o", out); err != nil {
		t.Fatalf("format error: %v", err)
	}
	text := readFile(t, out)
	if !strings.Contains(text, `<HBox fx:id="row">`) {
		t.Errorf("formatted file lost the row:\n%s", text)
	}
}

func TestFormatMissingFile(t *testing.T) {
	_, err := execute(t, newTestCLI(), "format", filepath.Join(t.TempDir(), "missing.fxml"))
	if !gerr.Is(err, gerr.ErrCodeFileNotFound) {
		t.Errorf("format error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.fxml", formDoc)
	partial := writeFile(t, dir, "partial.fxml", header+`<VBox><Gauge level="3"/></VBox>`)

	got, err := execute(t, newTestCLI(), "check", ok, partial)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	for _, want := range []string{ok, partial, "5 ids", "unresolved type Gauge", "1 unresolved"} {
		if !strings.Contains(got, want) {
			t.Errorf("check output does not contain %q:\n%s", want, got)
		}
	}
}

func TestCheckReportsFailures(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.fxml", formDoc)
	bad := writeFile(t, dir, "bad.fxml", header+`<VBox>`)

	got, err := execute(t, newTestCLI(), "check", ok, bad)
	if err == nil {
		t.Fatal("check with a malformed file succeeded")
	}
	if !strings.Contains(err.Error(), "1 of 2 documents failed") {
		t.Errorf("check error = %v", err)
	}
	if !strings.Contains(got, ok) {
		t.Errorf("check output does not report the valid file:\n%s", got)
	}
}

func TestCheckCountsNormalization(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "grid.fxml", header+`<GridPane columnConstraints="25,50,25"><Label/></GridPane>`)

	got, err := execute(t, newTestCLI(), "check", path)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(got, "normalized") {
		t.Errorf("check output does not report normalization:\n%s", got)
	}
}

func TestMissingCatalog(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form.fxml", formDoc)

	_, err := execute(t, newTestCLI(), "--catalog", filepath.Join(dir, "nope.toml"), "check", path)
	if err == nil || !strings.Contains(err.Error(), "load catalog") {
		t.Errorf("check error = %v, want catalog load failure", err)
	}
}

func TestIDs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form.fxml", formDoc)

	got, err := execute(t, newTestCLI(), "ids", path)
	if err != nil {
		t.Fatalf("ids error: %v", err)
	}
	for _, want := range []string{"caption", "echo", "field", "row", "javafx.scene.layout.HBox", "1 reference, 1 expression"} {
		if !strings.Contains(got, want) {
			t.Errorf("ids output does not contain %q:\n%s", want, got)
		}
	}
}

func TestIDRows(t *testing.T) {
	c := newTestCLI()
	path := writeFile(t, t.TempDir(), "form.fxml", formDoc)
	d, err := c.loadDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("loadDocument() error: %v", err)
	}

	rows := idRows(d)
	var ids []string
	for _, r := range rows {
		ids = append(ids, r[0])
	}
	if got, want := strings.Join(ids, ","), "caption,echo,field,root,row"; got != want {
		t.Errorf("idRows() ids = %s, want %s", got, want)
	}
	if got := rows[2][3]; got != "1 reference, 1 expression" {
		t.Errorf("field referrers = %q", got)
	}
	if got := rows[0][3]; got != "-" {
		t.Errorf("caption referrers = %q, want -", got)
	}
}

func TestClone(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "form.fxml", formDoc)
	dst := writeFile(t, dir, "target.fxml", header+`<VBox fx:id="root">
    <HBox fx:id="row"/>
</VBox>`)

	if _, err := execute(t, newTestCLI(), "clone", src, "row", dst, "--into", "root/children"); err != nil {
		t.Fatalf("clone error: %v", err)
	}
	text := readFile(t, dst)
	for _, want := range []string{`<HBox fx:id="row1">`, `<TextField fx:id="field"/>`, `<fx:reference source="field"/>`} {
		if !strings.Contains(text, want) {
			t.Errorf("cloned document does not contain %q:\n%s", want, text)
		}
	}
}

func TestCloneSameFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form.fxml", formDoc)

	if _, err := execute(t, newTestCLI(), "clone", path, "caption", path, "--into", "row/children"); err != nil {
		t.Fatalf("clone error: %v", err)
	}
	text := readFile(t, path)
	if !strings.Contains(text, `<Label fx:id="caption1" text="Name"/>`) {
		t.Errorf("weak labelFor was not dropped from the clone:\n%s", text)
	}
}

func TestCloneErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "form.fxml", formDoc)
	dst := writeFile(t, dir, "target.fxml", targetDoc)

	tests := []struct {
		name string
		args []string
		code gerr.Code
	}{
		{"unknown id", []string{"clone", src, "ghost", dst, "--into", "root/children"}, gerr.ErrCodeNotFound},
		{"unknown target", []string{"clone", src, "row", dst, "--into", "ghost/children"}, gerr.ErrCodeNotFound},
		{"text property", []string{"clone", src, "row", dst, "--into", "title/text"}, gerr.ErrCodeInvalidInput},
		{"missing property", []string{"clone", src, "row", dst, "--into", "root"}, gerr.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, newTestCLI(), tt.args...)
			if got := gerr.GetCode(err); got != tt.code {
				t.Errorf("clone error = %v, code %s, want %s", err, got, tt.code)
			}
		})
	}
}

func TestCopyPaste(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "clipboard.db")
	src := writeFile(t, dir, "form.fxml", formDoc)
	dst := writeFile(t, dir, "target.fxml", targetDoc)

	got, err := execute(t, newTestCLI(), "--clipboard", db, "copy", src, "row")
	if err != nil {
		t.Fatalf("copy error: %v", err)
	}
	if !strings.Contains(got, "Copied 1 object") {
		t.Errorf("copy output = %q", got)
	}

	for range 2 {
		if _, err := execute(t, newTestCLI(), "--clipboard", db, "paste", dst, "--into", "root/children"); err != nil {
			t.Fatalf("paste error: %v", err)
		}
	}
	text := readFile(t, dst)
	for _, want := range []string{
		`<HBox fx:id="row">`,
		`<HBox fx:id="row1">`,
		`<TextField fx:id="field1"/>`,
		`<fx:reference source="field1"/>`,
		`<Label fx:id="title" text="Title"/>`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("pasted document does not contain %q:\n%s", want, text)
		}
	}
}

func TestCopyRejectsExternalReferences(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "form.fxml", formDoc)

	_, err := execute(t, newTestCLI(), "--clipboard", filepath.Join(dir, "clipboard.db"), "copy", src, "caption")
	if !gerr.Is(err, gerr.ErrCodePrecondition) {
		t.Errorf("copy error = %v, want PRECONDITION", err)
	}
}

func TestCopyPicker(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "clipboard.db")
	src := writeFile(t, dir, "form.fxml", formDoc)

	c := newTestCLI()
	var offered [][]string
	c.picker = func(rows [][]string) ([]string, error) {
		offered = rows
		return []string{"row"}, nil
	}
	got, err := execute(t, c, "--clipboard", db, "copy", src)
	if err != nil {
		t.Fatalf("copy error: %v", err)
	}
	if len(offered) != 5 {
		t.Errorf("picker offered %d rows, want 5", len(offered))
	}
	if !strings.Contains(got, "Copied 1 object") {
		t.Errorf("copy output = %q", got)
	}

	c.picker = func([][]string) ([]string, error) { return nil, nil }
	got, err = execute(t, c, "--clipboard", db, "copy", src)
	if err != nil {
		t.Fatalf("copy error: %v", err)
	}
	if !strings.Contains(got, "Nothing selected") {
		t.Errorf("copy output = %q", got)
	}
}

func TestClipboardCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "clipboard.db")
	src := writeFile(t, dir, "form.fxml", formDoc)

	got, err := execute(t, newTestCLI(), "--clipboard", db, "clipboard", "list")
	if err != nil {
		t.Fatalf("clipboard list error: %v", err)
	}
	if !strings.Contains(got, "Clipboard is empty") {
		t.Errorf("clipboard list output = %q", got)
	}

	if _, err := execute(t, newTestCLI(), "--clipboard", db, "copy", src, "row", "field"); err != nil {
		t.Fatalf("copy error: %v", err)
	}
	got, err = execute(t, newTestCLI(), "--clipboard", db, "clipboard", "list")
	if err != nil {
		t.Fatalf("clipboard list error: %v", err)
	}
	if !strings.Contains(got, "2 objects") || !strings.Contains(got, "form.fxml") {
		t.Errorf("clipboard list output:\n%s", got)
	}

	got, err = execute(t, newTestCLI(), "--clipboard", db, "clipboard", "show")
	if err != nil {
		t.Fatalf("clipboard show error: %v", err)
	}
	if !strings.Contains(got, "version: 1") || !strings.Contains(got, "location: form.fxml") {
		t.Errorf("clipboard show output:\n%s", got)
	}

	got, err = execute(t, newTestCLI(), "--clipboard", db, "clipboard", "path")
	if err != nil {
		t.Fatalf("clipboard path error: %v", err)
	}
	if strings.TrimSpace(got) != db {
		t.Errorf("clipboard path = %q, want %q", strings.TrimSpace(got), db)
	}

	if _, err := execute(t, newTestCLI(), "--clipboard", db, "clipboard", "delete", "no-such-key"); err == nil {
		t.Error("clipboard delete of an unknown key succeeded")
	}
}

func TestPasteEmptyClipboard(t *testing.T) {
	dir := t.TempDir()
	dst := writeFile(t, dir, "target.fxml", targetDoc)

	_, err := execute(t, newTestCLI(), "--clipboard", filepath.Join(dir, "clipboard.db"), "paste", dst, "--into", "root/children")
	if err == nil {
		t.Fatal("paste from an empty clipboard succeeded")
	}
	if text := readFile(t, dst); text != targetDoc {
		t.Errorf("failed paste rewrote the document:\n%s", text)
	}
}

func TestDot(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form.fxml", formDoc)

	got, err := execute(t, newTestCLI(), "dot", path)
	if err != nil {
		t.Fatalf("dot error: %v", err)
	}
	if !strings.HasPrefix(got, "digraph G {") {
		t.Errorf("dot output does not start with a digraph:\n%s", got)
	}
	if !strings.Contains(got, "HBox #row") {
		t.Errorf("dot output does not label the row:\n%s", got)
	}
}

func TestCompletion(t *testing.T) {
	got, err := execute(t, newTestCLI(), "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(got, appName) {
		t.Errorf("bash completion does not mention %s", appName)
	}
}

func TestVersion(t *testing.T) {
	got, err := execute(t, newTestCLI(), "--version")
	if err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !strings.Contains(got, buildinfo.Version) {
		t.Errorf("--version output = %q, want version %q", got, buildinfo.Version)
	}
}

func TestExamples(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantNot string
	}{
		{
			name:    "form with the built-in catalog",
			args:    []string{"check", "../../examples/form.fxml"},
			want:    "normalized",
			wantNot: "unresolved",
		},
		{
			name:    "dashboard with the widgets catalog",
			args:    []string{"--catalog", "../../examples/widgets.toml", "check", "../../examples/dashboard.fxml"},
			want:    "normalized",
			wantNot: "unresolved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, newTestCLI(), tt.args...)
			if err != nil {
				t.Fatalf("check error: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("check output does not contain %q:\n%s", tt.want, got)
			}
			if tt.wantNot != "" && strings.Contains(got, tt.wantNot) {
				t.Errorf("check output contains %q:\n%s", tt.wantNot, got)
			}
		})
	}
}

func TestPasteFailureLeavesDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := newTestCLI()

	src, err := c.loadDocument(ctx, writeFile(t, dir, "form.fxml", formDoc))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	dst, err := c.loadDocument(ctx, writeFile(t, dir, "target.fxml", targetDoc))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	row, _ := src.Index().Lookup("row")
	a, err := archive.Encode([]fxom.Object{row})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	before, revision := dst.Text(), dst.Revision()

	_, err = paste(ctx, dst, a, target{id: "title", property: "text"})
	if !gerr.Is(err, gerr.ErrCodeInvalidInput) {
		t.Errorf("paste() error = %v, want INVALID_INPUT", err)
	}
	if got := dst.Text(); got != before {
		t.Errorf("document changed by a failed paste:\n%s", got)
	}
	if got := dst.Revision(); got != revision {
		t.Errorf("Revision() = %d, want %d", got, revision)
	}
}

func TestRollback(t *testing.T) {
	dir := t.TempDir()
	d, err := newTestCLI().loadDocument(context.Background(), writeFile(t, dir, "target.fxml", targetDoc))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	before := d.Text()

	d.BeginUpdate()
	button := fxom.NewInstance(d, "javafx.scene.control.Button")
	if err := attach(d, target{id: "root", property: "children"}, button); err != nil {
		t.Fatalf("attach() error: %v", err)
	}
	cause := errors.New("second object failed")
	err = rollback(d, []fxom.Object{button}, cause)
	if !errors.Is(err, cause) {
		t.Errorf("rollback() error = %v, want %v", err, cause)
	}
	if button.ParentProperty() != nil {
		t.Error("pasted object is still attached")
	}
	if got := d.Text(); got != before {
		t.Errorf("Text() after rollback:\n%s\nwant:\n%s", got, before)
	}
}
