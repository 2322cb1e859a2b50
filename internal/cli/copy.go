package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gluedoc/pkg/archive"
	"github.com/matzehuels/gluedoc/pkg/clipboard"
	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/fxom"
)

// copyCommand creates the copy command.
func (c *CLI) copyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <file> [ids...]",
		Short: "Archive objects of a document into the clipboard",
		Long: `Copy archives the objects with the given ids into the clipboard store.
Every object must be self-contained: references, copies and expressions
inside it may only name ids declared inside it. Without ids an interactive
picker lists the ids of the document.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeFileThenIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCopy(cmd, args[0], args[1:])
		},
	}
}

func (c *CLI) runCopy(cmd *cobra.Command, path string, ids []string) error {
	ctx := cmd.Context()
	d, err := c.loadDocument(ctx, path)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ids, err = c.pickIDs(cmd, idRows(d))
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			printInfo(cmd.OutOrStdout(), "Nothing selected")
			return nil
		}
	}

	objs := make([]fxom.Object, 0, len(ids))
	for _, id := range ids {
		obj, ok := d.Index().Lookup(id)
		if !ok {
			return gerr.New(gerr.ErrCodeNotFound, "%s: no object with id %q", path, id)
		}
		objs = append(objs, obj)
	}
	if err := archive.Check(objs); err != nil {
		return err
	}
	a, err := archive.Encode(objs)
	if err != nil {
		return err
	}

	store, err := c.openClipboard()
	if err != nil {
		return err
	}
	defer store.Close()
	key, err := store.Put(ctx, a)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Copied %s", plural(len(objs), "object"))
	printDetail(w, "key: %s", key)
	return nil
}

// pickIDs lets the user mark rows of the ids table.
func (c *CLI) pickIDs(cmd *cobra.Command, rows [][]string) ([]string, error) {
	if len(rows) == 0 {
		return nil, gerr.New(gerr.ErrCodeInvalidInput, "document declares no ids")
	}
	if c.picker != nil {
		return c.picker(rows)
	}
	return runPicker(cmd.InOrStdin(), cmd.ErrOrStderr(), rows)
}

func runPicker(in io.Reader, out io.Writer, rows [][]string) ([]string, error) {
	p := tea.NewProgram(NewIDPickerModel(rows), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("id picker: %w", err)
	}
	return final.(IDPickerModel).Selected(), nil
}

// pasteOpts holds the command-line flags for the paste command.
type pasteOpts struct {
	into   string // insertion point, "<id>/<property>"
	key    string // clipboard key; the latest entry when empty
	output string // output file; the document is rewritten when empty
}

// pasteCommand creates the paste command.
func (c *CLI) pasteCommand() *cobra.Command {
	var opts pasteOpts

	cmd := &cobra.Command{
		Use:   "paste <file>",
		Short: "Insert archived objects from the clipboard into a document",
		Long: `Paste decodes the latest clipboard entry (or --key) against the document
and appends its objects at --into. Archived ids are kept unless the document
already declares them, in which case they are renamed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMarkupFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			into, err := parseTarget(opts.into)
			if err != nil {
				return err
			}
			return c.runPaste(cmd, args[0], into, opts)
		},
	}

	cmd.Flags().StringVar(&opts.into, "into", "", "insertion point as <id>/<property> (required)")
	cmd.Flags().StringVar(&opts.key, "key", "", "clipboard key (default: latest entry)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: rewrite file)")
	_ = cmd.MarkFlagRequired("into")
	_ = cmd.RegisterFlagCompletionFunc("key", c.completeClipboardKeys)

	return cmd
}

func (c *CLI) runPaste(cmd *cobra.Command, path string, into target, opts pasteOpts) error {
	ctx := cmd.Context()
	d, err := c.loadDocument(ctx, path)
	if err != nil {
		return err
	}

	store, err := c.openClipboard()
	if err != nil {
		return err
	}
	item, err := fetchItem(ctx, store, opts.key)
	store.Close()
	if err != nil {
		return err
	}

	pasted, err := paste(ctx, d, item.Archive, into)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = path
	}
	if err := d.SaveFile(out); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Pasted %s into %s", plural(len(pasted), "object"), into)
	for _, obj := range pasted {
		if id := obj.ID(); id != "" {
			printDetail(w, "%s", id)
		}
	}
	printFile(w, out)
	return nil
}

func fetchItem(ctx context.Context, store *clipboard.Store, key string) (*clipboard.Item, error) {
	if key == "" {
		return store.Latest(ctx)
	}
	return store.Get(ctx, key)
}

// paste decodes a into d and attaches the objects at into, renaming ids
// that collide with ids of d. All objects are attached in one update; when
// one fails the objects attached before it are removed again.
func paste(ctx context.Context, d *fxom.Document, a *archive.Archive, into target) ([]fxom.Object, error) {
	decoded, err := archive.Decode(ctx, a, d)
	if err != nil {
		return nil, err
	}
	cloner := fxom.NewCloner(d, nil)

	d.BeginUpdate()
	out := make([]fxom.Object, 0, len(decoded))
	for _, obj := range decoded {
		clone, err := cloner.Clone(obj, true)
		if err == nil {
			err = attach(d, into, clone)
		}
		if err != nil {
			return nil, rollback(d, out, err)
		}
		out = append(out, clone)
	}
	if err := d.EndUpdate(); err != nil {
		return nil, err
	}
	return out, nil
}

// rollback detaches the pasted objects and closes the update opened by
// paste, joining any failure to cause.
func rollback(d *fxom.Document, pasted []fxom.Object, cause error) error {
	errs := []error{cause}
	for i := len(pasted) - 1; i >= 0; i-- {
		if err := pasted[i].RemoveFromParent(); err != nil {
			errs = append(errs, fmt.Errorf("remove pasted <%s>: %w", pasted[i].Glue().Tag(), err))
		}
	}
	if err := d.EndUpdate(); err != nil {
		errs = append(errs, fmt.Errorf("refresh after rollback: %w", err))
	}
	return errors.Join(errs...)
}
