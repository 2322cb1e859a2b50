package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/fxom"
)

// cloneOpts holds the command-line flags for the clone command.
type cloneOpts struct {
	into     string // insertion point in the destination, "<id>/<property>"
	output   string // output file; the destination is rewritten when empty
	keepID   bool   // keep the id of the cloned root when it is free
	weakless bool   // deep-copy weak references instead of dropping them
}

// cloneCommand creates the clone command.
func (c *CLI) cloneCommand() *cobra.Command {
	var opts cloneOpts

	cmd := &cobra.Command{
		Use:   "clone <src> <id> <dst>",
		Short: "Clone a subtree into another document",
		Long: `Clone copies the object with the given id from src into dst and appends
it at --into. Objects the subtree refers to outside of itself are copied
along, except through weak properties (labelFor, clip, expandedPane by
default), which are dropped. Imported ids that collide with ids of dst are
renamed. src and dst may be the same file.`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: c.completeClone,
		RunE: func(cmd *cobra.Command, args []string) error {
			into, err := parseTarget(opts.into)
			if err != nil {
				return err
			}
			return c.runClone(cmd, args[0], args[1], args[2], into, opts)
		},
	}

	cmd.Flags().StringVar(&opts.into, "into", "", "insertion point in dst as <id>/<property> (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: rewrite dst)")
	cmd.Flags().BoolVar(&opts.keepID, "keep-id", false, "keep the id of the cloned root unless it collides")
	cmd.Flags().BoolVar(&opts.weakless, "no-weak", false, "copy objects behind weak properties instead of dropping them")
	_ = cmd.MarkFlagRequired("into")

	return cmd
}

func (c *CLI) runClone(cmd *cobra.Command, srcPath, id, dstPath string, into target, opts cloneOpts) error {
	ctx := cmd.Context()
	src, dst, err := c.loadPair(ctx, srcPath, dstPath)
	if err != nil {
		return err
	}
	obj, ok := src.Index().Lookup(id)
	if !ok {
		return gerr.New(gerr.ErrCodeNotFound, "%s: no object with id %q", srcPath, id)
	}

	weak, err := c.weakSet()
	if err != nil {
		return err
	}
	if opts.weakless {
		weak = nil
	}
	clone, err := fxom.NewCloner(dst, weak).Clone(obj, opts.keepID)
	if err != nil {
		return err
	}
	if err := attach(dst, into, clone); err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = dstPath
	}
	if err := dst.SaveFile(out); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Cloned %s into %s", id, into)
	if clone.ID() != "" && clone.ID() != id {
		printDetail(w, "renamed %s %s %s", id, iconArrow, clone.ID())
	}
	printFile(w, out)
	return nil
}

// loadPair loads src and dst, sharing one document when both name the
// same file.
func (c *CLI) loadPair(ctx context.Context, srcPath, dstPath string) (*fxom.Document, *fxom.Document, error) {
	src, err := c.loadDocument(ctx, srcPath)
	if err != nil {
		return nil, nil, err
	}
	if sameFile(srcPath, dstPath) {
		return src, src, nil
	}
	dst, err := c.loadDocument(ctx, dstPath)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
