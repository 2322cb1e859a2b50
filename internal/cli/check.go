package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/fxom"
)

// docStats summarizes a loaded document.
type docStats struct {
	objects    int
	ids        int
	normalized int
	unresolved int
}

// statsOf counts the objects, ids and unresolved nodes of d.
func statsOf(d *fxom.Document) docStats {
	s := docStats{ids: d.Index().Len(), unresolved: len(d.Unresolved())}
	fxom.Walk(d.Root(), func(fxom.Object) bool {
		s.objects++
		return true
	})
	return s
}

// checkResult is the outcome of checking one file.
type checkResult struct {
	path       string
	stats      docStats
	unresolved []fxom.Unresolved
	err        error
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:               "check <files...>",
		Short:             "Load markup files and report unresolved nodes and normalization changes",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeMarkupFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			spin := newSpinner(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Loading %s...", plural(len(args), "document")))
			spin.Start()
			results, err := c.runCheck(cmd.Context(), args, jobs)
			spin.Stop()
			if err != nil {
				return err
			}
			return reportCheck(cmd, results)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files loaded concurrently")

	return cmd
}

// runCheck loads every path concurrently. Per-file failures are recorded
// in the results; only cancellation aborts the run.
func (c *CLI) runCheck(ctx context.Context, paths []string, jobs int) ([]checkResult, error) {
	// Load the catalog once before the workers share it.
	if _, err := c.service(); err != nil {
		return nil, err
	}

	prog := newProgress(c.Logger)
	results := make([]checkResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkFile(ctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prog.done("checked documents", "count", len(paths))
	return results, nil
}

// checkFile loads path without normalizing, then normalizes and refreshes
// to count and verify the changes.
func (c *CLI) checkFile(ctx context.Context, path string) checkResult {
	res := checkResult{path: path}
	opts, err := c.documentOptions(path)
	if err != nil {
		res.err = err
		return res
	}
	opts.SkipNormalize = true

	d, err := fxom.LoadFile(ctx, path, opts)
	if err != nil {
		res.err = err
		return res
	}
	normalized := fxom.Normalize(d)
	if normalized > 0 {
		if err := d.Refresh(); err != nil {
			res.err = err
			return res
		}
	}

	res.stats = statsOf(d)
	res.stats.normalized = normalized
	res.unresolved = d.Unresolved()
	c.Logger.Debug("checked", "path", path, "objects", res.stats.objects, "normalized", normalized)
	return res
}

// reportCheck prints one block per file and fails when any file failed.
func reportCheck(cmd *cobra.Command, results []checkResult) error {
	w := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			printError(w, "%s: %s", r.path, gerr.UserMessage(r.err))
			continue
		}
		if len(r.unresolved) > 0 {
			printWarning(w, "%s", r.path)
		} else {
			printSuccess(w, "%s", r.path)
		}
		printStats(w, r.stats)
		for _, u := range r.unresolved {
			printDetail(w, "unresolved %s %s", u.Kind, u.Name)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to load", failed, len(results))
	}
	return nil
}
