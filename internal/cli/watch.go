package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
	"github.com/matzehuels/gluedoc/pkg/fxom"
	"github.com/matzehuels/gluedoc/pkg/watch"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var cfg watch.Config

	cmd := &cobra.Command{
		Use:               "watch <file>",
		Short:             "Reload a document on change and print a summary per revision",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMarkupFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			w := cmd.OutOrStdout()

			opts, err := c.documentOptions(path)
			if err != nil {
				return err
			}
			d, err := fxom.LoadFile(ctx, path, opts)
			if err != nil {
				return err
			}
			r := &revisionPrinter{w: w, path: path}
			r.print(d, nil)

			cfg.Logger = c.Logger
			watcher, err := watch.New(path, opts, r.print, cfg)
			if err != nil {
				return err
			}
			if err := watcher.Start(ctx); err != nil {
				watcher.Stop()
				return err
			}
			printInfo(w, "Watching %s (ctrl+c to stop)", path)

			<-ctx.Done()
			watcher.Stop()
			c.Logger.Debug("watch stopped", "reloads", watcher.Reloads())
			return nil
		},
	}

	cmd.Flags().DurationVar(&cfg.Debounce, "debounce", watch.DefaultDebounce, "quiet period after the last write before reloading")

	return cmd
}

// revisionPrinter prints one block per loaded revision of a file.
type revisionPrinter struct {
	mu       sync.Mutex
	w        io.Writer
	path     string
	revision int
}

func (r *revisionPrinter) print(d *fxom.Document, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		printError(r.w, "%s: %s", r.path, gerr.UserMessage(err))
		return
	}
	r.revision++
	label := fmt.Sprintf("%s revision %d", r.path, r.revision)
	if len(d.Unresolved()) > 0 {
		printWarning(r.w, "%s", label)
	} else {
		printSuccess(r.w, "%s", label)
	}
	printStats(r.w, statsOf(d))
	for _, u := range d.Unresolved() {
		printDetail(r.w, "unresolved %s %s", u.Kind, u.Name)
	}
}
