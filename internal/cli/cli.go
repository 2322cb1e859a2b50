// Package cli implements the gluedoc command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gluedoc/pkg/buildinfo"
	"github.com/matzehuels/gluedoc/pkg/clipboard"
	"github.com/matzehuels/gluedoc/pkg/dump"
	"github.com/matzehuels/gluedoc/pkg/fxom"
	"github.com/matzehuels/gluedoc/pkg/instantiate"
	"github.com/matzehuels/gluedoc/pkg/instantiate/catalog"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gluedoc"

	// clipboardFile is the name of the clipboard database in the data directory.
	clipboardFile = "clipboard.db"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	catalogPath   string
	clipboardPath string
	dumpDir       string

	catalog *catalog.Catalog

	// picker replaces the interactive id picker of the copy command.
	picker func(rows [][]string) ([]string, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "gluedoc edits markup documents as live object graphs",
		Long:         `gluedoc loads declarative UI markup into an object graph, keeps markup and objects in sync, and clones, archives and pastes subtrees between documents with id merging.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.catalogPath, "catalog", "", "type catalog (TOML); defaults to the built-in catalog")
	flags.StringVar(&c.clipboardPath, "clipboard", "", "clipboard database (default: $XDG_DATA_HOME/gluedoc/clipboard.db)")
	flags.StringVar(&c.dumpDir, "dump-dir", "", "write the markup of failed refreshes to this directory")
	_ = root.RegisterFlagCompletionFunc("catalog", completeCatalogFiles)
	_ = root.RegisterFlagCompletionFunc("dump-dir", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	})

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.formatCommand())
	root.AddCommand(c.idsCommand())
	root.AddCommand(c.cloneCommand())
	root.AddCommand(c.copyCommand())
	root.AddCommand(c.pasteCommand())
	root.AddCommand(c.clipboardCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Document Factory
// =============================================================================

// service returns the type catalog selected by --catalog, loading it once.
func (c *CLI) service() (*catalog.Catalog, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}
	if c.catalogPath == "" {
		c.catalog = catalog.DefaultCatalog()
		return c.catalog, nil
	}
	cat, err := catalog.LoadFile(c.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	c.Logger.Debug("catalog loaded", "path", c.catalogPath, "types", len(cat.Types()))
	c.catalog = cat
	return cat, nil
}

// documentOptions returns load options for a document at path. Includes
// resolve within the directory of path.
func (c *CLI) documentOptions(path string) (fxom.Options, error) {
	cat, err := c.service()
	if err != nil {
		return fxom.Options{}, err
	}
	dumps, err := c.dumps()
	if err != nil {
		return fxom.Options{}, err
	}
	return fxom.Options{
		Location:  filepath.Base(path),
		Service:   cat,
		Resources: instantiate.FSResources{FS: os.DirFS(filepath.Dir(path))},
		Logger:    c.Logger,
		Dumps:     dumps,
	}, nil
}

// dumps returns the store for failed refreshes selected by --dump-dir.
func (c *CLI) dumps() (dump.Store, error) {
	if c.dumpDir == "" {
		return dump.NewNullStore(), nil
	}
	store, err := dump.NewDirStore(c.dumpDir)
	if err != nil {
		return nil, fmt.Errorf("open dump dir: %w", err)
	}
	return store, nil
}

// loadDocument loads the markup file at path.
func (c *CLI) loadDocument(ctx context.Context, path string) (*fxom.Document, error) {
	opts, err := c.documentOptions(path)
	if err != nil {
		return nil, err
	}
	return fxom.LoadFile(ctx, path, opts)
}

// weakSet returns the weak properties declared by the catalog, or the
// defaults when it declares none.
func (c *CLI) weakSet() (fxom.WeakSet, error) {
	cat, err := c.service()
	if err != nil {
		return nil, err
	}
	if weak := cat.Weak(); len(weak) > 0 {
		return fxom.NewWeakSet(weak...), nil
	}
	return fxom.DefaultWeakSet(), nil
}

// openClipboard opens the clipboard database selected by --clipboard.
func (c *CLI) openClipboard() (*clipboard.Store, error) {
	path := c.clipboardPath
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, clipboardFile)
	}
	store, err := clipboard.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clipboard: %w", err)
	}
	c.Logger.Debug("clipboard opened", "path", path)
	return store, nil
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/gluedoc/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
