package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gluedoc/pkg/archive"
)

// clipboardCommand creates the clipboard management command.
func (c *CLI) clipboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clipboard",
		Short: "Manage the clipboard store",
	}

	cmd.AddCommand(c.clipboardListCommand())
	cmd.AddCommand(c.clipboardShowCommand())
	cmd.AddCommand(c.clipboardDeleteCommand())
	cmd.AddCommand(c.clipboardPathCommand())

	return cmd
}

// clipboardListCommand creates the "clipboard list" subcommand.
func (c *CLI) clipboardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clipboard entries, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openClipboard()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(items) == 0 {
				printInfo(w, "Clipboard is empty")
				return nil
			}
			now := time.Now()
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{
					it.Key,
					strconv.Itoa(it.Seq),
					plural(len(it.Archive.Entries), "object"),
					sourcesOf(it.Archive),
					formatRelativeTime(it.CreatedAt, now),
				})
			}
			fmt.Fprintln(w, renderTable([]string{"Key", "Seq", "Objects", "Source", "Created"}, rows))
			return nil
		},
	}
}

// clipboardShowCommand creates the "clipboard show" subcommand.
func (c *CLI) clipboardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [key]",
		Short:             "Print a clipboard entry as YAML (default: latest)",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeOneClipboardKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openClipboard()
			if err != nil {
				return err
			}
			defer store.Close()

			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			item, err := fetchItem(cmd.Context(), store, key)
			if err != nil {
				return err
			}
			data, err := archive.Marshal(item.Archive)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// clipboardDeleteCommand creates the "clipboard delete" subcommand.
func (c *CLI) clipboardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <key>",
		Short:             "Delete a clipboard entry",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeOneClipboardKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openClipboard()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %s", args[0])
			return nil
		},
	}
}

// clipboardPathCommand creates the "clipboard path" subcommand.
func (c *CLI) clipboardPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the clipboard database path",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openClipboard()
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	}
}

// sourcesOf returns the location of the first entry with one.
func sourcesOf(a *archive.Archive) string {
	for _, e := range a.Entries {
		if e.Location != "" {
			return e.Location
		}
	}
	return "-"
}
