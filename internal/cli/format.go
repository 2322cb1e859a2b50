package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// formatCommand creates the format command.
func (c *CLI) formatCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Load a markup file and write it back in canonical form",
		Long: `Format loads a markup file, normalizes it and saves it. Imports are
recomputed from the types in use and the namespace declarations are added
to the root element.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMarkupFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text, err := d.Save()
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(text)
				return err
			}
			if err := os.WriteFile(output, text, 0644); err != nil {
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "Formatted %s", args[0])
			printFile(cmd.ErrOrStderr(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
