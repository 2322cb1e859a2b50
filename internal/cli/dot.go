package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gluedoc/pkg/render/nodelink"
)

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	output   string // output file (default: stdout)
	svg      bool   // render SVG instead of DOT source
	detailed bool   // include text properties in node labels
}

// dotCommand creates the dot command for graphing the object graph.
func (c *CLI) dotCommand() *cobra.Command {
	var opts dotOpts

	cmd := &cobra.Command{
		Use:               "dot <file>",
		Short:             "Render the object graph of a document as DOT or SVG",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMarkupFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dot := nodelink.ToDOT(d, nodelink.Options{Detailed: opts.detailed})
			data := []byte(dot)
			if opts.svg {
				if data, err = nodelink.RenderSVG(dot); err != nil {
					return err
				}
			}
			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0644); err != nil {
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "Rendered %s", args[0])
			printFile(cmd.ErrOrStderr(), opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render SVG with graphviz")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show text properties in node labels")

	return cmd
}
