package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gluedoc/pkg/fxom"
)

// idsCommand creates the ids command.
func (c *CLI) idsCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "ids <file>",
		Short:             "List the ids of a document with their kinds and references",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMarkupFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			rows := idRows(d)
			if len(rows) == 0 {
				printInfo(w, "%s declares no ids", args[0])
				return nil
			}
			fmt.Fprintln(w, renderTable([]string{"ID", "Kind", "Type", "Referenced by"}, rows))
			return nil
		},
	}
}

// idRows returns one row per declared id, sorted by id.
func idRows(d *fxom.Document) [][]string {
	x := d.Index()
	rows := make([][]string, 0, x.Len())
	for _, id := range x.IDs() {
		obj, _ := x.Lookup(id)
		kind, detail := objectKind(obj)
		rows = append(rows, []string{id, kind, detail, referrers(x, id)})
	}
	return rows
}

// referrers summarizes the references, copies and expressions naming id.
func referrers(x *fxom.Index, id string) string {
	var parts []string
	if n := len(x.Intrinsics(fxom.Reference, id)); n > 0 {
		parts = append(parts, plural(n, "reference"))
	}
	if n := len(x.Intrinsics(fxom.Copy, id)); n > 0 {
		parts = append(parts, plural(n, "copy"))
	}
	if n := len(x.Expressions(id)); n > 0 {
		parts = append(parts, plural(n, "expression"))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
