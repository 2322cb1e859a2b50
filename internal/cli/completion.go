package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gluedoc.

Document arguments complete to .fxml files, --catalog to .toml files, object
ids to the ids declared by the document named earlier on the line, and
clipboard keys (clipboard show, clipboard delete, paste --key) to the keys
of the store selected by --clipboard.

To load completions:

Bash:
  $ source <(gluedoc completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ gluedoc completion bash > /etc/bash_completion.d/gluedoc
  # macOS:
  $ gluedoc completion bash > $(brew --prefix)/etc/bash_completion.d/gluedoc

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ gluedoc completion zsh > "${fpath[1]}/_gluedoc"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ gluedoc completion fish | source

  # To load completions for each session, execute once:
  $ gluedoc completion fish > ~/.config/fish/completions/gluedoc.fish

PowerShell:
  PS> gluedoc completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> gluedoc completion powershell > gluedoc.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(w)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// completeMarkupFiles completes positional arguments to markup files.
func completeMarkupFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"fxml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeCatalogFiles completes --catalog to TOML files.
func completeCatalogFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFileThenIDs completes the first argument to a markup file and the
// following ones to ids declared by that file, skipping ids already given.
func (c *CLI) completeFileThenIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeMarkupFiles(cmd, args, toComplete)
	}
	d, err := c.loadDocument(cmd.Context(), args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, id := range d.Index().IDs() {
		if strings.HasPrefix(id, toComplete) && !slices.Contains(args[1:], id) {
			ids = append(ids, id)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeClone completes "clone <src> <id> <dst>".
func (c *CLI) completeClone(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 1:
		return c.completeFileThenIDs(cmd, args, toComplete)
	case 0, 2:
		return completeMarkupFiles(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeClipboardKeys completes to the keys of the clipboard store.
func (c *CLI) completeClipboardKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	store, err := c.openClipboard()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close()

	items, err := store.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	keys := make([]string, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(it.Key, toComplete) {
			keys = append(keys, it.Key+"\t"+sourcesOf(it.Archive))
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

// completeOneClipboardKey completes a single positional clipboard key.
func (c *CLI) completeOneClipboardKey(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeClipboardKeys(cmd, args, toComplete)
}
