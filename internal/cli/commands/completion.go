package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/workspace"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate a shell completion script for attrkit.

Bash:
  $ source <(attrkit completion bash)

Zsh:
  $ attrkit completion zsh > "${fpath[1]}/_attrkit"

Fish:
  $ attrkit completion fish > ~/.config/fish/completions/attrkit.fish

PowerShell:
  PS> attrkit completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// completeDocumentNames offers stored document names for the first argument
func (a *app) completeDocumentNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := a.setup(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	err := a.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
		docs, err := ws.List(cmd.Context())
		for _, d := range docs {
			names = append(names, d.Name)
		}
		return err
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
