package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astview/pkg/source"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for astview.

Bash:
  $ source <(astview completion bash)

Zsh:
  $ astview completion zsh > "${fpath[1]}/_astview"

Fish:
  $ astview completion fish > ~/.config/fish/completions/astview.fish

PowerShell:
  PS> astview completion powershell | Out-String | Invoke-Expression

Start a new shell for the completions to take effect.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// completeSourceFiles completes the file argument of commands that take a
// C or C++ source.
func completeSourceFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var exts []string
	for _, ext := range source.Extensions() {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	if cmd.Name() == "render" {
		exts = append(exts, "json")
	}
	return exts, cobra.ShellCompDirectiveFilterFileExt
}

// completeLanguages completes the --lang flag.
func completeLanguages(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, l := range source.Languages() {
		names = append(names, l.String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
