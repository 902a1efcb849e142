// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for timesheets. Task, project and
timesheet ids complete from the local database.

Bash:
  $ source <(timesheets completion bash)

  # To load completions for each session, execute once:
  $ timesheets completion bash > /etc/bash_completion.d/timesheets

Zsh:
  # Enable shell completion once if it is not already on:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ timesheets completion zsh > "${fpath[1]}/_timesheets"

Fish:
  $ timesheets completion fish > ~/.config/fish/completions/timesheets.fish

PowerShell:
  PS> timesheets completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
