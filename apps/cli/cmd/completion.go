package cmd

import (
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitassert/packages/core/parser"
	"github.com/abdul-hamid-achik/hitassert/packages/export/metrics"
	"github.com/abdul-hamid-achik/hitassert/packages/notify"
	"github.com/abdul-hamid-achik/hitassert/packages/output"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for hitassert.

Besides commands and flags, the scripts complete check names for --name and
tags for --tags by reading the check files given on the command line.

Bash:
  $ source <(hitassert completion bash)

Zsh:
  $ hitassert completion zsh > "${fpath[1]}/_hitassert"

Fish:
  $ hitassert completion fish > ~/.config/fish/completions/hitassert.fish

PowerShell:
  PS> hitassert completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
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
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerCompletions attaches dynamic flag completions. It runs from Execute,
// once every command has defined its flags.
func registerCompletions() {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}

	_ = runCmd.RegisterFlagCompletionFunc("output", fixed(output.Formats...))
	_ = runCmd.RegisterFlagCompletionFunc("metrics", fixed(metrics.FormatJSON, metrics.FormatPrometheus))
	_ = runCmd.RegisterFlagCompletionFunc("notify-on", fixed(
		string(notify.NotifyAlways), string(notify.NotifyFailure), string(notify.NotifySuccess), string(notify.NotifyRecovery)))
	_ = runCmd.RegisterFlagCompletionFunc("name", completeCheckField(checkNames))
	_ = runCmd.RegisterFlagCompletionFunc("tags", completeCheckField(checkTags))
}

func checkNames(c *parser.Check) []string { return []string{c.Name} }

func checkTags(c *parser.Check) []string { return c.Tags }

// completeCheckField offers the distinct values field yields over every
// check in the files named by args. Files that fail to parse are skipped.
func completeCheckField(field func(*parser.Check) []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		files, err := collectFiles(args)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return completionCandidates(files, field, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func completionCandidates(files []string, field func(*parser.Check) []string, toComplete string) []string {
	// Tags are comma separated; complete the last one.
	prefix, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, partial = toComplete[:i+1], toComplete[i+1:]
	}

	seen := make(map[string]bool)
	var out []string
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			continue
		}
		for _, c := range f.Checks {
			for _, v := range field(c) {
				if v == "" || seen[v] || !strings.HasPrefix(v, partial) {
					continue
				}
				seen[v] = true
				out = append(out, prefix+v)
			}
		}
	}
	sort.Strings(out)
	return out
}
