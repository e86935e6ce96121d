package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitassert/packages/core/parser"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List all checks in hitassert files",
	Long: `List all checks defined in check files.

Examples:
  hitassert list users.check.yaml
  hitassert list ./checks/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no %s files found", strings.Join(parser.Extensions, ", ")))
	}

	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, c := range f.Checks {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s, %s source)\n", c.Name, c.Expect.Operator, c.Source.Kind)
			if len(c.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %v\n", c.Tags)
			}
		}
	}

	return nil
}
