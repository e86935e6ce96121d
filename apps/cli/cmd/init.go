package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitassert/packages/core/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitassert project",
	Long: `Initialize a new hitassert project in the current directory.

This creates:
  - hitassert.config.json - Configuration file
  - users.json            - Example data file
  - example.check.yaml    - Example checks

Examples:
  hitassert init
  hitassert init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

type exampleFile struct {
	Variables map[string]any `yaml:"variables,omitempty"`
	Checks    []exampleCheck `yaml:"checks"`
}

type exampleCheck struct {
	Name      string         `yaml:"name"`
	Tags      []string       `yaml:"tags,omitempty"`
	Container string         `yaml:"container,omitempty"`
	Elements  string         `yaml:"elements,omitempty"`
	Source    map[string]any `yaml:"source"`
	Expect    map[string]any `yaml:"expect"`
}

func exampleChecks() exampleFile {
	users := map[string]any{"file": "users.json", "path": "users.#.name"}
	return exampleFile{
		Variables: map[string]any{"admin": "alice"},
		Checks: []exampleCheck{
			{
				Name:      "users are exactly the seeded accounts",
				Tags:      []string{"smoke"},
				Container: "users",
				Elements:  "names",
				Source:    users,
				Expect: map[string]any{
					"op":       "contains_exactly",
					"values":   []any{"{{admin}}", "bob", "carol"},
					"in_order": true,
				},
			},
			{
				Name:   "no banned accounts",
				Source: users,
				Expect: map[string]any{
					"op":     "contains_none_of",
					"values": []any{"root", "guest"},
				},
			},
			{
				Name:   "every name is lowercase",
				Source: users,
				Expect: map[string]any{
					"op":      "not_contains_predicate",
					"matcher": map[string]any{"regexp": "[A-Z]"},
				},
			},
			{
				Name:   "inline values",
				Source: map[string]any{"inline": []any{1, 2, 3}},
				Expect: map[string]any{
					"op":       "contains_at_least",
					"matchers": []any{map[string]any{"equals": 3}, map[string]any{"is_in": []any{1, 2}}},
				},
			},
		},
	}
}

const exampleUsers = `{
  "users": [
    {"name": "alice", "role": "admin"},
    {"name": "bob", "role": "member"},
    {"name": "carol", "role": "member"}
  ]
}
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return initProject(cmd, cwd)
}

func initProject(cmd *cobra.Command, dir string) error {
	configFile := filepath.Join(dir, "hitassert.config.json")
	dataFile := filepath.Join(dir, "users.json")
	exampleFile := filepath.Join(dir, "example.check.yaml")

	if !forceInit {
		for _, f := range []string{configFile, dataFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.ContainerName = "collection"
	cfg.ElementPluralName = "elements"
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(dataFile, []byte(exampleUsers), 0644); err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", dataFile)

	content, err := yaml.Marshal(exampleChecks())
	if err != nil {
		return err
	}
	if err := os.WriteFile(exampleFile, content, 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitassert project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hitassert run example.check.yaml' to execute the example checks.\n")

	return nil
}
