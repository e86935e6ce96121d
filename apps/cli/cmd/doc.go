// Package cmd implements the hitassert CLI commands using Cobra.
//
// Available commands:
//   - run: Execute checks from check files
//   - validate: Check file syntax and matchers without executing
//   - list: Display all checks defined in files
//   - init: Create a config file and an example check
//   - diff: Compare two JSON result files
//   - version: Show hitassert version information
//
// Exit codes are 0 when every check passed, 1 when a check failed, 2 for
// unparsable check files, 3 for configuration errors and 64 for usage
// errors.
package cmd
