package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the suite file without sending requests",
	Long: `Validate the suite for unknown methods, bad URLs, out of range statuses
and malformed timeouts without executing it.

Examples:
  smokespec validate
  smokespec validate --config ./smokespec.yaml`,
	Args: cobra.NoArgs,
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	suite, checks, err := loadSuite(configFlag)
	if err != nil {
		return err
	}

	source := suite.Source
	if source == "" {
		source = "built-in suite"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d checks)\n", source, len(checks))
	return nil
}
