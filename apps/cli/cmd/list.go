package cmd

import (
	"github.com/abdul-hamid-achik/smokespec/packages/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checks in the suite",
	Long: `List every check in the suite with its method, URL, expected status and
whether it is enabled.

Examples:
  smokespec list
  smokespec list --config ./smokespec.yaml`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	suite, checks, err := loadSuite(configFlag)
	if err != nil {
		return err
	}

	formatter := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithNoColor(noColorFlag),
	)
	formatter.FormatChecks(suite.Source, checks)
	return nil
}
