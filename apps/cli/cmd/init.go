package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/smokespec/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in suite to smokespec.yaml",
	Long: `Initialize a smokespec suite in the current directory.

This creates smokespec.yaml holding the built-in suite: an enabled GET
against http://localhost:8080 and disabled POST, PUT and DELETE examples.

Examples:
  smokespec init
  smokespec init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing suite file")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return withExitCode(ExitInternalError, fmt.Errorf("failed to get working directory: %w", err))
	}
	return writeSuite(cmd, filepath.Join(cwd, config.ConfigFilenames[0]), forceInit)
}

func writeSuite(cmd *cobra.Command, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return withExitCode(ExitConfigError, fmt.Errorf("file already exists: %s (use --force to overwrite)", path))
		}
	}

	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("failed to create suite file: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'smokespec run' to execute the suite.\n")
	return nil
}
