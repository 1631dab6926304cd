package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	SilenceUsage:  true,
	SilenceErrors: true,
	Use:           "smokespec [command]",
	Short:         "Smoke tests for HTTP services.",
	Long: `smokespec sends a short suite of HTTP requests to a running service and
checks the status code (and, for creates, the location header) of each
response. Without a command it behaves like "smokespec run".`,
	Example: `  smokespec                      # same as smokespec run
  smokespec run --config smokespec.yaml
  smokespec run --watch
  smokespec run --schedule "@every 1m"
  smokespec serve --port 8080 --root ./dist`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs the command line and returns the process exit code
func execute(args []string, stderr io.Writer) int {
	rootCmd.SetArgs(resolveArgs(args))

	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	// Anything cobra rejects before a command runs is a usage problem
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitUsageError
}

// resolveArgs prepends "run" when no subcommand is named
func resolveArgs(args []string) []string {
	cmd, _, err := rootCmd.Find(args)
	if err == nil && cmd != nil && cmd != rootCmd {
		return args
	}
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return args
		}
	}
	return append([]string{"run"}, args...)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", getEnvString("SMOKESPEC_CONFIG", ""), "Path to suite file (env: SMOKESPEC_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("SMOKESPEC_NO_COLOR", false), "Disable colored output (env: SMOKESPEC_NO_COLOR)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
