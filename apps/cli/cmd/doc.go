// Package cmd implements the smokespec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute the smoke suite (the default when no command is given)
//   - list: Display the checks in the suite
//   - validate: Check the suite file without sending requests
//   - init: Write the built-in suite to smokespec.yaml
//   - serve: Start the bundled smoke target server
//   - version: Show smokespec version information
//
// The run command can also re-run the suite when its file changes (--watch)
// or on a cron schedule (--schedule).
package cmd
