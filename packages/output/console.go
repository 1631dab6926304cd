package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/smokespec/packages/core/runner"
	"github.com/fatih/color"
)

// SuccessMessage is printed once every executed check has passed
const SuccessMessage = "All tests passed successfully!"

// formatValue formats a value for display, truncating long values
func formatValue(v any, maxLen int) string {
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	source := result.Source
	if source == "" {
		source = "built-in suite"
	}
	fmt.Fprintf(f.writer, "\n%s\n", bold("Running: "+source))
	if f.verbose {
		fmt.Fprintf(f.writer, "Run ID: %s\n", result.ID)
	}
	fmt.Fprintf(f.writer, "\n")

	for _, r := range result.Results {
		name := r.Name
		if r.Pass > 1 {
			name = fmt.Sprintf("%s [%d]", r.Name, r.Pass)
		}

		if r.Skipped {
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), name)
			if r.SkipReason != "" && r.SkipReason != runner.SkipFilteredOut {
				fmt.Fprintf(f.writer, " (%s)", r.SkipReason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		}

		var transportErr *runner.TransportError
		if errors.As(r.Error, &transportErr) {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), name, red(fmt.Sprintf("(%v)", transportErr.Err)))
			continue
		}

		symbol := green("✓")
		if !r.Passed {
			symbol = red("✗")
		}

		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if f.verbose && r.Response != nil {
			fmt.Fprintf(f.writer, "    %s %s -> %d\n", r.Method, r.URL, r.Response.StatusCode)
		}

		if !r.Passed {
			for _, a := range r.Assertions {
				if a.Passed {
					continue
				}
				fmt.Fprintf(f.writer, "    %s %s %s\n", red("→"), a.Subject, a.Operator)
				fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
				fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
				if a.Message != "" {
					fmt.Fprintf(f.writer, "      %s\n", a.Message)
				}
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Tests: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	total := result.Passed + result.Failed + result.Skipped
	fmt.Fprintf(f.writer, "%d total\n", total)
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())

	if f.verbose && result.Latency.Count > 0 {
		l := result.Latency
		fmt.Fprintf(f.writer, "Latency: min %s, p50 %s, p95 %s, p99 %s, max %s\n",
			formatDuration(l.Min), formatDuration(l.P50), formatDuration(l.P95),
			formatDuration(l.P99), formatDuration(l.Max))
	}
	fmt.Fprintf(f.writer, "\n")

	if result.Success() {
		fmt.Fprintf(f.writer, "%s\n", green(SuccessMessage))
	}
}

// FormatChecks lists a suite without running it
func (f *ConsoleFormatter) FormatChecks(source string, checks []runner.Check) {
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if source == "" {
		source = "built-in suite"
	}
	fmt.Fprintf(f.writer, "%s\n\n", bold(source))

	for _, c := range checks {
		expect := fmt.Sprintf("%d", c.Expect.Status)
		if c.Expect.RequireHeader != "" {
			expect += " + " + c.Expect.RequireHeader
		}
		line := fmt.Sprintf("  %-20s %-6s %s -> %s", c.GetName(), c.Method, c.URL, expect)
		if !c.Enabled {
			line += " " + yellow("(disabled)")
		}
		fmt.Fprintln(f.writer, line)
	}
	fmt.Fprintf(f.writer, "\n%d checks\n", len(checks))
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("smokespec"), version)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
}
