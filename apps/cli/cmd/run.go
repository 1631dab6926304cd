package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/smokespec/packages/core/config"
	"github.com/abdul-hamid-achik/smokespec/packages/core/runner"
	"github.com/abdul-hamid-achik/smokespec/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the smoke suite",
	Long: `Run every enabled check in the suite, in order, stopping at the first
failure. The suite is read from --config, smokespec.yaml or .smokespec.yaml;
without one the built-in suite is used.

Examples:
  smokespec run
  smokespec run --config ./smokespec.yaml --timeout 5s
  smokespec run --name "todos*" --repeat 3 --rate 5
  smokespec run --watch
  smokespec run --schedule "*/5 * * * *"`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	nameFlag     string
	verboseFlag  bool
	timeoutFlag  string
	repeatFlag   int
	rateFlag     float64
	insecureFlag bool
	watchFlag    bool
	scheduleFlag string
)

func init() {
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only checks matching name pattern")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("SMOKESPEC_VERBOSE", false), "Verbose output (env: SMOKESPEC_VERBOSE)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("SMOKESPEC_TIMEOUT", ""), "Request timeout, overrides the suite (e.g., 30s, 1m) (env: SMOKESPEC_TIMEOUT)")
	runCmd.Flags().IntVar(&repeatFlag, "repeat", getEnvInt("SMOKESPEC_REPEAT", 1), "Run the suite N times in a row (env: SMOKESPEC_REPEAT)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", getEnvFloat("SMOKESPEC_RATE", 0), "Maximum requests per second, 0 for unlimited (env: SMOKESPEC_RATE)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("SMOKESPEC_INSECURE", false), "Disable SSL certificate validation (env: SMOKESPEC_INSECURE)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the suite file and re-run on changes")
	runCmd.Flags().StringVar(&scheduleFlag, "schedule", "", "Re-run on a cron schedule (e.g., \"@every 1m\", \"*/5 * * * *\")")
}

// runOptions holds everything a run needs besides the suite itself
type runOptions struct {
	name     string
	timeout  string
	repeat   int
	rate     float64
	insecure bool
}

func currentRunOptions() runOptions {
	return runOptions{
		name:     nameFlag,
		timeout:  timeoutFlag,
		repeat:   repeatFlag,
		rate:     rateFlag,
		insecure: insecureFlag,
	}
}

// buildRunnerConfig merges the suite settings with CLI overrides
func buildRunnerConfig(suite *config.Config, opts runOptions) (*runner.Config, error) {
	if opts.repeat < 1 {
		return nil, usageErrorf("--repeat must be at least 1, got %d", opts.repeat)
	}
	if opts.rate < 0 {
		return nil, usageErrorf("--rate must not be negative, got %g", opts.rate)
	}

	var timeout time.Duration
	if opts.timeout != "" {
		d, err := time.ParseDuration(opts.timeout)
		if err != nil || d <= 0 {
			return nil, usageErrorf("invalid timeout value %q (use format like 30s, 1m, 500ms)", opts.timeout)
		}
		timeout = d
	} else {
		d, err := suite.GetTimeout()
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		timeout = d
	}
	if timeout == 0 {
		timeout, _ = time.ParseDuration(config.DefaultTimeout)
	}

	return &runner.Config{
		Timeout:         timeout,
		TimeoutOverride: opts.timeout != "",
		FollowRedirect:  suite.GetFollowRedirects(),
		MaxRedirects:    suite.MaxRedirects,
		ValidateSSL:     suite.GetValidateSSL() && !opts.insecure,
		UserAgent:       "smokespec/" + version,
		NameFilter:      opts.name,
		Repeat:          opts.repeat,
		Rate:            opts.rate,
	}, nil
}

// loadSuite reads the suite and turns it into runnable checks
func loadSuite(path string) (*config.Config, []runner.Check, error) {
	suite, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, withExitCode(ExitConfigError, err)
	}
	checks, err := runner.ChecksFromConfig(suite)
	if err != nil {
		return nil, nil, withExitCode(ExitConfigError, err)
	}
	return suite, checks, nil
}

// exitCodeFor maps a finished run to the process exit code
func exitCodeFor(result *runner.RunResult) int {
	switch {
	case result.Success():
		return ExitSuccess
	case result.TransportFailed():
		return ExitNetworkError
	default:
		return ExitTestFailure
	}
}

// suiteRun executes the suite and prints the result. Runs never overlap.
type suiteRun struct {
	mu        sync.Mutex
	path      string
	opts      runOptions
	formatter *output.ConsoleFormatter
}

func (s *suiteRun) once(ctx context.Context) (*runner.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	suite, checks, err := loadSuite(s.path)
	if err != nil {
		return nil, err
	}
	cfg, err := buildRunnerConfig(suite, s.opts)
	if err != nil {
		return nil, err
	}

	result := runner.NewRunner(cfg).Run(ctx, checks)
	result.Source = suite.Source
	s.formatter.FormatResult(result)
	return result, nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	if watchFlag && scheduleFlag != "" {
		return usageErrorf("--watch and --schedule cannot be used together")
	}
	if scheduleFlag != "" {
		if _, err := cron.ParseStandard(scheduleFlag); err != nil {
			return usageErrorf("invalid schedule %q: %v", scheduleFlag, err)
		}
	}

	formatter := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(noColorFlag),
	)
	formatter.FormatHeader(version)

	run := &suiteRun{
		path:      configFlag,
		opts:      currentRunOptions(),
		formatter: formatter,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := run.once(ctx)
	if err != nil {
		return err
	}

	switch {
	case watchFlag:
		return watchSuite(ctx, cmd, run)
	case scheduleFlag != "":
		return scheduleSuite(ctx, cmd, run, scheduleFlag)
	}

	if code := exitCodeFor(result); code != ExitSuccess {
		return withExitCode(code, nil)
	}
	return nil
}

// watchedNames returns the file names whose changes trigger a re-run
func watchedNames(path string) map[string]bool {
	names := make(map[string]bool)
	if path != "" {
		names[filepath.Base(path)] = true
		return names
	}
	for _, n := range config.ConfigFilenames {
		names[n] = true
	}
	return names
}

func watchSuite(ctx context.Context, cmd *cobra.Command, run *suiteRun) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return withExitCode(ExitInternalError, fmt.Errorf("failed to create file watcher: %w", err))
	}
	defer watcher.Close()

	dir := "."
	if run.path != "" {
		dir = filepath.Dir(run.path)
	}
	if err := watcher.Add(dir); err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("failed to watch %s: %w", dir, err))
	}
	names := watchedNames(run.path)

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	debounce := &debouncer{delay: WatchDebounceDelay}
	defer debounce.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !names[filepath.Base(event.Name)] {
				continue
			}

			name := event.Name
			debounce.trigger(func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running checks...\n\n", name)
				if _, err := run.once(ctx); err != nil {
					run.formatter.FormatError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			run.formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

// debouncer runs the last triggered func once no trigger arrived for delay
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	running sync.WaitGroup
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}
	d.running.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.running.Done()
		fn()
	})
}

// stop cancels a pending func and waits for one that already started
func (d *debouncer) stop() {
	d.mu.Lock()
	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}
	d.timer = nil
	d.mu.Unlock()

	d.running.Wait()
}

func scheduleSuite(ctx context.Context, cmd *cobra.Command, run *suiteRun, spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "\nScheduled run at %s\n", time.Now().Format(time.RFC3339))
		if _, err := run.once(ctx); err != nil {
			run.formatter.FormatError(err)
		}
	}); err != nil {
		return usageErrorf("invalid schedule %q: %v", spec, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nScheduled with %q (press Ctrl+C to stop)\n", spec)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
