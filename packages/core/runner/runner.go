package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/smokespec/packages/assertions"
	"github.com/abdul-hamid-achik/smokespec/packages/core/config"
	"github.com/abdul-hamid-achik/smokespec/packages/http"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	SkipDisabled    = "disabled"
	SkipFilteredOut = "filtered out"
	SkipAborted     = "aborted"
)

type Runner struct {
	client  *http.Client
	limiter *rate.Limiter
	config  *Config
}

type Config struct {
	Timeout         time.Duration
	TimeoutOverride bool // Timeout also replaces per-check timeouts
	FollowRedirect  bool
	MaxRedirects    int
	ValidateSSL     bool
	UserAgent       string
	NameFilter      string
	Repeat          int     // passes over the suite, at least one
	Rate            float64 // requests per second, zero for unlimited
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{FollowRedirect: true, ValidateSSL: true}
	}

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(cfg.ValidateSSL),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, http.WithUserAgent(cfg.UserAgent))
	}

	r := &Runner{
		client: http.NewClient(clientOpts...),
		config: cfg,
	}
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return r
}

type RunResult struct {
	ID       string
	Source   string
	Results  []*CheckResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Latency  LatencySummary
}

type CheckResult struct {
	Name       string
	Method     string
	URL        string
	Pass       int // 1-based repeat pass
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Response   *http.Response
	Assertions []*assertions.Result
	Error      error
}

// Success returns true if nothing failed
func (r *RunResult) Success() bool {
	return r.Failed == 0
}

// FirstError returns the error of the failed check, nil when the run passed
func (r *RunResult) FirstError() error {
	for _, res := range r.Results {
		if !res.Passed && !res.Skipped {
			return res.Error
		}
	}
	return nil
}

// TransportFailed returns true if the run stopped because no response was obtained
func (r *RunResult) TransportFailed() bool {
	var transportErr *TransportError
	return errors.As(r.FirstError(), &transportErr)
}

// Run executes checks in order. Disabled and filtered checks are reported as
// skipped. The first failure stops the run and every check after it in the
// same pass is reported as aborted.
func (r *Runner) Run(ctx context.Context, checks []Check) *RunResult {
	start := time.Now()
	result := &RunResult{ID: uuid.NewString()}
	latency := NewLatency()

	passes := r.config.Repeat
	if passes < 1 {
		passes = 1
	}

	aborted := false
	for pass := 1; pass <= passes && !aborted; pass++ {
		for _, check := range checks {
			// Disabled and filtered checks are reported once, in the first pass
			if reason := r.skipReason(check); reason != "" {
				if pass == 1 {
					result.skip(check, pass, reason)
				}
				continue
			}
			if aborted {
				result.skip(check, pass, SkipAborted)
				continue
			}

			res := r.runCheck(ctx, check, pass)
			result.Results = append(result.Results, res)
			if res.Response != nil {
				latency.Record(res.Response.Duration)
			}

			if res.Passed {
				result.Passed++
			} else {
				result.Failed++
				aborted = true
			}
		}
	}

	result.Latency = latency.Summary()
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) skipReason(check Check) string {
	switch {
	case !check.Enabled:
		return SkipDisabled
	case !matchesPattern(check.GetName(), r.config.NameFilter):
		return SkipFilteredOut
	}
	return ""
}

func (r *Runner) runCheck(ctx context.Context, check Check, pass int) *CheckResult {
	res := &CheckResult{
		Name:   check.GetName(),
		Method: check.Method,
		URL:    check.URL,
		Pass:   pass,
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			res.Error = &TransportError{Method: check.Method, URL: check.URL, Err: err}
			return res
		}
	}

	if r.config.TimeoutOverride {
		check.Timeout = 0
	}

	start := time.Now()
	resp, results, err := SendAndCheck(ctx, r.client, check)
	res.Duration = time.Since(start)
	res.Response = resp
	res.Assertions = results
	res.Error = err
	res.Passed = err == nil

	return res
}

func (r *RunResult) skip(check Check, pass int, reason string) {
	r.Results = append(r.Results, &CheckResult{
		Name:       check.GetName(),
		Method:     check.Method,
		URL:        check.URL,
		Pass:       pass,
		Skipped:    true,
		SkipReason: reason,
	})
	r.Skipped++
}

// ChecksFromConfig converts a loaded suite into runnable checks
func ChecksFromConfig(cfg *config.Config) ([]Check, error) {
	checks := make([]Check, 0, len(cfg.Checks))
	for i := range cfg.Checks {
		c := &cfg.Checks[i]
		timeout, err := c.GetTimeout()
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", c.GetName(), err)
		}
		checks = append(checks, Check{
			Name:    c.GetName(),
			Method:  c.Method,
			URL:     c.URL,
			Payload: c.Payload,
			Expect: assertions.Expectation{
				Status:        c.GetExpectStatus(),
				RequireHeader: c.GetRequireHeader(),
			},
			Enabled: c.IsEnabled(),
			Timeout: timeout,
		})
	}
	return checks, nil
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if len(pattern) > 1 && pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		return strings.Contains(name, pattern[1:len(pattern)-1])
	}

	if pattern[0] == '*' {
		return strings.HasSuffix(name, pattern[1:])
	}

	if pattern[len(pattern)-1] == '*' {
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}

	return name == pattern
}
