// Package runner executes smoke checks against a running HTTP service.
//
// It provides functionality for:
//   - The four smoke operations (TestGet, TestPost, TestPut, TestDelete)
//   - SendAndCheck, the shared send-then-assert step behind them
//   - Running a suite sequentially, stopping at the first failure
//   - Name filtering, repeated passes and request rate limiting
//   - Latency percentiles across every request sent in a run
//
// Transport problems are reported as *TransportError and unmet expectations
// as *assertions.Failure, so callers can tell the two apart with errors.As.
package runner
