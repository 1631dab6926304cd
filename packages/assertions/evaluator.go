package assertions

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/smokespec/packages/http"
)

type Operator int

const (
	OpEquals Operator = iota
	OpExists
)

func (op Operator) String() string {
	switch op {
	case OpEquals:
		return "=="
	case OpExists:
		return "exists"
	default:
		return "unknown"
	}
}

// Expectation is what a check requires of its response.
type Expectation struct {
	Status        int
	RequireHeader string // empty means no header requirement
}

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

type Evaluator struct {
	response *http.Response
}

func NewEvaluator(resp *http.Response) *Evaluator {
	return &Evaluator{response: resp}
}

// Status checks the response status code against expected.
func (e *Evaluator) Status(expected int) *Result {
	result := &Result{
		Subject:  "status",
		Operator: OpEquals.String(),
		Expected: expected,
		Actual:   e.response.StatusCode,
	}
	if e.response.StatusCode == expected {
		result.Passed = true
		return result
	}
	result.Message = fmt.Sprintf("expected status %d, got %d", expected, e.response.StatusCode)
	return result
}

// HeaderExists checks that the response carries the named header. An empty
// value still counts as present.
func (e *Evaluator) HeaderExists(name string) *Result {
	value, ok := e.response.LookupHeader(name)
	result := &Result{
		Subject:  "header " + name,
		Operator: OpExists.String(),
		Expected: "present",
		Actual:   "absent",
	}
	if ok {
		result.Passed = true
		result.Actual = value
		return result
	}
	result.Message = fmt.Sprintf("expected header %q to be present", name)
	return result
}

// Evaluate runs every assertion the expectation implies, status first.
func (e *Evaluator) Evaluate(exp Expectation) []*Result {
	results := []*Result{e.Status(exp.Status)}
	if exp.RequireHeader != "" {
		results = append(results, e.HeaderExists(exp.RequireHeader))
	}
	return results
}

func EvaluateAll(resp *http.Response, exp Expectation) []*Result {
	return NewEvaluator(resp).Evaluate(exp)
}

// Failure is returned when at least one assertion did not hold.
type Failure struct {
	Results []*Result
}

func (f *Failure) Error() string {
	var msgs []string
	for _, r := range f.Failed() {
		msgs = append(msgs, r.Message)
	}
	if len(msgs) == 0 {
		return "assertion failed"
	}
	return strings.Join(msgs, "; ")
}

// Failed returns the assertions that did not pass.
func (f *Failure) Failed() []*Result {
	var failed []*Result
	for _, r := range f.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Check evaluates exp against resp and returns a *Failure if anything did
// not hold.
func Check(resp *http.Response, exp Expectation) ([]*Result, error) {
	results := EvaluateAll(resp, exp)
	for _, r := range results {
		if !r.Passed {
			return results, &Failure{Results: results}
		}
	}
	return results, nil
}
