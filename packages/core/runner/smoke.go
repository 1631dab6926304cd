package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/abdul-hamid-achik/smokespec/packages/assertions"
	"github.com/abdul-hamid-achik/smokespec/packages/http"
)

// Check is a single request and what its response must look like.
type Check struct {
	Name    string
	Method  string
	URL     string
	Payload map[string]string
	Expect  assertions.Expectation
	Enabled bool
	Timeout time.Duration // zero uses the client default
}

// GetName returns the check name, falling back to "METHOD URL"
func (c *Check) GetName() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s %s", c.Method, c.URL)
}

// TransportError means no response was obtained: the connection failed,
// the deadline passed, or the request could not be built.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s %s: request timed out: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was abandoned because its deadline passed
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// SendAndCheck sends the check's request and evaluates its expectation. The
// response is returned whenever one was received, even if assertions failed.
func SendAndCheck(ctx context.Context, client *http.Client, check Check) (*http.Response, []*assertions.Result, error) {
	req := http.NewRequest(check.Method, check.URL)
	if err := req.SetJSON(check.Payload); err != nil {
		return nil, nil, &TransportError{Method: req.Method, URL: check.URL, Err: err}
	}
	if check.Timeout > 0 {
		req.SetTimeout(check.Timeout)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, nil, &TransportError{Method: req.Method, URL: check.URL, Err: err}
	}

	results, err := assertions.Check(resp, check.Expect)
	return resp, results, err
}

// TestGet requires a GET of url to answer 200.
func TestGet(ctx context.Context, client *http.Client, url string) error {
	_, _, err := SendAndCheck(ctx, client, Check{
		Method: "GET",
		URL:    url,
		Expect: assertions.Expectation{Status: 200},
	})
	return err
}

// TestPost requires a POST of payload to answer 201 with a location header.
func TestPost(ctx context.Context, client *http.Client, url string, payload map[string]string) error {
	_, _, err := SendAndCheck(ctx, client, Check{
		Method:  "POST",
		URL:     url,
		Payload: payload,
		Expect:  assertions.Expectation{Status: 201, RequireHeader: "location"},
	})
	return err
}

// TestPut requires a PUT of payload to answer 200.
func TestPut(ctx context.Context, client *http.Client, url string, payload map[string]string) error {
	_, _, err := SendAndCheck(ctx, client, Check{
		Method:  "PUT",
		URL:     url,
		Payload: payload,
		Expect:  assertions.Expectation{Status: 200},
	})
	return err
}

// TestDelete requires a DELETE of url to answer 204.
func TestDelete(ctx context.Context, client *http.Client, url string) error {
	_, _, err := SendAndCheck(ctx, client, Check{
		Method: "DELETE",
		URL:    url,
		Expect: assertions.Expectation{Status: 204},
	})
	return err
}
