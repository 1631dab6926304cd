package http

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Supported request methods
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	Timeout time.Duration
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  strings.ToUpper(method),
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// SetJSON encodes payload as the request body. A nil payload leaves the
// request without a body.
func (r *Request) SetJSON(payload map[string]string) error {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	r.Body = string(data)
	if r.Headers["Content-Type"] == "" {
		r.SetHeader("Content-Type", "application/json")
	}
	return nil
}

// IsValidMethod reports whether method is one the client sends
func IsValidMethod(method string) bool {
	m := strings.ToUpper(method)
	for _, valid := range Methods {
		if m == valid {
			return true
		}
	}
	return false
}
