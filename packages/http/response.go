package http

import (
	"strings"
	"time"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) Header(key string) string {
	v, _ := r.LookupHeader(key)
	return v
}

// LookupHeader returns the header value and whether the header was sent at
// all. Header names match case-insensitively.
func (r *Response) LookupHeader(key string) (string, bool) {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (r *Response) HasHeader(key string) bool {
	_, ok := r.LookupHeader(key)
	return ok
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
