package config

import "strings"

const (
	// DefaultTimeout is used when neither the suite nor the CLI sets one
	DefaultTimeout = "30s"
	// LocalTarget is the address the default GET check hits
	LocalTarget = "http://localhost:8080"
	// PlaceholderTarget is where the disabled write checks point
	PlaceholderTarget = "http://yourserver.com/api"
)

// DefaultConfig returns the built-in suite: a GET against the local server,
// plus POST/PUT/DELETE examples that are present but disabled.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Checks: []Check{
			{
				Name:   "get request",
				Method: "GET",
				URL:    LocalTarget,
			},
			{
				Name:    "post request",
				Method:  "POST",
				URL:     PlaceholderTarget,
				Payload: map[string]string{"key1": "value1", "key2": "value2"},
				Enabled: BoolPtr(false),
			},
			{
				Name:    "put request",
				Method:  "PUT",
				URL:     PlaceholderTarget + "/1",
				Payload: map[string]string{"key1": "updated_value1", "key2": "updated_value2"},
				Enabled: BoolPtr(false),
			},
			{
				Name:    "delete request",
				Method:  "DELETE",
				URL:     PlaceholderTarget + "/1",
				Enabled: BoolPtr(false),
			},
		},
	}
}

// DefaultStatus returns the status a successful call of method answers with
func DefaultStatus(method string) int {
	switch strings.ToUpper(method) {
	case "POST":
		return 201
	case "DELETE":
		return 204
	default:
		return 200
	}
}

// DefaultRequireHeader returns the header a method must answer with, if any
func DefaultRequireHeader(method string) string {
	if strings.ToUpper(method) == "POST" {
		return "location"
	}
	return ""
}

// IsDefault returns true if the suite is the built-in one
func (c *Config) IsDefault() bool {
	return c.Source == ""
}
