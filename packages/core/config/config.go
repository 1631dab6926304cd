package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/smokespec/packages/http"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a suite that parsed but cannot be run
var ErrInvalid = errors.New("invalid config")

// Config represents a smokespec suite file
type Config struct {
	Timeout         string  `yaml:"timeout,omitempty"` // duration, e.g. 30s
	FollowRedirects *bool   `yaml:"followRedirects,omitempty"`
	MaxRedirects    int     `yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool   `yaml:"validateSSL,omitempty"`
	Checks          []Check `yaml:"checks"`

	// Source is the file the suite was read from, empty for the built-in suite
	Source string `yaml:"-"`
}

// Check is one request/expectation pair in the suite
type Check struct {
	Name          string            `yaml:"name,omitempty"`
	Method        string            `yaml:"method"`
	URL           string            `yaml:"url"`
	Payload       map[string]string `yaml:"payload,omitempty"`
	ExpectStatus  int               `yaml:"expectStatus,omitempty"`
	RequireHeader *string           `yaml:"requireHeader,omitempty"`
	Enabled       *bool             `yaml:"enabled,omitempty"`
	Timeout       string            `yaml:"timeout,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetTimeout parses the suite timeout, zero when unset
func (c *Config) GetTimeout() (time.Duration, error) {
	return parseDuration(c.Timeout)
}

// GetName returns the check name, falling back to "METHOD URL"
func (c *Check) GetName() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s %s", strings.ToUpper(c.Method), c.URL)
}

// IsEnabled returns whether the check runs, defaulting to true
func (c *Check) IsEnabled() bool {
	return getBool(c.Enabled, true)
}

// GetExpectStatus returns the expected status, defaulting by method
func (c *Check) GetExpectStatus() int {
	if c.ExpectStatus != 0 {
		return c.ExpectStatus
	}
	return DefaultStatus(c.Method)
}

// GetRequireHeader returns the header that must be present, defaulting to
// location for POST. An explicit empty string disables the requirement.
func (c *Check) GetRequireHeader() string {
	if c.RequireHeader != nil {
		return *c.RequireHeader
	}
	return DefaultRequireHeader(c.Method)
}

// GetTimeout parses the per-check timeout, zero when unset
func (c *Check) GetTimeout() (time.Duration, error) {
	return parseDuration(c.Timeout)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return d, nil
}

// Validate reports the first problem that would stop the suite from running
func (c *Config) Validate() error {
	if _, err := c.GetTimeout(); err != nil {
		return fmt.Errorf("%w: timeout: %v", ErrInvalid, err)
	}

	seen := make(map[string]bool)
	for i := range c.Checks {
		check := &c.Checks[i]
		name := check.GetName()

		if !http.IsValidMethod(check.Method) {
			return fmt.Errorf("%w: check %q: unsupported method %q", ErrInvalid, name, check.Method)
		}
		if check.URL == "" {
			return fmt.Errorf("%w: check %q: url is required", ErrInvalid, name)
		}
		if err := http.ValidateURL(check.URL); err != nil {
			return fmt.Errorf("%w: check %q: %v", ErrInvalid, name, err)
		}
		if s := check.GetExpectStatus(); s < 100 || s > 599 {
			return fmt.Errorf("%w: check %q: expectStatus %d out of range", ErrInvalid, name, s)
		}
		if _, err := check.GetTimeout(); err != nil {
			return fmt.Errorf("%w: check %q: timeout: %v", ErrInvalid, name, err)
		}
		// Unnamed checks may repeat, explicit names must be unique
		if check.Name == "" {
			continue
		}
		if seen[check.Name] {
			return fmt.Errorf("%w: duplicate check name %q", ErrInvalid, check.Name)
		}
		seen[check.Name] = true
	}

	return nil
}

// ConfigFilenames contains the possible suite file names
var ConfigFilenames = []string{
	"smokespec.yaml",
	".smokespec.yaml",
	"smokespec.yml",
	".smokespec.yml",
}

// LoadConfig loads the suite from the specified path or searches for one
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a suite file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	config.Source = path

	return config, nil
}

// Parse decodes and validates a suite document
func Parse(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	for i := range config.Checks {
		config.Checks[i].Method = strings.ToUpper(strings.TrimSpace(config.Checks[i].Method))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes the suite to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
