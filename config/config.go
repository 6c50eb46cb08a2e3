package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git_batch_push/batch"
	"git_batch_push/commit"
)

// Default values used when no configuration file or flag overrides them
const (
	DefaultBranch        = "master"
	DefaultRemote        = "origin"
	DefaultMessageFormat = commit.DefaultMessageFormat
	DefaultConfigFile    = ".git-batch-push.yml"
)

var (
	// ErrInvalidConfiguration indicates an invalid or conflicting configuration value
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMalformedConfig indicates the configuration file is not valid YAML
	ErrMalformedConfig = errors.New("malformed configuration file")
)

// Configuration represents the YAML configuration file structure
type Configuration struct {
	CapBytes      int64  `yaml:"cap_bytes"`
	Branch        string `yaml:"branch"`
	Remote        string `yaml:"remote"`
	MessageFormat string `yaml:"message"`
	StopOnFailure bool   `yaml:"stop_on_failure"`
}

// ConfigError describes an invalid configuration parameter
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As
func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newConfigError(parameter string, value interface{}, reason string) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       fmt.Errorf("%w: %s", ErrInvalidConfiguration, reason),
	}
}

// Default returns the built-in configuration: 2 GiB batches pushed to origin/master
func Default() *Configuration {
	return &Configuration{
		CapBytes:      batch.DefaultCapBytes,
		Branch:        DefaultBranch,
		Remote:        DefaultRemote,
		MessageFormat: DefaultMessageFormat,
	}
}

// Validate checks that every value can be used by the planner and the driver
func (c *Configuration) Validate() error {
	if c.CapBytes <= 0 {
		return newConfigError("cap_bytes", c.CapBytes, "must be greater than zero")
	}
	if strings.TrimSpace(c.Branch) == "" {
		return newConfigError("branch", nil, "must not be empty")
	}
	if strings.TrimSpace(c.Remote) == "" {
		return newConfigError("remote", nil, "must not be empty")
	}
	if strings.Count(c.MessageFormat, "%d") != 1 || strings.Count(c.MessageFormat, "%") != 1 {
		return newConfigError("message", c.MessageFormat, "must contain exactly one %d for the file count")
	}
	return nil
}

// CommitMessage renders the commit message for a batch of n files
func (c *Configuration) CommitMessage(n int) string {
	return fmt.Sprintf(c.MessageFormat, n)
}

// ReadConfig reads the configuration file at configPath on top of the defaults.
// A missing file is not an error: the defaults are returned unchanged.
func ReadConfig(configPath string) (*Configuration, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}

	return config, nil
}
