// Package config loads the HCL configuration file read by the synapse CLI.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse"
)

// Config is the root of a configuration file:
//
//	repo_endpoint   = "https://repo.example.org/repo/v1"
//	auth_endpoint   = "https://auth.example.org/auth/v1"
//	timeout_seconds = 30
//	user            = "curator@example.org"
//
//	monitor {
//	  poll_interval = "15s"
//	}
type Config struct {
	RepoEndpoint   string `hcl:"repo_endpoint,optional"`
	AuthEndpoint   string `hcl:"auth_endpoint,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
	Debug          bool   `hcl:"debug,optional"`
	User           string `hcl:"user,optional"`
	Password       string `hcl:"password,optional"`

	Monitor *Monitor `hcl:"monitor,block"`
}

// Monitor configures daemon status polling.
type Monitor struct {
	PollInterval string `hcl:"poll_interval,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		TimeoutSeconds: synapse.DefaultTimeoutSeconds,
	}
}

// Load decodes the HCL file at path on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Parse decodes src as if read from filename; the extension selects HCL or
// JSON syntax.
func Parse(filename string, src []byte) (*Config, error) {
	cfg := Default()
	if err := hclsimple.Decode(filename, src, nil, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Override replaces every field of c that is set in o.
func (c *Config) Override(o Config) {
	if o.RepoEndpoint != "" {
		c.RepoEndpoint = o.RepoEndpoint
	}
	if o.AuthEndpoint != "" {
		c.AuthEndpoint = o.AuthEndpoint
	}
	if o.TimeoutSeconds > 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.Debug {
		c.Debug = true
	}
	if o.User != "" {
		c.User = o.User
	}
	if o.Password != "" {
		c.Password = o.Password
	}
	if o.Monitor != nil && o.Monitor.PollInterval != "" {
		if c.Monitor == nil {
			c.Monitor = &Monitor{}
		}
		c.Monitor.PollInterval = o.Monitor.PollInterval
	}
}

// Validate reports every problem in c at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validateEndpoint("repo_endpoint", c.RepoEndpoint); err != nil {
		result = multierror.Append(result, err)
	}
	if err := validateEndpoint("auth_endpoint", c.AuthEndpoint); err != nil {
		result = multierror.Append(result, err)
	}
	if c.TimeoutSeconds < 0 {
		result = multierror.Append(result,
			fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds))
	}
	if c.Password != "" && c.User == "" {
		result = multierror.Append(result, fmt.Errorf("password is set but user is empty"))
	}
	if _, err := c.PollInterval(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// PollInterval returns the configured daemon poll interval, or the client
// default when unset.
func (c *Config) PollInterval() (time.Duration, error) {
	if c.Monitor == nil || c.Monitor.PollInterval == "" {
		return synapse.DefaultPollInterval, nil
	}
	d, err := time.ParseDuration(c.Monitor.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("monitor.poll_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("monitor.poll_interval must be positive, got %s", d)
	}
	return d, nil
}

// ClientConfig converts c into the client constructor parameters.
func (c *Config) ClientConfig() synapse.Config {
	return synapse.Config{
		RepoEndpoint:   c.RepoEndpoint,
		AuthEndpoint:   c.AuthEndpoint,
		TimeoutSeconds: c.TimeoutSeconds,
		Debug:          c.Debug,
	}
}

func validateEndpoint(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http or https URL, got %q", name, raw)
	}
	return nil
}
