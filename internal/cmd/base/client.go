package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/config"
	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse"
)

// DebugOutput receives the request and response trace enabled by -debug.
var DebugOutput io.Writer = os.Stderr

// ClientFlags are the connection flags shared by commands that talk to the
// services. Flag values override the config file.
type ClientFlags struct {
	Config       string
	RepoEndpoint string
	AuthEndpoint string
	Timeout      int
	Debug        bool
	User         string
	Password     string
	PollInterval time.Duration
}

// Register adds the connection flags to f.
func (cf *ClientFlags) Register(f *FlagSet) {
	f.StringVar(&cf.Config, "config", "",
		"[SYNAPSE_CONFIG] Path to an HCL config file.")
	f.StringVar(&cf.RepoEndpoint, "repo-endpoint", "",
		"Repository service base URL.")
	f.StringVar(&cf.AuthEndpoint, "auth-endpoint", "",
		"Authentication service base URL.")
	f.IntVar(&cf.Timeout, "timeout", 0,
		"Socket timeout in seconds (default 30).")
	f.BoolVar(&cf.Debug, "debug", false,
		"Echo requests and responses to stderr.")
	f.StringVar(&cf.User, "user", "",
		"Log in as this user before running the command.")
	f.StringVar(&cf.Password, "password", "",
		"[SYNAPSE_PASSWORD] Password for -user; prompted for when empty.")
	f.DurationVar(&cf.PollInterval, "poll-interval", 0,
		"Wait between daemon status polls (default 15s).")
}

// Resolve merges the config file, the environment and the flags.
func (cf *ClientFlags) Resolve() (*config.Config, error) {
	path := cf.Config
	if path == "" {
		path = os.Getenv("SYNAPSE_CONFIG")
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	password := cf.Password
	if password == "" {
		password = os.Getenv("SYNAPSE_PASSWORD")
	}
	override := config.Config{
		RepoEndpoint:   cf.RepoEndpoint,
		AuthEndpoint:   cf.AuthEndpoint,
		TimeoutSeconds: cf.Timeout,
		Debug:          cf.Debug,
		User:           cf.User,
		Password:       password,
	}
	if cf.PollInterval != 0 {
		override.Monitor = &config.Monitor{PollInterval: cf.PollInterval.String()}
	}
	cfg.Override(override)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Client builds a client from the resolved configuration and logs in when a
// user is configured.
func (c *Command) Client(ctx context.Context, cf *ClientFlags) (*synapse.Client, error) {
	cfg, err := cf.Resolve()
	if err != nil {
		return nil, err
	}
	interval, err := cfg.PollInterval()
	if err != nil {
		return nil, err
	}

	opts := []synapse.Option{synapse.WithPollInterval(interval)}
	if cfg.Debug {
		opts = append(opts, synapse.WithLogger(hclog.New(&hclog.LoggerOptions{
			Name:   "synapse",
			Level:  hclog.Debug,
			Output: DebugOutput,
		})))
	}
	client, err := synapse.NewFromConfig(cfg.ClientConfig(), opts...)
	if err != nil {
		return nil, err
	}

	if cfg.User == "" {
		return client, nil
	}
	password := cfg.Password
	if password == "" {
		if c.UI == nil {
			return nil, errors.New("password is required")
		}
		password, err = c.UI.AskSecret(fmt.Sprintf("Password for %s:", cfg.User))
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimSpace(password)
	}
	if err := client.Login(ctx, cfg.User, password); err != nil {
		return nil, fmt.Errorf("login as %s: %w", cfg.User, err)
	}
	c.Log.Debug("logged in", "user", cfg.User)
	return client, nil
}
