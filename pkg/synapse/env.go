package synapse

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/joeshaw/envdecode"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/devseed"
	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse/mock"
)

const (
	modeAuto = "auto"
	modeHTTP = "http"
	modeMock = "mock"

	mockHost = "http://synapse.mock"
)

// EnvConfig lists the environment variables NewFromEnv reads.
type EnvConfig struct {
	// Mode is auto, http or mock. Auto selects http when both endpoints are set.
	Mode           string `env:"SYNAPSE_RUNTIME_MODE,default=auto"`
	RepoEndpoint   string `env:"SYNAPSE_REPO_ENDPOINT"`
	AuthEndpoint   string `env:"SYNAPSE_AUTH_ENDPOINT"`
	TimeoutSeconds int    `env:"SYNAPSE_TIMEOUT_SECONDS,default=30"`
	Debug          bool   `env:"SYNAPSE_DEBUG"`
	// MockSeed is a devseed JSON file applied to the in-memory service.
	MockSeed string `env:"SYNAPSE_MOCK_SEED"`
}

// NewFromEnv initialises a Client from SYNAPSE_* environment variables and
// returns the resolved mode ("http" or "mock"). Options are applied after the
// environment.
func NewFromEnv(opts ...Option) (client *Client, mode string, err error) {
	var cfg EnvConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, "", fmt.Errorf("synapse: read environment: %w", err)
	}
	return NewFromEnvConfig(cfg, opts...)
}

// NewFromEnvConfig is NewFromEnv with an explicit configuration.
func NewFromEnvConfig(cfg EnvConfig, opts ...Option) (*Client, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	repo := strings.TrimSpace(cfg.RepoEndpoint)
	auth := strings.TrimSpace(cfg.AuthEndpoint)
	base := Config{
		RepoEndpoint:   repo,
		AuthEndpoint:   auth,
		TimeoutSeconds: cfg.TimeoutSeconds,
		Debug:          cfg.Debug,
	}

	switch mode {
	case "", modeAuto:
		if repo != "" && auth != "" {
			return newHTTPClient(base, opts)
		}
		return newMockClient(base, cfg.MockSeed, opts)
	case modeHTTP:
		if repo == "" || auth == "" {
			return nil, "", fmt.Errorf("synapse: HTTP mode requires SYNAPSE_REPO_ENDPOINT and SYNAPSE_AUTH_ENDPOINT")
		}
		return newHTTPClient(base, opts)
	case modeMock:
		return newMockClient(base, cfg.MockSeed, opts)
	default:
		return nil, "", fmt.Errorf("synapse: unsupported SYNAPSE_RUNTIME_MODE value %q", cfg.Mode)
	}
}

func newHTTPClient(cfg Config, opts []Option) (*Client, string, error) {
	client, err := NewFromConfig(cfg, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("synapse: init HTTP client: %w", err)
	}
	return client, modeHTTP, nil
}

func newMockClient(cfg Config, seedPath string, opts []Option) (*Client, string, error) {
	srv := mock.New()
	if path := strings.TrimSpace(seedPath); path != "" {
		seed, err := devseed.LoadSeed(path)
		if err != nil {
			return nil, "", fmt.Errorf("synapse: load mock seed: %w", err)
		}
		if err := srv.Seed(seed); err != nil {
			return nil, "", fmt.Errorf("synapse: apply mock seed: %w", err)
		}
	}

	cfg.RepoEndpoint = mockHost + srv.RepoPrefix()
	cfg.AuthEndpoint = mockHost + srv.AuthPrefix()
	httpClient := &http.Client{Transport: srv.RoundTripper()}
	client, err := NewFromConfig(cfg, append([]Option{WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, "", fmt.Errorf("synapse: init mock client: %w", err)
	}
	return client, modeMock, nil
}
