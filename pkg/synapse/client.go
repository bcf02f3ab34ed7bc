package synapse

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/httpx"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

const (
	// DefaultTimeoutSeconds is the socket timeout used when none is configured.
	DefaultTimeoutSeconds = 30
	// DefaultPollInterval is the wait between two daemon status polls.
	DefaultPollInterval = 15 * time.Second

	sessionTokenHeader = "sessionToken"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the socket timeout applied to every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient overrides the HTTP client used for both endpoints.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithInsecureSkipVerify disables TLS verification on the default HTTP client.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithDebug echoes request and response bodies and URIs to stderr. It is
// ignored when WithLogger supplies a logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithLogger routes diagnostic output to logger.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestProfiling asks the repository service for a profiling payload on
// every call; see LastProfile.
func WithRequestProfiling(enabled bool) Option {
	return func(c *Client) {
		c.profiling = enabled
	}
}

// WithPollInterval overrides the wait between two daemon status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithPollTimer replaces the timer AwaitCompletion waits on.
func WithPollTimer(t backoff.Timer) Option {
	return func(c *Client) {
		c.pollTimer = t
	}
}

// WithDownloader replaces the helper LoadEntity uses to fetch file bytes.
func WithDownloader(d Downloader) Option {
	return func(c *Client) {
		if d != nil {
			c.downloader = d
		}
	}
}

// Client talks to a repository and an authentication endpoint. Calls are
// synchronous; session state is guarded so a Client may be shared, but the
// read-merge-write in Update is not atomic across callers.
type Client struct {
	transport *httpx.Client
	repo      httpx.Endpoint
	auth      httpx.Endpoint
	logger    hclog.Logger

	timeout      time.Duration
	httpClient   *http.Client
	insecure     bool
	debug        bool
	pollInterval time.Duration
	pollTimer    backoff.Timer
	downloader   Downloader

	mu           sync.Mutex
	sessionToken string
	profiling    bool
	lastProfile  any
}

// Config mirrors the constructor parameters of a Client.
type Config struct {
	RepoEndpoint   string
	AuthEndpoint   string
	TimeoutSeconds int
	Debug          bool
}

// New constructs a Client bound to the repository and authentication base
// URLs, e.g. "https://repo.example.org/repo/v1" and
// "https://auth.example.org/auth/v1".
func New(repoURL, authURL string, opts ...Option) (*Client, error) {
	repo, err := httpx.ParseEndpoint(repoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: repository endpoint: %v", ErrInvalidArgument, err)
	}
	auth, err := httpx.ParseEndpoint(authURL)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication endpoint: %v", ErrInvalidArgument, err)
	}

	c := &Client{
		repo:         repo,
		auth:         auth,
		timeout:      DefaultTimeoutSeconds * time.Second,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		if c.debug {
			c.logger = hclog.New(&hclog.LoggerOptions{
				Name:   "synapse",
				Level:  hclog.Debug,
				Output: os.Stderr,
			})
		} else {
			c.logger = hclog.NewNullLogger()
		}
	}

	httpOpts := []httpx.Option{
		httpx.WithTimeout(c.timeout),
		httpx.WithInsecureSkipVerify(c.insecure),
		httpx.WithLogger(c.logger.Named("transport")),
		httpx.WithHeaderFunc(c.sessionHeaders),
	}
	if c.httpClient != nil {
		httpOpts = append(httpOpts, httpx.WithHTTPClient(c.httpClient))
	}
	c.transport = httpx.NewClient(httpOpts...)

	if c.downloader == nil {
		c.downloader = NewFileDownloader(c.transport.HTTPClient(), nil)
	}
	return c, nil
}

// NewFromConfig constructs a Client from cfg; a zero TimeoutSeconds means the
// default of 30 seconds.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds
	}
	base := []Option{
		WithTimeout(time.Duration(timeout) * time.Second),
		WithDebug(cfg.Debug),
	}
	return New(cfg.RepoEndpoint, cfg.AuthEndpoint, append(base, opts...)...)
}

// RepoEndpoint returns the repository base URL.
func (c *Client) RepoEndpoint() string { return c.repo.String() }

// AuthEndpoint returns the authentication base URL.
func (c *Client) AuthEndpoint() string { return c.auth.String() }

// Timeout returns the socket timeout applied to each call.
func (c *Client) Timeout() time.Duration { return c.transport.Timeout() }

// SetRequestProfiling toggles profiling for subsequent calls.
func (c *Client) SetRequestProfiling(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiling = enabled
}

// RequestProfiling reports whether profiling is requested.
func (c *Client) RequestProfiling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profiling
}

// LastProfile returns the profiling payload of the most recent call, or nil.
// It is reset at the start of every call.
func (c *Client) LastProfile() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastProfile
}

func (c *Client) endpoint(svc Service) (httpx.Endpoint, error) {
	switch svc {
	case Repository:
		return c.repo, nil
	case Authentication:
		return c.auth, nil
	default:
		return httpx.Endpoint{}, fmt.Errorf("%w: unknown %s", ErrInvalidArgument, svc)
	}
}

func (c *Client) sessionHeaders() http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionToken == "" {
		return nil
	}
	return http.Header{sessionTokenHeader: []string{c.sessionToken}}
}

// do dispatches req and records the profiling payload. Profiling is never
// requested from the authentication service.
func (c *Client) do(ctx context.Context, svc Service, req *httpx.Request) (*httpx.Response, error) {
	ep, err := c.endpoint(svc)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lastProfile = nil
	req.Profile = c.profiling && svc == Repository
	c.mu.Unlock()

	resp, err := c.transport.Dispatch(ctx, ep, req)
	if resp != nil && req.Profile {
		c.mu.Lock()
		c.lastProfile = resp.Profile
		c.mu.Unlock()
	}
	return resp, err
}

func decodeEntity(body []byte) (Entity, error) {
	obj, err := synapseapi.DecodeObject(body)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return Entity(obj), nil
}
