package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

const (
	// DefaultTimeout bounds every blocking socket operation of a call.
	DefaultTimeout = 30 * time.Second

	// ProfileRequestHeader asks the service to instrument the call.
	ProfileRequestHeader = "profile_request"
	// ProfileResponseHeader carries the base64 encoded JSON profile.
	ProfileResponseHeader = "profile_response_object"
)

// HeaderFunc returns headers computed at dispatch time, such as the current
// session token.
type HeaderFunc func() http.Header

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used by the helper.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithHeaderFunc installs a function consulted on every dispatch.
func WithHeaderFunc(fn HeaderFunc) Option {
	return func(c *Client) {
		c.headerFunc = fn
	}
}

// WithTimeout sets the socket timeout for each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. It only
// applies to the default HTTP client.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithLogger routes request/response tracing to logger.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client issues single requests against an Endpoint. It never retries.
type Client struct {
	httpClient *http.Client
	headers    http.Header
	headerFunc HeaderFunc
	timeout    time.Duration
	insecure   bool
	logger     hclog.Logger
}

// Request describes a single outbound call.
type Request struct {
	Method string
	URI    string
	Body   []byte
	Header http.Header
	// Expect lists the status codes treated as success. Empty means any 2xx.
	Expect []int
	// Profile asks the service for a profiling payload.
	Profile bool
}

// Response is the fully read result of a call.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	Header     http.Header
	Profile    any
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		timeout: DefaultTimeout,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.timeout, c.insecure)
	} else if c.httpClient.Timeout == 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

func newHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Timeout returns the effective per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// HTTPClient exposes the underlying client, e.g. for file downloads.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Dispatch executes req against ep. When the status code is not accepted the
// returned error is a *TransportError and the Response is still returned so
// callers can inspect the profile payload.
func (c *Client) Dispatch(ctx context.Context, ep Endpoint, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("httpx: request is nil")
	}
	if req.Method == "" {
		return nil, errors.New("httpx: HTTP method is required")
	}
	if ep.IsZero() {
		return nil, fmt.Errorf("%w: endpoint not configured", ErrInvalidEndpoint)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	uri := ep.Normalize(req.URI)
	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, ep.URL(req.URI), body)
	if err != nil {
		return nil, fmt.Errorf("httpx: build %s %s: %w", req.Method, uri, err)
	}
	httpReq.Header = c.buildHeader(req)

	if req.Body != nil {
		c.logger.Debug("about to send request", "method", req.Method, "uri", uri, "body", string(req.Body))
	} else {
		c.logger.Debug("about to send request", "method", req.Method, "uri", uri)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpx: %s %s: %w", req.Method, uri, err)
	}
	defer closeBody(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpx: read %s %s response: %w", req.Method, uri, err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
		Header:     resp.Header.Clone(),
	}
	if req.Profile {
		out.Profile = c.readProfile(resp.Header)
	}

	if !accepts(req.Expect, resp.StatusCode) {
		terr := &TransportError{
			Method:     req.Method,
			URI:        uri,
			StatusCode: resp.StatusCode,
			Reason:     reason(resp),
			Body:       data,
			Header:     out.Header,
		}
		if isJSON(resp.Header.Get("Content-Type")) {
			terr.JSON = decodeJSONBody(data)
		}
		c.logger.Debug("request failed", "method", req.Method, "uri", uri, "status", resp.StatusCode, "body", string(data))
		return out, terr
	}

	c.logger.Debug("received response", "method", req.Method, "uri", uri, "status", resp.StatusCode, "body", string(data))
	return out, nil
}

func (c *Client) buildHeader(req *Request) http.Header {
	h := cloneHeader(c.headers)
	if c.headerFunc != nil {
		for k, values := range c.headerFunc() {
			h.Del(k)
			for _, v := range values {
				h.Add(k, v)
			}
		}
	}
	for k, values := range req.Header {
		h.Del(k)
		for _, v := range values {
			h.Add(k, v)
		}
	}
	if req.Profile {
		h.Set(ProfileRequestHeader, "True")
	}
	return h
}

func (c *Client) readProfile(h http.Header) any {
	raw := h.Get(ProfileResponseHeader)
	if raw == "" {
		return nil
	}
	profile, err := synapseapi.DecodeProfile(raw)
	if err != nil {
		c.logger.Warn("discarding malformed profile payload", "error", err)
		return nil
	}
	return profile
}

func accepts(expect []int, status int) bool {
	if len(expect) == 0 {
		return status >= 200 && status <= 299
	}
	for _, code := range expect {
		if code == status {
			return true
		}
	}
	return false
}

func reason(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func closeBody(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType) == "application/json"
}

func cloneHeader(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for k, values := range src {
		vCopy := make([]string, len(values))
		copy(vCopy, values)
		dst[k] = vCopy
	}
	return dst
}
