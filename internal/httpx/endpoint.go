package httpx

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidEndpoint is returned when a base URL cannot be turned into an Endpoint.
var ErrInvalidEndpoint = errors.New("httpx: invalid endpoint")

// Endpoint describes one REST service: the scheme, the host[:port] to connect
// to and the path prefix every URI on that service lives under.
type Endpoint struct {
	protocol string
	location string
	prefix   string
}

// ParseEndpoint splits a base URL such as "https://host:8443/repo/v1" into an
// Endpoint. The prefix never carries a trailing slash.
func ParseEndpoint(baseURL string) (Endpoint, error) {
	if strings.TrimSpace(baseURL) == "" {
		return Endpoint{}, fmt.Errorf("%w: base URL is required", ErrInvalidEndpoint)
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return Endpoint{}, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidEndpoint, parsed.Scheme)
	}
	if parsed.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: host is required in %q", ErrInvalidEndpoint, baseURL)
	}
	return Endpoint{
		protocol: scheme,
		location: parsed.Host,
		prefix:   strings.TrimRight(parsed.Path, "/"),
	}, nil
}

// Protocol returns "http" or "https".
func (e Endpoint) Protocol() string { return e.protocol }

// Location returns host[:port].
func (e Endpoint) Location() string { return e.location }

// Prefix returns the path prefix, without trailing slash.
func (e Endpoint) Prefix() string { return e.prefix }

// IsZero reports whether e was never parsed.
func (e Endpoint) IsZero() bool { return e.location == "" }

// Normalize prepends the prefix unless uri already starts with it.
func (e Endpoint) Normalize(uri string) string {
	if e.prefix != "" && strings.HasPrefix(uri, e.prefix) {
		return uri
	}
	return e.prefix + uri
}

// URL returns the absolute URL for uri on this endpoint.
func (e Endpoint) URL(uri string) string {
	return e.protocol + "://" + e.location + e.Normalize(uri)
}

func (e Endpoint) String() string {
	return e.protocol + "://" + e.location + e.prefix
}
