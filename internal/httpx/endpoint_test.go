package httpx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		protocol string
		location string
		prefix   string
	}{
		{"https with port", "https://repo.example.org:8443/repo/v1", "https", "repo.example.org:8443", "/repo/v1"},
		{"trailing slash trimmed", "http://localhost:8080/auth/v1/", "http", "localhost:8080", "/auth/v1"},
		{"no prefix", "http://localhost", "http", "localhost", ""},
		{"scheme case", "HTTPS://host/p", "https", "host", "/p"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ep, err := ParseEndpoint(tc.baseURL)
			require.NoError(t, err)
			assert.Equal(t, tc.protocol, ep.Protocol())
			assert.Equal(t, tc.location, ep.Location())
			assert.Equal(t, tc.prefix, ep.Prefix())
		})
	}
}

func TestParseEndpointRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://host/x", "://bad", "http:///nohost"} {
		_, err := ParseEndpoint(raw)
		assert.True(t, errors.Is(err, ErrInvalidEndpoint), "expected ErrInvalidEndpoint for %q, got %v", raw, err)
	}
}

func TestEndpointNormalize(t *testing.T) {
	ep, err := ParseEndpoint("http://localhost:8080/repo/v1")
	require.NoError(t, err)

	assert.Equal(t, "/repo/v1/project/1", ep.Normalize("/repo/v1/project/1"))
	assert.Equal(t, "/repo/v1/project/1", ep.Normalize("/project/1"))
	assert.Equal(t, "/repo/v1/query?query=x", ep.Normalize("/query?query=x"))
	assert.Equal(t, "http://localhost:8080/repo/v1/session", ep.URL("/session"))

	bare, err := ParseEndpoint("http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "/project", bare.Normalize("/project"))
	assert.False(t, bare.IsZero())
	assert.True(t, Endpoint{}.IsZero())
}
