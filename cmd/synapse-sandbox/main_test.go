package main

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse/mock"
)

func TestParseFailConfig(t *testing.T) {
	cfg, err := parseFailConfig("")
	require.NoError(t, err)
	assert.Equal(t, failConfig{}, cfg)

	cfg, err = parseFailConfig("rate=0.25")
	require.NoError(t, err)
	assert.Equal(t, failConfig{rate: 0.25, code: http.StatusInternalServerError}, cfg)

	cfg, err = parseFailConfig(" rate = 1 , code=503, ")
	require.NoError(t, err)
	assert.Equal(t, failConfig{rate: 1, code: http.StatusServiceUnavailable}, cfg)

	for _, bad := range []string{"rate", "rate=x", "rate=2", "code=200", "code=x", "speed=1"} {
		_, err := parseFailConfig(bad)
		assert.Error(t, err, bad)
	}
}

func TestMiddlewareInjectsFailures(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rng := rand.New(rand.NewSource(1))

	h := withMiddleware(hclog.NewNullLogger(), 0, failConfig{rate: 1, code: http.StatusBadGateway}, rng, next)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/repo/v1/project", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	h = withMiddleware(hclog.NewNullLogger(), 0, failConfig{}, rng, next)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/repo/v1/project", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareLatency(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := withMiddleware(hclog.NewNullLogger(), 20*time.Millisecond, failConfig{}, rand.New(rand.NewSource(1)), next)

	start := time.Now()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestExports(t *testing.T) {
	assert.Equal(t, []string{
		"export SYNAPSE_RUNTIME_MODE=http",
		"export SYNAPSE_REPO_ENDPOINT=http://localhost:8787/repo/v1",
		"export SYNAPSE_AUTH_ENDPOINT=http://localhost:8787/auth/v1",
	}, exports(":8787", mock.New()))
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-unknown"}))
	assert.Equal(t, 1, run([]string{"-fail", "rate=oops"}))
	assert.Equal(t, 1, run([]string{"-seed", "/does/not/exist.json"}))
}
