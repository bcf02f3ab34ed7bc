package synapse

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse/mock"
)

// recorder wraps a handler and remembers every request it saw.
type recorder struct {
	handler http.Handler
	calls   atomic.Int64

	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.calls.Add(1)
	body, _ := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(body))
	r.mu.Lock()
	r.requests = append(r.requests, req.Clone(req.Context()))
	r.bodies = append(r.bodies, string(body))
	r.mu.Unlock()
	r.handler.ServeHTTP(w, req)
}

func (r *recorder) last() *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}

func lastBody(t *testing.T, env *testEnv) string {
	t.Helper()
	env.rec.mu.Lock()
	defer env.rec.mu.Unlock()
	require.NotEmpty(t, env.rec.bodies)
	return env.rec.bodies[len(env.rec.bodies)-1]
}

type testEnv struct {
	client *Client
	mock   *mock.Server
	rec    *recorder
	srv    *httptest.Server
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	m := mock.New(mock.WithUser("curator@example.org", "secret"))
	return newTestEnvWithHandler(t, m, m, opts...)
}

func newTestEnvWithHandler(t *testing.T, m *mock.Server, h http.Handler, opts ...Option) *testEnv {
	t.Helper()
	rec := &recorder{handler: h}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL+mock.DefaultRepoPrefix, srv.URL+mock.DefaultAuthPrefix, opts...)
	require.NoError(t, err)
	return &testEnv{client: client, mock: m, rec: rec, srv: srv}
}

func (e *testEnv) calls() int64 { return e.rec.calls.Load() }

// fakeTimer fires immediately and records the requested waits.
type fakeTimer struct {
	mu      sync.Mutex
	waits   []time.Duration
	c       chan time.Time
	onStart func()
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{c: make(chan time.Time, 64)}
}

func (f *fakeTimer) Start(d time.Duration) {
	f.mu.Lock()
	f.waits = append(f.waits, d)
	f.mu.Unlock()
	if f.onStart != nil {
		f.onStart()
		return
	}
	f.c <- time.Time{}
}

func (f *fakeTimer) Stop() {}

func (f *fakeTimer) C() <-chan time.Time { return f.c }

func (f *fakeTimer) recorded() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}
