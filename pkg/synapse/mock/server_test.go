package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/devseed"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

type testClient struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newTestClient(t *testing.T, opts ...Option) (*testClient, *Server) {
	t.Helper()
	s := New(opts...)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return &testClient{t: t, srv: srv}, s
}

func (c *testClient) do(method, path string, body any, header http.Header) (int, map[string]any, http.Header) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = strings.NewReader(string(data))
	}
	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	require.NoError(c.t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	if c.token != "" {
		req.Header.Set(sessionTokenHeader, c.token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out, err := synapseapi.DecodeObject(data)
	require.NoError(c.t, err)
	return resp.StatusCode, out, resp.Header
}

func (c *testClient) login(email, password string) {
	c.t.Helper()
	status, body, _ := c.do(http.MethodPost, "/auth/v1/session", map[string]string{"email": email, "password": password}, nil)
	require.Equal(c.t, http.StatusCreated, status)
	c.token = body["sessionToken"].(string)
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, WithUser("curator@example.org", "pw"))

	status, body, _ := c.do(http.MethodPost, "/auth/v1/session", map[string]string{"email": "admin", "password": "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["reason"])

	c.login("curator@example.org", "pw")
	assert.NotEmpty(t, c.token)

	status, body, _ = c.do(http.MethodGet, "/auth/v1/user", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "curator@example.org", body["email"])

	status, _, _ = c.do(http.MethodPut, "/auth/v1/user", map[string]string{"displayName": "Curator"}, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestWritesRequireSession(t *testing.T) {
	c, _ := newTestClient(t)

	status, _, _ := c.do(http.MethodPost, "/repo/v1/project", map[string]any{"name": "p"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ := c.do(http.MethodGet, "/repo/v1/project", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["totalNumberOfResults"])
}

func TestEntityLifecycle(t *testing.T) {
	c, _ := newTestClient(t)
	c.login("admin", "admin")

	status, created, _ := c.do(http.MethodPost, "/repo/v1/dataset", map[string]any{"name": "MSKCC", "status": "draft"}, nil)
	require.Equal(t, http.StatusCreated, status)
	uri := created["uri"].(string)
	assert.Equal(t, "/repo/v1/dataset/"+created["id"].(string), uri)
	assert.Equal(t, uri+"/annotations", created["annotations"])
	assert.Equal(t, uri+"/locations", created["locations"])
	assert.Equal(t, "admin", created["createdBy"])

	status, got, _ := c.do(http.MethodGet, uri, nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created, got)

	got["status"] = "released"
	status, _, _ = c.do(http.MethodPut, uri, got, http.Header{"ETag": {"stale"}})
	assert.Equal(t, http.StatusPreconditionFailed, status)

	status, updated, _ := c.do(http.MethodPut, uri, got, http.Header{"ETag": {created["etag"].(string)}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "released", updated["status"])
	assert.NotEqual(t, created["etag"], updated["etag"])

	status, _, _ = c.do(http.MethodDelete, uri, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _, _ = c.do(http.MethodGet, uri, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAnnotationsAndLocations(t *testing.T) {
	c, _ := newTestClient(t)
	c.login("admin", "admin")

	_, layer, _ := c.do(http.MethodPost, "/repo/v1/layer", map[string]any{"name": "expr", "type": "E"}, nil)
	_, _, _ = c.do(http.MethodPost, "/repo/v1/location", map[string]any{"parentId": layer["id"], "type": "awss3", "path": "https://bucket/data/expr.zip"}, nil)

	status, locations, _ := c.do(http.MethodGet, layer["locations"].(string), nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, locations["totalNumberOfResults"])

	_, ann, _ := c.do(http.MethodGet, layer["annotations"].(string), nil, nil)
	ann["stringAnnotations"] = map[string]any{"platform": []any{"affy"}}
	status, saved, _ := c.do(http.MethodPut, layer["annotations"].(string), ann, http.Header{"ETag": {ann["etag"].(string)}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"platform": []any{"affy"}}, saved["stringAnnotations"])
}

func TestQuery(t *testing.T) {
	c, s := newTestClient(t)
	require.NoError(t, s.Seed(&devseed.Seed{Entities: []devseed.EntitySeedEntry{
		{Kind: "project", ID: "10", Fields: map[string]any{"name": "Sage"}},
		{Kind: "dataset", Fields: map[string]any{"name": "A", "parentId": "10"}},
		{Kind: "dataset", Fields: map[string]any{"name": "A", "parentId": "99"}},
		{Kind: "dataset", Fields: map[string]any{"name": "B", "parentId": "10"}},
	}}))

	query := func(q string) (int, map[string]any) {
		status, body, _ := c.do(http.MethodGet, "/repo/v1/query?"+url.Values{"query": {q}}.Encode(), nil, nil)
		return status, body
	}

	status, body := query(`select * from dataset where name == "A"`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["totalNumberOfResults"])

	_, body = query(`select * from dataset where dataset.name == "A" and parentId == "10"`)
	assert.EqualValues(t, 1, body["totalNumberOfResults"])
	row := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "A", row["dataset.name"])
	assert.NotEmpty(t, row["dataset.id"])

	_, body = query(`select * from dataset limit 1 offset 2`)
	assert.EqualValues(t, 3, body["totalNumberOfResults"])
	assert.Len(t, body["results"], 1)

	status, _ = query(`delete from dataset`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = query(`select * from dataset where name != "A"`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDaemons(t *testing.T) {
	c, _ := newTestClient(t, WithDaemonPolls(1))
	c.login("admin", "admin")

	status, started, _ := c.do(http.MethodPost, "/repo/v1/startBackupDaemon", map[string]any{}, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "STARTED", started["status"])
	statusURI := "/repo/v1/daemonStatus/" + started["id"].(string)

	_, poll, _ := c.do(http.MethodGet, statusURI, nil, nil)
	assert.Equal(t, "STARTED", poll["status"])
	_, poll, _ = c.do(http.MethodGet, statusURI, nil, nil)
	assert.Equal(t, "COMPLETED", poll["status"])
	assert.NotEmpty(t, poll["backupUrl"])
	assert.EqualValues(t, 100, poll["progresssCurrent"])

	_, restore, _ := c.do(http.MethodPost, "/repo/v1/startRestoreDaemon", map[string]any{"url": "s3://missing.zip"}, nil)
	statusURI = "/repo/v1/daemonStatus/" + restore["id"].(string)
	_, _, _ = c.do(http.MethodGet, statusURI, nil, nil)
	_, poll, _ = c.do(http.MethodGet, statusURI, nil, nil)
	assert.Equal(t, "FAILED", poll["status"])
	assert.NotEmpty(t, poll["errorMessage"])

	status, _, _ = c.do(http.MethodGet, "/repo/v1/daemonStatus/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProfilingHeader(t *testing.T) {
	c, _ := newTestClient(t)

	_, _, header := c.do(http.MethodGet, "/repo/v1/project", nil, http.Header{profileRequestHeader: {"True"}})
	profile, err := synapseapi.DecodeProfile(header.Get(profileResponseHeader))
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, profile.(map[string]any)["method"])

	_, _, header = c.do(http.MethodGet, "/repo/v1/project", nil, nil)
	assert.Empty(t, header.Get(profileResponseHeader))
}

func TestPrincipalsAndRoundTripper(t *testing.T) {
	s := New(WithUser("curator@example.org", "pw"))
	client := &http.Client{Transport: s.RoundTripper()}

	resp, err := client.Get("http://synapse.mock/repo/v1/user")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users struct {
		Total   int              `json:"totalNumberOfResults"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.Equal(t, 2, users.Total)

	resp, err = client.Get("http://synapse.mock/repo/v1/userGroup")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSeedRejectsDuplicates(t *testing.T) {
	s := New()
	seed := &devseed.Seed{Entities: []devseed.EntitySeedEntry{
		{Kind: "project", ID: "1", Fields: map[string]any{"name": "a"}},
		{Kind: "project", ID: "1", Fields: map[string]any{"name": "b"}},
	}}
	assert.Error(t, s.Seed(seed))
	assert.Error(t, s.Seed(&devseed.Seed{Entities: []devseed.EntitySeedEntry{{Kind: "widget"}}}))
}
