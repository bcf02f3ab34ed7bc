package synapse

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse/mock"
)

func clearSynapseEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SYNAPSE_RUNTIME_MODE",
		"SYNAPSE_REPO_ENDPOINT",
		"SYNAPSE_AUTH_ENDPOINT",
		"SYNAPSE_TIMEOUT_SECONDS",
		"SYNAPSE_DEBUG",
		"SYNAPSE_MOCK_SEED",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestNewFromEnvHTTP(t *testing.T) {
	clearSynapseEnv(t)
	env := newTestEnv(t)
	t.Setenv("SYNAPSE_REPO_ENDPOINT", env.srv.URL+mock.DefaultRepoPrefix)
	t.Setenv("SYNAPSE_AUTH_ENDPOINT", env.srv.URL+mock.DefaultAuthPrefix)
	t.Setenv("SYNAPSE_TIMEOUT_SECONDS", "7")

	client, mode, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http", mode)
	assert.Equal(t, 7*time.Second, client.Timeout())

	require.NoError(t, client.Login(context.Background(), "curator@example.org", "secret"))
	assert.EqualValues(t, 1, env.calls())
}

func TestNewFromEnvAutoFallsBackToMock(t *testing.T) {
	clearSynapseEnv(t)

	client, mode, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mock", mode)
	assert.Equal(t, 30*time.Second, client.Timeout())

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, "admin", "admin"))
	project, err := client.CreateProject(ctx, Entity{"name": "in memory"})
	require.NoError(t, err)
	found, err := client.GetRepoEntityByName(ctx, "project", "in memory", "")
	require.NoError(t, err)
	assert.Equal(t, project.ID(), found.ID())
}

func TestNewFromEnvMockSeed(t *testing.T) {
	clearSynapseEnv(t)
	seedPath := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(`{
		"users": [{"email": "seeded@example.org", "password": "pw"}],
		"entities": [{"kind": "dataset", "id": "42", "fields": {"name": "seeded"}}]
	}`), 0o644))
	t.Setenv("SYNAPSE_RUNTIME_MODE", "mock")
	t.Setenv("SYNAPSE_MOCK_SEED", seedPath)

	client, mode, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mock", mode)

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, "seeded@example.org", "pw"))
	dataset, err := client.GetDataset(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "seeded", dataset.String("name"))
}

func TestNewFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"http without endpoints": {"SYNAPSE_RUNTIME_MODE": "http"},
		"unknown mode":           {"SYNAPSE_RUNTIME_MODE": "grpc"},
		"bad timeout":            {"SYNAPSE_TIMEOUT_SECONDS": "soon"},
		"missing seed":           {"SYNAPSE_RUNTIME_MODE": "mock", "SYNAPSE_MOCK_SEED": "/does/not/exist.json"},
		"bad endpoint": {
			"SYNAPSE_RUNTIME_MODE":  "http",
			"SYNAPSE_REPO_ENDPOINT": "ftp://repo",
			"SYNAPSE_AUTH_ENDPOINT": "https://auth.example.org/auth/v1",
		},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			clearSynapseEnv(t)
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, _, err := NewFromEnv()
			assert.Error(t, err)
		})
	}
}
