package synapse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse/mock"
)

func TestLoginStoresTokenAndAuthenticatesLaterCalls(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.CreateProject(ctx, Entity{"name": "anonymous"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))

	require.NoError(t, env.client.Login(ctx, "curator@example.org", "secret"))
	token := env.client.SessionToken()
	require.NotEmpty(t, token)

	login := env.rec.last()
	assert.Equal(t, http.MethodPost, login.Method)
	assert.Equal(t, "/auth/v1/session", login.URL.Path)

	project, err := env.client.CreateProject(ctx, Entity{"name": "Sage"})
	require.NoError(t, err)
	assert.Equal(t, "Sage", project.String("name"))
	assert.Equal(t, token, env.rec.last().Header.Get("sessionToken"))

	_, err = env.client.Get(ctx, Authentication, "/user")
	require.NoError(t, err)
	assert.Equal(t, token, env.rec.last().Header.Get("sessionToken"))

	env.client.Logout()
	assert.Empty(t, env.client.SessionToken())
	_, err = env.client.Get(ctx, Repository, "/project")
	require.NoError(t, err)
	assert.Empty(t, env.rec.last().Header.Get("sessionToken"))
}

func TestLoginRequiresCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.True(t, errors.Is(env.client.Login(ctx, "", "secret"), ErrInvalidArgument))
	assert.True(t, errors.Is(env.client.Login(ctx, "curator@example.org", ""), ErrInvalidArgument))
	assert.Zero(t, env.calls())
}

func TestLoginRejected(t *testing.T) {
	env := newTestEnv(t)

	err := env.client.Login(context.Background(), "curator@example.org", "wrong")
	require.Error(t, err)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
	assert.Empty(t, env.client.SessionToken())

	require.NoError(t, env.client.Login(context.Background(), "curator@example.org", "secret"))
}

func TestLoginWithoutTokenIsAuthenticationError(t *testing.T) {
	m := mock.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"displayName":"nobody"}`)
	})
	env := newTestEnvWithHandler(t, m, handler)

	err := env.client.Login(context.Background(), "a@b.org", "pw")
	assert.True(t, errors.Is(err, ErrAuthentication))
	assert.Empty(t, env.client.SessionToken())
}

func TestLoginSuspendsProfiling(t *testing.T) {
	env := newTestEnv(t, WithRequestProfiling(true))

	require.NoError(t, env.client.Login(context.Background(), "curator@example.org", "secret"))
	assert.Empty(t, env.rec.last().Header.Get("profile_request"))
	assert.Nil(t, env.client.LastProfile())
	assert.True(t, env.client.RequestProfiling())

	err := env.client.Login(context.Background(), "curator@example.org", "wrong")
	require.Error(t, err)
	assert.True(t, env.client.RequestProfiling())
}

func TestSetSessionToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.client.Login(ctx, "curator@example.org", "secret"))
	token := env.client.SessionToken()

	other, err := New(env.client.RepoEndpoint(), env.client.AuthEndpoint())
	require.NoError(t, err)
	other.SetSessionToken(token)
	_, err = other.CreateProject(ctx, Entity{"name": "shared"})
	require.NoError(t, err)
}
