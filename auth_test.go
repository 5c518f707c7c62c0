package memos

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usememos/memos.go/internal/memotest"
)

func TestAuthenticateStaticToken(t *testing.T) {
	// No network call happens for a static token.
	client, err := NewClient("http://127.0.0.1:1", WithAccessToken("tok"))
	require.NoError(t, err)

	headers, err := client.Auth().Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Authorization": "Bearer tok"}, headers)
	assert.True(t, client.Auth().IsAuthenticated())
}

func TestSessionLogin(t *testing.T) {
	srv := memotest.NewServer()
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithCredentials(srv.Username, srv.Password))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	assert.False(t, client.Auth().IsAuthenticated())

	headers, err := client.Auth().Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+srv.Token, headers["Authorization"])
	assert.True(t, client.Auth().IsAuthenticated())

	user, ok := client.Auth().UserInfo()
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
}

func TestSessionLoginFailure(t *testing.T) {
	srv := memotest.NewServer()
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithCredentials(srv.Username, "wrong"))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.Auth().Authenticate(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 401, authErr.StatusCode)
	assert.Equal(t, "incorrect login credentials", authErr.Message)
}

func TestSessionLoginNetworkError(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, WithCredentials("alice", "secret"))
	require.NoError(t, err)

	_, err = client.Auth().Authenticate(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestAuthenticateWithoutMethod(t *testing.T) {
	// Bypass NewConfig's auth validation to exercise the manager's own check.
	cfg, err := NewConfig("http://127.0.0.1:1", WithAccessToken("tok"))
	require.NoError(t, err)
	cfg.AccessToken = ""
	client := NewClientFromConfig(cfg)
	client.auth.accessToken = ""

	_, err = client.Auth().Authenticate(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestLogoutSwallowsRemoteFailure(t *testing.T) {
	srv := memotest.NewServer()
	t.Cleanup(srv.Close)
	srv.FailLogout = true

	client, err := NewClient(srv.URL, WithCredentials(srv.Username, srv.Password))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.Auth().Authenticate(context.Background())
	require.NoError(t, err)

	client.Auth().Logout(context.Background())
	assert.False(t, client.Auth().IsAuthenticated())
	assert.Equal(t, 1, srv.LogoutCalls)

	_, ok := client.Auth().UserInfo()
	assert.False(t, ok)
}

func TestRefreshSession(t *testing.T) {
	srv := memotest.NewServer()
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithCredentials(srv.Username, srv.Password))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.Auth().Authenticate(context.Background())
	require.NoError(t, err)

	// Not yet expired: a refresh is a no-op.
	require.NoError(t, client.Auth().RefreshSession(context.Background()))

	client.auth.mu.Lock()
	client.auth.sessionExpiresAt = time.Now().Add(-time.Hour)
	client.auth.mu.Unlock()

	require.NoError(t, client.Auth().RefreshSession(context.Background()))

	client.auth.mu.Lock()
	expiresAt := client.auth.sessionExpiresAt
	client.auth.mu.Unlock()
	assert.True(t, expiresAt.After(time.Now()))
}

func TestRefreshSessionWithoutCredentials(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", WithAccessToken("tok"))
	require.NoError(t, err)

	client.auth.mu.Lock()
	client.auth.sessionExpiresAt = time.Now().Add(-time.Hour)
	client.auth.mu.Unlock()

	err = client.Auth().RefreshSession(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestCurrentSession(t *testing.T) {
	srv := memotest.NewServer()
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	session, ok := client.Auth().CurrentSession(context.Background())
	require.True(t, ok)
	assert.Contains(t, session, "user")
}

func TestCurrentSessionDoesNotLogIn(t *testing.T) {
	srv := memotest.NewServer()
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithCredentials(srv.Username, srv.Password))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	// Inspection before any authenticated call reports absence instead of
	// establishing a session.
	_, ok := client.Auth().CurrentSession(context.Background())
	assert.False(t, ok)
	assert.False(t, client.Auth().IsAuthenticated())
}

func TestDecodeToken(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "users/1",
		"name": "alice",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	claims, ok := DecodeToken(signed)
	require.True(t, ok)
	assert.Equal(t, "users/1", claims["sub"])
	assert.Equal(t, "alice", claims["name"])

	_, ok = DecodeToken("not-a-jwt")
	assert.False(t, ok)
}
