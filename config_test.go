package memos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigRequiresURL(t *testing.T) {
	_, err := NewConfig("", WithAccessToken("tok"))
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewConfigRejectsURLWithoutScheme(t *testing.T) {
	_, err := NewConfig("memos.example.com", WithAccessToken("tok"))
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewConfigTrimsTrailingSlash(t *testing.T) {
	cfg, err := NewConfig("https://memos.example.com/", WithAccessToken("tok"))
	require.NoError(t, err)
	assert.Equal(t, "https://memos.example.com", cfg.BaseURL)
	assert.Equal(t, "https://memos.example.com/api/v1", cfg.APIBaseURL())
}

func TestNewConfigRequiresAuth(t *testing.T) {
	_, err := NewConfig("https://memos.example.com")
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	// A username without a password is not a full credential pair.
	_, err = NewConfig("https://memos.example.com", WithCredentials("alice", ""))
	require.Error(t, err)
}

func TestNewConfigTokenPrecedence(t *testing.T) {
	cfg, err := NewConfig("https://memos.example.com",
		WithAccessToken("tok"),
		WithCredentials("alice", "secret"))
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Empty(t, cfg.Username)
	assert.Empty(t, cfg.Password)
}

func TestNewConfigDefaultHeaders(t *testing.T) {
	cfg, err := NewConfig("https://memos.example.com", WithAccessToken("tok"))
	require.NoError(t, err)

	assert.Equal(t, defaultUserAgent, cfg.Headers["User-Agent"])
	assert.Equal(t, "application/json", cfg.Headers["Accept"])
	assert.Equal(t, "application/json", cfg.Headers["Content-Type"])
}

func TestNewConfigKeepsCallerHeaders(t *testing.T) {
	cfg, err := NewConfig("https://memos.example.com",
		WithAccessToken("tok"),
		WithHeader("User-Agent", "custom-agent/1.0"),
		WithHeaders(map[string]string{"X-Extra": "yes"}))
	require.NoError(t, err)

	assert.Equal(t, "custom-agent/1.0", cfg.Headers["User-Agent"])
	assert.Equal(t, "yes", cfg.Headers["X-Extra"])
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig("https://memos.example.com", WithAccessToken("tok"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "v1", cfg.APIVersion)
	assert.True(t, cfg.VerifySSL)
	assert.True(t, cfg.FollowRedirects)
	assert.NotNil(t, cfg.Logger)
}

func TestNewConfigAPIVersionOverride(t *testing.T) {
	cfg, err := NewConfig("https://memos.example.com",
		WithAccessToken("tok"),
		WithAPIVersion("v2"))
	require.NoError(t, err)
	assert.Equal(t, "https://memos.example.com/api/v2", cfg.APIBaseURL())
}
