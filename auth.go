package memos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionTTL is the server's session window: two weeks from the last login.
const sessionTTL = 14 * 24 * time.Hour

// AuthManager produces authentication headers for outbound requests and
// owns the session state of one client instance. Concurrent calls may race
// to refresh an expired session; the duplicate login is idempotent.
type AuthManager struct {
	config    *Config
	transport func() *http.Client

	mu               sync.Mutex
	accessToken      string
	sessionData      map[string]any
	sessionExpiresAt time.Time
}

func newAuthManager(config *Config, transport func() *http.Client) *AuthManager {
	return &AuthManager{
		config:      config,
		transport:   transport,
		accessToken: config.AccessToken,
	}
}

// Authenticate returns the headers to attach to a request. A held token is
// returned immediately; otherwise a session is established from the
// configured credentials first.
func (a *AuthManager) Authenticate(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	token := a.accessToken
	a.mu.Unlock()

	if token != "" {
		return map[string]string{"Authorization": "Bearer " + token}, nil
	}

	if a.config.Username != "" && a.config.Password != "" {
		if err := a.createSession(ctx); err != nil {
			return nil, err
		}
		a.mu.Lock()
		token = a.accessToken
		a.mu.Unlock()
		if token != "" {
			return map[string]string{"Authorization": "Bearer " + token}, nil
		}
	}

	return nil, &AuthenticationError{APIError{Message: "no valid authentication method available"}}
}

func (a *AuthManager) createSession(ctx context.Context) error {
	if a.config.Username == "" || a.config.Password == "" {
		return &AuthenticationError{APIError{Message: "username and password required for session creation"}}
	}

	body := map[string]any{
		"password_credentials": map[string]string{
			"username": a.config.Username,
			"password": a.config.Password,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return &AuthenticationError{APIError{Message: fmt.Sprintf("encoding session request: %v", err)}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.APIBaseURL()+"/auth/sessions", bytes.NewReader(payload))
	if err != nil {
		return &AuthenticationError{APIError{Message: fmt.Sprintf("building session request: %v", err)}}
	}
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.transport().Do(req)
	if err != nil {
		return &NetworkError{Message: "failed to connect to authentication endpoint", Err: err}
	}
	defer resp.Body.Close()

	data := decodeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg := "Authentication failed"
		if m, ok := data["message"].(string); ok && m != "" {
			msg = m
		}
		return &AuthenticationError{APIError{
			Message:      msg,
			StatusCode:   resp.StatusCode,
			ResponseBody: data,
		}}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionData = data
	if token, ok := data["access_token"].(string); ok && token != "" {
		a.accessToken = token
	}
	a.sessionExpiresAt = time.Now().Add(sessionTTL)
	return nil
}

// RefreshSession re-authenticates when the held session's expiry has
// passed. It fails when no credentials are available to log in again.
func (a *AuthManager) RefreshSession(ctx context.Context) error {
	a.mu.Lock()
	expired := !a.sessionExpiresAt.IsZero() && !time.Now().Before(a.sessionExpiresAt)
	a.mu.Unlock()

	if !expired {
		return nil
	}
	if a.config.Username == "" || a.config.Password == "" {
		return &AuthenticationError{APIError{Message: "session expired and no credentials available for refresh"}}
	}
	return a.createSession(ctx)
}

// Logout invalidates the local auth state. The remote session delete is
// best effort: any failure is swallowed and local state is cleared anyway.
func (a *AuthManager) Logout(ctx context.Context) {
	a.mu.Lock()
	token := a.accessToken
	a.mu.Unlock()

	if token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
			a.config.APIBaseURL()+"/auth/sessions/current", http.NoBody)
		if err == nil {
			for k, v := range a.config.Headers {
				req.Header.Set(k, v)
			}
			req.Header.Set("Authorization", "Bearer "+token)
			if resp, err := a.transport().Do(req); err == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = ""
	a.sessionData = nil
	a.sessionExpiresAt = time.Time{}
}

// CurrentSession fetches the server's view of the session. It is best
// effort and reports absence on any failure. It never logs in: without a
// held token there is no session to inspect.
func (a *AuthManager) CurrentSession(ctx context.Context) (map[string]any, bool) {
	if !a.IsAuthenticated() {
		return nil, false
	}
	headers, err := a.Authenticate(ctx)
	if err != nil {
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.config.APIBaseURL()+"/auth/sessions/current", http.NoBody)
	if err != nil {
		return nil, false
	}
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.transport().Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}
	data := decodeBody(resp.Body)
	if data == nil {
		return nil, false
	}
	return data, true
}

// IsAuthenticated reports whether a token is currently held.
func (a *AuthManager) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken != ""
}

// UserInfo returns the user object captured at login, when the session
// response carried one.
func (a *AuthManager) UserInfo() (map[string]any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sessionData == nil {
		return nil, false
	}
	user, ok := a.sessionData["user"].(map[string]any)
	return user, ok
}

// DecodeToken decodes a JWT payload without verifying its signature. It is
// informational only and reports absence on any decode failure.
func DecodeToken(token string) (map[string]any, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// decodeBody reads a response body as a JSON object, returning an empty map
// for empty or non-object bodies.
func decodeBody(r io.Reader) map[string]any {
	raw, err := io.ReadAll(r)
	if err != nil || len(raw) == 0 {
		return map[string]any{}
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]any{}
	}
	return data
}
