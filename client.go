package memos

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Client talks to a Memos server. Every remote operation is a single HTTP
// round trip: the client obtains auth headers, issues the call, and maps the
// response to a typed model or a typed error.
//
// The underlying transport is created lazily on first use and released by
// Close. A Client is safe for concurrent use.
type Client struct {
	config *Config
	auth   *AuthManager

	mu         sync.Mutex
	httpClient *http.Client
}

// NewClient builds a client for the given server URL. See NewConfig for the
// accepted options and construction-time failures.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	config, err := NewConfig(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewClientFromConfig(config), nil
}

// NewClientFromConfig builds a client from an already validated Config.
func NewClientFromConfig(config *Config) *Client {
	c := &Client{config: config}
	c.auth = newAuthManager(config, c.transport)
	return c
}

// Config returns the client's configuration. Treat it as read-only.
func (c *Client) Config() *Config {
	return c.config
}

// Auth returns the authentication manager owned by this client.
func (c *Client) Auth() *AuthManager {
	return c.auth
}

// Close releases the transport. The client can be reused afterwards; the
// transport is recreated on the next call.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
}

// transport returns the shared *http.Client, creating it on first use.
func (c *Client) transport() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient == nil {
		hc := &http.Client{Timeout: c.config.Timeout}
		if !c.config.VerifySSL {
			hc.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		if !c.config.FollowRedirects {
			hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			}
		}
		c.httpClient = hc
	}
	return c.httpClient
}

// filePayload is a multipart form upload body.
type filePayload struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

// requestOptions carries the optional parts of one API call.
type requestOptions struct {
	params  url.Values
	body    any
	file    *filePayload
	headers map[string]string
}

// do issues one authenticated request against the versioned API base and
// decodes a successful JSON response into out when out is non-nil. Models
// implementing Validate are validated before being returned.
func (c *Client) do(ctx context.Context, method, endpoint string, ro requestOptions, out any) error {
	fullURL := c.config.APIBaseURL() + "/" + strings.TrimPrefix(endpoint, "/")
	if len(ro.params) > 0 {
		fullURL += "?" + ro.params.Encode()
	}

	authHeaders, err := c.auth.Authenticate(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	contentType := ""
	switch {
	case ro.file != nil:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		part, err := createFormFile(w, ro.file)
		if err != nil {
			return &NetworkError{Message: "failed to encode upload", Err: err}
		}
		if _, err := part.Write(ro.file.content); err != nil {
			return &NetworkError{Message: "failed to encode upload", Err: err}
		}
		if err := w.Close(); err != nil {
			return &NetworkError{Message: "failed to encode upload", Err: err}
		}
		reader = buf
		contentType = w.FormDataContentType()
	case ro.body != nil:
		payload, err := json.Marshal(ro.body)
		if err != nil {
			return &NetworkError{Message: "failed to encode request body", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return &NetworkError{Message: "failed to build request", Err: err}
	}

	// Precedence: configured defaults < call-site headers < auth headers.
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}
	for k, v := range authHeaders {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	c.config.Logger.Debug("request", "request_id", requestID, "method", method, "url", fullURL)

	resp, err := c.transport().Do(req)
	if err != nil {
		return &NetworkError{Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Message: "failed to read response", Err: err}
	}
	c.config.Logger.Debug("response", "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(resp, raw)
	}

	if out == nil {
		return nil
	}
	// An empty success body decodes as an empty object so validation still
	// rejects models the server never populated.
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &NetworkError{Message: "failed to decode response", Err: err}
	}
	if v, ok := out.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return &ValidationError{APIError{Message: err.Error()}}
		}
	}
	return nil
}

// rawGet fetches an absolute URL outside the JSON API, returning the raw
// body bytes. Used for binary file downloads.
func (c *Client) rawGet(ctx context.Context, fullURL string) ([]byte, error) {
	authHeaders, err := c.auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, &NetworkError{Message: "failed to build request", Err: err}
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range authHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.transport().Do(req)
	if err != nil {
		return nil, &NetworkError{Message: "failed to download attachment", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Message: "failed to read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(resp, raw)
	}
	return raw, nil
}

// statusError maps a non-success response to the error taxonomy. The parsed
// response body rides along when the server sent JSON.
func statusError(resp *http.Response, raw []byte) error {
	data := map[string]any{}
	if len(raw) > 0 {
		// Non-JSON error bodies are dropped, the status code is what matters.
		_ = json.Unmarshal(raw, &data)
	}

	base := APIError{
		StatusCode:   resp.StatusCode,
		ResponseBody: data,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		base.Message = "Authentication failed"
		return &AuthenticationError{base}
	case resp.StatusCode == http.StatusForbidden:
		base.Message = "Access denied - insufficient permissions"
		return &AuthenticationError{base}
	case resp.StatusCode == http.StatusNotFound:
		base.Message = "Resource not found"
		return &NotFoundError{base}
	case resp.StatusCode == http.StatusBadRequest:
		base.Message = "Validation failed"
		return &ValidationError{base}
	case resp.StatusCode == http.StatusTooManyRequests:
		base.Message = "Rate limit exceeded"
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RateLimitError{APIError: base, RetryAfter: retryAfter}
	case resp.StatusCode >= 500:
		base.Message = "Internal server error"
		return &ServerError{base}
	default:
		base.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return &base
	}
}

func createFormFile(w *multipart.Writer, f *filePayload) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
	h.Set("Content-Type", f.contentType)
	return w.CreatePart(h)
}
