package memos

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/usememos/memos.go/pkg/logger"
)

// Version of the client library, reported in the default User-Agent.
const Version = "0.1.0"

const defaultUserAgent = "memos-go-client/" + Version

// Config holds every knob of a client. Build it with NewConfig and treat it
// as read-only afterwards; the client shares it across goroutines.
type Config struct {
	// BaseURL is the server root, without the API path segment.
	BaseURL string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	AccessToken string
	Username    string
	Password    string

	APIVersion string

	VerifySSL       bool
	FollowRedirects bool
	Headers         map[string]string

	MaxUploadSize int64
	ChunkSize     int

	Logger logger.Logger
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithAccessToken authenticates every request with a static bearer token.
// When both a token and credentials are configured, the token wins.
func WithAccessToken(token string) Option {
	return func(c *Config) { c.AccessToken = token }
}

// WithCredentials authenticates by creating a server session from a
// username/password pair on first use.
func WithCredentials(username, password string) Option {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

// WithTimeout sets the per-request timeout. The default is 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}

// WithRetries stores a retry count and delay. No operation consults them
// yet; they are accepted for forward compatibility.
func WithRetries(count int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = count
		c.RetryDelay = delay
	}
}

// WithVerifySSL toggles TLS certificate verification. Enabled by default.
func WithVerifySSL(verify bool) Option {
	return func(c *Config) { c.VerifySSL = verify }
}

// WithFollowRedirects toggles redirect following. Enabled by default.
func WithFollowRedirects(follow bool) Option {
	return func(c *Config) { c.FollowRedirects = follow }
}

// WithHeader adds a header sent on every request. Caller-supplied headers
// are never overwritten by the injected defaults.
func WithHeader(key, value string) Option {
	return func(c *Config) { c.Headers[key] = value }
}

// WithHeaders merges a header mapping into the configured headers.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		for k, v := range headers {
			c.Headers[k] = v
		}
	}
}

// WithAPIVersion overrides the versioned API path segment, "v1" by default.
func WithAPIVersion(version string) Option {
	return func(c *Config) { c.APIVersion = version }
}

// WithUploadLimits stores the maximum upload size and chunk size. No
// operation consults them yet; they are accepted for forward compatibility.
func WithUploadLimits(maxSize int64, chunkSize int) Option {
	return func(c *Config) {
		c.MaxUploadSize = maxSize
		c.ChunkSize = chunkSize
	}
}

// WithLogger replaces the default logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// NewConfig builds a validated Config for the given server URL. It returns a
// ConfigurationError when the URL is malformed or no usable authentication
// method is configured.
func NewConfig(baseURL string, opts ...Option) (*Config, error) {
	cfg := &Config{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryDelay:      time.Second,
		APIVersion:      "v1",
		VerifySSL:       true,
		FollowRedirects: true,
		Headers:         map[string]string{},
		MaxUploadSize:   100 * 1024 * 1024,
		ChunkSize:       8192,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validateBaseURL(); err != nil {
		return nil, err
	}
	if err := cfg.validateAuth(); err != nil {
		return nil, err
	}
	cfg.normalizeHeaders()

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return cfg, nil
}

func (c *Config) validateBaseURL() error {
	if c.BaseURL == "" {
		return &ConfigurationError{Message: "base URL is required"}
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return &ConfigurationError{Message: fmt.Sprintf("invalid base URL: %v", err)}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return &ConfigurationError{Message: "base URL must include a scheme and host"}
	}
	return nil
}

func (c *Config) validateAuth() error {
	hasToken := c.AccessToken != ""
	hasCredentials := c.Username != "" && c.Password != ""

	if !hasToken && !hasCredentials {
		return &ConfigurationError{
			Message: "either an access token or a username/password pair must be provided",
		}
	}
	if hasToken && hasCredentials {
		// Token takes precedence.
		c.Username = ""
		c.Password = ""
	}
	return nil
}

func (c *Config) normalizeHeaders() {
	defaults := map[string]string{
		"User-Agent":   defaultUserAgent,
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	for k, v := range defaults {
		if _, ok := c.Headers[k]; !ok {
			c.Headers[k] = v
		}
	}
}

// APIBaseURL is the server URL joined with the versioned API path segment.
func (c *Config) APIBaseURL() string {
	return c.BaseURL + "/api/" + c.APIVersion
}
