package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/tweetkit/endpoint"
	"github.com/kbukum/tweetkit/jsondata"
	"github.com/kbukum/tweetkit/oauth"
	"github.com/kbukum/tweetkit/resilience"
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the endpoint URL template. Defaults to the standard
	// twitter.com template with {api} and {version} placeholders.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIVersion fills the {version} placeholder. Defaults to "1.1".
	APIVersion string `yaml:"api_version" mapstructure:"api_version"`
	// Timeout is the per-request deadline for REST calls. Streams
	// ignore it and use StreamKeepAlive instead.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// StreamKeepAlive is how long a stream read may go without any
	// data (including keep-alive lines) before the connection is
	// considered dead.
	StreamKeepAlive time.Duration `yaml:"stream_keep_alive" mapstructure:"stream_keep_alive"`
	// MaxAttempts bounds attempts per call, including the first.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// UserAgent is sent on every request.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// Headers are added to every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Signer signs outgoing requests. Required.
	Signer oauth.Signer `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in default values.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = endpoint.DefaultBase
	}
	if c.APIVersion == "" {
		c.APIVersion = endpoint.DefaultVersion
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.StreamKeepAlive == 0 {
		c.StreamKeepAlive = 90 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Signer == nil {
		return errors.New("client: config requires a signer")
	}
	if c.Timeout < 0 {
		return errors.New("client: timeout must not be negative")
	}
	if c.MaxAttempts < 1 {
		return errors.New("client: max attempts must be at least 1")
	}
	return nil
}

// Client is an API client. It is safe for concurrent use: every call
// works on its own request and response instances, and the only shared
// mutable state is the rate-limit tracker.
type Client struct {
	cfg Config

	httpClient   *http.Client
	streamClient *http.Client

	signer   oauth.Signer
	limits   *resilience.LimitTracker
	backup   *Client
	decode   jsondata.DecodeFunc
	uploader MediaUploader

	log    zerolog.Logger
	tracer trace.Tracer

	// sleep waits between retry attempts; tests substitute a
	// simulated clock.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTransport sets the HTTP transport for both REST and stream
// connections. Tests use this to serve canned responses.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
		c.streamClient.Transport = rt
	}
}

// WithBackup registers a fallback client. When a call hits a rate
// limit the backup is tried once before waiting out the window.
func WithBackup(backup *Client) Option {
	return func(c *Client) { c.backup = backup }
}

// WithDecodeFunc replaces the response decoding hook.
func WithDecodeFunc(fn jsondata.DecodeFunc) Option {
	return func(c *Client) { c.decode = fn }
}

// WithMediaUploader replaces the media uploader.
func WithMediaUploader(u MediaUploader) Option {
	return func(c *Client) { c.uploader = u }
}

// WithLimitTracker shares a rate-limit tracker between clients.
func WithLimitTracker(t *resilience.LimitTracker) Option {
	return func(c *Client) { c.limits = t }
}

// New creates a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		signer: cfg.Signer,
		// REST deadlines come from the per-call context; the stream
		// client additionally must never time out on its own.
		httpClient:   &http.Client{},
		streamClient: &http.Client{},
		limits:       resilience.NewLimitTracker(),
		decode:       jsondata.Decode,
		log:          zerolog.Nop(),
		tracer:       otel.Tracer("github.com/kbukum/tweetkit/client"),
		sleep:        resilience.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.uploader == nil {
		c.uploader = &apiUploader{c: c}
	}
	return c, nil
}

// Endpoint returns the endpoint root for an API family, bound to the
// client's base URL and version.
func (c *Client) Endpoint(family string, opts ...endpoint.Option) endpoint.Endpoint {
	base := []endpoint.Option{
		endpoint.Base(c.cfg.BaseURL),
		endpoint.Version(c.cfg.APIVersion),
	}
	return endpoint.New(family, append(base, opts...)...)
}

// API returns the endpoint root for the main "api" family.
func (c *Client) API() endpoint.Endpoint {
	return c.Endpoint("api")
}

// Limits returns the client's rate-limit tracker.
func (c *Client) Limits() *resilience.LimitTracker {
	return c.limits
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, ep endpoint.Endpoint, params Params, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, ep, params, opts...)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, ep endpoint.Endpoint, params Params, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, ep, params, opts...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, ep endpoint.Endpoint, params Params, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, ep, params, opts...)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, ep endpoint.Endpoint, params Params, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, ep, params, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, ep endpoint.Endpoint, params Params, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, ep, params, opts...)
}

// Do resolves media params, builds the request and executes it through
// the error handler.
func (c *Client) Do(ctx context.Context, method string, ep endpoint.Endpoint, params Params, opts ...CallOption) (*Response, error) {
	params, err := c.resolveMedia(ctx, ep.APIFamily(), params)
	if err != nil {
		return nil, err
	}
	req, err := c.buildRequest(method, ep, params, opts)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, req)
}

// Call is a bound request: an endpoint and verb fixed ahead of time,
// invoked repeatedly with fresh params. Iterators page through the API
// by reissuing a Call with adjusted cursor params.
type Call func(ctx context.Context, params Params, opts ...CallOption) (*Response, error)

// Bind fixes a verb and endpoint into a reusable Call.
func (c *Client) Bind(method string, ep endpoint.Endpoint) Call {
	return func(ctx context.Context, params Params, opts ...CallOption) (*Response, error) {
		return c.Do(ctx, method, ep, params, opts...)
	}
}

func (c *Client) maxAttempts(opts CallOptions) int {
	if opts.MaxAttempts > 0 {
		return opts.MaxAttempts
	}
	return c.cfg.MaxAttempts
}

func (c *Client) callTimeout(opts CallOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return c.cfg.Timeout
}

func (c *Client) keepAlive(opts CallOptions) time.Duration {
	if opts.KeepAlive > 0 {
		return opts.KeepAlive
	}
	return c.cfg.StreamKeepAlive
}

func (c *Client) String() string {
	return fmt.Sprintf("client(base=%s)", c.cfg.BaseURL)
}
