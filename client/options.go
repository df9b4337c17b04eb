package client

import "time"

// CallOptions modify client behavior for a single call. They are
// consumed by the client and never transmitted as request parameters.
type CallOptions struct {
	// MaxAttempts bounds the attempts for this call. Zero means the
	// client default.
	MaxAttempts int
	// Timeout overrides the per-call deadline. Zero means the client
	// default. Ignored for streams.
	Timeout time.Duration
	// Headers are added to this request, overriding client defaults.
	Headers map[string]string
	// ErrorHandling enables classification, retries, and backup
	// substitution. When disabled the first error propagates untouched.
	ErrorHandling bool
	// RetryOn lets the caller opt otherwise-fatal errors into the
	// retry loop.
	RetryOn func(error) bool
	// Reconnect enables transparent stream reconnection.
	Reconnect bool
	// KeepAlive overrides the stream read timeout. Zero means the
	// client default.
	KeepAlive time.Duration
	// Suffix overrides the endpoint suffix for this call.
	Suffix *string
}

// CallOption configures a single call.
type CallOption func(*CallOptions)

// defaultCallOptions returns the options applied before any CallOption.
func defaultCallOptions() CallOptions {
	return CallOptions{
		ErrorHandling: true,
		Reconnect:     true,
	}
}

func newCallOptions(opts []CallOption) CallOptions {
	co := defaultCallOptions()
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// WithMaxAttempts bounds the number of attempts for this call.
func WithMaxAttempts(n int) CallOption {
	return func(co *CallOptions) { co.MaxAttempts = n }
}

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) CallOption {
	return func(co *CallOptions) { co.Timeout = d }
}

// WithHeader adds a header to this request.
func WithHeader(key, value string) CallOption {
	return func(co *CallOptions) {
		if co.Headers == nil {
			co.Headers = make(map[string]string)
		}
		co.Headers[key] = value
	}
}

// WithoutErrorHandling disables classification and retries for this
// call; the first error propagates immediately.
func WithoutErrorHandling() CallOption {
	return func(co *CallOptions) { co.ErrorHandling = false }
}

// WithRetryOn opts errors that the handler would normally treat as
// fatal into the retry loop.
func WithRetryOn(fn func(error) bool) CallOption {
	return func(co *CallOptions) { co.RetryOn = fn }
}

// WithReconnect controls transparent stream reconnection. It is on by
// default.
func WithReconnect(on bool) CallOption {
	return func(co *CallOptions) { co.Reconnect = on }
}

// WithKeepAlive sets the stream read timeout: the connection is
// considered dead when no data (not even a keep-alive line) arrives
// for this long.
func WithKeepAlive(d time.Duration) CallOption {
	return func(co *CallOptions) { co.KeepAlive = d }
}

// WithSuffix overrides the endpoint suffix for this call only.
func WithSuffix(suffix string) CallOption {
	return func(co *CallOptions) { co.Suffix = &suffix }
}
