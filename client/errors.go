package client

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kbukum/tweetkit/jsondata"
	"github.com/kbukum/tweetkit/resilience"
)

// ErrorCode classifies API client errors.
type ErrorCode int

const (
	// ErrCodeRateLimit indicates rate limiting (HTTP 429/420 or API
	// error code 88).
	ErrCodeRateLimit ErrorCode = iota
	// ErrCodeClient indicates a non-rate-limit 4xx response.
	ErrCodeClient
	// ErrCodeServer indicates a 5xx response.
	ErrCodeServer
	// ErrCodeNetwork indicates a connection failure (refused, DNS, TLS).
	ErrCodeNetwork
	// ErrCodeTimeout indicates a call or stream read deadline expired.
	ErrCodeTimeout
	// ErrCodeDecode indicates the response body failed the decode hook.
	ErrCodeDecode
	// ErrCodeUnsupportedMethod indicates an unrecognized HTTP verb.
	ErrCodeUnsupportedMethod
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeClient:
		return "client"
	case ErrCodeServer:
		return "server"
	case ErrCodeNetwork:
		return "network"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeDecode:
		return "decode"
	case ErrCodeUnsupportedMethod:
		return "unsupported_method"
	default:
		return "unknown"
	}
}

// resetMargin is added on top of the advertised window reset when
// waiting out a rate limit.
const resetMargin = time.Second

// Error is a structured API error carrying the full response context.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// StatusCode is the HTTP status code (0 for connection-level errors).
	StatusCode int
	// Message describes the error, from the API error payload when present.
	Message string
	// Retryable indicates whether the error handler may retry the call.
	Retryable bool
	// URL is the endpoint the failing request addressed.
	URL string
	// Body is the raw response body (may be nil).
	Body []byte
	// Data is the decoded error payload when the body was JSON.
	Data jsondata.Object
	// APICode is the endpoint-specific error code from the body (e.g. 88).
	APICode int
	// ResetAt is when the rate-limit window resets (rate-limit errors only).
	ResetAt time.Time
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode > 0 && e.URL != "":
		return fmt.Sprintf("client: %s (HTTP %d) on %s: %s", e.Code, e.StatusCode, e.URL, e.Message)
	case e.StatusCode > 0:
		return fmt.Sprintf("client: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("client: %s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// RetryDelay implements resilience.DelayHint: rate-limit errors wait
// until the window resets plus a fixed margin.
func (e *Error) RetryDelay() time.Duration {
	if e.Code != ErrCodeRateLimit || e.ResetAt.IsZero() {
		return 0
	}
	if d := time.Until(e.ResetAt); d > 0 {
		return d + resetMargin
	}
	return resetMargin
}

// ResetIn returns the time left until the rate-limit window resets.
func (e *Error) ResetIn() time.Duration {
	if e.ResetAt.IsZero() {
		return 0
	}
	if d := time.Until(e.ResetAt); d > 0 {
		return d
	}
	return 0
}

// NewNetworkError creates a connection-level error.
func NewNetworkError(url string, err error) *Error {
	return &Error{
		Code:      ErrCodeNetwork,
		Message:   err.Error(),
		Retryable: true,
		URL:       url,
		Err:       err,
	}
}

// NewTimeoutError creates a deadline-expiry error.
func NewTimeoutError(url string, err error) *Error {
	return &Error{
		Code:      ErrCodeTimeout,
		Message:   "request deadline exceeded",
		Retryable: true,
		URL:       url,
		Err:       err,
	}
}

// NewDecodeError creates an error for a body the decode hook rejected.
func NewDecodeError(url string, body []byte, err error) *Error {
	return &Error{
		Code:    ErrCodeDecode,
		Message: fmt.Sprintf("could not decode response data: %v", err),
		URL:     url,
		Body:    body,
		Err:     err,
	}
}

// NewUnsupportedMethodError creates an error for an unrecognized verb.
func NewUnsupportedMethodError(method string) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedMethod,
		Message: fmt.Sprintf("unsupported HTTP method %q", method),
	}
}

// apiCodeRateLimit is the endpoint-specific "Rate limit exceeded" code.
const apiCodeRateLimit = 88

// Classify converts a non-2xx response into a typed error. Returns nil
// for 2xx status codes.
func Classify(statusCode int, url string, headers map[string]string, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	data, apiCode, message := parseAPIError(body)
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}

	e := &Error{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
		Body:       body,
		Data:       data,
		APICode:    apiCode,
	}

	switch {
	case statusCode == 429 || statusCode == 420 || apiCode == apiCodeRateLimit:
		e.Code = ErrCodeRateLimit
		e.Retryable = true
		if reset, err := strconv.ParseInt(headers[resilience.HeaderLimitReset], 10, 64); err == nil {
			e.ResetAt = time.Unix(reset, 0)
		}
	case statusCode >= 400 && statusCode < 500:
		e.Code = ErrCodeClient
	case statusCode >= 500:
		e.Code = ErrCodeServer
	default:
		// 3xx and anything else surfaces as a client error
		e.Code = ErrCodeClient
	}

	return e
}

// parseAPIError extracts the first error entry from an API error
// payload of the form {"errors":[{"code":88,"message":"..."}]} or
// {"error":"..."}.
func parseAPIError(body []byte) (data jsondata.Object, code int, message string) {
	if len(body) == 0 {
		return nil, 0, ""
	}
	v, err := jsondata.Decode(body)
	if err != nil {
		return nil, 0, ""
	}
	o, ok := jsondata.AsObject(v)
	if !ok {
		return nil, 0, ""
	}

	if errs := o.Slice("errors"); len(errs) > 0 {
		if first, ok := jsondata.AsObject(errs[0]); ok {
			return o, int(first.Int64("code")), first.String("message")
		}
	}
	return o, 0, o.String("error")
}

// IsRateLimit checks if an error is a rate-limit error.
func IsRateLimit(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeRateLimit
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsNetwork checks if an error is a connection-level error.
func IsNetwork(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeNetwork
}

// IsDecode checks if an error came from the decode hook.
func IsDecode(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDecode
}

// IsServerError checks if an error is a 5xx response.
func IsServerError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeServer
}

// IsNotFound checks for a 404 response.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == 404
}

// IsUnauthorized checks for a 401 response.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == 401
}

// IsForbidden checks for a 403 response.
func IsForbidden(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == 403
}

// IsConflict checks for a 409 response.
func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == 409
}

// IsUnprocessable checks for a 422 response.
func IsUnprocessable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == 422
}

// IsRetryable checks if the error handler may retry the error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
