package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/tweetkit/resilience"
	"github.com/kbukum/tweetkit/version"
)

var defaultUserAgent = version.UserAgent()

// execute runs a built request through the error handler: retries on
// retryable failures, backup substitution on rate limits, rate-limit
// aware backoff between attempts.
func (c *Client) execute(ctx context.Context, req *Request) (*Response, error) {
	requestID := uuid.NewString()
	log := c.log.With().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", req.URL).
		Logger()

	if !req.Options.ErrorHandling {
		return c.attempt(ctx, req)
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = c.maxAttempts(req.Options)
	cfg.Sleep = c.sleep
	cfg.RetryIf = func(err error) bool {
		if IsRetryable(err) {
			return true
		}
		return req.Options.RetryOn != nil && req.Options.RetryOn(err)
	}
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn().
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("request failed, retrying")
	}
	if req.Multipart != nil && req.Multipart.hasReaderFile() {
		// a Reader-backed file body can only be encoded once
		cfg.MaxAttempts = 1
	}

	return resilience.Retry(ctx, cfg, func() (*Response, error) {
		resp, err := c.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}

		// A rate-limited call is handed to the backup client before
		// waiting out the window. If the backup fails too, the
		// primary's error (and its reset delay) drives the backoff.
		if IsRateLimit(err) && c.backup != nil {
			log.Debug().Msg("rate limited, substituting backup client")
			if bresp, berr := c.backup.attempt(ctx, req); berr == nil {
				return bresp, nil
			}
		}
		return nil, err
	})
}

// attempt performs one HTTP exchange for req.
func (c *Client) attempt(ctx context.Context, req *Request) (*Response, error) {
	if d := c.callTimeout(req.Options); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, req.Method+" "+req.URL,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
		))
	defer span.End()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, NewTimeoutError(req.URL, err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, NewNetworkError(req.URL, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewNetworkError(req.URL, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))

	headers := flattenHeaders(httpResp.Header)
	c.limits.UpdateFromHeaders(req.URL, headers)

	if apiErr := Classify(httpResp.StatusCode, req.URL, headers, body); apiErr != nil {
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		URL:        httpResp.Request.URL,
	}
	if len(body) > 0 && req.Method != http.MethodHead {
		data, err := c.decode(body)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, NewDecodeError(req.URL, body, err)
		}
		resp.Data = data
	}
	return resp, nil
}

// newHTTPRequest turns a Request into a signed *http.Request. Params
// travel in the query string for query methods and in the body
// otherwise; multipart bodies are never signed.
func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
		signable    map[string]string
		rawurl      = req.URL
	)

	switch {
	case req.Multipart != nil:
		r, ct, err := req.Multipart.encode()
		if err != nil {
			return nil, NewNetworkError(req.URL, err)
		}
		body, contentType = r, ct
	case bodyMethods[req.Method]:
		body = strings.NewReader(encodeForm(req.Params))
		contentType = "application/x-www-form-urlencoded"
		signable = req.Params
	default:
		if len(req.Params) > 0 {
			rawurl = req.URL + "?" + encodeForm(req.Params)
		}
		signable = req.Params
	}

	authHeaders, err := c.signer.Sign(req.Method, req.URL, signable)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, rawurl, body)
	if err != nil {
		return nil, NewNetworkError(req.URL, err)
	}

	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range authHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// encodeForm url-encodes wire params deterministically.
func encodeForm(params map[string]string) string {
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// flattenHeaders keeps the first value of each header.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// hasReaderFile reports whether any file is backed by a one-shot
// Reader instead of a byte slice.
func (m *MultipartBody) hasReaderFile() bool {
	for _, f := range m.Files {
		if f.File.Data == nil && f.File.Reader != nil {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
