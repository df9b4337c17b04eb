package client

import (
	"context"
	"io"

	"github.com/kbukum/tweetkit/endpoint"
	"github.com/kbukum/tweetkit/stream"
)

// Stream opens a streaming connection to ep and returns the message
// stream. Each (re)connection signs a fresh request; the per-call
// timeout does not apply, liveness is enforced by the keep-alive
// window instead.
func (c *Client) Stream(ctx context.Context, method string, ep endpoint.Endpoint, params Params, opts ...CallOption) (*stream.Stream, error) {
	req, err := c.buildRequest(method, ep, params, opts)
	if err != nil {
		return nil, err
	}

	return stream.Open(ctx, c.openStream(req), stream.Options{
		Decode:    c.decode,
		KeepAlive: c.keepAlive(req.Options),
		Reconnect: req.Options.Reconnect,
		Terminal:  streamTerminal,
		Logger:    c.log,
	})
}

// openStream builds the connect function handed to the stream: one
// signed HTTP exchange whose body is left open.
func (c *Client) openStream(req *Request) stream.ConnectFunc {
	return func(ctx context.Context) (io.ReadCloser, error) {
		httpReq, err := c.newHTTPRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, err := c.streamClient.Do(httpReq)
		if err != nil {
			return nil, NewNetworkError(req.URL, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
			return nil, Classify(resp.StatusCode, req.URL, flattenHeaders(resp.Header), body)
		}
		return resp.Body, nil
	}
}

// streamTerminal reports errors that must end a stream instead of
// triggering a reconnect: the server is refusing the client, not
// dropping the connection.
func streamTerminal(err error) bool {
	return IsRateLimit(err) || IsUnauthorized(err) || IsForbidden(err) || IsDecode(err)
}
