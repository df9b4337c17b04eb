package client

import (
	"net/http"
	"net/url"

	"github.com/kbukum/tweetkit/jsondata"
	"github.com/kbukum/tweetkit/resilience"
)

// Response is a decoded API response.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers http.Header
	// URL is the request URL that produced this response.
	URL *url.URL

	// Data is the decoded body. For object responses it is a
	// jsondata.Object; for array responses a []any.
	Data any
}

// Object returns the body as a jsondata.Object, or nil for non-object
// bodies.
func (r *Response) Object() jsondata.Object {
	obj, _ := jsondata.AsObject(r.Data)
	return obj
}

// Get looks up a key on an object response, applying the extended
// tweet text promotion rules from jsondata. Returns nil for non-object
// bodies and absent keys.
func (r *Response) Get(key string) any {
	obj, ok := jsondata.AsObject(r.Data)
	if !ok {
		return nil
	}
	return obj.Get(key)
}

// Has reports whether key resolves on an object response.
func (r *Response) Has(key string) bool {
	obj, ok := jsondata.AsObject(r.Data)
	if !ok {
		return false
	}
	return obj.Has(key)
}

// String returns the value at key as a string, or "".
func (r *Response) String(key string) string {
	obj, ok := jsondata.AsObject(r.Data)
	if !ok {
		return ""
	}
	return obj.String(key)
}

// Int64 returns the value at key as an int64, or 0. Snowflake ids
// survive the round trip intact because bodies decode with
// json.Number.
func (r *Response) Int64(key string) int64 {
	obj, ok := jsondata.AsObject(r.Data)
	if !ok {
		return 0
	}
	return obj.Int64(key)
}

// Items returns the response body as a list. With an empty key, array
// bodies return their elements directly; otherwise object bodies
// return the list under key (e.g. "ids", "users", "statuses").
func (r *Response) Items(key string) []any {
	if key == "" {
		items, _ := r.Data.([]any)
		return items
	}
	obj, ok := jsondata.AsObject(r.Data)
	if !ok {
		return nil
	}
	return obj.Slice(key)
}

// RateLimit returns the rate limit state reported by this response's
// headers, if present.
func (r *Response) RateLimit() (resilience.Limit, bool) {
	return resilience.ParseLimit(
		r.Headers.Get(resilience.HeaderLimitRemaining),
		r.Headers.Get(resilience.HeaderLimitReset),
	)
}
