package iterate

import (
	"context"
	"io"
	"time"

	"github.com/kbukum/tweetkit/client"
	"github.com/kbukum/tweetkit/jsondata"
	"github.com/kbukum/tweetkit/resilience"
)

// DefaultPollInterval is the pause between SinceID polls.
const DefaultPollInterval = 10 * time.Second

// Iterator yields one page per Next. io.EOF signals the end of the
// result set.
type Iterator struct {
	next func(ctx context.Context) (*client.Response, error)

	// sleep pauses between SinceID polls; tests substitute a
	// simulated clock.
	sleep func(ctx context.Context, d time.Duration) error
}

// Next returns the next page, or io.EOF once the result set is
// exhausted. An Iterator is not safe for concurrent use.
func (it *Iterator) Next(ctx context.Context) (*client.Response, error) {
	return it.next(ctx)
}

// Cursor pages through a cursored endpoint. The cursor starts from
// params["cursor"], or -1 (first page) when absent, and follows each
// response's next_cursor until the API reports 0.
func Cursor(call client.Call, params client.Params, opts ...client.CallOption) *Iterator {
	params = cloneParams(params)
	if _, ok := params["cursor"]; !ok {
		params["cursor"] = -1
	}
	done := false

	it := &Iterator{}
	it.next = func(ctx context.Context) (*client.Response, error) {
		if done {
			return nil, io.EOF
		}
		resp, err := call(ctx, params, opts...)
		if err != nil {
			return nil, err
		}
		next := resp.Int64("next_cursor")
		if next == 0 {
			done = true
		} else {
			params["cursor"] = next
		}
		return resp, nil
	}
	return it
}

// MaxID walks a timeline backwards. After each page the max_id param
// moves to one below the smallest id seen, so pages never overlap. The
// first empty page ends the iteration.
func MaxID(call client.Call, params client.Params, opts ...client.CallOption) *Iterator {
	params = cloneParams(params)
	done := false

	it := &Iterator{}
	it.next = func(ctx context.Context) (*client.Response, error) {
		if done {
			return nil, io.EOF
		}
		resp, err := call(ctx, params, opts...)
		if err != nil {
			return nil, err
		}
		min, ok := minID(resp)
		if !ok {
			done = true
			return nil, io.EOF
		}
		params["max_id"] = min - 1
		return resp, nil
	}
	return it
}

// SinceID polls a timeline forwards. Each poll asks for everything
// newer than the largest id seen so far; empty polls are skipped and
// the iterator sleeps between polls. It never returns io.EOF.
func SinceID(call client.Call, params client.Params, interval time.Duration, opts ...client.CallOption) *Iterator {
	params = cloneParams(params)
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	first := true

	it := &Iterator{sleep: resilience.Sleep}
	it.next = func(ctx context.Context) (*client.Response, error) {
		for {
			if !first {
				if err := it.sleep(ctx, interval); err != nil {
					return nil, err
				}
			}
			first = false

			resp, err := call(ctx, params, opts...)
			if err != nil {
				return nil, err
			}
			max, ok := maxID(resp)
			if !ok {
				continue
			}
			params["since_id"] = max
			return resp, nil
		}
	}
	return it
}

// items extracts the page's entries: array bodies directly, otherwise
// the statuses or ids list of an object body.
func items(resp *client.Response) []any {
	if list := resp.Items(""); list != nil {
		return list
	}
	if obj := resp.Object(); obj != nil {
		if list := obj.Slice("statuses"); list != nil {
			return list
		}
		if list := obj.Slice("ids"); list != nil {
			return list
		}
	}
	return nil
}

// idOf extracts an entry's id: the id field of an object entry, or the
// entry itself for bare id lists.
func idOf(item any) (int64, bool) {
	if obj, ok := jsondata.AsObject(item); ok {
		if !obj.Has("id") {
			return 0, false
		}
		return obj.Int64("id"), true
	}
	id, err := jsondata.Int64(item)
	if err != nil {
		return 0, false
	}
	return id, true
}

func minID(resp *client.Response) (int64, bool) {
	return foldIDs(resp, func(a, b int64) bool { return b < a })
}

func maxID(resp *client.Response) (int64, bool) {
	return foldIDs(resp, func(a, b int64) bool { return b > a })
}

func foldIDs(resp *client.Response, better func(current, candidate int64) bool) (int64, bool) {
	var best int64
	found := false
	for _, item := range items(resp) {
		id, ok := idOf(item)
		if !ok {
			continue
		}
		if !found || better(best, id) {
			best = id
			found = true
		}
	}
	return best, found
}

func cloneParams(params client.Params) client.Params {
	out := make(client.Params, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	return out
}
