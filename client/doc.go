// Package client implements the API client: request construction from
// endpoint descriptors, single-shot execution with retry and
// rate-limit-aware error handling, and entry into streaming
// connections.
//
// A request is described by chaining endpoint segments and executed
// with one of the verb methods:
//
//	c, _ := client.New(client.Config{Signer: signer})
//	home := c.API().Child("statuses").Child("home_timeline")
//	resp, err := c.Get(ctx, home, client.Params{"count": 200})
//
// Building a request performs no I/O; per-call behavior (retries,
// timeouts, extra headers, stream reconnection) is controlled through
// CallOption values, which are consumed by the client and never
// transmitted to the remote endpoint.
//
// Streaming endpoints are entered with Stream, which returns a
// stream.Stream that must be closed by the caller:
//
//	st, err := c.Stream(ctx, http.MethodPost,
//	    c.Endpoint("stream").Child("statuses").Child("filter"),
//	    client.Params{"track": "golang"})
//	if err != nil { ... }
//	defer st.Close()
//	for {
//	    v, err := st.Next(ctx)
//	    ...
//	}
package client
