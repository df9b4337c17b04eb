// Package stream reads newline-delimited JSON messages from a
// long-lived HTTP response body.
//
// A Stream is opened with a connect function and consumed one message
// at a time:
//
//	s, err := stream.Open(ctx, connect, stream.Options{})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	for {
//		msg, err := s.Next(ctx)
//		if err != nil {
//			return err
//		}
//		handle(msg)
//	}
//
// Blank keep-alive lines are skipped transparently. When no data at
// all arrives within the keep-alive window the connection is
// considered dead and, unless reconnection is disabled, the stream
// reconnects with exponential backoff and resumes delivering messages
// as if nothing happened. Errors that indicate the server is turning
// the client away (rate-limit notices, authorization failures) are
// terminal and end the stream.
//
// Next must be called from a single goroutine; Close may be called
// from any goroutine and unblocks a pending Next.
package stream
