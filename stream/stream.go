package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/kbukum/tweetkit/jsondata"
)

// Stream errors.
var (
	// ErrClosed is returned by Next after Close.
	ErrClosed = errors.New("stream: closed")
	// ErrDisconnected wraps the underlying failure when the connection
	// drops and reconnection is disabled.
	ErrDisconnected = errors.New("stream: disconnected")
	// ErrLimitNotice is returned when the server sends a rate-limit
	// notice over the stream. The stream is dead afterwards.
	ErrLimitNotice = errors.New("stream: rate limit notice received")
)

// limitNotices are plain-text lines the server pushes over the stream
// instead of JSON when the connection is being rate limited.
var limitNotices = [][]byte{
	[]byte("Exceeded connection limit for user"),
	[]byte("Easy there, Turbo. Too many requests recently. Enhance your calm."),
}

// ConnectFunc opens (or reopens) the underlying streaming connection
// and returns its body.
type ConnectFunc func(ctx context.Context) (io.ReadCloser, error)

// Options configure a Stream.
type Options struct {
	// Decode converts one stream line into a message. Defaults to
	// jsondata.Decode.
	Decode jsondata.DecodeFunc
	// KeepAlive is the longest the stream may go without receiving any
	// data, including blank keep-alive lines. Defaults to 90 seconds.
	KeepAlive time.Duration
	// Reconnect enables transparent reconnection on connection loss.
	Reconnect bool
	// Terminal reports errors that must end the stream instead of
	// triggering a reconnect. Connect errors are always checked
	// against it.
	Terminal func(error) bool
	// Logger receives reconnection events.
	Logger zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Decode == nil {
		o.Decode = jsondata.Decode
	}
	if o.KeepAlive == 0 {
		o.KeepAlive = 90 * time.Second
	}
	return o
}

// Stream is a long-lived message stream. Next must be called from one
// goroutine at a time.
type Stream struct {
	connect ConnectFunc
	opts    Options
	backoff *backoff.ExponentialBackOff

	mu     sync.Mutex
	conn   io.ReadCloser
	closed bool
	// timedOut marks that the watchdog, not the caller, closed conn.
	timedOut bool

	reader *bufio.Reader
	// err is the terminal error; Next keeps returning it.
	err error
	// reconnects counts successful reconnections.
	reconnects int
}

// Open connects and returns a Stream. The first connection attempt is
// not retried; its error returns directly.
func Open(ctx context.Context, connect ConnectFunc, opts Options) (*Stream, error) {
	opts = opts.withDefaults()

	s := &Stream{
		connect: connect,
		opts:    opts,
		backoff: backoff.NewExponentialBackOff(),
	}

	conn, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	s.setConn(conn)
	return s, nil
}

// Next returns the next decoded message. Keep-alive lines are skipped
// and, when reconnection is enabled, connection drops are healed
// transparently. A nil error always carries a message.
func (s *Stream) Next(ctx context.Context) (any, error) {
	if err := s.terminalErr(); err != nil {
		return nil, err
	}

	for {
		line, err := s.readLine(ctx)
		if err != nil {
			if s.isTerminal(ctx, err) {
				return nil, s.fail(err)
			}
			if err := s.reconnect(ctx); err != nil {
				return nil, s.fail(err)
			}
			continue
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			// keep-alive
			continue
		}
		if notice := matchLimitNotice(line); notice != "" {
			return nil, s.fail(fmt.Errorf("%w: %s", ErrLimitNotice, notice))
		}

		msg, err := s.opts.Decode(line)
		if err != nil {
			return nil, s.fail(fmt.Errorf("stream: decode message: %w", err))
		}
		return msg, nil
	}
}

// Close shuts the stream down and unblocks a pending Next.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Reconnects returns how many times the stream has reconnected.
func (s *Stream) Reconnects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

// readLine reads one line, guarded by the keep-alive watchdog and the
// caller's context. Both unblock a stuck read by closing the
// connection.
func (s *Stream) readLine(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	conn := s.conn
	reader := s.reader
	s.timedOut = false
	s.mu.Unlock()

	watchdog := time.AfterFunc(s.opts.KeepAlive, func() {
		s.mu.Lock()
		s.timedOut = true
		s.mu.Unlock()
		conn.Close()
	})
	defer watchdog.Stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	line, err := reader.ReadBytes('\n')
	if err == nil {
		return line, nil
	}
	if err == io.EOF && len(line) > 0 {
		// final unterminated line
		return line, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.mu.Lock()
	closed, timedOut := s.closed, s.timedOut
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if timedOut {
		return nil, fmt.Errorf("%w: no data for %s", ErrDisconnected, s.opts.KeepAlive)
	}
	return nil, fmt.Errorf("%w: %v", ErrDisconnected, err)
}

// reconnect reopens the connection with exponential backoff. It keeps
// trying until a connection is established, a terminal error occurs or
// the context ends.
func (s *Stream) reconnect(ctx context.Context) error {
	for {
		wait := s.backoff.NextBackOff()
		s.opts.Logger.Debug().Dur("backoff", wait).Msg("stream reconnecting")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		conn, err := s.connect(ctx)
		if err != nil {
			if s.isTerminal(ctx, err) {
				return err
			}
			s.opts.Logger.Warn().Err(err).Msg("stream reconnect failed")
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return ErrClosed
		}
		s.conn = conn
		s.reader = bufio.NewReader(conn)
		s.reconnects++
		s.mu.Unlock()

		s.backoff.Reset()
		s.opts.Logger.Info().Msg("stream reconnected")
		return nil
	}
}

// isTerminal reports whether err must end the stream.
func (s *Stream) isTerminal(ctx context.Context, err error) bool {
	switch {
	case errors.Is(err, ErrClosed),
		errors.Is(err, ErrLimitNotice),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	case ctx.Err() != nil:
		return true
	case !s.opts.Reconnect && errors.Is(err, ErrDisconnected):
		return true
	}
	return s.opts.Terminal != nil && s.opts.Terminal(err)
}

// fail records a terminal error and closes the connection.
func (s *Stream) fail(err error) error {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	if !s.closed {
		s.closed = true
		if s.conn != nil {
			s.conn.Close()
		}
	}
	err = s.err
	s.mu.Unlock()
	return err
}

func (s *Stream) terminalErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Stream) setConn(conn io.ReadCloser) {
	s.mu.Lock()
	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.mu.Unlock()
}

// matchLimitNotice returns the notice text when line is one of the
// known plain-text rate-limit notices.
func matchLimitNotice(line []byte) string {
	for _, notice := range limitNotices {
		if bytes.HasPrefix(line, notice) {
			return string(notice)
		}
	}
	return ""
}
