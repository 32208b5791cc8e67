// Package client implements the invoker: build a Request, send it, wait
// for the matching Reply, and retry on timeout. It reuses Rican7/retry
// for the attempt-counting loop.
package client

import (
	"net"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	"github.com/pkg/errors"

	"github.com/banklab/udpbank/internal/protocol"
	"github.com/banklab/udpbank/logging"
)

const maxDatagramSize = 65536

// Option tweaks Client parameters.
type Option func(*options)

type options struct {
	AtMostOnce bool
	Timeout    time.Duration
	Retry      uint
	LogFunc    logging.Func
}

// WithAtMostOnce selects the AT_MOST_ONCE invocation semantic: the
// server replays a cached reply instead of re-executing a
// request it has already seen. The default is at-least-once.
func WithAtMostOnce(enabled bool) Option {
	return func(o *options) { o.AtMostOnce = enabled }
}

// WithTimeout sets how long a single attempt waits for a reply before
// moving on to the next one.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.Timeout = d }
}

// WithRetry sets the total number of send attempts, attempt 1..n.
func WithRetry(n uint) Option {
	return func(o *options) { o.Retry = n }
}

// WithLogFunc sets a custom log function.
func WithLogFunc(log logging.Func) Option {
	return func(o *options) { o.LogFunc = log }
}

func defaultOptions() *options {
	return &options{
		AtMostOnce: false,
		Timeout:    500 * time.Millisecond,
		Retry:      3,
		LogFunc:    logging.Discard,
	}
}

// Client is a single-threaded invoker bound to one server endpoint and one
// UDP socket; requests from a single client are serialized by the
// client.
type Client struct {
	conn       *net.UDPConn
	atMostOnce bool
	timeout    time.Duration
	retry      uint
	log        logging.Func
}

// New dials serverAddr ("host:port") and returns a Client ready to invoke
// operations against it.
func New(serverAddr string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	addr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return nil, errors.Wrap(err, "resolve server address")
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, errors.Wrap(err, "dial server")
	}

	return &Client{
		conn:       conn,
		atMostOnce: o.AtMostOnce,
		timeout:    o.Timeout,
		retry:      o.Retry,
		log:        o.LogFunc,
	}, nil
}

// Close releases the client's socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// LocalAddr returns the socket's local address, the clientEndpoint a
// MONITOR_REGISTER call on this client will be identified by on the server.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// call generates a fresh requestId, sets the AT_MOST_ONCE flag from
// client configuration, retry up to c.retry attempts, filtering replies by
// msgType and requestId so stale replies and unsolicited callbacks sharing
// this socket never get mistaken for the answer to this call.
func (c *Client) call(build func(requestID uint64, flags uint16) (*protocol.Message, error)) (*protocol.Message, error) {
	requestID := nextRequestID()
	var flags uint16
	if c.atMostOnce {
		flags = protocol.FlagAtMostOnce
	}

	req, err := build(requestID, flags)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	payload := req.Encode()

	var reply *protocol.Message
	errTimeout := errors.New("attempt timed out")

	// strategy.Limit(n) only runs the action n-1 times against this
	// library version; our retry count is the total attempt count, so it
	// needs a +1.
	limit := c.retry + 1

	retryErr := retry.Retry(func(attempt uint) error {
		if _, err := c.conn.Write(payload); err != nil {
			return errors.Wrap(err, "send request")
		}

		deadline := time.Now().Add(c.timeout)
		buf := make([]byte, maxDatagramSize)

		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				c.log(logging.Debug, "attempt %d: timed out waiting for reply to request %d", attempt, requestID)
				return errTimeout
			}
			if err := c.conn.SetReadDeadline(deadline); err != nil {
				return errors.Wrap(err, "set read deadline")
			}

			n, err := c.conn.Read(buf)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					c.log(logging.Debug, "attempt %d: timed out waiting for reply to request %d", attempt, requestID)
					return errTimeout
				}
				return errors.Wrap(err, "read reply")
			}

			m := &protocol.Message{}
			if err := m.Decode(buf[:n]); err != nil {
				continue // malformed datagram, keep waiting out this attempt
			}
			if m.MsgType() != protocol.Reply || m.RequestID() != requestID {
				continue // stale reply or a callback sharing this socket
			}

			reply = m
			return nil
		}
	}, strategy.Limit(limit))

	if retryErr != nil {
		return nil, ErrCommunication
	}

	return reply, nil
}
