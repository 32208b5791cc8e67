// Package server implements the single-threaded cooperative receive loop:
// decode, simulate loss, dispatch to the Bank, dedup, and fan out monitor
// callbacks, all from one goroutine.
package server

import (
	"context"
	"math/rand"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/banklab/udpbank/internal/bank"
	"github.com/banklab/udpbank/internal/dedup"
	"github.com/banklab/udpbank/internal/monitor"
	"github.com/banklab/udpbank/internal/protocol"
	"github.com/banklab/udpbank/logging"
)

// pollInterval bounds how long a single ReadFromUDP blocks before the loop
// re-checks ctx.Done(), so Run can be cancelled promptly even though UDP
// sockets have no native cancellation.
const pollInterval = 250 * time.Millisecond

// maxDatagramSize is larger than any message this protocol defines; it
// just needs to be big enough that a legitimate datagram never truncates.
const maxDatagramSize = 65536

// Server owns the UDP socket, the account store, and the two in-memory
// registries (dedup, monitor) that make at-most-once and pub/sub work.
type Server struct {
	conn     *net.UDPConn
	bank     bank.Bank
	dedup    *dedup.Cache
	monitors *monitor.Registry
	lossReq  float64
	lossRep  float64
	log      logging.Func
	metrics  *Metrics
	rng      *rand.Rand
}

// New creates a Server bound to conn, dispatching onto b.
func New(conn *net.UDPConn, b bank.Bank, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Server{
		conn:     conn,
		bank:     b,
		dedup:    dedup.New(o.DedupTTL),
		monitors: monitor.New(),
		lossReq:  o.LossReq,
		lossRep:  o.LossRep,
		log:      o.LogFunc,
		metrics:  o.Metrics,
		rng:      rand.New(rand.NewSource(o.Seed)),
	}
}

// Run executes the receive loop until ctx is cancelled or the socket fails.
func (s *Server) Run(ctx context.Context) error {
	buf := make([]byte, maxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := time.Now()
		s.dedup.Prune(now)
		s.monitors.Prune(now.UnixNano())

		if err := s.conn.SetReadDeadline(now.Add(pollInterval)); err != nil {
			return errors.Wrap(err, "set read deadline")
		}

		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log(logging.Warn, "recv: %v", err)
			continue
		}

		s.handle(addr, buf[:n], now)
	}
}

// handle processes exactly one received datagram.
func (s *Server) handle(addr *net.UDPAddr, datagram []byte, now time.Time) {
	clientEndpoint := addr.String()

	if s.rng.Float64() < s.lossReq {
		s.log(logging.Debug, "DROP request from %s", clientEndpoint)
		s.metrics.drop("request")
		return
	}

	req := &protocol.Message{}
	if err := req.Decode(datagram); err != nil {
		s.log(logging.Warn, "bad request from %s: %v", clientEndpoint, err)
		return
	}
	if req.Version() != protocol.Version || req.MsgType() != protocol.Request {
		s.log(logging.Warn, "bad request from %s: wrong version or message type", clientEndpoint)
		return
	}

	s.metrics.request(protocol.OpName(req.OpCode()))

	atMostOnce := req.Flags()&protocol.FlagAtMostOnce != 0
	dedupKey := dedup.Key(clientEndpoint, req.RequestID())

	if atMostOnce {
		if cached, ok := s.dedup.Lookup(dedupKey); ok {
			s.metrics.dedupHit()
			if s.rng.Float64() < s.lossRep {
				s.log(logging.Debug, "DROP reply (replay) to %s", clientEndpoint)
				s.metrics.drop("reply")
				return
			}
			s.send(addr, cached)
			return
		}
	}

	reply, events := s.dispatch(req, clientEndpoint, now)
	replyBytes := reply.Encode()

	if atMostOnce {
		s.dedup.Store(dedupKey, replyBytes)
	}

	if s.rng.Float64() < s.lossRep {
		s.log(logging.Debug, "DROP reply to %s", clientEndpoint)
		s.metrics.drop("reply")
	} else {
		s.send(addr, replyBytes)
	}

	s.fanOut(events)
}

func (s *Server) send(addr *net.UDPAddr, b []byte) {
	if _, err := s.conn.WriteToUDP(b, addr); err != nil {
		s.log(logging.Warn, "send to %s: %v", addr, err)
	}
}

// fanOut delivers one Callback datagram per surviving monitor for each
// event, in registration order. Callbacks are never subject
// to the reply-loss simulation and never cached.
func (s *Server) fanOut(events []callbackEvent) {
	if len(events) == 0 {
		return
	}

	subscribers := s.monitors.Live()
	if len(subscribers) == 0 {
		return
	}

	for _, ev := range events {
		cb, err := protocol.EncodeCallbackUpdate(protocol.CallbackUpdate{
			UpdateType: ev.UpdateType,
			AccountNo:  ev.AccountNo,
			Currency:   ev.Currency,
			NewBalance: ev.NewBalance,
			Info:       ev.Info,
		})
		if err != nil {
			s.log(logging.Warn, "encode callback: %v", err)
			continue
		}
		payload := cb.Encode()

		for _, sub := range subscribers {
			addr, err := net.ResolveUDPAddr("udp", sub.ClientEndpoint)
			if err != nil {
				s.log(logging.Warn, "resolve monitor endpoint %s: %v", sub.ClientEndpoint, err)
				continue
			}
			s.send(addr, payload)
			s.metrics.callback()
		}
	}
}
