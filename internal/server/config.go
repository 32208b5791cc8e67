package server

import (
	"time"

	"github.com/banklab/udpbank/internal/dedup"
	"github.com/banklab/udpbank/logging"
)

// Option tweaks Server parameters, the same functional-options shape the
// teacher uses for app.Option and client.Option.
type Option func(*options)

type options struct {
	LossReq  float64
	LossRep  float64
	DedupTTL time.Duration
	LogFunc  logging.Func
	Metrics  *Metrics
	Seed     int64
}

// WithLossReq sets the probability, in [0,1), that an inbound request is
// dropped before being processed.
func WithLossReq(p float64) Option {
	return func(o *options) { o.LossReq = p }
}

// WithLossRep sets the probability, in [0,1), that a reply (cached or
// freshly computed) is dropped before being sent.
func WithLossRep(p float64) Option {
	return func(o *options) { o.LossRep = p }
}

// WithDedupTTL overrides the dedup cache window (default
// dedup.DefaultTTL).
func WithDedupTTL(ttl time.Duration) Option {
	return func(o *options) { o.DedupTTL = ttl }
}

// WithLogFunc sets a custom log function.
func WithLogFunc(log logging.Func) Option {
	return func(o *options) { o.LogFunc = log }
}

// WithMetrics wires a Metrics recorder (see metrics.go).
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.Metrics = m }
}

// WithSeed fixes the loss-simulation PRNG seed, for reproducible tests.
func WithSeed(seed int64) Option {
	return func(o *options) { o.Seed = seed }
}

func defaultOptions() *options {
	return &options{
		LossReq:  0,
		LossRep:  0,
		DedupTTL: dedup.DefaultTTL,
		LogFunc:  logging.Discard,
		Seed:     1,
	}
}
