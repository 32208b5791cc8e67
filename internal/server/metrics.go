package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the server's Prometheus counters: requests seen, drops by
// the loss simulator, dedup cache hits, and callbacks fanned out. None of
// this is on the request-handling critical path — a Server with a nil
// *Metrics just skips recording.
type Metrics struct {
	requestsTotal  *prometheus.CounterVec
	dropsTotal     *prometheus.CounterVec
	dedupHitsTotal prometheus.Counter
	callbacksTotal prometheus.Counter
}

// NewMetrics creates and registers the counters against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "udpbank",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Requests received, by op code.",
		}, []string{"op"}),
		dropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "udpbank",
			Subsystem: "server",
			Name:      "drops_total",
			Help:      "Datagrams dropped by the loss simulator, by stage (request, reply).",
		}, []string{"stage"}),
		dedupHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "udpbank",
			Subsystem: "server",
			Name:      "dedup_hits_total",
			Help:      "Requests answered from the dedup cache instead of re-executed.",
		}),
		callbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "udpbank",
			Subsystem: "server",
			Name:      "callbacks_sent_total",
			Help:      "Callback datagrams sent to monitor subscribers.",
		}),
	}

	reg.MustRegister(m.requestsTotal, m.dropsTotal, m.dedupHitsTotal, m.callbacksTotal)

	return m
}

func (m *Metrics) request(op string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) drop(stage string) {
	if m == nil {
		return
	}
	m.dropsTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) dedupHit() {
	if m == nil {
		return
	}
	m.dedupHitsTotal.Inc()
}

func (m *Metrics) callback() {
	if m == nil {
		return
	}
	m.callbacksTotal.Inc()
}
