package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "peerbus"
const subsystem = "consumer"

// Collector groups the consumer's Prometheus collectors.
type Collector struct {
	received     *prometheus.CounterVec
	discarded    *prometheus.CounterVec
	forwarded    *prometheus.CounterVec
	failures     *prometheus.CounterVec
	decodeErrors prometheus.Counter
	connections  prometheus.Gauge
}

// New creates a Collector and registers it with reg. A nil reg creates
// unregistered collectors, which is convenient in tests.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_received_total",
			Help:      "Inbound subscription messages by kind, before filtering.",
		}, []string{"kind"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_discarded_total",
			Help:      "Inbound messages dropped by the filter.",
		}, []string{"kind", "reason"}),
		forwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_forwarded_total",
			Help:      "Commands accepted by the coordinator.",
		}, []string{"command"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "command_failures_total",
			Help:      "Commands the coordinator rejected.",
		}, []string{"command"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "decode_errors_total",
			Help:      "Frames that could not be decoded into an envelope.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connections_active",
			Help:      "Open inbound connections.",
		}),
	}

	if reg != nil {
		for _, col := range c.collectors() {
			if err := reg.Register(col); err != nil {
				return nil, fmt.Errorf("failed to register metrics: %w", err)
			}
		}
	}
	return c, nil
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.received, c.discarded, c.forwarded, c.failures, c.decodeErrors, c.connections,
	}
}

// MessageReceived counts an inbound message of the given kind.
func (c *Collector) MessageReceived(kind fmt.Stringer) {
	if c == nil {
		return
	}
	c.received.WithLabelValues(kind.String()).Inc()
}

// MessageDiscarded counts a filtered-out message.
func (c *Collector) MessageDiscarded(kind, reason fmt.Stringer) {
	if c == nil {
		return
	}
	c.discarded.WithLabelValues(kind.String(), reason.String()).Inc()
}

// CommandForwarded counts a command accepted by the coordinator.
func (c *Collector) CommandForwarded(command fmt.Stringer) {
	if c == nil {
		return
	}
	c.forwarded.WithLabelValues(command.String()).Inc()
}

// CommandFailed counts a command the coordinator returned an error for.
func (c *Collector) CommandFailed(command fmt.Stringer) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(command.String()).Inc()
}

// DecodeFailed counts an undecodable frame.
func (c *Collector) DecodeFailed() {
	if c == nil {
		return
	}
	c.decodeErrors.Inc()
}

// ConnectionOpened increments the active connection gauge.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connections.Inc()
}

// ConnectionClosed decrements the active connection gauge.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connections.Dec()
}
