package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/peerbus/peerbus-go/pkg/coordinator"
	"github.com/peerbus/peerbus-go/pkg/log"
	"github.com/peerbus/peerbus-go/pkg/metrics"
	"github.com/peerbus/peerbus-go/pkg/transport"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

// Consumer errors.
var (
	ErrNoCoordinator      = errors.New("coordinator is required")
	ErrNilEnvelope        = errors.New("envelope is nil")
	ErrUnknownMessageKind = errors.New("no handler for message kind")
	ErrPayloadMismatch    = errors.New("payload does not match message kind")
)

// Config is the immutable filter configuration of a Consumer.
type Config struct {
	// Network is the local network identifier. Messages tagged with any
	// other network are dropped. Comparison is exact.
	Network string

	// IgnoredSourceAddresses lists the local bus addresses. Messages sent
	// from one of them are echoes and are dropped.
	IgnoredSourceAddresses []wire.URI
}

// Option configures optional Consumer dependencies.
type Option func(*Consumer)

// WithLogger sets the operational logger. Discards are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the clock used to timestamp peer announcements.
func WithClock(clk clock.Clock) Option {
	return func(c *Consumer) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Consumer) {
		c.metrics = m
	}
}

// WithProtocolLogger records discards and emitted commands as protocol
// events.
func WithProtocolLogger(l log.Logger) Option {
	return func(c *Consumer) {
		c.protocolLogger = l
	}
}

// translateFunc maps one inbound message to the commands it produces.
type translateFunc func(msg wire.Message) ([]coordinator.Command, error)

// Consumer filters inbound envelopes and forwards the translated commands to
// a Coordinator.
type Consumer struct {
	coord          coordinator.Coordinator
	filter         *Filter
	handlers       map[wire.MessageKind]translateFunc
	logger         *slog.Logger
	clock          clock.Clock
	metrics        *metrics.Collector
	protocolLogger log.Logger
}

// New creates a Consumer that sends commands to coord.
func New(coord coordinator.Coordinator, cfg Config, opts ...Option) (*Consumer, error) {
	if coord == nil {
		return nil, ErrNoCoordinator
	}

	c := &Consumer{
		coord:  coord,
		logger: slog.New(slog.DiscardHandler),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.filter = NewFilter(cfg.Network, cfg.IgnoredSourceAddresses, c.logger)
	c.handlers = map[wire.MessageKind]translateFunc{
		wire.KindAddSubscription:          c.translateAddSubscription,
		wire.KindRemoveSubscription:       c.translateRemoveSubscription,
		wire.KindAddSubscriptionClient:    c.translateAddSubscriptionClient,
		wire.KindRemoveSubscriptionClient: c.translateRemoveSubscriptionClient,
		wire.KindSubscriptionRefresh:      c.translateSubscriptionRefresh,
	}
	return c, nil
}

// Filter returns the consumer's filter.
func (c *Consumer) Filter() *Filter {
	return c.filter
}

// Handle filters env and sends the resulting commands in order.
//
// A discarded envelope returns nil. A coordinator error is returned wrapped
// with the command kind, and no further commands from env are sent.
func (c *Consumer) Handle(ctx context.Context, env *wire.Envelope) error {
	if env == nil {
		return ErrNilEnvelope
	}
	kind := env.Kind()
	c.metrics.MessageReceived(kind)

	if reason := c.filter.Check(env); reason != DiscardNone {
		c.metrics.MessageDiscarded(kind, reason)
		c.logDiscard(env, reason)
		return nil
	}

	translate, ok := c.handlers[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessageKind, kind)
	}

	commands, err := translate(env.Message)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := c.coord.Send(ctx, cmd); err != nil {
			c.metrics.CommandFailed(cmd.Kind())
			return fmt.Errorf("send %s: %w", cmd.Kind(), err)
		}
		c.metrics.CommandForwarded(cmd.Kind())
		c.logCommand(env, cmd)
	}
	return nil
}

func (c *Consumer) logDiscard(env *wire.Envelope, reason DiscardReason) {
	if c.protocolLogger == nil {
		return
	}
	c.protocolLogger.Log(log.Event{
		Timestamp: c.clock.Now(),
		Direction: log.DirectionIn,
		Layer:     log.LayerConsumer,
		Category:  log.CategoryDiscard,
		Network:   env.Network,
		Discard: &log.DiscardEvent{
			Kind:          env.Kind(),
			Reason:        reason.String(),
			SourceAddress: env.SourceAddress.String(),
		},
	})
}

func (c *Consumer) logCommand(env *wire.Envelope, cmd coordinator.Command) {
	if c.protocolLogger == nil {
		return
	}
	event := &log.CommandEvent{
		Command: cmd.Kind().String(),
		PeerID:  cmd.Peer().String(),
		Source:  env.Kind(),
	}
	switch m := cmd.(type) {
	case coordinator.AddPeerSubscriptionMessage:
		event.MessageName = m.MessageName
	case coordinator.RemovePeerSubscriptionMessage:
		event.MessageName = m.MessageName
	}
	c.protocolLogger.Log(log.Event{
		Timestamp: c.clock.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerConsumer,
		Category:  log.CategoryCommand,
		Network:   env.Network,
		Command:   event,
	})
}

var _ transport.Handler = (*Consumer)(nil)
