package consumer

import (
	"log/slog"

	"github.com/peerbus/peerbus-go/pkg/wire"
)

// DiscardReason explains why the Filter dropped a message.
type DiscardReason uint8

const (
	// DiscardNone means the message is eligible for translation.
	DiscardNone DiscardReason = iota

	// DiscardSelf means the message was sent by an ignored (local) address.
	DiscardSelf

	// DiscardNetwork means the message belongs to another network.
	DiscardNetwork
)

// String returns the reason label used in logs and metrics.
func (r DiscardReason) String() string {
	switch r {
	case DiscardNone:
		return "none"
	case DiscardSelf:
		return "self"
	case DiscardNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Filter decides whether an inbound message is relevant to this consumer.
// It is immutable after construction.
type Filter struct {
	ignored wire.AddressSet
	network string
	logger  *slog.Logger
}

// NewFilter creates a Filter. The address list is copied. A nil logger
// disables discard logging.
func NewFilter(network string, ignored []wire.URI, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Filter{
		ignored: wire.NewAddressSet(ignored...),
		network: network,
		logger:  logger,
	}
}

// Network returns the local network identifier.
func (f *Filter) Network() string {
	return f.network
}

// IgnoredAddresses returns a copy of the ignored source addresses in
// normalized form.
func (f *Filter) IgnoredAddresses() []wire.URI {
	return f.ignored.Slice()
}

// ShouldDiscard reports whether env must be dropped.
func (f *Filter) ShouldDiscard(env *wire.Envelope) bool {
	return f.Check(env) != DiscardNone
}

// Check returns the reason env must be dropped, or DiscardNone. The ignored
// address check runs before the network check. Discards are logged at debug
// level.
func (f *Filter) Check(env *wire.Envelope) DiscardReason {
	if f.ignored.Contains(env.SourceAddress) {
		f.logger.Debug("ignoring subscription message from own bus address",
			"kind", env.Kind().String(),
			"source", env.SourceAddress.String(),
		)
		return DiscardSelf
	}

	if env.Network != f.network {
		f.logger.Debug("ignoring subscription message from another network",
			"kind", env.Kind().String(),
			"source", env.SourceAddress.String(),
			"network", env.Network,
			"local_network", f.network,
		)
		return DiscardNetwork
	}

	return DiscardNone
}
