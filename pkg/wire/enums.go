package wire

import (
	"fmt"
	"strings"
)

// MessageKind identifies the payload type carried by an Envelope.
type MessageKind uint8

const (
	// KindUnknown is the zero value and never valid on the wire.
	KindUnknown MessageKind = 0

	// KindAddSubscription announces a new peer subscription.
	KindAddSubscription MessageKind = 1

	// KindRemoveSubscription withdraws a peer subscription.
	KindRemoveSubscription MessageKind = 2

	// KindAddSubscriptionClient announces a peer control endpoint.
	KindAddSubscriptionClient MessageKind = 3

	// KindRemoveSubscriptionClient withdraws a peer control endpoint.
	KindRemoveSubscriptionClient MessageKind = 4

	// KindSubscriptionRefresh carries a batch of a peer's subscriptions.
	KindSubscriptionRefresh MessageKind = 5
)

// AllKinds lists every valid message kind in wire order.
var AllKinds = []MessageKind{
	KindAddSubscription,
	KindRemoveSubscription,
	KindAddSubscriptionClient,
	KindRemoveSubscriptionClient,
	KindSubscriptionRefresh,
}

// String returns the kind name.
func (k MessageKind) String() string {
	switch k {
	case KindAddSubscription:
		return "ADD_SUBSCRIPTION"
	case KindRemoveSubscription:
		return "REMOVE_SUBSCRIPTION"
	case KindAddSubscriptionClient:
		return "ADD_SUBSCRIPTION_CLIENT"
	case KindRemoveSubscriptionClient:
		return "REMOVE_SUBSCRIPTION_CLIENT"
	case KindSubscriptionRefresh:
		return "SUBSCRIPTION_REFRESH"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the kind is one of the five known kinds.
func (k MessageKind) IsValid() bool {
	return k >= KindAddSubscription && k <= KindSubscriptionRefresh
}

// ParseMessageKind parses a kind name case-insensitively. Both
// "ADD_SUBSCRIPTION" and "add-subscription" are accepted.
func ParseMessageKind(s string) (MessageKind, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, k := range AllKinds {
		if k.String() == norm {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
