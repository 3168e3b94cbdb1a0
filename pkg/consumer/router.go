package consumer

import (
	"fmt"

	"github.com/peerbus/peerbus-go/pkg/coordinator"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

// payloadAs returns msg as T. Both T and a non-nil *T are accepted.
func payloadAs[T wire.Message](msg wire.Message) (T, error) {
	switch m := any(msg).(type) {
	case T:
		return m, nil
	case *T:
		if m != nil {
			return *m, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s carries %T", ErrPayloadMismatch, zero.Kind(), msg)
}

func (c *Consumer) translateAddSubscription(msg wire.Message) ([]coordinator.Command, error) {
	m, err := payloadAs[wire.AddSubscription](msg)
	if err != nil {
		return nil, err
	}
	return []coordinator.Command{addPeerSubscription(m.Subscription)}, nil
}

func (c *Consumer) translateRemoveSubscription(msg wire.Message) ([]coordinator.Command, error) {
	m, err := payloadAs[wire.RemoveSubscription](msg)
	if err != nil {
		return nil, err
	}
	return []coordinator.Command{removePeerSubscription(m.Subscription)}, nil
}

func (c *Consumer) translateAddSubscriptionClient(msg wire.Message) ([]coordinator.Command, error) {
	m, err := payloadAs[wire.AddSubscriptionClient](msg)
	if err != nil {
		return nil, err
	}
	return []coordinator.Command{coordinator.AddPeerMessage{
		PeerID:    m.CorrelationID,
		PeerURI:   m.ControlURI,
		Timestamp: c.clock.Now().UTC(),
	}}, nil
}

func (c *Consumer) translateRemoveSubscriptionClient(msg wire.Message) ([]coordinator.Command, error) {
	m, err := payloadAs[wire.RemoveSubscriptionClient](msg)
	if err != nil {
		return nil, err
	}
	return []coordinator.Command{coordinator.RemovePeerMessage{
		PeerID:    m.CorrelationID,
		PeerURI:   m.ControlURI,
		Timestamp: c.clock.Now().UTC(),
	}}, nil
}

// translateSubscriptionRefresh emits one ADD_PEER_SUBSCRIPTION per entry in
// list order. Entries are trusted even when the sender is not the
// subscribing peer.
func (c *Consumer) translateSubscriptionRefresh(msg wire.Message) ([]coordinator.Command, error) {
	m, err := payloadAs[wire.SubscriptionRefresh](msg)
	if err != nil {
		return nil, err
	}
	commands := make([]coordinator.Command, 0, len(m.Subscriptions))
	for _, s := range m.Subscriptions {
		commands = append(commands, addPeerSubscription(s))
	}
	return commands, nil
}

func addPeerSubscription(s wire.SubscriptionInfo) coordinator.AddPeerSubscriptionMessage {
	return coordinator.AddPeerSubscriptionMessage{
		PeerID:         s.ClientID,
		EndpointURI:    s.EndpointURI,
		MessageName:    s.MessageName,
		MessageNumber:  s.SequenceNumber,
		SubscriptionID: s.SubscriptionID,
	}
}

func removePeerSubscription(s wire.SubscriptionInfo) coordinator.RemovePeerSubscriptionMessage {
	return coordinator.RemovePeerSubscriptionMessage{
		PeerID:         s.ClientID,
		EndpointURI:    s.EndpointURI,
		MessageName:    s.MessageName,
		MessageNumber:  s.SequenceNumber,
		SubscriptionID: s.SubscriptionID,
	}
}
