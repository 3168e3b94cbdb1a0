package wire

import (
	"github.com/google/uuid"
)

// PeerID identifies a peer (a subscription client) in the network.
type PeerID = uuid.UUID

// Message is implemented by the five inbound payload types.
type Message interface {
	Kind() MessageKind
}

// SubscriptionInfo describes one peer's interest in one message type at one
// endpoint.
//
// CBOR encoding:
//
//	{
//	  1: clientId,        // uuid (16-byte string)
//	  2: endpointUri,     // text
//	  3: messageName,     // text
//	  4: sequenceNumber,  // int
//	  5: subscriptionId   // uuid (16-byte string)
//	}
type SubscriptionInfo struct {
	ClientID       PeerID    `cbor:"1,keyasint"`
	EndpointURI    URI       `cbor:"2,keyasint"`
	MessageName    string    `cbor:"3,keyasint"`
	SequenceNumber int64     `cbor:"4,keyasint"`
	SubscriptionID uuid.UUID `cbor:"5,keyasint"`
}

// AddSubscription announces that a peer subscribed to a message type.
type AddSubscription struct {
	Subscription SubscriptionInfo `cbor:"1,keyasint"`
}

// Kind returns KindAddSubscription.
func (AddSubscription) Kind() MessageKind { return KindAddSubscription }

// RemoveSubscription announces that a peer unsubscribed from a message type.
type RemoveSubscription struct {
	Subscription SubscriptionInfo `cbor:"1,keyasint"`
}

// Kind returns KindRemoveSubscription.
func (RemoveSubscription) Kind() MessageKind { return KindRemoveSubscription }

// AddSubscriptionClient announces a peer's control endpoint.
// CorrelationID is the peer identifier.
type AddSubscriptionClient struct {
	CorrelationID PeerID `cbor:"1,keyasint"`
	ControlURI    URI    `cbor:"2,keyasint"`
}

// Kind returns KindAddSubscriptionClient.
func (AddSubscriptionClient) Kind() MessageKind { return KindAddSubscriptionClient }

// RemoveSubscriptionClient announces that a peer's control endpoint is gone.
type RemoveSubscriptionClient struct {
	CorrelationID PeerID `cbor:"1,keyasint"`
	ControlURI    URI    `cbor:"2,keyasint"`
}

// Kind returns KindRemoveSubscriptionClient.
func (RemoveSubscriptionClient) Kind() MessageKind { return KindRemoveSubscriptionClient }

// SubscriptionRefresh carries a batch of subscriptions in sender order.
type SubscriptionRefresh struct {
	Subscriptions []SubscriptionInfo `cbor:"1,keyasint"`
}

// Kind returns KindSubscriptionRefresh.
func (SubscriptionRefresh) Kind() MessageKind { return KindSubscriptionRefresh }

// Envelope is an inbound message together with the transport metadata
// attached by the sending bus.
type Envelope struct {
	// SourceAddress is the address of the bus that sent the message.
	SourceAddress URI

	// Network is the logical network tag the message was sent on.
	Network string

	// Message is the typed payload.
	Message Message
}

// Kind returns the kind of the carried message, or KindUnknown if empty.
func (e *Envelope) Kind() MessageKind {
	if e == nil {
		return KindUnknown
	}
	return KindOf(e.Message)
}

// KindOf returns the kind of m without calling through a nil pointer. A nil
// *AddSubscription still reports KindAddSubscription; a nil m reports
// KindUnknown.
func KindOf(m Message) MessageKind {
	switch m.(type) {
	case nil:
		return KindUnknown
	case *AddSubscription:
		return KindAddSubscription
	case *RemoveSubscription:
		return KindRemoveSubscription
	case *AddSubscriptionClient:
		return KindAddSubscriptionClient
	case *RemoveSubscriptionClient:
		return KindRemoveSubscriptionClient
	case *SubscriptionRefresh:
		return KindSubscriptionRefresh
	}
	return m.Kind()
}

// isNilMessage reports whether m is nil or a nil pointer payload.
func isNilMessage(m Message) bool {
	switch p := m.(type) {
	case nil:
		return true
	case *AddSubscription:
		return p == nil
	case *RemoveSubscription:
		return p == nil
	case *AddSubscriptionClient:
		return p == nil
	case *RemoveSubscriptionClient:
		return p == nil
	case *SubscriptionRefresh:
		return p == nil
	}
	return false
}

// Compile-time interface satisfaction checks.
var (
	_ Message = AddSubscription{}
	_ Message = RemoveSubscription{}
	_ Message = AddSubscriptionClient{}
	_ Message = RemoveSubscriptionClient{}
	_ Message = SubscriptionRefresh{}
)
