package coordinator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peerbus/peerbus-go/pkg/wire"
)

// CommandKind identifies a coordinator command.
type CommandKind uint8

const (
	// CommandUnknown is the zero value and never sent.
	CommandUnknown CommandKind = 0

	// CommandAddPeerSubscription records a peer subscription.
	CommandAddPeerSubscription CommandKind = 1

	// CommandRemovePeerSubscription drops a peer subscription.
	CommandRemovePeerSubscription CommandKind = 2

	// CommandAddPeer records a peer control endpoint.
	CommandAddPeer CommandKind = 3

	// CommandRemovePeer drops a peer control endpoint.
	CommandRemovePeer CommandKind = 4
)

// AllCommandKinds lists every valid command kind.
var AllCommandKinds = []CommandKind{
	CommandAddPeerSubscription,
	CommandRemovePeerSubscription,
	CommandAddPeer,
	CommandRemovePeer,
}

// String returns the command kind name.
func (k CommandKind) String() string {
	switch k {
	case CommandAddPeerSubscription:
		return "ADD_PEER_SUBSCRIPTION"
	case CommandRemovePeerSubscription:
		return "REMOVE_PEER_SUBSCRIPTION"
	case CommandAddPeer:
		return "ADD_PEER"
	case CommandRemovePeer:
		return "REMOVE_PEER"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the kind is one of the four known kinds.
func (k CommandKind) IsValid() bool {
	return k >= CommandAddPeerSubscription && k <= CommandRemovePeer
}

// ParseCommandKind parses a kind name case-insensitively, accepting
// dashes in place of underscores.
func ParseCommandKind(s string) (CommandKind, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, k := range AllCommandKinds {
		if k.String() == norm {
			return k, nil
		}
	}
	return CommandUnknown, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Command is implemented by the four coordinator command types.
type Command interface {
	Kind() CommandKind

	// Peer returns the peer the command concerns.
	Peer() wire.PeerID
}

// AddPeerSubscriptionMessage asks the coordinator to record a subscription.
//
// CBOR encoding:
//
//	{
//	  1: peerId,          // uuid
//	  2: endpointUri,     // text
//	  3: messageName,     // text
//	  4: messageNumber,   // int
//	  5: subscriptionId   // uuid
//	}
type AddPeerSubscriptionMessage struct {
	PeerID         wire.PeerID `cbor:"1,keyasint"`
	EndpointURI    wire.URI    `cbor:"2,keyasint"`
	MessageName    string      `cbor:"3,keyasint"`
	MessageNumber  int64       `cbor:"4,keyasint"`
	SubscriptionID uuid.UUID   `cbor:"5,keyasint"`
}

// Kind returns CommandAddPeerSubscription.
func (AddPeerSubscriptionMessage) Kind() CommandKind { return CommandAddPeerSubscription }

// Peer returns the subscribing peer.
func (m AddPeerSubscriptionMessage) Peer() wire.PeerID { return m.PeerID }

// RemovePeerSubscriptionMessage asks the coordinator to drop a subscription.
// Same layout as AddPeerSubscriptionMessage.
type RemovePeerSubscriptionMessage struct {
	PeerID         wire.PeerID `cbor:"1,keyasint"`
	EndpointURI    wire.URI    `cbor:"2,keyasint"`
	MessageName    string      `cbor:"3,keyasint"`
	MessageNumber  int64       `cbor:"4,keyasint"`
	SubscriptionID uuid.UUID   `cbor:"5,keyasint"`
}

// Kind returns CommandRemovePeerSubscription.
func (RemovePeerSubscriptionMessage) Kind() CommandKind { return CommandRemovePeerSubscription }

// Peer returns the unsubscribing peer.
func (m RemovePeerSubscriptionMessage) Peer() wire.PeerID { return m.PeerID }

// AddPeerMessage announces a peer's control endpoint. Timestamp is the local
// time the announcement was processed, in UTC.
//
// CBOR encoding:
//
//	{
//	  1: peerId,     // uuid
//	  2: peerUri,    // text
//	  3: timestamp   // RFC 3339 text
//	}
type AddPeerMessage struct {
	PeerID    wire.PeerID `cbor:"1,keyasint"`
	PeerURI   wire.URI    `cbor:"2,keyasint"`
	Timestamp time.Time   `cbor:"3,keyasint"`
}

// Kind returns CommandAddPeer.
func (AddPeerMessage) Kind() CommandKind { return CommandAddPeer }

// Peer returns the announced peer.
func (m AddPeerMessage) Peer() wire.PeerID { return m.PeerID }

// RemovePeerMessage withdraws a peer's control endpoint.
type RemovePeerMessage struct {
	PeerID    wire.PeerID `cbor:"1,keyasint"`
	PeerURI   wire.URI    `cbor:"2,keyasint"`
	Timestamp time.Time   `cbor:"3,keyasint"`
}

// Kind returns CommandRemovePeer.
func (RemovePeerMessage) Kind() CommandKind { return CommandRemovePeer }

// Peer returns the withdrawn peer.
func (m RemovePeerMessage) Peer() wire.PeerID { return m.PeerID }

var (
	_ Command = AddPeerSubscriptionMessage{}
	_ Command = RemovePeerSubscriptionMessage{}
	_ Command = AddPeerMessage{}
	_ Command = RemovePeerMessage{}
)
