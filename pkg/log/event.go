package log

import (
	"time"

	"github.com/peerbus/peerbus-go/pkg/wire"
)

// Event is a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the inbound connection (UUID), if any.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the network address of the sending connection.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Network is the logical network tag of the message, if known.
	Network string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	Command     *CommandEvent     `cbor:"12,keyasint,omitempty"`
	Discard     *DiscardEvent     `cbor:"13,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"14,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn is a message received from a peer bus.
	DirectionIn Direction = 0
	// DirectionOut is a command sent to the coordinator.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the envelope decoding layer.
	LayerWire Layer = 1
	// LayerConsumer is the filter and translation layer.
	LayerConsumer Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerConsumer:
		return "CONSUMER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage is an inbound frame or envelope.
	CategoryMessage Category = 0
	// CategoryCommand is a coordinator command.
	CategoryCommand Category = 1
	// CategoryDiscard is a filtered-out message.
	CategoryDiscard Category = 2
	// CategoryState is a connection state change.
	CategoryState Category = 3
	// CategoryError is an error at any layer.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryCommand:
		return "COMMAND"
	case CategoryDiscard:
		return "DISCARD"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded inbound envelope.
type MessageEvent struct {
	Kind          wire.MessageKind `cbor:"1,keyasint"`
	SourceAddress string           `cbor:"2,keyasint,omitempty"`

	// Entries is the subscription count of a refresh.
	Entries int `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures a command handed to the coordinator.
type CommandEvent struct {
	// Command is the command kind name, e.g. "ADD_PEER".
	Command string `cbor:"1,keyasint"`

	// PeerID is the peer the command concerns.
	PeerID string `cbor:"2,keyasint"`

	// MessageName is set for subscription commands.
	MessageName string `cbor:"3,keyasint,omitempty"`

	// Source is the inbound message kind that produced the command.
	Source wire.MessageKind `cbor:"4,keyasint"`
}

// DiscardEvent captures a message dropped by the filter.
type DiscardEvent struct {
	Kind          wire.MessageKind `cbor:"1,keyasint"`
	Reason        string           `cbor:"2,keyasint"`
	SourceAddress string           `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures connection lifecycle events.
type StateChangeEvent struct {
	OldState string `cbor:"1,keyasint,omitempty"`
	NewState string `cbor:"2,keyasint"`
	Reason   string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
