package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	ErrUnknownKind   = errors.New("unknown message kind")
	ErrEmptyEnvelope = errors.New("envelope has no message")
)

// encMode is the CBOR encoder mode for peerbus messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for peerbus messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient for forward compatibility with newer senders
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// envelopeWire is the on-the-wire form of an Envelope.
type envelopeWire struct {
	Kind          MessageKind     `cbor:"1,keyasint"`
	SourceAddress URI             `cbor:"2,keyasint,omitempty"`
	Network       string          `cbor:"3,keyasint"`
	Payload       cbor.RawMessage `cbor:"4,keyasint"`
}

// EncodeEnvelope encodes an envelope to CBOR bytes.
func EncodeEnvelope(env *Envelope) ([]byte, error) {
	if isNilMessage(env.Message) {
		return nil, ErrEmptyEnvelope
	}
	kind := KindOf(env.Message)
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	payload, err := Marshal(env.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	return Marshal(envelopeWire{
		Kind:          kind,
		SourceAddress: env.SourceAddress,
		Network:       env.Network,
		Payload:       payload,
	})
}

// DecodeEnvelope decodes CBOR bytes into an envelope with a typed message.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var w envelopeWire
	if err := Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	msg, err := decodeMessage(w.Kind, w.Payload)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		SourceAddress: w.SourceAddress,
		Network:       w.Network,
		Message:       msg,
	}, nil
}

// decodeMessage decodes a payload into the concrete type for kind.
func decodeMessage(kind MessageKind, payload []byte) (Message, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyEnvelope, kind)
	}

	var (
		msg Message
		err error
	)
	switch kind {
	case KindAddSubscription:
		var m AddSubscription
		err = Unmarshal(payload, &m)
		msg = m
	case KindRemoveSubscription:
		var m RemoveSubscription
		err = Unmarshal(payload, &m)
		msg = m
	case KindAddSubscriptionClient:
		var m AddSubscriptionClient
		err = Unmarshal(payload, &m)
		msg = m
	case KindRemoveSubscriptionClient:
		var m RemoveSubscriptionClient
		err = Unmarshal(payload, &m)
		msg = m
	case KindSubscriptionRefresh:
		var m SubscriptionRefresh
		err = Unmarshal(payload, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return msg, nil
}

// PeekKind returns the message kind of an encoded envelope without decoding
// its payload.
func PeekKind(data []byte) (MessageKind, error) {
	var peek struct {
		Kind MessageKind `cbor:"1,keyasint"`
	}
	if err := Unmarshal(data, &peek); err != nil {
		return KindUnknown, fmt.Errorf("failed to peek envelope: %w", err)
	}
	return peek.Kind, nil
}

// Equal compares two values by their CBOR encoding.
func Equal(a, b any) bool {
	dataA, errA := Marshal(a)
	dataB, errB := Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(dataA, dataB)
}
