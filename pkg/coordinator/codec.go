package coordinator

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/peerbus/peerbus-go/pkg/wire"
)

// Codec errors.
var (
	ErrUnknownCommand = errors.New("unknown command kind")
	ErrEmptyCommand   = errors.New("command frame has no payload")
)

// commandWire is the on-the-wire form of a Command.
type commandWire struct {
	Kind    CommandKind     `cbor:"1,keyasint"`
	Payload cbor.RawMessage `cbor:"2,keyasint"`
}

// EncodeCommand encodes a command as {1: kind, 2: command}.
func EncodeCommand(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, ErrEmptyCommand
	}
	kind := cmd.Kind()
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, kind)
	}

	payload, err := wire.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return wire.Marshal(commandWire{Kind: kind, Payload: payload})
}

// DecodeCommand decodes bytes produced by EncodeCommand.
func DecodeCommand(data []byte) (Command, error) {
	var w commandWire
	if err := wire.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode command: %w", err)
	}
	if len(w.Payload) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCommand, w.Kind)
	}

	var (
		cmd Command
		err error
	)
	switch w.Kind {
	case CommandAddPeerSubscription:
		var c AddPeerSubscriptionMessage
		err = wire.Unmarshal(w.Payload, &c)
		cmd = c
	case CommandRemovePeerSubscription:
		var c RemovePeerSubscriptionMessage
		err = wire.Unmarshal(w.Payload, &c)
		cmd = c
	case CommandAddPeer:
		var c AddPeerMessage
		err = wire.Unmarshal(w.Payload, &c)
		cmd = c
	case CommandRemovePeer:
		var c RemovePeerMessage
		err = wire.Unmarshal(w.Payload, &c)
		cmd = c
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, w.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", w.Kind, err)
	}
	return cmd, nil
}
