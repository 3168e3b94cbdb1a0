package coordinator

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/peerbus/peerbus-go/pkg/transport"
)

// ErrForwarderClosed is returned by Send after Close.
var ErrForwarderClosed = errors.New("forwarder closed")

// Forwarder is a Coordinator that writes each command as a length-prefixed
// CBOR frame. Frames use the same framing as inbound envelopes.
type Forwarder struct {
	writer *transport.FrameWriter
	closer io.Closer

	mu     sync.RWMutex
	closed bool
}

// NewForwarder creates a Forwarder writing to w. If w is an io.Closer,
// Close closes it.
func NewForwarder(w io.Writer) *Forwarder {
	f := &Forwarder{writer: transport.NewFrameWriter(w, 0)}
	if c, ok := w.(io.Closer); ok {
		f.closer = c
	}
	return f
}

// OpenForwarder creates a Forwarder appending to the file at path.
func OpenForwarder(path string) (*Forwarder, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return NewForwarder(file), nil
}

// Send encodes cmd and writes it as one frame.
func (f *Forwarder) Send(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrForwarderClosed
	}
	return f.writer.WriteFrame(data)
}

// Close closes the underlying writer if it is closable. Repeated calls
// return nil.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// CommandReader reads frames written by a Forwarder.
type CommandReader struct {
	reader *transport.FrameReader
}

// NewCommandReader creates a CommandReader over r.
func NewCommandReader(r io.Reader) *CommandReader {
	return &CommandReader{reader: transport.NewFrameReader(r, 0)}
}

// Next returns the next command, or io.EOF when the stream ends cleanly.
func (r *CommandReader) Next() (Command, error) {
	data, err := r.reader.ReadFrame()
	if err != nil {
		return nil, err
	}
	return DecodeCommand(data)
}

var _ Coordinator = (*Forwarder)(nil)
