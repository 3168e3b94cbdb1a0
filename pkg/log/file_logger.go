package log

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// ErrLoggerClosed is returned by Write after Close.
var ErrLoggerClosed = errors.New("protocol logger closed")

// FileLogger appends protocol events as CBOR items to a file or any
// io.Writer. It is safe for concurrent use.
//
// Log never reports failures; events that cannot be written are counted
// and visible through Stats. Write is the checked variant.
type FileLogger struct {
	mu      sync.Mutex
	encoder *cbor.Encoder
	closer  io.Closer
	closed  bool
	written uint64
	dropped uint64
}

// NewFileLogger opens (or creates with mode 0644) the file at path and
// appends events to it.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := NewWriterLogger(f)
	l.closer = f
	return l, nil
}

// NewWriterLogger appends events to w. Close does not close w.
func NewWriterLogger(w io.Writer) *FileLogger {
	return &FileLogger{encoder: newEventEncoder(w)}
}

// Log writes event, counting it as dropped if that fails.
func (l *FileLogger) Log(event Event) {
	_ = l.Write(event)
}

// Write encodes event and reports any encoding or write error.
func (l *FileLogger) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		l.dropped++
		return ErrLoggerClosed
	}
	if err := l.encoder.Encode(event); err != nil {
		l.dropped++
		return err
	}
	l.written++
	return nil
}

// Stats returns how many events were written and how many were dropped.
func (l *FileLogger) Stats() (written, dropped uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.dropped
}

// Close closes the underlying file, if any. Later events are dropped;
// repeated Close calls return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

var _ Logger = (*FileLogger)(nil)
