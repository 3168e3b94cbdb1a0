package coordinator

import (
	"context"
	"sync"
)

// Coordinator receives translated subscription commands.
//
// Send is called synchronously from the consumer; implementations must be
// safe for concurrent use.
type Coordinator interface {
	Send(ctx context.Context, cmd Command) error
}

// SenderFunc adapts a function to the Coordinator interface.
type SenderFunc func(ctx context.Context, cmd Command) error

// Send calls f(ctx, cmd).
func (f SenderFunc) Send(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Recorder is an in-memory Coordinator that keeps every command it receives
// in arrival order.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send appends cmd. It fails only if ctx is already done.
func (r *Recorder) Send(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return nil
}

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Len returns the number of recorded commands.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

// Reset discards all recorded commands.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

var (
	_ Coordinator = SenderFunc(nil)
	_ Coordinator = (*Recorder)(nil)
)
