package log

// Logger receives protocol log events.
// Pass nil or NoopLogger to disable protocol logging.
type Logger interface {
	// Log records a protocol event. Implementations must be thread-safe and
	// should not block.
	Log(event Event)
}

// NoopLogger discards all events. It is usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// OrNoop returns l, or NoopLogger if l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

var _ Logger = NoopLogger{}
