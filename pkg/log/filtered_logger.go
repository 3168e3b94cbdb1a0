package log

// FilteredLogger forwards only the events matching a Filter.
type FilteredLogger struct {
	next   Logger
	filter Filter
}

// NewFilteredLogger wraps next so that it sees only events matching filter.
func NewFilteredLogger(next Logger, filter Filter) *FilteredLogger {
	return &FilteredLogger{next: next, filter: filter}
}

// Log forwards event when it matches.
func (l *FilteredLogger) Log(event Event) {
	if l.filter.Matches(event) {
		l.next.Log(event)
	}
}

var _ Logger = (*FilteredLogger)(nil)
