package log

import (
	"errors"
	"io"
	"os"
	"slices"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/peerbus/peerbus-go/pkg/wire"
)

// Filter selects protocol events. Zero-valued fields match every event.
type Filter struct {
	ConnectionID string
	Direction    *Direction
	Layer        *Layer
	Category     *Category
	Network      string

	// Kind matches the inbound message kind of message and discard events,
	// and the source kind of command events.
	Kind *wire.MessageKind

	// Reason matches the reason of discard events, e.g. "self".
	Reason string

	// Source matches the sending bus address of message and discard events.
	// Addresses are compared in normalized form.
	Source wire.URI

	// ExcludeCategories drops events of the listed categories.
	ExcludeCategories []Category

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// Matches reports whether event satisfies every criterion of f.
func (f *Filter) Matches(event Event) bool {
	switch {
	case f.ConnectionID != "" && event.ConnectionID != f.ConnectionID,
		f.Direction != nil && event.Direction != *f.Direction,
		f.Layer != nil && event.Layer != *f.Layer,
		f.Category != nil && event.Category != *f.Category,
		f.Network != "" && event.Network != f.Network,
		slices.Contains(f.ExcludeCategories, event.Category),
		f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}

	if f.Kind != nil {
		kind, ok := EventKind(event)
		if !ok || kind != *f.Kind {
			return false
		}
	}
	if f.Reason != "" && (event.Discard == nil || event.Discard.Reason != f.Reason) {
		return false
	}
	if f.Source != "" && EventSource(event).Normalize() != f.Source.Normalize() {
		return false
	}
	return true
}

// EventKind returns the message kind an event concerns. Frame, state and
// error events carry none.
func EventKind(event Event) (wire.MessageKind, bool) {
	switch {
	case event.Message != nil:
		return event.Message.Kind, true
	case event.Discard != nil:
		return event.Discard.Kind, true
	case event.Command != nil:
		return event.Command.Source, true
	}
	return wire.KindUnknown, false
}

// EventSource returns the sending bus address of message and discard
// events, or "".
func EventSource(event Event) wire.URI {
	switch {
	case event.Message != nil:
		return wire.URI(event.Message.SourceAddress)
	case event.Discard != nil:
		return wire.URI(event.Discard.SourceAddress)
	}
	return ""
}

// Reader streams events from a protocol log.
type Reader struct {
	closer  io.Closer
	decoder *cbor.Decoder
	filter  Filter
	scanned int
}

// NewReader opens the log file at path and yields every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens the log file at path and yields only events
// matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewStreamReader(f, filter)
	r.closer = f
	return r, nil
}

// NewStreamReader reads events matching filter from r. Close does not
// close r.
func NewStreamReader(r io.Reader, filter Filter) *Reader {
	return &Reader{decoder: newEventDecoder(r), filter: filter}
}

// Next returns the next matching event, or io.EOF once the log is
// exhausted. A log cut off mid-event returns a decode error.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		r.scanned++
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Scanned returns how many events were decoded so far, matching or not.
func (r *Reader) Scanned() int {
	return r.scanned
}

// Close closes the log file opened by NewReader or NewFilteredReader.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
