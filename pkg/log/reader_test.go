package log

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/peerbus/peerbus-go/pkg/wire"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryMessage},
		{Timestamp: time.Now(), ConnectionID: "conn-2", Direction: DirectionIn, Layer: LayerWire, Category: CategoryMessage},
		{Timestamp: time.Now(), ConnectionID: "conn-3", Direction: DirectionOut, Layer: LayerConsumer, Category: CategoryCommand},
	}

	reader, err := NewReader(createTestLogFile(t, events))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, want := range []string{"conn-1", "conn-2", "conn-3"} {
		if read[i].ConnectionID != want {
			t.Errorf("event %d: ConnectionID = %q, want %q", i, read[i].ConnectionID, want)
		}
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, Network: "orders", Layer: LayerConsumer, Category: CategoryDiscard},
		{Timestamp: base.Add(time.Second), Network: "billing", Layer: LayerConsumer, Category: CategoryDiscard},
		{Timestamp: base.Add(2 * time.Second), Network: "orders", Layer: LayerConsumer, Category: CategoryCommand, Direction: DirectionOut},
		{Timestamp: base.Add(3 * time.Second), Network: "orders", Layer: LayerTransport, Category: CategoryMessage},
	}
	path := createTestLogFile(t, events)

	discard := CategoryDiscard
	out := DirectionOut
	transport := LayerTransport
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"network", Filter{Network: "orders"}, 3},
		{"category", Filter{Category: &discard}, 2},
		{"direction", Filter{Direction: &out}, 1},
		{"layer", Filter{Layer: &transport}, 1},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{Network: "orders", Category: &discard}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.plog")); err == nil {
		t.Error("NewReader on missing file returned nil error")
	}
}

func TestFilterDomainFields(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: ts, Layer: LayerWire, Category: CategoryMessage,
			Message: &MessageEvent{Kind: wire.KindSubscriptionRefresh, SourceAddress: "loopback://localhost/peer", Entries: 2}},
		{Timestamp: ts, Layer: LayerConsumer, Category: CategoryDiscard,
			Discard: &DiscardEvent{Kind: wire.KindAddSubscriptionClient, Reason: "self", SourceAddress: "loopback://localhost/bus"}},
		{Timestamp: ts, Layer: LayerConsumer, Category: CategoryDiscard,
			Discard: &DiscardEvent{Kind: wire.KindAddSubscription, Reason: "network", SourceAddress: "LOOPBACK://LocalHost/peer"}},
		{Timestamp: ts, Direction: DirectionOut, Layer: LayerConsumer, Category: CategoryCommand,
			Command: &CommandEvent{Command: "ADD_PEER_SUBSCRIPTION", PeerID: "p1", Source: wire.KindSubscriptionRefresh}},
		{Timestamp: ts, Layer: LayerTransport, Category: CategoryState,
			StateChange: &StateChangeEvent{NewState: "CONNECTED"}},
	}

	refresh := wire.KindSubscriptionRefresh
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"kind", Filter{Kind: &refresh}, 2},
		{"reason", Filter{Reason: "self"}, 1},
		{"source normalized", Filter{Source: "loopback://localhost/peer"}, 2},
		{"exclude discards", Filter{ExcludeCategories: []Category{CategoryDiscard}}, 3},
		{"exclude several", Filter{ExcludeCategories: []Category{CategoryDiscard, CategoryState}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWriterLogger(&buf)
			for _, e := range events {
				if err := logger.Write(e); err != nil {
					t.Fatalf("Write: %v", err)
				}
			}

			reader := NewStreamReader(&buf, tt.filter)
			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
			if reader.Scanned() != len(events) {
				t.Errorf("Scanned() = %d, want %d", reader.Scanned(), len(events))
			}
		})
	}
}

func TestEventKindAndSource(t *testing.T) {
	kind, ok := EventKind(Event{Command: &CommandEvent{Source: wire.KindRemoveSubscription}})
	if !ok || kind != wire.KindRemoveSubscription {
		t.Errorf("EventKind(command) = (%s, %v)", kind, ok)
	}
	if _, ok := EventKind(Event{Frame: &FrameEvent{Size: 12}}); ok {
		t.Error("EventKind(frame) reported a kind")
	}
	if src := EventSource(Event{Discard: &DiscardEvent{SourceAddress: "loopback://localhost/bus"}}); src != "loopback://localhost/bus" {
		t.Errorf("EventSource(discard) = %q", src)
	}
	if src := EventSource(Event{Command: &CommandEvent{}}); src != "" {
		t.Errorf("EventSource(command) = %q, want empty", src)
	}
}

func TestFilteredLogger(t *testing.T) {
	rec := &mockLogger{}
	logger := NewFilteredLogger(rec, Filter{ExcludeCategories: []Category{CategoryDiscard}})

	logger.Log(Event{Category: CategoryDiscard, Discard: &DiscardEvent{Reason: "self"}})
	logger.Log(Event{Category: CategoryCommand, Command: &CommandEvent{Command: "ADD_PEER"}})

	if len(rec.events) != 1 {
		t.Fatalf("forwarded %d events, want 1", len(rec.events))
	}
	if rec.events[0].Category != CategoryCommand {
		t.Errorf("forwarded %s, want COMMAND", rec.events[0].Category)
	}
}
