package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/peerbus/peerbus-go/pkg/log"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sessionEvents is a short consumer session: one connection delivers an
// echo, a foreign-network message and a subscription that is forwarded.
func sessionEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	conn := "abc12345-6789-0123-4567-890abcdef012"
	return []log.Event{
		{
			Timestamp: ts, ConnectionID: conn, Layer: log.LayerTransport, Category: log.CategoryState,
			RemoteAddr: "10.0.0.7:51000", StateChange: &log.StateChangeEvent{NewState: "CONNECTED"},
		},
		{
			Timestamp: ts.Add(time.Millisecond), ConnectionID: conn, Layer: log.LayerWire, Category: log.CategoryMessage,
			Network: "orders", Message: &log.MessageEvent{Kind: wire.KindAddSubscriptionClient, SourceAddress: "loopback://localhost/bus"},
		},
		{
			Timestamp: ts.Add(2 * time.Millisecond), Layer: log.LayerConsumer, Category: log.CategoryDiscard,
			Network: "orders", Discard: &log.DiscardEvent{Kind: wire.KindAddSubscriptionClient, Reason: "self", SourceAddress: "loopback://localhost/bus"},
		},
		{
			Timestamp: ts.Add(3 * time.Millisecond), ConnectionID: conn, Layer: log.LayerWire, Category: log.CategoryMessage,
			Network: "billing", Message: &log.MessageEvent{Kind: wire.KindAddSubscription, SourceAddress: "loopback://localhost/billing"},
		},
		{
			Timestamp: ts.Add(4 * time.Millisecond), Layer: log.LayerConsumer, Category: log.CategoryDiscard,
			Network: "billing", Discard: &log.DiscardEvent{Kind: wire.KindAddSubscription, Reason: "network"},
		},
		{
			Timestamp: ts.Add(5 * time.Millisecond), ConnectionID: conn, Layer: log.LayerWire, Category: log.CategoryMessage,
			Network: "orders", Message: &log.MessageEvent{Kind: wire.KindSubscriptionRefresh, SourceAddress: "loopback://localhost/peer", Entries: 2},
		},
		{
			Timestamp: ts.Add(6 * time.Millisecond), Direction: log.DirectionOut, Layer: log.LayerConsumer, Category: log.CategoryCommand,
			Network: "orders", Command: &log.CommandEvent{Command: "ADD_PEER_SUBSCRIPTION", PeerID: "p1", MessageName: "A", Source: wire.KindSubscriptionRefresh},
		},
		{
			Timestamp: ts.Add(7 * time.Millisecond), Direction: log.DirectionOut, Layer: log.LayerConsumer, Category: log.CategoryCommand,
			Network: "orders", Command: &log.CommandEvent{Command: "ADD_PEER_SUBSCRIPTION", PeerID: "p1", MessageName: "B", Source: wire.KindSubscriptionRefresh},
		},
		{
			Timestamp: ts.Add(2 * time.Second), ConnectionID: conn, Layer: log.LayerTransport, Category: log.CategoryError,
			Error: &log.ErrorEventData{Layer: log.LayerTransport, Message: "connection reset", Context: "read frame"},
		},
	}
}
