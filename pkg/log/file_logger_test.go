package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/peerbus/peerbus-go/pkg/wire"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		Direction: DirectionOut,
		Layer:     LayerConsumer,
		Category:  CategoryCommand,
		Network:   "orders",
		Command: &CommandEvent{
			Command:     "ADD_PEER_SUBSCRIPTION",
			PeerID:      "0b7e2c55-3f4a-4d2e-9c1b-5a6d7e8f9a0b",
			MessageName: "OrderPlaced",
			Source:      wire.KindSubscriptionRefresh,
		},
	}

	logger.Log(event)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.Network != "orders" {
		t.Errorf("Network = %q, want %q", decoded.Network, "orders")
	}
	if decoded.Command == nil {
		t.Fatal("Command is nil")
	}
	if *decoded.Command != *event.Command {
		t.Errorf("Command = %+v, want %+v", *decoded.Command, *event.Command)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), Category: CategoryMessage})
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "test.plog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	// Log after close is ignored
	logger.Log(Event{Timestamp: time.Now()})
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				logger.Log(Event{Timestamp: time.Now(), Category: CategoryDiscard})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	if count != 400 {
		t.Errorf("read %d events, want 400", count)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriterLoggerStats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	for i := 0; i < 3; i++ {
		logger.Log(Event{Timestamp: time.Now(), Category: CategoryCommand, Network: "orders"})
	}
	written, dropped := logger.Stats()
	if written != 3 || dropped != 0 {
		t.Errorf("Stats() = (%d, %d), want (3, 0)", written, dropped)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := logger.Write(Event{Timestamp: time.Now()}); !errors.Is(err, ErrLoggerClosed) {
		t.Errorf("Write after Close = %v, want ErrLoggerClosed", err)
	}
	if _, dropped := logger.Stats(); dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}

	reader := NewStreamReader(&buf, Filter{})
	events := readAll(t, reader)
	if len(events) != 3 {
		t.Errorf("read %d events, want 3", len(events))
	}
	if reader.Scanned() != 3 {
		t.Errorf("Scanned() = %d, want 3", reader.Scanned())
	}
}

func TestWriterLoggerCountsWriteFailures(t *testing.T) {
	logger := NewWriterLogger(failingWriter{})

	if err := logger.Write(Event{Timestamp: time.Now()}); err == nil {
		t.Error("Write to failing writer returned nil error")
	}
	logger.Log(Event{Timestamp: time.Now()})

	written, dropped := logger.Stats()
	if written != 0 || dropped != 2 {
		t.Errorf("Stats() = (%d, %d), want (0, 2)", written, dropped)
	}
}
