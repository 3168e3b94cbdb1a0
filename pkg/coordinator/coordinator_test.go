package coordinator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderFunc(t *testing.T) {
	var got Command
	f := SenderFunc(func(_ context.Context, cmd Command) error {
		got = cmd
		return nil
	})

	cmd := AddPeerMessage{PeerID: testPeer}
	require.NoError(t, f.Send(context.Background(), cmd))
	assert.Equal(t, cmd, got)
}

func TestRecorderKeepsOrder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	cmds := []Command{
		AddPeerMessage{PeerID: testPeer},
		AddPeerSubscriptionMessage{PeerID: testPeer, MessageName: "A"},
		RemovePeerSubscriptionMessage{PeerID: testPeer, MessageName: "A"},
		RemovePeerMessage{PeerID: testPeer},
	}
	for _, c := range cmds {
		require.NoError(t, r.Send(ctx, c))
	}

	assert.Equal(t, cmds, r.Commands())
	assert.Equal(t, 4, r.Len())

	// Commands returns a copy
	r.Commands()[0] = nil
	assert.NotNil(t, r.Commands()[0])

	r.Reset()
	assert.Empty(t, r.Commands())
}

func TestRecorderCanceledContext(t *testing.T) {
	r := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Send(ctx, AddPeerMessage{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.Len())
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Send(context.Background(), AddPeerMessage{PeerID: testPeer})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 500, r.Len())
}

func TestForwarderWritesFrames(t *testing.T) {
	var buf bytes.Buffer
	f := NewForwarder(&buf)

	cmds := []Command{
		AddPeerMessage{PeerID: testPeer, PeerURI: "loopback://localhost/c", Timestamp: testTime},
		AddPeerSubscriptionMessage{PeerID: testPeer, MessageName: "A", MessageNumber: 1, SubscriptionID: testSub},
		AddPeerSubscriptionMessage{PeerID: testPeer, MessageName: "B", MessageNumber: 2, SubscriptionID: testSub},
	}
	for _, c := range cmds {
		require.NoError(t, f.Send(context.Background(), c))
	}
	require.NoError(t, f.Close())

	reader := NewCommandReader(&buf)
	for i, want := range cmds {
		got, err := reader.Next()
		require.NoError(t, err, "command %d", i)
		assert.Equal(t, want.Kind(), got.Kind())
	}
	_, err := reader.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestForwarderClosed(t *testing.T) {
	f := NewForwarder(io.Discard)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	err := f.Send(context.Background(), AddPeerMessage{})
	assert.ErrorIs(t, err, ErrForwarderClosed)
}

func TestForwarderCanceledContext(t *testing.T) {
	var buf bytes.Buffer
	f := NewForwarder(&buf)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.Send(ctx, AddPeerMessage{}), context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestOpenForwarderAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.cbor")

	for _, name := range []string{"A", "B"} {
		f, err := OpenForwarder(path)
		require.NoError(t, err)
		require.NoError(t, f.Send(context.Background(), AddPeerSubscriptionMessage{PeerID: testPeer, MessageName: name}))
		require.NoError(t, f.Close())
	}

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := NewCommandReader(file)
	var names []string
	for {
		cmd, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, cmd.(AddPeerSubscriptionMessage).MessageName)
	}
	assert.Equal(t, []string{"A", "B"}, names)
}
