package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerbus/peerbus-go/pkg/coordinator"
)

func writeForwardFile(t *testing.T, cmds ...coordinator.Command) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.cbor")
	f, err := coordinator.OpenForwarder(path)
	require.NoError(t, err)
	for _, c := range cmds {
		require.NoError(t, f.Send(context.Background(), c))
	}
	require.NoError(t, f.Close())
	return path
}

func TestRunCommands(t *testing.T) {
	peer := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	at := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := writeForwardFile(t,
		coordinator.AddPeerMessage{PeerID: peer, PeerURI: "loopback://localhost/p1_control", Timestamp: at},
		coordinator.AddPeerSubscriptionMessage{PeerID: peer, MessageName: "OrderPlaced", MessageNumber: 4},
		coordinator.RemovePeerMessage{PeerID: peer, PeerURI: "loopback://localhost/p1_control", Timestamp: at},
	)

	var buf bytes.Buffer
	require.NoError(t, RunCommands(path, "", &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ADD_PEER "))
	assert.Contains(t, lines[0], "at=2026-01-28T10:00:00Z")
	assert.Contains(t, lines[1], "message=OrderPlaced number=4")
	assert.True(t, strings.HasPrefix(lines[2], "REMOVE_PEER "))

	buf.Reset()
	require.NoError(t, RunCommands(path, "add-peer-subscription", &buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestRunCommandsErrors(t *testing.T) {
	assert.Error(t, RunCommands("/nonexistent/commands.cbor", "", &bytes.Buffer{}))

	path := writeForwardFile(t)
	assert.ErrorIs(t, RunCommands(path, "publish", &bytes.Buffer{}), coordinator.ErrUnknownCommand)
}
