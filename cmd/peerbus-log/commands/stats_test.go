package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerbus/peerbus-go/pkg/log"
)

func TestCollectStats(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	stats, err := CollectStats(path)
	require.NoError(t, err)

	assert.Equal(t, 9, stats.TotalEvents)
	assert.Equal(t, 2, stats.EventsByLayer[log.LayerTransport])
	assert.Equal(t, 3, stats.EventsByLayer[log.LayerWire])
	assert.Equal(t, 4, stats.EventsByLayer[log.LayerConsumer])
	assert.Equal(t, 2, stats.EventsByDirection[log.DirectionOut])

	assert.Equal(t, map[string]int{
		"ADD_SUBSCRIPTION_CLIENT": 1,
		"ADD_SUBSCRIPTION":        1,
		"SUBSCRIPTION_REFRESH":    1,
	}, stats.MessagesByKind)
	assert.Equal(t, map[string]int{"ADD_PEER_SUBSCRIPTION": 2}, stats.CommandsByKind)
	assert.Equal(t, map[string]int{"self": 1, "network": 1}, stats.DiscardsByReason)
	assert.Equal(t, 1, stats.Errors)

	require.Len(t, stats.Connections, 1)
	conn := stats.Connections["abc12345-6789-0123-4567-890abcdef012"]
	require.NotNil(t, conn)
	assert.Equal(t, 5, conn.Events)
	assert.Equal(t, 3, conn.Messages)
	assert.Equal(t, "10.0.0.7:51000", conn.RemoteAddr)
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	output := buf.String()

	assert.Contains(t, output, "Total Events: 9")
	assert.Contains(t, output, "CONSUMER:")
	assert.Contains(t, output, "Discards by Reason:")
	assert.Contains(t, output, "network:")
	assert.Contains(t, output, "Commands by Kind:")
	assert.Contains(t, output, "Connections: 1")
	assert.Contains(t, output, "[abc12345] 5 events, 3 messages")
	assert.Contains(t, output, "Remote: 10.0.0.7:51000")
	assert.Contains(t, output, "Errors: 1")
}

func TestRunStatsEmptyLog(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	assert.Contains(t, buf.String(), "Total Events: 0")
	assert.NotContains(t, buf.String(), "Time Range")
}
