package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/peerbus/peerbus-go/pkg/coordinator"
)

// RunCommands prints the coordinator commands in a forward file written by
// peerbus-consumer. A non-empty kind restricts output to that command kind.
func RunCommands(path, kind string, w io.Writer) error {
	var only coordinator.CommandKind
	if kind != "" {
		k, err := coordinator.ParseCommandKind(kind)
		if err != nil {
			return err
		}
		only = k
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open forward file: %w", err)
	}
	defer f.Close()

	reader := coordinator.NewCommandReader(f)
	for {
		cmd, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}
		if only != coordinator.CommandUnknown && cmd.Kind() != only {
			continue
		}
		formatCommand(w, cmd)
	}
}

func formatCommand(w io.Writer, cmd coordinator.Command) {
	switch c := cmd.(type) {
	case coordinator.AddPeerSubscriptionMessage:
		fmt.Fprintf(w, "%-24s peer=%s message=%s number=%d endpoint=%s subscription=%s\n",
			c.Kind(), c.PeerID, c.MessageName, c.MessageNumber, c.EndpointURI, c.SubscriptionID)
	case coordinator.RemovePeerSubscriptionMessage:
		fmt.Fprintf(w, "%-24s peer=%s message=%s number=%d endpoint=%s subscription=%s\n",
			c.Kind(), c.PeerID, c.MessageName, c.MessageNumber, c.EndpointURI, c.SubscriptionID)
	case coordinator.AddPeerMessage:
		fmt.Fprintf(w, "%-24s peer=%s uri=%s at=%s\n",
			c.Kind(), c.PeerID, c.PeerURI, c.Timestamp.UTC().Format(time.RFC3339Nano))
	case coordinator.RemovePeerMessage:
		fmt.Fprintf(w, "%-24s peer=%s uri=%s at=%s\n",
			c.Kind(), c.PeerID, c.PeerURI, c.Timestamp.UTC().Format(time.RFC3339Nano))
	}
}
