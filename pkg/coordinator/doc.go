// Package coordinator defines the commands the subscription consumer hands
// to the subscription coordinator, and the Coordinator collaborator itself.
//
// Four command kinds exist:
//
//   - AddPeerSubscription / RemovePeerSubscription carry one peer's interest
//     in one message type at one endpoint.
//   - AddPeer / RemovePeer announce a peer's control endpoint.
//
// Two implementations are provided. Recorder keeps commands in memory and is
// used by tests and dry runs. Forwarder encodes each command as a CBOR frame
// and writes it to an io.Writer, typically a file or pipe read by the process
// that owns the coordinator state.
package coordinator
