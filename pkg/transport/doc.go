// Package transport carries subscription envelopes between peer buses and
// the consumer over TCP.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   CBOR Envelopes (pkg/wire)    │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│      TLS (optional)            │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// The Server reads frames on one goroutine per connection, decodes each into
// a wire.Envelope and hands it to a Handler in arrival order. Undecodable
// frames and handler errors are logged and counted; the connection stays
// open. The Client is the sending side used by peer buses and tests.
//
// TLS listeners and clients advertise the "peerbus/N" ALPN identifiers from
// pkg/version; a peer negotiating another major version is disconnected.
package transport
