// Package wire defines the CBOR wire format for subscription propagation
// messages exchanged between peer buses.
//
// Every inbound message travels inside an Envelope that carries the
// transport metadata the consumer filters on (the source bus address and the
// logical network tag) next to the typed payload.
//
// # Message Kinds
//
// Five kinds are understood:
//   - AddSubscription / RemoveSubscription: one peer subscription changed
//   - AddSubscriptionClient / RemoveSubscriptionClient: a peer control endpoint
//     became known or unknown
//   - SubscriptionRefresh: a batch of a peer's current subscriptions
//
// # CBOR Integer Keys
//
// All maps use integer keys for compactness. The envelope layout is:
//
//	{
//	  1: kind,           // uint8
//	  2: sourceAddress,  // text
//	  3: network,        // text
//	  4: payload         // kind-specific map
//	}
package wire
