// Package consumer turns inbound subscription messages into coordinator
// commands.
//
// Every envelope passes through a Filter first. Messages echoed back from the
// local bus and messages tagged with another network are dropped without
// error. Everything else is translated by a per-kind handler:
//
//	ADD_SUBSCRIPTION            -> ADD_PEER_SUBSCRIPTION
//	REMOVE_SUBSCRIPTION         -> REMOVE_PEER_SUBSCRIPTION
//	ADD_SUBSCRIPTION_CLIENT     -> ADD_PEER
//	REMOVE_SUBSCRIPTION_CLIENT  -> REMOVE_PEER
//	SUBSCRIPTION_REFRESH        -> ADD_PEER_SUBSCRIPTION per entry, in order
//
// A Consumer holds only immutable configuration and is safe for concurrent
// use. It implements transport.Handler.
package consumer
