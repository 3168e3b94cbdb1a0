// Package metrics exposes Prometheus collectors for the subscription consumer.
//
// All methods are safe on a nil *Collector, so components take an optional
// collector and never branch on whether metrics are enabled.
//
// Exported series:
//
//	peerbus_consumer_messages_received_total{kind}
//	peerbus_consumer_messages_discarded_total{kind,reason}
//	peerbus_consumer_commands_forwarded_total{command}
//	peerbus_consumer_command_failures_total{command}
//	peerbus_consumer_decode_errors_total
//	peerbus_consumer_connections_active
package metrics
