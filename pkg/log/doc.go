// Package log provides structured protocol logging for peerbus.
//
// It defines the Logger interface and Event types that capture what happened
// to each inbound subscription message: the raw frame, the decoded envelope,
// a discard decision, or the coordinator command it was translated into. It is
// separate from operational logging (slog); the protocol trail is a
// machine-readable record for answering "why did peer X's subscription never
// reach the coordinator".
//
// # Basic Usage
//
//	// Development: protocol events on the console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Production: append to a binary file
//	logger, _ := log.NewFileLogger("/var/log/peerbus/consumer.plog")
//
//	// Both, without discards on the console
//	console := log.NewFilteredLogger(log.NewSlogAdapter(slog.Default()), log.Filter{
//		ExcludeCategories: []log.Category{log.CategoryDiscard},
//	})
//	logger := log.NewMultiLogger(console, file)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys. Reader
// walks them with a Filter that understands message kinds, discard reasons
// and normalized source addresses. The peerbus-log tool views and
// summarizes them.
package log
