// Command peerbus-log views and analyzes peerbus protocol log files and
// coordinator forward files.
//
// Protocol logs are written by peerbus-consumer when protocol_log is set.
// Forward files are written when forward_path is set.
//
// Usage:
//
//	peerbus-log <command> [flags] <file>
//
// Commands:
//
//	view      View protocol log in human-readable format
//	export    Export protocol log to JSONL or CSV
//	filter    Filter protocol log and write to new file
//	stats     Show statistics about a protocol log
//	commands  Print coordinator commands from a forward file
//
// Examples:
//
//	# Why did a peer's subscriptions never arrive?
//	peerbus-log view --category discard consumer.plog
//
//	# Commands emitted on one network
//	peerbus-log view --direction out --network orders consumer.plog
//
//	# Everything from one connection into a new file
//	peerbus-log filter --conn-id abc12345-... -o conn.plog consumer.plog
//
//	# Echoes of our own refreshes
//	peerbus-log filter --kind subscription-refresh --reason self -o echoes.plog consumer.plog
//
//	# Peer announcements handed to the coordinator
//	peerbus-log commands --kind add-peer commands.cbor
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peerbus/peerbus-go/cmd/peerbus-log/commands"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

const usage = `peerbus-log - Peerbus Protocol Log Analyzer

Usage:
  peerbus-log <command> [flags] <file>

Commands:
  view      View protocol log in human-readable format
  export    Export protocol log to JSONL or CSV
  filter    Filter protocol log and write to new file
  stats     Show statistics about a protocol log
  commands  Print coordinator commands from a forward file

Use "peerbus-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "commands":
		runCommands(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// requirePath returns the single positional argument or exits.
func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func newFlagSet(name, synopsis, usageLine string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "peerbus-log %s - %s\n\nUsage:\n  %s\n\nFlags:\n", name, synopsis, usageLine)
		fs.PrintDefaults()
	}
	return fs
}

func runView(args []string) {
	fs := newFlagSet("view", "View protocol log in human-readable format", "peerbus-log view [flags] <file.plog>")
	layer := fs.String("layer", "", "Filter by layer (transport, wire, consumer)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, command, discard, state, error)")
	network := fs.String("network", "", "Filter by network")
	kind := fs.String("kind", "", "Filter by message kind (e.g. add-subscription)")
	reason := fs.String("reason", "", "Filter by discard reason (self, network)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter := commands.ViewFilter{Network: *network}

	if *kind != "" {
		k, err := wire.ParseMessageKind(*kind)
		if err != nil {
			fail(err)
		}
		filter.Kind = &k
	}

	if *reason != "" {
		r, err := commands.ParseReasonFlag(*reason)
		if err != nil {
			fail(err)
		}
		filter.Reason = r
	}

	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}

	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export protocol log to JSONL or CSV", "peerbus-log export [flags] <file.plog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter protocol log and write to new file", "peerbus-log filter [flags] <file.plog>")
	output := fs.String("o", "", "Output file (required)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	network := fs.String("network", "", "Filter by network")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (transport, wire, consumer)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, command, discard, state, error)")
	kind := fs.String("kind", "", "Filter by message kind (e.g. add-subscription)")
	reason := fs.String("reason", "", "Filter by discard reason (self, network)")
	source := fs.String("source", "", "Filter by sending bus address")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	res, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		ConnID:    *connID,
		Network:   *network,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
		Kind:      *kind,
		Reason:    *reason,
		Source:    *source,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d of %d events to %s\n", res.Written, res.Scanned, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about a protocol log", "peerbus-log stats <file.plog>")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}

func runCommands(args []string) {
	fs := newFlagSet("commands", "Print coordinator commands from a forward file", "peerbus-log commands [flags] <forward-file>")
	kind := fs.String("kind", "", "Only show this command kind (add-peer-subscription, remove-peer-subscription, add-peer, remove-peer)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunCommands(path, *kind, os.Stdout); err != nil {
		fail(err)
	}
}
