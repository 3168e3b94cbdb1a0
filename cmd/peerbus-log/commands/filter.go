package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/peerbus/peerbus-go/pkg/log"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

// FilterOptions specifies filtering criteria for the filter command.
type FilterOptions struct {
	Output    string
	ConnID    string
	Network   string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string

	// Kind is an inbound message kind such as "add-subscription-client".
	Kind string
	// Reason is a discard reason: "self" or "network".
	Reason string
	// Source is a sending bus address.
	Source string
}

// FilterResult reports what the filter command did.
type FilterResult struct {
	Written int
	Scanned int
}

// RunFilter copies the events of the log at path that match opts into a new
// log at opts.Output.
func RunFilter(path string, opts FilterOptions) (FilterResult, error) {
	filter, err := opts.logFilter()
	if err != nil {
		return FilterResult{}, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return FilterResult{}, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return FilterResult{}, fmt.Errorf("failed to create output log: %w", err)
	}
	defer out.Close()

	var res FilterResult
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Scanned = reader.Scanned()
			return res, fmt.Errorf("failed to read event: %w", err)
		}
		if err := out.Write(event); err != nil {
			res.Scanned = reader.Scanned()
			return res, fmt.Errorf("failed to write event: %w", err)
		}
		res.Written++
	}
	res.Scanned = reader.Scanned()

	return res, out.Close()
}

func (opts FilterOptions) logFilter() (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: opts.ConnID,
		Network:      opts.Network,
		Source:       wire.URI(opts.Source),
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if opts.Layer != "" {
		l, err := parseLayer(opts.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if opts.Direction != "" {
		d, err := parseDirection(opts.Direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if opts.Kind != "" {
		k, err := wire.ParseMessageKind(opts.Kind)
		if err != nil {
			return filter, err
		}
		filter.Kind = &k
	}
	if opts.Reason != "" {
		r, err := parseReason(opts.Reason)
		if err != nil {
			return filter, err
		}
		filter.Reason = r
	}
	return filter, nil
}
