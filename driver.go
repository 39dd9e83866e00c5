package main

import (
	"errors"
	"fmt"
	"iter"
)

// Source is the read side of the Hydrus catalog the driver needs.
type Source interface {
	TagIDs() ([]int64, error)
	ResolveTag(id int64) (Tag, error)
	CoOccurrences(target int64, onlyHigherPartner bool) iter.Seq2[CoOccurrence, error]
}

// Sink receives result rows. Finalize is called once, after the last tag.
type Sink interface {
	Append(ResultRow) error
	Finalize() error
}

// scopedSink is a Sink that can make one tag's appends atomic.
type scopedSink interface {
	Sink
	Begin() func(errp *error)
}

// State is the driver's position in a run.
type State int

const (
	StateIdle State = iota
	StateResolvingTagUniverse
	StateProcessingTag
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingTagUniverse:
		return "resolving tag universe"
	case StateProcessingTag:
		return "processing tag"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// RunStats summarises a finished run.
type RunStats struct {
	Tags       int // tags visited
	Productive int // tags with at least one qualifying partner
	Partners   int
	Rows       int
}

// Driver visits the configured tags one at a time: retrieve, filter, append.
type Driver struct {
	target Target
	limit  int
	filter Filter
	src    Source
	sink   Sink
	prog   *Progress

	state State
}

// NewDriver builds a driver from a validated config.
func NewDriver(cfg *Config, src Source, sink Sink, prog *Progress) (*Driver, error) {
	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}
	return &Driver{
		target: target,
		limit:  cfg.ProcessingLimit,
		filter: Filter{MinPxy: cfg.MinPxy, MinPxOrPy: cfg.MinPxOrPy},
		src:    src,
		sink:   sink,
		prog:   prog,
	}, nil
}

// State returns where the driver is.
func (d *Driver) State() State { return d.state }

// Run processes every selected tag and finalizes the sink. Any error stops the
// run immediately and the sink is not finalized.
func (d *Driver) Run() (RunStats, error) {
	var stats RunStats
	if d.state != StateIdle {
		return stats, fmt.Errorf("driver already ran (state %s)", d.state)
	}

	var ids []int64
	onlyHigher := d.target.All
	if d.target.All {
		d.state = StateResolvingTagUniverse
		all, err := d.src.TagIDs()
		if err != nil {
			return stats, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		ids = all
		if d.limit != Disabled && d.limit < len(ids) {
			ids = ids[:d.limit]
		}
		d.prog.Log("Scanning %d of %d tags", len(ids), len(all))
	} else {
		if _, err := d.src.ResolveTag(d.target.TagID); err != nil {
			if errors.Is(err, ErrTagNotFound) {
				return stats, fmt.Errorf("%w: %v", ErrConfig, err)
			}
			return stats, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		ids = []int64{d.target.TagID}
	}

	d.state = StateProcessingTag
	for i, id := range ids {
		ts, err := d.processTag(id, onlyHigher)
		if err != nil {
			return stats, err
		}
		stats.Tags++
		stats.Partners += ts.Partners
		stats.Rows += ts.Rows
		if ts.Message != "" {
			stats.Productive++
			d.prog.Log("%s", ts.Message)
		}
		d.prog.Verbose("  tag %d (%d/%d): %d partners, %d rows", id, i+1, len(ids), ts.Partners, ts.Rows)
	}

	d.state = StateDone
	if err := d.sink.Finalize(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (d *Driver) processTag(id int64, onlyHigher bool) (ts TagStats, err error) {
	if s, ok := d.sink.(scopedSink); ok {
		end := s.Begin()
		defer end(&err)
	}
	ts, err = ProcessTag(id, d.src.CoOccurrences(id, onlyHigher), d.filter, d.sink.Append)
	if err != nil && !errors.Is(err, ErrWrite) {
		err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return ts, err
}
