package main

import (
	"fmt"
	"iter"
)

// Filter holds the admission thresholds. A value of Disabled switches a check off.
type Filter struct {
	MinPxy    int64
	MinPxOrPy int64
}

// Admit reports whether a record passes both thresholds, checked in order:
// shared file count first, then the individual counts.
func (f Filter) Admit(c CoOccurrence) bool {
	if f.MinPxy != Disabled && c.Pxy < f.MinPxy {
		return false
	}
	if f.MinPxOrPy != Disabled && (c.Px < f.MinPxOrPy || c.Py < f.MinPxOrPy) {
		return false
	}
	return true
}

// TagStats summarises one target tag's pass.
type TagStats struct {
	TagID    int64
	Partners int // records read
	Rows     int // records that qualified and were appended
	// Message is the progress line for the target, empty when nothing qualified.
	Message string
}

// ProcessTag drains one target's co-occurrence sequence, filters each record,
// and hands qualifying rows to emit in the order they were read. The first
// qualifying record sets the progress message; later ones leave it alone.
func ProcessTag(target int64, records iter.Seq2[CoOccurrence, error], f Filter, emit func(ResultRow) error) (TagStats, error) {
	stats := TagStats{TagID: target}
	for rec, err := range records {
		if err != nil {
			return stats, err
		}
		stats.Partners++
		if !f.Admit(rec) {
			continue
		}
		if stats.Rows == 0 {
			stats.Message = fmt.Sprintf("Processing tag: %d | %s", target, rec.X.QualifiedName())
		}
		if err := emit(NewResultRow(rec)); err != nil {
			return stats, err
		}
		stats.Rows++
	}
	return stats, nil
}
