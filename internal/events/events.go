// Package events assembles detected gait events into BIDS-style event
// tables and reads and writes them as tab-separated files.
package events

import (
	"sort"

	"github.com/banshee-data/gaitevents/internal/gait"
)

const (
	DefaultTrackingSystems = "SU"
	DefaultTrackedPoints   = "LowerBack"
)

// Meta is the tracking metadata stamped on every row.
type Meta struct {
	TrackingSystems string
	TrackedPoints   string
}

func (m Meta) withDefaults() Meta {
	if m.TrackingSystems == "" {
		m.TrackingSystems = DefaultTrackingSystems
	}
	if m.TrackedPoints == "" {
		m.TrackedPoints = DefaultTrackedPoints
	}
	return m
}

// Event is one row of an events table. A row with OnsetMissing set is a
// padding slot and has no timestamp.
type Event struct {
	Onset           float64
	OnsetMissing    bool
	Duration        float64
	EventType       string
	TrackingSystems string
	TrackedPoints   string
}

// Table is an ordered list of events.
type Table struct {
	Events []Event
}

// Len is the number of rows including padding slots.
func (t Table) Len() int { return len(t.Events) }

// FromGaitSequences returns one "gait sequence" row per sequence.
func FromGaitSequences(seqs []gait.GaitSequence, meta Meta) Table {
	meta = meta.withDefaults()
	tbl := Table{Events: make([]Event, 0, len(seqs))}
	for _, g := range seqs {
		tbl.Events = append(tbl.Events, Event{
			Onset:           g.Onset,
			Duration:        g.Duration,
			EventType:       gait.EventGaitSequence,
			TrackingSystems: meta.TrackingSystems,
			TrackedPoints:   meta.TrackedPoints,
		})
	}
	return tbl
}

// FromContactSlots returns one zero-duration "initial contact" row per slot.
// Invalid (padding) slots become rows with OnsetMissing set.
func FromContactSlots(slots []gait.ContactSlot, meta Meta) Table {
	meta = meta.withDefaults()
	tbl := Table{Events: make([]Event, 0, len(slots))}
	for _, s := range slots {
		e := Event{
			EventType:       gait.EventInitialContact,
			TrackingSystems: meta.TrackingSystems,
			TrackedPoints:   meta.TrackedPoints,
		}
		if s.Valid {
			e.Onset = s.Onset
		} else {
			e.OnsetMissing = true
		}
		tbl.Events = append(tbl.Events, e)
	}
	return tbl
}

// Append returns t followed by the rows of others.
func (t Table) Append(others ...Table) Table {
	out := Table{Events: append([]Event(nil), t.Events...)}
	for _, o := range others {
		out.Events = append(out.Events, o.Events...)
	}
	return out
}

// SortByOnset orders rows by ascending onset. The sort is stable and rows
// without an onset go last, keeping their relative order.
func (t Table) SortByOnset() {
	sort.SliceStable(t.Events, func(i, j int) bool {
		a, b := t.Events[i], t.Events[j]
		if a.OnsetMissing || b.OnsetMissing {
			return !a.OnsetMissing && b.OnsetMissing
		}
		return a.Onset < b.Onset
	})
}

// Valid returns the rows that carry an onset.
func (t Table) Valid() []Event {
	var out []Event
	for _, e := range t.Events {
		if !e.OnsetMissing {
			out = append(out, e)
		}
	}
	return out
}
