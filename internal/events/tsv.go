package events

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MissingValue is the BIDS token for an absent cell.
const MissingValue = "n/a"

// Columns is the header of every events file, in order.
var Columns = []string{"onset", "duration", "event_type", "tracking_systems", "tracked_points"}

// ErrMalformed is returned by ReadTSV for a file that is not an events table.
var ErrMalformed = errors.New("malformed events file")

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteTSV writes the table as a tab-separated BIDS events file.
func (t Table) WriteTSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range t.Events {
		onset := MissingValue
		if !e.OnsetMissing {
			if math.IsNaN(e.Onset) || math.IsInf(e.Onset, 0) {
				return fmt.Errorf("row %d: onset %v is not a timestamp", i, e.Onset)
			}
			onset = formatSeconds(e.Onset)
		}
		rec := []string{onset, formatSeconds(e.Duration), e.EventType, e.TrackingSystems, e.TrackedPoints}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTSV parses a file written by WriteTSV. Columns are located by header
// name; onset and duration are required, the others may be absent.
func ReadTSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Table{}, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"onset", "duration"} {
		if _, ok := col[required]; !ok {
			return Table{}, fmt.Errorf("%w: missing %q column", ErrMalformed, required)
		}
	}
	cell := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var tbl Table
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		var e Event
		if v := cell(rec, "onset"); v == MissingValue {
			e.OnsetMissing = true
		} else if e.Onset, err = strconv.ParseFloat(v, 64); err != nil {
			return Table{}, fmt.Errorf("%w: line %d: onset %q", ErrMalformed, line, v)
		}
		if v := cell(rec, "duration"); v != MissingValue {
			if e.Duration, err = strconv.ParseFloat(v, 64); err != nil {
				return Table{}, fmt.Errorf("%w: line %d: duration %q", ErrMalformed, line, v)
			}
		}
		e.EventType = cell(rec, "event_type")
		e.TrackingSystems = cell(rec, "tracking_systems")
		e.TrackedPoints = cell(rec, "tracked_points")
		tbl.Events = append(tbl.Events, e)
	}
	return tbl, nil
}

type columnDoc struct {
	LongName    string            `json:"LongName,omitempty"`
	Description string            `json:"Description"`
	Units       string            `json:"Units,omitempty"`
	Levels      map[string]string `json:"Levels,omitempty"`
}

// WriteSidecar writes the JSON sidecar describing the events columns.
func WriteSidecar(w io.Writer) error {
	doc := map[string]columnDoc{
		"onset": {
			Description: "Time of the event from the start of the recording. n/a marks a padding slot with no event.",
			Units:       "s",
		},
		"duration": {
			Description: "Length of the event; 0 for point events.",
			Units:       "s",
		},
		"event_type": {
			LongName:    "Event type",
			Description: "Kind of gait event.",
			Levels: map[string]string{
				"gait sequence":   "A contiguous interval of walking.",
				"initial contact": "The instant a foot touches the ground.",
			},
		},
		"tracking_systems": {
			Description: "Tracking system that recorded the signal the event was detected in.",
		},
		"tracked_points": {
			Description: "Body location of the sensor the event was detected from.",
		},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}
