package signal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV loads a recording from comma separated text. The first row is a
// header; columns whose label parses as an Axis become channels, other
// columns (timestamps, magnetometer, ...) are skipped. A tracked point prefix
// on the first axis label ("LowerBack_ACCEL_x") is kept on the Recording.
func ReadCSV(r io.Reader, fs float64) (Recording, error) {
	if err := ValidateSamplingFreq(fs); err != nil {
		return Recording{}, err
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Recording{}, fmt.Errorf("%w: empty csv", ErrInvalidInput)
		}
		return Recording{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[int]Axis)
	seen := make(map[Axis]bool)
	var trackedPoint string
	for i, label := range header {
		a, err := ParseAxis(label)
		if err != nil {
			continue
		}
		if seen[a] {
			return Recording{}, fmt.Errorf("%w: duplicate column for %s", ErrInvalidInput, a)
		}
		seen[a] = true
		cols[i] = a
		if trackedPoint == "" {
			sensor := strings.SplitN(a.String(), "_", 2)[0]
			if idx := strings.LastIndex(strings.ToUpper(label), "_"+sensor); idx > 0 {
				trackedPoint = strings.TrimSpace(label[:idx])
			}
		}
	}
	if len(cols) == 0 {
		return Recording{}, fmt.Errorf("%w: no inertial columns in header %v", ErrInvalidInput, header)
	}

	channels := make(map[Axis][]float64, len(cols))
	for _, a := range cols {
		channels[a] = nil
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Recording{}, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		for i, a := range cols {
			if i >= len(rec) {
				return Recording{}, fmt.Errorf("%w: line %d has %d fields", ErrInvalidInput, line, len(rec))
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return Recording{}, fmt.Errorf("%w: line %d column %q: %v", ErrInvalidInput, line, header[i], err)
			}
			channels[a] = append(channels[a], v)
		}
	}

	out, err := NewRecording(fs, channels)
	if err != nil {
		return Recording{}, err
	}
	out.TrackedPoint = trackedPoint
	return out, nil
}
