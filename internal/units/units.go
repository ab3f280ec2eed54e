// Package units provides shared constants and validation for acceleration units
package units

import (
	"fmt"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// StandardGravity is one g in metres per second squared.
const StandardGravity = 9.80665

// Unit constants
const (
	G    = "g"
	MPS2 = "mps2"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{G, MPS2}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "g, mps2"
}

// ToG converts an acceleration in the given units to g.
// Detection thresholds assume g, so recordings are normalised on load.
func ToG(accel float64, fromUnits string) float64 {
	switch fromUnits {
	case MPS2:
		return accel / StandardGravity
	default:
		return accel
	}
}

// SliceToG converts every sample in place and returns x.
func SliceToG(x []float64, fromUnits string) []float64 {
	if fromUnits == G || fromUnits == "" {
		return x
	}
	for i, v := range x {
		x[i] = ToG(v, fromUnits)
	}
	return x
}

// RecordingToG returns a copy of rec whose accelerometer channels are in g.
// Gyroscope channels are shared with rec unchanged.
func RecordingToG(rec signal.Recording, fromUnits string) (signal.Recording, error) {
	if !IsValid(fromUnits) {
		return signal.Recording{}, fmt.Errorf("%w: unknown units %q (valid: %s)",
			signal.ErrInvalidInput, fromUnits, GetValidUnitsString())
	}
	if fromUnits == G {
		return rec, nil
	}
	channels := make(map[signal.Axis][]float64, len(rec.Axes()))
	for _, a := range rec.Axes() {
		c, err := rec.Channel(a)
		if err != nil {
			return signal.Recording{}, err
		}
		if a.IsAccel() {
			c = SliceToG(append([]float64(nil), c...), fromUnits)
		}
		channels[a] = c
	}
	out, err := signal.NewRecording(rec.SamplingFreqHz, channels)
	if err != nil {
		return signal.Recording{}, err
	}
	out.TrackedPoint = rec.TrackedPoint
	return out, nil
}
