// Package signal holds the multi-axis inertial recording consumed by the gait
// detectors, the typed axis selector, and input validation.
package signal

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidInput is wrapped by every validation failure: malformed or
// insufficient signals, non-positive sampling rates and mismatched axes.
var ErrInvalidInput = errors.New("invalid input")

// Axis identifies one channel of an inertial measurement unit.
type Axis int

const (
	AccelX Axis = iota
	AccelY
	AccelZ
	GyroX
	GyroY
	GyroZ
)

var axisNames = map[Axis]string{
	AccelX: "ACCEL_x",
	AccelY: "ACCEL_y",
	AccelZ: "ACCEL_z",
	GyroX:  "GYRO_x",
	GyroY:  "GYRO_y",
	GyroZ:  "GYRO_z",
}

func (a Axis) String() string {
	if n, ok := axisNames[a]; ok {
		return n
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// IsAccel reports whether the axis is an accelerometer channel.
func (a Axis) IsAccel() bool {
	return a == AccelX || a == AccelY || a == AccelZ
}

// ParseAxis maps a channel label to an Axis. Labels may carry a tracked point
// prefix ("LowerBack_ACCEL_x"); matching is on the suffix, ignoring case.
func ParseAxis(label string) (Axis, error) {
	l := strings.TrimSpace(label)
	for a, name := range axisNames {
		if strings.EqualFold(l, name) || strings.HasSuffix(strings.ToUpper(l), "_"+strings.ToUpper(name)) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown axis label %q", ErrInvalidInput, label)
}

// Recording is a rectangular multi-axis signal for one sensor location. All
// channels share one sampling frequency and one length. A Recording is
// read-only input; detectors copy what they transform.
type Recording struct {
	SamplingFreqHz float64
	TrackedPoint   string
	channels       map[Axis][]float64
	n              int
}

// NewRecording validates and wraps the given channels. The slices are not
// copied; callers must not mutate them afterwards.
func NewRecording(fs float64, channels map[Axis][]float64) (Recording, error) {
	if err := ValidateSamplingFreq(fs); err != nil {
		return Recording{}, err
	}
	if len(channels) == 0 {
		return Recording{}, fmt.Errorf("%w: recording has no channels", ErrInvalidInput)
	}
	n := -1
	for _, a := range sortedAxes(channels) {
		c := channels[a]
		if n < 0 {
			n = len(c)
			continue
		}
		if len(c) != n {
			return Recording{}, fmt.Errorf("%w: axis %s has %d samples, expected %d", ErrInvalidInput, a, len(c), n)
		}
	}
	return Recording{SamplingFreqHz: fs, channels: channels, n: n}, nil
}

// Len returns the number of samples per channel.
func (r Recording) Len() int { return r.n }

// Duration returns the recording length in seconds.
func (r Recording) Duration() float64 {
	if r.SamplingFreqHz <= 0 {
		return 0
	}
	return float64(r.n) / r.SamplingFreqHz
}

// Axes returns the channels present, in Axis order.
func (r Recording) Axes() []Axis { return sortedAxes(r.channels) }

// Channel returns the samples of one axis. The returned slice must be
// treated as read-only.
func (r Recording) Channel(a Axis) ([]float64, error) {
	c, ok := r.channels[a]
	if !ok {
		return nil, fmt.Errorf("%w: recording has no %s channel", ErrInvalidInput, a)
	}
	return c, nil
}

// ValidateSamplingFreq rejects non-positive and non-finite rates.
func ValidateSamplingFreq(fs float64) error {
	if !(fs > 0) || math.IsInf(fs, 0) {
		return fmt.Errorf("%w: sampling frequency must be positive, got %v", ErrInvalidInput, fs)
	}
	return nil
}

// ValidateFinite returns ErrInvalidInput if x contains NaN or ±Inf.
func ValidateFinite(x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite sample %v at index %d", ErrInvalidInput, v, i)
		}
	}
	return nil
}

// IsFlat reports whether every sample equals the first one (or x is empty).
func IsFlat(x []float64) bool {
	for _, v := range x {
		if v != x[0] {
			return false
		}
	}
	return true
}

func sortedAxes(m map[Axis][]float64) []Axis {
	axes := make([]Axis, 0, len(m))
	for a := range m {
		axes = append(axes, a)
	}
	sort.Slice(axes, func(i, j int) bool { return axes[i] < axes[j] })
	return axes
}
