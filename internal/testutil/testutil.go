// Package testutil provides synthetic gait signals and recordings for
// detector tests.
package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// WalkingBout is a burst of periodic vertical acceleration that stands in
// for level walking. The burst covers whole step cycles so it begins and
// ends at a trough; footfalls sit at the acceleration peaks.
type WalkingBout struct {
	Start      float64 // s
	StepPeriod float64 // s
	Steps      int
	Amplitude  float64 // g
}

// End is the time the burst stops.
func (b WalkingBout) End() float64 {
	return b.Start + float64(b.Steps)*b.StepPeriod
}

// Footfalls returns the synthetic initial contact times, one per step.
func (b WalkingBout) Footfalls() []float64 {
	out := make([]float64, b.Steps)
	for k := range out {
		out[k] = b.Start + (float64(k)+0.5)*b.StepPeriod
	}
	return out
}

// VerticalAccel returns duration seconds of 1 g gravity sampled at fsHz with
// the bouts superimposed.
func VerticalAccel(fsHz, duration float64, bouts ...WalkingBout) []float64 {
	n := int(math.Round(duration * fsHz))
	x := make([]float64, n)
	for i := range x {
		x[i] = 1
	}
	for _, b := range bouts {
		lo := max(0, int(math.Round(b.Start*fsHz)))
		hi := min(n, int(math.Round(b.End()*fsHz)))
		for i := lo; i < hi; i++ {
			t := float64(i)/fsHz - b.Start
			x[i] -= b.Amplitude * math.Cos(2*math.Pi*t/b.StepPeriod)
		}
	}
	return x
}

// ReferenceBout is one 11 s recording at 100 Hz holding 15 footfalls 0.65 s
// apart, the first at 0.625 s.
func ReferenceBout() (fsHz, duration float64, bout WalkingBout) {
	return 100, 11, WalkingBout{Start: 0.3, StepPeriod: 0.65, Steps: 15, Amplitude: 0.3}
}

// Recording wraps a vertical channel as ACCEL_x of a recording whose other
// accelerometer axes are zero.
func Recording(t testing.TB, fsHz float64, vertical []float64) signal.Recording {
	t.Helper()
	rec, err := signal.NewRecording(fsHz, map[signal.Axis][]float64{
		signal.AccelX: vertical,
		signal.AccelY: make([]float64, len(vertical)),
		signal.AccelZ: make([]float64, len(vertical)),
	})
	if err != nil {
		t.Fatalf("build recording: %v", err)
	}
	return rec
}
