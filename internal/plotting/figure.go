// Package plotting renders a detection result over its input signal, as a
// PNG (gonum/plot) or an interactive HTML page (go-echarts).
package plotting

import (
	"fmt"

	"github.com/banshee-data/gaitevents/internal/gait"
	"github.com/banshee-data/gaitevents/internal/signal"
)

// Figure is everything needed to draw one detection result.
type Figure struct {
	Title          string
	Axis           string
	SamplingFreqHz float64
	Signal         []float64
	Sequences      []gait.GaitSequence
	Contacts       []float64 // s, padding slots excluded
	Diagnostics    *gait.GSDDiagnostics
}

// NewFigure collects the axis samples and detections to draw. icd may be nil.
func NewFigure(rec signal.Recording, axis signal.Axis, gsd *gait.GSDResult, icd *gait.ICDResult) (Figure, error) {
	x, err := rec.Channel(axis)
	if err != nil {
		return Figure{}, err
	}
	if gsd == nil {
		return Figure{}, fmt.Errorf("%w: no gait sequence result to plot", signal.ErrInvalidInput)
	}
	fig := Figure{
		Title:          "Gait events",
		Axis:           axis.String(),
		SamplingFreqHz: rec.SamplingFreqHz,
		Signal:         x,
		Sequences:      gsd.Sequences,
		Diagnostics:    gsd.Diagnostics,
	}
	if rec.TrackedPoint != "" {
		fig.Title = fmt.Sprintf("Gait events (%s)", rec.TrackedPoint)
	}
	if icd != nil {
		for _, cs := range icd.PerSequence() {
			for _, c := range cs {
				fig.Contacts = append(fig.Contacts, c.Onset)
			}
		}
	}
	return fig, nil
}

// sampleAt returns the signal value nearest to t seconds.
func (f Figure) sampleAt(t float64) float64 {
	if len(f.Signal) == 0 {
		return 0
	}
	i := int(t*f.SamplingFreqHz + 0.5)
	i = max(0, min(len(f.Signal)-1, i))
	return f.Signal[i]
}

// bounds returns the signal's minimum and maximum.
func (f Figure) bounds() (lo, hi float64) {
	if len(f.Signal) == 0 {
		return 0, 1
	}
	lo, hi = f.Signal[0], f.Signal[0]
	for _, v := range f.Signal {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}
