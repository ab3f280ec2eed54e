package dsp

import (
	"fmt"
	"math"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// FilterKind selects the response of a designed filter.
type FilterKind int

const (
	LowPass FilterKind = iota
	HighPass
)

func (k FilterKind) String() string {
	if k == HighPass {
		return "highpass"
	}
	return "lowpass"
}

// Biquad is one second-order section normalised so that a0 == 1.
type Biquad struct {
	B0, B1, B2 float64 // Numerator coefficients
	A1, A2     float64 // Denominator coefficients
}

// dcGain is the section's response to a constant input.
func (q Biquad) dcGain() float64 {
	return (q.B0 + q.B1 + q.B2) / (1 + q.A1 + q.A2)
}

// SOS is a cascade of second-order sections.
type SOS []Biquad

// DesignButterworth returns a digital Butterworth filter as second-order
// sections, designed by bilinear transform with the cutoff pre-warped. Odd
// orders end with a first-order section (B2 == A2 == 0).
func DesignButterworth(kind FilterKind, order int, cutoffHz, fsHz float64) (SOS, error) {
	if err := signal.ValidateSamplingFreq(fsHz); err != nil {
		return nil, err
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: butterworth order must be >= 1, got %d", signal.ErrInvalidInput, order)
	}
	if !(cutoffHz > 0) || cutoffHz >= fsHz/2 {
		return nil, fmt.Errorf("%w: cutoff %.4g Hz outside (0, %.4g) for fs=%.4g Hz",
			signal.ErrInvalidInput, cutoffHz, fsHz/2, fsHz)
	}

	w0 := 2 * math.Pi * cutoffHz / fsHz
	cosW, sinW := math.Cos(w0), math.Sin(w0)

	sos := make(SOS, 0, (order+1)/2)
	for k := 0; k < order/2; k++ {
		q := 1 / (2 * math.Sin(float64(2*k+1)*math.Pi/float64(2*order)))
		alpha := sinW / (2 * q)
		a0 := 1 + alpha
		var b0, b1 float64
		if kind == HighPass {
			b0, b1 = (1+cosW)/2, -(1 + cosW)
		} else {
			b0, b1 = (1-cosW)/2, 1-cosW
		}
		sos = append(sos, Biquad{
			B0: b0 / a0,
			B1: b1 / a0,
			B2: b0 / a0,
			A1: -2 * cosW / a0,
			A2: (1 - alpha) / a0,
		})
	}
	if order%2 == 1 {
		k := math.Tan(w0 / 2)
		a1 := (k - 1) / (k + 1)
		if kind == HighPass {
			sos = append(sos, Biquad{B0: 1 / (1 + k), B1: -1 / (1 + k), A1: a1})
		} else {
			sos = append(sos, Biquad{B0: k / (1 + k), B1: k / (1 + k), A1: a1})
		}
	}
	return sos, nil
}

// filterFrom runs Direct Form II Transposed sections starting from state zi.
// zi is consumed.
func (s SOS) filterFrom(x []float64, zi [][2]float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		for k := range s {
			q := &s[k]
			z := &zi[k]
			y := q.B0*v + z[0]
			z[0] = q.B1*v - q.A1*y + z[1]
			z[1] = q.B2*v - q.A2*y
			v = y
		}
		out[i] = v
	}
	return out
}

// steadyState returns per-section states that make the cascade's output
// settled for a unit constant input.
func (s SOS) steadyState() [][2]float64 {
	zi := make([][2]float64, len(s))
	scale := 1.0
	for k, q := range s {
		g := q.dcGain()
		zi[k] = [2]float64{(g - q.B0) * scale, (q.B2 - q.A2*g) * scale}
		scale *= g
	}
	return zi
}

func scaledState(zi [][2]float64, by float64) [][2]float64 {
	out := make([][2]float64, len(zi))
	for k, z := range zi {
		out[k] = [2]float64{z[0] * by, z[1] * by}
	}
	return out
}

// PadLen is the odd-extension length FiltFilt uses for a signal long enough.
func (s SOS) PadLen() int {
	return 3 * (2*len(s) + 1)
}

// FiltFilt applies the cascade forward and backward so the result has zero
// phase and squared magnitude response. Edges are handled by odd extension of
// PadLen samples (clamped to len(x)-1) with steady-state initial conditions.
func (s SOS) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 || len(s) == 0 {
		return append([]float64(nil), x...)
	}
	padlen := clampPadlen(s.PadLen(), n)
	ext := oddExtend(x, padlen)
	zi := s.steadyState()

	y := s.filterFrom(ext, scaledState(zi, ext[0]))
	y = reversed(y)
	y = s.filterFrom(y, scaledState(zi, y[0]))
	y = reversed(y)
	return y[padlen : padlen+n]
}

// ZeroPhase is a filter stage that can be applied forward and backward.
type ZeroPhase interface {
	FiltFilt(x []float64) []float64
}

// Cascade applies zero-phase stages in order and returns a new slice.
func Cascade(x []float64, stages ...ZeroPhase) []float64 {
	out := append([]float64(nil), x...)
	for _, st := range stages {
		out = st.FiltFilt(out)
	}
	return out
}
