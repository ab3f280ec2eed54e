package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// FIR is a symmetric (linear-phase) finite impulse response filter.
type FIR struct {
	Taps []float64
}

// DesignLowPassFIR returns a Hamming-windowed sinc low-pass filter with an
// odd number of taps and unit DC gain.
func DesignLowPassFIR(taps int, cutoffHz, fsHz float64) (FIR, error) {
	if err := signal.ValidateSamplingFreq(fsHz); err != nil {
		return FIR{}, err
	}
	if taps < 3 || taps%2 == 0 {
		return FIR{}, fmt.Errorf("%w: fir taps must be odd and >= 3, got %d", signal.ErrInvalidInput, taps)
	}
	if !(cutoffHz > 0) || cutoffHz >= fsHz/2 {
		return FIR{}, fmt.Errorf("%w: fir cutoff %.4g Hz outside (0, %.4g)", signal.ErrInvalidInput, cutoffHz, fsHz/2)
	}

	fc := cutoffHz / fsHz
	mid := (taps - 1) / 2
	h := make([]float64, taps)
	for i := range h {
		k := float64(i - mid)
		var sinc float64
		if k == 0 {
			sinc = 2 * fc
		} else {
			sinc = math.Sin(2*math.Pi*fc*k) / (math.Pi * k)
		}
		w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(taps-1))
		h[i] = sinc * w
	}
	floats.Scale(1/floats.Sum(h), h)
	return FIR{Taps: h}, nil
}

// PadLen is the odd-extension length FiltFilt uses for a signal long enough.
func (f FIR) PadLen() int {
	return 3 * len(f.Taps)
}

// FiltFilt convolves x with the taps forward and backward (zero phase,
// squared magnitude). Edges are odd-extended by PadLen samples, clamped to
// len(x)-1.
func (f FIR) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 || len(f.Taps) == 0 {
		return append([]float64(nil), x...)
	}
	padlen := clampPadlen(f.PadLen(), n)
	ext := oddExtend(x, padlen)
	y := correlateSame(ext, f.Taps)
	y = reversed(correlateSame(reversed(y), f.Taps))
	return y[padlen : padlen+n]
}

// correlateSame slides the centred kernel over x; samples beyond either end
// count as zero. The kernel length must be odd.
func correlateSame(x, kernel []float64) []float64 {
	n, half := len(x), len(kernel)/2
	out := make([]float64, n)
	for i := range out {
		var acc float64
		lo := max(0, half-i)
		hi := min(len(kernel), n-i+half)
		for k := lo; k < hi; k++ {
			acc += kernel[k] * x[i+k-half]
		}
		out[i] = acc
	}
	return out
}

// correlatePadded slides the centred kernel over x with the given boundary
// policy. The kernel length must be odd.
func correlatePadded(x, kernel []float64, mode PadMode) []float64 {
	n, half := len(x), len(kernel)/2
	out := make([]float64, n)
	for i := range out {
		var acc float64
		for k, w := range kernel {
			acc += w * x[padIndex(i+k-half, n, mode)]
		}
		out[i] = acc
	}
	return out
}
