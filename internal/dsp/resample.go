// Package dsp contains the stateless signal-processing stages shared by the
// gait detectors: resampling, zero-phase filtering, Gaussian-derivative
// wavelet features, integration, envelopes and crossing/peak search.
//
// Every function returns a new slice; inputs are never modified.
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// ResampledLength is the number of samples Resample produces for n input
// samples, preserving duration.
func ResampledLength(n int, fromHz, toHz float64) int {
	if n == 0 {
		return 0
	}
	m := int(math.Round(float64(n) * toHz / fromHz))
	if m < 1 {
		m = 1
	}
	return m
}

// Resample changes the sampling rate of x from fromHz to toHz with the FFT
// method. The output keeps the duration of the input (len scaled by
// toHz/fromHz, rounded) and has no time offset: sample 0 stays at t=0. The
// signal is treated as periodic, so strongly non-periodic edges ring.
func Resample(x []float64, fromHz, toHz float64) ([]float64, error) {
	if err := signal.ValidateSamplingFreq(fromHz); err != nil {
		return nil, err
	}
	if err := signal.ValidateSamplingFreq(toHz); err != nil {
		return nil, err
	}
	n := len(x)
	m := ResampledLength(n, fromHz, toHz)
	if n == 0 {
		return []float64{}, nil
	}
	if m == n {
		return append([]float64(nil), x...), nil
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, x)

	out := make([]complex128, m/2+1)
	k := min(n, m)
	copy(out, coeff[:k/2+1])
	if k%2 == 0 {
		switch {
		case m < n:
			// The retained Nyquist bin folds in its negative-frequency twin.
			out[k/2] *= 2
		case m > n:
			// The old Nyquist bin is split across +f and -f.
			out[k/2] *= 0.5
		}
	}
	if m%2 == 0 {
		out[m/2] = complex(real(out[m/2]), 0)
	}
	out[0] = complex(real(out[0]), 0)

	y := fourier.NewFFT(m).Sequence(nil, out)
	scale := 1 / float64(n)
	for i := range y {
		y[i] *= scale
	}
	return y, nil
}

// DominantFrequency returns the frequency in Hz of the largest non-DC bin of
// the magnitude spectrum of x.
func DominantFrequency(x []float64, fsHz float64) (float64, error) {
	if err := signal.ValidateSamplingFreq(fsHz); err != nil {
		return 0, err
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 samples for a spectrum, got %d", signal.ErrInvalidInput, len(x))
	}
	coeff := fourier.NewFFT(len(x)).Coefficients(nil, x)
	best, bestMag := 1, -1.0
	for i := 1; i < len(coeff); i++ {
		if mag := cmplx.Abs(coeff[i]); mag > bestMag {
			best, bestMag = i, mag
		}
	}
	return float64(best) * fsHz / float64(len(x)), nil
}
