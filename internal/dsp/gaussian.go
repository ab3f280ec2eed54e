package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// GaussianStage is one pass of SuccessiveGaussian.
type GaussianStage struct {
	Sigma  float64 // samples
	Radius int     // kernel half-width in samples
	Mode   PadMode
}

// GaussianKernel returns a normalised Gaussian of 2*radius+1 taps.
func GaussianKernel(sigma float64, radius int) ([]float64, error) {
	if !(sigma > 0) || radius < 0 {
		return nil, fmt.Errorf("%w: gaussian sigma %.4g radius %d", signal.ErrInvalidInput, sigma, radius)
	}
	k := make([]float64, 2*radius+1)
	for i := range k {
		u := float64(i-radius) / sigma
		k[i] = math.Exp(-0.5 * u * u)
	}
	floats.Scale(1/floats.Sum(k), k)
	return k, nil
}

// GaussianSmooth convolves x with a truncated Gaussian using mode at the edges.
func GaussianSmooth(x []float64, sigma float64, radius int, mode PadMode) ([]float64, error) {
	k, err := GaussianKernel(sigma, radius)
	if err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return []float64{}, nil
	}
	return correlatePadded(x, k, mode), nil
}

// SuccessiveGaussian applies the stages in order.
func SuccessiveGaussian(x []float64, stages []GaussianStage) ([]float64, error) {
	out := append([]float64(nil), x...)
	for i, st := range stages {
		var err error
		out, err = GaussianSmooth(out, st.Sigma, st.Radius, st.Mode)
		if err != nil {
			return nil, fmt.Errorf("gaussian stage %d: %w", i, err)
		}
	}
	return out, nil
}
