package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// gaus2Support is the kernel half-width in units of scale.
const gaus2Support = 5

// Gaus2Kernel samples the second-derivative-of-Gaussian wavelet
// (1-2u^2)exp(-u^2), u = k/scale, over |k| <= ceil(5*scale). The kernel is
// made zero-mean and scaled by 1/sqrt(scale).
func Gaus2Kernel(scale float64) ([]float64, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: wavelet scale must be positive, got %v", signal.ErrInvalidInput, scale)
	}
	half := int(math.Ceil(gaus2Support * scale))
	k := make([]float64, 2*half+1)
	for i := range k {
		u := float64(i-half) / scale
		k[i] = (1 - 2*u*u) * math.Exp(-u*u)
	}
	floats.AddConst(-stat.Mean(k, nil), k)
	floats.Scale(1/math.Sqrt(scale), k)
	return k, nil
}

// CWT returns the single-scale continuous wavelet transform of x with the
// gaus2 wavelet. Edges are reflected.
func CWT(x []float64, scale float64) ([]float64, error) {
	k, err := Gaus2Kernel(scale)
	if err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return []float64{}, nil
	}
	return correlatePadded(x, k, PadReflect), nil
}
