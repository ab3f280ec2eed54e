package dsp

import (
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// CumulativeTrapezoid integrates x sampled at fsHz with the trapezoid rule.
// The result has len(x) samples and starts at zero.
func CumulativeTrapezoid(x []float64, fsHz float64) ([]float64, error) {
	if err := signal.ValidateSamplingFreq(fsHz); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	if len(x) < 2 {
		return out, nil
	}
	steps := make([]float64, len(x))
	dt := 1 / fsHz
	for i := 1; i < len(x); i++ {
		steps[i] = 0.5 * (x[i-1] + x[i]) * dt
	}
	floats.CumSum(out, steps)
	return out, nil
}

// Demean returns x minus its mean.
func Demean(x []float64) []float64 {
	out := append([]float64(nil), x...)
	if len(out) > 0 {
		floats.AddConst(-floats.Sum(out)/float64(len(out)), out)
	}
	return out
}
