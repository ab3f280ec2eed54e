package dsp

import (
	"fmt"
	"math"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// MovingRMS returns the root-mean-square of x over a centred window of the
// given length (rounded up to odd). Near the edges the window shrinks to the
// samples available.
func MovingRMS(x []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: rms window must be >= 1, got %d", signal.ErrInvalidInput, window)
	}
	n := len(x)
	half := window / 2
	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v*v
	}
	out := make([]float64, n)
	for i := range out {
		lo := max(0, i-half)
		hi := min(n, i+half+1)
		ms := (prefix[hi] - prefix[lo]) / float64(hi-lo)
		out[i] = math.Sqrt(max(ms, 0))
	}
	return out, nil
}
