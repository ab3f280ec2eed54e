package dsp

import (
	"fmt"

	"github.com/pconstantinou/savitzkygolay"

	"github.com/banshee-data/gaitevents/internal/signal"
)

// SavGol smooths x with a least-squares polynomial of the given order
// fitted over an odd window of samples. Signals shorter than the window are
// returned unchanged.
func SavGol(x []float64, window, order int, fsHz float64) ([]float64, error) {
	if err := signal.ValidateSamplingFreq(fsHz); err != nil {
		return nil, err
	}
	if window < 3 || window%2 == 0 || order >= window {
		return nil, fmt.Errorf("%w: savgol window %d / order %d", signal.ErrInvalidInput, window, order)
	}
	if len(x) < window {
		return append([]float64(nil), x...), nil
	}

	filter, err := savitzkygolay.NewFilter(window, 0, order)
	if err != nil {
		return nil, fmt.Errorf("savgol filter: %w", err)
	}
	ts := make([]float64, len(x))
	for i := range ts {
		ts[i] = float64(i) / fsHz
	}
	y, err := filter.Process(x, ts)
	if err != nil {
		return nil, fmt.Errorf("savgol process: %w", err)
	}
	if len(y) != len(x) {
		return nil, fmt.Errorf("savgol returned %d samples for %d", len(y), len(x))
	}
	return y, nil
}
