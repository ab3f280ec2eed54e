package dsp

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gaitevents/internal/signal"
)

func sine(n int, fs, freq, amp float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return x
}

func TestResampleRoundTrip(t *testing.T) {
	x := sine(1000, 100, 2, 1)

	down, err := Resample(x, 100, 40)
	require.NoError(t, err)
	assert.Len(t, down, 400)

	f, err := DominantFrequency(down, 40)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, f, 0.1)

	up, err := Resample(down, 40, 100)
	require.NoError(t, err)
	require.Len(t, up, 1000)
	for i := range x {
		assert.InDelta(t, x[i], up[i], 1e-6, "sample %d", i)
	}
}

func TestResampleEdgeCases(t *testing.T) {
	out, err := Resample(nil, 100, 40)
	require.NoError(t, err)
	assert.Empty(t, out)

	same, err := Resample([]float64{1, 2, 3}, 50, 50)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, same)

	_, err = Resample([]float64{1}, 0, 40)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)

	assert.Equal(t, 440, ResampledLength(1100, 100, 40))
	assert.Equal(t, 0, ResampledLength(0, 100, 40))
}

func TestPadIndex(t *testing.T) {
	got := make([]int, 0, 10)
	for i := -3; i < 7; i++ {
		got = append(got, padIndex(i, 4, PadReflect))
	}
	assert.Equal(t, []int{2, 1, 0, 0, 1, 2, 3, 3, 2, 1}, got)

	assert.Equal(t, 0, padIndex(-5, 4, PadNearest))
	assert.Equal(t, 3, padIndex(9, 4, PadNearest))

	m, err := ParsePadMode(PadNearest.String())
	require.NoError(t, err)
	assert.Equal(t, PadNearest, m)
	_, err = ParsePadMode("wrap")
	assert.Error(t, err)
}

func TestOddExtend(t *testing.T) {
	got := oddExtend([]float64{1, 2, 4}, 2)
	assert.Equal(t, []float64{-2, 0, 1, 2, 4, 6, 7}, got)
}

func TestButterworthDCResponse(t *testing.T) {
	lp, err := DesignButterworth(LowPass, 4, 3.2, 100)
	require.NoError(t, err)
	assert.Len(t, lp, 2)

	hp, err := DesignButterworth(HighPass, 3, 0.5, 40)
	require.NoError(t, err)
	assert.Len(t, hp, 2)

	dc := make([]float64, 200)
	floats.AddConst(3, dc)

	assert.InDeltaSlice(t, dc, lp.FiltFilt(dc), 1e-9)
	assert.InDeltaSlice(t, make([]float64, 200), hp.FiltFilt(dc), 1e-9)
}

func TestButterworthInvalid(t *testing.T) {
	_, err := DesignButterworth(LowPass, 0, 1, 100)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
	_, err = DesignButterworth(LowPass, 2, 60, 100)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
	_, err = DesignButterworth(HighPass, 2, 1, -1)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestFiltFiltZeroPhase(t *testing.T) {
	// A tone well inside the passband comes back in phase with itself.
	x := sine(2000, 100, 1, 1)
	lp, err := DesignButterworth(LowPass, 4, 10, 100)
	require.NoError(t, err)
	y := lp.FiltFilt(x)
	for i := 300; i < 1700; i++ {
		assert.InDelta(t, x[i], y[i], 1e-3, "sample %d", i)
	}

	// A tone far into the stopband is removed.
	hi := sine(2000, 100, 30, 1)
	z := lp.FiltFilt(hi)
	for i := 300; i < 1700; i++ {
		assert.InDelta(t, 0, z[i], 1e-3)
	}
}

func TestFIR(t *testing.T) {
	f, err := DesignLowPassFIR(61, 3.2, 40)
	require.NoError(t, err)
	assert.Len(t, f.Taps, 61)
	assert.InDelta(t, 1.0, floats.Sum(f.Taps), 1e-12)
	for i := range f.Taps {
		assert.InDelta(t, f.Taps[i], f.Taps[len(f.Taps)-1-i], 1e-15)
	}

	ramp := make([]float64, 300)
	for i := range ramp {
		ramp[i] = float64(i) * 0.1
	}
	// Odd extension keeps a straight line straight through both passes.
	assert.InDeltaSlice(t, ramp, f.FiltFilt(ramp), 1e-9)

	_, err = DesignLowPassFIR(60, 3.2, 40)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestCascade(t *testing.T) {
	x := []float64{1, 2, 3}
	out := Cascade(x)
	assert.Equal(t, x, out)
	out[0] = 9
	assert.Equal(t, 1.0, x[0])
}

func TestSavGol(t *testing.T) {
	// A polynomial of degree <= order passes through unchanged.
	x := make([]float64, 200)
	for i := range x {
		ti := float64(i) / 40
		x[i] = 1 + 0.5*ti - 0.2*ti*ti
	}
	y, err := SavGol(x, 21, 7, 40)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, y, 1e-4)

	short := []float64{1, 2, 3}
	y, err = SavGol(short, 21, 7, 40)
	require.NoError(t, err)
	assert.Equal(t, short, y)

	_, err = SavGol(x, 20, 7, 40)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestGaussian(t *testing.T) {
	k, err := GaussianKernel(2, 10)
	require.NoError(t, err)
	assert.Len(t, k, 21)
	assert.InDelta(t, 1, floats.Sum(k), 1e-12)
	assert.Equal(t, floats.MaxIdx(k), 10)

	flat := []float64{4, 4, 4, 4, 4}
	for _, mode := range []PadMode{PadReflect, PadNearest} {
		y, err := GaussianSmooth(flat, 2, 10, mode)
		require.NoError(t, err)
		assert.InDeltaSlice(t, flat, y, 1e-12)
	}

	impulse := make([]float64, 41)
	impulse[20] = 1
	y, err := SuccessiveGaussian(impulse, []GaussianStage{
		{Sigma: 2, Radius: 10, Mode: PadReflect},
		{Sigma: 3, Radius: 15, Mode: PadNearest},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, floats.MaxIdx(y))
	assert.InDelta(t, 1, floats.Sum(y), 1e-6)

	_, err = GaussianSmooth(flat, 0, 3, PadReflect)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestGaus2Kernel(t *testing.T) {
	k, err := Gaus2Kernel(10)
	require.NoError(t, err)
	assert.Len(t, k, 101)
	assert.InDelta(t, 0, floats.Sum(k), 1e-12)
	assert.Equal(t, 50, floats.MaxIdx(k))

	_, err = Gaus2Kernel(0)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestCWT(t *testing.T) {
	y, err := CWT([]float64{5, 5, 5, 5, 5, 5, 5, 5}, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, make([]float64, 8), y, 1e-12)

	// A slow tone is reproduced in phase (positive gain) by the gaus2 kernel.
	x := sine(400, 40, 1, 1)
	y, err = CWT(x, 5)
	require.NoError(t, err)
	assert.Positive(t, floats.Dot(x[50:350], y[50:350]))
}

func TestCumulativeTrapezoid(t *testing.T) {
	y, err := CumulativeTrapezoid([]float64{1, 1, 1, 1}, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 1.5}, y, 1e-12)

	y, err = CumulativeTrapezoid([]float64{0, 2, 4}, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 4}, y, 1e-12)

	_, err = CumulativeTrapezoid([]float64{1}, 0)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)

	assert.Equal(t, []float64{-1, 0, 1}, Demean([]float64{1, 2, 3}))
}

func TestMovingRMS(t *testing.T) {
	y, err := MovingRMS([]float64{3, -3, 3, -3, 3}, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 3, 3, 3, 3}, y, 1e-12)

	y, err = MovingRMS([]float64{0, 0, 4, 0, 0}, 3)
	require.NoError(t, err)
	want := []float64{0, math.Sqrt(16.0 / 3), math.Sqrt(16.0 / 3), math.Sqrt(16.0 / 3), 0}
	assert.InDeltaSlice(t, want, y, 1e-12)

	_, err = MovingRMS(nil, 0)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestRisingCrossings(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		h    float64
		want []int
	}{
		{"simple", []float64{-1, -0.5, 0.2, 1, 0.5, -1, 0, 1}, 0.1, []int{2, 6}},
		{"not armed at start", []float64{0.5, 1, -1, 1}, 0.1, []int{3}},
		{"shallow dip ignored", []float64{-1, 1, -0.05, 1}, 0.1, []int{1}},
		{"candidate reset", []float64{-1, 0.01, -0.01, 0.02, 0.5}, 0.1, []int{3}},
		{"never confirmed", []float64{-1, 0.05, 0.05}, 0.1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RisingCrossings(tt.x, tt.h)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("RisingCrossings() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocalMaxima(t *testing.T) {
	got := LocalMaxima([]float64{0, 2, 1, 3, 3, 0, 5, 5})
	assert.Equal(t, []int{1, 3}, got)
	assert.Empty(t, LocalMaxima([]float64{1, 2}))
}
