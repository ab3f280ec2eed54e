package signal

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		label string
		want  Axis
		ok    bool
	}{
		{"ACCEL_x", AccelX, true},
		{"accel_y", AccelY, true},
		{"LowerBack_ACCEL_z", AccelZ, true},
		{"LowerBack_GYRO_x", GyroX, true},
		{" GYRO_z ", GyroZ, true},
		{"timestamp", 0, false},
		{"LowerBack_MAGN_x", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseAxis(tt.label)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "ACCEL_x", AccelX.String())
	assert.Equal(t, "Axis(42)", Axis(42).String())
	assert.True(t, AccelZ.IsAccel())
	assert.False(t, GyroX.IsAccel())
}

func TestNewRecording(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rec, err := NewRecording(100, map[Axis][]float64{
			AccelX: {1, 2, 3},
			AccelY: {0, 0, 0},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, rec.Len())
		assert.InDelta(t, 0.03, rec.Duration(), 1e-12)
		assert.Equal(t, []Axis{AccelX, AccelY}, rec.Axes())

		x, err := rec.Channel(AccelX)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, x)

		_, err = rec.Channel(GyroZ)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("mismatched axis length", func(t *testing.T) {
		_, err := NewRecording(100, map[Axis][]float64{
			AccelX: {1, 2, 3},
			AccelY: {0, 0},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("non-positive sampling frequency", func(t *testing.T) {
		for _, fs := range []float64{0, -100, math.NaN(), math.Inf(1)} {
			_, err := NewRecording(fs, map[Axis][]float64{AccelX: {1}})
			assert.ErrorIs(t, err, ErrInvalidInput, "fs=%v", fs)
		}
	})

	t.Run("no channels", func(t *testing.T) {
		_, err := NewRecording(100, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestValidateFinite(t *testing.T) {
	assert.NoError(t, ValidateFinite([]float64{0, 1, -1}))
	assert.NoError(t, ValidateFinite(nil))

	err := ValidateFinite([]float64{0, math.NaN()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "index 1")

	assert.ErrorIs(t, ValidateFinite([]float64{math.Inf(-1)}), ErrInvalidInput)
}

func TestIsFlat(t *testing.T) {
	assert.True(t, IsFlat(nil))
	assert.True(t, IsFlat([]float64{1, 1, 1}))
	assert.False(t, IsFlat([]float64{1, 1, 1.0000001}))
}

func TestReadCSV(t *testing.T) {
	const data = `timestamp,LowerBack_ACCEL_x,LowerBack_ACCEL_y,LowerBack_ACCEL_z,LowerBack_GYRO_x
0.00,1.0,0.1,0.2,5
0.01,0.9,0.2,0.1,6
0.02,1.1,0.0,0.3,7
`
	rec, err := ReadCSV(strings.NewReader(data), 100)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Len())
	assert.Equal(t, "LowerBack", rec.TrackedPoint)
	assert.Equal(t, []Axis{AccelX, AccelY, AccelZ, GyroX}, rec.Axes())

	x, err := rec.Channel(AccelX)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.9, 1.1}, x)

	g, err := rec.Channel(GyroX)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7}, g)
}

func TestReadCSVErrors(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"no inertial cols": "timestamp,temp\n0,20\n",
		"bad number":       "ACCEL_x\n1.0\nabc\n",
		"duplicate axis":   "ACCEL_x,LowerBack_ACCEL_x\n1,1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(data), 100)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := ReadCSV(strings.NewReader("ACCEL_x\n1\n"), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
