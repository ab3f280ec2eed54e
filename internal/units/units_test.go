package units

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/gaitevents/internal/signal"
)

func TestToG(t *testing.T) {
	tests := []struct {
		name     string
		accel    float64
		units    string
		expected float64
	}{
		{"1 g stays 1 g", 1.0, G, 1.0},
		{"gravity in m/s^2", 9.80665, MPS2, 1.0},
		{"heel strike peak", 19.6133, MPS2, 2.0},
		{"zero", 0.0, MPS2, 0.0},
		{"negative", -4.903325, MPS2, -0.5},
		{"unknown units pass through", 3.0, "furlongs", 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToG(tt.accel, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ToG(%f, %s) = %f, want %f", tt.accel, tt.units, result, tt.expected)
			}
		})
	}
}

func TestSliceToG(t *testing.T) {
	x := []float64{9.80665, 0, -9.80665}
	got := SliceToG(x, MPS2)
	want := []float64{1, 0, -1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("SliceToG()[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	y := []float64{1, 2}
	if out := SliceToG(y, G); &out[0] != &y[0] || out[1] != 2 {
		t.Errorf("SliceToG with g units should return input untouched")
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid g", G, true},
		{"valid mps2", MPS2, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "G", false},
		{"case sensitive", "MPS2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "g, mps2" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}

func TestRecordingToG(t *testing.T) {
	rec, err := signal.NewRecording(100, map[signal.Axis][]float64{
		signal.AccelX: {StandardGravity, 0, -2 * StandardGravity},
		signal.GyroX:  {10, 20, 30},
	})
	if err != nil {
		t.Fatal(err)
	}
	rec.TrackedPoint = "LowerBack"

	out, err := RecordingToG(rec, MPS2)
	if err != nil {
		t.Fatalf("RecordingToG: %v", err)
	}
	ax, _ := out.Channel(signal.AccelX)
	want := []float64{1, 0, -2}
	for i := range want {
		if math.Abs(ax[i]-want[i]) > 1e-12 {
			t.Errorf("AccelX[%d] = %v, want %v", i, ax[i], want[i])
		}
	}
	gx, _ := out.Channel(signal.GyroX)
	if gx[0] != 10 {
		t.Errorf("gyro channel changed: %v", gx)
	}
	if out.TrackedPoint != "LowerBack" {
		t.Errorf("TrackedPoint = %q", out.TrackedPoint)
	}

	orig, _ := rec.Channel(signal.AccelX)
	if orig[0] != StandardGravity {
		t.Errorf("input recording modified: %v", orig)
	}

	same, err := RecordingToG(rec, G)
	if err != nil || same.Len() != 3 {
		t.Errorf("RecordingToG(g) = %v, %v", same.Len(), err)
	}

	if _, err := RecordingToG(rec, "furlongs"); !errors.Is(err, signal.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
