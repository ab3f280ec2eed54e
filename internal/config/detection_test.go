package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyDetectionConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 40.0, cfg.GetGSDTargetSamplingFreqHz())
	assert.Equal(t, 21, cfg.GetGSDSavGolWindow())
	assert.Equal(t, 7, cfg.GetGSDSavGolOrder())
	assert.Equal(t, 61, cfg.GetGSDFIRTaps())
	assert.Equal(t, []float64{2, 2, 3, 2}, cfg.GetGSDGaussianSigmas())
	assert.Equal(t, []int{10, 10, 15, 10}, cfg.GetGSDGaussianRadii())
	assert.Equal(t, []string{"reflect", "reflect", "nearest", "reflect"}, cfg.GetGSDGaussianModes())
	assert.Equal(t, 4, cfg.GetGSDMinSteps())
	assert.Equal(t, 0.75, cfg.GetGSDPaddingS())
	assert.False(t, cfg.GetPlotResults())
	assert.Equal(t, 0.225, cfg.GetICDWaveletScaleS())
	assert.Equal(t, 0, cfg.GetICDMaxWorkers())
	assert.Equal(t, "SU", cfg.GetTrackingSystems())
	assert.Equal(t, "LowerBack", cfg.GetTrackedPoints())
	assert.Equal(t, "g", cfg.GetAccelerationUnits())
}

// The defaults file and the Get* fallbacks must agree.
func TestDefaultsFileMatchesAccessors(t *testing.T) {
	file := MustLoadDefaultConfig()
	empty := EmptyDetectionConfig()

	assert.Equal(t, empty.GetGSDTargetSamplingFreqHz(), file.GetGSDTargetSamplingFreqHz())
	assert.Equal(t, empty.GetGSDSavGolWindow(), file.GetGSDSavGolWindow())
	assert.Equal(t, empty.GetGSDSavGolOrder(), file.GetGSDSavGolOrder())
	assert.Equal(t, empty.GetGSDHighpassCutoffHz(), file.GetGSDHighpassCutoffHz())
	assert.Equal(t, empty.GetGSDHighpassOrder(), file.GetGSDHighpassOrder())
	assert.Equal(t, empty.GetGSDFIRCutoffHz(), file.GetGSDFIRCutoffHz())
	assert.Equal(t, empty.GetGSDFIRTaps(), file.GetGSDFIRTaps())
	assert.Equal(t, empty.GetGSDWaveletScale(), file.GetGSDWaveletScale())
	assert.Equal(t, empty.GetGSDGaussianSigmas(), file.GetGSDGaussianSigmas())
	assert.Equal(t, empty.GetGSDGaussianRadii(), file.GetGSDGaussianRadii())
	assert.Equal(t, empty.GetGSDGaussianModes(), file.GetGSDGaussianModes())
	assert.Equal(t, empty.GetGSDEnvelopeWindowS(), file.GetGSDEnvelopeWindowS())
	assert.Equal(t, empty.GetGSDActiveThresholdRatio(), file.GetGSDActiveThresholdRatio())
	assert.Equal(t, empty.GetGSDMinEnvelopeAmplitude(), file.GetGSDMinEnvelopeAmplitude())
	assert.Equal(t, empty.GetGSDMinActivityG(), file.GetGSDMinActivityG())
	assert.Equal(t, empty.GetGSDBurstEdgeRatio(), file.GetGSDBurstEdgeRatio())
	assert.Equal(t, empty.GetGSDMinSteps(), file.GetGSDMinSteps())
	assert.Equal(t, empty.GetGSDMaxGapS(), file.GetGSDMaxGapS())
	assert.Equal(t, empty.GetGSDPaddingS(), file.GetGSDPaddingS())
	assert.Equal(t, empty.GetGSDMinDurationS(), file.GetGSDMinDurationS())
	assert.Equal(t, empty.GetPlotResults(), file.GetPlotResults())
	assert.Equal(t, empty.GetICDHighpassCutoffHz(), file.GetICDHighpassCutoffHz())
	assert.Equal(t, empty.GetICDHighpassOrder(), file.GetICDHighpassOrder())
	assert.Equal(t, empty.GetICDLowpassCutoffHz(), file.GetICDLowpassCutoffHz())
	assert.Equal(t, empty.GetICDLowpassOrder(), file.GetICDLowpassOrder())
	assert.Equal(t, empty.GetICDWaveletScaleS(), file.GetICDWaveletScaleS())
	assert.Equal(t, empty.GetICDCrossingSwingRatio(), file.GetICDCrossingSwingRatio())
	assert.Equal(t, empty.GetICDMaxWorkers(), file.GetICDMaxWorkers())
	assert.Equal(t, empty.GetTrackingSystems(), file.GetTrackingSystems())
	assert.Equal(t, empty.GetTrackedPoints(), file.GetTrackedPoints())
	assert.Equal(t, empty.GetAccelerationUnits(), file.GetAccelerationUnits())
}

func TestLoadDetectionConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	testJSON := `{
  "gsd_target_sampling_freq_hz": 50,
  "gsd_min_steps": 3,
  "plot_results": true,
  "tracked_points": "LeftFoot"
}`
	require.NoError(t, os.WriteFile(path, []byte(testJSON), 0644))

	cfg, err := LoadDetectionConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.GetGSDTargetSamplingFreqHz())
	assert.Equal(t, 3, cfg.GetGSDMinSteps())
	assert.True(t, cfg.GetPlotResults())
	assert.Equal(t, "LeftFoot", cfg.GetTrackedPoints())
	// Omitted fields fall back.
	assert.Equal(t, 0.75, cfg.GetGSDPaddingS())
}

func TestLoadDetectionConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDetectionConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	yaml := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(yaml, []byte("{}"), 0644))
	_, err = LoadDetectionConfig(yaml)
	assert.ErrorContains(t, err, ".json extension")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"gsd_fir_taps": "many"`), 0644))
	_, err = LoadDetectionConfig(bad)
	assert.ErrorContains(t, err, "parse")

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"gsd_fir_taps": 60}`), 0644))
	_, err = LoadDetectionConfig(invalid)
	assert.ErrorContains(t, err, "gsd_fir_taps")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DetectionConfig
		wantErr string
	}{
		{"zero target rate", DetectionConfig{GSDTargetSamplingFreqHz: ptrFloat64(0)}, "gsd_target_sampling_freq_hz"},
		{"negative padding", DetectionConfig{GSDPaddingS: ptrFloat64(-1)}, "gsd_padding_s"},
		{"threshold ratio one", DetectionConfig{GSDActiveThresholdRatio: ptrFloat64(1)}, "gsd_active_threshold_ratio"},
		{"negative activity floor", DetectionConfig{GSDMinActivityG: ptrFloat64(-0.01)}, "gsd_min_activity_g"},
		{"edge ratio zero", DetectionConfig{GSDBurstEdgeRatio: ptrFloat64(0)}, "gsd_burst_edge_ratio"},
		{"swing ratio negative", DetectionConfig{ICDCrossingSwingRatio: ptrFloat64(-0.1)}, "icd_crossing_swing_ratio"},
		{"even savgol window", DetectionConfig{GSDSavGolWindow: ptrInt(20)}, "gsd_savgol_window"},
		{"savgol order too high", DetectionConfig{GSDSavGolOrder: ptrInt(21)}, "gsd_savgol_order"},
		{"zero filter order", DetectionConfig{ICDLowpassOrder: ptrInt(0)}, "icd_lowpass_order"},
		{"negative workers", DetectionConfig{ICDMaxWorkers: ptrInt(-2)}, "icd_max_workers"},
		{"stage count mismatch", DetectionConfig{GSDGaussianSigmas: []float64{2}}, "gaussian stages"},
		{"unknown mode", DetectionConfig{GSDGaussianModes: []string{"reflect", "wrap", "nearest", "reflect"}}, "unknown mode"},
		{"bad units", DetectionConfig{AccelerationUnits: ptrString("furlongs")}, "acceleration_units"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	ok := DetectionConfig{PlotResults: ptrBool(true), GSDMinSteps: ptrInt(0)}
	assert.NoError(t, ok.Validate())
}
