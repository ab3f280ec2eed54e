package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical detection defaults file.
const DefaultConfigPath = "config/detection.defaults.json"

// DetectionConfig is the JSON tuning file for both detectors and the event
// writer. Every field is optional: the Get* accessors fall back to the
// published defaults, so partial configs are safe.
type DetectionConfig struct {
	// Gait sequence detector
	GSDTargetSamplingFreqHz *float64  `json:"gsd_target_sampling_freq_hz,omitempty"`
	GSDSavGolWindow         *int      `json:"gsd_savgol_window,omitempty"`
	GSDSavGolOrder          *int      `json:"gsd_savgol_order,omitempty"`
	GSDHighpassCutoffHz     *float64  `json:"gsd_highpass_cutoff_hz,omitempty"`
	GSDHighpassOrder        *int      `json:"gsd_highpass_order,omitempty"`
	GSDFIRCutoffHz          *float64  `json:"gsd_fir_cutoff_hz,omitempty"`
	GSDFIRTaps              *int      `json:"gsd_fir_taps,omitempty"`
	GSDWaveletScale         *float64  `json:"gsd_wavelet_scale,omitempty"`
	GSDGaussianSigmas       []float64 `json:"gsd_gaussian_sigmas,omitempty"`
	GSDGaussianRadii        []int     `json:"gsd_gaussian_radii,omitempty"`
	GSDGaussianModes        []string  `json:"gsd_gaussian_modes,omitempty"`
	GSDEnvelopeWindowS      *float64  `json:"gsd_envelope_window_s,omitempty"`
	GSDActiveThresholdRatio *float64  `json:"gsd_active_threshold_ratio,omitempty"`
	GSDMinEnvelopeAmplitude *float64  `json:"gsd_min_envelope_amplitude,omitempty"`
	GSDMinActivityG         *float64  `json:"gsd_min_activity_g,omitempty"`
	GSDBurstEdgeRatio       *float64  `json:"gsd_burst_edge_ratio,omitempty"`
	GSDMinSteps             *int      `json:"gsd_min_steps,omitempty"`
	GSDMaxGapS              *float64  `json:"gsd_max_gap_s,omitempty"`
	GSDPaddingS             *float64  `json:"gsd_padding_s,omitempty"`
	GSDMinDurationS         *float64  `json:"gsd_min_duration_s,omitempty"`
	PlotResults             *bool     `json:"plot_results,omitempty"`

	// Initial contact detector
	ICDHighpassCutoffHz   *float64 `json:"icd_highpass_cutoff_hz,omitempty"`
	ICDHighpassOrder      *int     `json:"icd_highpass_order,omitempty"`
	ICDLowpassCutoffHz    *float64 `json:"icd_lowpass_cutoff_hz,omitempty"`
	ICDLowpassOrder       *int     `json:"icd_lowpass_order,omitempty"`
	ICDWaveletScaleS      *float64 `json:"icd_wavelet_scale_s,omitempty"`
	ICDCrossingSwingRatio *float64 `json:"icd_crossing_swing_ratio,omitempty"`
	ICDMaxWorkers         *int     `json:"icd_max_workers,omitempty"`

	// Event table metadata
	TrackingSystems   *string `json:"tracking_systems,omitempty"`
	TrackedPoints     *string `json:"tracked_points,omitempty"`
	AccelerationUnits *string `json:"acceleration_units,omitempty"` // "g" or "mps2"
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyDetectionConfig returns a DetectionConfig with every field unset.
func EmptyDetectionConfig() *DetectionConfig {
	return &DetectionConfig{}
}

// LoadDetectionConfig loads a DetectionConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadDetectionConfig(path string) (*DetectionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDetectionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory or
// one of its parents. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *DetectionConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadDetectionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set. Cross-field checks that depend on
// the sampling frequency happen when the detectors are built.
func (c *DetectionConfig) Validate() error {
	positive := map[string]*float64{
		"gsd_target_sampling_freq_hz": c.GSDTargetSamplingFreqHz,
		"gsd_highpass_cutoff_hz":      c.GSDHighpassCutoffHz,
		"gsd_fir_cutoff_hz":           c.GSDFIRCutoffHz,
		"gsd_wavelet_scale":           c.GSDWaveletScale,
		"gsd_envelope_window_s":       c.GSDEnvelopeWindowS,
		"icd_highpass_cutoff_hz":      c.ICDHighpassCutoffHz,
		"icd_lowpass_cutoff_hz":       c.ICDLowpassCutoffHz,
		"icd_wavelet_scale_s":         c.ICDWaveletScaleS,
	}
	for name, v := range positive {
		if v != nil && !(*v > 0) {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}

	nonNegative := map[string]*float64{
		"gsd_min_envelope_amplitude": c.GSDMinEnvelopeAmplitude,
		"gsd_min_activity_g":         c.GSDMinActivityG,
		"gsd_max_gap_s":              c.GSDMaxGapS,
		"gsd_padding_s":              c.GSDPaddingS,
		"gsd_min_duration_s":         c.GSDMinDurationS,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}

	if c.GSDActiveThresholdRatio != nil {
		if r := *c.GSDActiveThresholdRatio; r <= 0 || r >= 1 {
			return fmt.Errorf("gsd_active_threshold_ratio must be in (0, 1), got %f", r)
		}
	}
	if c.GSDBurstEdgeRatio != nil {
		if r := *c.GSDBurstEdgeRatio; r <= 0 || r >= 1 {
			return fmt.Errorf("gsd_burst_edge_ratio must be in (0, 1), got %f", r)
		}
	}
	if c.ICDCrossingSwingRatio != nil {
		if r := *c.ICDCrossingSwingRatio; r < 0 || r >= 1 {
			return fmt.Errorf("icd_crossing_swing_ratio must be in [0, 1), got %f", r)
		}
	}

	if c.GSDSavGolWindow != nil && (*c.GSDSavGolWindow < 3 || *c.GSDSavGolWindow%2 == 0) {
		return fmt.Errorf("gsd_savgol_window must be odd and >= 3, got %d", *c.GSDSavGolWindow)
	}
	if c.GSDSavGolOrder != nil && *c.GSDSavGolOrder >= c.GetGSDSavGolWindow() {
		return fmt.Errorf("gsd_savgol_order %d must be less than the window %d", *c.GSDSavGolOrder, c.GetGSDSavGolWindow())
	}
	if c.GSDFIRTaps != nil && (*c.GSDFIRTaps < 3 || *c.GSDFIRTaps%2 == 0) {
		return fmt.Errorf("gsd_fir_taps must be odd and >= 3, got %d", *c.GSDFIRTaps)
	}
	for name, v := range map[string]*int{
		"gsd_highpass_order": c.GSDHighpassOrder,
		"icd_highpass_order": c.ICDHighpassOrder,
		"icd_lowpass_order":  c.ICDLowpassOrder,
	} {
		if v != nil && *v < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", name, *v)
		}
	}
	if c.GSDMinSteps != nil && *c.GSDMinSteps < 0 {
		return fmt.Errorf("gsd_min_steps must be non-negative, got %d", *c.GSDMinSteps)
	}
	if c.ICDMaxWorkers != nil && *c.ICDMaxWorkers < 0 {
		return fmt.Errorf("icd_max_workers must be non-negative, got %d", *c.ICDMaxWorkers)
	}

	sigmas, radii, modes := c.GetGSDGaussianSigmas(), c.GetGSDGaussianRadii(), c.GetGSDGaussianModes()
	if len(sigmas) != len(radii) || len(sigmas) != len(modes) {
		return fmt.Errorf("gsd gaussian stages disagree: %d sigmas, %d radii, %d modes",
			len(sigmas), len(radii), len(modes))
	}
	for i, m := range modes {
		if m != "reflect" && m != "nearest" {
			return fmt.Errorf("gsd_gaussian_modes[%d]: unknown mode %q", i, m)
		}
	}

	if c.AccelerationUnits != nil && *c.AccelerationUnits != "g" && *c.AccelerationUnits != "mps2" {
		return fmt.Errorf("acceleration_units must be g or mps2, got %q", *c.AccelerationUnits)
	}
	return nil
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func getString(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

// GetGSDTargetSamplingFreqHz returns the rate the GSD resamples to.
func (c *DetectionConfig) GetGSDTargetSamplingFreqHz() float64 {
	return getFloat(c.GSDTargetSamplingFreqHz, 40)
}

func (c *DetectionConfig) GetGSDSavGolWindow() int { return getInt(c.GSDSavGolWindow, 21) }
func (c *DetectionConfig) GetGSDSavGolOrder() int  { return getInt(c.GSDSavGolOrder, 7) }

func (c *DetectionConfig) GetGSDHighpassCutoffHz() float64 {
	return getFloat(c.GSDHighpassCutoffHz, 0.5)
}

func (c *DetectionConfig) GetGSDHighpassOrder() int { return getInt(c.GSDHighpassOrder, 4) }

func (c *DetectionConfig) GetGSDFIRCutoffHz() float64 { return getFloat(c.GSDFIRCutoffHz, 3.2) }
func (c *DetectionConfig) GetGSDFIRTaps() int         { return getInt(c.GSDFIRTaps, 61) }

// GetGSDWaveletScale returns the gaus2 scale in samples at the target rate.
func (c *DetectionConfig) GetGSDWaveletScale() float64 {
	return getFloat(c.GSDWaveletScale, 10)
}

// GetGSDGaussianSigmas returns the sigma (samples) of each smoothing stage.
func (c *DetectionConfig) GetGSDGaussianSigmas() []float64 {
	if c.GSDGaussianSigmas == nil {
		return []float64{2, 2, 3, 2}
	}
	return c.GSDGaussianSigmas
}

// GetGSDGaussianRadii returns the kernel half-width of each smoothing stage.
func (c *DetectionConfig) GetGSDGaussianRadii() []int {
	if c.GSDGaussianRadii == nil {
		return []int{10, 10, 15, 10}
	}
	return c.GSDGaussianRadii
}

// GetGSDGaussianModes returns the boundary mode of each smoothing stage.
func (c *DetectionConfig) GetGSDGaussianModes() []string {
	if c.GSDGaussianModes == nil {
		return []string{"reflect", "reflect", "nearest", "reflect"}
	}
	return c.GSDGaussianModes
}

func (c *DetectionConfig) GetGSDEnvelopeWindowS() float64 {
	return getFloat(c.GSDEnvelopeWindowS, 1.0)
}

func (c *DetectionConfig) GetGSDActiveThresholdRatio() float64 {
	return getFloat(c.GSDActiveThresholdRatio, 0.2)
}

func (c *DetectionConfig) GetGSDMinEnvelopeAmplitude() float64 {
	return getFloat(c.GSDMinEnvelopeAmplitude, 1e-9)
}

// GetGSDMinActivityG is the band-limited peak acceleration, in g, below
// which a candidate bout is treated as sensor noise.
func (c *DetectionConfig) GetGSDMinActivityG() float64 {
	return getFloat(c.GSDMinActivityG, 0.02)
}

// GetGSDBurstEdgeRatio locates a bout's first and last step: the first and
// last samples reaching this fraction of the bout's peak band-limited
// amplitude. Merge gaps are measured between those edges.
func (c *DetectionConfig) GetGSDBurstEdgeRatio() float64 {
	return getFloat(c.GSDBurstEdgeRatio, 0.5)
}

func (c *DetectionConfig) GetGSDMinSteps() int         { return getInt(c.GSDMinSteps, 4) }
func (c *DetectionConfig) GetGSDMaxGapS() float64      { return getFloat(c.GSDMaxGapS, 3.0) }
func (c *DetectionConfig) GetGSDPaddingS() float64     { return getFloat(c.GSDPaddingS, 0.75) }
func (c *DetectionConfig) GetGSDMinDurationS() float64 { return getFloat(c.GSDMinDurationS, 3.0) }

// GetPlotResults reports whether detector diagnostics are kept for plotting.
func (c *DetectionConfig) GetPlotResults() bool {
	if c.PlotResults == nil {
		return false
	}
	return *c.PlotResults
}

func (c *DetectionConfig) GetICDHighpassCutoffHz() float64 {
	return getFloat(c.ICDHighpassCutoffHz, 0.25)
}

func (c *DetectionConfig) GetICDHighpassOrder() int { return getInt(c.ICDHighpassOrder, 2) }

func (c *DetectionConfig) GetICDLowpassCutoffHz() float64 {
	return getFloat(c.ICDLowpassCutoffHz, 3.2)
}

func (c *DetectionConfig) GetICDLowpassOrder() int { return getInt(c.ICDLowpassOrder, 4) }

// GetICDWaveletScaleS returns the gaus2 scale as a duration in seconds.
func (c *DetectionConfig) GetICDWaveletScaleS() float64 {
	return getFloat(c.ICDWaveletScaleS, 0.225)
}

func (c *DetectionConfig) GetICDCrossingSwingRatio() float64 {
	return getFloat(c.ICDCrossingSwingRatio, 0.1)
}

// GetICDMaxWorkers returns the per-sequence concurrency limit; 0 means GOMAXPROCS.
func (c *DetectionConfig) GetICDMaxWorkers() int { return getInt(c.ICDMaxWorkers, 0) }

func (c *DetectionConfig) GetTrackingSystems() string { return getString(c.TrackingSystems, "SU") }
func (c *DetectionConfig) GetTrackedPoints() string   { return getString(c.TrackedPoints, "LowerBack") }

// GetAccelerationUnits returns the unit of the input acceleration channels.
func (c *DetectionConfig) GetAccelerationUnits() string {
	return getString(c.AccelerationUnits, "g")
}
