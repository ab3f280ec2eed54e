// Package gait detects walking bouts (gait sequences) in lower-back vertical
// acceleration and the initial contacts (heel strikes) inside each bout.
//
// Both detectors are pure functions of their input and config: no state is
// kept between calls and the same input always yields identical output.
package gait

import (
	"fmt"
	"math"

	"github.com/banshee-data/gaitevents/internal/config"
	"github.com/banshee-data/gaitevents/internal/dsp"
	"github.com/banshee-data/gaitevents/internal/signal"
)

// ErrInvalidInput is returned for malformed or insufficient input.
var ErrInvalidInput = signal.ErrInvalidInput

const (
	EventGaitSequence   = "gait sequence"
	EventInitialContact = "initial contact"
)

// GaitSequence is one contiguous walking interval.
type GaitSequence struct {
	Onset    float64 `json:"onset"`    // s from recording start
	Duration float64 `json:"duration"` // s
}

// End is the exclusive end of the sequence in seconds.
func (g GaitSequence) End() float64 { return g.Onset + g.Duration }

// Contains reports whether t lies in [Onset, End).
func (g GaitSequence) Contains(t float64) bool {
	return t >= g.Onset && t < g.End()
}

// GSDConfig holds the gait sequence detector constants.
type GSDConfig struct {
	TargetSamplingFreqHz float64
	SavGolWindow         int
	SavGolOrder          int
	HighpassCutoffHz     float64
	HighpassOrder        int
	FIRCutoffHz          float64
	FIRTaps              int
	WaveletScale         float64 // samples at TargetSamplingFreqHz
	Smoothing            []dsp.GaussianStage
	EnvelopeWindowS      float64
	ActiveThresholdRatio float64
	MinEnvelopeAmplitude float64
	MinActivityG         float64 // band-limited peak, g
	BurstEdgeRatio       float64
	MinSteps             int
	MaxGapS              float64
	PaddingS             float64
	MinDurationS         float64
	// PlotResults keeps the intermediate signals on GSDResult.Diagnostics.
	PlotResults bool
}

// GSDConfigFromTuning builds a GSDConfig from a detection config.
func GSDConfigFromTuning(c *config.DetectionConfig) (GSDConfig, error) {
	if c == nil {
		c = config.EmptyDetectionConfig()
	}
	if err := c.Validate(); err != nil {
		return GSDConfig{}, err
	}
	sigmas, radii, modes := c.GetGSDGaussianSigmas(), c.GetGSDGaussianRadii(), c.GetGSDGaussianModes()
	stages := make([]dsp.GaussianStage, len(sigmas))
	for i := range stages {
		mode, err := dsp.ParsePadMode(modes[i])
		if err != nil {
			return GSDConfig{}, fmt.Errorf("gaussian stage %d: %w", i, err)
		}
		stages[i] = dsp.GaussianStage{Sigma: sigmas[i], Radius: radii[i], Mode: mode}
	}
	return GSDConfig{
		TargetSamplingFreqHz: c.GetGSDTargetSamplingFreqHz(),
		SavGolWindow:         c.GetGSDSavGolWindow(),
		SavGolOrder:          c.GetGSDSavGolOrder(),
		HighpassCutoffHz:     c.GetGSDHighpassCutoffHz(),
		HighpassOrder:        c.GetGSDHighpassOrder(),
		FIRCutoffHz:          c.GetGSDFIRCutoffHz(),
		FIRTaps:              c.GetGSDFIRTaps(),
		WaveletScale:         c.GetGSDWaveletScale(),
		Smoothing:            stages,
		EnvelopeWindowS:      c.GetGSDEnvelopeWindowS(),
		ActiveThresholdRatio: c.GetGSDActiveThresholdRatio(),
		MinEnvelopeAmplitude: c.GetGSDMinEnvelopeAmplitude(),
		MinActivityG:         c.GetGSDMinActivityG(),
		BurstEdgeRatio:       c.GetGSDBurstEdgeRatio(),
		MinSteps:             c.GetGSDMinSteps(),
		MaxGapS:              c.GetGSDMaxGapS(),
		PaddingS:             c.GetGSDPaddingS(),
		MinDurationS:         c.GetGSDMinDurationS(),
		PlotResults:          c.GetPlotResults(),
	}, nil
}

// DefaultGSDConfig returns the published gait sequence detector constants.
func DefaultGSDConfig() GSDConfig {
	cfg, err := GSDConfigFromTuning(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// ICDConfig holds the initial contact detector constants.
type ICDConfig struct {
	HighpassCutoffHz   float64
	HighpassOrder      int
	LowpassCutoffHz    float64
	LowpassOrder       int
	WaveletScaleS      float64
	CrossingSwingRatio float64
	MaxWorkers         int // 0 means GOMAXPROCS
}

// ICDConfigFromTuning builds an ICDConfig from a detection config.
func ICDConfigFromTuning(c *config.DetectionConfig) (ICDConfig, error) {
	if c == nil {
		c = config.EmptyDetectionConfig()
	}
	if err := c.Validate(); err != nil {
		return ICDConfig{}, err
	}
	return ICDConfig{
		HighpassCutoffHz:   c.GetICDHighpassCutoffHz(),
		HighpassOrder:      c.GetICDHighpassOrder(),
		LowpassCutoffHz:    c.GetICDLowpassCutoffHz(),
		LowpassOrder:       c.GetICDLowpassOrder(),
		WaveletScaleS:      c.GetICDWaveletScaleS(),
		CrossingSwingRatio: c.GetICDCrossingSwingRatio(),
		MaxWorkers:         c.GetICDMaxWorkers(),
	}, nil
}

// DefaultICDConfig returns the published initial contact detector constants.
func DefaultICDConfig() ICDConfig {
	cfg, err := ICDConfigFromTuning(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// checkFinite surfaces NaN or Inf produced by a processing stage.
func checkFinite(stage string, x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s produced non-finite value at index %d", ErrInvalidInput, stage, i)
		}
	}
	return nil
}
