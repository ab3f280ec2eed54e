package gait

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gaitevents/internal/dsp"
	"github.com/banshee-data/gaitevents/internal/monitoring"
	"github.com/banshee-data/gaitevents/internal/signal"
)

// GSDDiagnostics are the intermediate signals kept when PlotResults is set.
// Processed and Envelope are sampled at SamplingFreqHz.
type GSDDiagnostics struct {
	SamplingFreqHz float64
	Processed      []float64
	Envelope       []float64
	Threshold      float64
	// StepFrequencyHz is the dominant frequency of Processed.
	StepFrequencyHz float64
}

// GSDResult is the output of one DetectGaitSequences call.
type GSDResult struct {
	Sequences   []GaitSequence
	Diagnostics *GSDDiagnostics
}

// Count is the number of detected sequences.
func (r *GSDResult) Count() int { return len(r.Sequences) }

// run is a half-open range of sample indices.
type run struct{ lo, hi int }

// DetectGaitSequences finds walking bouts in the given vertical acceleration
// axis of rec.
//
// The axis is resampled to cfg.TargetSamplingFreqHz, smoothed and band
// limited, then passed twice through a gaus2 CWT with Gaussian smoothing.
// The moving-RMS envelope of that signal is thresholded against its peak.
// Active runs need enough step peaks and a band-limited amplitude of at
// least cfg.MinActivityG; each is then narrowed to its first and last step
// so that gaps are measured between bursts rather than between envelope
// skirts. Bursts closer than cfg.MaxGapS are merged, padded, mapped back to
// seconds and filtered by minimum duration.
//
// A zero-length or constant axis yields no sequences. A non-empty axis
// shorter than one wavelet support at the target rate is ErrInvalidInput.
func DetectGaitSequences(rec signal.Recording, axis signal.Axis, cfg GSDConfig) (*GSDResult, error) {
	fs := rec.SamplingFreqHz
	if err := signal.ValidateSamplingFreq(fs); err != nil {
		return nil, err
	}
	x, err := rec.Channel(axis)
	if err != nil {
		return nil, err
	}
	if err := signal.ValidateFinite(x); err != nil {
		return nil, err
	}

	result := &GSDResult{Sequences: []GaitSequence{}}
	if len(x) == 0 || signal.IsFlat(x) {
		monitoring.ReportCount(0, EventGaitSequence)
		return result, nil
	}

	target := cfg.TargetSamplingFreqHz
	kernel, err := dsp.Gaus2Kernel(cfg.WaveletScale)
	if err != nil {
		return nil, err
	}
	if m := dsp.ResampledLength(len(x), fs, target); m < len(kernel) {
		return nil, fmt.Errorf("%w: %d samples at %.4g Hz is shorter than one wavelet support (%d samples)",
			ErrInvalidInput, m, target, len(kernel))
	}

	band, processed, err := gsdFeature(x, fs, cfg)
	if err != nil {
		return nil, err
	}

	window := max(1, int(math.Round(cfg.EnvelopeWindowS*target)))
	env, err := dsp.MovingRMS(processed, window)
	if err != nil {
		return nil, err
	}
	threshold := math.Max(cfg.ActiveThresholdRatio*floats.Max(env), cfg.MinEnvelopeAmplitude)

	runs := activeRuns(env, threshold)
	runs = withMinSteps(runs, processed, cfg.MinSteps)
	runs = burstEdges(runs, band, cfg.BurstEdgeRatio, cfg.MinActivityG)
	runs = mergeRuns(runs, int(math.Round(cfg.MaxGapS*target)))

	for _, g := range padRuns(runs, target, cfg.PaddingS, rec.Duration()) {
		if g.Duration >= cfg.MinDurationS {
			result.Sequences = append(result.Sequences, g)
		}
	}

	if cfg.PlotResults {
		cadence, err := dsp.DominantFrequency(processed, target)
		if err != nil {
			return nil, fmt.Errorf("step frequency: %w", err)
		}
		result.Diagnostics = &GSDDiagnostics{
			SamplingFreqHz:  target,
			Processed:       processed,
			Envelope:        env,
			Threshold:       threshold,
			StepFrequencyHz: cadence,
		}
	}
	monitoring.ReportCount(len(result.Sequences), EventGaitSequence)
	return result, nil
}

// gsdFeature resamples x and runs the smoothing and band limiting stages,
// returning that band-limited signal (in g) and the double CWT feature
// derived from it. Both are sampled at cfg.TargetSamplingFreqHz.
func gsdFeature(x []float64, fs float64, cfg GSDConfig) (band, feature []float64, err error) {
	target := cfg.TargetSamplingFreqHz
	y, err := dsp.Resample(x, fs, target)
	if err != nil {
		return nil, nil, fmt.Errorf("resample: %w", err)
	}
	if y, err = dsp.SavGol(y, cfg.SavGolWindow, cfg.SavGolOrder, target); err != nil {
		return nil, nil, err
	}

	hp, err := dsp.DesignButterworth(dsp.HighPass, cfg.HighpassOrder, cfg.HighpassCutoffHz, target)
	if err != nil {
		return nil, nil, fmt.Errorf("gsd highpass: %w", err)
	}
	lp, err := dsp.DesignLowPassFIR(cfg.FIRTaps, cfg.FIRCutoffHz, target)
	if err != nil {
		return nil, nil, fmt.Errorf("gsd fir: %w", err)
	}
	band = dsp.Cascade(y, hp, lp)

	y = band
	for pass := 0; pass < 2; pass++ {
		if y, err = dsp.CWT(y, cfg.WaveletScale); err != nil {
			return nil, nil, err
		}
		if y, err = dsp.SuccessiveGaussian(y, cfg.Smoothing); err != nil {
			return nil, nil, err
		}
	}
	if err := checkFinite("gsd feature", y); err != nil {
		return nil, nil, err
	}
	return band, y, nil
}

// activeRuns returns the maximal runs where env >= threshold.
func activeRuns(env []float64, threshold float64) []run {
	var runs []run
	start := -1
	for i, v := range env {
		switch {
		case v >= threshold && start < 0:
			start = i
		case v < threshold && start >= 0:
			runs = append(runs, run{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start, len(env)})
	}
	return runs
}

// withMinSteps keeps runs holding at least minSteps positive local maxima of x.
func withMinSteps(runs []run, x []float64, minSteps int) []run {
	if minSteps <= 0 {
		return runs
	}
	var peaks []int
	for _, p := range dsp.LocalMaxima(x) {
		if x[p] > 0 {
			peaks = append(peaks, p)
		}
	}
	var out []run
	for _, r := range runs {
		n := 0
		for _, p := range peaks {
			if p >= r.lo && p < r.hi {
				n++
			}
		}
		if n >= minSteps {
			out = append(out, r)
		}
	}
	return out
}

// burstEdges narrows each run to the span between the first and last
// samples of band whose magnitude reaches edgeRatio of the run's peak. Runs
// whose peak is below minPeak are dropped.
func burstEdges(runs []run, band []float64, edgeRatio, minPeak float64) []run {
	var out []run
	for _, r := range runs {
		var peak float64
		for _, v := range band[r.lo:r.hi] {
			peak = math.Max(peak, math.Abs(v))
		}
		if peak == 0 || peak < minPeak {
			continue
		}
		edge := edgeRatio * peak
		lo, hi := r.hi, r.lo
		for i := r.lo; i < r.hi; i++ {
			if math.Abs(band[i]) >= edge {
				lo = min(lo, i)
				hi = i + 1
			}
		}
		out = append(out, run{lo, hi})
	}
	return out
}

// mergeRuns joins consecutive runs separated by fewer than maxGap samples.
func mergeRuns(runs []run, maxGap int) []run {
	if len(runs) == 0 {
		return nil
	}
	out := []run{runs[0]}
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.lo-last.hi < maxGap {
			last.hi = max(last.hi, r.hi)
			continue
		}
		out = append(out, r)
	}
	return out
}

// padRuns converts runs to seconds, widens each by padding on both sides
// within [0, duration] and joins any that then overlap.
func padRuns(runs []run, fs, padding, duration float64) []GaitSequence {
	var out []GaitSequence
	for _, r := range runs {
		onset := math.Max(0, float64(r.lo)/fs-padding)
		end := math.Min(duration, float64(r.hi)/fs+padding)
		if n := len(out); n > 0 && onset <= out[n-1].End() {
			out[n-1].Duration = math.Max(out[n-1].End(), end) - out[n-1].Onset
			continue
		}
		out = append(out, GaitSequence{Onset: onset, Duration: end - onset})
	}
	return out
}
