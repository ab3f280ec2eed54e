package gait

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gaitevents/internal/dsp"
	"github.com/banshee-data/gaitevents/internal/monitoring"
	"github.com/banshee-data/gaitevents/internal/signal"
)

// errSegmentTooShort marks a sequence whose slice cannot be analysed. It is
// logged and yields no contacts; it never reaches the caller.
var errSegmentTooShort = errors.New("segment too short")

// InitialContact is one detected heel strike.
type InitialContact struct {
	Onset    float64 `json:"onset"`    // s from recording start
	Sequence int     `json:"sequence"` // index into the input sequences
}

// ContactSlot is one cell of the rectangular contact layout. Valid is false
// for padding slots, whose Onset carries no meaning.
type ContactSlot struct {
	InitialContact
	Valid bool
}

// ICDResult holds the contacts found in each input sequence, in input order.
type ICDResult struct {
	perSequence [][]InitialContact
}

// PerSequence returns the ragged per-sequence contact lists.
func (r *ICDResult) PerSequence() [][]InitialContact {
	return r.perSequence
}

// Count is the total number of contacts.
func (r *ICDResult) Count() int {
	n := 0
	for _, cs := range r.perSequence {
		n += len(cs)
	}
	return n
}

// MaxPerSequence is the largest number of contacts found in one sequence.
func (r *ICDResult) MaxPerSequence() int {
	m := 0
	for _, cs := range r.perSequence {
		m = max(m, len(cs))
	}
	return m
}

// Padded right-pads every sequence's contacts with invalid slots up to
// MaxPerSequence so each row has the same length.
func (r *ICDResult) Padded() [][]ContactSlot {
	width := r.MaxPerSequence()
	out := make([][]ContactSlot, len(r.perSequence))
	for i, cs := range r.perSequence {
		row := make([]ContactSlot, width)
		for j := range row {
			if j < len(cs) {
				row[j] = ContactSlot{InitialContact: cs[j], Valid: true}
			} else {
				row[j] = ContactSlot{InitialContact: InitialContact{Sequence: i}}
			}
		}
		out[i] = row
	}
	return out
}

// Flatten concatenates the padded rows in sequence order.
func (r *ICDResult) Flatten() []ContactSlot {
	var out []ContactSlot
	for _, row := range r.Padded() {
		out = append(out, row...)
	}
	return out
}

// DetectInitialContacts finds initial contacts inside each gait sequence.
//
// Each sequence is sliced from the axis at the recording's own rate, drift
// and noise filtered with zero phase, integrated, sharpened by two gaus2 CWT
// passes and searched for negative-to-positive zero crossings. Sequences are
// independent and run concurrently (cfg.MaxWorkers); the result keeps input
// order. No sequences means an empty result, not an error.
func DetectInitialContacts(ctx context.Context, rec signal.Recording, seqs []GaitSequence, axis signal.Axis, cfg ICDConfig) (*ICDResult, error) {
	fs := rec.SamplingFreqHz
	if err := signal.ValidateSamplingFreq(fs); err != nil {
		return nil, err
	}
	result := &ICDResult{perSequence: make([][]InitialContact, len(seqs))}
	if len(seqs) == 0 {
		monitoring.ReportCount(0, EventInitialContact)
		return result, nil
	}

	x, err := rec.Channel(axis)
	if err != nil {
		return nil, err
	}
	if err := signal.ValidateFinite(x); err != nil {
		return nil, err
	}
	for i, g := range seqs {
		if err := validateSequence(g, rec.Duration()); err != nil {
			return nil, fmt.Errorf("gait sequence %d: %w", i, err)
		}
	}

	hp, err := dsp.DesignButterworth(dsp.HighPass, cfg.HighpassOrder, cfg.HighpassCutoffHz, fs)
	if err != nil {
		return nil, fmt.Errorf("icd highpass: %w", err)
	}
	lp, err := dsp.DesignButterworth(dsp.LowPass, cfg.LowpassOrder, cfg.LowpassCutoffHz, fs)
	if err != nil {
		return nil, fmt.Errorf("icd lowpass: %w", err)
	}
	scale := cfg.WaveletScaleS * fs
	kernel, err := dsp.Gaus2Kernel(scale)
	if err != nil {
		return nil, err
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seq := range seqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seg := sliceSequence(x, fs, seq)
			if len(seg) < len(kernel) {
				monitoring.Logf("gait sequence %d (onset %.3f s): %v, %d samples < %d; no initial contacts",
					i, seq.Onset, errSegmentTooShort, len(seg), len(kernel))
				result.perSequence[i] = []InitialContact{}
				return nil
			}
			idx, err := contactIndices(seg, fs, scale, cfg.CrossingSwingRatio, hp, lp)
			if err != nil {
				return fmt.Errorf("gait sequence %d: %w", i, err)
			}
			contacts := make([]InitialContact, 0, len(idx))
			for _, k := range idx {
				contacts = append(contacts, InitialContact{Onset: seq.Onset + float64(k)/fs, Sequence: i})
			}
			result.perSequence[i] = contacts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	monitoring.ReportCount(result.Count(), EventInitialContact)
	return result, nil
}

// validateSequence rejects sequences that cannot be sliced from a recording
// of the given duration: non-finite values, negative onsets, non-positive
// durations and onsets at or past the end.
func validateSequence(g GaitSequence, duration float64) error {
	switch {
	case math.IsNaN(g.Onset) || math.IsInf(g.Onset, 0) || math.IsNaN(g.Duration) || math.IsInf(g.Duration, 0):
		return fmt.Errorf("%w: non-finite onset %v or duration %v", ErrInvalidInput, g.Onset, g.Duration)
	case g.Onset < 0 || !(g.Duration > 0):
		return fmt.Errorf("%w: onset %v must be >= 0 and duration %v > 0", ErrInvalidInput, g.Onset, g.Duration)
	case g.Onset >= duration:
		return fmt.Errorf("%w: onset %v s is past the end of the %.3f s recording", ErrInvalidInput, g.Onset, duration)
	}
	return nil
}

// sliceSequence returns the samples of x in [onset, onset+duration), clipped
// to the end of x. The sequence must have passed validateSequence.
func sliceSequence(x []float64, fs float64, seq GaitSequence) []float64 {
	start := min(len(x), int(math.Round(seq.Onset*fs)))
	length := math.Ceil(seq.Duration*fs - 1e-9)
	if float64(start)+length >= float64(len(x)) {
		return x[start:]
	}
	return x[start : start+max(0, int(length))]
}

// contactFeature integrates the filtered segment and sharpens it with two
// demeaned gaus2 CWT passes. Rising zero crossings of the result are the
// initial contacts.
func contactFeature(seg []float64, fs, scale float64, hp, lp dsp.SOS) ([]float64, error) {
	y := dsp.Cascade(dsp.Demean(seg), hp, lp)
	y, err := dsp.CumulativeTrapezoid(y, fs)
	if err != nil {
		return nil, err
	}
	for pass := 0; pass < 2; pass++ {
		if y, err = dsp.CWT(y, scale); err != nil {
			return nil, err
		}
		y = dsp.Demean(y)
	}
	if err := checkFinite("icd feature", y); err != nil {
		return nil, err
	}
	return y, nil
}

// contactIndices runs the contact feature chain on one segment and returns
// the sample indices of its rising zero crossings.
func contactIndices(seg []float64, fs, scale, swingRatio float64, hp, lp dsp.SOS) ([]int, error) {
	y, err := contactFeature(seg, fs, scale, hp, lp)
	if err != nil {
		return nil, err
	}

	peak := math.Max(math.Abs(floats.Max(y)), math.Abs(floats.Min(y)))
	if peak == 0 {
		return nil, nil
	}
	return dsp.RisingCrossings(y, swingRatio*peak), nil
}
