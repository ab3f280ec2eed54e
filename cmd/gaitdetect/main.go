// Command gaitdetect finds gait sequences and initial contacts in a
// lower-back accelerometer recording and writes them as a BIDS events file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/banshee-data/gaitevents/internal/config"
	"github.com/banshee-data/gaitevents/internal/db"
	"github.com/banshee-data/gaitevents/internal/events"
	"github.com/banshee-data/gaitevents/internal/gait"
	"github.com/banshee-data/gaitevents/internal/plotting"
	sig "github.com/banshee-data/gaitevents/internal/signal"
	"github.com/banshee-data/gaitevents/internal/units"
	"github.com/banshee-data/gaitevents/internal/version"
)

var (
	input       = flag.String("input", "", "CSV recording with a header row of axis labels (required)")
	samplingHz  = flag.Float64("fs", 100, "Sampling frequency of the recording in Hz")
	axisLabel   = flag.String("axis", "ACCEL_x", "Vertical acceleration axis, e.g. ACCEL_x or LowerBack_ACCEL_x")
	unitsFlag   = flag.String("units", "", "Acceleration units of the recording ("+units.GetValidUnitsString()+"); overrides the config")
	configFile  = flag.String("config", "", "Detection config JSON (defaults apply to omitted fields)")
	outPath     = flag.String("out", "events.tsv", "Events TSV output path, or - for stdout")
	sidecarPath = flag.String("sidecar", "", "JSON sidecar path (default: next to -out)")
	dbPath      = flag.String("db", "", "Optional sqlite database to record the run in")
	plotPNG     = flag.String("plot-png", "", "Optional PNG figure path")
	plotHTML    = flag.String("plot-html", "", "Optional interactive HTML figure path")
	sortOnset   = flag.Bool("sort-onset", false, "Sort event rows by onset; padding rows move to the end")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

type options struct {
	Input       string
	SamplingHz  float64
	Axis        string
	Units       string
	ConfigFile  string
	OutPath     string
	SidecarPath string
	DBPath      string
	PlotPNG     string
	PlotHTML    string
	SortOnset   bool
}

// summary is what one run produced.
type summary struct {
	RunID           string
	GaitSequences   int
	InitialContacts int
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println("gaitdetect", version.String())
		return
	}
	if *input == "" {
		flag.Usage()
		log.Fatalf("-input is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		Input:       *input,
		SamplingHz:  *samplingHz,
		Axis:        *axisLabel,
		Units:       *unitsFlag,
		ConfigFile:  *configFile,
		OutPath:     *outPath,
		SidecarPath: *sidecarPath,
		DBPath:      *dbPath,
		PlotPNG:     *plotPNG,
		PlotHTML:    *plotHTML,
		SortOnset:   *sortOnset,
	}
	sum, err := run(ctx, opts, os.Stdout)
	if err != nil {
		log.Fatalf("gaitdetect: %v", err)
	}
	log.Printf("%d gait sequence(s), %d initial contact(s)", sum.GaitSequences, sum.InitialContacts)
	if sum.RunID != "" {
		log.Printf("Recorded run %s in %s", sum.RunID, opts.DBPath)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) (summary, error) {
	cfg := config.EmptyDetectionConfig()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadDetectionConfig(opts.ConfigFile); err != nil {
			return summary{}, err
		}
	}
	if opts.Units != "" {
		cfg.AccelerationUnits = &opts.Units
		if err := cfg.Validate(); err != nil {
			return summary{}, err
		}
	}

	axis, err := sig.ParseAxis(opts.Axis)
	if err != nil {
		return summary{}, err
	}
	if !axis.IsAccel() {
		return summary{}, fmt.Errorf("%w: %s is not an accelerometer axis", sig.ErrInvalidInput, axis)
	}

	rec, err := loadRecording(opts.Input, opts.SamplingHz, cfg.GetAccelerationUnits())
	if err != nil {
		return summary{}, err
	}

	gsdCfg, err := gait.GSDConfigFromTuning(cfg)
	if err != nil {
		return summary{}, err
	}
	if opts.PlotPNG != "" || opts.PlotHTML != "" {
		gsdCfg.PlotResults = true
	}
	icdCfg, err := gait.ICDConfigFromTuning(cfg)
	if err != nil {
		return summary{}, err
	}

	gsd, err := gait.DetectGaitSequences(rec, axis, gsdCfg)
	if err != nil {
		return summary{}, fmt.Errorf("gait sequences: %w", err)
	}
	icd, err := gait.DetectInitialContacts(ctx, rec, gsd.Sequences, axis, icdCfg)
	if err != nil {
		return summary{}, fmt.Errorf("initial contacts: %w", err)
	}

	meta := events.Meta{TrackingSystems: cfg.GetTrackingSystems(), TrackedPoints: cfg.GetTrackedPoints()}
	if cfg.TrackedPoints == nil && rec.TrackedPoint != "" {
		meta.TrackedPoints = rec.TrackedPoint
	}
	// Sequence rows, then contacts in the padded per-sequence layout with
	// each padding row inside its sequence's group.
	tbl := events.FromGaitSequences(gsd.Sequences, meta).Append(events.FromContactSlots(icd.Flatten(), meta))
	if opts.SortOnset {
		tbl.SortByOnset()
	}

	if err := writeEvents(tbl, opts, stdout); err != nil {
		return summary{}, err
	}

	sum := summary{GaitSequences: gsd.Count(), InitialContacts: icd.Count()}
	if opts.DBPath != "" {
		if sum.RunID, err = recordRun(opts, rec, axis, cfg, tbl, sum); err != nil {
			return summary{}, err
		}
	}

	if opts.PlotPNG != "" || opts.PlotHTML != "" {
		fig, err := plotting.NewFigure(rec, axis, gsd, icd)
		if err != nil {
			return summary{}, err
		}
		if opts.PlotPNG != "" {
			if err := plotting.RenderPNG(opts.PlotPNG, fig); err != nil {
				return summary{}, err
			}
		}
		if opts.PlotHTML != "" {
			if err := writeFile(opts.PlotHTML, func(w io.Writer) error { return plotting.RenderHTML(w, fig) }); err != nil {
				return summary{}, err
			}
		}
	}
	return sum, nil
}

func loadRecording(path string, fs float64, accelUnits string) (sig.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return sig.Recording{}, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	rec, err := sig.ReadCSV(f, fs)
	if err != nil {
		return sig.Recording{}, fmt.Errorf("read %s: %w", path, err)
	}
	return units.RecordingToG(rec, accelUnits)
}

func writeEvents(tbl events.Table, opts options, stdout io.Writer) error {
	if opts.OutPath == "-" {
		return tbl.WriteTSV(stdout)
	}
	if err := writeFile(opts.OutPath, tbl.WriteTSV); err != nil {
		return err
	}
	sidecar := opts.SidecarPath
	if sidecar == "" {
		sidecar = strings.TrimSuffix(opts.OutPath, ".tsv") + ".json"
	}
	return writeFile(sidecar, events.WriteSidecar)
}

func recordRun(opts options, rec sig.Recording, axis sig.Axis, cfg *config.DetectionConfig, tbl events.Table, sum summary) (string, error) {
	store, err := db.Open(opts.DBPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return store.InsertRun(db.Run{
		Source:          opts.Input,
		SamplingFreqHz:  rec.SamplingFreqHz,
		Axis:            axis.String(),
		Units:           cfg.GetAccelerationUnits(),
		Version:         version.String(),
		GaitSequences:   sum.GaitSequences,
		InitialContacts: sum.InitialContacts,
		ConfigJSON:      string(cfgJSON),
	}, tbl)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
