package plotting

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	signalColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	sequenceColor = color.RGBA{R: 44, G: 160, B: 44, A: 60}
	contactColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	envColor      = color.RGBA{R: 148, G: 103, B: 189, A: 255}
)

// RenderPNG draws the figure to a PNG file. When the figure carries
// diagnostics a second panel shows the processed signal, its envelope and the
// activity threshold.
func RenderPNG(path string, fig Figure) error {
	top, err := signalPlot(fig)
	if err != nil {
		return err
	}
	rows := [][]*plot.Plot{{top}}
	height := 6 * vg.Inch
	if fig.Diagnostics != nil {
		diag, err := diagnosticsPlot(fig)
		if err != nil {
			return err
		}
		rows = append(rows, []*plot.Plot{diag})
		height = 10 * vg.Inch
	}

	img := vgimg.New(14*vg.Inch, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(rows),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 4 * vg.Millimeter,
	}
	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write png: %w", err)
	}
	return f.Close()
}

func signalPlot(fig Figure) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = fig.Axis

	lo, hi := fig.bounds()
	for _, g := range fig.Sequences {
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: g.Onset, Y: lo}, {X: g.End(), Y: lo}, {X: g.End(), Y: hi}, {X: g.Onset, Y: hi},
		})
		if err != nil {
			return nil, err
		}
		band.Color = sequenceColor
		band.LineStyle.Width = 0
		p.Add(band)
	}

	pts := make(plotter.XYs, len(fig.Signal))
	for i, v := range fig.Signal {
		pts[i] = plotter.XY{X: float64(i) / fig.SamplingFreqHz, Y: v}
	}
	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = signalColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fig.Axis, line)
	}

	if len(fig.Contacts) > 0 {
		marks := make(plotter.XYs, len(fig.Contacts))
		for i, t := range fig.Contacts {
			marks[i] = plotter.XY{X: t, Y: fig.sampleAt(t)}
		}
		sc, err := plotter.NewScatter(marks)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = contactColor
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add("initial contact", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func diagnosticsPlot(fig Figure) (*plot.Plot, error) {
	d := fig.Diagnostics
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Gait sequence feature at %.4g Hz (cadence %.2f Hz)", d.SamplingFreqHz, d.StepFrequencyHz)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Feature"

	series := func(x []float64) plotter.XYs {
		pts := make(plotter.XYs, len(x))
		for i, v := range x {
			pts[i] = plotter.XY{X: float64(i) / d.SamplingFreqHz, Y: v}
		}
		return pts
	}
	if len(d.Processed) == 0 {
		return p, nil
	}

	feat, err := plotter.NewLine(series(d.Processed))
	if err != nil {
		return nil, err
	}
	feat.Color = signalColor
	feat.Width = vg.Points(1)

	env, err := plotter.NewLine(series(d.Envelope))
	if err != nil {
		return nil, err
	}
	env.Color = envColor
	env.Width = vg.Points(1.5)

	end := float64(len(d.Processed)) / d.SamplingFreqHz
	thr, err := plotter.NewLine(plotter.XYs{{X: 0, Y: d.Threshold}, {X: end, Y: d.Threshold}})
	if err != nil {
		return nil, err
	}
	thr.Color = contactColor
	thr.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(feat, env, thr)
	p.Legend.Add("feature", feat)
	p.Legend.Add("envelope", env)
	p.Legend.Add("threshold", thr)
	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}
