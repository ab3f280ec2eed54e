package plotting

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// maxHTMLPoints caps the points per series sent to the browser.
const maxHTMLPoints = 5000

// RenderHTML writes an interactive page with the signal, the gait sequence
// mask and the initial contacts, plus the detector feature when present.
func RenderHTML(w io.Writer, fig Figure) error {
	page := components.NewPage()
	page.PageTitle = fig.Title
	page.AddCharts(signalChart(fig), contactChart(fig))
	if fig.Diagnostics != nil {
		page.AddCharts(diagnosticsChart(fig))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func stride(n int) int {
	return max(1, int(math.Ceil(float64(n)/maxHTMLPoints)))
}

func signalChart(fig Figure) *charts.Line {
	step := stride(len(fig.Signal))
	xs := make([]string, 0, len(fig.Signal)/step+1)
	values := make([]opts.LineData, 0, cap(xs))
	mask := make([]opts.LineData, 0, cap(xs))
	lo, hi := fig.bounds()
	for i := 0; i < len(fig.Signal); i += step {
		t := float64(i) / fig.SamplingFreqHz
		xs = append(xs, fmt.Sprintf("%.2f", t))
		values = append(values, opts.LineData{Value: fig.Signal[i]})
		m := lo
		for _, g := range fig.Sequences {
			if g.Contains(t) {
				m = hi
				break
			}
		}
		mask = append(mask, opts.LineData{Value: m})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fig.Title, Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title, Subtitle: fmt.Sprintf("%s at %.4g Hz, %d gait sequence(s)", fig.Axis, fig.SamplingFreqHz, len(fig.Sequences))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fig.Axis, Scale: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xs).
		AddSeries(fig.Axis, values, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})).
		AddSeries("gait sequence", mask, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func contactChart(fig Figure) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(fig.Contacts))
	for _, t := range fig.Contacts {
		data = append(data, opts.ScatterData{Value: []interface{}{t, fig.sampleAt(t)}})
	}
	end := float64(len(fig.Signal)) / fig.SamplingFreqHz

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Initial contacts", Subtitle: fmt.Sprintf("count=%d", len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: 0, Max: end, Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fig.Axis, Scale: opts.Bool(true)}),
	)
	scatter.AddSeries("initial contact", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	return scatter
}

func diagnosticsChart(fig Figure) *charts.Line {
	d := fig.Diagnostics
	step := stride(len(d.Processed))
	var (
		xs             []string
		feat, env, thr []opts.LineData
	)
	for i := 0; i < len(d.Processed); i += step {
		xs = append(xs, fmt.Sprintf("%.2f", float64(i)/d.SamplingFreqHz))
		feat = append(feat, opts.LineData{Value: d.Processed[i]})
		if i < len(d.Envelope) {
			env = append(env, opts.LineData{Value: d.Envelope[i]})
		}
		thr = append(thr, opts.LineData{Value: d.Threshold})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Gait sequence feature", Subtitle: fmt.Sprintf("resampled to %.4g Hz, cadence %.2f Hz", d.SamplingFreqHz, d.StepFrequencyHz)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	noSymbol := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	line.SetXAxis(xs).
		AddSeries("feature", feat, noSymbol).
		AddSeries("envelope", env, noSymbol).
		AddSeries("threshold", thr, noSymbol)
	return line
}
