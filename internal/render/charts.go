package render

import (
	"image/color"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Histogram draws measurement counts as bars sorted by bitstring, each bar
// annotated with its count.
func Histogram(counts map[string]int, opts Options) ([]byte, error) {
	if len(counts) == 0 {
		return nil, ErrNothingToDraw
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	values := make(plotter.Values, len(keys))
	for i, k := range keys {
		values[i] = float64(counts[k])
	}

	p := plot.New()
	p.Title.Text = opts.title("Counts")
	p.Y.Label.Text = "Count"
	if err := addBars(p, values, 0, colorIdeal, vg.Points(24)); err != nil {
		return nil, err
	}
	if err := annotate(p, values, 0); err != nil {
		return nil, err
	}
	nominal(p, keys)

	w, h := opts.size(8*vg.Inch, 6*vg.Inch)
	return encode(p, w, h)
}

// GateDistribution draws one bar per gate name in the given order.
func GateDistribution(names []string, counts map[string]int, opts Options) ([]byte, error) {
	if len(names) == 0 {
		return nil, ErrNothingToDraw
	}
	values := make(plotter.Values, len(names))
	for i, n := range names {
		values[i] = float64(counts[n])
	}

	p := plot.New()
	p.Title.Text = opts.title("Gate Distribution")
	if err := addBars(p, values, 0, colorIdeal, vg.Points(28)); err != nil {
		return nil, err
	}
	nominal(p, names)

	w, h := opts.size(8*vg.Inch, 6*vg.Inch)
	return encode(p, w, h)
}

// ErrorComparison draws ideal and noisy probabilities side by side for each
// state.
func ErrorComparison(states []string, ideal, noisy []float64, opts Options) ([]byte, error) {
	if len(states) == 0 {
		return nil, ErrNothingToDraw
	}

	p := plot.New()
	p.Title.Text = opts.title("Error Analysis")
	p.Y.Label.Text = "Probability"
	p.Legend.Top = true

	width := vg.Points(18)
	idealBars, err := plotter.NewBarChart(plotter.Values(ideal), width)
	if err != nil {
		return nil, err
	}
	idealBars.Color = colorIdeal
	idealBars.LineStyle.Width = 0
	idealBars.Offset = -width / 2

	noisyBars, err := plotter.NewBarChart(plotter.Values(noisy), width)
	if err != nil {
		return nil, err
	}
	noisyBars.Color = colorNoisy
	noisyBars.LineStyle.Width = 0
	noisyBars.Offset = width / 2

	p.Add(idealBars, noisyBars)
	p.Legend.Add("Ideal", idealBars)
	p.Legend.Add("Noisy", noisyBars)
	nominal(p, states)

	w, h := opts.size(8*vg.Inch, 6*vg.Inch)
	return encode(p, w, h)
}

// MetricsCard draws lines of text on a blank figure.
func MetricsCard(lines []string, opts Options) ([]byte, error) {
	if len(lines) == 0 {
		return nil, ErrNothingToDraw
	}
	p := plot.New()
	p.Title.Text = opts.title("Performance Metrics")
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	xyl := plotter.XYLabels{Labels: lines}
	step := 0.8 / float64(max(len(lines), 1))
	for i := range lines {
		xyl.XYs = append(xyl.XYs, plotter.XY{X: 0.1, Y: 0.5 + step*(float64(len(lines))/2-float64(i))})
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(14)
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	w, h := opts.size(8*vg.Inch, 6*vg.Inch)
	return encode(p, w, h)
}

func addBars(p *plot.Plot, values plotter.Values, offset vg.Length, c color.Color, width vg.Length) error {
	bars, err := plotter.NewBarChart(values, width)
	if err != nil {
		return err
	}
	bars.Color = c
	bars.LineStyle.Width = 0
	bars.Offset = offset
	p.Add(bars)
	return nil
}

// annotate writes each value above its bar.
func annotate(p *plot.Plot, values plotter.Values, offset float64) error {
	xyl := plotter.XYLabels{}
	for i, v := range values {
		xyl.XYs = append(xyl.XYs, plotter.XY{X: float64(i) + offset, Y: v})
		xyl.Labels = append(xyl.Labels, strconv.FormatFloat(v, 'f', -1, 64))
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	labels.Offset = vg.Point{Y: vg.Points(3)}
	p.Add(labels)
	return nil
}

// nominal labels the x axis with names rotated 45°.
func nominal(p *plot.Plot, names []string) {
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
}
