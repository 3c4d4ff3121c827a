package render

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"qviz/internal/circuit"
)

const boxHalf = 0.3

var gateFill = map[string]color.Color{
	"H":       color.RGBA{R: 0xd3, G: 0x27, B: 0x5e, A: 0xff},
	"MEASURE": color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff},
	"RESET":   color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
	"NOISE":   color.RGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff},
}

var defaultFill = color.RGBA{R: 0x6f, G: 0xa4, B: 0xff, A: 0xff}

// CircuitDiagram draws the circuit column by column: one wire per qubit, a
// classical wire underneath, boxed gates, control dots and measurement
// connectors.
func CircuitDiagram(c *circuit.Circuit, opts Options) ([]byte, error) {
	if c.NumQubits == 0 {
		return nil, ErrNothingToDraw
	}
	steps := max(c.MaxSteps, 1)
	nc := c.NumClbits()
	classicalY := -float64(c.NumQubits)

	p := plot.New()
	p.Title.Text = opts.title(c.Name)
	p.HideAxes()
	p.X.Min, p.X.Max = -1.6, float64(steps)
	p.Y.Min, p.Y.Max = classicalY-0.7, 0.7

	d := &diagramPlot{p: p}
	for q := range c.NumQubits {
		d.line(-0.7, -float64(q), float64(steps)-0.3, -float64(q), colorWire, 1, false)
		d.label(-0.9, -float64(q), c.QubitName(q), draw.XRight)
	}
	if nc > 0 {
		for _, off := range []float64{-0.04, 0.04} {
			d.line(-0.7, classicalY+off, float64(steps)-0.3, classicalY+off, colorWire, 0.8, false)
		}
		d.label(-0.9, classicalY, fmt.Sprintf("c%d", nc), draw.XRight)
	}

	for _, g := range c.Ordered() {
		d.gate(c, g, classicalY)
	}
	if d.err != nil {
		return nil, d.err
	}
	if err := d.flushLabels(); err != nil {
		return nil, err
	}

	w, h := opts.size(vg.Length(max(6, 0.7*float64(steps+2)))*vg.Inch, vg.Length(0.7*float64(c.NumQubits+2))*vg.Inch)
	return encode(p, w, h)
}

// diagramPlot accumulates plotters, keeping the first error.
type diagramPlot struct {
	p      *plot.Plot
	err    error
	labels []pendingLabel
}

type pendingLabel struct {
	x, y  float64
	text  string
	align draw.XAlignment
	size  vg.Length
}

func (d *diagramPlot) gate(c *circuit.Circuit, g circuit.Gate, classicalY float64) {
	x := float64(g.Step)
	switch {
	case g.IsBarrier():
		d.line(x, 0.45, x, -float64(c.NumQubits-1)-0.45, colorBarrier, 2, true)
		return
	case g.IsMeasure():
		y := -float64(g.Target)
		d.line(x-0.03, y, x-0.03, classicalY, colorWire, 0.8, false)
		d.line(x+0.03, y, x+0.03, classicalY, colorWire, 0.8, false)
		d.box(x, y, "M", gateFill["MEASURE"])
		d.small(x+0.2, classicalY-0.3, c.ClbitName(g.Clbit))
		return
	}

	qubits := g.Qubits()
	lo, hi := qubits[0], qubits[0]
	for _, q := range qubits {
		lo, hi = min(lo, q), max(hi, q)
	}
	if lo != hi {
		d.line(x, -float64(lo), x, -float64(hi), colorWire, 1.2, false)
	}
	for _, ctrl := range g.ControlQubits() {
		if g.Type == "SWAP" {
			d.glyph(x, -float64(ctrl), draw.CrossGlyph{}, 5)
		} else {
			d.glyph(x, -float64(ctrl), draw.CircleGlyph{}, 4)
		}
	}

	y := -float64(g.Target)
	switch g.Type {
	case "CX", "CCX":
		d.glyph(x, y, draw.RingGlyph{}, 8)
		d.glyph(x, y, draw.PlusGlyph{}, 8)
	case "CZ":
		d.glyph(x, y, draw.CircleGlyph{}, 4)
	case "SWAP":
		d.glyph(x, y, draw.CrossGlyph{}, 5)
	default:
		fill, ok := gateFill[g.Type]
		if g.IsNoise {
			fill, ok = gateFill["NOISE"], true
		}
		if !ok {
			fill = defaultFill
		}
		d.box(x, y, circuit.GateLabel(g), fill)
		if len(g.Params) > 0 && !g.IsNoise {
			params := make([]string, len(g.Params))
			for i, v := range g.Params {
				params[i] = circuit.FormatParam(v)
			}
			d.small(x, y-boxHalf-0.12, strings.Join(params, ","))
		}
	}

	if g.IsConditional() {
		d.line(x, -float64(hi), x, classicalY, colorBarrier, 0.8, true)
		d.small(x, classicalY-0.3, fmt.Sprintf("=%d", g.ClassicalValue))
	}
}

func (d *diagramPlot) line(x1, y1, x2, y2 float64, c color.Color, width float64, dashed bool) {
	if d.err != nil {
		return
	}
	d.err = addLine(d.p, plotter.XYs{{X: x1, Y: y1}, {X: x2, Y: y2}}, c, width, dashed)
}

func (d *diagramPlot) glyph(x, y float64, shape draw.GlyphDrawer, radius float64) {
	if d.err != nil {
		return
	}
	s, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
	if err != nil {
		d.err = err
		return
	}
	s.GlyphStyle = draw.GlyphStyle{Color: colorWire, Radius: vg.Points(radius), Shape: shape}
	d.p.Add(s)
}

func (d *diagramPlot) box(x, y float64, text string, fill color.Color) {
	if d.err != nil {
		return
	}
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: x - boxHalf, Y: y - boxHalf},
		{X: x + boxHalf, Y: y - boxHalf},
		{X: x + boxHalf, Y: y + boxHalf},
		{X: x - boxHalf, Y: y + boxHalf},
	})
	if err != nil {
		d.err = err
		return
	}
	poly.Color = fill
	poly.LineStyle.Color = colorWire
	poly.LineStyle.Width = vg.Points(0.8)
	d.p.Add(poly)
	d.labels = append(d.labels, pendingLabel{x: x, y: y, text: text, align: draw.XCenter, size: vg.Points(11)})
}

func (d *diagramPlot) label(x, y float64, text string, align draw.XAlignment) {
	d.labels = append(d.labels, pendingLabel{x: x, y: y, text: text, align: align, size: vg.Points(11)})
}

func (d *diagramPlot) small(x, y float64, text string) {
	d.labels = append(d.labels, pendingLabel{x: x, y: y, text: text, align: draw.XCenter, size: vg.Points(8)})
}

// flushLabels adds all text last so it is drawn over boxes and wires.
func (d *diagramPlot) flushLabels() error {
	if len(d.labels) == 0 {
		return nil
	}
	xyl := plotter.XYLabels{}
	for _, l := range d.labels {
		xyl.XYs = append(xyl.XYs, plotter.XY{X: l.x, Y: l.y})
		xyl.Labels = append(xyl.Labels, l.text)
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return err
	}
	for i, l := range d.labels {
		labels.TextStyle[i].XAlign = l.align
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = l.size
	}
	d.p.Add(labels)
	return nil
}
