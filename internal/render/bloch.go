package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"qviz/internal/bloch"
)

// Viewing angles of the sphere projection, in radians.
const (
	azimuth   = -60 * math.Pi / 180
	elevation = 30 * math.Pi / 180
)

type vec3 [3]float64

// project maps a point onto the view plane. depth is positive on the half
// facing the viewer.
func project(p vec3) (x, y, depth float64) {
	sa, ca := math.Sin(azimuth), math.Cos(azimuth)
	se, ce := math.Sin(elevation), math.Cos(elevation)
	x = -p[0]*sa + p[1]*ca
	y = -(p[0]*ca+p[1]*sa)*se + p[2]*ce
	depth = (p[0]*ca+p[1]*sa)*ce + p[2]*se
	return x, y, depth
}

// BlochMultivector draws one Bloch sphere per vector, stacked vertically in
// the given order, each titled by the matching label.
func BlochMultivector(vectors []bloch.Vector, labels []string, opts Options) ([]byte, error) {
	if len(vectors) == 0 {
		return nil, ErrNothingToDraw
	}
	if len(labels) != len(vectors) {
		return nil, fmt.Errorf("render: %d labels for %d vectors", len(labels), len(vectors))
	}

	plots := make([]*plot.Plot, len(vectors))
	for i, v := range vectors {
		p, err := blochSphere(v, labels[i])
		if err != nil {
			return nil, err
		}
		plots[i] = p
	}
	w, h := opts.size(4*vg.Inch, 4*vg.Inch)
	return encodeColumn(plots, w, h)
}

func blochSphere(v bloch.Vector, label string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = label
	p.HideAxes()
	p.X.Min, p.X.Max = -1.35, 1.35
	p.Y.Min, p.Y.Max = -1.35, 1.35

	const samples = 120
	circle := func(f func(t float64) vec3) []vec3 {
		pts := make([]vec3, samples+1)
		for i := range pts {
			pts[i] = f(2 * math.Pi * float64(i) / samples)
		}
		return pts
	}

	// Silhouette of the sphere: the unit circle of the view plane.
	outline := make(plotter.XYs, samples+1)
	for i := range outline {
		t := 2 * math.Pi * float64(i) / samples
		outline[i] = plotter.XY{X: math.Cos(t), Y: math.Sin(t)}
	}
	if err := addLine(p, outline, colorGrid, 1, false); err != nil {
		return nil, err
	}

	curves := [][]vec3{
		circle(func(t float64) vec3 { return vec3{math.Cos(t), math.Sin(t), 0} }),
		circle(func(t float64) vec3 { return vec3{math.Cos(t), 0, math.Sin(t)} }),
		circle(func(t float64) vec3 { return vec3{0, math.Cos(t), math.Sin(t)} }),
		{{-1, 0, 0}, {1, 0, 0}},
		{{0, -1, 0}, {0, 1, 0}},
		{{0, 0, -1}, {0, 0, 1}},
	}
	for _, c := range curves {
		if err := addCurve(p, c); err != nil {
			return nil, err
		}
	}

	axisLabels := []struct {
		at   vec3
		text string
	}{
		{vec3{0, 0, 1.18}, "|0>"},
		{vec3{0, 0, -1.22}, "|1>"},
		{vec3{1.25, 0, 0}, "x"},
		{vec3{0, 1.2, 0}, "y"},
	}
	xyl := plotter.XYLabels{}
	for _, l := range axisLabels {
		x, y, _ := project(l.at)
		xyl.XYs = append(xyl.XYs, plotter.XY{X: x, Y: y})
		xyl.Labels = append(xyl.Labels, l.text)
	}
	names, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].XAlign = draw.XCenter
		names.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(names)

	tipX, tipY, _ := project(vec3(v))
	if err := addLine(p, plotter.XYs{{X: 0, Y: 0}, {X: tipX, Y: tipY}}, colorVector, 2.5, false); err != nil {
		return nil, err
	}
	tip, err := plotter.NewScatter(plotter.XYs{{X: tipX, Y: tipY}})
	if err != nil {
		return nil, err
	}
	tip.GlyphStyle = draw.GlyphStyle{Color: colorVector, Radius: vg.Points(3.5), Shape: draw.CircleGlyph{}}
	p.Add(tip)
	return p, nil
}

// addCurve projects a 3D polyline and draws it solid where it faces the
// viewer and dashed behind the sphere.
func addCurve(p *plot.Plot, pts []vec3) error {
	const steps = 40
	if len(pts) == 2 {
		// Straight segments are subdivided so the front/back split lands near
		// the sphere's surface.
		a, b := pts[0], pts[1]
		pts = make([]vec3, steps+1)
		for i := range pts {
			t := float64(i) / steps
			pts[i] = vec3{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1]), a[2] + t*(b[2]-a[2])}
		}
	}

	var run plotter.XYs
	front := true
	flush := func() error {
		if len(run) < 2 {
			return nil
		}
		return addLine(p, run, colorGrid, 0.8, !front)
	}
	for i, pt := range pts {
		x, y, depth := project(pt)
		isFront := depth >= 0
		if i > 0 && isFront != front {
			run = append(run, plotter.XY{X: x, Y: y})
			if err := flush(); err != nil {
				return err
			}
			run = nil
		}
		front = isFront
		run = append(run, plotter.XY{X: x, Y: y})
	}
	return flush()
}

func addLine(p *plot.Plot, xys plotter.XYs, c color.Color, width float64, dashed bool) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(width)
	if dashed {
		l.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	}
	p.Add(l)
	return nil
}
