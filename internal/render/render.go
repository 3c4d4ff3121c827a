// Package render draws circuits, Bloch spheres and result charts as PNG
// images with gonum/plot.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNothingToDraw is returned when a chart has no data.
var ErrNothingToDraw = errors.New("nothing to draw")

// Options sizes a figure. Zero fields take the figure's default.
type Options struct {
	Width  vg.Length
	Height vg.Length
	Title  string
}

func (o Options) size(w, h vg.Length) (vg.Length, vg.Length) {
	if o.Width > 0 {
		w = o.Width
	}
	if o.Height > 0 {
		h = o.Height
	}
	return w, h
}

func (o Options) title(def string) string {
	if o.Title != "" {
		return o.Title
	}
	return def
}

var (
	colorIdeal   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorNoisy   = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	colorVector  = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorWire    = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	colorGrid    = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	colorBarrier = color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
)

// encode renders a single plot to PNG.
func encode(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeColumn stacks plots vertically, each h tall, and renders them to
// one PNG.
func encodeColumn(plots []*plot.Plot, w, h vg.Length) ([]byte, error) {
	img := vgimg.New(w, h*vg.Length(len(plots)))
	dc := draw.New(img)

	grid := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{Rows: len(plots), Cols: 1, PadY: vg.Points(6)}
	canvases := plot.Align(grid, tiles, dc)
	for i := range plots {
		plots[i].Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
