// Package chart renders the warehouse reports as PNG images
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Output geometry of every chart
const (
	DPI    = 140
	Width  = 8 * vg.Inch
	Height = 6 * vg.Inch
)

const barWidth = vg.Length(20)

// Bar is a single-series bar chart over nominal labels
type Bar struct {
	Title        string
	XLabel       string
	YLabel       string
	Labels       []string
	Values       []float64
	RotateLabels bool
}

// Series is one named line of a Lines chart, one value per label.
// NaN values are left out of the line.
type Series struct {
	Name   string
	Values []float64
}

// Lines is a multi-series line chart over nominal labels
type Lines struct {
	Title        string
	XLabel       string
	YLabel       string
	Labels       []string
	Series       []Series
	RotateLabels bool
}

// SaveBar renders b to a PNG at path. An empty chart is still written.
func SaveBar(path string, b *Bar) error {
	if len(b.Labels) != len(b.Values) {
		return fmt.Errorf("chart %q: %d labels for %d values", b.Title, len(b.Labels), len(b.Values))
	}

	p := newPlot(b.Title, b.XLabel, b.YLabel, b.RotateLabels)

	if len(b.Values) > 0 {
		bars, err := plotter.NewBarChart(plotter.Values(b.Values), barWidth)
		if err != nil {
			return fmt.Errorf("chart %q: %w", b.Title, err)
		}
		bars.Color = plotutil.Color(0)
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalX(b.Labels...)
	}

	return save(p, path)
}

// SaveLines renders l to a PNG at path with one legend entry per series.
// An empty chart is still written.
func SaveLines(path string, l *Lines) error {
	for _, s := range l.Series {
		if len(s.Values) != len(l.Labels) {
			return fmt.Errorf("chart %q: series %q has %d values for %d labels",
				l.Title, s.Name, len(s.Values), len(l.Labels))
		}
	}

	p := newPlot(l.Title, l.XLabel, l.YLabel, l.RotateLabels)
	p.Legend.Top = true

	for i, s := range l.Series {
		pts := points(s.Values)
		if len(pts) == 0 {
			continue
		}

		line, scatter, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("chart %q: series %q: %w", l.Title, s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		scatter.Color = plotutil.Color(i)
		scatter.Shape = plotutil.Shape(i)

		p.Add(line, scatter)
		p.Legend.Add(s.Name, line, scatter)
	}

	if len(l.Labels) > 0 {
		p.NominalX(l.Labels...)
	}

	return save(p, path)
}

func newPlot(title, xLabel, yLabel string, rotate bool) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	if rotate {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return p
}

func points(values []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: v})
	}
	return pts
}

func save(p *plot.Plot, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(DPI))
	p.Draw(draw.New(c))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write chart %s: %w", path, err)
	}

	return f.Close()
}
