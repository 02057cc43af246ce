package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var ErrTooFewPoints = errors.New("flightpid: need at least two points to draw")

// Series is one line over a shared time axis.
type Series struct {
	Name   string
	Color  color.Color
	Values []float64
}

// Chart describes a time plot of one run.
type Chart struct {
	Title  string
	YLabel string
	Times  []float64
	Series []Series
}

// Render draws the chart in format (html, svg, png, pdf, ...) to w.
// Non-finite values break a line rather than being plotted.
func (c Chart) Render(w io.Writer, width, height vg.Length, format string) error {
	if format == "html" {
		return c.renderHTML(w, width, height)
	}
	if len(c.Times) < 2 {
		return ErrTooFewPoints
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = c.YLabel

	drawn := 0
	for _, s := range c.Series {
		legend := false
		for _, seg := range segments(c.Times, s.Values) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return fmt.Errorf("series %s: %w", s.Name, err)
			}
			line.Color = s.Color
			line.Width = vg.Points(1)
			p.Add(line)
			if !legend {
				p.Legend.Add(s.Name, line)
				legend = true
			}
			drawn += len(seg)
		}
	}
	if drawn == 0 {
		return ErrTooFewPoints
	}

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// segments splits values into runs of finite points. Single isolated
// points are dropped since a line needs two.
func segments(times, values []float64) []plotter.XYs {
	var out []plotter.XYs
	cur := make(plotter.XYs, 0, len(values))
	flush := func() {
		if len(cur) >= 2 {
			out = append(out, cur)
		}
		cur = make(plotter.XYs, 0, len(values))
	}

	for i, v := range values {
		if i >= len(times) {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			flush()
			continue
		}
		cur = append(cur, plotter.XY{X: times[i], Y: v})
	}
	flush()
	return out
}
