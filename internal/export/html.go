package export

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot/vg"
)

// echarts skips points whose value is "-"
const gap = "-"

// renderHTML writes the chart as a standalone interactive echarts page.
func (c Chart) renderHTML(w io.Writer, width, height vg.Length) error {
	if len(c.Times) < 2 {
		return ErrTooFewPoints
	}

	x := make([]string, len(c.Times))
	for i, t := range c.Times {
		x[i] = strconv.FormatFloat(t, 'f', 3, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Theme:     "dark",
			Width:     pixels(width),
			Height:    pixels(height),
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: c.YLabel}),
	)
	line.SetXAxis(x)

	for _, s := range c.Series {
		data := make([]opts.LineData, len(c.Times))
		for i := range data {
			if i >= len(s.Values) || math.IsNaN(s.Values[i]) || math.IsInf(s.Values[i], 0) {
				data[i] = opts.LineData{Value: gap}
				continue
			}
			data[i] = opts.LineData{Value: s.Values[i]}
		}
		line.AddSeries(s.Name, data)
	}

	return line.Render(w)
}

// pixels converts a vg length to CSS pixels at 96 dpi.
func pixels(l vg.Length) string {
	return fmt.Sprintf("%.0fpx", l.Points()*96/72)
}
