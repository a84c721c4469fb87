package util

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// PlotDailyCongestionCurve renders a venue's 24 hourly base congestion
// scores as an HTML line chart into w.
func PlotDailyCongestionCurve(venueName string, curve []int, w io.Writer) error {
	hours := make([]string, len(curve))
	points := make([]opts.LineData, len(curve))
	for h, score := range curve {
		hours[h] = fmt.Sprintf("%02d:00", h)
		points[h] = opts.LineData{Value: score}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Daily Congestion Curve",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Base congestion - %s", venueName),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Min: 0,
			Max: 100,
		}),
	)

	line.SetXAxis(hours)
	line.AddSeries("base score", points,
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(true),
		}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render congestion curve: %w", err)
	}
	return nil
}
