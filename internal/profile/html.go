package profile

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderHTML writes p as a standalone go-echarts page.
func RenderHTML(p Profile, w io.Writer) error {
	if p.Empty() {
		return ErrEmptyProfile
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: p.Title, Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: p.Title, Subtitle: fmt.Sprintf("threshold=%g", p.Threshold)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "T", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "V", NameLocation: "middle", NameGap: 30}),
	)

	for _, s := range p.Series {
		data := make([]opts.LineData, len(s.Points))
		for i, pt := range s.Points {
			data[i] = opts.LineData{Value: []interface{}{pt.T, pt.V}}
		}
		line.AddSeries(s.Name, data)
	}
	line.AddSeries("threshold", []opts.LineData{
		{Value: []interface{}{p.TMin, p.Threshold}},
		{Value: []interface{}{p.TMax, p.Threshold}},
	})

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render profile: %w", err)
	}
	return nil
}
