// Package charts renders standalone HTML charts with go-echarts.
package charts

import (
	"fmt"
	"io"
	"strconv"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"review_sentiment/internal/domain"
)

const (
	width  = "640px"
	height = "400px"
)

// Bar renders one bar series over the categories in x.
func Bar(w io.Writer, title, xName, yName, color string, x []string, y []int) error {
	if len(x) != len(y) {
		return fmt.Errorf("bar %q: %d categories, %d values", title, len(x), len(y))
	}
	bar := echarts.NewBar()
	bar.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: width, Height: height}),
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithXAxisOpts(opts.XAxis{Name: xName}),
		echarts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	data := make([]opts.BarData, len(y))
	for i, v := range y {
		data[i] = opts.BarData{Value: v}
	}
	bar.SetXAxis(x).AddSeries(yName, data, echarts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
	return bar.Render(w)
}

// Line renders one line series; nil values leave a gap.
func Line(w io.Writer, title, xName, yName, color string, x []string, y []*float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("line %q: %d points, %d values", title, len(x), len(y))
	}
	line := echarts.NewLine()
	line.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: width, Height: height}),
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithXAxisOpts(opts.XAxis{Name: xName}),
		echarts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if v == nil {
			data[i] = opts.LineData{Value: "-"} // echarts gap
			continue
		}
		data[i] = opts.LineData{Value: *v}
	}
	line.SetXAxis(x).AddSeries(yName, data, echarts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
	return line.Render(w)
}

// ScoreDistribution is the annotator's static chart of review counts per score.
func ScoreDistribution(w io.Writer, dist []domain.ScoreCount) error {
	x := make([]string, len(dist))
	y := make([]int, len(dist))
	for i, d := range dist {
		x[i] = strconv.Itoa(d.Score)
		y[i] = d.Count
	}
	return Bar(w, "Distribution of Review Scores", "Score", "Count", "teal", x, y)
}
