package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/analysis"
)

// CreateRowChartHTML writes an interactive page with the middle row before
// and after filtering. Holes in the unfiltered row are left as gaps.
func CreateRowChartHTML(w io.Writer, fa *analysis.FrameAnalysis) error {
	if fa == nil || len(fa.MiddleRow) == 0 {
		return errors.Errorf("no row sample to chart")
	}

	columns := make([]string, len(fa.MiddleRow))
	filtered := make([]opts.LineData, len(fa.MiddleRow))
	for x, v := range fa.MiddleRow {
		columns[x] = strconv.Itoa(x)
		filtered[x] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Depth Row Profile", Width: "100%", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Row %d", fa.RowIndex),
			Subtitle: fmt.Sprintf("run=%s source=%s obstacle=%s", fa.RunID, fa.Source, fa.Obstacle.Class),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "column"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "depth"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(columns)

	if fa.Clamped != nil && fa.RowIndex < fa.Clamped.Height {
		raw := fa.Clamped.Row(fa.RowIndex)
		rawData := make([]opts.LineData, len(raw))
		for x, v := range raw {
			if v == 0 {
				rawData[x] = opts.LineData{Value: "-"}
				continue
			}
			rawData[x] = opts.LineData{Value: v}
		}
		line.AddSeries("clamped", rawData)
	}
	line.AddSeries("filtered", filtered, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	if err := line.Render(w); err != nil {
		return errors.Wrap(err, "failed to render row chart")
	}
	return nil
}
