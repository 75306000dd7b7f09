package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/depth_filter_go/internal/analysis"
)

var (
	colorFiltered = color.RGBA{B: 200, A: 255}
	colorRaw      = color.Gray{Y: 160}
	colorLimit    = color.RGBA{R: 255, A: 255}
	colorCue      = color.RGBA{R: 255, G: 165, A: 255}
)

// rowXYs converts a row sample to plot points. Holes are skipped unless keepHoles is set.
func rowXYs(row []int16, keepHoles bool) plotter.XYs {
	pts := make(plotter.XYs, 0, len(row))
	for x, v := range row {
		if v == 0 && !keepHoles {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(x), Y: float64(v)})
	}
	return pts
}

// CreateRowPlot draws the middle row of the frame after filtering, with the
// same row before denoising and hole filling in grey for comparison.
func CreateRowPlot(fa *analysis.FrameAnalysis) ([]byte, error) {
	if fa == nil || len(fa.MiddleRow) == 0 {
		return nil, errors.Errorf("no row sample to plot")
	}
	width := len(fa.MiddleRow)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Depth Profile, Row %d", fa.RowIndex)
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Depth (sensor units)"
	p.X.Min = 0
	p.X.Max = float64(width - 1)
	p.Y.Min = 0
	p.Y.Max = math.Max(float64(fa.MaxDepth)*1.05, 1)
	p.X.Tick.Marker = plot.ConstantTicks(generateTicks(0, width-1, tickStep(width)))
	p.Add(plotter.NewGrid())

	if fa.Clamped != nil && fa.RowIndex < fa.Clamped.Height {
		raw := rowXYs(fa.Clamped.Row(fa.RowIndex), false)
		if len(raw) > 0 {
			rawLine, err := plotter.NewLine(raw)
			if err != nil {
				return nil, errors.Wrap(err, "failed to create raw row line")
			}
			rawLine.Color = colorRaw
			rawLine.Width = vg.Points(1)
			p.Add(rawLine)
			p.Legend.Add("Clamped", rawLine)
		}
	}

	filtered := rowXYs(fa.MiddleRow, true)
	line, err := plotter.NewLine(filtered)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filtered row line")
	}
	line.Color = colorFiltered
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("Filtered", line)

	limit, _ := plotter.NewLine(plotter.XYs{{X: 0, Y: float64(fa.MaxDepth)}, {X: float64(width - 1), Y: float64(fa.MaxDepth)}})
	limit.Color = colorLimit
	limit.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(limit)
	p.Legend.Add(fmt.Sprintf("Max depth %d", fa.MaxDepth), limit)

	for _, cue := range fa.Cues {
		marker, _ := plotter.NewLine(plotter.XYs{{X: float64(cue.X), Y: 0}, {X: float64(cue.X), Y: float64(fa.MaxDepth)}})
		marker.Color = colorCue
		marker.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(marker)
	}

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

// tickStep picks a round column step that gives roughly ten ticks.
func tickStep(width int) int {
	for _, step := range []int{1, 2, 5, 10, 25, 50, 100, 200, 500} {
		if width/step <= 10 {
			return step
		}
	}
	return 1000
}

// generateTicks creates major ticks at every multiple of step in [min, max].
func generateTicks(min, max, step int) []plot.Tick {
	var ticks []plot.Tick
	if step <= 0 {
		step = 1
	}
	start := min
	if rem := min % step; rem != 0 {
		start = min + (step - rem)
	}
	for i := start; i <= max; i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
	}
	if len(ticks) == 0 {
		ticks = append(ticks, plot.Tick{Value: float64(min), Label: fmt.Sprintf("%d", min)})
		if min != max {
			ticks = append(ticks, plot.Tick{Value: float64(max), Label: fmt.Sprintf("%d", max)})
		}
	}
	return ticks
}

func renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create plot writer")
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, errors.Wrap(err, "failed to write plot to buffer")
	}
	return buf.Bytes(), nil
}
