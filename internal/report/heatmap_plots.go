package report

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/depth_filter_go/internal/parser"
)

var holeColor = color.Gray{Y: 200}

// depthGridXYZ adapts a depth matrix to plotter.GridXYZ. Row 0 of the frame is
// drawn at the top, and holes come back as NaN so the heat map paints them
// with its NaN colour.
type depthGridXYZ struct {
	m *mat.Dense
}

func newDepthGridXYZ(grid *parser.DepthGrid) depthGridXYZ {
	return depthGridXYZ{m: grid.Dense(1)}
}

func (g depthGridXYZ) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g depthGridXYZ) Z(c, r int) float64 {
	v := g.m.At(r, c)
	if v == 0 {
		return math.NaN()
	}
	return v
}

func (g depthGridXYZ) X(c int) float64 { return float64(c) }

func (g depthGridXYZ) Y(r int) float64 {
	rows, _ := g.m.Dims()
	return float64(rows - 1 - r)
}

// DepthBandColormap colours depths by band: each value in
// [Boundaries[i], Boundaries[i+1]) gets Colors[i].
type DepthBandColormap struct {
	Boundaries []float64     // N+1 boundaries for N colors
	Colors     []color.Color // N colors
	UnderColor color.Color   // below the first boundary
	OverColor  color.Color   // at or above the last boundary
	NaNColor   color.Color
}

// NewObstacleBandColormap colours near readings red, mid readings orange and
// everything further green. Thresholds are in sensor units.
func NewObstacleBandColormap(near, mid, maxDepth float64) *DepthBandColormap {
	return &DepthBandColormap{
		Boundaries: []float64{0, near, mid, maxDepth},
		Colors: []color.Color{
			color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}, // near
			color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}, // mid
			color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}, // far
		},
		UnderColor: color.Black,
		OverColor:  color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255},
		NaNColor:   holeColor,
	}
}

// Color returns the color for a given z value.
func (cm *DepthBandColormap) Color(z float64) color.Color {
	if math.IsNaN(z) {
		return cm.NaNColor
	}
	if z < cm.Boundaries[0] {
		return cm.UnderColor
	}
	for i := 0; i < len(cm.Colors); i++ {
		if z >= cm.Boundaries[i] && z < cm.Boundaries[i+1] {
			return cm.Colors[i]
		}
	}
	return cm.OverColor
}

// CreateDepthHeatmap renders a depth grid as a heat map scaled to [0, maxDepth].
func CreateDepthHeatmap(grid *parser.DepthGrid, plotTitle string, maxDepth int16) ([]byte, error) {
	if grid == nil || grid.Len() == 0 {
		return nil, errors.Errorf("no depth grid to plot heatmap")
	}

	cmap := moreland.ExtendedBlackBody()
	cmap.SetMin(0)
	cmap.SetMax(math.Max(float64(maxDepth), 1))

	hm := plotter.NewHeatMap(newDepthGridXYZ(grid), cmap.Palette(255))
	hm.Min = cmap.Min()
	hm.Max = cmap.Max()
	hm.NaN = holeColor
	hm.Underflow = color.Black
	hm.Overflow = color.White
	hm.Rasterized = true

	p := plot.New()
	p.Title.Text = plotTitle
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"
	p.X.Min = -0.5
	p.X.Max = float64(grid.Width) - 0.5
	p.Y.Min = -0.5
	p.Y.Max = float64(grid.Height) - 0.5

	// Y is flipped so the frame reads top-down; label ticks with image rows.
	yTicks := []plot.Tick{}
	for _, t := range generateTicks(0, grid.Height-1, tickStep(grid.Height)) {
		row := int(t.Value)
		yTicks = append(yTicks, plot.Tick{Value: float64(grid.Height - 1 - row), Label: t.Label})
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Marker = plot.ConstantTicks(generateTicks(0, grid.Width-1, tickStep(grid.Width)))
	p.Add(hm)

	aspect := float64(grid.Height) / float64(grid.Width)
	w := vg.Points(800)
	return renderPNG(p, w, vg.Length(float64(w)*aspect)+vg.Points(60))
}
