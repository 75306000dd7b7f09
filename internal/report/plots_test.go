package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/depth_filter_go/internal/analysis"
	"github.com/user/depth_filter_go/internal/config"
	"github.com/user/depth_filter_go/internal/parser"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// sampleGrid is a ramp with a hole column on the left and one hole in the middle.
func sampleGrid(width, height int) *parser.DepthGrid {
	grid := parser.NewDepthGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			grid.Set(x, y, int16(500+100*x))
		}
		grid.Set(0, y, 0)
	}
	grid.Set(width/2, height/2, 0)
	return grid
}

func sampleAnalysis(t *testing.T) (*analysis.FrameAnalysis, config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.FilePath = "sample.raw"
	cfg.Width = 24
	cfg.Height = 12
	cfg.MedianWindow = 3
	fa, err := analysis.AnalyzeDepthFrame(sampleGrid(cfg.Width, cfg.Height), cfg)
	require.NoError(t, err)
	return fa, cfg
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, pngSignature), "not a PNG")
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestCreateRowPlot(t *testing.T) {
	fa, _ := sampleAnalysis(t)
	data, err := CreateRowPlot(fa)
	require.NoError(t, err)
	decodePNG(t, data)

	_, err = CreateRowPlot(nil)
	assert.Error(t, err)
	_, err = CreateRowPlot(&analysis.FrameAnalysis{})
	assert.Error(t, err)
}

func TestCreateDepthHeatmap(t *testing.T) {
	data, err := CreateDepthHeatmap(sampleGrid(24, 12), "Filtered Depth", 5000)
	require.NoError(t, err)
	decodePNG(t, data)

	_, err = CreateDepthHeatmap(nil, "none", 5000)
	assert.Error(t, err)
}

func TestDepthGridXYZ(t *testing.T) {
	grid := parser.NewDepthGridFromRows([][]int16{
		{0, 10, 20},
		{30, 40, 50},
	})
	g := newDepthGridXYZ(grid)

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	assert.True(t, math.IsNaN(g.Z(0, 0)), "holes are NaN")
	assert.Equal(t, 50.0, g.Z(2, 1))
	assert.Equal(t, 2.0, g.X(2))
	assert.Equal(t, 1.0, g.Y(0), "frame row 0 is drawn at the top")
	assert.Equal(t, 0.0, g.Y(1))
}

func TestObstacleBandColormap(t *testing.T) {
	cm := NewObstacleBandColormap(1000, 2500, 5000)

	assert.Equal(t, cm.NaNColor, cm.Color(math.NaN()))
	assert.Equal(t, cm.UnderColor, cm.Color(-1))
	assert.Equal(t, cm.Colors[0], cm.Color(0))
	assert.Equal(t, cm.Colors[0], cm.Color(999))
	assert.Equal(t, cm.Colors[1], cm.Color(1000))
	assert.Equal(t, cm.Colors[2], cm.Color(4999))
	assert.Equal(t, cm.OverColor, cm.Color(5000))
}

func TestCreateDepthPreview(t *testing.T) {
	grid := sampleGrid(24, 12)

	data, err := CreateDepthPreview(grid, 5000, 48)
	require.NoError(t, err)
	img := decodePNG(t, data)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy(), "height follows the aspect ratio")

	native, err := CreateDepthPreview(grid, 5000, 0)
	require.NoError(t, err)
	assert.Equal(t, 24, decodePNG(t, native).Bounds().Dx())

	_, err = CreateDepthPreview(nil, 5000, 48)
	assert.Error(t, err)
}

func TestCreateBandPreview(t *testing.T) {
	grid := parser.NewDepthGridFromRows([][]int16{{0, 500, 2000, 4000}})
	bands := NewObstacleBandColormap(1000, 2500, 5000)

	data, err := CreateBandPreview(grid, bands, 0)
	require.NoError(t, err)
	img := decodePNG(t, data)

	want := []color.Color{bands.NaNColor, bands.Colors[0], bands.Colors[1], bands.Colors[2]}
	for x, c := range want {
		wr, wg, wb, _ := c.RGBA()
		gr, gg, gb, _ := img.At(x, 0).RGBA()
		assert.Equal(t, []uint32{wr, wg, wb}, []uint32{gr, gg, gb}, "pixel %d", x)
	}
}

func TestLoadDemoDataset(t *testing.T) {
	points, err := LoadDemoDataset()
	require.NoError(t, err)
	require.Len(t, points, 12)

	assert.Equal(t, time.Date(1967, time.July, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Date.After(points[i-1].Date), "dates ascend")
		assert.Positive(t, points[i].Pop)
	}
}

func TestParsePopulationCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"header only", "date,pop\n"},
		{"bad date", "date,pop\n1967-13-01,198712\n"},
		{"bad pop", "date,pop\n1967-07-01,lots\n"},
		{"short row", "date,pop\n1967-07-01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePopulationCSV([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParsePopulationCSV_KeepsCause(t *testing.T) {
	_, err := parsePopulationCSV([]byte("date,pop\n1967-13-01,198712\n"))
	require.Error(t, err)

	var parseErr *time.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.IsType(t, &time.ParseError{}, errors.Cause(err))
	assert.Contains(t, err.Error(), "demo CSV row 2")
}

func TestCreateDemoPlot(t *testing.T) {
	data, err := CreateDemoPlot()
	require.NoError(t, err)
	decodePNG(t, data)
}

func TestGenerateTicks(t *testing.T) {
	ticks := generateTicks(0, 23, 5)
	values := make([]float64, len(ticks))
	for i, tk := range ticks {
		values[i] = tk.Value
	}
	assert.Equal(t, []float64{0, 5, 10, 15, 20}, values)

	assert.Len(t, generateTicks(3, 4, 10), 2, "falls back to the end points")
	assert.Equal(t, 50, tickStep(424))
	assert.Equal(t, 1, tickStep(8))
}
