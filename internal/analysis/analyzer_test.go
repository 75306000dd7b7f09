package analysis

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/depth_filter_go/internal/config"
	"github.com/user/depth_filter_go/internal/parser"
)

func smallConfig(w, h int) config.Config {
	cfg := config.Default()
	cfg.Width, cfg.Height = w, h
	cfg.MedianWindow = 1
	return cfg
}

func TestAnalyzeDepthFrame_Pipeline(t *testing.T) {
	g := gridOf(
		[]int16{9000, 9000, 9000, 9000, 9000},
		[]int16{0, 0, 5, 0, 3},
		[]int16{1, 0, 0, 7000, 2},
	)
	orig := g.Clone()

	res, err := AnalyzeDepthFrame(g, smallConfig(5, 3))
	require.NoError(t, err)

	assert.Equal(t, orig.Data, g.Data, "input grid must not be mutated")
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	assert.Equal(t, 6, res.ClampedCells)
	assert.Equal(t, []int16{5000, 5000, 5000, 5000, 5000}, res.Clamped.Row(0))

	assert.Equal(t, 1, res.RowIndex)
	assert.Equal(t, []int16{5, 5, 5, 3, 3}, res.MiddleRow)
	assert.Equal(t, []int16{1, 5000, 5000, 5000, 2}, res.Filtered.Row(2))

	assert.Equal(t, 5, res.Before.Holes)
	assert.Equal(t, 0, res.After.Holes)
	assert.Equal(t, 0, res.RowStats.Holes)
	assert.InDelta(t, 4.2, res.RowStats.Mean, 1e-9)

	names := make([]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"clamp", "median", "fill_holes", "row_extract", "segment", "classify", "cues"}, names)
	assert.GreaterOrEqual(t, res.TotalElapsed().Nanoseconds(), int64(0))
	assert.Len(t, res.Cues, 3)
	assert.Empty(t, res.AnalysisErrors)
}

func TestAnalyzeDepthFrame_WarnsOnRemainingHolesAndNegatives(t *testing.T) {
	g := gridOf([]int16{-4, 0, 0}, []int16{1, 0, 0})
	res, err := AnalyzeDepthFrame(g, smallConfig(3, 2))
	require.NoError(t, err)

	assert.Equal(t, 4, res.After.Holes)
	require.Len(t, res.AnalysisErrors, 2)
	assert.Contains(t, res.AnalysisErrors[0], "1 negative depth samples")
	assert.Contains(t, res.AnalysisErrors[1], "4 cells remain holes")
}

func TestAnalyzeDepthFrame_Decimates(t *testing.T) {
	g := parser.NewDepthGrid(8, 4)
	for i := range g.Data {
		g.Data[i] = 1200
	}
	cfg := smallConfig(8, 4)
	cfg.DecimateWidth = 4

	res, err := AnalyzeDepthFrame(g, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DecimationFactor)
	assert.Equal(t, 4, res.Filtered.Width)
	assert.Equal(t, 2, res.Filtered.Height)
	assert.Equal(t, "decimate", res.Steps[0].Name)
	assert.Equal(t, 8, res.InputWidth)
}

func TestAnalyzeDepthFrame_Errors(t *testing.T) {
	_, err := AnalyzeDepthFrame(nil, config.Default())
	assert.True(t, errors.Is(err, ErrEmptyGrid))

	cfg := smallConfig(2, 1)
	cfg.MaxDepth = -1
	_, err = AnalyzeDepthFrame(gridOf([]int16{1, 2}), cfg)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	bad := &parser.DepthGrid{Width: 3, Height: 3, Data: []int16{1, 2}}
	_, err = AnalyzeDepthFrame(bad, smallConfig(3, 3))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestAnalyzeDepthFrame_SegmentsBeforeClassifying(t *testing.T) {
	// A near block in the centre of a far wall: 0.5 m inside, 4 m around it.
	g := parser.NewDepthGrid(20, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			v := int16(4000)
			if x >= 6 && x < 14 && y >= 2 && y < 8 {
				v = 500
			}
			g.Set(x, y, v)
		}
	}
	g.Set(10, 5, 620)

	res, err := AnalyzeDepthFrame(g, smallConfig(20, 10))
	require.NoError(t, err)

	require.NotNil(t, res.Segmented)
	assert.GreaterOrEqual(t, res.Regions, 2)
	assert.Positive(t, res.EdgeCells)
	assert.Equal(t, int16(620), res.Filtered.At(10, 5), "filtered frame is left alone")
	assert.Equal(t, ObstacleNear, res.Obstacle.Class)
	assert.Equal(t, int16(4000), res.Segmented.At(0, 0))

	cfg := smallConfig(20, 10)
	cfg.Segment = false
	plain, err := AnalyzeDepthFrame(g, cfg)
	require.NoError(t, err)
	assert.Nil(t, plain.Segmented)
	assert.Zero(t, plain.Regions)
	for _, s := range plain.Steps {
		assert.NotEqual(t, "segment", s.Name)
	}
	assert.Equal(t, ObstacleNear, plain.Obstacle.Class)
}
