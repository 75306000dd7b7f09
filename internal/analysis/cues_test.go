package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/depth_filter_go/internal/parser"
)

func TestCueColumn(t *testing.T) {
	assert.Equal(t, 0, CueColumn(-43.5, 87, 424))
	assert.Equal(t, 212, CueColumn(0, 87, 424))
	assert.Equal(t, 423, CueColumn(43.5, 87, 424), "right edge clamps inside the frame")
	assert.Equal(t, 56, CueColumn(-32, 87, 424))
}

func TestPanGains(t *testing.T) {
	l, r := PanGains(0)
	assert.InDelta(t, 0.707107, l, 1e-6)
	assert.InDelta(t, 0.707107, r, 1e-6)

	l, r = PanGains(-45)
	assert.InDelta(t, 1.0, l, 1e-5)
	assert.InDelta(t, 0.0, r, 1e-5)

	// Constant power: l^2 + r^2 stays at 1.
	for _, theta := range []float64{-32, -10, 17, 32} {
		l, r = PanGains(theta)
		assert.InDelta(t, 1.0, l*l+r*r, 1e-5, "theta %v", theta)
	}
}

func TestPlanCues(t *testing.T) {
	params := CueParams{UnitMeters: 0.001, FOVDegrees: 90, Thetas: []float64{-30, 0, 30}}

	t.Run("distinct delays", func(t *testing.T) {
		g := parser.NewDepthGrid(9, 3)
		row := g.RowView(1)
		for x := range row {
			row[x] = int16(1000 + 200*x)
		}
		cues := PlanCues(g, params)
		assert.Len(t, cues, 3)

		// theta -30 -> x = 9*15/90 = 1, theta 0 -> 4, theta 30 -> 7.
		assert.Equal(t, []int{1, 4, 7}, []int{cues[0].X, cues[1].X, cues[2].X})
		assert.Equal(t, 1, cues[0].Y)
		assert.Equal(t, 300, cues[0].DelayMs) // 1.2 m * 250
		assert.Equal(t, 450, cues[1].DelayMs)
		assert.Equal(t, 600, cues[2].DelayMs)
		assert.Greater(t, cues[0].LeftGain, cues[0].RightGain)
		assert.False(t, cues[1].Muted)
	})

	t.Run("equal delays are nudged", func(t *testing.T) {
		g := filledGrid(9, 3, 2000)
		cues := PlanCues(g, params)
		assert.Equal(t, 500, cues[0].DelayMs)
		assert.Equal(t, 550, cues[1].DelayMs)
		assert.Equal(t, 550, cues[2].DelayMs, "third cue compares against the first one")
	})

	t.Run("holes are muted", func(t *testing.T) {
		g := filledGrid(9, 3, 2000)
		g.Set(4, 1, 0)
		cues := PlanCues(g, params)
		assert.True(t, cues[1].Muted)
		assert.Zero(t, cues[1].LeftGain)
		assert.Zero(t, cues[1].RightGain)
		assert.Equal(t, 0, cues[1].DelayMs)
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Nil(t, PlanCues(&parser.DepthGrid{}, params))
	})

	assert.False(t, math.IsNaN(PlanCues(filledGrid(9, 3, 1), params)[0].Meters))
}
