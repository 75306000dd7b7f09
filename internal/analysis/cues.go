package analysis

import (
	"math"

	"github.com/user/depth_filter_go/internal/parser"
)

const (
	// MetersToDelayMs maps an echo distance to its playback delay.
	MetersToDelayMs = 250
	// DuplicateDelayNudgeMs separates cues that would otherwise coincide.
	DuplicateDelayNudgeMs = 50

	constantPowerScale = 0.707107
)

// CueParams control where along the middle row cues are sampled.
type CueParams struct {
	UnitMeters float64
	FOVDegrees float64   // horizontal field of view
	Thetas     []float64 // bearings in degrees, negative is left
}

// CueColumn maps a bearing to a pixel column of a frame of the given width.
// A bearing of -fov/2 is column 0.
func CueColumn(theta, fov float64, width int) int {
	x := int(float64(width) * (theta + fov/2) / fov)
	return clampIndex(x, width)
}

// PanGains returns constant-power left/right gains for a bearing in degrees.
func PanGains(theta float64) (left, right float64) {
	rad := theta * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return constantPowerScale * (cos - sin), constantPowerScale * (cos + sin)
}

// PlanCues samples the middle row of a filtered grid at each bearing and turns
// the distance there into a delayed, panned audio cue. Holes produce muted cues.
func PlanCues(grid *parser.DepthGrid, p CueParams) []SoundCue {
	if grid.Width == 0 || grid.Height == 0 {
		return nil
	}
	y := MiddleRowIndex(grid)
	cues := make([]SoundCue, len(p.Thetas))
	for i, theta := range p.Thetas {
		x := CueColumn(theta, p.FOVDegrees, grid.Width)
		depth := grid.At(x, y)
		meters := 0.0
		if depth > 0 {
			meters = float64(depth) * p.UnitMeters
		}

		c := SoundCue{
			Theta:   theta,
			X:       x,
			Y:       y,
			Depth:   depth,
			Meters:  meters,
			DelayMs: int(meters * MetersToDelayMs),
		}
		c.LeftGain, c.RightGain = PanGains(theta)

		switch {
		case c.DelayMs == 0:
			c.LeftGain, c.RightGain = 0, 0
			c.Muted = true
		case i == 2 && c.DelayMs == cues[0].DelayMs:
			c.DelayMs += DuplicateDelayNudgeMs
		case i > 0 && c.DelayMs == cues[i-1].DelayMs:
			c.DelayMs += DuplicateDelayNudgeMs
		}
		cues[i] = c
	}
	return cues
}
