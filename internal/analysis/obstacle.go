package analysis

import (
	"fmt"

	"github.com/user/depth_filter_go/internal/parser"
)

// ObstacleClass grades how close the nearest substantial obstacle is.
// Lower is closer.
type ObstacleClass int

const (
	ObstacleNear  ObstacleClass = 1
	ObstacleMid   ObstacleClass = 2
	ObstacleClear ObstacleClass = 3
)

func (c ObstacleClass) String() string {
	switch c {
	case ObstacleNear:
		return "near"
	case ObstacleMid:
		return "mid"
	case ObstacleClear:
		return "clear"
	default:
		return fmt.Sprintf("ObstacleClass(%d)", int(c))
	}
}

// ObstacleParams are the classification thresholds, in metres.
type ObstacleParams struct {
	UnitMeters         float64 // metres per depth unit
	NearThresholdM     float64
	MidThresholdM      float64
	OccupancyThreshold float64 // fraction of the sample zone that must be occupied
}

// SampleZone returns the middle fifth of a width x height frame in both axes
// as half-open bounds [x0,x1) x [y0,y1).
func SampleZone(width, height int) (x0, x1, y0, y1 int) {
	return 2 * width / 5, 3 * width / 5, 2 * height / 5, 3 * height / 5
}

// ClassifyObstacle looks at the centre of the frame and reports whether
// enough of it is closer than the near or mid threshold. Holes are not
// readings and never count as occupied.
func ClassifyObstacle(grid *parser.DepthGrid, p ObstacleParams) ObstacleResult {
	x0, x1, y0, y1 := SampleZone(grid.Width, grid.Height)
	res := ObstacleResult{Class: ObstacleClear, ZoneCells: (x1 - x0) * (y1 - y0)}
	if res.ZoneCells <= 0 {
		return res
	}

	var near, mid int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v := grid.At(x, y)
			if v <= 0 {
				continue
			}
			d := float64(v) * p.UnitMeters
			if d < p.NearThresholdM {
				near++
			}
			if d < p.MidThresholdM {
				mid++
			}
		}
	}

	res.NearFraction = float64(near) / float64(res.ZoneCells)
	res.MidFraction = float64(mid) / float64(res.ZoneCells)
	switch {
	case res.NearFraction > p.OccupancyThreshold:
		res.Class = ObstacleNear
	case res.MidFraction > p.OccupancyThreshold:
		res.Class = ObstacleMid
	}
	return res
}
