package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/user/depth_filter_go/internal/parser"
)

// validReadings returns the non-zero samples of values as float64, sorted ascending.
func validReadings(values []int16) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0 {
			out = append(out, float64(v))
		}
	}
	sort.Float64s(out)
	return out
}

// CalculateRowStats summarises a row sample. Holes are counted but excluded
// from the distribution statistics, which are NaN when the row has no readings.
func CalculateRowStats(row []int16) RowStats {
	rs := RowStats{
		Count:  len(row),
		Min:    math.NaN(),
		Max:    math.NaN(),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Median: math.NaN(),
	}
	valid := validReadings(row)
	rs.Holes = rs.Count - len(valid)
	if len(valid) == 0 {
		return rs
	}

	rs.Min = floats.Min(valid)
	rs.Max = floats.Max(valid)
	rs.Mean, rs.StdDev = stat.PopMeanStdDev(valid, nil)
	rs.Median = stat.Quantile(0.5, stat.Empirical, valid, nil)
	return rs
}

// CalculateFrameStats counts holes over the whole grid.
func CalculateFrameStats(grid *parser.DepthGrid) FrameStats {
	fs := FrameStats{Cells: grid.Len(), Holes: grid.CountZeros()}
	if fs.Cells > 0 {
		fs.HoleFraction = float64(fs.Holes) / float64(fs.Cells)
	}
	return fs
}
