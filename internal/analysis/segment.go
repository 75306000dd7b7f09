package analysis

import (
	"math"

	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/parser"
)

// DefaultEdgeCapMeters is the depth at which edge levels saturate. Anything
// further away is one flat level, so far background produces no edges.
const DefaultEdgeCapMeters = 5

// SegmentParams controls region segmentation.
type SegmentParams struct {
	UnitMeters    float64 // metres per depth unit
	EdgeCapMeters float64
}

// Segmentation describes the regions found by SegmentRegions.
type Segmentation struct {
	Width, Height int
	Labels        []int     // per cell, row-major; 0 marks an edge cell
	Regions       int       // labels run 1..Regions
	Means         []float64 // mean depth per label in sensor units; Means[0] is the edge mean
	Sizes         []int     // cells per label
	EdgeCells     int
}

// EdgeLevels quantises grid to whole metres, saturated to [0,255] and capped at
// capMeters. Ties round to even.
func EdgeLevels(grid *parser.DepthGrid, unitMeters, capMeters float64) []uint8 {
	limit := math.Min(math.RoundToEven(capMeters), 255)
	levels := make([]uint8, grid.Len())
	for i, v := range grid.Data {
		m := math.RoundToEven(float64(v) * unitMeters)
		switch {
		case m < 0:
			m = 0
		case m > limit:
			m = limit
		}
		levels[i] = uint8(m)
	}
	return levels
}

// reflect101 mirrors an out-of-range index without repeating the edge
// sample (-1 -> 1, n -> n-2).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// Laplacian3 applies the 3x3 aperture Laplacian
//
//	2  0  2
//	0 -8  0
//	2  0  2
//
// with mirrored borders, saturating the result to [0,255].
func Laplacian3(levels []uint8, width, height int) []uint8 {
	out := make([]uint8, len(levels))
	at := func(x, y int) int {
		return int(levels[reflect101(y, height)*width+reflect101(x, width)])
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := 2*(at(x-1, y-1)+at(x+1, y-1)+at(x-1, y+1)+at(x+1, y+1)) - 8*at(x, y)
			switch {
			case sum < 0:
				sum = 0
			case sum > 255:
				sum = 255
			}
			out[y*width+x] = uint8(sum)
		}
	}
	return out
}

// DilateCross takes the maximum over each cell and its four direct
// neighbours. Cells outside the frame are ignored.
func DilateCross(src []uint8, width, height int) []uint8 {
	out := make([]uint8, len(src))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m := src[y*width+x]
			if x > 0 {
				m = max(m, src[y*width+x-1])
			}
			if x < width-1 {
				m = max(m, src[y*width+x+1])
			}
			if y > 0 {
				m = max(m, src[(y-1)*width+x])
			}
			if y < height-1 {
				m = max(m, src[(y+1)*width+x])
			}
			out[y*width+x] = m
		}
	}
	return out
}

// LabelRegions gives every 8-connected group of cells with open set a label
// from 1, in raster order of each group's first cell. Closed cells get 0.
func LabelRegions(open []bool, width, height int) ([]int, int) {
	labels := make([]int, len(open))
	next := 0
	queue := make([]int, 0, 64)

	for start := range open {
		if !open[start] || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		queue = append(queue[:0], start)

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			cx, cy := current%width, current/width

			for dy := -1; dy <= 1; dy++ {
				ny := cy + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := cx + dx
					if nx < 0 || nx >= width {
						continue
					}
					n := ny*width + nx
					if open[n] && labels[n] == 0 {
						labels[n] = next
						queue = append(queue, n)
					}
				}
			}
		}
	}
	return labels, next
}

// SegmentRegions splits grid into regions bounded by depth edges and
// returns a copy in which every non-edge cell holds the mean depth of its
// region. Edge cells keep their own depth.
//
// Edges come from a Laplacian over whole-metre depth levels, widened by one
// cell so that small gaps in an outline still close a region.
func SegmentRegions(grid *parser.DepthGrid, p SegmentParams) (*parser.DepthGrid, Segmentation, error) {
	if grid == nil || grid.Len() == 0 {
		return nil, Segmentation{}, errors.Wrap(ErrEmptyGrid, "cannot segment")
	}
	if p.UnitMeters <= 0 || p.EdgeCapMeters <= 0 {
		return nil, Segmentation{}, errors.Wrapf(ErrInvalidArgument,
			"segmentation needs a positive unit and edge cap, got %g and %g", p.UnitMeters, p.EdgeCapMeters)
	}
	w, h := grid.Width, grid.Height

	edges := DilateCross(Laplacian3(EdgeLevels(grid, p.UnitMeters, p.EdgeCapMeters), w, h), w, h)
	open := make([]bool, len(edges))
	for i, e := range edges {
		open[i] = e == 0
	}

	seg := Segmentation{Width: w, Height: h}
	seg.Labels, seg.Regions = LabelRegions(open, w, h)

	sums := make([]float64, seg.Regions+1)
	seg.Sizes = make([]int, seg.Regions+1)
	for i, l := range seg.Labels {
		sums[l] += float64(grid.Data[i])
		seg.Sizes[l]++
	}
	seg.EdgeCells = seg.Sizes[0]
	seg.Means = make([]float64, seg.Regions+1)
	for l := range sums {
		if seg.Sizes[l] > 0 {
			seg.Means[l] = sums[l] / float64(seg.Sizes[l])
		}
	}

	out := grid.Clone()
	for i, l := range seg.Labels {
		if l != 0 {
			out.Data[i] = int16(math.Round(seg.Means[l]))
		}
	}
	return out, seg, nil
}
