package analysis

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/parser"
)

var (
	// ErrInvalidArgument is returned for a window, factor or row the grid cannot be processed with.
	ErrInvalidArgument = errors.New("invalid filter argument")
	// ErrEmptyGrid is returned when there is no grid to work on.
	ErrEmptyGrid = errors.New("depth grid is nil or empty")
)

// Clamp returns a copy of grid with every value above maxDepth replaced by maxDepth.
func Clamp(grid *parser.DepthGrid, maxDepth int16) *parser.DepthGrid {
	return ClampInPlace(grid.Clone(), maxDepth)
}

// ClampInPlace caps grid at maxDepth and returns the same grid.
func ClampInPlace(grid *parser.DepthGrid, maxDepth int16) *parser.DepthGrid {
	for i, v := range grid.Data {
		if v > maxDepth {
			grid.Data[i] = maxDepth
		}
	}
	return grid
}

// FillHoles returns a copy of grid with hole cells filled from the right.
// See FillHolesInPlace for the propagation rule.
func FillHoles(grid *parser.DepthGrid) *parser.DepthGrid {
	return FillHolesInPlace(grid.Clone())
}

// FillHolesInPlace scans each row from the second-to-last column down to
// column 0 and overwrites every zero with the value of its right neighbour.
// Because the scan runs right to left, a run of zeros takes the nearest
// non-zero value to its right in one pass. The last column is never written,
// and zeros with nothing but zeros to their right stay zero.
func FillHolesInPlace(grid *parser.DepthGrid) *parser.DepthGrid {
	for y := 0; y < grid.Height; y++ {
		row := grid.RowView(y)
		for x := len(row) - 2; x >= 0; x-- {
			if row[x] == 0 {
				row[x] = row[x+1]
			}
		}
	}
	return grid
}

// Row returns a copy of row y.
func Row(grid *parser.DepthGrid, y int) ([]int16, error) {
	if y < 0 || y >= grid.Height {
		return nil, errors.Wrapf(ErrInvalidArgument, "row %d out of range [0,%d)", y, grid.Height)
	}
	return grid.Row(y), nil
}

// MiddleRowIndex is height/2, the row sampled for inspection and cues.
func MiddleRowIndex(grid *parser.DepthGrid) int {
	return grid.Height / 2
}

// MiddleRow returns a copy of the middle row of grid.
func MiddleRow(grid *parser.DepthGrid) []int16 {
	return grid.Row(MiddleRowIndex(grid))
}

// MedianBlur applies a window x window median filter and returns a new grid.
// Borders are handled by replicating the edge pixels.
func MedianBlur(grid *parser.DepthGrid, window int) (*parser.DepthGrid, error) {
	if window < 1 || window%2 == 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "median window must be a positive odd integer, got %d", window)
	}
	out := parser.NewDepthGrid(grid.Width, grid.Height)
	if window == 1 || grid.Len() == 0 {
		copy(out.Data, grid.Data)
		return out, nil
	}

	half := window / 2
	buf := make([]int16, 0, window*window)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			buf = buf[:0]
			for dy := -half; dy <= half; dy++ {
				sy := clampIndex(y+dy, grid.Height)
				for dx := -half; dx <= half; dx++ {
					buf = append(buf, grid.At(clampIndex(x+dx, grid.Width), sy))
				}
			}
			slices.Sort(buf)
			out.Set(x, y, buf[len(buf)/2])
		}
	}
	return out, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// DecimationFactor returns how much a frame of the given width must be
// reduced to get close to desiredWidth. Decimation is integral, so the
// resulting width may differ slightly from desiredWidth.
func DecimationFactor(width, desiredWidth int) int {
	if desiredWidth <= 0 || width <= desiredWidth {
		return 1
	}
	return width / desiredWidth
}

// Decimate reduces grid by an integer factor in both axes. Each output cell is
// the median of the non-zero samples in its factor x factor block, or zero
// if the whole block is a hole. Partial blocks at the right and bottom edges
// are dropped.
func Decimate(grid *parser.DepthGrid, factor int) (*parser.DepthGrid, error) {
	if factor < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "decimation factor must be >= 1, got %d", factor)
	}
	if factor == 1 {
		return grid.Clone(), nil
	}
	w, h := grid.Width/factor, grid.Height/factor
	if w == 0 || h == 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "decimation factor %d too large for %dx%d frame", factor, grid.Width, grid.Height)
	}

	out := parser.NewDepthGrid(w, h)
	buf := make([]int16, 0, factor*factor)
	for oy := 0; oy < h; oy++ {
		for ox := 0; ox < w; ox++ {
			buf = buf[:0]
			for y := oy * factor; y < (oy+1)*factor; y++ {
				for x := ox * factor; x < (ox+1)*factor; x++ {
					if v := grid.At(x, y); v != 0 {
						buf = append(buf, v)
					}
				}
			}
			if len(buf) == 0 {
				continue
			}
			slices.Sort(buf)
			out.Set(ox, oy, buf[len(buf)/2])
		}
	}
	return out, nil
}
