package parser

import (
	"gonum.org/v1/gonum/mat"
)

// Observed frame geometry of the hallway recordings.
const (
	DefaultWidth    = 424
	DefaultHeight   = 240
	DefaultMaxDepth = 5000

	// BytesPerSample is the size of one little-endian int16 depth reading.
	BytesPerSample = 2
)

// DepthGrid holds one depth frame in row-major order.
// A value of zero marks a hole (no reading from the sensor).
type DepthGrid struct {
	Width  int
	Height int
	Data   []int16 // len == Width*Height, index = y*Width + x
}

// NewDepthGrid allocates a zeroed grid of the given size.
func NewDepthGrid(width, height int) *DepthGrid {
	return &DepthGrid{
		Width:  width,
		Height: height,
		Data:   make([]int16, width*height),
	}
}

// NewDepthGridFromRows builds a grid from equal-length rows. Used mostly by tests
// and by tools that hand-author small frames.
func NewDepthGridFromRows(rows [][]int16) *DepthGrid {
	if len(rows) == 0 {
		return &DepthGrid{}
	}
	g := NewDepthGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		copy(g.Data[y*g.Width:(y+1)*g.Width], row)
	}
	return g
}

func (g *DepthGrid) At(x, y int) int16 {
	return g.Data[y*g.Width+x]
}

func (g *DepthGrid) Set(x, y int, v int16) {
	g.Data[y*g.Width+x] = v
}

// Dims returns (rows, cols), matching gonum's mat.Matrix convention.
func (g *DepthGrid) Dims() (int, int) {
	return g.Height, g.Width
}

// RowView returns the backing slice of row y. Writes through it mutate the grid.
func (g *DepthGrid) RowView(y int) []int16 {
	return g.Data[y*g.Width : (y+1)*g.Width]
}

// Row returns a copy of row y.
func (g *DepthGrid) Row(y int) []int16 {
	out := make([]int16, g.Width)
	copy(out, g.RowView(y))
	return out
}

// Rows returns a copy of the grid as a slice of rows.
func (g *DepthGrid) Rows() [][]int16 {
	rows := make([][]int16, g.Height)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return rows
}

func (g *DepthGrid) Clone() *DepthGrid {
	c := &DepthGrid{Width: g.Width, Height: g.Height, Data: make([]int16, len(g.Data))}
	copy(c.Data, g.Data)
	return c
}

// Len is the number of samples in the grid.
func (g *DepthGrid) Len() int {
	return len(g.Data)
}

// CountZeros returns the number of hole cells.
func (g *DepthGrid) CountZeros() int {
	n := 0
	for _, v := range g.Data {
		if v == 0 {
			n++
		}
	}
	return n
}

// Dense converts the grid to a gonum dense matrix (rows = Height, cols = Width),
// scaled by unit. Pass unit 1 to keep raw sensor units.
func (g *DepthGrid) Dense(unit float64) *mat.Dense {
	vals := make([]float64, len(g.Data))
	for i, v := range g.Data {
		vals[i] = float64(v) * unit
	}
	return mat.NewDense(g.Height, g.Width, vals)
}
