package analysis

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/depth_filter_go/internal/parser"
)

func gridOf(rows ...[]int16) *parser.DepthGrid {
	return parser.NewDepthGridFromRows(rows)
}

func TestFillHoles_Rows(t *testing.T) {
	tests := []struct {
		name string
		in   []int16
		want []int16
	}{
		{"mixed holes", []int16{0, 0, 5, 0, 3}, []int16{5, 5, 5, 3, 3}},
		{"trailing zeros stay", []int16{1, 0, 0}, []int16{1, 0, 0}},
		{"all zeros", []int16{0, 0, 0, 0}, []int16{0, 0, 0, 0}},
		{"no holes", []int16{4, 1, 9}, []int16{4, 1, 9}},
		{"first column filled", []int16{0, 7}, []int16{7, 7}},
		{"single column", []int16{0}, []int16{0}},
		{"long run", []int16{0, 0, 0, 0, 0, 2}, []int16{2, 2, 2, 2, 2, 2}},
		{"negative seed propagates", []int16{0, -3, 0, 0}, []int16{-3, -3, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FillHoles(gridOf(tt.in))
			if diff := cmp.Diff(tt.want, got.Row(0)); diff != "" {
				t.Errorf("FillHoles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFillHoles_DoesNotMutateInput(t *testing.T) {
	in := gridOf([]int16{0, 0, 5, 0, 3})
	_ = FillHoles(in)
	assert.Equal(t, []int16{0, 0, 5, 0, 3}, in.Row(0))
}

func TestFillHolesInPlace_ReturnsSameGrid(t *testing.T) {
	in := gridOf([]int16{0, 0, 5, 0, 3}, []int16{0, 1, 0, 0, 0})
	out := FillHolesInPlace(in)
	assert.Same(t, in, out)
	assert.Equal(t, []int16{5, 5, 5, 3, 3}, in.Row(0))
	assert.Equal(t, []int16{1, 1, 0, 0, 0}, in.Row(1))
}

func TestFillHoles_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		w, h := 1+rng.Intn(12), 1+rng.Intn(6)
		g := parser.NewDepthGrid(w, h)
		for i := range g.Data {
			if rng.Intn(3) > 0 {
				g.Data[i] = int16(rng.Intn(5000))
			}
		}
		filled := FillHoles(g)

		for y := 0; y < h; y++ {
			// Last column never changes.
			require.Equal(t, g.At(w-1, y), filled.At(w-1, y))

			// A zero may survive only if everything to its right was zero.
			for x := 0; x < w; x++ {
				if filled.At(x, y) != 0 {
					continue
				}
				for rx := x; rx < w; rx++ {
					require.Zero(t, g.At(rx, y), "iter %d row %d col %d", iter, y, x)
				}
			}

			// Rows without holes are unchanged.
			if !containsZero(g.Row(y)) {
				require.Equal(t, g.Row(y), filled.Row(y))
			}
		}
	}
}

func containsZero(row []int16) bool {
	for _, v := range row {
		if v == 0 {
			return true
		}
	}
	return false
}

func TestClamp(t *testing.T) {
	in := gridOf([]int16{0, 4999, 5000, 5001, 32767, -5})
	got := Clamp(in, 5000)

	assert.Equal(t, []int16{0, 4999, 5000, 5000, 5000, -5}, got.Row(0))
	assert.Equal(t, int16(32767), in.At(4, 0), "input must be untouched")

	same := ClampInPlace(in, 100)
	assert.Same(t, in, same)
	for _, v := range in.Data {
		assert.LessOrEqual(t, v, int16(100))
	}
}

func TestRowAndMiddleRow(t *testing.T) {
	g := gridOf([]int16{1, 2}, []int16{3, 4}, []int16{5, 6}, []int16{7, 8})

	assert.Equal(t, 2, MiddleRowIndex(g))
	mid := MiddleRow(g)
	assert.Equal(t, []int16{5, 6}, mid)
	mid[0] = 99
	assert.Equal(t, int16(5), g.At(0, 2), "middle row must be a copy")

	r, err := Row(g, 1)
	require.NoError(t, err)
	assert.Equal(t, []int16{3, 4}, r)

	_, err = Row(g, 4)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = Row(g, -1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestMedianBlur(t *testing.T) {
	t.Run("removes salt noise", func(t *testing.T) {
		g := gridOf(
			[]int16{10, 10, 10},
			[]int16{10, 900, 10},
			[]int16{10, 10, 10},
		)
		out, err := MedianBlur(g, 3)
		require.NoError(t, err)
		for _, v := range out.Data {
			assert.Equal(t, int16(10), v)
		}
		assert.Equal(t, int16(900), g.At(1, 1))
	})

	t.Run("replicated border", func(t *testing.T) {
		// Corner (0,0) window with replicate: 1 1 2 / 1 1 2 / 4 4 5 -> median 2.
		g := gridOf(
			[]int16{1, 2, 3},
			[]int16{4, 5, 6},
			[]int16{7, 8, 9},
		)
		out, err := MedianBlur(g, 3)
		require.NoError(t, err)
		assert.Equal(t, int16(2), out.At(0, 0))
		assert.Equal(t, int16(5), out.At(1, 1))
		assert.Equal(t, int16(8), out.At(2, 2))
	})

	t.Run("window one copies", func(t *testing.T) {
		g := gridOf([]int16{3, 1, 2})
		out, err := MedianBlur(g, 1)
		require.NoError(t, err)
		assert.Equal(t, g.Data, out.Data)
		assert.NotSame(t, g, out)
	})

	t.Run("invalid window", func(t *testing.T) {
		for _, w := range []int{0, 2, -3} {
			_, err := MedianBlur(gridOf([]int16{1}), w)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "window %d: %v", w, err)
		}
	})

	t.Run("window larger than frame", func(t *testing.T) {
		g := gridOf([]int16{1, 9}, []int16{9, 9})
		out, err := MedianBlur(g, 5)
		require.NoError(t, err)
		for _, v := range out.Data {
			assert.Equal(t, int16(9), v)
		}
	})
}

func TestDecimate(t *testing.T) {
	g := gridOf(
		[]int16{1, 3, 0, 0, 7},
		[]int16{2, 0, 0, 0, 7},
		[]int16{5, 5, 8, 6, 7},
		[]int16{5, 5, 4, 0, 7},
	)
	out, err := Decimate(g, 2)
	require.NoError(t, err)
	want := [][]int16{{2, 0}, {5, 6}}
	if diff := cmp.Diff(want, out.Rows()); diff != "" {
		t.Errorf("Decimate mismatch (-want +got):\n%s", diff)
	}

	same, err := Decimate(g, 1)
	require.NoError(t, err)
	assert.Equal(t, g.Data, same.Data)

	_, err = Decimate(g, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = Decimate(g, 6)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Contains(t, errors.Cause(err).Error(), "invalid filter argument")
}

func TestDecimationFactor(t *testing.T) {
	assert.Equal(t, 2, DecimationFactor(424, 200))
	assert.Equal(t, 4, DecimationFactor(848, 200))
	assert.Equal(t, 1, DecimationFactor(150, 200))
	assert.Equal(t, 1, DecimationFactor(424, 0))
}
