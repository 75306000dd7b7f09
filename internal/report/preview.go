package report

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/user/depth_filter_go/internal/parser"
)

// ColorizeDepth maps each cell of grid to a colour from colorFn. Holes
// (zero) are passed to colorFn as NaN.
func ColorizeDepth(grid *parser.DepthGrid, colorFn func(float64) color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			v := float64(grid.At(x, y))
			if v == 0 {
				v = math.NaN()
			}
			img.Set(x, y, colorFn(v))
		}
	}
	return img
}

// CreateDepthPreview colourises grid on a continuous scale up to maxDepth and
// resizes it to width pixels (height follows the aspect ratio). A width of 0
// keeps the native size.
func CreateDepthPreview(grid *parser.DepthGrid, maxDepth int16, width int) ([]byte, error) {
	if grid == nil || grid.Len() == 0 {
		return nil, errors.Errorf("no depth grid to preview")
	}
	cmap := moreland.ExtendedBlackBody()
	cmap.SetMin(0)
	cmap.SetMax(math.Max(float64(maxDepth), 1))

	img := ColorizeDepth(grid, func(v float64) color.Color {
		switch {
		case math.IsNaN(v):
			return holeColor
		case v < cmap.Min():
			return color.Black
		case v > cmap.Max():
			return color.White
		}
		c, err := cmap.At(v)
		if err != nil {
			return holeColor
		}
		return c
	})
	return encodePreview(img, width)
}

// CreateBandPreview colourises grid by obstacle band (see NewObstacleBandColormap).
func CreateBandPreview(grid *parser.DepthGrid, bands *DepthBandColormap, width int) ([]byte, error) {
	if grid == nil || grid.Len() == 0 {
		return nil, errors.Errorf("no depth grid to preview")
	}
	return encodePreview(ColorizeDepth(grid, bands.Color), width)
}

func encodePreview(img *image.NRGBA, width int) ([]byte, error) {
	var out image.Image = img
	if width > 0 && width != img.Bounds().Dx() {
		out = imaging.Resize(img, width, 0, imaging.NearestNeighbor)
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, out, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "failed to encode preview")
	}
	return buf.Bytes(), nil
}
