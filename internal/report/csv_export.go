package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/analysis"
	"github.com/user/depth_filter_go/internal/parser"
)

// WriteGridCSV writes one CSV record per grid row.
func WriteGridCSV(w io.Writer, grid *parser.DepthGrid) error {
	cw := csv.NewWriter(w)
	record := make([]string, grid.Width)
	for y := 0; y < grid.Height; y++ {
		for x, v := range grid.RowView(y) {
			record[x] = strconv.Itoa(int(v))
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write CSV row %d", y)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRowCSV writes the middle row sample as column,depth pairs.
func WriteRowCSV(w io.Writer, fa *analysis.FrameAnalysis) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"column", "depth"}); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for x, v := range fa.MiddleRow {
		if err := cw.Write([]string{strconv.Itoa(x), strconv.Itoa(int(v))}); err != nil {
			return errors.Wrapf(err, "failed to write CSV row %d", x)
		}
	}
	cw.Flush()
	return cw.Error()
}
