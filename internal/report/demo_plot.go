package report

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// economicsPopCSV is a monthly excerpt of the US population series
// (thousands) from the ggplot2 economics dataset.
//
//go:embed data/economics_pop.csv
var economicsPopCSV []byte

// PopulationPoint is one row of the demo dataset.
type PopulationPoint struct {
	Date time.Time
	Pop  float64
}

// LoadDemoDataset parses the embedded economics excerpt.
func LoadDemoDataset() ([]PopulationPoint, error) {
	return parsePopulationCSV(economicsPopCSV)
}

func parsePopulationCSV(data []byte) ([]PopulationPoint, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read demo CSV")
	}
	if len(rows) < 2 {
		return nil, errors.Errorf("demo CSV has no data rows")
	}

	points := make([]PopulationPoint, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, errors.Errorf("demo CSV row %d: expected 2 fields, got %d", i+2, len(row))
		}
		date, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			return nil, errors.Wrapf(err, "demo CSV row %d: bad date %q", i+2, row[0])
		}
		pop, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "demo CSV row %d: bad pop %q", i+2, row[1])
		}
		points = append(points, PopulationPoint{Date: date, Pop: pop})
	}
	return points, nil
}

// CreateDemoPlot renders population over time from the embedded dataset.
// It has nothing to do with the depth frame; it only shows the plotting
// stack is wired up.
func CreateDemoPlot() ([]byte, error) {
	points, err := LoadDemoDataset()
	if err != nil {
		return nil, err
	}

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i] = plotter.XY{X: float64(pt.Date.Unix()), Y: pt.Pop}
	}

	p := plot.New()
	p.Title.Text = "US Population"
	p.X.Label.Text = "date"
	p.Y.Label.Text = "pop"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create demo line")
	}
	line.Color = colorFiltered
	p.Add(line)

	return renderPNG(p, vg.Points(640), vg.Points(360))
}
