package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/analysis"
	"github.com/user/depth_filter_go/internal/config"
	"github.com/user/depth_filter_go/internal/log"
	"github.com/user/depth_filter_go/internal/parser"
	"github.com/user/depth_filter_go/internal/report"
)

// Artifact file names inside the output directory.
const (
	rowPlotFile          = "row_profile.png"
	clampedHeatmapFile   = "heatmap_clamped.png"
	filteredHeatmapFile  = "heatmap_filtered.png"
	segmentedHeatmapFile = "heatmap_segmented.png"
	demoPlotFile         = "demo_population.png"
	previewFile          = "preview_filtered.png"
	bandPreviewFile      = "preview_bands.png"
	pdfReportFile        = "report.pdf"
	htmlChartFile        = "row_profile.html"
	gridCSVFile          = "filtered_frame.csv"
	rowCSVFile           = "middle_row.csv"
	filteredRawFile      = "filtered_frame.raw"
)

// App runs one frame through the pipeline and writes the requested artifacts.
type App struct {
	cfg     config.Config
	results *analysis.FrameAnalysis
	written []string
}

// NewApp creates a new App for cfg
func NewApp(cfg config.Config) *App {
	return &App{cfg: cfg}
}

func (a *App) sendStatus(message string) {
	log.Info(message)
}

// Results returns the analysis of the last successful Run.
func (a *App) Results() *analysis.FrameAnalysis {
	return a.results
}

// Written lists the artifact paths produced by the last Run.
func (a *App) Written() []string {
	return a.written
}

// Run loads the frame, filters it and writes artifacts. ctx is checked
// between steps; a cancelled run returns ctx.Err().
func (a *App) Run(ctx context.Context) error {
	a.written = nil
	a.sendStatus(fmt.Sprintf("Request: file=[%s], %dx%d, max depth %d, window %d",
		a.cfg.FilePath, a.cfg.Width, a.cfg.Height, a.cfg.MaxDepth, a.cfg.MedianWindow))

	grid, err := parser.ParseDepthFrame(a.cfg.FilePath, a.cfg.Width, a.cfg.Height)
	if err != nil {
		return errors.Wrap(err, "error loading depth frame")
	}
	a.sendStatus(fmt.Sprintf("Loaded %d samples, %d holes.", grid.Len(), grid.CountZeros()))
	if err := ctx.Err(); err != nil {
		return err
	}

	results, err := analysis.AnalyzeDepthFrame(grid, a.cfg)
	if err != nil {
		return errors.Wrap(err, "error analyzing depth frame")
	}
	a.results = results
	for _, e := range results.AnalysisErrors {
		log.Warnf("%s", e)
	}
	for _, st := range results.Steps {
		log.Debugw("pipeline step", "run", results.RunID, "step", st.Name, "elapsed", st.Elapsed)
	}
	log.Infow("frame analysed",
		"run", results.RunID,
		"row", results.RowIndex,
		"row_mean", results.RowStats.Mean,
		"row_holes", results.RowStats.Holes,
		"clamped_cells", results.ClampedCells,
		"holes_before", results.Before.Holes,
		"holes_after", results.After.Holes,
		"obstacle", results.Obstacle.Class.String(),
		"elapsed", results.TotalElapsed(),
	)
	for _, c := range results.Cues {
		log.Debugw("cue", "theta", c.Theta, "x", c.X, "y", c.Y, "meters", c.Meters, "delay_ms", c.DelayMs, "muted", c.Muted)
	}

	if !a.cfg.WantsArtifacts() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.writeArtifacts(ctx, results)
}

func (a *App) writeArtifacts(ctx context.Context, results *analysis.FrameAnalysis) error {
	outDir := a.cfg.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", outDir)
	}
	art := a.cfg.Artifacts

	plotImages := make(map[string][]byte)
	if art.Plots || art.PDF {
		a.sendStatus("Generating plots...")
		a.generatePlots(results, plotImages)
		a.sendStatus("Plot generation complete.")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if art.Plots {
		files := map[string]string{
			report.PlotRowProfile:       rowPlotFile,
			report.PlotHeatmapClamped:   clampedHeatmapFile,
			report.PlotHeatmapFiltered:  filteredHeatmapFile,
			report.PlotHeatmapSegmented: segmentedHeatmapFile,
			report.PlotDemo:             demoPlotFile,
		}
		for key, name := range files {
			img, ok := plotImages[key]
			if !ok {
				continue
			}
			if err := a.writeFile(name, img); err != nil {
				return err
			}
		}
	}

	if art.Preview {
		preview, err := report.CreateDepthPreview(results.Filtered, results.MaxDepth, art.PreviewWidth)
		if err != nil {
			return errors.Wrap(err, "error generating preview")
		}
		if err := a.writeFile(previewFile, preview); err != nil {
			return err
		}
		bands, ok := plotImages[report.PlotBandPreview]
		if !ok {
			bands, err = a.renderBandPreview(results)
			if err != nil {
				return errors.Wrap(err, "error generating band preview")
			}
		}
		if err := a.writeFile(bandPreviewFile, bands); err != nil {
			return err
		}
	}

	if art.HTML {
		if err := a.createWith(htmlChartFile, func(f *os.File) error {
			return report.CreateRowChartHTML(f, results)
		}); err != nil {
			return err
		}
	}

	if art.CSV {
		if err := a.createWith(gridCSVFile, func(f *os.File) error {
			return report.WriteGridCSV(f, results.Filtered)
		}); err != nil {
			return err
		}
		if err := a.createWith(rowCSVFile, func(f *os.File) error {
			return report.WriteRowCSV(f, results)
		}); err != nil {
			return err
		}
	}

	if art.FilteredFrame {
		path := filepath.Join(outDir, filteredRawFile)
		if err := parser.WriteDepthFrame(path, results.Filtered); err != nil {
			return errors.Wrap(err, "error writing filtered frame")
		}
		a.recordWritten(path)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if art.PDF {
		path := filepath.Join(outDir, pdfReportFile)
		a.sendStatus(fmt.Sprintf("Generating PDF: %s...", path))
		if err := report.BuildPDFReport(path, results, a.cfg, plotImages); err != nil {
			return errors.Wrap(err, "error generating PDF report")
		}
		a.recordWritten(path)
	}

	a.sendStatus(fmt.Sprintf("Wrote %d artifacts to %s", len(a.written), outDir))
	return nil
}

// generatePlots renders every plot into plotImages. A plot that fails is
// logged and left out.
func (a *App) generatePlots(results *analysis.FrameAnalysis, plotImages map[string][]byte) {
	plotConfigs := []struct {
		Name   string
		Create func() ([]byte, error)
	}{
		{report.PlotRowProfile, func() ([]byte, error) { return report.CreateRowPlot(results) }},
		{report.PlotHeatmapClamped, func() ([]byte, error) {
			return report.CreateDepthHeatmap(results.Clamped, "Clamped Depth", results.MaxDepth)
		}},
		{report.PlotHeatmapFiltered, func() ([]byte, error) {
			return report.CreateDepthHeatmap(results.Filtered, "Filtered Depth", results.MaxDepth)
		}},
		{report.PlotHeatmapSegmented, func() ([]byte, error) {
			if results.Segmented == nil {
				return nil, nil
			}
			return report.CreateDepthHeatmap(results.Segmented, "Segmented Depth", results.MaxDepth)
		}},
		{report.PlotBandPreview, func() ([]byte, error) { return a.renderBandPreview(results) }},
		{report.PlotDemo, report.CreateDemoPlot},
	}
	for _, pc := range plotConfigs {
		log.Debugf("Plot: %s", pc.Name)
		imgBytes, err := pc.Create()
		if err != nil {
			log.Errorf("Error generating plot %s: %v", pc.Name, err)
			continue
		}
		if imgBytes == nil {
			continue
		}
		plotImages[pc.Name] = imgBytes
	}
}

func (a *App) renderBandPreview(results *analysis.FrameAnalysis) ([]byte, error) {
	log.Debugw("rendering band preview", "run", results.RunID)
	return report.CreateBandPreview(a.sampledGrid(results), a.bandColormap(results), a.cfg.Artifacts.PreviewWidth)
}

// sampledGrid is the frame the obstacle class and cues were taken from.
func (a *App) sampledGrid(results *analysis.FrameAnalysis) *parser.DepthGrid {
	if results.Segmented != nil {
		return results.Segmented
	}
	return results.Filtered
}

func (a *App) bandColormap(results *analysis.FrameAnalysis) *report.DepthBandColormap {
	unit := a.cfg.DepthUnitMeters
	return report.NewObstacleBandColormap(a.cfg.NearThresholdM/unit, a.cfg.MidThresholdM/unit, float64(results.MaxDepth))
}

func (a *App) writeFile(name string, data []byte) error {
	path := filepath.Join(a.cfg.OutputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	a.recordWritten(path)
	return nil
}

func (a *App) createWith(name string, fill func(f *os.File) error) error {
	path := filepath.Join(a.cfg.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := fill(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	a.recordWritten(path)
	return nil
}

func (a *App) recordWritten(path string) {
	log.Debugf("wrote %s", path)
	a.written = append(a.written, path)
}
