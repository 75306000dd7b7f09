package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/analysis"
	"github.com/user/depth_filter_go/internal/config"
	"github.com/user/depth_filter_go/internal/log"
)

// Keys of the images passed to BuildPDFReport.
const (
	PlotRowProfile       = "row_profile"
	PlotHeatmapClamped   = "heatmap_clamped"
	PlotHeatmapFiltered  = "heatmap_filtered"
	PlotHeatmapSegmented = "heatmap_segmented"
	PlotBandPreview      = "band_preview"
	PlotDemo             = "demo_population"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // manually tracked Y position for flowing content
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(text), pdfContentWidth)
	s.checkAddPage(float64(len(lines)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	s.pdf.Image(imageName, pdfMargin, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// table draws a bordered table; highlight marks cells to render in red.
func (s *pdfStyler) table(headers []string, colWidthsRel []float64, rows [][]string, highlight func(row, col int) bool) {
	colWidths := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidths[i] = rel * pdfContentWidth
	}

	s.checkAddPage(s.lineHeight * math.Min(float64(len(rows))+1, 8))
	sX := pdfMargin
	s.applyStyle("tableHeader")
	for i, header := range headers {
		s.pdf.SetXY(sX, s.currentY)
		s.pdf.CellFormat(colWidths[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
		sX += colWidths[i]
	}
	s.currentY += s.lineHeight

	for r, row := range rows {
		s.checkAddPage(s.lineHeight)
		sX = pdfMargin
		for c, cell := range row {
			if highlight != nil && highlight(r, c) {
				s.applyStyle("tableCellRed")
			} else {
				s.applyStyle("tableCell")
			}
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(colWidths[c], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			sX += colWidths[c]
		}
		s.currentY += s.lineHeight
	}
	s.addSpacer(4)
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", v)
}

func formatRegions(fa *analysis.FrameAnalysis) string {
	if fa.Segmented == nil {
		return "off"
	}
	return fmt.Sprintf("%d (%d edge)", fa.Regions, fa.EdgeCells)
}

// WritePDFReport renders the frame report to w.
func WritePDFReport(w io.Writer, fa *analysis.FrameAnalysis, cfg config.Config, plotImages map[string][]byte) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph("Depth Frame Filtering Report", "h1", "C")
	styler.addSpacer(3)

	if fa == nil {
		styler.writeParagraph("No analysis results to display.", "normal", "L")
		return pdf.Output(w)
	}

	styler.writeParagraph(fmt.Sprintf("Run %s", fa.RunID), "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Source: %s", fa.Source), "normal", "L")
	styler.addSpacer(3)

	styler.writeParagraph("Parameters", "h2", "L")
	styler.table(
		[]string{"Frame", "Decimation", "Max depth", "Median window", "Depth unit (m)", "Near / Mid (m)", "FOV (deg)"},
		[]float64{0.14, 0.12, 0.12, 0.14, 0.16, 0.16, 0.16},
		[][]string{{
			fmt.Sprintf("%d x %d", fa.InputWidth, fa.InputHeight),
			fmt.Sprintf("%dx", fa.DecimationFactor),
			fmt.Sprintf("%d", fa.MaxDepth),
			fmt.Sprintf("%d", fa.MedianWindow),
			fmt.Sprintf("%g", cfg.DepthUnitMeters),
			fmt.Sprintf("%.2f / %.2f", cfg.NearThresholdM, cfg.MidThresholdM),
			fmt.Sprintf("%.1f", cfg.FOVDegrees),
		}},
		nil,
	)

	styler.writeParagraph("Frame Statistics", "h2", "L")
	styler.table(
		[]string{"Cells", "Holes before", "Holes after", "Clamped cells", "Regions", "Obstacle", "Near fraction", "Mid fraction"},
		[]float64{0.12, 0.13, 0.13, 0.12, 0.12, 0.12, 0.13, 0.13},
		[][]string{{
			fmt.Sprintf("%d", fa.After.Cells),
			fmt.Sprintf("%d (%.1f%%)", fa.Before.Holes, fa.Before.HoleFraction*100),
			fmt.Sprintf("%d (%.1f%%)", fa.After.Holes, fa.After.HoleFraction*100),
			fmt.Sprintf("%d", fa.ClampedCells),
			formatRegions(fa),
			fa.Obstacle.Class.String(),
			fmt.Sprintf("%.3f", fa.Obstacle.NearFraction),
			fmt.Sprintf("%.3f", fa.Obstacle.MidFraction),
		}},
		func(_, col int) bool { return col == 5 && fa.Obstacle.Class == analysis.ObstacleNear },
	)

	rs := fa.RowStats
	styler.writeParagraph(fmt.Sprintf("Row %d Statistics", fa.RowIndex), "h2", "L")
	styler.table(
		[]string{"Samples", "Holes", "Min", "Max", "Mean", "Std Dev", "Median"},
		[]float64{0.14, 0.14, 0.14, 0.14, 0.14, 0.15, 0.15},
		[][]string{{
			fmt.Sprintf("%d", rs.Count),
			fmt.Sprintf("%d", rs.Holes),
			formatStat(rs.Min), formatStat(rs.Max), formatStat(rs.Mean), formatStat(rs.StdDev), formatStat(rs.Median),
		}},
		func(_, col int) bool { return col == 1 && rs.Holes > 0 },
	)

	styler.writeParagraph("Sound Cues", "h2", "L")
	if len(fa.Cues) > 0 {
		rows := make([][]string, 0, len(fa.Cues))
		for _, c := range fa.Cues {
			rows = append(rows, []string{
				fmt.Sprintf("%.0f", c.Theta),
				fmt.Sprintf("(%d, %d)", c.X, c.Y),
				fmt.Sprintf("%.2f", c.Meters),
				fmt.Sprintf("%d", c.DelayMs),
				fmt.Sprintf("%.3f", c.LeftGain),
				fmt.Sprintf("%.3f", c.RightGain),
			})
		}
		styler.table(
			[]string{"Bearing (deg)", "Pixel", "Distance (m)", "Delay (ms)", "Left gain", "Right gain"},
			[]float64{0.15, 0.17, 0.17, 0.17, 0.17, 0.17},
			rows,
			func(row, _ int) bool { return fa.Cues[row].Muted },
		)
	} else {
		styler.writeParagraph("No cues configured.", "normal", "L")
	}

	if len(fa.AnalysisErrors) > 0 {
		styler.writeParagraph("Warnings", "h2", "L")
		styler.writeParagraph(strings.Join(fa.AnalysisErrors, "\n"), "normal", "L")
	}

	timings := make([]string, 0, len(fa.Steps))
	for _, st := range fa.Steps {
		timings = append(timings, fmt.Sprintf("%s %s", st.Name, st.Elapsed))
	}
	styler.writeParagraph(fmt.Sprintf("Step timings: %s (total %s)", strings.Join(timings, ", "), fa.TotalElapsed()), "normal", "L")

	styler.newPage()
	styler.writeParagraph("Graphical Analysis", "h1", "C")
	styler.addSpacer(5)

	plotDefs := []struct {
		Key     string
		Title   string
		Caption string
		Aspect  float64
	}{
		{PlotRowProfile, "Middle Row Profile", "Filtered middle row (blue) against the clamped row (grey). Dashed orange lines mark cue columns.", 0.5},
		{PlotHeatmapClamped, "Clamped Frame", "Depth after clamping; holes in grey.", 0.65},
		{PlotHeatmapFiltered, "Filtered Frame", "Depth after median filtering and hole filling.", 0.65},
		{PlotHeatmapSegmented, "Segmented Frame", "Each region bounded by depth edges replaced by its mean depth; edge cells keep their own depth.", 0.65},
		{PlotBandPreview, "Obstacle Bands", "Red: nearer than the near threshold. Orange: nearer than the mid threshold. Green: further.", 0.57},
		{PlotDemo, "Demo Plot", "Population over time from the bundled sample dataset.", 0.5625},
	}

	imgWidth := pdfContentWidth * 0.75
	for i, pDef := range plotDefs {
		if pDef.Key == PlotHeatmapSegmented && fa.Segmented == nil {
			continue
		}
		if i > 0 {
			styler.newPage()
		}
		styler.writeParagraph(pDef.Title, "h2", "L")
		if imgBytes, ok := plotImages[pDef.Key]; ok && len(imgBytes) > 0 {
			styler.addImage(imgBytes, pDef.Key, imgWidth, imgWidth*pDef.Aspect, pDef.Caption)
		} else {
			log.Warnf("plot %s not available for PDF report", pDef.Key)
			styler.writeParagraph(fmt.Sprintf("Plot for %s not available.", pDef.Title), "normal", "L")
		}
	}

	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "failed to build PDF report")
	}
	return pdf.Output(w)
}

// BuildPDFReport writes the frame report to filepath.
func BuildPDFReport(filepath string, fa *analysis.FrameAnalysis, cfg config.Config, plotImages map[string][]byte) error {
	file, err := os.Create(filepath)
	if err != nil {
		return errors.Wrap(err, "failed to create PDF file")
	}
	if err := WritePDFReport(file, fa, cfg, plotImages); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
