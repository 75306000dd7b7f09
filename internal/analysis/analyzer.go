package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/user/depth_filter_go/internal/config"
	"github.com/user/depth_filter_go/internal/parser"
)

// stopwatch collects step timings in the order the steps ran.
type stopwatch struct {
	last  time.Time
	steps *[]StepTiming
}

func newStopwatch(steps *[]StepTiming) *stopwatch {
	return &stopwatch{last: time.Now(), steps: steps}
}

func (s *stopwatch) lap(name string) {
	now := time.Now()
	*s.steps = append(*s.steps, StepTiming{Name: name, Elapsed: now.Sub(s.last)})
	s.last = now
}

// AnalyzeDepthFrame runs the filter pipeline on grid:
// decimate (optional), clamp, median blur, fill holes, extract the middle row,
// segment into regions (optional), then derive the obstacle class and the
// sound cues from the segmented frame.
// grid itself is never modified.
func AnalyzeDepthFrame(grid *parser.DepthGrid, cfg config.Config) (*FrameAnalysis, error) {
	if grid == nil || grid.Len() == 0 {
		return nil, errors.Wrap(ErrEmptyGrid, "cannot analyze")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if grid.Len() != grid.Width*grid.Height {
		return nil, errors.Wrapf(ErrInvalidArgument, "depth grid holds %d samples, expected %dx%d", grid.Len(), grid.Width, grid.Height)
	}

	results := NewFrameAnalysis()
	results.RunID = uuid.NewString()
	results.Source = cfg.FilePath
	results.InputWidth = grid.Width
	results.InputHeight = grid.Height
	results.MaxDepth = int16(cfg.MaxDepth)
	results.MedianWindow = cfg.MedianWindow
	results.Before = CalculateFrameStats(grid)

	sw := newStopwatch(&results.Steps)

	results.DecimationFactor = DecimationFactor(grid.Width, cfg.DecimateWidth)
	working := grid.Clone()
	if results.DecimationFactor > 1 {
		decimated, err := Decimate(grid, results.DecimationFactor)
		if err != nil {
			return nil, err
		}
		working = decimated
		sw.lap("decimate")
	}

	negatives := 0
	for _, v := range working.Data {
		if v > results.MaxDepth {
			results.ClampedCells++
		} else if v < 0 {
			negatives++
		}
	}
	if negatives > 0 {
		results.AnalysisErrors = append(results.AnalysisErrors, fmt.Sprintf(
			"Warning: %d negative depth samples (raw values above 32767 read as int16).", negatives))
	}
	results.Clamped = ClampInPlace(working, results.MaxDepth)
	sw.lap("clamp")

	denoised, err := MedianBlur(results.Clamped, cfg.MedianWindow)
	if err != nil {
		return nil, err
	}
	results.Denoised = denoised
	sw.lap("median")

	results.Filtered = FillHoles(results.Denoised)
	sw.lap("fill_holes")

	results.RowIndex = MiddleRowIndex(results.Filtered)
	results.MiddleRow = MiddleRow(results.Filtered)
	results.RowStats = CalculateRowStats(results.MiddleRow)
	results.After = CalculateFrameStats(results.Filtered)
	sw.lap("row_extract")

	if results.After.Holes > 0 {
		results.AnalysisErrors = append(results.AnalysisErrors, fmt.Sprintf(
			"Warning: %d cells remain holes after filling (no reading to their right).", results.After.Holes))
	}

	sampled := results.Filtered
	if cfg.Segment {
		segmented, seg, err := SegmentRegions(results.Filtered, SegmentParams{
			UnitMeters:    cfg.DepthUnitMeters,
			EdgeCapMeters: cfg.EdgeCapMeters,
		})
		if err != nil {
			return nil, err
		}
		results.Segmented = segmented
		results.Regions = seg.Regions
		results.EdgeCells = seg.EdgeCells
		sampled = segmented
		sw.lap("segment")
	}

	results.Obstacle = ClassifyObstacle(sampled, ObstacleParams{
		UnitMeters:         cfg.DepthUnitMeters,
		NearThresholdM:     cfg.NearThresholdM,
		MidThresholdM:      cfg.MidThresholdM,
		OccupancyThreshold: cfg.OccupancyThreshold,
	})
	sw.lap("classify")

	results.Cues = PlanCues(sampled, CueParams{
		UnitMeters: cfg.DepthUnitMeters,
		FOVDegrees: cfg.FOVDegrees,
		Thetas:     cfg.CueThetas,
	})
	sw.lap("cues")

	return results, nil
}
