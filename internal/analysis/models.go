package analysis

import (
	"time"

	"github.com/user/depth_filter_go/internal/parser"
)

// RowStats describes one row sample. Distribution fields ignore holes.
type RowStats struct {
	Count  int
	Holes  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // population standard deviation
	Median float64
}

// FrameStats counts holes over a whole grid.
type FrameStats struct {
	Cells        int
	Holes        int
	HoleFraction float64
}

// ObstacleResult is the outcome of ClassifyObstacle.
type ObstacleResult struct {
	Class        ObstacleClass
	ZoneCells    int
	NearFraction float64
	MidFraction  float64
}

// SoundCue is one planned audio cue. Nothing is played; this is the data a
// playback loop would consume.
type SoundCue struct {
	Theta     float64 // bearing in degrees
	X, Y      int     // sampled pixel
	Depth     int16   // raw depth at the pixel
	Meters    float64
	DelayMs   int
	LeftGain  float64
	RightGain float64
	Muted     bool
}

// StepTiming records how long one pipeline step took.
type StepTiming struct {
	Name    string
	Elapsed time.Duration
}

// FrameAnalysis holds everything computed for one frame.
type FrameAnalysis struct {
	RunID  string
	Source string

	InputWidth       int
	InputHeight      int
	DecimationFactor int
	MaxDepth         int16
	MedianWindow     int

	ClampedCells int
	Clamped      *parser.DepthGrid // after decimation and clamping
	Denoised     *parser.DepthGrid // after the median filter
	Filtered     *parser.DepthGrid // after hole filling
	Segmented    *parser.DepthGrid // region means; nil when segmentation is off
	Regions      int
	EdgeCells    int

	RowIndex  int
	MiddleRow []int16
	RowStats  RowStats

	Before FrameStats // holes in the input frame
	After  FrameStats // holes left after filling

	Obstacle ObstacleResult
	Cues     []SoundCue

	Steps          []StepTiming
	AnalysisErrors []string // non-fatal warnings
}

func NewFrameAnalysis() *FrameAnalysis {
	return &FrameAnalysis{
		Steps:          make([]StepTiming, 0),
		AnalysisErrors: make([]string, 0),
	}
}

// TotalElapsed sums the step timings.
func (fa *FrameAnalysis) TotalElapsed() time.Duration {
	var total time.Duration
	for _, s := range fa.Steps {
		total += s.Elapsed
	}
	return total
}
