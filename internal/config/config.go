// Package config holds the explicit run parameters of the depth filter
// pipeline and loads them from YAML.
package config

import (
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/user/depth_filter_go/internal/parser"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full parameter set for one pipeline run.
type Config struct {
	FilePath string `yaml:"file"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	MaxDepth int    `yaml:"max-depth"`

	MedianWindow  int `yaml:"median-window"`
	DecimateWidth int `yaml:"decimate-width,omitempty"` // 0 disables decimation

	DepthUnitMeters    float64 `yaml:"depth-unit-meters"`
	NearThresholdM     float64 `yaml:"near-threshold-m"`
	MidThresholdM      float64 `yaml:"mid-threshold-m"`
	OccupancyThreshold float64 `yaml:"occupancy-threshold"`

	Segment       bool    `yaml:"segment"`
	EdgeCapMeters float64 `yaml:"edge-cap-m"`

	FOVDegrees float64   `yaml:"fov-degrees"`
	CueThetas  []float64 `yaml:"cue-thetas"`

	OutputDir string          `yaml:"output-dir,omitempty"`
	Artifacts ArtifactsConfig `yaml:"artifacts,omitempty"`
}

// ArtifactsConfig selects which outputs are written when OutputDir is set.
type ArtifactsConfig struct {
	PDF           bool `yaml:"pdf"`
	HTML          bool `yaml:"html"`
	CSV           bool `yaml:"csv"`
	Preview       bool `yaml:"preview"`
	Plots         bool `yaml:"plots"`
	FilteredFrame bool `yaml:"filtered-frame"`
	PreviewWidth  int  `yaml:"preview-width,omitempty"`
}

// Default returns the parameters of the observed hallway capture.
func Default() Config {
	return Config{
		Width:              parser.DefaultWidth,
		Height:             parser.DefaultHeight,
		MaxDepth:           parser.DefaultMaxDepth,
		MedianWindow:       5,
		DepthUnitMeters:    0.001,
		NearThresholdM:     1.0,
		MidThresholdM:      2.5,
		OccupancyThreshold: 0.3,
		Segment:            true,
		EdgeCapMeters:      5,
		FOVDegrees:         87,
		CueThetas:          []float64{-32, 0, 32},
		Artifacts: ArtifactsConfig{
			Plots:        true,
			PreviewWidth: 848,
		},
	}
}

// Load reads a YAML config file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg, nil
}

// Validate fails fast on parameters the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.MaxDepth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxDepth > math.MaxInt16 {
		return errors.Wrapf(ErrInvalidConfig, "max depth %d exceeds int16 range", c.MaxDepth)
	}
	if c.MedianWindow < 1 || c.MedianWindow%2 == 0 {
		return errors.Wrapf(ErrInvalidConfig, "median window must be a positive odd integer, got %d", c.MedianWindow)
	}
	if c.DecimateWidth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "decimate width must not be negative, got %d", c.DecimateWidth)
	}
	if c.DepthUnitMeters <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "depth unit must be positive, got %g", c.DepthUnitMeters)
	}
	if c.NearThresholdM <= 0 || c.MidThresholdM <= c.NearThresholdM {
		return errors.Wrapf(ErrInvalidConfig, "thresholds must satisfy 0 < near (%g) < mid (%g)", c.NearThresholdM, c.MidThresholdM)
	}
	if c.OccupancyThreshold <= 0 || c.OccupancyThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "occupancy threshold must be in (0,1], got %g", c.OccupancyThreshold)
	}
	if c.Segment && c.EdgeCapMeters <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "edge cap must be positive when segmenting, got %g", c.EdgeCapMeters)
	}
	if c.FOVDegrees <= 0 || c.FOVDegrees >= 180 {
		return errors.Wrapf(ErrInvalidConfig, "fov must be in (0,180) degrees, got %g", c.FOVDegrees)
	}
	return nil
}

// WantsArtifacts reports whether any file output is requested.
func (c Config) WantsArtifacts() bool {
	return c.OutputDir != ""
}
