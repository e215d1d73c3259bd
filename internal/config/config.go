// Package config handles simulation configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/depthmesh/pkg/depth"
	"github.com/Faultbox/depthmesh/pkg/surface"
)

// Config holds all simulation settings.
type Config struct {
	Sensor         SensorConfig         `yaml:"sensor"`
	Reconstruction ReconstructionConfig `yaml:"reconstruction"`
	Scenario       ScenarioConfig       `yaml:"scenario"`
	Path           PathConfig           `yaml:"path"`
	Noise          NoiseConfig          `yaml:"noise"`
	Output         OutputConfig         `yaml:"output"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// SensorConfig holds the virtual depth camera intrinsics.
type SensorConfig struct {
	Width     int            `yaml:"width"`
	Height    int            `yaml:"height"`
	ViewAngle float64        `yaml:"view_angle"` // vertical, degrees
	Near      float64        `yaml:"near"`
	Far       float64        `yaml:"far"`
	Viewport  ViewportConfig `yaml:"viewport"`
}

// ViewportConfig is the normalized render sub-rectangle.
type ViewportConfig struct {
	X0 float64 `yaml:"x0"`
	Y0 float64 `yaml:"y0"`
	X1 float64 `yaml:"x1"`
	Y1 float64 `yaml:"y1"`
}

// Viewport converts to the depth package type.
func (v ViewportConfig) Viewport() depth.Viewport {
	return depth.Viewport{X0: v.X0, Y0: v.Y0, X1: v.X1, Y1: v.Y1}
}

// ReconstructionConfig holds the per-frame thresholds.
type ReconstructionConfig struct {
	DiscontinuityThreshold float64 `yaml:"discontinuity_threshold"`
	FarPlaneThreshold      float64 `yaml:"farplane_threshold"`
	ClassifierTolerance    float64 `yaml:"classifier_tolerance"`
	ColorPatches           bool    `yaml:"color_patches"`
}

// Discontinuity returns the detector parameters.
func (r ReconstructionConfig) Discontinuity() surface.DiscontinuityParams {
	return surface.DiscontinuityParams{Threshold: r.DiscontinuityThreshold, FarPlane: r.FarPlaneThreshold}
}

// ScenarioConfig selects the scene and its dynamic changes.
type ScenarioConfig struct {
	Name   string        `yaml:"name"`
	Hidden []string      `yaml:"hidden,omitempty"` // parts hidden before the first step
	Events []EventConfig `yaml:"events,omitempty"`
}

// EventConfig toggles a scene part before the given step is captured.
type EventConfig struct {
	Step    int    `yaml:"step"`
	Part    string `yaml:"part"`
	Visible bool   `yaml:"visible"`
}

// PathConfig selects the sensor trajectory.
type PathConfig struct {
	Name  string `yaml:"name"`
	Steps int    `yaml:"steps"`
}

// NoiseConfig holds sensor noise settings.
type NoiseConfig struct {
	Enabled bool    `yaml:"enabled"`
	StdDev  float64 `yaml:"stddev"`
	Seed    int64   `yaml:"seed"`
}

// OutputConfig holds diagnostics output settings.
type OutputConfig struct {
	Dir                string  `yaml:"dir"`
	DepthImages        bool    `yaml:"depth_images"`
	GrowthPlot         bool    `yaml:"growth_plot"`
	CoverageResolution float64 `yaml:"coverage_resolution"` // voxel size in meters, 0 disables
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Width:     320,
			Height:    240,
			ViewAngle: 60,
			Near:      0.5,
			Far:       10,
			Viewport:  ViewportConfig{0, 0, 1, 1},
		},
		Reconstruction: ReconstructionConfig{
			DiscontinuityThreshold: 0.01,
			FarPlaneThreshold:      depth.FarPlane,
			ClassifierTolerance:    0.01,
			ColorPatches:           true,
		},
		Scenario: ScenarioConfig{
			Name: "table",
		},
		Path: PathConfig{
			Name:  "helix_table_ub",
			Steps: 20,
		},
		Noise: NoiseConfig{
			Enabled: false,
			StdDev:  0.01,
			Seed:    1,
		},
		Output: OutputConfig{
			Dir:                "output",
			DepthImages:        false,
			GrowthPlot:         true,
			CoverageResolution: 0.05,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a step.
func (c *Config) Validate() error {
	var errs []error
	s := c.Sensor
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("sensor: size %dx%d must be positive", s.Width, s.Height))
	}
	if s.ViewAngle <= 0 || s.ViewAngle >= 180 {
		errs = append(errs, fmt.Errorf("sensor: view_angle %v must be in (0, 180)", s.ViewAngle))
	}
	if s.Near <= 0 || s.Far <= s.Near {
		errs = append(errs, fmt.Errorf("sensor: clipping range [%v, %v] is invalid", s.Near, s.Far))
	}
	if err := s.Viewport.Viewport().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sensor: %w", err))
	}

	r := c.Reconstruction
	if r.DiscontinuityThreshold <= 0 {
		errs = append(errs, fmt.Errorf("reconstruction: discontinuity_threshold %v must be positive", r.DiscontinuityThreshold))
	}
	if r.FarPlaneThreshold <= 0 || r.FarPlaneThreshold > depth.FarPlane {
		errs = append(errs, fmt.Errorf("reconstruction: farplane_threshold %v must be in (0, 1]", r.FarPlaneThreshold))
	}
	if r.ClassifierTolerance <= 0 {
		errs = append(errs, fmt.Errorf("reconstruction: classifier_tolerance %v must be positive", r.ClassifierTolerance))
	}

	if c.Scenario.Name == "" {
		errs = append(errs, errors.New("scenario: name is required"))
	}
	for i, ev := range c.Scenario.Events {
		if ev.Step < 0 || ev.Part == "" {
			errs = append(errs, fmt.Errorf("scenario: event %d needs a part and a non-negative step", i))
		}
	}
	if c.Path.Name == "" {
		errs = append(errs, errors.New("path: name is required"))
	}
	if c.Path.Steps < 0 {
		errs = append(errs, fmt.Errorf("path: steps %d must not be negative", c.Path.Steps))
	}
	if c.Noise.Enabled && c.Noise.StdDev < 0 {
		errs = append(errs, fmt.Errorf("noise: stddev %v must not be negative", c.Noise.StdDev))
	}
	if c.Output.CoverageResolution < 0 {
		errs = append(errs, fmt.Errorf("output: coverage_resolution %v must not be negative", c.Output.CoverageResolution))
	}
	return errors.Join(errs...)
}
