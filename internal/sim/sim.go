// Package sim wires a configured reconstruction run: scene, sensor, path,
// pipeline and diagnostics.
package sim

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/depthmesh/internal/config"
	"github.com/Faultbox/depthmesh/internal/diag"
	"github.com/Faultbox/depthmesh/internal/pipeline"
	"github.com/Faultbox/depthmesh/internal/scene"
	"github.com/Faultbox/depthmesh/internal/sensor"
	"github.com/Faultbox/depthmesh/internal/trajectory"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// Simulation is a configured run.
type Simulation struct {
	cfg *config.Config
	log *zap.Logger

	toggle   scene.Toggleable
	poses    []sensor.Pose
	events   []pipeline.Event
	world    *worldmesh.Mesh
	pipeline *pipeline.Pipeline
	sinks    diag.Sink
	coverage *diag.Coverage
}

// New builds a simulation from cfg.
func New(cfg *config.Config, log *zap.Logger) (*Simulation, error) {
	log.Info("initializing simulation",
		zap.String("scenario", cfg.Scenario.Name),
		zap.String("path", cfg.Path.Name),
		zap.Int("steps", cfg.Path.Steps),
		zap.Int("width", cfg.Sensor.Width),
		zap.Int("height", cfg.Sensor.Height))

	s := &Simulation{cfg: cfg, log: log}

	src, err := scene.New(cfg.Scenario.Name)
	if err != nil {
		return nil, err
	}
	s.toggle, _ = src.(scene.Toggleable)

	if (len(cfg.Scenario.Hidden) > 0 || len(cfg.Scenario.Events) > 0) && s.toggle == nil {
		return nil, fmt.Errorf("scenario %s: %w", src.Name(), pipeline.ErrNotToggleable)
	}
	for _, ev := range cfg.Scenario.Events {
		if !s.hasPart(ev.Part) {
			return nil, fmt.Errorf("scenario %s event at step %d: %w %q", src.Name(), ev.Step, scene.ErrUnknownPart, ev.Part)
		}
		s.events = append(s.events, pipeline.Event{Step: ev.Step, Part: ev.Part, Visible: ev.Visible})
	}

	// Paths are sized from the full scene, before parts are hidden.
	s.poses, err = trajectory.Named(cfg.Path.Name, cfg.Path.Steps, src)
	if err != nil {
		return nil, err
	}
	for _, part := range cfg.Scenario.Hidden {
		if err := s.toggle.SetPartVisible(part, false); err != nil {
			return nil, err
		}
	}

	cam := sensor.Camera{
		Width:     cfg.Sensor.Width,
		Height:    cfg.Sensor.Height,
		ViewAngle: cfg.Sensor.ViewAngle,
		Near:      cfg.Sensor.Near,
		Far:       cfg.Sensor.Far,
		Viewport:  cfg.Sensor.Viewport.Viewport(),
	}
	if err := cam.Validate(); err != nil {
		return nil, err
	}
	var opts []sensor.Option
	if cfg.Noise.Enabled {
		opts = append(opts, sensor.WithNoise(cfg.Noise.StdDev, cfg.Noise.Seed))
	}
	capt := sensor.New(cam, src, opts...)

	// Room for one full frame up front.
	w, h := cfg.Sensor.Width, cfg.Sensor.Height
	s.world = worldmesh.New(
		worldmesh.WithColors(cfg.Reconstruction.ColorPatches),
		worldmesh.WithCapacity(w*h, 2*(w-1)*(h-1)),
	)

	sinks, err := s.buildSinks()
	if err != nil {
		return nil, err
	}
	s.sinks = sinks

	s.pipeline = pipeline.New(capt, sensor.NewPredictor(cam), s.world,
		pipeline.WithLogger(log.Named("pipeline")),
		pipeline.WithParams(pipeline.Params{
			Discontinuity:       cfg.Reconstruction.Discontinuity(),
			ClassifierTolerance: cfg.Reconstruction.ClassifierTolerance,
		}),
		pipeline.WithSink(sinks),
		pipeline.OnTransition(func(from, to pipeline.Stage) {
			log.Debug("stage", zap.Stringer("from", from), zap.Stringer("to", to))
		}),
	)

	log.Info("simulation initialized", zap.Int("poses", len(s.poses)))
	return s, nil
}

func (s *Simulation) hasPart(id string) bool {
	for _, p := range s.toggle.Parts() {
		if p == id {
			return true
		}
	}
	return false
}

func (s *Simulation) buildSinks() (diag.Sink, error) {
	out := s.cfg.Output
	sinks := []diag.Sink{diag.NewLogSink(s.log.Named("diag"))}
	if out.DepthImages {
		sinks = append(sinks, diag.NewDepthImageWriter(filepath.Join(out.Dir, "depth"), "step"))
	}
	if out.GrowthPlot {
		sinks = append(sinks, diag.NewGrowthPlot(filepath.Join(out.Dir, "growth.png")))
	}
	if out.CoverageResolution > 0 {
		c, err := diag.NewCoverage(out.CoverageResolution, s.log.Named("coverage"))
		if err != nil {
			return nil, err
		}
		s.coverage = c
		sinks = append(sinks, c)
	}
	return diag.Multi(sinks...), nil
}

// Run processes every pose. It stops between steps when ctx is done.
func (s *Simulation) Run(ctx context.Context) (pipeline.Summary, error) {
	sum, err := s.pipeline.Run(ctx, s.poses, s.toggle, s.events)
	if err != nil {
		return sum, err
	}
	s.log.Info("simulation complete",
		zap.Int("steps", sum.Steps),
		zap.Int("worldPoints", sum.WorldPoints),
		zap.Int("worldTriangles", sum.WorldTriangles))
	return sum, nil
}

// World returns the accumulated mesh.
func (s *Simulation) World() *worldmesh.Mesh {
	return s.world
}

// Coverage returns the coverage tracker, or nil when disabled.
func (s *Simulation) Coverage() *diag.Coverage {
	return s.coverage
}

// Close flushes the diagnostics sinks.
func (s *Simulation) Close() error {
	return s.sinks.Close()
}
