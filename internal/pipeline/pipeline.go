// Package pipeline runs the per-pose surface reconstruction cycle:
// capture, reproject, classify, triangulate and accumulate.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/depthmesh/internal/sensor"
	"github.com/Faultbox/depthmesh/pkg/depth"
	"github.com/Faultbox/depthmesh/pkg/surface"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// ErrBusy is returned when Step is called while another step is running,
// for example from a transition hook.
var ErrBusy = errors.New("pipeline step in progress")

// Capturer produces sensor frames.
type Capturer interface {
	Capture(p sensor.Pose) (*sensor.Frame, error)
}

// Predictor renders the accumulated world mesh from a pose.
// It must return an image the size of the sensor's, at the far plane where
// the mesh is not hit.
type Predictor interface {
	Predict(snap worldmesh.Snapshot, p sensor.Pose) (*depth.Image, error)
}

// Sink receives every completed step.
type Sink interface {
	Record(res *StepResult, world worldmesh.Snapshot) error
}

// Params holds the per-frame thresholds.
type Params struct {
	Discontinuity       surface.DiscontinuityParams
	ClassifierTolerance float64
}

// DefaultParams returns the detector defaults with a 0.01 classifier tolerance.
func DefaultParams() Params {
	return Params{
		Discontinuity:       surface.DefaultDiscontinuityParams(),
		ClassifierTolerance: 0.01,
	}
}

// StepResult describes one processed pose.
type StepResult struct {
	Index int
	Pose  sensor.Pose

	Sensor    *depth.Image
	Predicted *depth.Image
	Filtered  *depth.Image

	RedundantPixels int
	ValidPixels     int
	Patch           surface.Patch

	WorldPoints    int
	WorldTriangles int

	Timings map[Stage]time.Duration
}

// TrianglesAdded returns the number of triangles this step appended.
func (r *StepResult) TrianglesAdded() int {
	return len(r.Patch.Triangles)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithParams overrides the thresholds.
func WithParams(params Params) Option {
	return func(p *Pipeline) {
		p.params = params
	}
}

// WithSink adds a sink notified after every accumulation.
func WithSink(s Sink) Option {
	return func(p *Pipeline) {
		p.sinks = append(p.sinks, s)
	}
}

// OnTransition registers fn to be called on every stage change.
func OnTransition(fn func(from, to Stage)) Option {
	return func(p *Pipeline) {
		p.hooks = append(p.hooks, fn)
	}
}

// Pipeline owns the world mesh and the per-frame caches.
// It is not safe for concurrent use.
type Pipeline struct {
	capturer  Capturer
	predictor Predictor
	world     *worldmesh.Mesh

	reprojector  *surface.Reprojector
	triangulator *surface.GridTriangulator

	params Params
	log    *zap.Logger
	sinks  []Sink
	hooks  []func(from, to Stage)

	state machine
	steps int
}

// New creates a pipeline that accumulates into world.
func New(c Capturer, pr Predictor, world *worldmesh.Mesh, opts ...Option) *Pipeline {
	p := &Pipeline{
		capturer:     c,
		predictor:    pr,
		world:        world,
		reprojector:  surface.NewReprojector(),
		triangulator: surface.NewGridTriangulator(),
		params:       DefaultParams(),
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.state.observe = p.notify
	return p
}

// Stage returns the current stage. Outside of Step it is always Idle.
func (p *Pipeline) Stage() Stage {
	return p.state.Current()
}

// World returns the accumulated mesh.
func (p *Pipeline) World() *worldmesh.Mesh {
	return p.world
}

// Steps returns the number of completed steps.
func (p *Pipeline) Steps() int {
	return p.steps
}

func (p *Pipeline) notify(from, to Stage) {
	for _, fn := range p.hooks {
		fn(from, to)
	}
}

// Step processes one pose. Any failure aborts the step, returns the
// pipeline to Idle and leaves the world mesh untouched.
func (p *Pipeline) Step(pose sensor.Pose) (*StepResult, error) {
	if p.state.Current() != Idle {
		return nil, ErrBusy
	}
	res, err := p.step(pose)
	if err != nil {
		p.state.Reset()
		p.log.Error("step failed", zap.Int("step", p.steps), zap.Error(err))
		return nil, err
	}
	p.steps++
	return res, nil
}

func (p *Pipeline) step(pose sensor.Pose) (*StepResult, error) {
	res := &StepResult{
		Index:   p.steps,
		Pose:    pose,
		Timings: make(map[Stage]time.Duration, len(stageNames)-1),
	}

	var (
		frame  *sensor.Frame
		points *surface.PointSet
		cls    surface.Classification
		valid  []bool
	)
	stages := []struct {
		stage Stage
		run   func() error
	}{
		{Capturing, func() (err error) {
			frame, err = p.capturer.Capture(pose)
			if err != nil {
				return fmt.Errorf("sensor: %w", err)
			}
			res.Sensor = frame.Depth
			res.Predicted, err = p.predictor.Predict(p.world.Snapshot(), pose)
			if err != nil {
				return fmt.Errorf("prediction: %w", err)
			}
			return nil
		}},
		{Reprojecting, func() (err error) {
			points, err = p.reprojector.Reproject(frame.Depth, frame.Inverse)
			return err
		}},
		{Classifying, func() (err error) {
			cls, err = surface.Classify(frame.Depth, res.Predicted, p.params.ClassifierTolerance)
			res.Filtered = cls.Filtered
			res.RedundantPixels = cls.RedundantCount
			return err
		}},
		{Triangulating, func() (err error) {
			valid, err = surface.DetectDiscontinuities(cls.Filtered, p.params.Discontinuity)
			if err != nil {
				return err
			}
			if err := surface.Exclude(valid, cls.Redundant); err != nil {
				return err
			}
			for _, ok := range valid {
				if ok {
					res.ValidPixels++
				}
			}
			res.Patch, err = p.triangulator.Triangulate(points, frame.Depth.Width, frame.Depth.Height, valid)
			return err
		}},
		{Accumulating, func() error {
			p.world.Append(res.Patch)
			res.WorldPoints = p.world.PointCount()
			res.WorldTriangles = p.world.TriangleCount()
			return nil
		}},
	}

	for _, s := range stages {
		if err := p.state.Change(s.stage); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := s.run(); err != nil {
			return nil, &StageError{Stage: s.stage, Err: err}
		}
		res.Timings[s.stage] = time.Since(start)
		p.log.Debug("stage done",
			zap.Int("step", res.Index),
			zap.Stringer("stage", s.stage),
			zap.Duration("elapsed", res.Timings[s.stage]))
	}

	p.log.Info("step complete",
		zap.Int("step", res.Index),
		zap.Int("redundant", res.RedundantPixels),
		zap.Int("valid", res.ValidPixels),
		zap.Int("added", res.TrianglesAdded()),
		zap.Int("worldTriangles", res.WorldTriangles))

	snap := p.world.Snapshot()
	for _, s := range p.sinks {
		if err := s.Record(res, snap); err != nil {
			p.log.Warn("diagnostics sink failed", zap.Int("step", res.Index), zap.Error(err))
		}
	}
	if err := p.state.Change(Idle); err != nil {
		return nil, err
	}
	return res, nil
}
