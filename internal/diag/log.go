package diag

import (
	"math"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/Faultbox/depthmesh/internal/pipeline"
	"github.com/Faultbox/depthmesh/pkg/depth"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// Residuals summarizes |sensor - predicted| over pixels hit in both images.
type Residuals struct {
	Count int
	Mean  float64
	P95   float64
	Max   float64
}

// ComputeResiduals compares a sensor image with its prediction. Pixels at
// the far plane in either image are skipped. ok is false when no pixel is
// hit in both or the images differ in shape.
func ComputeResiduals(sensor, predicted *depth.Image) (r Residuals, ok bool) {
	if sensor == nil || predicted == nil || !sensor.SameShape(predicted) {
		return r, false
	}
	var data stats.Float64Data
	for i, s := range sensor.Data {
		p := predicted.Data[i]
		if s >= depth.FarPlane || p >= depth.FarPlane {
			continue
		}
		data = append(data, math.Abs(s-p))
	}
	if len(data) == 0 {
		return r, false
	}

	r.Count = len(data)
	var err error
	if r.Mean, err = stats.Mean(data); err != nil {
		return r, false
	}
	if r.P95, err = stats.Percentile(data, 95); err != nil {
		return r, false
	}
	if r.Max, err = stats.Max(data); err != nil {
		return r, false
	}
	return r, true
}

// LogSink writes a structured summary of every step.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a sink logging to log.
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

// Record logs the step counters and, once the world mesh is visible from
// the pose, the prediction residuals.
func (s *LogSink) Record(res *pipeline.StepResult, world worldmesh.Snapshot) error {
	fields := []zap.Field{
		zap.Int("step", res.Index),
		zap.Int("redundant", res.RedundantPixels),
		zap.Int("valid", res.ValidPixels),
		zap.Int("added", res.TrianglesAdded()),
		zap.Int("worldPoints", len(world.Points)),
		zap.Int("worldTriangles", len(world.Triangles)),
	}
	if r, ok := ComputeResiduals(res.Sensor, res.Predicted); ok {
		fields = append(fields,
			zap.Int("residualPixels", r.Count),
			zap.Float64("residualMean", r.Mean),
			zap.Float64("residualP95", r.P95),
			zap.Float64("residualMax", r.Max))
	}
	s.log.Info("reconstruction step", fields...)
	return nil
}

// Close flushes the logger.
func (s *LogSink) Close() error {
	// Sync returns EINVAL for stderr on some platforms.
	_ = s.log.Sync()
	return nil
}
