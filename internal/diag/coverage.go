package diag

import (
	"fmt"
	"math"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/storage/kdtree"
	"go.uber.org/zap"

	"github.com/Faultbox/depthmesh/internal/pipeline"
	pmath "github.com/Faultbox/depthmesh/pkg/math"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// CoverageSample is the coverage state after one step.
type CoverageSample struct {
	Step int
	// Voxels is the number of occupied voxels of the accumulated surface.
	Voxels int
	// Overlap is the share of the step's new points that fall on already
	// covered voxels. It is 0 for steps that add nothing.
	Overlap float64
}

// Coverage tracks how much of the scene the world mesh covers by voxel
// downsampling the accumulated patch points.
type Coverage struct {
	resolution float32
	log        *zap.Logger

	voxels  pc.Vec3Slice
	samples []CoverageSample
}

// NewCoverage creates a coverage tracker with the given voxel size in meters.
func NewCoverage(resolution float64, log *zap.Logger) (*Coverage, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("coverage: resolution %v must be positive", resolution)
	}
	return &Coverage{resolution: float32(resolution), log: log}, nil
}

// Record measures the overlap of the step's patch with the covered voxels
// and adds the patch to them.
func (c *Coverage) Record(res *pipeline.StepResult, _ worldmesh.Snapshot) error {
	sample := CoverageSample{Step: res.Index}
	pts := res.Patch.Points
	if len(pts) == 0 {
		sample.Voxels = len(c.voxels)
		c.samples = append(c.samples, sample)
		return nil
	}

	if len(c.voxels) > 0 {
		kdt := kdtree.New(c.voxels)
		maxRange := 2 * c.resolution
		hits := 0
		for _, p := range pts {
			if nb := kdt.Nearest(toVec3(p), maxRange); nb.ID >= 0 {
				hits++
			}
		}
		sample.Overlap = float64(hits) / float64(len(pts))
	}

	merged := make(pc.Vec3Slice, 0, len(c.voxels)+len(pts))
	merged = append(merged, c.voxels...)
	for _, p := range pts {
		merged = append(merged, toVec3(p))
	}
	voxels := c.downsample(merged)
	c.voxels = voxels
	sample.Voxels = len(voxels)
	c.samples = append(c.samples, sample)

	c.log.Debug("coverage",
		zap.Int("step", res.Index),
		zap.Int("voxels", sample.Voxels),
		zap.Float64("overlap", sample.Overlap))
	return nil
}

// Samples returns one sample per recorded step.
func (c *Coverage) Samples() []CoverageSample {
	return c.samples
}

// Close logs the final coverage.
func (c *Coverage) Close() error {
	if len(c.samples) == 0 {
		return nil
	}
	last := c.samples[len(c.samples)-1]
	c.log.Info("coverage summary",
		zap.Int("steps", len(c.samples)),
		zap.Int("voxels", last.Voxels),
		zap.Float64("areaM2", float64(last.Voxels)*float64(c.resolution)*float64(c.resolution)))
	return nil
}

type voxelKey [3]int64

type voxelSum struct {
	sum [3]float64
	n   int
}

// downsample replaces the points of every occupied voxel by their centroid.
// Voxels are keyed on each axis independently, so flat surfaces with zero
// extent along one axis keep their full resolution on the other two.
func (c *Coverage) downsample(points pc.Vec3Slice) pc.Vec3Slice {
	res := float64(c.resolution)
	cells := make(map[voxelKey]*voxelSum, len(points))
	order := make([]voxelKey, 0, len(points))
	for _, p := range points {
		var k voxelKey
		for i := range k {
			k[i] = int64(math.Floor(float64(p[i]) / res))
		}
		v, ok := cells[k]
		if !ok {
			v = &voxelSum{}
			cells[k] = v
			order = append(order, k)
		}
		for i := range v.sum {
			v.sum[i] += float64(p[i])
		}
		v.n++
	}

	out := make(pc.Vec3Slice, 0, len(order))
	for _, k := range order {
		v := cells[k]
		n := float64(v.n)
		out = append(out, mat.Vec3{float32(v.sum[0] / n), float32(v.sum[1] / n), float32(v.sum[2] / n)})
	}
	return out
}

func toVec3(v pmath.Vec3) mat.Vec3 {
	return mat.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
