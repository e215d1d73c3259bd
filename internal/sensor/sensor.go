package sensor

import (
	"math"
	"math/rand"

	"github.com/unixpickle/model3d/model3d"

	"github.com/Faultbox/depthmesh/internal/scene"
	"github.com/Faultbox/depthmesh/pkg/depth"
	pmath "github.com/Faultbox/depthmesh/pkg/math"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// maxHit is the largest depth a noisy hit may take without becoming a miss.
var maxHit = math.Nextafter(depth.FarPlane, 0)

// Option configures a Sensor.
type Option func(*Sensor)

// WithNoise adds zero-mean gaussian noise with the given standard deviation
// (in depth-buffer units) to every hit.
func WithNoise(stddev float64, seed int64) Option {
	return func(s *Sensor) {
		s.stddev = stddev
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// Sensor captures depth frames of a scene.
type Sensor struct {
	camera Camera
	source scene.Source
	stddev float64
	rng    *rand.Rand
}

// New creates a sensor observing src.
func New(cam Camera, src scene.Source, opts ...Option) *Sensor {
	s := &Sensor{camera: cam, source: src}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Camera returns the sensor intrinsics.
func (s *Sensor) Camera() Camera {
	return s.camera
}

// Capture renders the scene from pose p.
func (s *Sensor) Capture(p Pose) (*Frame, error) {
	f, err := s.camera.Render(s.source.Collider(), p)
	if err != nil {
		return nil, err
	}
	if s.rng != nil && s.stddev > 0 {
		for i, d := range f.Depth.Data {
			if d >= depth.FarPlane {
				continue
			}
			f.Depth.Data[i] = math.Max(0, math.Min(d+s.rng.NormFloat64()*s.stddev, maxHit))
		}
	}
	return f, nil
}

// Predictor renders the accumulated world mesh as a depth image.
//
// Triangles are converted to model3d form incrementally; the collider is
// rebuilt only when the snapshot grew or the mesh was cleared.
type Predictor struct {
	camera     Camera
	generation int
	triangles  []*model3d.Triangle
	consumed   int
	collider   model3d.Collider
}

// NewPredictor creates a predictor with the sensor's intrinsics.
func NewPredictor(cam Camera) *Predictor {
	return &Predictor{camera: cam}
}

// Predict returns the depth image the sensor would see at pose p if the
// world consisted only of the snapshot's triangles.
func (pr *Predictor) Predict(snap worldmesh.Snapshot, p Pose) (*depth.Image, error) {
	pr.sync(snap)
	f, err := pr.camera.Render(pr.collider, p)
	if err != nil {
		return nil, err
	}
	return f.Depth, nil
}

func (pr *Predictor) sync(snap worldmesh.Snapshot) {
	if snap.Generation != pr.generation || len(snap.Triangles) < pr.consumed {
		pr.generation = snap.Generation
		pr.triangles = nil
		pr.consumed = 0
		pr.collider = nil
	}
	if len(snap.Triangles) == pr.consumed {
		return
	}

	for i := pr.consumed; i < len(snap.Triangles); i++ {
		c := snap.Triangle(i)
		t := &model3d.Triangle{toCoord(c[0]), toCoord(c[1]), toCoord(c[2])}
		if t.Area() == 0 {
			continue
		}
		pr.triangles = append(pr.triangles, t)
	}
	pr.consumed = len(snap.Triangles)
	if len(pr.triangles) > 0 {
		pr.collider = model3d.MeshToCollider(model3d.NewMeshTriangles(pr.triangles))
	}
}

func toCoord(v pmath.Vec3) model3d.Coord3D {
	return model3d.XYZ(v.X, v.Y, v.Z)
}
