// Package worldmesh accumulates per-frame surface patches into one
// append-only triangle mesh.
package worldmesh

import (
	"github.com/lucasb-eyer/go-colorful"

	pmath "github.com/Faultbox/depthmesh/pkg/math"
	"github.com/Faultbox/depthmesh/pkg/surface"
)

// Option configures a Mesh.
type Option func(*Mesh)

// WithColors enables per-patch coloring.
func WithColors(enabled bool) Option {
	return func(m *Mesh) {
		m.colored = enabled
	}
}

// WithCapacity preallocates room for the given number of points and triangles.
func WithCapacity(points, triangles int) Option {
	return func(m *Mesh) {
		m.pointCap = points
		m.triCap = triangles
	}
}

// Mesh is an append-only arena of points and triangles. Appended geometry is
// never moved or removed; Clear starts new arenas so existing snapshots keep
// their contents.
//
// A Mesh has a single writer and is not safe for concurrent use.
type Mesh struct {
	colored  bool
	pointCap int
	triCap   int

	points     []pmath.Vec3
	triangles  [][3]uint32
	colors     []colorful.Color
	patchStart []int

	generation int
}

// New creates an empty mesh.
func New(opts ...Option) *Mesh {
	m := &Mesh{}
	for _, opt := range opts {
		opt(m)
	}
	m.reset()
	return m
}

func (m *Mesh) reset() {
	m.points = make([]pmath.Vec3, 0, m.pointCap)
	m.triangles = make([][3]uint32, 0, m.triCap)
	m.colors = nil
	if m.colored {
		m.colors = make([]colorful.Color, 0, m.triCap)
	}
	m.patchStart = nil
}

// Append adds a patch and returns its index since the last Clear.
// Empty patches are recorded too so that the call index matches the step.
func (m *Mesh) Append(p surface.Patch) int {
	idx := len(m.patchStart)
	base := uint32(len(m.points))

	m.patchStart = append(m.patchStart, len(m.triangles))
	m.points = append(m.points, p.Points...)
	for _, t := range p.Triangles {
		m.triangles = append(m.triangles, [3]uint32{t[0] + base, t[1] + base, t[2] + base})
	}
	if m.colored {
		c := ColorForStep(idx)
		for range p.Triangles {
			m.colors = append(m.colors, c)
		}
	}
	return idx
}

// Clear drops all geometry and restarts the color sequence.
func (m *Mesh) Clear() {
	m.reset()
	m.generation++
}

// PointCount returns the number of accumulated points.
func (m *Mesh) PointCount() int {
	return len(m.points)
}

// TriangleCount returns the number of accumulated triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Appends returns the number of Append calls since the last Clear.
func (m *Mesh) Appends() int {
	return len(m.patchStart)
}

// Generation increments on every Clear.
func (m *Mesh) Generation() int {
	return m.generation
}

// Snapshot returns a read-only view of the current contents. The view shares
// memory with the mesh but is capped, so later appends never show through.
func (m *Mesh) Snapshot() Snapshot {
	np, nt, nc, ns := len(m.points), len(m.triangles), len(m.colors), len(m.patchStart)
	return Snapshot{
		Points:     m.points[:np:np],
		Triangles:  m.triangles[:nt:nt],
		Colors:     m.colors[:nc:nc],
		patchStart: m.patchStart[:ns:ns],
		Generation: m.generation,
	}
}

// Snapshot is an immutable view of a Mesh. Callers must not modify the slices.
type Snapshot struct {
	Points     []pmath.Vec3
	Triangles  [][3]uint32
	Colors     []colorful.Color // one per triangle; nil when colors are disabled
	Generation int

	patchStart []int
}

// Empty reports whether the snapshot has no triangles.
func (s Snapshot) Empty() bool {
	return len(s.Triangles) == 0
}

// Patches returns the number of appended patches.
func (s Snapshot) Patches() int {
	return len(s.patchStart)
}

// PatchTriangles returns the triangles appended by call i.
func (s Snapshot) PatchTriangles(i int) [][3]uint32 {
	end := len(s.Triangles)
	if i+1 < len(s.patchStart) {
		end = s.patchStart[i+1]
	}
	return s.Triangles[s.patchStart[i]:end]
}

// Triangle returns the corners of triangle i.
func (s Snapshot) Triangle(i int) [3]pmath.Vec3 {
	t := s.Triangles[i]
	return [3]pmath.Vec3{s.Points[t[0]], s.Points[t[1]], s.Points[t[2]]}
}

// Bounds returns the bounding box of all points.
func (s Snapshot) Bounds() (pmath.Vec3, pmath.Vec3, bool) {
	if len(s.Points) == 0 {
		return pmath.Vec3{}, pmath.Vec3{}, false
	}
	lo, hi := s.Points[0], s.Points[0]
	for _, p := range s.Points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, true
}
