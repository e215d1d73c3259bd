package worldmesh

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	pmath "github.com/Faultbox/depthmesh/pkg/math"
	"github.com/Faultbox/depthmesh/pkg/surface"
)

// quad returns a two-triangle patch offset along x.
func quad(x float64) surface.Patch {
	return surface.Patch{
		Points: []pmath.Vec3{
			{X: x, Y: 0, Z: 0}, {X: x + 1, Y: 0, Z: 0},
			{X: x, Y: 0, Z: 1}, {X: x + 1, Y: 0, Z: 1},
		},
		Triangles: [][3]uint32{{0, 1, 2}, {1, 3, 2}},
	}
}

func TestAppendMonotonic(t *testing.T) {
	m := New()
	patches := []surface.Patch{quad(0), {}, quad(2), quad(4)}

	total := 0
	for i, p := range patches {
		before := m.TriangleCount()
		if got := m.Append(p); got != i {
			t.Errorf("Append() index = %d, want %d", got, i)
		}
		total += len(p.Triangles)
		if m.TriangleCount() != total {
			t.Errorf("after %d appends: TriangleCount() = %d, want %d", i+1, m.TriangleCount(), total)
		}
		if m.TriangleCount() < before {
			t.Errorf("triangle count decreased from %d to %d", before, m.TriangleCount())
		}
	}
	if m.PointCount() != 12 {
		t.Errorf("PointCount() = %d, want 12", m.PointCount())
	}
	if m.Appends() != 4 {
		t.Errorf("Appends() = %d, want 4", m.Appends())
	}
}

func TestWithCapacity(t *testing.T) {
	m := New(WithCapacity(8, 4), WithColors(true))
	check := func(when string) {
		t.Helper()
		if cap(m.points) != 8 || cap(m.triangles) != 4 || cap(m.colors) != 4 {
			t.Errorf("%s: capacities = %d/%d/%d, want 8/4/4", when, cap(m.points), cap(m.triangles), cap(m.colors))
		}
	}
	check("new")

	m.Append(quad(0))
	m.Append(quad(2))
	check("after filling")
	snap := m.Snapshot()

	m.Clear()
	check("after clear")
	if m.TriangleCount() != 0 || len(snap.Triangles) != 4 {
		t.Errorf("clear: count = %d, old snapshot triangles = %d", m.TriangleCount(), len(snap.Triangles))
	}

	if m := New(); cap(m.points) != 0 {
		t.Errorf("default point capacity = %d, want 0", cap(m.points))
	}
}

func TestAppendOffsetsIndices(t *testing.T) {
	m := New()
	m.Append(quad(0))
	m.Append(quad(5))

	s := m.Snapshot()
	want := [][3]uint32{{0, 1, 2}, {1, 3, 2}, {4, 5, 6}, {5, 7, 6}}
	if diff := cmp.Diff(want, s.Triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
	if got := s.Triangle(2)[0]; got != (pmath.Vec3{X: 5}) {
		t.Errorf("Triangle(2)[0] = %v, want (5,0,0)", got)
	}
	if diff := cmp.Diff(want[2:], s.PatchTriangles(1)); diff != "" {
		t.Errorf("PatchTriangles(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	m := New()
	m.Append(quad(0))
	s := m.Snapshot()

	m.Append(quad(1))
	if len(s.Triangles) != 2 || len(s.Points) != 4 {
		t.Errorf("snapshot grew to %d triangles, %d points", len(s.Triangles), len(s.Points))
	}

	m.Clear()
	if s.Triangle(1)[1] != (pmath.Vec3{X: 1, Z: 1}) {
		t.Error("snapshot contents changed after Clear")
	}
	if m.TriangleCount() != 0 || m.PointCount() != 0 || m.Appends() != 0 {
		t.Errorf("Clear left %d triangles, %d points, %d appends", m.TriangleCount(), m.PointCount(), m.Appends())
	}
	if m.Generation() != 1 || s.Generation != 0 {
		t.Errorf("Generation() = %d, snapshot %d, want 1 and 0", m.Generation(), s.Generation)
	}
}

func TestColors(t *testing.T) {
	m := New(WithColors(true))
	m.Append(quad(0))
	m.Append(surface.Patch{})
	m.Append(quad(2))

	s := m.Snapshot()
	if len(s.Colors) != len(s.Triangles) {
		t.Fatalf("len(Colors) = %d, want %d", len(s.Colors), len(s.Triangles))
	}
	if s.Colors[0] != ColorForStep(0) || s.Colors[2] != ColorForStep(2) {
		t.Error("colors should follow the append call index")
	}

	m.Clear()
	m.Append(quad(0))
	if got := m.Snapshot().Colors[0]; got != ColorForStep(0) {
		t.Errorf("color after Clear = %v, want %v", got, ColorForStep(0))
	}

	plain := New()
	plain.Append(quad(0))
	if plain.Snapshot().Colors != nil {
		t.Error("colors should be nil when disabled")
	}
}

func TestColorForStep(t *testing.T) {
	n := PaletteSize()
	for i := 0; i < n; i++ {
		if ColorForStep(i) != ColorForStep(i+n) {
			t.Errorf("ColorForStep(%d) != ColorForStep(%d)", i, i+n)
		}
		for j := i + 1; j < n; j++ {
			if ColorForStep(i) == ColorForStep(j) {
				t.Errorf("ColorForStep(%d) == ColorForStep(%d)", i, j)
			}
		}
	}
}

func TestBounds(t *testing.T) {
	m := New()
	if _, _, ok := m.Snapshot().Bounds(); ok {
		t.Error("empty mesh should have no bounds")
	}
	m.Append(quad(-1))
	m.Append(quad(3))
	lo, hi, ok := m.Snapshot().Bounds()
	if !ok || lo != (pmath.Vec3{X: -1}) || hi != (pmath.Vec3{X: 4, Z: 1}) {
		t.Errorf("Bounds() = %v, %v, %v", lo, hi, ok)
	}
}
