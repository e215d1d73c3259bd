package surface

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/depthmesh/pkg/depth"
	pmath "github.com/Faultbox/depthmesh/pkg/math"
)

func gridPoints(t *testing.T, w, h int) *PointSet {
	t.Helper()
	pts, err := NewReprojector().Reproject(depth.NewFilled(w, h, depth.FullViewport, 0.5), pmath.Identity())
	if err != nil {
		t.Fatal(err)
	}
	return pts
}

func fill(n int, v bool) []bool {
	m := make([]bool, n)
	for i := range m {
		m[i] = v
	}
	return m
}

func TestConnectivity(t *testing.T) {
	g := NewGridTriangulator()
	got := g.Connectivity(3, 2)
	want := [][3]int32{
		{0, 1, 3}, {1, 4, 3},
		{1, 2, 4}, {2, 5, 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Connectivity mismatch (-want +got):\n%s", diff)
	}
}

func TestTriangulateCount(t *testing.T) {
	tests := []struct {
		w, h int
	}{
		{2, 2}, {3, 2}, {5, 4}, {16, 9}, {1, 4}, {4, 1},
	}
	for _, tt := range tests {
		g := NewGridTriangulator()
		n := tt.w * tt.h
		pts := gridPoints(t, tt.w, tt.h)

		patch, err := g.Triangulate(pts, tt.w, tt.h, fill(n, true))
		if err != nil {
			t.Fatalf("%dx%d: Triangulate() error = %v", tt.w, tt.h, err)
		}
		want := 0
		if tt.w > 1 && tt.h > 1 {
			want = 2 * (tt.w - 1) * (tt.h - 1)
		}
		if len(patch.Triangles) != want {
			t.Errorf("%dx%d: %d triangles, want %d", tt.w, tt.h, len(patch.Triangles), want)
		}

		empty, err := g.Triangulate(pts, tt.w, tt.h, fill(n, false))
		if err != nil {
			t.Fatal(err)
		}
		if !empty.Empty() || len(empty.Points) != 0 {
			t.Errorf("%dx%d: all-invalid mask produced %d triangles, %d points",
				tt.w, tt.h, len(empty.Triangles), len(empty.Points))
		}
	}
}

func TestTriangulateCompaction(t *testing.T) {
	const w, h = 3, 3
	pts := gridPoints(t, w, h)
	valid := fill(w*h, false)
	// Bottom-left 2x2 block only.
	for _, i := range []int{0, 1, 3, 4} {
		valid[i] = true
	}

	patch, err := NewGridTriangulator().Triangulate(pts, w, h, valid)
	if err != nil {
		t.Fatal(err)
	}
	if len(patch.Triangles) != 2 || len(patch.Points) != 4 {
		t.Fatalf("got %d triangles, %d points, want 2 and 4", len(patch.Triangles), len(patch.Points))
	}
	wantPoints := []pmath.Vec3{pts.At(0), pts.At(1), pts.At(3), pts.At(4)}
	if diff := cmp.Diff(wantPoints, patch.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	wantTris := [][3]uint32{{0, 1, 2}, {1, 3, 2}}
	if diff := cmp.Diff(wantTris, patch.Triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
}

func TestTriangulateCache(t *testing.T) {
	g := NewGridTriangulator()
	pts := gridPoints(t, 4, 4)
	for i := 0; i < 3; i++ {
		if _, err := g.Triangulate(pts, 4, 4, fill(16, true)); err != nil {
			t.Fatal(err)
		}
	}
	if g.Rebuilds() != 1 {
		t.Errorf("Rebuilds() = %d, want 1", g.Rebuilds())
	}

	small := gridPoints(t, 2, 3)
	patch, err := g.Triangulate(small, 2, 3, fill(6, true))
	if err != nil {
		t.Fatal(err)
	}
	if g.Rebuilds() != 2 || len(patch.Triangles) != 4 {
		t.Errorf("after resize: Rebuilds() = %d, triangles = %d, want 2 and 4", g.Rebuilds(), len(patch.Triangles))
	}
}

func TestTriangulateShape(t *testing.T) {
	pts := gridPoints(t, 3, 3)
	_, err := NewGridTriangulator().Triangulate(pts, 3, 3, fill(8, true))
	if !errors.Is(err, depth.ErrShape) {
		t.Errorf("error = %v, want ErrShape", err)
	}
}
