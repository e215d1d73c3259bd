package surface

import (
	"fmt"

	"github.com/Faultbox/depthmesh/pkg/depth"
	pmath "github.com/Faultbox/depthmesh/pkg/math"
)

// Patch is the triangle mesh produced for one frame. Triangles index Points.
type Patch struct {
	Points    []pmath.Vec3
	Triangles [][3]uint32
}

// Empty reports whether the patch has no triangles.
func (p Patch) Empty() bool {
	return len(p.Triangles) == 0
}

// GridTriangulator tessellates a pixel grid into two triangles per 2x2 block.
// The connectivity list is cached per image size.
type GridTriangulator struct {
	width    int
	height   int
	cells    [][3]int32
	remap    []int32
	rebuilds int
}

// NewGridTriangulator creates a triangulator with an empty cache.
func NewGridTriangulator() *GridTriangulator {
	return &GridTriangulator{}
}

// Connectivity returns the full triangle list for a w*h grid over flattened
// pixel indices. The slice is cached and must not be modified.
func (g *GridTriangulator) Connectivity(w, h int) [][3]int32 {
	if g.cells != nil && g.width == w && g.height == h {
		return g.cells
	}

	n := 0
	if w > 1 && h > 1 {
		n = 2 * (w - 1) * (h - 1)
	}
	cells := make([][3]int32, 0, n)
	for i := 0; i < w*(h-1); i++ {
		if (i+1)%w == 0 {
			continue
		}
		a, b, c, d := int32(i), int32(i+1), int32(i+w), int32(i+w+1)
		cells = append(cells, [3]int32{a, b, c}, [3]int32{b, d, c})
	}

	g.width, g.height = w, h
	g.cells = cells
	g.remap = make([]int32, w*h)
	g.rebuilds++
	return cells
}

// Rebuilds returns how many times the connectivity has been built.
func (g *GridTriangulator) Rebuilds() int {
	return g.rebuilds
}

// Triangulate keeps the triangles whose three vertices are valid and returns
// them with the points they reference, re-indexed from zero.
func (g *GridTriangulator) Triangulate(points *PointSet, w, h int, valid []bool) (Patch, error) {
	n := w * h
	if n <= 0 {
		return Patch{}, fmt.Errorf("triangulate: %w: %dx%d", depth.ErrShape, w, h)
	}
	if points.Len() != n || len(valid) != n {
		return Patch{}, fmt.Errorf("triangulate: %w: %d points, %d mask entries for %dx%d",
			depth.ErrShape, points.Len(), len(valid), w, h)
	}

	cells := g.Connectivity(w, h)
	for i := range g.remap {
		g.remap[i] = -1
	}

	var patch Patch
	index := func(i int32) uint32 {
		if g.remap[i] < 0 {
			g.remap[i] = int32(len(patch.Points))
			patch.Points = append(patch.Points, points.At(int(i)))
		}
		return uint32(g.remap[i])
	}

	for _, c := range cells {
		if !valid[c[0]] || !valid[c[1]] || !valid[c[2]] {
			continue
		}
		patch.Triangles = append(patch.Triangles, [3]uint32{index(c[0]), index(c[1]), index(c[2])})
	}
	return patch, nil
}
