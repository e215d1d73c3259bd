// Package surface turns depth images into triangle patches: reprojection to
// world space, discontinuity detection, frame classification against a
// predicted image and grid triangulation.
package surface

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Faultbox/depthmesh/pkg/depth"
	pmath "github.com/Faultbox/depthmesh/pkg/math"
)

// ErrDegenerateTransform is returned when the inverse camera transform
// cannot map pixels back into world space.
var ErrDegenerateTransform = errors.New("degenerate camera transform")

// PointSet holds dehomogenized world points as columns of a 4xN matrix.
type PointSet struct {
	m *mat.Dense
}

// Len returns the number of points.
func (p *PointSet) Len() int {
	_, c := p.m.Dims()
	return c
}

// At returns point i.
func (p *PointSet) At(i int) pmath.Vec3 {
	return pmath.Vec3{X: p.m.At(0, i), Y: p.m.At(1, i), Z: p.m.At(2, i)}
}

// W returns the homogeneous coordinate of point i (1 after dehomogenization).
func (p *PointSet) W(i int) float64 {
	return p.m.At(3, i)
}

// Dense exposes the underlying matrix. Callers must not modify it.
func (p *PointSet) Dense() mat.Matrix {
	return p.m
}

// Reprojector maps depth images back to world points.
//
// The (ndc_x, ndc_y) template depends only on the image size and viewport and
// is rebuilt when either changes. Each call only replaces the depth row.
type Reprojector struct {
	width    int
	height   int
	viewport depth.Viewport

	template *mat.Dense // rows: ndc_x, ndc_y, depth, 1
	out      *mat.Dense
	rebuilds int
}

// NewReprojector creates a reprojector with an empty cache.
func NewReprojector() *Reprojector {
	return &Reprojector{}
}

// Reproject returns the world point of every pixel of img. inv is the inverse
// of the camera's composite depth-range * projection * view transform.
// The returned set is reused by the next call.
func (r *Reprojector) Reproject(img *depth.Image, inv pmath.Mat4) (*PointSet, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("reproject: %w", err)
	}
	det := inv.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return nil, fmt.Errorf("reproject: %w (det=%v)", ErrDegenerateTransform, det)
	}

	r.ensureTemplate(img.Width, img.Height, img.Viewport)
	r.template.SetRow(2, img.Data)
	r.out.Mul(inv.Dense(), r.template)

	raw := r.out.RawMatrix()
	n := img.Len()
	for j := 0; j < n; j++ {
		w := raw.Data[3*raw.Stride+j]
		for row := 0; row < 4; row++ {
			raw.Data[row*raw.Stride+j] /= w
		}
	}
	return &PointSet{m: r.out}, nil
}

// ViewportPoints returns the cached 4xN template of the last call.
func (r *Reprojector) ViewportPoints() mat.Matrix {
	return r.template
}

// Rebuilds returns how many times the template has been built.
func (r *Reprojector) Rebuilds() int {
	return r.rebuilds
}

func (r *Reprojector) ensureTemplate(w, h int, vp depth.Viewport) {
	if r.template != nil && r.width == w && r.height == h && r.viewport == vp {
		return
	}

	n := w * h
	tmpl := mat.NewDense(4, n, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			nx, ny := vp.NDC(float64(x), float64(y), w, h)
			tmpl.Set(0, i, nx)
			tmpl.Set(1, i, ny)
			tmpl.Set(3, i, 1)
		}
	}

	r.width, r.height, r.viewport = w, h, vp
	r.template = tmpl
	r.out = mat.NewDense(4, n, nil)
	r.rebuilds++
}
