// Package sensor simulates a depth camera by ray casting scene geometry.
package sensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model3d"

	"github.com/Faultbox/depthmesh/pkg/depth"
	pmath "github.com/Faultbox/depthmesh/pkg/math"
)

// ErrCamera is returned for invalid camera intrinsics.
var ErrCamera = errors.New("invalid camera")

// Pose places the sensor in the world.
type Pose struct {
	Position pmath.Vec3
	LookAt   pmath.Vec3
}

// Frame is one depth capture together with its camera transforms.
type Frame struct {
	Depth *depth.Image
	// ViewProj maps world points to (ndc_x, ndc_y, depth) after division by w.
	ViewProj pmath.Mat4
	// Inverse maps (ndc_x, ndc_y, depth, 1) back to homogeneous world points.
	Inverse pmath.Mat4
}

// Camera holds the intrinsics of the virtual depth camera.
type Camera struct {
	Width     int
	Height    int
	ViewAngle float64 // vertical field of view, degrees
	Near      float64
	Far       float64
	Viewport  depth.Viewport
}

// Validate checks the intrinsics.
func (c Camera) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrCamera, c.Width, c.Height)
	}
	if c.ViewAngle <= 0 || c.ViewAngle >= 180 {
		return fmt.Errorf("%w: view angle %v", ErrCamera, c.ViewAngle)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("%w: clipping range [%v, %v]", ErrCamera, c.Near, c.Far)
	}
	if err := c.Viewport.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrCamera, err)
	}
	return nil
}

// Aspect returns the width/height ratio of the viewport in pixels.
func (c Camera) Aspect() float64 {
	vp := c.Viewport
	return float64(c.Width) * (vp.X1 - vp.X0) / (float64(c.Height) * (vp.Y1 - vp.Y0))
}

// ViewProj returns the composite depth-range * projection * view transform.
func (c Camera) ViewProj(p Pose) pmath.Mat4 {
	proj := pmath.Perspective(c.ViewAngle*math.Pi/180, c.Aspect(), c.Near, c.Far)
	view := pmath.LookAt(p.Position, p.LookAt, pmath.Vec3{Y: 1})
	return pmath.DepthRange().Mul(proj).Mul(view)
}

// Render ray casts col from pose p. A nil collider renders an empty image.
// Each pixel's ray runs from the near plane to the far plane through the
// same normalized device coordinates the reprojector uses.
func (c Camera) Render(col model3d.Collider, p Pose) (*Frame, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if p.Position.Distance(p.LookAt) == 0 {
		return nil, fmt.Errorf("%w: position equals look-at point %v", ErrCamera, p.Position)
	}

	vp := c.ViewProj(p)
	inv, err := vp.Inverse()
	if err != nil {
		return nil, fmt.Errorf("camera transform: %w", err)
	}

	img := depth.Empty(c.Width, c.Height, c.Viewport)
	frame := &Frame{Depth: img, ViewProj: vp, Inverse: inv}
	if col == nil {
		return frame, nil
	}

	ray := &model3d.Ray{}
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			nx, ny := c.Viewport.NDC(float64(x), float64(y), c.Width, c.Height)
			nearPt := inv.MulVec4(pmath.Vec4{nx, ny, 0, 1}).Dehomogenize()
			farPt := inv.MulVec4(pmath.Vec4{nx, ny, 1, 1}).Dehomogenize()
			dir := farPt.Sub(nearPt)

			ray.Origin = model3d.XYZ(nearPt.X, nearPt.Y, nearPt.Z)
			ray.Direction = model3d.XYZ(dir.X, dir.Y, dir.Z)
			rc, ok := col.FirstRayCollision(ray)
			if !ok || rc.Scale > 1 {
				continue
			}
			hit := nearPt.Add(dir.Scale(rc.Scale))
			d := vp.TransformPoint(hit).Z
			img.Set(x, y, math.Max(0, math.Min(d, depth.FarPlane)))
		}
	}
	return frame, nil
}
