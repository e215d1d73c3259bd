// Package depth defines the depth image container shared by the sensor,
// the reprojector and the classifier.
//
// Images are row-major with row 0 at the bottom, matching the orientation of
// an OpenGL z-buffer readback. Pixel (x, y) lives at Data[y*Width+x].
package depth

import (
	"errors"
	"fmt"
)

// FarPlane is the depth value of a pixel whose ray hit nothing.
const FarPlane = 1.0

var (
	// ErrShape is returned for zero-sized images, mismatched data lengths
	// and images that do not share a shape.
	ErrShape = errors.New("depth image shape mismatch")
	// ErrViewport is returned for viewports outside the unit square.
	ErrViewport = errors.New("invalid viewport")
)

// Viewport is a normalized sub-rectangle of the render target.
type Viewport struct {
	X0, Y0, X1, Y1 float64
}

// FullViewport covers the whole render target.
var FullViewport = Viewport{0, 0, 1, 1}

// Validate checks the viewport bounds.
func (v Viewport) Validate() error {
	for _, c := range []float64{v.X0, v.Y0, v.X1, v.Y1} {
		if c < 0 || c > 1 {
			return fmt.Errorf("%w: %v outside [0,1]", ErrViewport, v)
		}
	}
	if v.X1 <= v.X0 || v.Y1 <= v.Y0 {
		return fmt.Errorf("%w: %v is empty", ErrViewport, v)
	}
	return nil
}

// NDC maps pixel (x, y) of a w*h image to normalized device coordinates.
func (v Viewport) NDC(x, y float64, w, h int) (float64, float64) {
	fw, fh := float64(w), float64(h)
	nx := 2*(x-fw*v.X0)/(fw*(v.X1-v.X0)) - 1
	ny := 2*(y-fh*v.Y0)/(fh*(v.Y1-v.Y0)) - 1
	return nx, ny
}

// Image is a dense depth buffer normalized to [0,1].
type Image struct {
	Width    int
	Height   int
	Viewport Viewport
	Data     []float64
}

// New returns a zeroed image.
func New(w, h int, vp Viewport) *Image {
	return &Image{Width: w, Height: h, Viewport: vp, Data: make([]float64, w*h)}
}

// NewFilled returns an image with every pixel set to v.
func NewFilled(w, h int, vp Viewport, v float64) *Image {
	img := New(w, h, vp)
	for i := range img.Data {
		img.Data[i] = v
	}
	return img
}

// Empty returns an image with every pixel at the far plane.
func Empty(w, h int, vp Viewport) *Image {
	return NewFilled(w, h, vp, FarPlane)
}

// Len returns the number of pixels.
func (img *Image) Len() int {
	return img.Width * img.Height
}

// Index returns the flattened index of pixel (x, y).
func (img *Image) Index(x, y int) int {
	return y*img.Width + x
}

// At returns the depth at pixel (x, y).
func (img *Image) At(x, y int) float64 {
	return img.Data[img.Index(x, y)]
}

// Set stores the depth at pixel (x, y).
func (img *Image) Set(x, y int, v float64) {
	img.Data[img.Index(x, y)] = v
}

// Validate checks that the image is non-empty and its data matches its size.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrShape)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrShape, img.Width, img.Height)
	}
	if len(img.Data) != img.Width*img.Height {
		return fmt.Errorf("%w: %d samples for %dx%d", ErrShape, len(img.Data), img.Width, img.Height)
	}
	return img.Viewport.Validate()
}

// SameShape reports whether both images have the same dimensions.
func (img *Image) SameShape(other *Image) bool {
	return other != nil && img.Width == other.Width && img.Height == other.Height
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	c := *img
	c.Data = append([]float64(nil), img.Data...)
	return &c
}

// Empty reports whether every pixel is at or beyond the far plane.
func (img *Image) Empty() bool {
	for _, d := range img.Data {
		if d < FarPlane {
			return false
		}
	}
	return true
}
