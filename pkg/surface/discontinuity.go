package surface

import (
	"fmt"
	"math"

	"github.com/Faultbox/depthmesh/pkg/depth"
)

// DiscontinuityParams configures DetectDiscontinuities.
type DiscontinuityParams struct {
	// Threshold is the largest neighbor depth difference still considered
	// the same surface.
	Threshold float64
	// FarPlane marks pixels at or beyond this depth as background.
	FarPlane float64
}

// DefaultDiscontinuityParams returns threshold 0.01 and far plane 1.0.
func DefaultDiscontinuityParams() DiscontinuityParams {
	return DiscontinuityParams{Threshold: 0.01, FarPlane: depth.FarPlane}
}

// DetectDiscontinuities returns a validity mask for img. A pixel is invalid
// when it is background or when the forward difference to its right or upper
// neighbor exceeds the threshold; both pixels of such a pair are invalid.
// The last column and row compare against themselves.
func DetectDiscontinuities(img *depth.Image, p DiscontinuityParams) ([]bool, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("discontinuities: %w", err)
	}

	w, h := img.Width, img.Height
	invalid := make([]bool, img.Len())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			d := img.Data[i]
			if d >= p.FarPlane {
				invalid[i] = true
			}
			if x+1 < w && math.Abs(d-img.Data[i+1]) > p.Threshold {
				invalid[i] = true
				invalid[i+1] = true
			}
			if y+1 < h && math.Abs(d-img.Data[i+w]) > p.Threshold {
				invalid[i] = true
				invalid[i+w] = true
			}
		}
	}

	for i, bad := range invalid {
		invalid[i] = !bad
	}
	return invalid, nil
}

// Exclude clears valid[i] wherever drop[i] is set.
func Exclude(valid, drop []bool) error {
	if len(valid) != len(drop) {
		return fmt.Errorf("exclude: %w: %d vs %d", depth.ErrShape, len(valid), len(drop))
	}
	for i, d := range drop {
		if d {
			valid[i] = false
		}
	}
	return nil
}
