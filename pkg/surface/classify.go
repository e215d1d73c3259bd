package surface

import (
	"fmt"
	"math"

	"github.com/Faultbox/depthmesh/pkg/depth"
)

// Classification is the result of comparing a sensor image with a prediction.
type Classification struct {
	// Redundant marks pixels already explained by the world mesh.
	Redundant []bool
	// Filtered is the sensor image with redundant pixels at the far plane.
	Filtered       *depth.Image
	RedundantCount int
}

// Classify marks sensor pixels within tolerance of the predicted depth as
// redundant. On the first frame predicted should be depth.Empty so that
// every sensor hit counts as new.
func Classify(sensor, predicted *depth.Image, tolerance float64) (Classification, error) {
	if err := sensor.Validate(); err != nil {
		return Classification{}, fmt.Errorf("classify sensor: %w", err)
	}
	if err := predicted.Validate(); err != nil {
		return Classification{}, fmt.Errorf("classify prediction: %w", err)
	}
	if !sensor.SameShape(predicted) {
		return Classification{}, fmt.Errorf("classify: %w: sensor %dx%d, predicted %dx%d",
			depth.ErrShape, sensor.Width, sensor.Height, predicted.Width, predicted.Height)
	}

	out := Classification{
		Redundant: make([]bool, sensor.Len()),
		Filtered:  sensor.Clone(),
	}
	for i, d := range sensor.Data {
		if math.Abs(d-predicted.Data[i]) < tolerance {
			out.Redundant[i] = true
			out.Filtered.Data[i] = depth.FarPlane
			out.RedundantCount++
		}
	}
	return out, nil
}
