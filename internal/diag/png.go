package diag

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/Faultbox/depthmesh/internal/pipeline"
	"github.com/Faultbox/depthmesh/pkg/depth"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// DepthImageWriter writes the sensor, predicted and difference images of
// every step as grayscale PNGs.
type DepthImageWriter struct {
	outputDir string
	prefix    string
}

// NewDepthImageWriter creates a writer saving into outputDir.
func NewDepthImageWriter(outputDir, prefix string) *DepthImageWriter {
	return &DepthImageWriter{
		outputDir: outputDir,
		prefix:    prefix,
	}
}

// Record writes the step's images.
func (w *DepthImageWriter) Record(res *pipeline.StepResult, _ worldmesh.Snapshot) error {
	if res.Sensor == nil {
		return nil
	}
	images := map[string]*image.Gray{"sensor": Grayscale(res.Sensor)}
	if res.Predicted != nil {
		images["predicted"] = Grayscale(res.Predicted)
		if diff, err := Difference(res.Sensor, res.Predicted); err == nil {
			images["difference"] = diff
		}
	}
	for kind, img := range images {
		if _, err := w.Write(img, fmt.Sprintf("%04d_%s", res.Index, kind)); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; every image is written during Record.
func (w *DepthImageWriter) Close() error {
	return nil
}

// Write saves img as <prefix>_<name>.png and returns the file path.
func (w *DepthImageWriter) Write(img image.Image, name string) (string, error) {
	if w.outputDir != "" {
		if err := os.MkdirAll(w.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := fmt.Sprintf("%s_%s.png", w.prefix, name)
	if w.outputDir != "" {
		filename = filepath.Join(w.outputDir, filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// Grayscale maps hits to gray levels, nearest white, and misses to black.
// Levels are stretched over the image's own depth range. The image is
// flipped vertically since depth row 0 is the bottom row.
func Grayscale(d *depth.Image) *image.Gray {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range d.Data {
		if v < depth.FarPlane {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo
	return render(d.Width, d.Height, func(i int) uint8 {
		v := d.Data[i]
		if v >= depth.FarPlane {
			return 0
		}
		if span <= 0 {
			return 255
		}
		// Hits use 32..255 so the farthest hit stays distinguishable from a miss.
		return uint8(255 - math.Round(223*(v-lo)/span))
	})
}

// Difference renders |a - b| scaled so the largest difference is white.
func Difference(a, b *depth.Image) (*image.Gray, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("difference: %w", depth.ErrShape)
	}
	max := 0.0
	for i := range a.Data {
		max = math.Max(max, math.Abs(a.Data[i]-b.Data[i]))
	}
	return render(a.Width, a.Height, func(i int) uint8 {
		if max == 0 {
			return 0
		}
		return uint8(math.Round(255 * math.Abs(a.Data[i]-b.Data[i]) / max))
	}), nil
}

func render(width, height int, level func(i int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := height - 1 - y // Flip Y
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: level(srcY*width + x)})
		}
	}
	return img
}
