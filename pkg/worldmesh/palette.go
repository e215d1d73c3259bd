package worldmesh

import "github.com/lucasb-eyer/go-colorful"

// palette holds evenly spaced saturated hues.
var palette = func() []colorful.Color {
	const n = 8
	p := make([]colorful.Color, n)
	for i := range p {
		p[i] = colorful.Hsv(float64(i)*360/n, 0.75, 0.95)
	}
	return p
}()

// PaletteSize is the number of distinct patch colors.
func PaletteSize() int {
	return len(palette)
}

// ColorForStep returns the patch color of append call i.
func ColorForStep(i int) colorful.Color {
	n := len(palette)
	return palette[((i%n)+n)%n]
}
