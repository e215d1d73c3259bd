package surface

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/depthmesh/pkg/depth"
)

func TestDetectDiscontinuitiesStepEdge(t *testing.T) {
	const w, h = 6, 3
	img := depth.New(w, h, depth.FullViewport)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, 0.5)
			} else {
				img.Set(x, y, 0.9)
			}
		}
	}

	valid, err := DetectDiscontinuities(img, DefaultDiscontinuityParams())
	if err != nil {
		t.Fatalf("DetectDiscontinuities() error = %v", err)
	}

	want := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want[img.Index(x, y)] = x != 2 && x != 3
		}
	}
	if diff := cmp.Diff(want, valid); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectDiscontinuitiesHorizontalEdge(t *testing.T) {
	img := depth.NewFilled(3, 4, depth.FullViewport, 0.4)
	for x := 0; x < 3; x++ {
		img.Set(x, 3, 0.6)
	}
	valid, err := DetectDiscontinuities(img, DefaultDiscontinuityParams())
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 3; x++ {
			want := y < 2
			if got := valid[img.Index(x, y)]; got != want {
				t.Errorf("valid(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestDetectDiscontinuitiesUniform(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{"near", 0.1, true},
		{"mid", 0.5, true},
		{"just below far", 0.999, true},
		{"far plane", 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := depth.NewFilled(5, 4, depth.FullViewport, tt.value)
			valid, err := DetectDiscontinuities(img, DefaultDiscontinuityParams())
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range valid {
				if v != tt.want {
					t.Fatalf("valid[%d] = %v, want %v", i, v, tt.want)
				}
			}
		})
	}
}

func TestDetectDiscontinuitiesFarThreshold(t *testing.T) {
	img := depth.NewFilled(2, 2, depth.FullViewport, 0.985)
	valid, err := DetectDiscontinuities(img, DiscontinuityParams{Threshold: 0.01, FarPlane: 0.98})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range valid {
		if v {
			t.Errorf("valid[%d] = true beyond the far threshold", i)
		}
	}
}

func TestDetectDiscontinuitiesShape(t *testing.T) {
	img := &depth.Image{Width: 3, Height: 3, Viewport: depth.FullViewport, Data: make([]float64, 8)}
	if _, err := DetectDiscontinuities(img, DefaultDiscontinuityParams()); !errors.Is(err, depth.ErrShape) {
		t.Errorf("error = %v, want ErrShape", err)
	}
}

func TestExclude(t *testing.T) {
	valid := []bool{true, true, false, true}
	if err := Exclude(valid, []bool{false, true, true, false}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, false, false, true}, valid); diff != "" {
		t.Errorf("Exclude mismatch (-want +got):\n%s", diff)
	}
	if err := Exclude(valid, []bool{true}); !errors.Is(err, depth.ErrShape) {
		t.Errorf("error = %v, want ErrShape", err)
	}
}
