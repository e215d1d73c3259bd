package depth

import (
	"errors"
	"testing"
)

func TestViewportNDC(t *testing.T) {
	tests := []struct {
		name   string
		vp     Viewport
		x, y   float64
		w, h   int
		nx, ny float64
	}{
		{"origin", FullViewport, 0, 0, 4, 2, -1, -1},
		{"center", FullViewport, 2, 1, 4, 2, 0, 0},
		{"right half", Viewport{0.5, 0, 1, 1}, 2, 0, 4, 2, -1, -1},
		{"right half far edge", Viewport{0.5, 0, 1, 1}, 4, 2, 4, 2, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nx, ny := tt.vp.NDC(tt.x, tt.y, tt.w, tt.h)
			if nx != tt.nx || ny != tt.ny {
				t.Errorf("NDC() = (%v, %v), want (%v, %v)", nx, ny, tt.nx, tt.ny)
			}
		})
	}
}

func TestViewportValidate(t *testing.T) {
	tests := []struct {
		name    string
		vp      Viewport
		wantErr bool
	}{
		{"full", FullViewport, false},
		{"quarter", Viewport{0, 0, 0.5, 0.5}, false},
		{"negative", Viewport{-0.1, 0, 1, 1}, true},
		{"empty", Viewport{0.5, 0, 0.5, 1}, true},
		{"inverted", Viewport{0, 1, 1, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vp.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrViewport) {
				t.Errorf("Validate() error = %v, want ErrViewport", err)
			}
		})
	}
}

func TestImageValidate(t *testing.T) {
	tests := []struct {
		name    string
		img     *Image
		wantErr bool
	}{
		{"ok", New(3, 2, FullViewport), false},
		{"nil", nil, true},
		{"zero width", New(0, 2, FullViewport), true},
		{"short data", &Image{Width: 3, Height: 2, Viewport: FullViewport, Data: make([]float64, 5)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrShape) {
				t.Errorf("Validate() error = %v, want ErrShape", err)
			}
		})
	}
}

func TestImageIndexing(t *testing.T) {
	img := New(3, 2, FullViewport)
	img.Set(2, 1, 0.5)
	if got := img.Data[5]; got != 0.5 {
		t.Errorf("Data[5] = %v, want 0.5", got)
	}
	if got := img.At(2, 1); got != 0.5 {
		t.Errorf("At(2, 1) = %v, want 0.5", got)
	}
}

func TestEmpty(t *testing.T) {
	img := Empty(4, 3, FullViewport)
	if !img.Empty() {
		t.Error("Empty() image should report Empty")
	}
	c := img.Clone()
	c.Set(0, 0, 0.3)
	if !img.Empty() {
		t.Error("Clone should not share data")
	}
	if c.Empty() {
		t.Error("image with a hit should not report Empty")
	}
}
