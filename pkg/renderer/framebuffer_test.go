package renderer

import (
	"image/color"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

func TestFrameBuffer(t *testing.T) {
	fb := NewFrameBuffer(3, 2)
	if len(fb.Pixels) != 6 {
		t.Fatalf("len(Pixels) = %d, want 6", len(fb.Pixels))
	}

	fb.Set(2, 1, core.PackRGB(core.NewVec3(1, 0.5, 0)))
	if got := fb.At(2, 1); got != 0xFF7F00 {
		t.Errorf("At(2,1) = %#06x, want 0xff7f00", got)
	}
	if fb.Pixels[5] != fb.At(2, 1) {
		t.Error("pixels are not stored row-major")
	}

	clone := fb.Clone()
	fb.Set(2, 1, 0)
	if clone.At(2, 1) != 0xFF7F00 {
		t.Error("Clone shares storage with the original")
	}

	img := clone.Image()
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("image bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(2, 1); got != (color.RGBA{R: 255, G: 127, B: 0, A: 255}) {
		t.Errorf("image pixel = %v", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("unset pixel = %v, want opaque black", got)
	}
}
