package renderer

import (
	"image"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// FrameBuffer holds one frame of packed 0x00RRGGBB pixels in row-major order
type FrameBuffer struct {
	Width  int
	Height int
	Pixels []uint32
}

// NewFrameBuffer creates a black frame buffer
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]uint32, width*height),
	}
}

// Set stores a packed pixel
func (fb *FrameBuffer) Set(x, y int, packed uint32) {
	fb.Pixels[y*fb.Width+x] = packed
}

// At returns the packed pixel at x, y
func (fb *FrameBuffer) At(x, y int) uint32 {
	return fb.Pixels[y*fb.Width+x]
}

// Clone returns an independent copy of the frame
func (fb *FrameBuffer) Clone() *FrameBuffer {
	return &FrameBuffer{
		Width:  fb.Width,
		Height: fb.Height,
		Pixels: append([]uint32(nil), fb.Pixels...),
	}
}

// Image converts the frame to an opaque RGBA image
func (fb *FrameBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, core.PackedToRGBA(fb.At(x, y)))
		}
	}
	return img
}
