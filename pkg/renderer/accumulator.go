package renderer

import "github.com/df07/go-interactive-raytracer/pkg/core"

// Accumulator keeps per-pixel running sums across frames. Each pixel is
// written by exactly one tile, so tiles may add concurrently.
type Accumulator struct {
	width  int
	height int
	pixels []PixelStats
}

// NewAccumulator creates an empty accumulator for a width x height image
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		width:  width,
		height: height,
		pixels: make([]PixelStats, width*height),
	}
}

// Add folds a new sample into the pixel and returns the running average.
// A sample that saw a moving object restarts the pixel.
func (a *Accumulator) Add(x, y int, color core.Vec3, dynamic bool) (core.Vec3, int) {
	ps := &a.pixels[y*a.width+x]
	if dynamic {
		ps.Restart(color)
	} else {
		ps.AddSample(color)
	}
	return ps.GetColor(), ps.SampleCount
}

// Replace stores a single sample, discarding the pixel's history
func (a *Accumulator) Replace(x, y int, color core.Vec3) {
	a.pixels[y*a.width+x].Restart(color)
}

// Count returns the number of samples held by a pixel
func (a *Accumulator) Count(x, y int) int {
	return a.pixels[y*a.width+x].SampleCount
}

// Color returns the averaged color of a pixel
func (a *Accumulator) Color(x, y int) core.Vec3 {
	return a.pixels[y*a.width+x].GetColor()
}

// Reset clears every pixel
func (a *Accumulator) Reset() {
	clear(a.pixels)
}
