package renderer

import (
	"math"
	"time"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// RenderStats contains statistics about one rendered frame
type RenderStats struct {
	Frame          int           // 1-based frame number since the renderer was created
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Accumulated samples across all pixels
	AverageSamples float64       // Average accumulated samples per pixel
	MinSamples     int           // Fewest samples held by any pixel
	MaxSamplesUsed int           // Most samples held by any pixel
	DynamicPixels  int           // Pixels reset this frame because they saw a moving object
	Reset          bool          // Accumulation was cleared before this frame
	Duration       time.Duration // Wall time for the frame
}

func newRenderStats() RenderStats {
	return RenderStats{MinSamples: math.MaxInt}
}

// addPixel folds one pixel's sample count into the stats
func (s *RenderStats) addPixel(samples int, dynamic bool) {
	s.TotalPixels++
	s.TotalSamples += samples
	s.MinSamples = min(s.MinSamples, samples)
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, samples)
	if dynamic {
		s.DynamicPixels++
	}
}

// merge folds a tile's stats into the frame stats
func (s *RenderStats) merge(tile RenderStats) {
	s.TotalPixels += tile.TotalPixels
	s.TotalSamples += tile.TotalSamples
	s.MinSamples = min(s.MinSamples, tile.MinSamples)
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, tile.MaxSamplesUsed)
	s.DynamicPixels += tile.DynamicPixels
}

// finalize calculates derived statistics after all tiles are merged
func (s *RenderStats) finalize() {
	if s.TotalPixels == 0 {
		s.MinSamples = 0
		return
	}
	s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
}

// PixelStats is the running colour sum of one pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// Restart discards the history and keeps only color
func (ps *PixelStats) Restart(color core.Vec3) {
	ps.ColorAccum = color
	ps.SampleCount = 1
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}
