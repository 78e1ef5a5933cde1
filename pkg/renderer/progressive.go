package renderer

import (
	"context"
	"image"
	"math/rand"

	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// ProgressiveOptions configures a progressive run
type ProgressiveOptions struct {
	MaxFrames   int             // Frames to render, 0 runs until the context is cancelled
	Tick        float64         // Seconds of scene animation advanced before each frame
	BeforeFrame func(frame int) // Runs on the render goroutine before each frame, for camera input
	LogFrames   bool            // Log a line per completed frame
}

// FrameResult contains one completed frame of a progressive run
type FrameResult struct {
	Frame  *FrameBuffer // Independent copy, safe to keep
	Stats  RenderStats
	IsLast bool
}

// RenderProgressive renders frames of s with channel-based communication.
// Returns channels for events. The caller should read from these channels in separate goroutines.
// The context is checked between frames; a frame in flight always completes.
func (r *Renderer) RenderProgressive(ctx context.Context, s *scene.Scene, options ProgressiveOptions) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		if options.MaxFrames > 0 {
			r.logger.Printf("Starting progressive rendering of %d frames with %d workers...\n", options.MaxFrames, r.NumWorkers())
		} else {
			r.logger.Printf("Starting continuous rendering with %d workers...\n", r.NumWorkers())
		}

		for frame := 1; options.MaxFrames == 0 || frame <= options.MaxFrames; frame++ {
			// Check if the caller stopped listening before starting this frame
			select {
			case <-ctx.Done():
				r.logger.Printf("Rendering cancelled before frame %d\n", frame)
				errChan <- ctx.Err()
				return
			default:
			}

			if options.BeforeFrame != nil {
				options.BeforeFrame(frame)
			}
			if options.Tick > 0 {
				s.Update(options.Tick)
			}

			fb, stats := r.Render(s)
			if options.LogFrames {
				r.logger.Printf("Frame %d completed in %v (%.1f samples/pixel)\n", stats.Frame, stats.Duration, stats.AverageSamples)
			}

			result := FrameResult{
				Frame:  fb.Clone(),
				Stats:  stats,
				IsLast: frame == options.MaxFrames,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return frameChan, errChan
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	FramesCompleted int             // Number of frames rendered for this tile
	Random          *rand.Rand      // Tile-specific random generator for deterministic results
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	// Create deterministic random generator based on tile ID
	random := rand.New(rand.NewSource(int64(id + 42))) // +42 to avoid seed 0

	return &Tile{
		ID:     id,
		Bounds: bounds,
		Random: random,
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
