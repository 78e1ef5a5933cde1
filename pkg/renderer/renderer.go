package renderer

import (
	"sync"
	"time"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// Config sizes the renderer and its worker pool
type Config struct {
	Width      int
	Height     int
	TileSize   int // Size of each square tile in pixels
	NumWorkers int // Number of parallel workers (0 = one per physical core)
}

// DefaultConfig returns sensible defaults for a width x height image
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		TileSize:   32,
		NumWorkers: 0,
	}
}

// Renderer draws frames of a scene and accumulates them progressively.
// Accumulation restarts whenever the camera, field of view or any setting
// changes. Settings methods may be called from any goroutine; Render must
// only be called from one goroutine at a time.
type Renderer struct {
	width  int
	height int
	tiles  []*Tile
	pool   *WorkerPool
	accum  *Accumulator
	frame  *FrameBuffer
	logger core.Logger

	mu       sync.Mutex
	settings core.RenderSettings
	invalid  bool
	started  bool
	camera   geometry.CameraState
	frames   int
}

// NewRenderer creates a renderer and starts its workers. Call Close to stop them.
func NewRenderer(config Config, settings core.RenderSettings, logger core.Logger) *Renderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig(config.Width, config.Height).TileSize
	}
	if logger == nil {
		logger = core.NewDiscardLogger()
	}

	tiles := NewTileGrid(config.Width, config.Height, config.TileSize)
	pool := NewWorkerPool(config.NumWorkers, len(tiles))
	pool.Start()

	return &Renderer{
		width:    config.Width,
		height:   config.Height,
		tiles:    tiles,
		pool:     pool,
		accum:    NewAccumulator(config.Width, config.Height),
		frame:    NewFrameBuffer(config.Width, config.Height),
		logger:   logger,
		settings: normalizeSettings(settings),
	}
}

func normalizeSettings(settings core.RenderSettings) core.RenderSettings {
	settings.MaxBounces = max(settings.MaxBounces, 1)
	return settings
}

// Width returns the image width in pixels
func (r *Renderer) Width() int { return r.width }

// Height returns the image height in pixels
func (r *Renderer) Height() int { return r.height }

// NumWorkers returns the number of tile workers
func (r *Renderer) NumWorkers() int { return r.pool.GetNumWorkers() }

// Render draws one frame of s and returns the renderer's frame buffer, which
// is overwritten by the next call
func (r *Renderer) Render(s *scene.Scene) (*FrameBuffer, RenderStats) {
	start := time.Now()

	r.mu.Lock()
	settings := r.settings
	state := s.Camera.State()
	reset := r.invalid || !r.started || state != r.camera
	r.invalid = false
	r.started = true
	r.camera = state
	r.frames++
	frameNumber := r.frames
	r.mu.Unlock()

	if reset {
		r.accum.Reset()
	}

	tr := NewTileRenderer(s, settings, r.accum, r.frame)
	for i, tile := range r.tiles {
		r.pool.SubmitTask(TileTask{Tile: tile, Renderer: tr, TaskID: i})
	}

	stats := newRenderStats()
	for range r.tiles {
		result, ok := r.pool.GetResult()
		if !ok {
			break
		}
		r.tiles[result.TaskID].FramesCompleted++
		stats.merge(result.Stats)
	}

	stats.finalize()
	stats.Frame = frameNumber
	stats.Reset = reset
	stats.Duration = time.Since(start)
	return r.frame, stats
}

// Settings returns a copy of the current settings
func (r *Renderer) Settings() core.RenderSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// SetSettings replaces all settings and restarts accumulation when they differ
func (r *Renderer) SetSettings(settings core.RenderSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings = normalizeSettings(settings)
	if settings != r.settings {
		r.settings = settings
		r.invalid = true
	}
}

// Invalidate restarts accumulation on the next frame
func (r *Renderer) Invalidate() {
	r.mu.Lock()
	r.invalid = true
	r.mu.Unlock()
}

// update applies change to the settings, restarts accumulation and returns the new settings
func (r *Renderer) update(change func(*core.RenderSettings)) core.RenderSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	change(&r.settings)
	r.invalid = true
	return r.settings
}

// CycleLightingMode advances to the next lighting mode
func (r *Renderer) CycleLightingMode() core.LightingMode {
	s := r.update(func(s *core.RenderSettings) { s.LightingMode = s.LightingMode.Next() })
	r.logger.Printf("Lighting mode: %s\n", s.LightingMode)
	return s.LightingMode
}

// ToggleShadows turns shadow rays on or off
func (r *Renderer) ToggleShadows() bool {
	s := r.update(func(s *core.RenderSettings) { s.Shadows = !s.Shadows })
	r.logger.Printf("Shadows: %t\n", s.Shadows)
	return s.Shadows
}

// ToggleReflections turns reflection bounces on or off
func (r *Renderer) ToggleReflections() bool {
	s := r.update(func(s *core.RenderSettings) { s.Reflections = !s.Reflections })
	r.logger.Printf("Reflections: %t\n", s.Reflections)
	return s.Reflections
}

// IncrementBounces changes the reflection bounce count, never going below one
func (r *Renderer) IncrementBounces(delta int) int {
	s := r.update(func(s *core.RenderSettings) { s.MaxBounces = max(s.MaxBounces+delta, 1) })
	r.logger.Printf("Reflection bounces: %d\n", s.MaxBounces)
	return s.MaxBounces
}

// ToggleAccumulation turns progressive accumulation on or off
func (r *Renderer) ToggleAccumulation() bool {
	s := r.update(func(s *core.RenderSettings) { s.Accumulate = !s.Accumulate })
	r.logger.Printf("Accumulation: %t\n", s.Accumulate)
	return s.Accumulate
}

// ToggleGlossy turns roughness jitter on reflected rays on or off
func (r *Renderer) ToggleGlossy() bool {
	s := r.update(func(s *core.RenderSettings) { s.GlossyReflections = !s.GlossyReflections })
	r.logger.Printf("Glossy reflections: %t\n", s.GlossyReflections)
	return s.GlossyReflections
}

// SampleCount returns the accumulated samples of pixel x, y. Call it between frames.
func (r *Renderer) SampleCount(x, y int) int {
	return r.accum.Count(x, y)
}

// PixelColor returns the accumulated average of pixel x, y before clamping.
// Call it between frames.
func (r *Renderer) PixelColor(x, y int) core.Vec3 {
	return r.accum.Color(x, y)
}

// Close stops the workers. The renderer must not be used afterwards.
func (r *Renderer) Close() {
	r.pool.Stop()
}
