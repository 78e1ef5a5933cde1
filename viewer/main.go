package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-interactive-raytracer/pkg/capture"
	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

const controls = `--------
CONTROLS:
WASD:     Move camera
Q/E:      Move down/up
LMB drag: Turn and move along the ground
RMB drag: Look around
MMB drag: Move up/down
F1:       Toggle reflections
F2:       Toggle shadows
F3:       Cycle lighting modes
F4:       Toggle accumulation
F5:       Toggle glossy reflections
F6:       Start benchmark
UP/DOWN:  In-/decrement reflection bounces
SCROLL:   In-/decrease field of view
X:        Take screenshot
ESC:      Quit
`

const (
	maxFrameStep     = 0.1  // seconds; longer gaps between frames are clamped
	verticalDragRate = 0.1  // Up axis per dragged pixel
	wheelDegrees     = 2.86 // field of view change per wheel notch
)

// Game drives the interactive window. Input is polled in Update and handed
// to the render goroutine, which applies it before each frame.
type Game struct {
	scene     *scene.Scene
	renderer  *renderer.Renderer
	logger    core.Logger
	name      string
	outputDir string
	width     int
	height    int

	frames <-chan renderer.FrameResult
	errs   <-chan error

	image   *ebiten.Image
	current *renderer.FrameBuffer
	stats   renderer.RenderStats

	bench       *renderer.Benchmark
	benchFrames int

	cursorX, cursorY int

	mu       sync.Mutex
	input    geometry.CameraInput
	lastTick time.Time

	// pixel under the cursor, sampled between frames
	pointer        image.Point
	pointerSamples int
	pointerColor   core.Vec3
}

// Update polls input, applies toggles and picks up the newest frame
func (g *Game) Update() error {
	if inpututil.IsKeyJustReleased(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.handleToggles()
	g.queueInput(g.pollCamera())
	g.mu.Lock()
	g.pointer = image.Pt(g.cursorX, g.cursorY)
	g.mu.Unlock()
	return g.drainFrames()
}

// drainFrames keeps the newest finished frame without waiting for one
func (g *Game) drainFrames() error {
	for {
		select {
		case result, ok := <-g.frames:
			if !ok {
				if err := <-g.errs; err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return ebiten.Termination
			}
			g.current = result.Frame
			g.stats = result.Stats
			if g.bench != nil && g.bench.Add(result.Stats.Duration) {
				g.bench.Report(g.logger, g.width, g.height, g.renderer.NumWorkers())
				g.bench = nil
			}
		default:
			return nil
		}
	}
}

// handleToggles acts on released keys so a held key toggles once
func (g *Game) handleToggles() {
	r := g.renderer
	switch {
	case inpututil.IsKeyJustReleased(ebiten.KeyF1):
		r.ToggleReflections()
	case inpututil.IsKeyJustReleased(ebiten.KeyF2):
		r.ToggleShadows()
	case inpututil.IsKeyJustReleased(ebiten.KeyF3):
		r.CycleLightingMode()
	case inpututil.IsKeyJustReleased(ebiten.KeyF4):
		r.ToggleAccumulation()
	case inpututil.IsKeyJustReleased(ebiten.KeyF5):
		r.ToggleGlossy()
	case inpututil.IsKeyJustReleased(ebiten.KeyF6):
		g.logger.Printf("Benchmark started (%d frames)\n", g.benchFrames)
		g.bench = renderer.NewBenchmark(g.benchFrames)
	case inpututil.IsKeyJustReleased(ebiten.KeyArrowUp):
		r.IncrementBounces(1)
	case inpututil.IsKeyJustReleased(ebiten.KeyArrowDown):
		r.IncrementBounces(-1)
	case inpututil.IsKeyJustReleased(ebiten.KeyX):
		g.screenshot()
	}
}

// pollCamera turns held keys, mouse drags and the wheel into camera input
func (g *Game) pollCamera() geometry.CameraInput {
	var input geometry.CameraInput

	if ebiten.IsKeyPressed(ebiten.KeyW) {
		input.Forward++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		input.Forward--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		input.Right++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		input.Right--
	}
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		input.Up++
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		input.Up--
	}

	x, y := ebiten.CursorPosition()
	dx, dy := float64(x-g.cursorX), float64(y-g.cursorY)
	g.cursorX, g.cursorY = x, y

	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		input.DragX, input.DragY = dx, dy
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		input.LookX, input.LookY = dx, dy
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		input.Up = math.Max(-1, math.Min(1, input.Up-dy*verticalDragRate))
	}

	if _, wheel := ebiten.Wheel(); wheel != 0 {
		input.FieldOfViewDelta = -wheel * wheelDegrees
	}
	return input
}

func (g *Game) queueInput(input geometry.CameraInput) {
	g.mu.Lock()
	g.input = g.input.Merge(input)
	g.mu.Unlock()
}

// beforeFrame runs on the render goroutine
func (g *Game) beforeFrame(frame int) {
	now := time.Now()

	g.mu.Lock()
	input := g.input
	g.input = geometry.CameraInput{Forward: input.Forward, Right: input.Right, Up: input.Up}
	elapsed := 0.0
	if !g.lastTick.IsZero() {
		elapsed = min(now.Sub(g.lastTick).Seconds(), maxFrameStep)
	}
	g.lastTick = now

	g.pointerSamples, g.pointerColor = 0, core.Vec3{}
	if g.pointer.In(image.Rect(0, 0, g.width, g.height)) {
		g.pointerSamples = g.renderer.SampleCount(g.pointer.X, g.pointer.Y)
		g.pointerColor = g.renderer.PixelColor(g.pointer.X, g.pointer.Y)
	}
	g.mu.Unlock()

	g.scene.Camera.Update(input, elapsed)
	g.scene.Update(elapsed)
}

// screenshot saves the displayed frame as a BMP
func (g *Game) screenshot() {
	if g.current == nil {
		g.logger.Printf("Nothing rendered yet. Screenshot not saved!\n")
		return
	}
	path := capture.ScreenshotPath(g.outputDir, g.name, "screenshot", "bmp", time.Now())
	if err := capture.SaveScreenshot(g.current, path); err != nil {
		g.logger.Printf("Failed to save screenshot: %v\n", err)
		return
	}
	g.logger.Printf("Screenshot saved as %s\n", path)
}

// Draw blits the newest frame and the status line
func (g *Game) Draw(screen *ebiten.Image) {
	if g.current != nil {
		g.image.WritePixels(g.current.Image().Pix)
		screen.DrawImage(g.image, nil)
	}

	g.mu.Lock()
	pointer, samples, color := g.pointer, g.pointerSamples, g.pointerColor
	g.mu.Unlock()

	settings := g.renderer.Settings()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS %.1f  frame %d  %.1f spp\n%s  shadows %t  reflections %t (%d)\npixel %d,%d  %d spp  rgb %.3f %.3f %.3f",
		ebiten.ActualFPS(), g.stats.Frame, g.stats.AverageSamples,
		settings.LightingMode, settings.Shadows, settings.Reflections, settings.MaxBounces,
		pointer.X, pointer.Y, samples, color.X, color.Y, color.Z,
	))
}

// Layout keeps the logical screen at the render resolution
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func main() {
	sceneName := flag.String("scene", "triangles", "Scene id: a built-in name, file:<name> or a .json path")
	width := flag.Int("width", 640, "Render width")
	height := flag.Int("height", 480, "Render height")
	scale := flag.Int("scale", 1, "Window scale factor")
	workers := flag.Int("workers", 0, "Number of render workers (0 = auto-detect)")
	output := flag.String("out", "output", "Screenshot directory")
	benchFrames := flag.Int("benchmark-frames", 100, "Frames measured by the F6 benchmark")
	flag.Parse()

	s, _, err := scene.Resolve(*sceneName)
	if err != nil {
		log.Printf("Error loading scene: %v", err)
		os.Exit(1)
	}

	logger := core.NewDefaultLogger()
	config := renderer.DefaultConfig(*width, *height)
	config.NumWorkers = *workers
	r := renderer.NewRenderer(config, s.Settings, logger)

	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		scene:       s,
		renderer:    r,
		logger:      logger,
		name:        s.Name,
		outputDir:   *output,
		width:       *width,
		height:      *height,
		image:       ebiten.NewImage(*width, *height),
		benchFrames: *benchFrames,
	}
	g.frames, g.errs = r.RenderProgressive(ctx, s, renderer.ProgressiveOptions{BeforeFrame: g.beforeFrame})

	fmt.Print(controls)
	ebiten.SetWindowSize(*width**scale, *height**scale)
	ebiten.SetWindowTitle("RayTracer - " + s.Name)

	runErr := ebiten.RunGame(g)

	// Let the frame in flight finish before the workers stop
	cancel()
	for range g.frames {
	}
	r.Close()

	if runErr != nil {
		log.Printf("Error: %v", runErr)
		os.Exit(1)
	}
}
