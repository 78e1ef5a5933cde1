package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-interactive-raytracer/pkg/capture"
	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

const (
	defaultWidth  = 400
	defaultHeight = 300
)

// cliOptions holds the parsed command line
type cliOptions struct {
	Scene     string
	SceneFile string
	Width     int
	Height    int
	Frames    int
	Tick      float64
	Workers   int
	Output    string
	Format    string
	Record    bool
	Benchmark bool
	Help      bool

	Lighting    string
	Shadows     bool
	Reflections bool
	Bounces     int
	Accumulate  bool
	Glossy      bool

	set map[string]bool // flags given explicitly
}

func parseFlags(args []string) (cliOptions, *flag.FlagSet, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)

	fs.StringVar(&opts.Scene, "scene", "lit-spheres", "Built-in scene name or scene id ("+strings.Join(scene.BuiltinNames(), ", ")+")")
	fs.StringVar(&opts.SceneFile, "scene-file", "", "Path to a JSON scene description (overrides -scene)")
	fs.IntVar(&opts.Width, "width", 0, "Image width (0 = scene or default)")
	fs.IntVar(&opts.Height, "height", 0, "Image height (0 = scene or default)")
	fs.IntVar(&opts.Frames, "frames", 16, "Number of progressive frames to render")
	fs.Float64Var(&opts.Tick, "tick", 1.0/30, "Seconds of animation advanced per frame")
	fs.IntVar(&opts.Workers, "workers", 0, "Number of render workers (0 = auto-detect)")
	fs.StringVar(&opts.Output, "out", "output", "Output directory")
	fs.StringVar(&opts.Format, "format", "png", "Screenshot format: png or bmp")
	fs.BoolVar(&opts.Record, "record", false, "Record every frame and status line to a compressed capture")
	fs.BoolVar(&opts.Benchmark, "benchmark", false, "Report frame timing and system information instead of saving an image")
	fs.BoolVar(&opts.Help, "help", false, "Show help information")

	fs.StringVar(&opts.Lighting, "lighting", "", "Lighting mode: observedArea, radiance, brdf or combined")
	fs.BoolVar(&opts.Shadows, "shadows", true, "Trace shadow rays")
	fs.BoolVar(&opts.Reflections, "reflections", true, "Trace reflection bounces")
	fs.IntVar(&opts.Bounces, "bounces", 1, "Maximum reflection bounces")
	fs.BoolVar(&opts.Accumulate, "accumulate", true, "Average samples across frames")
	fs.BoolVar(&opts.Glossy, "glossy", false, "Jitter reflections by surface roughness")

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.Frames < 1 {
		return opts, fs, fmt.Errorf("frames must be at least 1, got %d", opts.Frames)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return opts, fs, fmt.Errorf("width and height must not be negative")
	}
	return opts, fs, nil
}

// createScene builds the scene selected on the command line and returns the
// name used for output directories
func createScene(opts cliOptions) (*scene.Scene, *scene.Description, string, error) {
	if opts.SceneFile != "" {
		s, desc, err := scene.Load(opts.SceneFile)
		if err != nil {
			return nil, nil, "", err
		}
		name := strings.TrimSuffix(filepath.Base(opts.SceneFile), filepath.Ext(opts.SceneFile))
		return s, desc, name, nil
	}

	if opts.Scene == "" {
		return nil, nil, "", errors.New("no scene given")
	}
	s, desc, err := scene.Resolve(opts.Scene)
	if err != nil {
		return nil, nil, "", err
	}
	name := strings.TrimPrefix(opts.Scene, "file:")
	if strings.HasSuffix(name, ".json") {
		name = strings.TrimSuffix(filepath.Base(name), ".json")
	}
	return s, desc, name, nil
}

// applySettingOverrides replaces the scene's settings with the flags given explicitly
func applySettingOverrides(settings core.RenderSettings, opts cliOptions) (core.RenderSettings, error) {
	if opts.set["lighting"] {
		mode, err := core.ParseLightingMode(opts.Lighting)
		if err != nil {
			return settings, err
		}
		settings.LightingMode = mode
	}
	if opts.set["shadows"] {
		settings.Shadows = opts.Shadows
	}
	if opts.set["reflections"] {
		settings.Reflections = opts.Reflections
	}
	if opts.set["bounces"] {
		if opts.Bounces < 1 {
			return settings, fmt.Errorf("bounces must be at least 1, got %d", opts.Bounces)
		}
		settings.MaxBounces = opts.Bounces
	}
	if opts.set["accumulate"] {
		settings.Accumulate = opts.Accumulate
	}
	if opts.set["glossy"] {
		settings.GlossyReflections = opts.Glossy
	}
	return settings, nil
}

// imageSize picks the command line size, then the scene's, then the default
func imageSize(opts cliOptions, desc *scene.Description) (int, int) {
	width, height := defaultWidth, defaultHeight
	if desc.Width > 0 && desc.Height > 0 {
		width, height = desc.Width, desc.Height
	}
	if opts.Width > 0 {
		width = opts.Width
	}
	if opts.Height > 0 {
		height = opts.Height
	}
	return width, height
}

// runResult summarises a finished run
type runResult struct {
	ImagePath     string
	RecordingDir  string
	Frames        int
	AverageFrame  time.Duration
	FinalSamples  float64
	TotalDuration time.Duration
}

// run renders the selected scene progressively and saves the last frame
func run(ctx context.Context, opts cliOptions, logger core.Logger) (runResult, error) {
	var result runResult

	s, desc, name, err := createScene(opts)
	if err != nil {
		return result, err
	}
	settings, err := applySettingOverrides(s.Settings, opts)
	if err != nil {
		return result, err
	}
	width, height := imageSize(opts, desc)

	logger.Printf("Scene %s: %d primitives, %d lights, %dx%d\n", name, s.PrimitiveCount(), len(s.Lights), width, height)

	var recorder *capture.Recorder
	var status *capture.StatusLogger
	if opts.Record {
		recorder, _, err = capture.NewRecorder(filepath.Join(opts.Output, "recordings"), name, width, height, nil)
		if err != nil {
			return result, err
		}
		defer recorder.Close()
		status = capture.NewStatusLogger(logger, recorder)
		logger = status
		result.RecordingDir = recorder.Directory()
		if err := recorder.AppendEvent(0, "settings", settings); err != nil {
			return result, err
		}
	}

	config := renderer.DefaultConfig(width, height)
	config.NumWorkers = opts.Workers
	r := renderer.NewRenderer(config, settings, logger)
	defer r.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	var last *renderer.FrameBuffer
	frameChan, errChan := r.RenderProgressive(ctx, s, renderer.ProgressiveOptions{
		MaxFrames: opts.Frames,
		Tick:      opts.Tick,
		LogFrames: !opts.Benchmark,
		BeforeFrame: func(frame int) {
			if status != nil {
				status.SetFrame(frame)
			}
		},
	})

	bench := renderer.NewBenchmark(opts.Frames)
	var recordErr error
	for frame := range frameChan {
		last = frame.Frame
		result.Frames++
		result.FinalSamples = frame.Stats.AverageSamples
		bench.Add(frame.Stats.Duration)
		if recorder != nil && recordErr == nil {
			// Keep draining so the render goroutine finishes before Close
			if recordErr = recorder.AppendFrame(frame.Stats.Frame, frame.Frame); recordErr != nil {
				cancel()
			}
		}
	}
	renderErr := <-errChan
	if recordErr != nil {
		return result, fmt.Errorf("recording frame: %w", recordErr)
	}
	if renderErr != nil {
		return result, renderErr
	}
	result.TotalDuration = time.Since(start)
	result.AverageFrame = bench.Summary().Average

	if opts.Benchmark {
		bench.Report(logger, width, height, r.NumWorkers())
		return result, nil
	}

	if last == nil {
		return result, errors.New("no frames rendered")
	}
	path := capture.ScreenshotPath(opts.Output, name, "render", opts.Format, time.Now())
	if err := capture.SaveScreenshot(last, path); err != nil {
		return result, err
	}
	result.ImagePath = path
	return result, nil
}

func printHelp(fs *flag.FlagSet) {
	fmt.Println("Interactive Raytracer (headless)")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListBuiltinScenes() {
		fmt.Printf("  %-12s %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<format>")
}

func main() {
	opts, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	if opts.Help {
		printHelp(fs)
		return
	}

	fmt.Println("Starting Interactive Raytracer...")

	result, err := run(context.Background(), opts, core.NewDefaultLogger())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rendered %d frames in %v (%.1f samples/pixel)\n", result.Frames, result.TotalDuration, result.FinalSamples)
	if result.RecordingDir != "" {
		fmt.Printf("Recording saved in %s\n", result.RecordingDir)
	}
	if result.ImagePath != "" {
		fmt.Printf("Render saved as %s\n", result.ImagePath)
	}
}
