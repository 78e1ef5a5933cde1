package renderer

import (
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Benchmark collects the durations of a fixed number of frames
type Benchmark struct {
	target    int
	durations []time.Duration
}

// BenchmarkSummary is the outcome of a finished benchmark
type BenchmarkSummary struct {
	Frames  int
	Average time.Duration
	Fastest time.Duration
	Slowest time.Duration
	FPS     float64
}

// NewBenchmark measures the next frames frames
func NewBenchmark(frames int) *Benchmark {
	return &Benchmark{target: max(frames, 1)}
}

// Add records one frame duration and reports whether the benchmark is complete.
// Frames past the target are ignored.
func (b *Benchmark) Add(d time.Duration) bool {
	if !b.Done() {
		b.durations = append(b.durations, d)
	}
	return b.Done()
}

// Done reports whether every frame has been measured
func (b *Benchmark) Done() bool {
	return len(b.durations) >= b.target
}

// Summary returns the statistics of the frames measured so far
func (b *Benchmark) Summary() BenchmarkSummary {
	summary := BenchmarkSummary{Frames: len(b.durations)}
	if summary.Frames == 0 {
		return summary
	}

	var total time.Duration
	summary.Fastest = b.durations[0]
	for _, d := range b.durations {
		total += d
		summary.Fastest = min(summary.Fastest, d)
		summary.Slowest = max(summary.Slowest, d)
	}
	summary.Average = total / time.Duration(summary.Frames)
	if summary.Average > 0 {
		summary.FPS = float64(time.Second) / float64(summary.Average)
	}
	return summary
}

// Report logs the summary along with the machine it was measured on
func (b *Benchmark) Report(logger core.Logger, width, height, workers int) BenchmarkSummary {
	summary := b.Summary()

	model := "unknown CPU"
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		model = strings.TrimSpace(infos[0].ModelName)
	}
	cores, _ := cpu.Counts(true)

	logger.Printf("Benchmark: %d frames at %dx%d\n", summary.Frames, width, height)
	logger.Printf("Average frame time: %v (%.1f FPS), fastest %v, slowest %v\n",
		summary.Average, summary.FPS, summary.Fastest, summary.Slowest)
	logger.Printf("CPU: %s (%d logical cores, %d workers)\n", model, cores, workers)
	return summary
}
