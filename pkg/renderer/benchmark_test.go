package renderer

import (
	"strings"
	"testing"
	"time"
)

func TestBenchmark_Summary(t *testing.T) {
	b := NewBenchmark(4)

	durations := []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 20 * time.Millisecond, 20 * time.Millisecond}
	for i, d := range durations {
		done := b.Add(d)
		if done != (i == len(durations)-1) {
			t.Errorf("Add %d: expected done=%v, got %v", i, i == len(durations)-1, done)
		}
	}
	// Extra frames are ignored
	b.Add(time.Second)

	summary := b.Summary()
	if summary.Frames != 4 {
		t.Errorf("Expected 4 frames, got %d", summary.Frames)
	}
	if summary.Average != 20*time.Millisecond {
		t.Errorf("Expected 20ms average, got %v", summary.Average)
	}
	if summary.Fastest != 10*time.Millisecond || summary.Slowest != 30*time.Millisecond {
		t.Errorf("Expected 10ms..30ms, got %v..%v", summary.Fastest, summary.Slowest)
	}
	if summary.FPS != 50 {
		t.Errorf("Expected 50 FPS, got %v", summary.FPS)
	}
}

func TestBenchmark_Empty(t *testing.T) {
	b := NewBenchmark(0)
	if b.Done() {
		t.Error("A benchmark measures at least one frame")
	}
	if summary := b.Summary(); summary != (BenchmarkSummary{}) {
		t.Errorf("Expected an empty summary, got %+v", summary)
	}
}

func TestBenchmark_Report(t *testing.T) {
	b := NewBenchmark(1)
	b.Add(4 * time.Millisecond)

	logger := &recordingLogger{}
	summary := b.Report(logger, 64, 48, 2)
	if summary.FPS != 250 {
		t.Errorf("Expected 250 FPS, got %v", summary.FPS)
	}

	if len(logger.lines) != 3 {
		t.Fatalf("Expected 3 lines, got %v", logger.lines)
	}
	if logger.lines[0] != "Benchmark: 1 frames at 64x48\n" {
		t.Errorf("Unexpected header %q", logger.lines[0])
	}
	if !strings.HasPrefix(logger.lines[2], "CPU: ") || !strings.Contains(logger.lines[2], "2 workers") {
		t.Errorf("Unexpected CPU line %q", logger.lines[2])
	}
}
