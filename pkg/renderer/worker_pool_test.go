package renderer

import (
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

func TestWorkerPool(t *testing.T) {
	s := referenceScene(t)
	tiles := NewTileGrid(8, 8, 4)
	tr := newTestTileRenderer(s, core.DefaultRenderSettings(), 8, 8)

	pool := NewWorkerPool(2, len(tiles))
	if pool.GetNumWorkers() != 2 {
		t.Errorf("GetNumWorkers = %d, want 2", pool.GetNumWorkers())
	}
	pool.Start()

	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, Renderer: tr, TaskID: i})
	}

	seen := make(map[int]bool)
	pixels := 0
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("result queue closed early")
		}
		if seen[result.TaskID] {
			t.Errorf("task %d reported twice", result.TaskID)
		}
		seen[result.TaskID] = true
		pixels += result.Stats.TotalPixels
	}
	if pixels != 64 {
		t.Errorf("rendered %d pixels, want 64", pixels)
	}

	pool.Stop()
	pool.Stop()
	if _, ok := pool.GetResult(); ok {
		t.Error("result queue should be closed after Stop")
	}
}

func TestDefaultWorkerCount(t *testing.T) {
	if n := DefaultWorkerCount(); n < 1 {
		t.Errorf("DefaultWorkerCount = %d", n)
	}
	if pool := NewWorkerPool(0, 1); pool.GetNumWorkers() < 1 {
		t.Errorf("auto-sized pool has %d workers", pool.GetNumWorkers())
	}
}
