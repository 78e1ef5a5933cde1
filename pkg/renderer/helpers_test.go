package renderer

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/lights"
	"github.com/df07/go-interactive-raytracer/pkg/material"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// recordingLogger collects log lines for assertions
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.lines) == 0 {
		return ""
	}
	return l.lines[len(l.lines)-1]
}

func referenceScene(t *testing.T) *scene.Scene {
	t.Helper()
	desc, err := scene.Builtin("reference")
	if err != nil {
		t.Fatal(err)
	}
	s, err := scene.Build(desc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

// mirrorScene looks down +z at a red plane of roughness 0.25, with a green
// rough plane behind the camera and a light at the eye
func mirrorScene() *scene.Scene {
	s := scene.New("mirror", geometry.NewCamera(core.NewVec3(0, 0, 0), 0, 0))
	red := s.AddMaterial(material.NewSolidColor(core.NewVec3(1, 0, 0)).WithRoughness(0.25))
	green := s.AddMaterial(material.NewSolidColor(core.NewVec3(0, 1, 0)))
	s.AddPlane(geometry.NewPlane(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), red))
	s.AddPlane(geometry.NewPlane(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), green))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 0), 10, core.White))
	return s
}

func newTestTileRenderer(s *scene.Scene, settings core.RenderSettings, width, height int) *TileRenderer {
	return NewTileRenderer(s, settings, NewAccumulator(width, height), NewFrameBuffer(width, height))
}

func newTestSampler() core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(1)))
}

func newTestRenderer(t *testing.T, width, height int, settings core.RenderSettings, logger core.Logger) *Renderer {
	t.Helper()
	r := NewRenderer(Config{Width: width, Height: height, TileSize: 4, NumWorkers: 2}, settings, logger)
	t.Cleanup(r.Close)
	return r
}
