package renderer

import (
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/lights"
	"github.com/df07/go-interactive-raytracer/pkg/material"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

func TestRenderReferenceScene(t *testing.T) {
	s := referenceScene(t)
	r := newTestRenderer(t, 32, 24, s.Settings, nil)

	fb, stats := r.Render(s)
	if fb.Width != 32 || fb.Height != 24 {
		t.Fatalf("frame is %dx%d", fb.Width, fb.Height)
	}
	if stats.TotalPixels != 32*24 || stats.Frame != 1 || !stats.Reset {
		t.Errorf("unexpected stats %+v", stats)
	}

	// The camera looks straight at the red ball, lit from above
	red, green, blue := core.UnpackRGB(fb.At(16, 12))
	if red == 0 || red <= 2*green || red <= 2*blue {
		t.Errorf("center pixel (%d,%d,%d) should be lit red", red, green, blue)
	}

	// The nearest ground is gray and lit
	red, green, blue = core.UnpackRGB(fb.At(0, 23))
	if red == 0 || red != green || green != blue {
		t.Errorf("ground pixel (%d,%d,%d) should be lit gray", red, green, blue)
	}

	// The displayed pixel is the accumulated average, clamped and packed
	if got, want := core.PackRGB(r.PixelColor(16, 12).MaxToOne()), fb.At(16, 12); got != want {
		t.Errorf("PixelColor packs to %06x, frame holds %06x", got, want)
	}
}

func TestAccumulationResetsOnCameraMove(t *testing.T) {
	s := referenceScene(t)
	r := newTestRenderer(t, 8, 6, s.Settings, nil)

	for i := 1; i <= 3; i++ {
		_, stats := r.Render(s)
		if stats.Reset != (i == 1) {
			t.Errorf("frame %d: Reset = %v", i, stats.Reset)
		}
	}
	if got := r.SampleCount(4, 3); got != 3 {
		t.Fatalf("SampleCount after 3 frames = %d, want 3", got)
	}

	s.Camera.Update(geometry.CameraInput{Forward: 1}, 0.1)
	_, stats := r.Render(s)
	if !stats.Reset || r.SampleCount(4, 3) != 1 {
		t.Errorf("camera move should reset accumulation, count %d", r.SampleCount(4, 3))
	}

	// An idle update leaves the camera where it is
	s.Camera.Update(geometry.CameraInput{}, 0.1)
	r.Render(s)
	if got := r.SampleCount(4, 3); got != 2 {
		t.Errorf("idle camera: SampleCount = %d, want 2", got)
	}

	s.Camera.IncrementFieldOfView(5)
	r.Render(s)
	if got := r.SampleCount(4, 3); got != 1 {
		t.Errorf("field of view change: SampleCount = %d, want 1", got)
	}
}

func TestAccumulationResetsOnSettingsChange(t *testing.T) {
	s := referenceScene(t)
	logger := &recordingLogger{}
	r := newTestRenderer(t, 8, 6, s.Settings, logger)

	toggles := []struct {
		name   string
		toggle func()
		log    string
	}{
		{"lighting", func() { r.CycleLightingMode() }, "Lighting mode: observedArea\n"},
		{"shadows", func() { r.ToggleShadows() }, "Shadows: false\n"},
		{"reflections", func() { r.ToggleReflections() }, "Reflections: false\n"},
		{"bounces", func() { r.IncrementBounces(2) }, "Reflection bounces: 3\n"},
		{"glossy", func() { r.ToggleGlossy() }, "Glossy reflections: true\n"},
		{"invalidate", r.Invalidate, ""},
	}

	for _, tt := range toggles {
		t.Run(tt.name, func(t *testing.T) {
			r.Render(s)
			r.Render(s)
			if got := r.SampleCount(0, 0); got < 2 {
				t.Fatalf("expected accumulated samples before toggle, got %d", got)
			}

			tt.toggle()
			if tt.log != "" && logger.last() != tt.log {
				t.Errorf("status line %q, want %q", logger.last(), tt.log)
			}

			_, stats := r.Render(s)
			if !stats.Reset || r.SampleCount(0, 0) != 1 {
				t.Errorf("toggle should reset accumulation, count %d", r.SampleCount(0, 0))
			}
		})
	}
}

func TestSetSettings(t *testing.T) {
	s := referenceScene(t)
	r := newTestRenderer(t, 4, 4, core.DefaultRenderSettings(), nil)
	r.Render(s)

	// Unchanged settings keep accumulating
	r.SetSettings(r.Settings())
	if _, stats := r.Render(s); stats.Reset {
		t.Error("identical settings should not reset accumulation")
	}

	changed := r.Settings()
	changed.Shadows = false
	changed.MaxBounces = 0
	r.SetSettings(changed)
	if _, stats := r.Render(s); !stats.Reset {
		t.Error("changed settings should reset accumulation")
	}
	if got := r.Settings().MaxBounces; got != 1 {
		t.Errorf("MaxBounces = %d, want floor of 1", got)
	}
}

func TestIncrementBouncesFloor(t *testing.T) {
	r := newTestRenderer(t, 4, 4, core.DefaultRenderSettings(), nil)
	if got := r.IncrementBounces(-10); got != 1 {
		t.Errorf("IncrementBounces(-10) = %d, want 1", got)
	}
	if got := r.IncrementBounces(3); got != 4 {
		t.Errorf("IncrementBounces(3) = %d, want 4", got)
	}
}

func TestCycleLightingModeWraps(t *testing.T) {
	r := newTestRenderer(t, 4, 4, core.DefaultRenderSettings(), nil)
	expected := []core.LightingMode{
		core.LightingObservedArea,
		core.LightingRadiance,
		core.LightingBRDF,
		core.LightingCombined,
	}
	for _, want := range expected {
		if got := r.CycleLightingMode(); got != want {
			t.Errorf("CycleLightingMode = %v, want %v", got, want)
		}
	}
}

func TestAccumulationDisabled(t *testing.T) {
	s := referenceScene(t)
	settings := s.Settings
	settings.Accumulate = false
	r := newTestRenderer(t, 4, 4, settings, nil)

	for i := 0; i < 3; i++ {
		_, stats := r.Render(s)
		if stats.AverageSamples != 1 {
			t.Errorf("frame %d: AverageSamples = %v, want 1", i+1, stats.AverageSamples)
		}
	}
	if got := r.SampleCount(2, 2); got != 1 {
		t.Errorf("SampleCount = %d, want 1", got)
	}
}

func TestDynamicPixelsRestart(t *testing.T) {
	s := scene.New("dynamic", geometry.NewCamera(core.NewVec3(0, 0, 0), 0, 0))
	mat := s.AddMaterial(material.NewLambert(core.White, 1))

	// A moving quad covers the left half of the view, a static wall the rest
	quad, err := geometry.NewTriangleMesh([]core.Vec3{
		core.NewVec3(-20, -20, 5),
		core.NewVec3(-20, 20, 5),
		core.NewVec3(0, 20, 5),
		core.NewVec3(0, -20, 5),
	}, []int{0, 1, 2, 0, 2, 3}, mat, geometry.CullNone)
	if err != nil {
		t.Fatal(err)
	}
	quad.Dynamic = true
	s.AddTriangleMesh(quad)
	s.AddPlane(geometry.NewPlane(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -1), mat))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 0), 10, core.White))

	r := newTestRenderer(t, 8, 8, core.DefaultRenderSettings(), nil)
	r.Render(s)
	_, stats := r.Render(s)

	if stats.Reset {
		t.Error("second frame should not reset everything")
	}
	if stats.DynamicPixels != 32 {
		t.Errorf("DynamicPixels = %d, want 32", stats.DynamicPixels)
	}
	for y := 0; y < 8; y++ {
		if got := r.SampleCount(1, y); got != 1 {
			t.Errorf("dynamic pixel (1,%d) has %d samples, want 1", y, got)
		}
		if got := r.SampleCount(6, y); got != 2 {
			t.Errorf("static pixel (6,%d) has %d samples, want 2", y, got)
		}
	}
	if stats.MinSamples != 1 || stats.MaxSamplesUsed != 2 {
		t.Errorf("unexpected sample range %+v", stats)
	}
}
