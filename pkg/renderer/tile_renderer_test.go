package renderer

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/lights"
	"github.com/df07/go-interactive-raytracer/pkg/material"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

func assertColor(t *testing.T, got, want core.Vec3, tolerance float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > tolerance || math.Abs(got.Y-want.Y) > tolerance || math.Abs(got.Z-want.Z) > tolerance {
		t.Errorf("color = %v, want %v", got, want)
	}
}

func TestLightingModes(t *testing.T) {
	s := referenceScene(t)

	// Straight down onto the ground at (0,0,-2), in view of the light at (0,5,0)
	ray := core.NewRay(core.NewVec3(0, 0.3, -2), core.NewVec3(0, -1, 0))
	cosine := 5 / math.Sqrt(29)
	radiance := 50.0 / 29
	brdf := 0.8 / math.Pi

	tests := []struct {
		mode     core.LightingMode
		expected float64
	}{
		{core.LightingObservedArea, cosine},
		{core.LightingRadiance, radiance},
		{core.LightingBRDF, brdf},
		{core.LightingCombined, cosine * radiance * brdf},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			settings := core.DefaultRenderSettings()
			settings.LightingMode = tt.mode
			tr := newTestTileRenderer(s, settings, 4, 4)

			color, dynamic := tr.traceRay(ray, newTestSampler())
			if dynamic {
				t.Error("static scene reported a dynamic hit")
			}
			assertColor(t, color, core.NewVec3(tt.expected, tt.expected, tt.expected), 1e-9)
		})
	}
}

func TestShadowRays(t *testing.T) {
	s := referenceScene(t)

	// Ground point directly under the sphere
	ray := core.NewRay(core.NewVec3(0, 0.3, 0), core.NewVec3(0, -1, 0))

	settings := core.DefaultRenderSettings()
	settings.LightingMode = core.LightingObservedArea

	color, _ := newTestTileRenderer(s, settings, 4, 4).traceRay(ray, newTestSampler())
	assertColor(t, color, core.Black, 0)

	settings.Shadows = false
	color, _ = newTestTileRenderer(s, settings, 4, 4).traceRay(ray, newTestSampler())
	assertColor(t, color, core.White, 1e-9)
}

func TestShadowRayStopsAtLight(t *testing.T) {
	// A blocker beyond the light must not shadow the ground
	s := referenceScene(t)
	blocker := s.AddMaterial(material.NewLambert(core.White, 1))
	s.AddPlane(geometry.NewPlane(core.NewVec3(0, 8, 0), core.NewVec3(0, -1, 0), blocker))

	settings := core.DefaultRenderSettings()
	settings.LightingMode = core.LightingObservedArea
	ray := core.NewRay(core.NewVec3(0, 0.3, -2), core.NewVec3(0, -1, 0))

	color, _ := newTestTileRenderer(s, settings, 4, 4).traceRay(ray, newTestSampler())
	if color.X <= 0 {
		t.Errorf("ground should be lit, got %v", color)
	}
}

func TestReflectionBudget(t *testing.T) {
	s := mirrorScene()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	settings := core.DefaultRenderSettings()
	settings.LightingMode = core.LightingBRDF

	tests := []struct {
		name        string
		reflections bool
		bounces     int
		expected    core.Vec3
	}{
		{"reflections off", false, 1, core.NewVec3(1, 0, 0)},
		{"one bounce", true, 1, core.NewVec3(0.25, 0.75, 0)},
		// The green plane is rough, so extra bounces add nothing
		{"many bounces", true, 5, core.NewVec3(0.25, 0.75, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings.Reflections = tt.reflections
			settings.MaxBounces = tt.bounces
			color, _ := newTestTileRenderer(s, settings, 4, 4).traceRay(ray, newTestSampler())
			assertColor(t, color, tt.expected, 1e-9)
		})
	}
}

func TestReflectionBounceLimit(t *testing.T) {
	// Two facing mirrors of roughness 0.5: each bounce takes half the budget
	s := scene.New("mirrors", geometry.NewCamera(core.NewVec3(0, 0, 0), 0, 0))
	half := s.AddMaterial(material.NewSolidColor(core.White).WithRoughness(0.5))
	s.AddPlane(geometry.NewPlane(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), half))
	s.AddPlane(geometry.NewPlane(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), half))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 1, 0), 1, core.White))

	settings := core.DefaultRenderSettings()
	settings.LightingMode = core.LightingBRDF
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	for bounces, expected := range map[int]float64{1: 0.75, 2: 0.875, 3: 0.9375} {
		settings.MaxBounces = bounces
		color, _ := newTestTileRenderer(s, settings, 4, 4).traceRay(ray, newTestSampler())
		if math.Abs(color.X-expected) > 1e-9 {
			t.Errorf("%d bounces: got %v, want %v", bounces, color.X, expected)
		}
	}
}

func TestGlossyReflectionStaysAboveSurface(t *testing.T) {
	settings := core.DefaultRenderSettings()
	settings.GlossyReflections = true
	tr := newTestTileRenderer(mirrorScene(), settings, 4, 4)
	sampler := newTestSampler()

	normal := core.NewVec3(0, 1, 0)
	incoming := core.NewVec3(1, -1, 0).Normalize()
	mirrored := incoming.Reflect(normal)

	varied := false
	for i := 0; i < 100; i++ {
		dir := tr.reflect(incoming, normal, 0.9, sampler)
		if dir.Dot(normal) <= 0 {
			t.Fatalf("reflection %v points below the surface", dir)
		}
		if math.Abs(dir.Length()-1) > 1e-9 {
			t.Fatalf("reflection %v is not unit length", dir)
		}
		if dir.Subtract(mirrored).Length() > 1e-6 {
			varied = true
		}
	}
	if !varied {
		t.Error("glossy reflections never deviated from the mirror direction")
	}

	settings.GlossyReflections = false
	tr = newTestTileRenderer(mirrorScene(), settings, 4, 4)
	if dir := tr.reflect(incoming, normal, 0.9, sampler); dir.Subtract(mirrored).Length() > 1e-12 {
		t.Errorf("mirror reflection = %v, want %v", dir, mirrored)
	}
}

func TestPrimaryRayThroughCenter(t *testing.T) {
	s := scene.New("empty", geometry.NewCamera(core.NewVec3(1, 2, 3), 90, 0))
	tr := newTestTileRenderer(s, core.DefaultRenderSettings(), 2, 2)

	// The four pixel centers of a 2x2 image surround the view direction symmetrically
	var sum core.Vec3
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			ray := tr.primaryRay(x, y)
			if ray.Origin != core.NewVec3(1, 2, 3) {
				t.Errorf("ray origin %v", ray.Origin)
			}
			sum = sum.Add(ray.Direction)
		}
	}
	assertColor(t, sum.Normalize(), core.NewVec3(1, 0, 0), 1e-9)

	// Top-left pixel looks up and to the left of +x, which is +z
	topLeft := tr.primaryRay(0, 0).Direction
	if topLeft.Y <= 0 || topLeft.Z <= 0 {
		t.Errorf("top-left ray %v should point up and towards +z", topLeft)
	}
}

func TestRenderTileBoundsMaxToOne(t *testing.T) {
	s := scene.New("bright", geometry.NewCamera(core.NewVec3(0, 0, 0), 0, 0))
	bright := s.AddMaterial(material.NewSolidColor(core.NewVec3(2, 1, 0.5)))
	s.AddPlane(geometry.NewPlane(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), bright))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 0), 1, core.White))

	settings := core.DefaultRenderSettings()
	settings.LightingMode = core.LightingBRDF
	settings.Reflections = false
	tr := newTestTileRenderer(s, settings, 4, 4)

	stats := tr.RenderTileBounds(image.Rect(0, 0, 4, 4), rand.New(rand.NewSource(1)))
	if stats.TotalPixels != 16 || stats.TotalSamples != 16 {
		t.Errorf("unexpected stats %+v", stats)
	}
	for i, packed := range tr.frame.Pixels {
		r, g, b := core.UnpackRGB(packed)
		if r != 255 || g != 127 || b != 63 {
			t.Errorf("pixel %d = (%d,%d,%d), want (255,127,63)", i, r, g, b)
		}
	}
}

func TestInspect(t *testing.T) {
	s := referenceScene(t)

	// The camera looks straight at the ball centre from sqrt(29) away
	ray, hit := Inspect(s, 1, 1, 0, 0)
	if !hit.DidHit {
		t.Fatal("Center ray should hit the ball")
	}
	if hit.MaterialIndex != 1 {
		t.Errorf("Expected ball material 1, got %d", hit.MaterialIndex)
	}
	if want := math.Sqrt(29) - 0.5; math.Abs(hit.T-want) > 1e-3 {
		t.Errorf("Expected distance %v, got %v", want, hit.T)
	}
	if ray.Origin != core.NewVec3(0, 3, -5) {
		t.Errorf("Expected ray from the camera, got %v", ray.Origin)
	}
	if hit.Normal.Dot(ray.Direction) >= 0 {
		t.Errorf("Normal %v should face the camera along %v", hit.Normal, ray.Direction)
	}

	// The bottom rows see the ground
	_, ground := Inspect(s, 8, 8, 4, 7)
	if !ground.DidHit || ground.MaterialIndex != 0 {
		t.Errorf("Expected ground hit, got %+v", ground)
	}
}

func TestLevelCameraSeesBall(t *testing.T) {
	desc, err := scene.Builtin("reference")
	if err != nil {
		t.Fatal(err)
	}
	desc.Camera.Pitch = 0
	s, err := scene.Build(desc)
	if err != nil {
		t.Fatal(err)
	}

	// The centre ray runs level along +z, parallel to the ground
	ray, hit := Inspect(s, 1, 1, 0, 0)
	assertColor(t, ray.Direction, core.NewVec3(0, 0, 1), 1e-9)
	if hit.DidHit {
		t.Errorf("Level centre ray should miss everything, hit %+v", hit)
	}

	// The ball centre is 2 below and 5 ahead of the eye
	const width, height = 100, 100
	y := int(float64(height) * (1 + 0.4/s.Camera.FieldOfViewTan()) / 2)
	ray, hit = Inspect(s, width, height, width/2, y)
	if !hit.DidHit || hit.MaterialIndex != 1 {
		t.Fatalf("Pixel (%d,%d) should hit the ball, got %+v", width/2, y, hit)
	}
	if hit.Normal.Dot(ray.Direction) >= 0 || hit.Normal.Z >= 0 {
		t.Errorf("Normal %v should face the camera", hit.Normal)
	}
}

// occludedBySphere reports whether the segment from p to light passes through
// the sphere at center with the given radius
func occludedBySphere(p, light, center core.Vec3, radius float64) bool {
	segment := light.Subtract(p)
	s := max(0, min(1, center.Subtract(p).Dot(segment)/segment.LengthSquared()))
	return p.Add(segment.Multiply(s)).Subtract(center).Length() < radius
}

func TestShadowedGroundPixels(t *testing.T) {
	s := referenceScene(t)
	light := core.NewVec3(0, 5, 0)
	ball := core.NewVec3(0, 1, 0)

	settings := core.DefaultRenderSettings()
	settings.LightingMode = core.LightingObservedArea
	settings.Reflections = false
	unshadowed := settings
	unshadowed.Shadows = false

	const size = 32
	tr := newTestTileRenderer(s, settings, size, size)
	open := newTestTileRenderer(s, unshadowed, size, size)

	var shadowed, lit int
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			ray := tr.primaryRay(x, y)
			hit := s.ClosestHit(ray)
			if !hit.DidHit || hit.MaterialIndex != 0 {
				continue
			}

			color, _ := tr.traceRay(ray, newTestSampler())
			if occludedBySphere(hit.Point, light, ball, 0.5) {
				shadowed++
				assertColor(t, color, core.Black, 0)
				if without, _ := open.traceRay(ray, newTestSampler()); without.X <= 0 {
					t.Errorf("Pixel (%d,%d) should be lit without shadow rays, got %v", x, y, without)
				}
			} else {
				lit++
				if color.X <= 0 {
					t.Errorf("Pixel (%d,%d) at %v should be lit, got %v", x, y, hit.Point, color)
				}
			}
		}
	}

	if shadowed == 0 || lit == 0 {
		t.Errorf("Expected both shadowed and lit ground pixels, got %d and %d", shadowed, lit)
	}
}
