package renderer

import (
	"image"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/material"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// budgetEpsilon ends the bounce loop once reflections have nothing left to add
const budgetEpsilon = 1.2e-7

// TileRenderer traces the pixels of one frame. Everything it reads is fixed
// for the frame, so one instance is shared by all workers.
type TileRenderer struct {
	scene    *scene.Scene
	settings core.RenderSettings
	origin   core.Vec3
	toWorld  mgl64.Mat4
	fovTan   float64
	aspect   float64
	width    int
	height   int
	accum    *Accumulator
	frame    *FrameBuffer
}

// NewTileRenderer captures the camera and settings for a frame of s
func NewTileRenderer(s *scene.Scene, settings core.RenderSettings, accum *Accumulator, frame *FrameBuffer) *TileRenderer {
	return &TileRenderer{
		scene:    s,
		settings: settings,
		origin:   s.Camera.Position,
		toWorld:  s.Camera.CameraToWorld(),
		fovTan:   s.Camera.FieldOfViewTan(),
		aspect:   float64(frame.Width) / float64(frame.Height),
		width:    frame.Width,
		height:   frame.Height,
		accum:    accum,
		frame:    frame,
	}
}

// RenderTileBounds traces every pixel within bounds, folds the colours into
// the accumulator and writes the displayed result to the frame buffer
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, random *rand.Rand) RenderStats {
	sampler := core.NewRandomSampler(random)
	stats := newRenderStats()

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			color, dynamic := tr.tracePixel(x, y, sampler)

			samples := 1
			if tr.settings.Accumulate {
				color, samples = tr.accum.Add(x, y, color, dynamic)
			} else {
				tr.accum.Replace(x, y, color)
			}

			tr.frame.Set(x, y, core.PackRGB(color.MaxToOne()))
			stats.addPixel(samples, dynamic)
		}
	}

	return stats
}

// primaryRay builds the view ray through the centre of pixel x, y
func (tr *TileRenderer) primaryRay(x, y int) core.Ray {
	px := float64(x) + 0.5
	py := float64(y) + 0.5

	local := core.NewVec3(
		(px*2/float64(tr.width)-1)*tr.aspect*tr.fovTan,
		(1-py*2/float64(tr.height))*tr.fovTan,
		1,
	).Normalize()

	direction := core.TransformVector(tr.toWorld, local).Normalize()
	return core.NewRay(tr.origin, direction)
}

// Inspect casts the primary ray through the centre of pixel x, y of a
// width by height view of s and returns it with its closest hit
func Inspect(s *scene.Scene, width, height, x, y int) (core.Ray, core.HitRecord) {
	tr := NewTileRenderer(s, s.Settings, nil, &FrameBuffer{Width: width, Height: height})
	ray := tr.primaryRay(x, y)
	return ray, s.ClosestHit(ray)
}

// tracePixel returns the unclamped colour of pixel x, y and whether any
// bounce touched a moving object
func (tr *TileRenderer) tracePixel(x, y int, sampler core.Sampler) (core.Vec3, bool) {
	return tr.traceRay(tr.primaryRay(x, y), sampler)
}

// traceRay runs the bounce loop. With reflections on, each hit takes the
// share of the remaining budget given by its roughness, so rough surfaces
// end the loop and smooth ones pass most of it to the reflected ray.
func (tr *TileRenderer) traceRay(ray core.Ray, sampler core.Sampler) (core.Vec3, bool) {
	maxBounces := 0
	if tr.settings.Reflections {
		maxBounces = tr.settings.MaxBounces
	}

	var color core.Vec3
	dynamic := false
	budget := 1.0

	for bounce := 0; bounce <= maxBounces; bounce++ {
		hit := tr.scene.ClosestHit(ray)
		if !hit.DidHit {
			break
		}
		dynamic = dynamic || hit.IsDynamic

		mat := tr.scene.Material(hit.MaterialIndex)
		fragment := 1.0
		if tr.settings.Reflections {
			fragment = budget * mat.Roughness
			budget -= fragment
		}

		color = color.Add(tr.directLight(hit, mat, ray.Direction).Multiply(fragment))

		if !tr.settings.Reflections || budget <= budgetEpsilon {
			break
		}
		ray = core.NewRay(hit.Point, tr.reflect(ray.Direction, hit.Normal, mat.Roughness, sampler))
	}

	if !color.IsFinite() {
		return core.Black, dynamic
	}
	return color, dynamic
}

// reflect mirrors direction about normal, jittered by roughness when glossy
// reflections are on. Jitter that would go below the surface is dropped.
func (tr *TileRenderer) reflect(direction, normal core.Vec3, roughness float64, sampler core.Sampler) core.Vec3 {
	mirrored := direction.Reflect(normal)
	if !tr.settings.GlossyReflections || roughness <= 0 {
		return mirrored
	}

	jittered := mirrored.Add(core.SamplePointInUnitSphere(sampler.Get3D()).Multiply(roughness))
	if jittered.Dot(normal) <= 0 || jittered.IsZero() {
		return mirrored
	}
	return jittered.Normalize()
}

// directLight sums the contribution of every unoccluded light at hit
func (tr *TileRenderer) directLight(hit core.HitRecord, mat material.Material, viewDir core.Vec3) core.Vec3 {
	var sum core.Vec3

	for _, light := range tr.scene.Lights {
		sample := light.Sample(hit.Point)
		if tr.settings.Shadows {
			origin := hit.Point.Add(sample.Direction.Multiply(core.RayEpsilon))
			shadowRay := core.NewBoundedRay(origin, sample.Direction, sample.Distance)
			if tr.scene.AnyHit(shadowRay) {
				continue
			}
		}

		cosine := max(sample.Direction.Dot(hit.Normal), 0)

		switch tr.settings.LightingMode {
		case core.LightingObservedArea:
			sum = sum.Add(core.White.Multiply(cosine))
		case core.LightingRadiance:
			sum = sum.Add(sample.Radiance)
		case core.LightingBRDF:
			sum = sum.Add(mat.Shade(hit, sample.Direction, viewDir))
		default:
			brdf := mat.Shade(hit, sample.Direction, viewDir)
			sum = sum.Add(sample.Radiance.MultiplyVec(brdf).Multiply(cosine))
		}
	}

	return sum
}
