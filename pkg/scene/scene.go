package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/lights"
	"github.com/df07/go-interactive-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering.
// Everything is read-only during a frame; only Update mutates mesh transforms.
type Scene struct {
	Name      string
	Camera    *geometry.Camera
	Spheres   []*geometry.Sphere
	Planes    []*geometry.Plane
	Meshes    []*geometry.TriangleMesh
	Lights    []lights.Light
	Materials []material.Material
	Settings  core.RenderSettings // initial renderer settings

	animations []meshAnimation
	elapsed    float64
}

// New creates an empty scene viewed through camera
func New(name string, camera *geometry.Camera) *Scene {
	return &Scene{
		Name:     name,
		Camera:   camera,
		Settings: core.DefaultRenderSettings(),
	}
}

// AddMaterial appends a material and returns its index
func (s *Scene) AddMaterial(m material.Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// Material returns the material at index. An out of range index is a
// construction bug and panics.
func (s *Scene) Material(index int) material.Material {
	if index < 0 || index >= len(s.Materials) {
		panic(fmt.Sprintf("scene: material index %d out of range (%d materials)", index, len(s.Materials)))
	}
	return s.Materials[index]
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(sphere *geometry.Sphere) *geometry.Sphere {
	s.Spheres = append(s.Spheres, sphere)
	return sphere
}

// AddPlane adds a plane to the scene
func (s *Scene) AddPlane(plane *geometry.Plane) *geometry.Plane {
	s.Planes = append(s.Planes, plane)
	return plane
}

// AddTriangleMesh adds a mesh to the scene
func (s *Scene) AddTriangleMesh(mesh *geometry.TriangleMesh) *geometry.TriangleMesh {
	s.Meshes = append(s.Meshes, mesh)
	return mesh
}

// AddLight adds a light to the scene
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
}

// ClosestHit returns the nearest intersection along ray. Spheres, planes and
// meshes are visited in that order, all sharing one record.
func (s *Scene) ClosestHit(ray core.Ray) core.HitRecord {
	rec := core.NewHitRecord()
	for _, sphere := range s.Spheres {
		sphere.Hit(ray, &rec)
	}
	for _, plane := range s.Planes {
		plane.Hit(ray, &rec)
	}
	for _, mesh := range s.Meshes {
		mesh.Hit(ray, &rec)
	}
	return rec
}

// AnyHit reports whether anything blocks the ray interval, stopping at the first blocker
func (s *Scene) AnyHit(ray core.Ray) bool {
	for _, sphere := range s.Spheres {
		if sphere.Occludes(ray) {
			return true
		}
	}
	for _, plane := range s.Planes {
		if plane.Occludes(ray) {
			return true
		}
	}
	for _, mesh := range s.Meshes {
		if mesh.Occludes(ray) {
			return true
		}
	}
	return false
}

// Update advances scene animations by elapsed seconds.
// It must not run concurrently with a frame.
func (s *Scene) Update(elapsed float64) {
	s.elapsed += elapsed
	for _, a := range s.animations {
		a.apply(s.elapsed)
	}
}

// Elapsed returns the total animated time in seconds
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// PrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) PrimitiveCount() int {
	count := len(s.Spheres) + len(s.Planes)
	for _, mesh := range s.Meshes {
		count += mesh.TriangleCount()
	}
	return count
}

// AnimationKind selects how a mesh rotates over time
type AnimationKind string

const (
	// AnimationOscillate swings yaw through a full turn and back: (cos(t·speed)+1)/2 · 2π
	AnimationOscillate AnimationKind = "oscillate"
	// AnimationSpin rotates at a constant rate: t·speed
	AnimationSpin AnimationKind = "spin"
)

type meshAnimation struct {
	mesh  *geometry.TriangleMesh
	kind  AnimationKind
	speed float64 // radians per second
}

func (a meshAnimation) apply(total float64) {
	var yaw float64
	switch a.kind {
	case AnimationSpin:
		yaw = math.Mod(total*a.speed, 2*math.Pi)
	default:
		yaw = (math.Cos(total*a.speed) + 1) / 2 * 2 * math.Pi
	}
	a.mesh.SetRotationY(yaw)
}

// Animate attaches a Y rotation animation to mesh and marks it dynamic
func (s *Scene) Animate(mesh *geometry.TriangleMesh, kind AnimationKind, speed float64) {
	mesh.Dynamic = true
	a := meshAnimation{mesh: mesh, kind: kind, speed: speed}
	s.animations = append(s.animations, a)
	a.apply(s.elapsed)
}
