package geometry

import (
	"math"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center        core.Vec3
	Radius        float64
	MaterialIndex int
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, materialIndex int) *Sphere {
	return &Sphere{
		Center:        center,
		Radius:        radius,
		MaterialIndex: materialIndex,
	}
}

// intersect returns the nearest root inside the ray interval.
// The ray direction is assumed to be unit length.
func (s *Sphere) intersect(ray core.Ray) (float64, bool) {
	oc := ray.Origin.Subtract(s.Center)
	b := ray.Direction.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - c
	if !(discriminant > 0) {
		return 0, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first, then the farther one (ray starts inside)
	t := -b - sqrtD
	if !ray.InRange(t) {
		t = -b + sqrtD
		if !ray.InRange(t) {
			return 0, false
		}
	}
	return t, true
}

// Hit tests if a ray intersects with the sphere closer than rec.T
func (s *Sphere) Hit(ray core.Ray, rec *core.HitRecord) bool {
	t, ok := s.intersect(ray)
	if !ok || t >= rec.T {
		return false
	}

	point := ray.At(t)
	normal := point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	rec.Record(ray, t, normal, s.MaterialIndex, false)
	return true
}

// Occludes reports whether the sphere blocks the ray interval
func (s *Sphere) Occludes(ray core.Ray) bool {
	_, ok := s.intersect(ray)
	return ok
}
