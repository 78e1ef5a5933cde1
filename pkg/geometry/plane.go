package geometry

import (
	"math"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point         core.Vec3 // A point on the plane
	Normal        core.Vec3 // Unit normal
	MaterialIndex int
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, materialIndex int) *Plane {
	return &Plane{
		Point:         point,
		Normal:        normal.Normalize(),
		MaterialIndex: materialIndex,
	}
}

func (p *Plane) intersect(ray core.Ray) (float64, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Parallel rays never hit, even when they lie in the plane
	if math.Abs(denominator) < parallelEpsilon {
		return 0, false
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if !ray.InRange(t) {
		return 0, false
	}
	return t, true
}

// Hit tests if a ray intersects with the plane closer than rec.T
func (p *Plane) Hit(ray core.Ray, rec *core.HitRecord) bool {
	t, ok := p.intersect(ray)
	if !ok || t >= rec.T {
		return false
	}

	rec.Record(ray, t, p.Normal, p.MaterialIndex, false)
	return true
}

// Occludes reports whether the plane blocks the ray interval
func (p *Plane) Occludes(ray core.Ray) bool {
	_, ok := p.intersect(ray)
	return ok
}
