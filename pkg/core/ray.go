package core

import "math"

// RayEpsilon is the default minimum hit distance and the offset applied to
// secondary ray origins to avoid self-intersection
const RayEpsilon = 0.001

// Ray represents a ray with an origin, a unit direction and a valid [TMin, TMax] interval
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a ray with the default interval [RayEpsilon, +Inf)
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: RayEpsilon, TMax: math.Inf(1)}
}

// NewBoundedRay creates a ray that only reports hits closer than tMax
func NewBoundedRay(origin, direction Vec3, tMax float64) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: RayEpsilon, TMax: tMax}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// InRange reports whether t lies within the ray's valid interval
func (r Ray) InRange(t float64) bool {
	return t >= r.TMin && t <= r.TMax
}
