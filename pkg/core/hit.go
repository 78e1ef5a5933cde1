package core

import "math"

// HitRecord accumulates the closest intersection found along a ray.
// T only ever decreases while a record is shared across primitives.
type HitRecord struct {
	T             float64
	Point         Vec3
	Normal        Vec3 // unit, outward-facing
	MaterialIndex int
	DidHit        bool
	IsDynamic     bool // hit object moves between frames
}

// NewHitRecord returns an empty record with T at +Inf
func NewHitRecord() HitRecord {
	return HitRecord{T: math.Inf(1)}
}

// Accepts reports whether t is a valid and strictly closer hit for the ray
func (h *HitRecord) Accepts(ray Ray, t float64) bool {
	return ray.InRange(t) && t < h.T
}

// Record stores a hit at parameter t
func (h *HitRecord) Record(ray Ray, t float64, normal Vec3, materialIndex int, dynamic bool) {
	h.T = t
	h.Point = ray.At(t)
	h.Normal = normal
	h.MaterialIndex = materialIndex
	h.DidHit = true
	h.IsDynamic = dynamic
}
