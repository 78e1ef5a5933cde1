package geometry

import "github.com/df07/go-interactive-raytracer/pkg/core"

// parallelEpsilon rejects rays that run (nearly) parallel to a surface
const parallelEpsilon = 1e-8

// Primitive is a surface the scene can intersect.
//
// Hit updates rec only when it finds a hit strictly closer than rec.T, so one
// record can be threaded through many primitives to find the nearest surface.
// Occludes answers whether anything lies within the ray interval, without
// needing a record, and may stop at the first accepted hit.
type Primitive interface {
	Hit(ray core.Ray, rec *core.HitRecord) bool
	Occludes(ray core.Ray) bool
}

// TestHit runs either form of the hit test on p.
// With ignoreRecord set it performs an occlusion query and leaves rec untouched.
func TestHit(p Primitive, ray core.Ray, rec *core.HitRecord, ignoreRecord bool) bool {
	if ignoreRecord || rec == nil {
		return p.Occludes(ray)
	}
	return p.Hit(ray, rec)
}
