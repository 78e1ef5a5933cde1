package geometry

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// CullMode selects which side of a triangle can be hit
type CullMode int

const (
	CullBackFace  CullMode = iota // only rays travelling against the normal hit
	CullFrontFace                 // only rays travelling along the normal hit
	CullNone                      // both sides hit
)

var cullModeNames = [...]string{"back", "front", "none"}

func (c CullMode) String() string {
	if c < 0 || int(c) >= len(cullModeNames) {
		return fmt.Sprintf("CullMode(%d)", int(c))
	}
	return cullModeNames[c]
}

// MarshalText encodes the mode by name
func (c CullMode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a mode name
func (c *CullMode) UnmarshalText(text []byte) error {
	for i, name := range cullModeNames {
		if strings.EqualFold(name, string(text)) {
			*c = CullMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cull mode %q", string(text))
}

// accepts applies the cull rule to d = dot(normal, ray direction)
func (c CullMode) accepts(d float64) bool {
	switch c {
	case CullBackFace:
		return d < 0
	case CullFrontFace:
		return d > 0
	default:
		return math.Abs(d) >= parallelEpsilon
	}
}

// Triangle is a single triangle. Meshes hand out transient copies of these
// built from their transformed vertex buffer.
type Triangle struct {
	V0, V1, V2    core.Vec3
	Normal        core.Vec3 // Unit face normal
	MaterialIndex int
	Cull          CullMode
	Dynamic       bool
}

// NewTriangle creates a triangle whose normal follows the V0, V1, V2 winding
func NewTriangle(v0, v1, v2 core.Vec3, materialIndex int, cull CullMode) Triangle {
	return Triangle{
		V0:            v0,
		V1:            v1,
		V2:            v2,
		Normal:        FaceNormal(v0, v1, v2),
		MaterialIndex: materialIndex,
		Cull:          cull,
	}
}

// FaceNormal returns the unit normal of a counter-clockwise wound triangle
func FaceNormal(v0, v1, v2 core.Vec3) core.Vec3 {
	return v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
}

func (t *Triangle) intersect(ray core.Ray) (float64, bool) {
	d := t.Normal.Dot(ray.Direction)
	if !t.Cull.accepts(d) {
		return 0, false
	}

	dist := t.V0.Subtract(ray.Origin).Dot(t.Normal) / d
	if !ray.InRange(dist) {
		return 0, false
	}

	// Inside when the point lies on the same side of all three edges
	p := ray.At(dist)
	e0 := t.V1.Subtract(t.V0).Cross(p.Subtract(t.V0)).Dot(t.Normal)
	e1 := t.V2.Subtract(t.V1).Cross(p.Subtract(t.V1)).Dot(t.Normal)
	e2 := t.V0.Subtract(t.V2).Cross(p.Subtract(t.V2)).Dot(t.Normal)
	if (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0) {
		return dist, true
	}
	return 0, false
}

// Hit tests if a ray intersects with the triangle closer than rec.T
func (t *Triangle) Hit(ray core.Ray, rec *core.HitRecord) bool {
	dist, ok := t.intersect(ray)
	if !ok || dist >= rec.T {
		return false
	}

	rec.Record(ray, dist, t.Normal, t.MaterialIndex, t.Dynamic)
	return true
}

// Occludes reports whether the triangle blocks the ray interval
func (t *Triangle) Occludes(ray core.Ray) bool {
	_, ok := t.intersect(ray)
	return ok
}
