package lights

import "github.com/df07/go-interactive-raytracer/pkg/core"

type LightType string

const (
	LightTypePoint LightType = "point"
)

// Light interface for sources the renderer queries for direct lighting
type Light interface {
	Type() LightType

	// Sample returns the direction, distance and incident radiance of the
	// light as seen from point. Direction points FROM point TO the light.
	Sample(point core.Vec3) LightSample
}

// LightSample describes one light as seen from a shading point
type LightSample struct {
	Direction core.Vec3 // unit, shading point to light
	Distance  float64   // distance to the light, bounds the shadow ray
	Radiance  core.Vec3 // incident radiance at the shading point
}
