package lights

import (
	"math"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// minDistanceSquared keeps radiance finite at the light position
const minDistanceSquared = 1e-8

// PointLight emits equally in all directions with inverse-square falloff
type PointLight struct {
	Position  core.Vec3
	Intensity float64
	Color     core.Vec3
}

// NewPointLight creates a new point light
func NewPointLight(position core.Vec3, intensity float64, color core.Vec3) *PointLight {
	return &PointLight{
		Position:  position,
		Intensity: intensity,
		Color:     color,
	}
}

// Type returns the light type
func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// DirectionTo returns the unnormalized vector from point to the light
func (pl *PointLight) DirectionTo(point core.Vec3) core.Vec3 {
	return pl.Position.Subtract(point)
}

// Radiance returns color * intensity / distance² at point
func (pl *PointLight) Radiance(point core.Vec3) core.Vec3 {
	d2 := math.Max(pl.DirectionTo(point).LengthSquared(), minDistanceSquared)
	return pl.Color.Multiply(pl.Intensity / d2)
}

// Sample implements the Light interface
func (pl *PointLight) Sample(point core.Vec3) LightSample {
	toLight := pl.DirectionTo(point)
	distance := toLight.Length()
	return LightSample{
		Direction: toLight.Normalize(),
		Distance:  distance,
		Radiance:  pl.Radiance(point),
	}
}
