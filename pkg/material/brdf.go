package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Lambert returns the diffuse response kd * cd / π
func Lambert(kd float64, cd core.Vec3) core.Vec3 {
	return cd.Multiply(kd / math.Pi)
}

// LambertColor is Lambert with a per-channel reflection coefficient
func LambertColor(kd, cd core.Vec3) core.Vec3 {
	return kd.MultiplyVec(cd).Multiply(1 / math.Pi)
}

// Phong returns the white specular lobe ks * max(r·v, 0)^exp where r is the
// light direction l mirrored about n and v points towards the viewer
func Phong(ks, exp float64, l, v, n core.Vec3) core.Vec3 {
	r := l.Negate().Reflect(n)
	rv := math.Max(r.Dot(v), 0)
	return core.White.Multiply(ks * math.Pow(rv, exp))
}

// FresnelSchlick approximates Fresnel reflectance for half vector h and view direction v
func FresnelSchlick(h, v, f0 core.Vec3) core.Vec3 {
	cosTheta := mgl64.Clamp(h.Dot(v), 0, 1)
	return f0.Add(core.White.Subtract(f0).Multiply(math.Pow(1-cosTheta, 5)))
}

// NormalDistributionGGX is the Trowbridge-Reitz distribution with alpha = roughness^4
func NormalDistributionGGX(n, h core.Vec3, roughness float64) float64 {
	a := math.Pow(roughness, 4)
	nh := n.Dot(h)
	denom := nh*nh*(a-1) + 1
	denom = math.Pi * denom * denom
	if denom < 1e-12 {
		return 0
	}
	return a / denom
}

// GeometrySchlickGGX is the single-direction masking term for direct lighting
func GeometrySchlickGGX(n, v core.Vec3, roughness float64) float64 {
	nv := math.Max(n.Dot(v), 0)
	r2 := roughness * roughness
	k := (r2 + 1) * (r2 + 1) / 8
	denom := nv*(1-k) + k
	if denom <= 0 {
		return 0
	}
	return nv / denom
}

// GeometrySmith combines masking for the view and light directions
func GeometrySmith(n, v, l core.Vec3, roughness float64) float64 {
	return GeometrySchlickGGX(n, v, roughness) * GeometrySchlickGGX(n, l, roughness)
}
