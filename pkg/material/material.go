package material

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Kind tags which shading model a Material uses
type Kind int

const (
	KindSolidColor Kind = iota
	KindLambert
	KindLambertPhong
	KindCookTorrance
)

var kindNames = [...]string{"solidColor", "lambert", "lambertPhong", "cookTorrance"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a kind name case-insensitively
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown material kind %q", name)
}

// dielectricF0 is the base reflectance used for non-metals
var dielectricF0 = core.NewVec3(0.04, 0.04, 0.04)

// Material is a closed set of shading models selected by Kind.
//
// Roughness serves two purposes: it shapes the Cook-Torrance lobe and it is
// the share of the remaining color budget a surface keeps for itself when
// reflections are on. A roughness of 1 never reflects; 0 is a perfect mirror.
type Material struct {
	Kind      Kind
	Color     core.Vec3 // solid color, diffuse albedo or metal albedo
	Roughness float64

	Kd        float64 // diffuse coefficient (Lambert, LambertPhong)
	Ks        float64 // specular coefficient (LambertPhong)
	Shininess float64 // Phong exponent
	Metalness float64 // 0 is dielectric, anything else is metal (CookTorrance)
}

// NewSolidColor returns an unlit flat color
func NewSolidColor(color core.Vec3) Material {
	return Material{Kind: KindSolidColor, Color: color, Roughness: 1}
}

// NewLambert returns a perfectly diffuse material
func NewLambert(color core.Vec3, kd float64) Material {
	return Material{Kind: KindLambert, Color: color, Kd: kd, Roughness: 1}
}

// NewLambertPhong returns a diffuse material with a Phong highlight
func NewLambertPhong(color core.Vec3, kd, ks, shininess float64) Material {
	return Material{Kind: KindLambertPhong, Color: color, Kd: kd, Ks: ks, Shininess: shininess, Roughness: 1}
}

// NewCookTorrance returns a microfacet material
func NewCookTorrance(albedo core.Vec3, metalness, roughness float64) Material {
	return Material{Kind: KindCookTorrance, Color: albedo, Metalness: metalness, Roughness: roughness}
}

// WithRoughness returns a copy with a different roughness
func (m Material) WithRoughness(roughness float64) Material {
	m.Roughness = roughness
	return m
}

// Shade evaluates the material response at hit for light arriving from
// lightDir (unit, surface towards light) seen along viewDir (unit, eye
// towards surface). Degenerate configurations shade black.
func (m Material) Shade(hit core.HitRecord, lightDir, viewDir core.Vec3) core.Vec3 {
	var color core.Vec3
	switch m.Kind {
	case KindSolidColor:
		color = m.Color
	case KindLambert:
		color = Lambert(m.Kd, m.Color)
	case KindLambertPhong:
		toViewer := viewDir.Negate()
		color = Lambert(m.Kd, m.Color).Add(Phong(m.Ks, m.Shininess, lightDir, toViewer, hit.Normal))
	case KindCookTorrance:
		color = m.shadeCookTorrance(hit.Normal, lightDir, viewDir.Negate())
	default:
		panic(fmt.Sprintf("material: unhandled kind %v", m.Kind))
	}

	if !color.IsFinite() {
		return core.Black
	}
	return color
}

func (m Material) shadeCookTorrance(n, l, v core.Vec3) core.Vec3 {
	h := v.Add(l).Normalize()

	f0 := m.Color
	if m.Metalness == 0 {
		f0 = dielectricF0
	}
	f := FresnelSchlick(h, v, f0)
	d := NormalDistributionGGX(n, h, m.Roughness)
	g := GeometrySmith(n, v, l, m.Roughness)

	var specular core.Vec3
	denom := 4 * n.Dot(v) * n.Dot(l)
	if denom > 1e-8 && !math.IsNaN(denom) {
		specular = f.Multiply(d * g / denom)
	}

	kd := core.Black
	if m.Metalness == 0 {
		kd = core.White.Subtract(f)
	}
	return specular.Add(LambertColor(kd, m.Color))
}
