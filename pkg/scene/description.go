package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/lights"
	"github.com/df07/go-interactive-raytracer/pkg/loaders"
	"github.com/df07/go-interactive-raytracer/pkg/material"
)

// Vec is a JSON-friendly [x, y, z] triple
type Vec [3]float64

func (v Vec) vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// Description is a declarative scene record. It is what built-in scenes are
// made of and what scene files contain.
type Description struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Width       int                  `json:"width,omitempty"`
	Height      int                  `json:"height,omitempty"`
	Camera      CameraDesc           `json:"camera"`
	Settings    *core.RenderSettings `json:"settings,omitempty"`
	Materials   []MaterialDesc       `json:"materials"`
	Spheres     []SphereDesc         `json:"spheres,omitempty"`
	Planes      []PlaneDesc          `json:"planes,omitempty"`
	Meshes      []MeshDesc           `json:"meshes,omitempty"`
	Lights      []LightDesc          `json:"lights,omitempty"`

	// BaseDir resolves relative mesh paths; Load sets it to the file's directory
	BaseDir string `json:"-"`
}

// CameraDesc places the camera. Angles are in degrees.
type CameraDesc struct {
	Position    Vec     `json:"position"`
	Yaw         float64 `json:"yaw,omitempty"`
	Pitch       float64 `json:"pitch,omitempty"`
	FieldOfView float64 `json:"fieldOfView,omitempty"`
	Smoothing   float64 `json:"smoothing,omitempty"`
}

// MaterialDesc describes a named material. Unset parameters take the
// defaults of the material kind.
type MaterialDesc struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Color     *Vec     `json:"color,omitempty"`
	Roughness *float64 `json:"roughness,omitempty"`
	Kd        *float64 `json:"kd,omitempty"`
	Ks        *float64 `json:"ks,omitempty"`
	Shininess *float64 `json:"shininess,omitempty"`
	Metalness *float64 `json:"metalness,omitempty"`
}

// SphereDesc describes a sphere
type SphereDesc struct {
	Center   Vec     `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// PlaneDesc describes an infinite plane
type PlaneDesc struct {
	Point    Vec    `json:"point"`
	Normal   Vec    `json:"normal"`
	Material string `json:"material"`
}

// MeshDesc describes a triangle mesh given inline or loaded from an OBJ/PLY file
type MeshDesc struct {
	Name        string            `json:"name,omitempty"`
	Path        string            `json:"path,omitempty"`
	Vertices    []Vec             `json:"vertices,omitempty"`
	Indices     []int             `json:"indices,omitempty"`
	Material    string            `json:"material"`
	Cull        geometry.CullMode `json:"cull"`
	Translation Vec               `json:"translation"`
	RotationY   float64           `json:"rotationY,omitempty"` // degrees
	Scale       float64           `json:"scale,omitempty"`     // uniform, 0 means 1
	Dynamic     bool              `json:"dynamic,omitempty"`
	Animation   *AnimationDesc    `json:"animation,omitempty"`
}

// AnimationDesc attaches a Y rotation animation to a mesh
type AnimationDesc struct {
	Kind  AnimationKind `json:"kind"`
	Speed float64       `json:"speed"` // radians per second
}

// LightDesc describes a point light
type LightDesc struct {
	Position  Vec     `json:"position"`
	Intensity float64 `json:"intensity"`
	Color     Vec     `json:"color"`
}

// Load reads a JSON scene description and builds it
func Load(filename string) (*Scene, *Description, error) {
	desc, err := LoadDescription(filename)
	if err != nil {
		return nil, nil, err
	}
	s, err := Build(desc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build scene %s: %w", filename, err)
	}
	return s, desc, nil
}

// LoadDescription reads a JSON scene description without building it
func LoadDescription(filename string) (*Description, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var desc Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", filename, err)
	}
	desc.BaseDir = filepath.Dir(filename)
	return &desc, nil
}

// Save writes a scene description as indented JSON
func Save(filename string, desc *Description) error {
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write scene file: %w", err)
	}
	return nil
}

// Build turns a description into a renderable scene
func Build(desc *Description) (*Scene, error) {
	camera := geometry.NewCamera(desc.Camera.Position.vec3(), desc.Camera.Yaw, desc.Camera.Pitch)
	if desc.Camera.FieldOfView != 0 {
		camera.SetFieldOfView(desc.Camera.FieldOfView)
	}
	camera.Smoothing = desc.Camera.Smoothing

	s := New(desc.Name, camera)
	if desc.Settings != nil {
		s.Settings = *desc.Settings
	}

	materials := make(map[string]int, len(desc.Materials))
	for _, md := range desc.Materials {
		if _, exists := materials[md.Name]; exists {
			return nil, fmt.Errorf("duplicate material %q", md.Name)
		}
		m, err := md.build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", md.Name, err)
		}
		materials[md.Name] = s.AddMaterial(m)
	}
	lookup := func(name string) (int, error) {
		index, ok := materials[name]
		if !ok {
			return 0, fmt.Errorf("unknown material %q", name)
		}
		return index, nil
	}

	for i, sd := range desc.Spheres {
		index, err := lookup(sd.Material)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		if !(sd.Radius > 0) {
			return nil, fmt.Errorf("sphere %d: radius must be positive, got %v", i, sd.Radius)
		}
		s.AddSphere(geometry.NewSphere(sd.Center.vec3(), sd.Radius, index))
	}

	for i, pd := range desc.Planes {
		index, err := lookup(pd.Material)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		if pd.Normal.vec3().LengthSquared() == 0 {
			return nil, fmt.Errorf("plane %d: normal must be non-zero", i)
		}
		s.AddPlane(geometry.NewPlane(pd.Point.vec3(), pd.Normal.vec3(), index))
	}

	for i, md := range desc.Meshes {
		index, err := lookup(md.Material)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		mesh, err := md.build(index, desc.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		s.AddTriangleMesh(mesh)
		if md.Animation != nil {
			s.Animate(mesh, md.Animation.Kind, md.Animation.Speed)
		}
	}

	for _, ld := range desc.Lights {
		s.AddLight(lights.NewPointLight(ld.Position.vec3(), ld.Intensity, ld.Color.vec3()))
	}

	return s, nil
}

func (md MaterialDesc) build() (material.Material, error) {
	kind, err := material.ParseKind(md.Kind)
	if err != nil {
		return material.Material{}, err
	}

	var m material.Material
	switch kind {
	case material.KindSolidColor:
		m = material.NewSolidColor(core.White)
	case material.KindLambert:
		m = material.NewLambert(core.White, 1)
	case material.KindLambertPhong:
		m = material.NewLambertPhong(core.White, 0.5, 0.5, 1)
	case material.KindCookTorrance:
		m = material.NewCookTorrance(core.NewVec3(0.955, 0.637, 0.538), 1, 1)
	}

	if md.Color != nil {
		m.Color = md.Color.vec3()
	}
	if md.Roughness != nil {
		m.Roughness = *md.Roughness
	}
	if md.Kd != nil {
		m.Kd = *md.Kd
	}
	if md.Ks != nil {
		m.Ks = *md.Ks
	}
	if md.Shininess != nil {
		m.Shininess = *md.Shininess
	}
	if md.Metalness != nil {
		m.Metalness = *md.Metalness
	}
	if m.Roughness < 0 || m.Roughness > 1 {
		return m, fmt.Errorf("roughness %v outside [0,1]", m.Roughness)
	}
	return m, nil
}

func (md MeshDesc) build(materialIndex int, baseDir string) (*geometry.TriangleMesh, error) {
	vertices := make([]core.Vec3, len(md.Vertices))
	for i, v := range md.Vertices {
		vertices[i] = v.vec3()
	}
	indices := md.Indices

	if md.Path != "" {
		path := md.Path
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		data, err := loaders.LoadMesh(path)
		if err != nil {
			return nil, err
		}
		// Inline geometry comes first, loaded indices are shifted past it
		offset := len(vertices)
		vertices = append(vertices, data.Vertices...)
		indices = append([]int(nil), indices...)
		for _, idx := range data.Faces {
			indices = append(indices, idx+offset)
		}
	}

	mesh, err := geometry.NewTriangleMesh(vertices, indices, materialIndex, md.Cull)
	if err != nil {
		return nil, err
	}

	scale := md.Scale
	if scale == 0 {
		scale = 1
	}
	mesh.Dynamic = md.Dynamic
	mesh.SetTransform(md.Translation.vec3(), md.RotationY*math.Pi/180, core.NewVec3(scale, scale, scale))
	return mesh, nil
}
