package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
)

func ptr(v float64) *float64 { return &v }

func color(r, g, b float64) *Vec { return &Vec{r, g, b} }

var (
	red     = color(1, 0, 0)
	green   = color(0, 1, 0)
	blue    = color(0, 0, 1)
	yellow  = color(1, 1, 0)
	magenta = color(1, 0, 1)
)

// builtins maps scene ids to description constructors
var builtins = map[string]func() *Description{
	"spheres":     spheresScene,
	"lit-spheres": litSpheresScene,
	"pbr":         pbrScene,
	"triangles":   trianglesScene,
	"model":       modelScene,
	"reference":   referenceScene,
}

// BuiltinNames returns the ids of all built-in scenes in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a fresh description of a built-in scene
func Builtin(name string) (*Description, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", name)
	}
	desc := build()
	desc.BaseDir = assetBase()
	return desc, nil
}

// assetBase finds the directory holding the bundled assets, so built-in
// scenes load from the repo root or from a command subdirectory
func assetBase() string {
	for _, dir := range []string{".", "..", filepath.Join("..", "..")} {
		if _, err := os.Stat(filepath.Join(dir, "assets")); err == nil {
			return dir
		}
	}
	return ""
}

// unlitSettings shows material colors as-is
func unlitSettings() *core.RenderSettings {
	settings := core.DefaultRenderSettings()
	settings.LightingMode = core.LightingBRDF
	settings.Shadows = false
	settings.Reflections = false
	return &settings
}

func solidMaterials() []MaterialDesc {
	return []MaterialDesc{
		{Name: "red", Kind: "solidColor", Color: red},
		{Name: "blue", Kind: "solidColor", Color: blue},
		{Name: "yellow", Kind: "solidColor", Color: yellow},
		{Name: "green", Kind: "solidColor", Color: green},
		{Name: "magenta", Kind: "solidColor", Color: magenta},
	}
}

// boxPlanes returns an open-fronted room: walls at x=±5, floor, ceiling at 10, back wall at z=10
func boxPlanes(sides, floor, back string) []PlaneDesc {
	return []PlaneDesc{
		{Point: Vec{-5, 0, 0}, Normal: Vec{1, 0, 0}, Material: sides},
		{Point: Vec{5, 0, 0}, Normal: Vec{-1, 0, 0}, Material: sides},
		{Point: Vec{0, 0, 0}, Normal: Vec{0, 1, 0}, Material: floor},
		{Point: Vec{0, 10, 0}, Normal: Vec{0, -1, 0}, Material: floor},
		{Point: Vec{0, 0, 10}, Normal: Vec{0, 0, -1}, Material: back},
	}
}

func sphereGrid(bottom, top [3]string) []SphereDesc {
	var spheres []SphereDesc
	for i, x := range []float64{-1.75, 0, 1.75} {
		spheres = append(spheres,
			SphereDesc{Center: Vec{x, 1, 0}, Radius: 0.75, Material: bottom[i]},
			SphereDesc{Center: Vec{x, 3, 0}, Radius: 0.75, Material: top[i]},
		)
	}
	return spheres
}

func threePointLights() []LightDesc {
	return []LightDesc{
		{Position: Vec{0, 5, 5}, Intensity: 50, Color: Vec{1, 0.61, 0.45}},   // back
		{Position: Vec{-2.5, 5, -5}, Intensity: 70, Color: Vec{1, 0.8, 0.45}}, // front left
		{Position: Vec{2.5, 2.5, -5}, Intensity: 50, Color: Vec{0.34, 0.47, 0.68}},
	}
}

func pbrMaterials() []MaterialDesc {
	metal := color(0.972, 0.960, 0.915)
	plastic := color(0.75, 0.75, 0.75)
	return []MaterialDesc{
		{Name: "rough-metal", Kind: "cookTorrance", Color: metal, Metalness: ptr(1), Roughness: ptr(1)},
		{Name: "medium-metal", Kind: "cookTorrance", Color: metal, Metalness: ptr(1), Roughness: ptr(0.6)},
		{Name: "smooth-metal", Kind: "cookTorrance", Color: metal, Metalness: ptr(1), Roughness: ptr(0.1)},
		{Name: "rough-plastic", Kind: "cookTorrance", Color: plastic, Metalness: ptr(0), Roughness: ptr(1)},
		{Name: "medium-plastic", Kind: "cookTorrance", Color: plastic, Metalness: ptr(0), Roughness: ptr(0.6)},
		{Name: "smooth-plastic", Kind: "cookTorrance", Color: plastic, Metalness: ptr(0), Roughness: ptr(0.1)},
		{Name: "gray-blue", Kind: "lambert", Color: color(0.49, 0.57, 0.57), Kd: ptr(1)},
		{Name: "white", Kind: "lambert", Color: color(1, 1, 1), Kd: ptr(1)},
	}
}

func spheresScene() *Description {
	return &Description{
		Name:        "spheres",
		Description: "Two large spheres in a colored box, unlit",
		Camera:      CameraDesc{Position: Vec{0, 0, 0}},
		Settings:    unlitSettings(),
		Materials:   solidMaterials(),
		Planes: []PlaneDesc{
			{Point: Vec{-75, 0, 0}, Normal: Vec{1, 0, 0}, Material: "green"},
			{Point: Vec{75, 0, 0}, Normal: Vec{-1, 0, 0}, Material: "green"},
			{Point: Vec{0, -75, 0}, Normal: Vec{0, 1, 0}, Material: "yellow"},
			{Point: Vec{0, 75, 0}, Normal: Vec{0, -1, 0}, Material: "yellow"},
			{Point: Vec{0, 0, 125}, Normal: Vec{0, 0, -1}, Material: "magenta"},
		},
		Spheres: []SphereDesc{
			{Center: Vec{-25, 0, 100}, Radius: 50, Material: "red"},
			{Center: Vec{25, 0, 100}, Radius: 50, Material: "blue"},
		},
		Lights: []LightDesc{{Position: Vec{0, 0, 0}, Intensity: 1, Color: Vec{1, 1, 1}}},
	}
}

func litSpheresScene() *Description {
	return &Description{
		Name:        "lit-spheres",
		Description: "Six solid spheres in a room with a single white light",
		Camera:      CameraDesc{Position: Vec{0, 3, -9}},
		Materials:   solidMaterials(),
		Planes:      boxPlanes("green", "yellow", "magenta"),
		Spheres:     sphereGrid([3]string{"red", "blue", "red"}, [3]string{"blue", "red", "blue"}),
		Lights:      []LightDesc{{Position: Vec{0, 5, -5}, Intensity: 70, Color: Vec{1, 1, 1}}},
	}
}

func pbrScene() *Description {
	return &Description{
		Name:        "pbr",
		Description: "Cook-Torrance metal and plastic spheres at three roughness levels",
		Camera:      CameraDesc{Position: Vec{0, 3, -9}},
		Materials:   pbrMaterials(),
		Planes:      boxPlanes("gray-blue", "gray-blue", "gray-blue"),
		Spheres: sphereGrid(
			[3]string{"rough-metal", "medium-metal", "smooth-metal"},
			[3]string{"rough-plastic", "medium-plastic", "smooth-plastic"},
		),
		Lights: threePointLights(),
	}
}

func trianglesScene() *Description {
	desc := pbrScene()
	desc.Name = "triangles"
	desc.Description = "PBR spheres plus three rotating triangles, one per cull mode"

	base := []Vec{{-0.75, 1.5, 0}, {0.75, 0, 0}, {-0.75, 0, 0}}
	for i, cull := range []geometry.CullMode{geometry.CullBackFace, geometry.CullFrontFace, geometry.CullNone} {
		desc.Meshes = append(desc.Meshes, MeshDesc{
			Name:        fmt.Sprintf("triangle-%s", cull),
			Vertices:    base,
			Indices:     []int{0, 1, 2},
			Material:    "white",
			Cull:        cull,
			Translation: Vec{-1.75 + float64(i)*1.75, 4.5, 0},
			Dynamic:     true,
			Animation:   &AnimationDesc{Kind: AnimationOscillate, Speed: 1},
		})
	}
	return desc
}

func modelScene() *Description {
	return &Description{
		Name:        "model",
		Description: "A mesh loaded from disk in a lit room",
		Camera:      CameraDesc{Position: Vec{0, 3, -9}},
		Materials:   pbrMaterials(),
		Planes:      boxPlanes("gray-blue", "gray-blue", "gray-blue"),
		Meshes: []MeshDesc{{
			Name:     "model",
			Path:     "assets/octahedron.obj",
			Material: "white",
			Cull:     geometry.CullBackFace,
			Scale:    2,
		}},
		Lights: threePointLights(),
	}
}

// referenceScene is pitched down atan(2/5) so the ball sits at the centre of
// the frame with its shadow in view. Level, the default field of view leaves
// the ball on the bottom edge and its shadow out of frame.
func referenceScene() *Description {
	return &Description{
		Name:        "reference",
		Description: "Ground plane, one sphere, one light",
		Camera:      CameraDesc{Position: Vec{0, 3, -5}, Pitch: 21.8},
		Materials: []MaterialDesc{
			{Name: "ground", Kind: "lambert", Color: color(0.8, 0.8, 0.8), Kd: ptr(1)},
			{Name: "ball", Kind: "lambert", Color: color(0.8, 0.2, 0.2), Kd: ptr(1)},
		},
		Planes:  []PlaneDesc{{Point: Vec{0, 0, 0}, Normal: Vec{0, 1, 0}, Material: "ground"}},
		Spheres: []SphereDesc{{Center: Vec{0, 1, 0}, Radius: 0.5, Material: "ball"}},
		Lights:  []LightDesc{{Position: Vec{0, 5, 0}, Intensity: 50, Color: Vec{1, 1, 1}}},
	}
}
