package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// MeshData contains raw vertex positions and 0-based triangle indices
type MeshData struct {
	Vertices []core.Vec3 // Vertex positions
	Faces    []int       // Triangle indices (3 per triangle)
}

// TriangleCount returns the number of triangles
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// LoadMesh loads a triangle mesh, choosing the parser from the file extension
func LoadMesh(filename string) (*MeshData, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".obj":
		return LoadOBJ(filename)
	case ".ply":
		return LoadPLY(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format %q", ext)
	}
}
