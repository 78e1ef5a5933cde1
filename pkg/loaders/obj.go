package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// LoadOBJ loads vertex positions and faces from a Wavefront OBJ file
func LoadOBJ(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	mesh, err := ParseOBJ(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return mesh, nil
}

// ParseOBJ reads "v" and "f" records. Face indices are 1-based in the file
// (negative values count back from the latest vertex) and are returned
// 0-based. Polygons are fan-triangulated. Everything else is ignored.
func ParseOBJ(r io.Reader) (*MeshData, error) {
	mesh := &MeshData{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNumber)
			}
			var coords [3]float64
			for i := range coords {
				value, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid coordinate %q: %w", lineNumber, fields[i+1], err)
				}
				coords[i] = value
			}
			mesh.Vertices = append(mesh.Vertices, core.NewVec3(coords[0], coords[1], coords[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNumber)
			}
			polygon := make([]int, 0, len(fields)-1)
			for _, token := range fields[1:] {
				index, err := parseFaceIndex(token, len(mesh.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNumber, err)
				}
				polygon = append(polygon, index)
			}
			for i := 1; i+1 < len(polygon); i++ {
				mesh.Faces = append(mesh.Faces, polygon[0], polygon[i], polygon[i+1])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ data: %w", err)
	}
	return mesh, nil
}

// parseFaceIndex converts one "i", "i/t" or "i/t/n" token to a 0-based vertex index
func parseFaceIndex(token string, vertexCount int) (int, error) {
	if slash := strings.IndexByte(token, '/'); slash >= 0 {
		token = token[:slash]
	}

	index, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid face index %q", token)
	}

	switch {
	case index > 0:
		index--
	case index < 0:
		index += vertexCount
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}

	if index < 0 || index >= vertexCount {
		return 0, fmt.Errorf("face index %s out of range (%d vertices)", token, vertexCount)
	}
	return index, nil
}
