package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

func TestParseOBJ(t *testing.T) {
	input := `# a quad and a triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
f 1 2 3 4
f 1/1/1 3/1/1 -1/1/1
o ignored
`
	mesh, err := ParseOBJ(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if len(mesh.Vertices) != 4 {
		t.Fatalf("Expected 4 vertices, got %d", len(mesh.Vertices))
	}
	if mesh.Vertices[2] != core.NewVec3(1, 1, 0) {
		t.Errorf("Unexpected vertex %v", mesh.Vertices[2])
	}

	expected := []int{0, 1, 2, 0, 2, 3, 0, 2, 3}
	if len(mesh.Faces) != len(expected) {
		t.Fatalf("Expected %d indices, got %d", len(expected), len(mesh.Faces))
	}
	for i := range expected {
		if mesh.Faces[i] != expected[i] {
			t.Errorf("Index %d: expected %d, got %d", i, expected[i], mesh.Faces[i])
		}
	}
	if mesh.TriangleCount() != 3 {
		t.Errorf("Expected 3 triangles, got %d", mesh.TriangleCount())
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v 1 x 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf a 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadMesh_ByExtension(t *testing.T) {
	dir := t.TempDir()

	objPath := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(objPath, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	mesh, err := LoadMesh(objPath)
	if err != nil {
		t.Fatalf("LoadMesh failed: %v", err)
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", mesh.TriangleCount())
	}

	if _, err := LoadMesh(filepath.Join(dir, "missing.obj")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := LoadMesh(filepath.Join(dir, "model.stl")); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}
