package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// TriangleMesh is an indexed triangle list with its own transform.
// Local positions and per-face normals are fixed at construction; the
// transformed copies and world bounds follow every transform change.
type TriangleMesh struct {
	MaterialIndex int
	Cull          CullMode
	Dynamic       bool // set for meshes that move between frames

	positions []core.Vec3 // local space
	normals   []core.Vec3 // local space, one per face
	indices   []int       // three per face

	translation core.Vec3
	yaw         float64
	scale       core.Vec3
	transform   mgl64.Mat4

	worldPositions []core.Vec3
	worldNormals   []core.Vec3
	localBounds    core.AABB
	bounds         core.AABB
}

// NewTriangleMesh creates a mesh from vertex positions and 0-based face indices.
// An empty mesh is valid and never reports hits.
func NewTriangleMesh(positions []core.Vec3, indices []int, materialIndex int, cull CullMode) (*TriangleMesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("face indices must be a multiple of 3, got %d", len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(positions) {
			return nil, fmt.Errorf("face index %d at position %d out of range [0,%d)", idx, i, len(positions))
		}
	}

	mesh := &TriangleMesh{
		MaterialIndex: materialIndex,
		Cull:          cull,
		positions:     append([]core.Vec3(nil), positions...),
		indices:       append([]int(nil), indices...),
		scale:         core.NewVec3(1, 1, 1),
	}
	mesh.normals = make([]core.Vec3, 0, len(indices)/3)
	for f := 0; f < len(indices); f += 3 {
		mesh.normals = append(mesh.normals, FaceNormal(positions[indices[f]], positions[indices[f+1]], positions[indices[f+2]]))
	}
	mesh.UpdateTransforms()
	return mesh, nil
}

// AppendTriangle adds one face given by three new vertices
func (m *TriangleMesh) AppendTriangle(v0, v1, v2 core.Vec3) {
	base := len(m.positions)
	m.positions = append(m.positions, v0, v1, v2)
	m.indices = append(m.indices, base, base+1, base+2)
	m.normals = append(m.normals, FaceNormal(v0, v1, v2))
	m.UpdateTransforms()
}

// SetTranslation moves the mesh and refreshes its world-space caches
func (m *TriangleMesh) SetTranslation(translation core.Vec3) {
	m.translation = translation
	m.UpdateTransforms()
}

// SetRotationY sets the yaw angle in radians and refreshes the caches
func (m *TriangleMesh) SetRotationY(yaw float64) {
	m.yaw = yaw
	m.UpdateTransforms()
}

// SetScale sets a per-axis scale and refreshes the caches
func (m *TriangleMesh) SetScale(scale core.Vec3) {
	m.scale = scale
	m.UpdateTransforms()
}

// SetTransform sets all three transform components at once
func (m *TriangleMesh) SetTransform(translation core.Vec3, yaw float64, scale core.Vec3) {
	m.translation = translation
	m.yaw = yaw
	m.scale = scale
	m.UpdateTransforms()
}

// Transform returns the composed local-to-world matrix
func (m *TriangleMesh) Transform() mgl64.Mat4 {
	return m.transform
}

// UpdateTransforms recomputes world positions, normals and bounds from the
// current scale, rotation and translation
func (m *TriangleMesh) UpdateTransforms() {
	m.transform = core.ComposeTransform(m.translation, m.yaw, m.scale)
	normalMatrix := core.NormalMatrix(m.transform)

	if cap(m.worldPositions) < len(m.positions) {
		m.worldPositions = make([]core.Vec3, len(m.positions))
	}
	m.worldPositions = m.worldPositions[:len(m.positions)]
	for i, p := range m.positions {
		m.worldPositions[i] = core.TransformPoint(m.transform, p)
	}

	if cap(m.worldNormals) < len(m.normals) {
		m.worldNormals = make([]core.Vec3, len(m.normals))
	}
	m.worldNormals = m.worldNormals[:len(m.normals)]
	for i, n := range m.normals {
		m.worldNormals[i] = core.TransformVector(normalMatrix, n).Normalize()
	}

	if len(m.positions) == 0 {
		m.localBounds = core.AABB{}
		m.bounds = core.AABB{}
		return
	}
	m.localBounds = core.NewAABBFromPoints(m.positions...)
	m.bounds = m.localBounds.Transform(m.transform)
}

// TriangleCount returns the number of faces
func (m *TriangleMesh) TriangleCount() int {
	return len(m.indices) / 3
}

// Face returns a transient world-space copy of face i
func (m *TriangleMesh) Face(i int) Triangle {
	base := i * 3
	return Triangle{
		V0:            m.worldPositions[m.indices[base]],
		V1:            m.worldPositions[m.indices[base+1]],
		V2:            m.worldPositions[m.indices[base+2]],
		Normal:        m.worldNormals[i],
		MaterialIndex: m.MaterialIndex,
		Cull:          m.Cull,
		Dynamic:       m.Dynamic,
	}
}

// Bounds returns the world-space bounding box
func (m *TriangleMesh) Bounds() core.AABB {
	return m.bounds
}

// LocalBounds returns the bounding box of the untransformed vertices
func (m *TriangleMesh) LocalBounds() core.AABB {
	return m.localBounds
}

// Hit tests every face behind a bounding box check and keeps the closest
func (m *TriangleMesh) Hit(ray core.Ray, rec *core.HitRecord) bool {
	if m.TriangleCount() == 0 || !m.bounds.Hit(ray, ray.TMin, min(ray.TMax, rec.T)) {
		return false
	}

	hit := false
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Face(i)
		if tri.Hit(ray, rec) {
			hit = true
		}
	}
	return hit
}

// Occludes returns on the first face that blocks the ray interval
func (m *TriangleMesh) Occludes(ray core.Ray) bool {
	if m.TriangleCount() == 0 || !m.bounds.HitRay(ray) {
		return false
	}

	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Face(i)
		if tri.Occludes(ray) {
			return true
		}
	}
	return false
}
