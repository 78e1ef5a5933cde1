package core

import "github.com/go-gl/mathgl/mgl64"

// ToMgl converts a Vec3 to its mathgl equivalent
func ToMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts a mathgl vector to a Vec3
func FromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// TransformPoint applies m to a position (w = 1)
func TransformPoint(m mgl64.Mat4, p Vec3) Vec3 {
	return FromMgl(mgl64.TransformCoordinate(ToMgl(p), m))
}

// TransformVector applies m to a direction (w = 0), ignoring translation
func TransformVector(m mgl64.Mat4, v Vec3) Vec3 {
	return FromMgl(mgl64.TransformNormal(ToMgl(v), m))
}

// ComposeTransform builds scale, then Y rotation, then translation as one matrix
func ComposeTransform(translation Vec3, yaw float64, scale Vec3) mgl64.Mat4 {
	t := mgl64.Translate3D(translation.X, translation.Y, translation.Z)
	r := mgl64.HomogRotate3DY(yaw)
	s := mgl64.Scale3D(scale.X, scale.Y, scale.Z)
	return t.Mul4(r).Mul4(s)
}

// NormalMatrix returns the inverse transpose of m, which keeps normals
// perpendicular to surfaces under non-uniform scale
func NormalMatrix(m mgl64.Mat4) mgl64.Mat4 {
	return m.Inv().Transpose()
}

// BasisMatrix builds a matrix whose columns are the given axes and origin
func BasisMatrix(right, up, forward, origin Vec3) mgl64.Mat4 {
	return mgl64.Mat4FromCols(
		ToMgl(right).Vec4(0),
		ToMgl(up).Vec4(0),
		ToMgl(forward).Vec4(0),
		ToMgl(origin).Vec4(1),
	)
}
