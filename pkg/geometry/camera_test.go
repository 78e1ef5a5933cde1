package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

func TestCamera_SetFieldOfViewClamps(t *testing.T) {
	camera := NewCamera(core.Vec3{}, 0, 0)

	tests := []struct {
		name  string
		input float64
	}{
		{"normal", 60},
		{"zero", 0},
		{"negative", -30},
		{"straight angle", 180},
		{"beyond", 720},
		{"nan", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied := camera.SetFieldOfView(tt.input)
			if !(applied > 0 && applied < 180) {
				t.Fatalf("Field of view %v escaped (0,180)", applied)
			}
			tan := camera.FieldOfViewTan()
			if math.IsNaN(tan) || math.IsInf(tan, 0) || tan <= 0 {
				t.Errorf("Invalid tan(fov/2) %v for fov %v", tan, applied)
			}
		})
	}

	camera.SetFieldOfView(90)
	if math.Abs(camera.FieldOfViewTan()-1) > 1e-9 {
		t.Errorf("Expected tan(45deg)=1, got %v", camera.FieldOfViewTan())
	}
}

func TestCamera_CameraToWorld(t *testing.T) {
	camera := NewCamera(core.NewVec3(1, 2, 3), 0, 0)
	m := camera.CameraToWorld()

	if got := core.TransformVector(m, core.NewVec3(0, 0, 1)); got.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("Forward should map to +Z, got %v", got)
	}
	if got := core.TransformVector(m, core.NewVec3(1, 0, 0)); got.Subtract(core.NewVec3(1, 0, 0)).Length() > 1e-9 {
		t.Errorf("Right should map to +X, got %v", got)
	}
	if got := core.TransformPoint(m, core.Vec3{}); got.Subtract(core.NewVec3(1, 2, 3)).Length() > 1e-9 {
		t.Errorf("Origin should map to camera position, got %v", got)
	}

	camera.SetPose(core.Vec3{}, 90, 0)
	m = camera.CameraToWorld()
	if got := core.TransformVector(m, core.NewVec3(0, 0, 1)); got.Subtract(core.NewVec3(1, 0, 0)).Length() > 1e-9 {
		t.Errorf("Yaw 90 should look along +X, got %v", got)
	}
}

func TestCamera_BasisOrthonormal(t *testing.T) {
	for _, pose := range [][2]float64{{0, 0}, {30, 20}, {-120, -60}, {200, 89}} {
		camera := NewCamera(core.Vec3{}, pose[0], pose[1])
		f, r, u := camera.Forward(), camera.Right(), camera.Up()
		for _, v := range []core.Vec3{f, r, u} {
			if math.Abs(v.Length()-1) > 1e-9 {
				t.Errorf("pose %v: non-unit basis vector %v", pose, v)
			}
		}
		if math.Abs(f.Dot(r)) > 1e-9 || math.Abs(f.Dot(u)) > 1e-9 || math.Abs(r.Dot(u)) > 1e-9 {
			t.Errorf("pose %v: basis not orthogonal", pose)
		}
	}
}

func TestCamera_UpdateMovesAndReports(t *testing.T) {
	camera := NewCamera(core.Vec3{}, 0, 0)

	camera.Update(CameraInput{}, 0.1)
	if camera.DidMove() {
		t.Error("Empty input should not move the camera")
	}

	camera.Update(CameraInput{Forward: 1}, 0.1)
	if !camera.DidMove() {
		t.Error("Forward input should move the camera")
	}
	expected := core.NewVec3(0, 0, DefaultMoveSpeed*0.1)
	if camera.Position.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected position %v, got %v", expected, camera.Position)
	}

	camera.Update(CameraInput{FieldOfViewDelta: 5}, 0.1)
	if !camera.DidMove() || camera.FieldOfView() != 50 {
		t.Errorf("Field of view change should count as movement, fov=%v", camera.FieldOfView())
	}
}

func TestCamera_PitchClamped(t *testing.T) {
	camera := NewCamera(core.Vec3{}, 0, 0)
	camera.Update(CameraInput{LookY: 100000}, 0.016)

	if camera.Pitch >= math.Pi/2 {
		t.Errorf("Pitch %v reached straight down", camera.Pitch)
	}
	if math.Abs(camera.Right().Length()-1) > 1e-9 {
		t.Error("Right vector degenerated at pitch limit")
	}
}

func TestCamera_SmoothingConverges(t *testing.T) {
	camera := NewCamera(core.Vec3{}, 0, 0)
	camera.Smoothing = 10

	camera.Update(CameraInput{Right: 1}, 0.1)
	target := DefaultMoveSpeed * 0.1
	if !(camera.Position.X > 0 && camera.Position.X < target) {
		t.Fatalf("Expected partial move towards %v, got %v", target, camera.Position.X)
	}

	moves := 0
	for i := 0; i < 200; i++ {
		camera.Update(CameraInput{}, 0.1)
		if camera.DidMove() {
			moves++
		}
	}
	if camera.DidMove() {
		t.Error("Camera should settle once it reaches the target")
	}
	if math.Abs(camera.Position.X-target) > 1e-12 {
		t.Errorf("Expected camera to snap to %v, got %v", target, camera.Position.X)
	}
	if moves == 0 {
		t.Error("Camera should keep moving while easing towards the target")
	}
}

func TestCameraInput_Merge(t *testing.T) {
	queued := CameraInput{Forward: 1, LookX: 3, DragY: 1, FieldOfViewDelta: -2}
	merged := queued.Merge(CameraInput{Right: -1, LookX: 2, LookY: 4, FieldOfViewDelta: -2})

	want := CameraInput{Right: -1, LookX: 5, LookY: 4, DragY: 1, FieldOfViewDelta: -4}
	if merged != want {
		t.Errorf("Expected %+v, got %+v", want, merged)
	}
	if !(CameraInput{}).Merge(CameraInput{}).IsZero() {
		t.Error("Merging empty inputs should stay empty")
	}
}
