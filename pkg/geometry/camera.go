package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

const (
	// DefaultFieldOfView is the vertical field of view in degrees
	DefaultFieldOfView = 45.0
	// DefaultMoveSpeed is in world units per second
	DefaultMoveSpeed = 15.0
	// DefaultLookSensitivity is in degrees per input unit (mouse pixel)
	DefaultLookSensitivity = 0.25

	angleEpsilonDegrees = 0.1
	snapTolerance       = 1e-4
)

// CameraInput carries one frame of movement and look intents
type CameraInput struct {
	Forward float64 `json:"forward,omitempty"` // along the view direction, -1..1
	Right   float64 `json:"right,omitempty"`   // strafe, -1..1
	Up      float64 `json:"up,omitempty"`      // world up, -1..1

	LookX float64 `json:"lookX,omitempty"` // yaw delta in input units
	LookY float64 `json:"lookY,omitempty"` // pitch delta in input units

	DragX float64 `json:"dragX,omitempty"` // yaw delta while drag-moving
	DragY float64 `json:"dragY,omitempty"` // forward/back on the ground plane while drag-moving

	FieldOfViewDelta float64 `json:"fieldOfViewDelta,omitempty"` // degrees
}

// Merge folds a later input into one queued between frames. Movement axes
// are held state and take the later value; look, drag and zoom deltas add up.
func (in CameraInput) Merge(other CameraInput) CameraInput {
	return CameraInput{
		Forward:          other.Forward,
		Right:            other.Right,
		Up:               other.Up,
		LookX:            in.LookX + other.LookX,
		LookY:            in.LookY + other.LookY,
		DragX:            in.DragX + other.DragX,
		DragY:            in.DragY + other.DragY,
		FieldOfViewDelta: in.FieldOfViewDelta + other.FieldOfViewDelta,
	}
}

// IsZero reports whether the input requests no change
func (in CameraInput) IsZero() bool {
	return in == CameraInput{}
}

// CameraState is the part of a camera that affects rendered pixels.
// It is comparable, so the renderer can detect any change with ==.
type CameraState struct {
	ToWorld        mgl64.Mat4
	FieldOfViewTan float64
}

// Camera is a first-person camera with yaw and pitch (radians). Positive
// pitch looks down. With Smoothing > 0 the visible pose eases towards
// the input-driven target pose.
type Camera struct {
	Position core.Vec3
	Yaw      float64
	Pitch    float64

	MoveSpeed       float64
	LookSensitivity float64
	Smoothing       float64 // convergence rate per second, 0 disables

	targetPosition core.Vec3
	targetYaw      float64
	targetPitch    float64

	fieldOfView    float64 // degrees
	fieldOfViewTan float64
	moved          bool
}

// NewCamera creates a camera at position facing along +Z rotated by yaw and pitch (degrees)
func NewCamera(position core.Vec3, yawDegrees, pitchDegrees float64) *Camera {
	c := &Camera{
		Position:        position,
		Yaw:             mgl64.DegToRad(yawDegrees),
		MoveSpeed:       DefaultMoveSpeed,
		LookSensitivity: DefaultLookSensitivity,
	}
	c.Pitch = clampPitch(mgl64.DegToRad(pitchDegrees))
	c.targetPosition = c.Position
	c.targetYaw = c.Yaw
	c.targetPitch = c.Pitch
	c.SetFieldOfView(DefaultFieldOfView)
	return c
}

// SetFieldOfView sets the vertical field of view in degrees, clamped into
// the open interval (0, 180) with a small margin, and returns the applied value
func (c *Camera) SetFieldOfView(degrees float64) float64 {
	if math.IsNaN(degrees) {
		degrees = DefaultFieldOfView
	}
	degrees = mgl64.Clamp(degrees, angleEpsilonDegrees, 180-angleEpsilonDegrees)
	c.fieldOfView = degrees
	c.fieldOfViewTan = math.Tan(mgl64.DegToRad(degrees) / 2)
	return degrees
}

// IncrementFieldOfView adjusts the field of view by delta degrees
func (c *Camera) IncrementFieldOfView(delta float64) float64 {
	return c.SetFieldOfView(c.fieldOfView + delta)
}

// FieldOfView returns the vertical field of view in degrees
func (c *Camera) FieldOfView() float64 {
	return c.fieldOfView
}

// FieldOfViewTan returns tan(fov/2), the image plane half-height at unit distance
func (c *Camera) FieldOfViewTan() float64 {
	return c.fieldOfViewTan
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return forwardFrom(c.Yaw, c.Pitch)
}

// Right returns the unit right vector, always horizontal
func (c *Camera) Right() core.Vec3 {
	return core.NewVec3(0, 1, 0).Cross(c.Forward()).Normalize()
}

// Up returns the unit up vector perpendicular to forward and right
func (c *Camera) Up() core.Vec3 {
	return c.Forward().Cross(c.Right())
}

// CameraToWorld returns the matrix mapping camera space (x right, y up,
// z forward) to world space
func (c *Camera) CameraToWorld() mgl64.Mat4 {
	forward := c.Forward()
	right := core.NewVec3(0, 1, 0).Cross(forward).Normalize()
	up := forward.Cross(right)
	return core.BasisMatrix(right, up, forward, c.Position)
}

// State returns the comparable render-relevant snapshot of the camera
func (c *Camera) State() CameraState {
	return CameraState{ToWorld: c.CameraToWorld(), FieldOfViewTan: c.fieldOfViewTan}
}

// DidMove reports whether the last Update changed the pose or field of view
func (c *Camera) DidMove() bool {
	return c.moved
}

// Update applies input to the target pose and advances the visible pose.
// elapsed is in seconds.
func (c *Camera) Update(input CameraInput, elapsed float64) {
	before := c.State()

	if input.FieldOfViewDelta != 0 {
		c.IncrementFieldOfView(input.FieldOfViewDelta)
	}

	// Narrow fields of view turn slower so aiming stays precise
	lookScale := mgl64.DegToRad(c.LookSensitivity) * min(c.fieldOfView/DefaultFieldOfView, 1)
	c.targetYaw += (input.LookX + input.DragX) * lookScale
	c.targetPitch = clampPitch(c.targetPitch + input.LookY*lookScale)

	forward := forwardFrom(c.targetYaw, c.targetPitch)
	right := core.NewVec3(0, 1, 0).Cross(forward).Normalize()
	ground := core.NewVec3(math.Sin(c.targetYaw), 0, math.Cos(c.targetYaw))

	step := c.MoveSpeed * elapsed
	move := forward.Multiply(input.Forward).
		Add(right.Multiply(input.Right)).
		Add(core.NewVec3(0, input.Up, 0)).
		Multiply(step)
	dragStep := c.MoveSpeed * mgl64.DegToRad(c.LookSensitivity) * 0.1
	move = move.Add(ground.Multiply(-input.DragY * dragStep))
	c.targetPosition = c.targetPosition.Add(move)

	c.advance(elapsed)
	c.moved = c.State() != before
}

// SetPose places the camera immediately, bypassing smoothing. Angles are in degrees.
func (c *Camera) SetPose(position core.Vec3, yawDegrees, pitchDegrees float64) {
	c.Position = position
	c.Yaw = mgl64.DegToRad(yawDegrees)
	c.Pitch = clampPitch(mgl64.DegToRad(pitchDegrees))
	c.targetPosition = c.Position
	c.targetYaw = c.Yaw
	c.targetPitch = c.Pitch
	c.moved = true
}

func (c *Camera) advance(elapsed float64) {
	factor := 1.0
	if c.Smoothing > 0 {
		factor = 1 - math.Exp(-c.Smoothing*elapsed)
	}

	c.Position = c.Position.Add(c.targetPosition.Subtract(c.Position).Multiply(factor))
	c.Yaw += (c.targetYaw - c.Yaw) * factor
	c.Pitch += (c.targetPitch - c.Pitch) * factor

	if c.targetPosition.Subtract(c.Position).Length() < snapTolerance {
		c.Position = c.targetPosition
	}
	if math.Abs(c.targetYaw-c.Yaw) < snapTolerance {
		c.Yaw = c.targetYaw
	}
	if math.Abs(c.targetPitch-c.Pitch) < snapTolerance {
		c.Pitch = c.targetPitch
	}
}

func forwardFrom(yaw, pitch float64) core.Vec3 {
	return core.NewVec3(
		math.Sin(yaw)*math.Cos(pitch),
		-math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	)
}

func clampPitch(pitch float64) float64 {
	limit := mgl64.DegToRad(90 - angleEpsilonDegrees)
	return mgl64.Clamp(pitch, -limit, limit)
}
