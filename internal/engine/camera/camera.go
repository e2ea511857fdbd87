// Package camera provides the perspective camera used for rendering and culling.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Camera is a perspective camera. Call Update after moving it so that the
// matrices and frustum follow.
type Camera struct {
	Position  math.Vec3
	Direction math.Vec3
	Up        math.Vec3

	FieldOfView float32 // vertical, degrees
	Near, Far   float32

	ViewportWidth  float32
	ViewportHeight float32

	View       math.Mat4
	Projection math.Mat4
	Combined   math.Mat4

	frustum Frustum
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, width, height float32) *Camera {
	c := &Camera{
		Direction:      math.Vec3{X: 0, Y: 0, Z: -1},
		Up:             math.UnitY,
		FieldOfView:    fov,
		Near:           0.1,
		Far:            100,
		ViewportWidth:  width,
		ViewportHeight: height,
	}
	c.Update()
	return c
}

// SetViewport changes the aspect ratio.
func (c *Camera) SetViewport(width, height float32) {
	c.ViewportWidth = width
	c.ViewportHeight = height
	c.Update()
}

// Update recomputes view, projection, combined matrices and the frustum.
func (c *Camera) Update() {
	aspect := float32(1)
	if c.ViewportHeight > 0 {
		aspect = c.ViewportWidth / c.ViewportHeight
	}
	c.Projection = math.Perspective(c.FieldOfView*math.Deg2Rad, aspect, c.Near, c.Far)
	c.View = math.LookAt(c.Position, c.Position.Add(c.Direction), c.Up)
	c.Combined = c.Projection.Mul(c.View)
	c.frustum = ExtractFrustum(c.Combined)
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Length() == 0 {
		return
	}
	c.Direction = dir.Normalize()
}

// Rotate turns the direction about axis by degrees.
func (c *Camera) Rotate(axis math.Vec3, degrees float32) {
	rot := math.RotateAxis(axis, degrees*math.Deg2Rad)
	c.Direction = rot.TransformDirection(c.Direction).Normalize()
}

// Frustum returns the frustum computed by the last Update.
func (c *Camera) Frustum() Frustum {
	return c.frustum
}

// SphereInFrustum reports whether a sphere is at least partly visible.
func (c *Camera) SphereInFrustum(centre math.Vec3, radius float32) bool {
	return c.frustum.SphereInside(centre, radius)
}

// FirstPerson steers a camera with yaw and pitch, like a player's head.
type FirstPerson struct {
	Yaw   float32 // radians, 0 looks down -Z
	Pitch float32 // radians

	MaxPitch    float32
	Sensitivity float32
}

// NewFirstPerson creates a controller with default limits.
func NewFirstPerson() *FirstPerson {
	return &FirstPerson{
		MaxPitch:    1.5,
		Sensitivity: 0.005,
	}
}

// HandleLook applies relative mouse motion.
func (f *FirstPerson) HandleLook(deltaX, deltaY float32) {
	f.Yaw -= deltaX * f.Sensitivity
	f.Pitch -= deltaY * f.Sensitivity
	if f.Pitch > f.MaxPitch {
		f.Pitch = f.MaxPitch
	}
	if f.Pitch < -f.MaxPitch {
		f.Pitch = -f.MaxPitch
	}
}

// Direction returns the unit look direction.
func (f *FirstPerson) Direction() math.Vec3 {
	cp := math32.Cos(f.Pitch)
	return math.Vec3{
		X: -math32.Sin(f.Yaw) * cp,
		Y: math32.Sin(f.Pitch),
		Z: -math32.Cos(f.Yaw) * cp,
	}
}

// ForwardDirection returns the forward direction on the XZ plane.
func (f *FirstPerson) ForwardDirection() (x, z float32) {
	return -math32.Sin(f.Yaw), -math32.Cos(f.Yaw)
}

// RightDirection returns the right direction on the XZ plane.
func (f *FirstPerson) RightDirection() (x, z float32) {
	return math32.Cos(f.Yaw), -math32.Sin(f.Yaw)
}

// Apply copies the controller orientation to cam and updates it.
func (f *FirstPerson) Apply(cam *Camera) {
	cam.Direction = f.Direction()
	cam.Update()
}
