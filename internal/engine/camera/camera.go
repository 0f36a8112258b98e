// Package camera provides the orbit camera of the water viewer. World space
// is z-up.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/engine/frustum"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // elevation above the ground plane, radians
	Yaw      float32 // rotation around Z, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Projection
	FovY      float32 // radians
	Aspect    float32
	Near, Far float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        60,
		Pitch:           0.8,
		MinDistance:     5,
		MaxDistance:     2000,
		MinPitch:        0.1,
		MaxPitch:        1.5,
		FovY:            mgl32.DegToRad(45),
		Aspect:          16.0 / 9.0,
		Near:            0.5,
		Far:             5000,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	horiz := c.Distance * math32.Cos(c.Pitch)
	return c.Center.Add(mgl32.Vec3{
		horiz * math32.Sin(c.Yaw),
		-horiz * math32.Cos(c.Yaw),
		c.Distance * math32.Sin(c.Pitch),
	})
}

// ViewMatrix returns the view matrix.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 0, 1})
}

// Projection returns the perspective projection matrix.
func (c *OrbitCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection × view.
func (c *OrbitCamera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.ViewMatrix())
}

// Frustum returns the current view frustum.
func (c *OrbitCamera) Frustum() frustum.Frustum {
	return frustum.FromMatrix(c.ViewProjection())
}

// SetViewport updates the aspect ratio for a width × height viewport.
func (c *OrbitCamera) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center on the ground plane relative to the
// current yaw.
func (c *OrbitCamera) HandleMovement(forward, right float32) {
	speed := c.Distance * 0.01
	sin, cos := math32.Sin(c.Yaw), math32.Cos(c.Yaw)

	// Forward points from the camera towards the center.
	c.Center[0] += (-sin*forward + cos*right) * speed
	c.Center[1] += (cos*forward + sin*right) * speed
}

// FitToBounds centers the camera on a world-space box.
func (c *OrbitCamera) FitToBounds(lo, hi mgl32.Vec3) {
	c.Center = lo.Add(hi).Mul(0.5)
	size := hi.Sub(lo)
	c.Distance = mgl32.Clamp(math32.Max(size.X(), size.Y())*1.5, c.MinDistance, c.MaxDistance)
	c.Pitch = 0.9
	c.Yaw = 0
}
