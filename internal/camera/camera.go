// Package camera holds the viewer's perspective camera and the damped orbit controls
// that move it around a target.
package camera

import (
	"model-viewer/internal/geom"
)

// Fixed camera parameters.
const (
	DefaultFOV  = 45
	DefaultNear = 0.01
	DefaultFar  = 200
	// ZoomStep is how far ZoomIn and ZoomOut move the camera along its view direction.
	ZoomStep = 0.5
)

// DefaultPosition is where the camera sits before any model is framed and after Reset.
var DefaultPosition = geom.V3(3, 2, 4)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position geom.Vec3
	Target   geom.Vec3
	Up       geom.Vec3
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
}

// New returns a camera at DefaultPosition looking at the origin.
func New() *Camera {
	c := &Camera{
		FOV:    DefaultFOV,
		Aspect: 1,
		Near:   DefaultNear,
		Far:    DefaultFar,
	}
	c.Reset()
	return c
}

// Reset restores the default position and target.
func (c *Camera) Reset() {
	c.Position = DefaultPosition
	c.Target = geom.Zero3
	c.Up = geom.UnitY
}

// SetAspect updates the aspect ratio from a surface size. Non-positive sizes are ignored
// so a collapsed surface never produces a zero or infinite aspect.
func (c *Camera) SetAspect(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Aspect = float32(width) / float32(height)
	return true
}

// ViewVector is the vector from the target to the camera.
func (c *Camera) ViewVector() geom.Vec3 {
	return c.Position.Sub(c.Target)
}

// Direction is the unit vector the camera looks along.
func (c *Camera) Direction() geom.Vec3 {
	d := c.Target.Sub(c.Position).Normal()
	if d.IsZero() {
		return geom.V3(0, 0, -1)
	}
	return d
}

// View returns the world-to-camera matrix.
func (c *Camera) View() geom.Mat4 {
	return geom.LookAt(c.Position, c.Target, c.Up)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() geom.Mat4 {
	return geom.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() geom.Mat4 {
	return c.Projection().Mul(c.View())
}

// Zoom moves the camera along its view direction by delta (positive = closer). The
// target is left alone.
func (c *Camera) Zoom(delta float32) {
	c.Position = c.Position.Add(c.Direction().MulScalar(delta))
}

// ZoomIn moves the camera ZoomStep toward the target.
func (c *Camera) ZoomIn() { c.Zoom(ZoomStep) }

// ZoomOut moves the camera ZoomStep away from the target.
func (c *Camera) ZoomOut() { c.Zoom(-ZoomStep) }

// RayFromNDC returns the world-space ray through the given normalized device coordinates.
func (c *Camera) RayFromNDC(x, y float32) geom.Ray {
	inv, ok := c.ViewProjection().Inverse()
	if !ok {
		return geom.Ray{Origin: c.Position, Dir: c.Direction()}
	}
	p := inv.MulPoint(geom.V3(x, y, 0.5))
	return geom.Ray{Origin: c.Position, Dir: p.Sub(c.Position).Normal()}
}
