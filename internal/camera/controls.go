package camera

import (
	"github.com/chewxy/math32"

	"model-viewer/internal/geom"
)

// Orbit control defaults.
const (
	DefaultDamping         = 0.08
	DefaultMinDistance     = 0.5
	DefaultMaxDistance     = 20
	DefaultAutoRotateSpeed = 0.5
	// zoomScale is the dolly factor per wheel step.
	zoomScale = 0.95
	// polarEpsilon keeps the camera off the poles so the up vector stays valid.
	polarEpsilon = 1e-6
)

// Controls orbits a Camera around its target with damped rotation, panning and dolly.
// Input methods only accumulate deltas; Update applies them once per frame.
type Controls struct {
	Camera *Camera

	EnableDamping   bool
	Damping         float32
	AutoRotate      bool
	AutoRotateSpeed float32
	MinDistance     float32
	MaxDistance     float32
	RotateSpeed     float32
	PanSpeed        float32

	dragging  bool
	dTheta    float32
	dPhi      float32
	panOffset geom.Vec3
	scale     float32
	disposed  bool
}

// NewControls binds orbit controls to cam with the viewer defaults: damping 0.08,
// distance in [0.5, 20], slow auto-rotation.
func NewControls(cam *Camera) *Controls {
	return &Controls{
		Camera:          cam,
		EnableDamping:   true,
		Damping:         DefaultDamping,
		AutoRotate:      true,
		AutoRotateSpeed: DefaultAutoRotateSpeed,
		MinDistance:     DefaultMinDistance,
		MaxDistance:     DefaultMaxDistance,
		RotateSpeed:     1,
		PanSpeed:        1,
		scale:           1,
	}
}

// SetDragging pauses auto-rotation while the user is dragging.
func (c *Controls) SetDragging(on bool) { c.dragging = on }

// Rotate accumulates an orbit from a pointer drag of (dx, dy) pixels on a surface of the
// given height. A drag across the full height turns the camera by a full revolution.
func (c *Controls) Rotate(dx, dy float32, height int) {
	if c.disposed || height <= 0 {
		return
	}
	h := float32(height)
	c.dTheta -= 2 * math32.Pi * dx / h * c.RotateSpeed
	c.dPhi -= 2 * math32.Pi * dy / h * c.RotateSpeed
}

// Pan accumulates a translation of camera and target from a drag of (dx, dy) pixels.
func (c *Controls) Pan(dx, dy float32, height int) {
	if c.disposed || height <= 0 {
		return
	}
	cam := c.Camera
	dist := cam.ViewVector().Length() * math32.Tan(geom.DegToRad(cam.FOV)/2)
	view := cam.View()
	// Rows of the view rotation are the camera's right and up axes in world space.
	right := geom.V3(view[0], view[4], view[8])
	up := geom.V3(view[1], view[5], view[9])
	h := float32(height)
	c.panOffset = c.panOffset.
		Add(right.MulScalar(-2 * dx * dist / h * c.PanSpeed)).
		Add(up.MulScalar(2 * dy * dist / h * c.PanSpeed))
}

// Dolly accumulates a zoom of steps wheel notches; positive steps move closer.
func (c *Controls) Dolly(steps float32) {
	if c.disposed || steps == 0 {
		return
	}
	c.scale *= math32.Pow(zoomScale, steps)
}

// autoRotationAngle is the per-frame turn at 60 frames per second.
func (c *Controls) autoRotationAngle() float32 {
	return 2 * math32.Pi / 60 / 60 * c.AutoRotateSpeed
}

// Update applies pending deltas and auto-rotation to the camera. It reports whether the
// camera moved.
func (c *Controls) Update() bool {
	if c.disposed || c.Camera == nil {
		return false
	}
	cam := c.Camera
	before := cam.Position

	offset := cam.Position.Sub(cam.Target)
	radius := offset.Length()
	theta := math32.Atan2(offset.X, offset.Z)
	phi := math32.Pi / 2
	if radius > 0 {
		phi = math32.Acos(geom.Clamp(offset.Y/radius, -1, 1))
	}

	if c.AutoRotate && !c.dragging {
		c.dTheta -= c.autoRotationAngle()
	}

	k := float32(1)
	if c.EnableDamping {
		k = c.Damping
	}
	theta += c.dTheta * k
	phi += c.dPhi * k
	phi = geom.Clamp(phi, polarEpsilon, math32.Pi-polarEpsilon)

	radius = geom.Clamp(radius*c.scale, c.MinDistance, c.MaxDistance)

	cam.Target = cam.Target.Add(c.panOffset.MulScalar(k))

	sp, cp := math32.Sincos(phi)
	st, ct := math32.Sincos(theta)
	offset = geom.V3(radius*sp*st, radius*cp, radius*sp*ct)
	cam.Position = cam.Target.Add(offset)

	if c.EnableDamping {
		c.dTheta *= 1 - c.Damping
		c.dPhi *= 1 - c.Damping
		c.panOffset = c.panOffset.MulScalar(1 - c.Damping)
	} else {
		c.dTheta, c.dPhi = 0, 0
		c.panOffset = geom.Zero3
	}
	c.scale = 1

	return cam.Position.DistanceTo(before) > 1e-9
}

// Reset clears pending motion and restores the camera's default position and target.
func (c *Controls) Reset() {
	c.dTheta, c.dPhi = 0, 0
	c.panOffset = geom.Zero3
	c.scale = 1
	if c.Camera != nil {
		c.Camera.Reset()
	}
}

// Dispose detaches the controls; further input and updates are ignored.
func (c *Controls) Dispose() {
	c.disposed = true
	c.dTheta, c.dPhi = 0, 0
	c.panOffset = geom.Zero3
}

// Disposed reports whether Dispose has been called.
func (c *Controls) Disposed() bool { return c.disposed }
