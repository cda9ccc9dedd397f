package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"model-viewer/internal/geom"
)

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, geom.V3(3, 2, 4), c.Position)
	assert.Equal(t, geom.Zero3, c.Target)
	assert.Equal(t, float32(45), c.FOV)
	assert.Equal(t, float32(0.01), c.Near)
	assert.Equal(t, float32(200), c.Far)
}

func TestZoom_MovesAlongViewDirection(t *testing.T) {
	c := New()
	before := c.ViewVector().Length()
	c.ZoomIn()
	assert.InDelta(t, before-ZoomStep, c.ViewVector().Length(), 1e-5)
	assert.Equal(t, geom.Zero3, c.Target)

	c.ZoomOut()
	c.ZoomOut()
	assert.InDelta(t, before+ZoomStep, c.ViewVector().Length(), 1e-5)
}

func TestSetAspect_IgnoresDegenerateSize(t *testing.T) {
	c := New()
	assert.True(t, c.SetAspect(800, 600))
	assert.InDelta(t, 800.0/600.0, c.Aspect, 1e-6)
	assert.False(t, c.SetAspect(0, 0))
	assert.InDelta(t, 800.0/600.0, c.Aspect, 1e-6)
}

func TestRayFromNDC_CenterFollowsViewDirection(t *testing.T) {
	c := New()
	c.SetAspect(400, 300)
	r := c.RayFromNDC(0, 0)
	assert.Equal(t, c.Position, r.Origin)
	d := c.Direction()
	assert.InDelta(t, d.X, r.Dir.X, 1e-4)
	assert.InDelta(t, d.Y, r.Dir.Y, 1e-4)
	assert.InDelta(t, d.Z, r.Dir.Z, 1e-4)
}

func TestControls_ResetRoundTrip(t *testing.T) {
	c := New()
	ctl := NewControls(c)
	ctl.Rotate(120, -40, 600)
	ctl.Pan(30, 15, 600)
	ctl.Dolly(3)
	for i := 0; i < 20; i++ {
		ctl.Update()
	}
	c.ZoomIn()
	assert.NotEqual(t, DefaultPosition, c.Position)

	ctl.Reset()
	assert.Equal(t, DefaultPosition, c.Position)
	assert.Equal(t, geom.Zero3, c.Target)
}

func TestControls_ClampsDistance(t *testing.T) {
	c := New()
	ctl := NewControls(c)
	ctl.AutoRotate = false

	c.Position = geom.V3(0, 0, 50)
	ctl.Update()
	assert.InDelta(t, DefaultMaxDistance, c.ViewVector().Length(), 1e-4)

	c.Position = geom.V3(0, 0, 0.1)
	ctl.Update()
	assert.InDelta(t, DefaultMinDistance, c.ViewVector().Length(), 1e-4)
}

func TestControls_DampedRotation(t *testing.T) {
	c := New()
	ctl := NewControls(c)
	ctl.AutoRotate = false
	c.Position = geom.V3(0, 0, 5)

	// A drag of a quarter surface height asks for a half turn; the first frame applies 8%.
	ctl.Rotate(-150, 0, 600)
	ctl.Update()
	theta := math32.Atan2(c.Position.X, c.Position.Z)
	assert.InDelta(t, math32.Pi*DefaultDamping, theta, 1e-4)
	assert.InDelta(t, 5, c.ViewVector().Length(), 1e-4)

	for i := 0; i < 500; i++ {
		ctl.Update()
	}
	assert.InDelta(t, 0, c.Position.X, 1e-2)
	assert.InDelta(t, -5, c.Position.Z, 1e-2)
}

func TestControls_AutoRotateKeepsRadius(t *testing.T) {
	c := New()
	ctl := NewControls(c)
	start := c.Position
	radius := c.ViewVector().Length()
	moved := false
	for i := 0; i < 60; i++ {
		moved = ctl.Update() || moved
	}
	assert.True(t, moved)
	assert.NotEqual(t, start, c.Position)
	assert.InDelta(t, radius, c.ViewVector().Length(), 1e-4)

	ctl.SetDragging(true)
	ctl.dTheta = 0
	pos := c.Position
	ctl.Update()
	assert.InDelta(t, pos.X, c.Position.X, 1e-5)
}

func TestControls_Dispose(t *testing.T) {
	c := New()
	ctl := NewControls(c)
	ctl.Dispose()
	ctl.Rotate(100, 100, 600)
	assert.False(t, ctl.Update())
	assert.Equal(t, DefaultPosition, c.Position)
	assert.True(t, ctl.Disposed())
}
