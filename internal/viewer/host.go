// Package viewer is the scene manager behind the model viewer. A Session owns the scene
// graph, camera and orbit controls for one mounted viewer: it loads the model, runs the
// per-frame render and pin projection, resolves picks for pin placement, and releases
// every renderer resource on teardown. A Viewer swaps sessions when the model changes.
package viewer

import (
	"image/color"

	"model-viewer/internal/camera"
	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

// Surface is the host region the viewer draws into.
type Surface interface {
	// Size returns the displayed size in pixels.
	Size() (width, height int)
	// Attach gives the surface the viewer's drawable.
	Attach() error
	// Detach removes the drawable from the host.
	Detach()
	// OnResize registers fn for size changes and returns a function that unregisters it.
	OnResize(fn func(width, height int)) (cancel func())
	// OnPointer registers fn for pointer input and returns a function that unregisters it.
	OnPointer(fn func(PointerEvent)) (cancel func())
}

// Renderer draws the scene. Render is called from Session.Tick with the session locked,
// so it must not call back into the session.
type Renderer interface {
	SetSize(width, height int)
	SetBackground(c color.RGBA)
	Render(root *scene.Node, cam *camera.Camera)
	Dispose()
}

// Scheduler drives the frame loop: it calls tick once per display refresh until stop is
// called. stop must not be called from inside tick.
type Scheduler interface {
	Start(tick func()) (stop func())
}

// PlaceFunc receives a pin placement. normal is nil when the hit surface has none.
type PlaceFunc func(position geom.Vec3, normal *geom.Vec3)

// PointerKind classifies a PointerEvent.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerWheel
	PointerDoubleClick
)

// Pointer buttons.
const (
	ButtonPrimary = iota
	ButtonSecondary
)

// PointerEvent is one pointer input in surface pixels. DX and DY are the movement since
// the previous event; Wheel is in notches, positive away from the user.
type PointerEvent struct {
	Kind   PointerKind
	X, Y   float32
	DX, DY float32
	Wheel  float32
	Button int
	Shift  bool
}
