package viewer

import (
	"github.com/chewxy/math32"

	"model-viewer/internal/camera"
	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

// FitSize is the largest dimension of a model after fitting.
const FitSize = 3

// frameMargin leaves some room around the framed model.
const frameMargin = 1.2

// Fitted describes how a model was normalised.
type Fitted struct {
	// Bounds is the model's box before fitting.
	Bounds geom.Box3
	Scale  float32
	// Size is the box size after scaling.
	Size geom.Vec3
}

// Fit centres pivot's contents at the origin and scales them uniformly so the largest
// dimension becomes FitSize. A model with no extent keeps scale 1.
func Fit(pivot *scene.Node) Fitted {
	pivot.Position = geom.Zero3
	pivot.Rotation = geom.IdentityQuat()
	pivot.SetUniformScale(1)

	box := scene.Bounds(pivot)
	if box.IsEmpty() {
		return Fitted{Bounds: box, Scale: 1}
	}
	size := box.Size()
	scale := float32(1)
	if m := size.MaxComponent(); m > 0 && !math32.IsInf(m, 0) && !math32.IsNaN(m) {
		scale = FitSize / m
	}
	pivot.SetUniformScale(scale)
	pivot.Position = box.Center().MulScalar(-scale)
	return Fitted{Bounds: box, Scale: scale, Size: size.MulScalar(scale)}
}

// FramePosition returns a camera position along the default view direction far enough
// to see the whole fitted model, clamped to [minDist, maxDist].
func FramePosition(f Fitted, fovDeg, minDist, maxDist float32) geom.Vec3 {
	radius := f.Size.Length() / 2
	dist := camera.DefaultPosition.Length()
	if radius > 0 {
		dist = radius / math32.Sin(geom.DegToRad(fovDeg)/2) * frameMargin
	}
	dist = geom.Clamp(dist, minDist, maxDist)
	return camera.DefaultPosition.Normal().MulScalar(dist)
}
