package annotation

import "model-viewer/internal/geom"

// ProjectedPin is a pin's screen position for one frame.
type ProjectedPin struct {
	Pin     *Pin
	X, Y    float32
	Visible bool
}

// ProjectedNote is a note's screen position for one frame.
type ProjectedNote struct {
	Note    *Note
	X, Y    float32
	Visible bool
}

// ProjectPoint maps a world position to pixel coordinates on a width x height surface
// using the camera's view-projection matrix. The point is visible when it lies in front
// of the camera (clip w > 0) and its depth is within [-1, 1).
func ProjectPoint(viewProj geom.Mat4, p geom.Vec3, width, height int) (x, y float32, visible bool) {
	clip := viewProj.MulVec4(geom.Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1})
	if clip.W <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspDiv()
	x = (ndc.X*0.5 + 0.5) * float32(width)
	y = (-ndc.Y*0.5 + 0.5) * float32(height)
	return x, y, ndc.Z >= -1 && ndc.Z < 1
}

// ProjectPins appends the projection of every pin to dst[:0] and returns it. Passing the
// previous frame's slice back in keeps the per-frame path free of allocations.
func ProjectPins(dst []ProjectedPin, viewProj geom.Mat4, pins []Pin, width, height int) []ProjectedPin {
	dst = dst[:0]
	for i := range pins {
		pp := ProjectedPin{Pin: &pins[i]}
		if pins[i].Position != nil {
			pp.X, pp.Y, pp.Visible = ProjectPoint(viewProj, pins[i].Position.Vec3(), width, height)
		}
		dst = append(dst, pp)
	}
	return dst
}

// ProjectNotes is ProjectPins for notes.
func ProjectNotes(dst []ProjectedNote, viewProj geom.Mat4, notes []Note, width, height int) []ProjectedNote {
	dst = dst[:0]
	for i := range notes {
		pn := ProjectedNote{Note: &notes[i]}
		if notes[i].Position != nil {
			pn.X, pn.Y, pn.Visible = ProjectPoint(viewProj, notes[i].Position.Vec3(), width, height)
		}
		dst = append(dst, pn)
	}
	return dst
}
