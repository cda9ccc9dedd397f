// Package annotation holds the server-owned pin and note records shown over a model, the
// per-frame projection of their anchors into screen space, and a loader that fetches both
// kinds in parallel.
package annotation

import (
	"time"

	"github.com/jinzhu/copier"

	"model-viewer/internal/geom"
)

// Point is a 3D position or direction as the backend encodes it.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Vec3 converts p to a geom vector.
func (p Point) Vec3() geom.Vec3 { return geom.V3(p.X, p.Y, p.Z) }

// PointOf converts a geom vector to a Point.
func PointOf(v geom.Vec3) Point { return Point{v.X, v.Y, v.Z} }

// Pin is an instructor-placed marker anchored to a model.
type Pin struct {
	ID          int64  `json:"id"`
	ModelID     int64  `json:"model"`
	Position    *Point `json:"position"`
	Normal      *Point `json:"normal,omitempty"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Type        string `json:"pin_type,omitempty"`
	Order       int    `json:"order"`
}

// Note is a student note. Only its author may delete it; deletion is soft.
type Note struct {
	ID        int64      `json:"id"`
	ModelID   int64      `json:"model"`
	Author    string     `json:"author"`
	Position  *Point     `json:"position,omitempty"`
	Text      string     `json:"text"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the note carries a soft-delete marker.
func (n Note) Deleted() bool { return n.DeletedAt != nil }

// Anchored reports whether the note has a position to project.
func (n Note) Anchored() bool { return n.Position != nil }

// SanitizePins returns a deep copy of pins without the records that have no position.
// The caller's slice and the Points it references are never shared with the result.
func SanitizePins(pins []Pin) []Pin {
	out := make([]Pin, 0, len(pins))
	for i := range pins {
		if pins[i].Position == nil {
			continue
		}
		var p Pin
		if err := copier.CopyWithOption(&p, &pins[i], copier.Option{DeepCopy: true}); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SanitizeNotes returns a deep copy of the notes that are anchored and not deleted.
func SanitizeNotes(notes []Note) []Note {
	out := make([]Note, 0, len(notes))
	for i := range notes {
		if !notes[i].Anchored() || notes[i].Deleted() {
			continue
		}
		var n Note
		if err := copier.CopyWithOption(&n, &notes[i], copier.Option{DeepCopy: true}); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
