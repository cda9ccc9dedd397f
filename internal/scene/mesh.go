package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"model-viewer/internal/geom"
)

// Side selects which triangle faces a material renders and which ones raycasts can hit.
type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

// Geometry is an indexed triangle list. When Indices is nil, every three consecutive
// positions form one triangle.
type Geometry struct {
	resource
	Positions []geom.Vec3
	Normals   []geom.Vec3
	Indices   []uint32

	bounds    geom.Box3
	boundsSet bool
}

// NewGeometry returns a geometry over the given data. Normals are computed when nil.
func NewGeometry(positions, normals []geom.Vec3, indices []uint32) *Geometry {
	g := &Geometry{Positions: positions, Normals: normals, Indices: indices}
	if len(g.Normals) != len(g.Positions) {
		g.ComputeNormals()
	}
	return g
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c int) {
	if g.Indices != nil {
		return int(g.Indices[3*i]), int(g.Indices[3*i+1]), int(g.Indices[3*i+2])
	}
	return 3 * i, 3*i + 1, 3*i + 2
}

// Bounds returns the local-space bounding box, computed once.
func (g *Geometry) Bounds() geom.Box3 {
	if !g.boundsSet {
		g.bounds = geom.EmptyBox()
		for _, p := range g.Positions {
			g.bounds.ExpandByPoint(p)
		}
		g.boundsSet = true
	}
	return g.bounds
}

// ComputeNormals sets smooth per-vertex normals by averaging the face normals of the
// triangles sharing each vertex.
func (g *Geometry) ComputeNormals() {
	g.Normals = make([]geom.Vec3, len(g.Positions))
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		if a >= len(g.Positions) || b >= len(g.Positions) || c >= len(g.Positions) {
			continue
		}
		pa, pb, pc := g.Positions[a], g.Positions[b], g.Positions[c]
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		g.Normals[a] = g.Normals[a].Add(n)
		g.Normals[b] = g.Normals[b].Add(n)
		g.Normals[c] = g.Normals[c].Add(n)
	}
	for i := range g.Normals {
		g.Normals[i] = g.Normals[i].Normal()
	}
}

// Material is a flat-coloured surface description.
type Material struct {
	resource
	Name  string
	Color color.RGBA
	Side  Side
}

// NewMaterial returns a front-sided material of the given colour.
func NewMaterial(name string, c color.RGBA) *Material {
	return &Material{Name: name, Color: c}
}

// Mesh pairs a geometry with one or more materials. The first material is used for
// rendering and raycast side tests.
type Mesh struct {
	Geometry  *Geometry
	Materials []*Material
}

// Material returns the primary material, or nil.
func (m *Mesh) Material() *Material {
	if len(m.Materials) == 0 {
		return nil
	}
	return m.Materials[0]
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading # is optional).
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("scene: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("scene: invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
