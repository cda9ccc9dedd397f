package viewer

import (
	"github.com/chewxy/math32"

	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

// Hit is the nearest surface under a pick ray.
type Hit struct {
	Point    geom.Vec3
	Normal   *geom.Vec3
	Distance float32
	Node     *scene.Node
}

// Pick casts a ray from the camera through pixel (x, y) and returns the nearest hit on
// the model. Lights, helpers and the grid are never hit.
func (s *Session) Pick(x, y float32) (Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.model == nil || s.width <= 0 || s.height <= 0 {
		return Hit{}, false
	}
	ndcX := x/float32(s.width)*2 - 1
	ndcY := -(y/float32(s.height)*2 - 1)
	return Raycast(s.model, s.cam.RayFromNDC(ndcX, ndcY))
}

// Raycast returns the nearest mesh triangle under n hit by ray. Front-side materials
// ignore hits on back faces. The returned normal faces the ray origin.
func Raycast(n *scene.Node, ray geom.Ray) (Hit, bool) {
	best := Hit{Distance: math32.Inf(1)}
	found := false
	parent := geom.Identity4()
	if n.Parent != nil {
		parent = n.Parent.WorldMatrix()
	}
	scene.WalkWorld(n, parent, func(c *scene.Node, world geom.Mat4) bool {
		if c.Kind != scene.KindMesh || c.Mesh == nil || c.Mesh.Geometry == nil {
			return true
		}
		if !visibleUpTo(c, n) {
			return true
		}
		g := c.Mesh.Geometry
		if !ray.IntersectsBox(g.Bounds().Transform(world)) {
			return true
		}
		cull := true
		if m := c.Mesh.Material(); m != nil && m.Side == scene.DoubleSide {
			cull = false
		}
		for i := 0; i < g.TriangleCount(); i++ {
			ia, ib, ic := g.Triangle(i)
			if ia >= len(g.Positions) || ib >= len(g.Positions) || ic >= len(g.Positions) {
				continue
			}
			a := world.MulPoint(g.Positions[ia])
			b := world.MulPoint(g.Positions[ib])
			cc := world.MulPoint(g.Positions[ic])
			t, ok := ray.IntersectTriangle(a, b, cc, cull)
			if !ok || t >= best.Distance {
				continue
			}
			best = Hit{Point: ray.At(t), Distance: t, Node: c, Normal: nil}
			if nrm := b.Sub(a).Cross(cc.Sub(a)).Normal(); !nrm.IsZero() {
				if nrm.Dot(ray.Dir) > 0 {
					nrm = nrm.MulScalar(-1)
				}
				best.Normal = &nrm
			}
			found = true
		}
		return true
	})
	return best, found
}

// visibleUpTo reports whether c and its ancestors up to and including root are visible.
func visibleUpTo(c, root *scene.Node) bool {
	for p := c; p != nil; p = p.Parent {
		if !p.Visible {
			return false
		}
		if p == root {
			break
		}
	}
	return true
}
