package scene

import "model-viewer/internal/geom"

// Walk visits n and its descendants depth-first. Returning false from fn stops the walk.
func Walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// WalkWorld is Walk with each node's world matrix, accumulated on the way down.
// parent is the world matrix of n's parent (identity for a root).
func WalkWorld(n *Node, parent geom.Mat4, fn func(n *Node, world geom.Mat4) bool) bool {
	if n == nil {
		return true
	}
	world := parent.Mul(n.LocalMatrix())
	if !fn(n, world) {
		return false
	}
	for _, c := range n.Children {
		if !WalkWorld(c, world, fn) {
			return false
		}
	}
	return true
}

// Bounds returns the world-space box of every mesh under n. Lights and helpers do not
// contribute. The result is empty when the subtree has no geometry.
func Bounds(n *Node) geom.Box3 {
	box := geom.EmptyBox()
	if n == nil {
		return box
	}
	parent := geom.Identity4()
	if n.Parent != nil {
		parent = n.Parent.WorldMatrix()
	}
	WalkWorld(n, parent, func(c *Node, world geom.Mat4) bool {
		if c.Kind == KindMesh && c.Mesh != nil && c.Mesh.Geometry != nil {
			box.ExpandByBox(c.Mesh.Geometry.Bounds().Transform(world))
		}
		return true
	})
	return box
}

// Dispose releases the geometry, materials and helper lines of every node under n and
// returns how many resources were released by this call. Resources shared between
// meshes or already disposed are not counted twice.
func Dispose(n *Node) int {
	released := 0
	Walk(n, func(c *Node) bool {
		switch c.Kind {
		case KindMesh:
			if c.Mesh == nil {
				return true
			}
			if g := c.Mesh.Geometry; g != nil && g.Dispose() {
				released++
			}
			for _, m := range c.Mesh.Materials {
				if m != nil && m.Dispose() {
					released++
				}
			}
		case KindHelper:
			if c.Helper != nil && c.Helper.Dispose() {
				released++
			}
		case KindGroup, KindLight:
		}
		return true
	})
	return released
}
