// Package scene is the viewer's scene graph: a tree of tagged nodes (group, mesh, light,
// helper) with local transforms, world-space bounds, and release of renderer resources.
package scene

import (
	"image/color"

	"model-viewer/internal/geom"
)

// Kind tags the payload a Node carries.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindLight
	KindHelper
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindHelper:
		return "helper"
	}
	return "unknown"
}

// LightType distinguishes ambient from directional lights.
type LightType int

const (
	AmbientLight LightType = iota
	DirectionalLight
)

// Light is a light source. Directional lights shine from the node position toward the origin.
type Light struct {
	Type      LightType
	Color     color.RGBA
	Intensity float32
}

// Helper is a non-pickable line set such as the ground grid or a pin marker.
type Helper struct {
	resource
	// Lines holds segment endpoints in pairs.
	Lines  []geom.Vec3
	Colors []color.RGBA // one per segment; shorter slices reuse the last colour
}

// Node is one element of the scene graph. Exactly one of Mesh, Light or Helper is set,
// matching Kind; groups carry none.
type Node struct {
	Name     string
	Kind     Kind
	Position geom.Vec3
	Rotation geom.Quat
	Scale    geom.Vec3
	Visible  bool

	Mesh   *Mesh
	Light  *Light
	Helper *Helper

	Parent   *Node
	Children []*Node
}

func newNode(name string, kind Kind) *Node {
	return &Node{
		Name:     name,
		Kind:     kind,
		Rotation: geom.IdentityQuat(),
		Scale:    geom.V3(1, 1, 1),
		Visible:  true,
	}
}

// NewGroup returns an empty group node.
func NewGroup(name string) *Node { return newNode(name, KindGroup) }

// NewMeshNode returns a mesh node.
func NewMeshNode(name string, g *Geometry, mats ...*Material) *Node {
	n := newNode(name, KindMesh)
	n.Mesh = &Mesh{Geometry: g, Materials: mats}
	return n
}

// NewLightNode returns a light node placed at pos.
func NewLightNode(name string, l Light, pos geom.Vec3) *Node {
	n := newNode(name, KindLight)
	n.Light = &l
	n.Position = pos
	return n
}

// NewHelperNode returns a helper node.
func NewHelperNode(name string, h *Helper) *Node {
	n := newNode(name, KindHelper)
	n.Helper = h
	return n
}

// Add appends children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Parent != nil {
			c.Parent.Remove(c)
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
}

// Remove detaches child from n. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// SetUniformScale sets the same scale on all axes.
func (n *Node) SetUniformScale(s float32) {
	n.Scale = geom.V3(s, s, s)
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() geom.Mat4 {
	return geom.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix multiplies the local matrices from the root down to n.
func (n *Node) WorldMatrix() geom.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Find returns the first node in the subtree (including n) with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}
