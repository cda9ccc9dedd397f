package scene

import (
	"image/color"

	"model-viewer/internal/geom"
)

const (
	gridSize      = 10
	gridDivisions = 20
	// GridOffsetY puts the ground grid below the origin so centred models sit above it.
	GridOffsetY    = -1.5
	gridMinorAlpha = 90
	gridMajorAlpha = 200
)

// Names of the fixed rig nodes. Hosts look the grid up by name to toggle it.
const (
	NameAmbient   = "ambient"
	NameKeyLight  = "key-light"
	NameFillLight = "fill-light"
	NameRimLight  = "rim-light"
	NameGrid      = "grid"
)

// NewLightingRig returns the fixed rig: one ambient light, three directional lights and a
// ground grid helper.
func NewLightingRig() []*Node {
	return []*Node{
		NewLightNode(NameAmbient, Light{Type: AmbientLight, Color: color.RGBA{255, 255, 255, 255}, Intensity: 0.6}, geom.Zero3),
		NewLightNode(NameKeyLight, Light{Type: DirectionalLight, Color: color.RGBA{255, 255, 255, 255}, Intensity: 1.0}, geom.V3(5, 10, 7)),
		NewLightNode(NameFillLight, Light{Type: DirectionalLight, Color: color.RGBA{170, 200, 255, 255}, Intensity: 0.4}, geom.V3(-5, 5, -5)),
		NewLightNode(NameRimLight, Light{Type: DirectionalLight, Color: color.RGBA{255, 220, 180, 255}, Intensity: 0.3}, geom.V3(0, -5, 5)),
		NewGrid(),
	}
}

// NewGrid returns a square line grid on the XZ plane at GridOffsetY. The two lines
// through the centre use the major colour.
func NewGrid() *Node {
	minor := color.RGBA{128, 128, 128, gridMinorAlpha}
	major := color.RGBA{160, 160, 160, gridMajorAlpha}

	h := &Helper{}
	half := float32(gridSize) / 2
	step := float32(gridSize) / gridDivisions
	center := gridDivisions / 2
	for i := 0; i <= gridDivisions; i++ {
		k := -half + float32(i)*step
		c := minor
		if i == center {
			c = major
		}
		h.Lines = append(h.Lines,
			geom.V3(-half, 0, k), geom.V3(half, 0, k),
			geom.V3(k, 0, -half), geom.V3(k, 0, half),
		)
		h.Colors = append(h.Colors, c, c)
	}
	n := NewHelperNode(NameGrid, h)
	n.Position = geom.V3(0, GridOffsetY, 0)
	return n
}

// Lights returns the light nodes under n with their world positions, in tree order.
func Lights(n *Node) []LightAt {
	var out []LightAt
	WalkWorld(n, geom.Identity4(), func(c *Node, world geom.Mat4) bool {
		if c.Kind == KindLight && c.Light != nil && c.Visible {
			out = append(out, LightAt{Light: *c.Light, Position: world.MulPoint(geom.Zero3)})
		}
		return true
	})
	return out
}

// LightAt is a light with its resolved world position.
type LightAt struct {
	Light
	Position geom.Vec3
}

// Shade returns the lambert-lit colour of a surface with base colour base and unit
// normal n under the given lights. Directional lights point from their position to the origin.
func Shade(base color.RGBA, n geom.Vec3, lights []LightAt) color.RGBA {
	var r, g, b float32
	for _, l := range lights {
		k := l.Intensity
		if l.Type == DirectionalLight {
			k *= max(n.Dot(l.Position.Normal()), 0)
		}
		r += k * float32(l.Color.R) / 255
		g += k * float32(l.Color.G) / 255
		b += k * float32(l.Color.B) / 255
	}
	return color.RGBA{
		R: scaleChannel(base.R, r),
		G: scaleChannel(base.G, g),
		B: scaleChannel(base.B, b),
		A: base.A,
	}
}

func scaleChannel(c uint8, k float32) uint8 {
	v := float32(c) * k
	if v > 255 {
		return 255
	}
	return uint8(v)
}
