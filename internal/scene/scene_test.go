package scene

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/internal/geom"
)

func boxGeometry(size geom.Vec3) *Geometry {
	h := size.MulScalar(0.5)
	return NewGeometry([]geom.Vec3{
		geom.V3(-h.X, -h.Y, -h.Z),
		geom.V3(h.X, h.Y, h.Z),
		geom.V3(h.X, -h.Y, h.Z),
	}, nil, []uint32{0, 1, 2})
}

func TestBounds_IncludesTransformsAndSkipsHelpers(t *testing.T) {
	root := NewGroup("root")
	model := NewGroup("model")
	model.Position = geom.V3(1, 0, 0)
	model.SetUniformScale(2)
	model.Add(NewMeshNode("box", boxGeometry(geom.V3(2, 4, 2)), NewMaterial("m", color.RGBA{A: 255})))
	root.Add(model, NewGrid())

	b := Bounds(root)
	assert.InDelta(t, 4, b.Size().X, 1e-5)
	assert.InDelta(t, 8, b.Size().Y, 1e-5)
	assert.InDelta(t, 1, b.Center().X, 1e-5)

	assert.True(t, Bounds(NewGroup("empty")).IsEmpty())
}

func TestDispose_ReleasesOnce(t *testing.T) {
	g := boxGeometry(geom.V3(1, 1, 1))
	m := NewMaterial("m", color.RGBA{A: 255})
	var released int
	g.OnRelease(func() { released++ })
	m.OnRelease(func() { released++ })

	root := NewGroup("root")
	root.Add(NewMeshNode("a", g, m), NewMeshNode("b", g, m), NewGrid())

	assert.Equal(t, 3, Dispose(root))
	assert.Equal(t, 2, released)
	assert.Equal(t, 0, Dispose(root))
	assert.Equal(t, 2, released)
	assert.True(t, g.Disposed())

	late := 0
	g.OnRelease(func() { late++ })
	assert.Equal(t, 1, late)
}

func TestNode_AddReparents(t *testing.T) {
	a, b := NewGroup("a"), NewGroup("b")
	c := NewGroup("c")
	a.Add(c)
	b.Add(c)
	assert.Empty(t, a.Children)
	require.Len(t, b.Children, 1)
	assert.Same(t, b, c.Parent)
	assert.Same(t, c, b.Find("c"))
	assert.Nil(t, b.Find("missing"))
}

func TestWorldMatrix_ChainsParents(t *testing.T) {
	a := NewGroup("a")
	a.Position = geom.V3(0, 1, 0)
	b := NewGroup("b")
	b.Position = geom.V3(2, 0, 0)
	a.Add(b)
	p := b.WorldMatrix().MulPoint(geom.Zero3)
	assert.InDelta(t, 2, p.X, 1e-6)
	assert.InDelta(t, 1, p.Y, 1e-6)
}

func TestLightingRig(t *testing.T) {
	root := NewGroup("root")
	root.Add(NewLightingRig()...)

	lights := Lights(root)
	require.Len(t, lights, 4)
	assert.Equal(t, AmbientLight, lights[0].Type)
	directional := 0
	for _, l := range lights {
		if l.Type == DirectionalLight {
			directional++
		}
	}
	assert.Equal(t, 3, directional)

	grid := root.Find(NameGrid)
	require.NotNil(t, grid)
	assert.Equal(t, KindHelper, grid.Kind)
	assert.InDelta(t, GridOffsetY, grid.Position.Y, 1e-6)
	assert.Len(t, grid.Helper.Lines, 4*(gridDivisions+1))
}

func TestShade_FacingLightIsBrighter(t *testing.T) {
	lights := []LightAt{
		{Light: Light{Type: AmbientLight, Color: color.RGBA{255, 255, 255, 255}, Intensity: 0.2}},
		{Light: Light{Type: DirectionalLight, Color: color.RGBA{255, 255, 255, 255}, Intensity: 0.8}, Position: geom.V3(0, 10, 0)},
	}
	base := color.RGBA{200, 200, 200, 255}
	up := Shade(base, geom.V3(0, 1, 0), lights)
	down := Shade(base, geom.V3(0, -1, 0), lights)
	assert.Equal(t, uint8(200), up.R)
	assert.Equal(t, uint8(40), down.R)
	assert.Equal(t, uint8(255), up.A)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		err  bool
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}, false},
		{"0f0", color.RGBA{0, 255, 0, 255}, false},
		{"#11223380", color.RGBA{0x11, 0x22, 0x33, 0x80}, false},
		{"red", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
