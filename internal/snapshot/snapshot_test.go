package snapshot

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/internal/annotation"
	"model-viewer/internal/camera"
	"model-viewer/internal/geom"
	"model-viewer/internal/primitives"
	"model-viewer/internal/scene"
	"model-viewer/internal/viewer"
)

var (
	_ viewer.Renderer = (*Renderer)(nil)
	_ viewer.Surface  = (*Surface)(nil)
)

func litCube(c color.RGBA) *scene.Node {
	root := scene.NewGroup("scene")
	root.Add(scene.NewLightNode("ambient", scene.Light{Type: scene.AmbientLight, Color: color.RGBA{255, 255, 255, 255}, Intensity: 1}, geom.Zero3))
	root.Add(scene.NewMeshNode("cube", primitives.Cube(geom.V3(1, 1, 1)), scene.NewMaterial("cube", c)))
	return root
}

func pixel(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRender_ClearsToBackground(t *testing.T) {
	r := NewRenderer(64, 48)
	bg := color.RGBA{10, 20, 30, 255}
	r.SetBackground(bg)
	r.Render(scene.NewGroup("scene"), camera.New())

	img := r.Image()
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
	assert.Equal(t, bg, pixel(t, img, 0, 0))
	assert.Equal(t, uint64(1), r.Frames())
}

func TestRender_DrawsMeshAtCenter(t *testing.T) {
	r := NewRenderer(64, 64)
	r.SetBackground(color.RGBA{A: 255})
	cam := camera.New()
	cam.SetAspect(64, 64)
	r.Render(litCube(color.RGBA{200, 0, 0, 255}), cam)

	img := r.Image()
	c := pixel(t, img, 32, 32)
	assert.Greater(t, c.R, uint8(150))
	assert.Less(t, c.G, uint8(20))
	assert.Equal(t, color.RGBA{A: 255}, pixel(t, img, 0, 0))
}

func TestRender_SkipsHiddenSubtree(t *testing.T) {
	r := NewRenderer(32, 32)
	r.SetBackground(color.RGBA{A: 255})
	root := litCube(color.RGBA{200, 0, 0, 255})
	root.Find("cube").Visible = false
	cam := camera.New()
	cam.SetAspect(32, 32)
	r.Render(root, cam)
	assert.Equal(t, color.RGBA{A: 255}, pixel(t, r.Image(), 16, 16))
}

func TestSetSize_IgnoresDegenerate(t *testing.T) {
	r := NewRenderer(40, 30)
	r.SetSize(0, 10)
	w, h := r.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)

	r.SetSize(80, 60)
	w, h = r.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 60, h)
}

func TestDrawMarkers_PaintsVisibleOnly(t *testing.T) {
	r := NewRenderer(40, 40)
	r.SetBackground(color.RGBA{A: 255})
	r.Render(scene.NewGroup("scene"), camera.New())

	pin := annotation.Pin{ID: 1, Color: "#00ff00"}
	r.DrawMarkers([]annotation.ProjectedPin{
		{Pin: &pin, X: 10, Y: 10, Visible: true},
		{Pin: &pin, X: 30, Y: 30, Visible: false},
	}, nil)

	img := r.Image()
	assert.Greater(t, pixel(t, img, 10, 10).G, uint8(200))
	assert.Equal(t, color.RGBA{A: 255}, pixel(t, img, 30, 30))
}

func TestDispose_Idempotent(t *testing.T) {
	r := NewRenderer(16, 16)
	r.Dispose()
	r.Dispose()
	assert.True(t, r.Disposed())
	assert.Nil(t, r.Image())
	r.Render(scene.NewGroup("scene"), camera.New())
	assert.Zero(t, r.Frames())
}

func TestExport_WritesSnapshotAndThumbnail(t *testing.T) {
	r := NewRenderer(100, 50)
	r.Render(scene.NewGroup("scene"), camera.New())

	dir := t.TempDir()
	snap := filepath.Join(dir, "out", "snap.png")
	thumb := filepath.Join(dir, "out", "thumb.png")
	require.NoError(t, Export(r, snap, thumb, 20))

	_, err := os.Stat(snap)
	require.NoError(t, err)
	f, err := os.Open(thumb)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestExport_NothingRendered(t *testing.T) {
	r := NewRenderer(0, 0)
	assert.Error(t, Export(r, filepath.Join(t.TempDir(), "x.png"), "", 0))
}

func TestSurface_Listeners(t *testing.T) {
	s := NewSurface(10, 10)
	var got []int
	cancel := s.OnResize(func(w, h int) { got = append(got, w, h) })
	var events int
	cancelPtr := s.OnPointer(func(viewer.PointerEvent) { events++ })
	assert.Equal(t, 2, s.Listeners())

	s.Resize(20, 30)
	s.Send(viewer.PointerEvent{Kind: viewer.PointerDown})
	assert.Equal(t, []int{20, 30}, got)
	assert.Equal(t, 1, events)

	cancel()
	cancelPtr()
	assert.Zero(t, s.Listeners())
	s.Resize(5, 5)
	assert.Equal(t, []int{20, 30}, got)
}
