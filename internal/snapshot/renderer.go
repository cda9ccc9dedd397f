// Package snapshot renders viewer scenes without a window. It rasterises flat-shaded
// triangles with a painter's sort on top of a gg software canvas and writes PNG
// snapshots and thumbnails.
package snapshot

import (
	"image"
	"image/color"
	"sort"
	"sync"

	"github.com/gogpu/gg"

	"model-viewer/internal/annotation"
	"model-viewer/internal/camera"
	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

const (
	helperLineWidth = 1
	pinRadius       = 6
	noteRadius      = 4
)

var (
	defaultPinColor = color.RGBA{0xe5, 0x48, 0x4d, 0xff}
	noteColor       = color.RGBA{0xf5, 0xc5, 0x42, 0xff}
	outlineColor    = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// face is one screen-space triangle ready to fill.
type face struct {
	pts   [3][2]float64
	depth float32
	fill  color.RGBA
}

// Renderer draws scenes into an in-memory canvas. It satisfies viewer.Renderer.
type Renderer struct {
	mu       sync.Mutex
	dc       *gg.Context
	width    int
	height   int
	bg       color.RGBA
	faces    []face
	frames   uint64
	disposed bool
}

// NewRenderer returns a renderer with a canvas of the given size.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{bg: color.RGBA{A: 0xff}}
	r.SetSize(width, height)
	return r
}

// SetSize resizes the canvas. Non-positive sizes are ignored.
func (r *Renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed || width <= 0 || height <= 0 {
		return
	}
	if width == r.width && height == r.height && r.dc != nil {
		return
	}
	if r.dc == nil || r.dc.Resize(width, height) != nil {
		if r.dc != nil {
			_ = r.dc.Close()
		}
		r.dc = gg.NewContext(width, height)
	}
	r.width, r.height = width, height
}

// SetBackground sets the clear colour.
func (r *Renderer) SetBackground(c color.RGBA) {
	r.mu.Lock()
	r.bg = c
	r.mu.Unlock()
}

// Size returns the canvas size.
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Frames returns how many frames have been rendered.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Render clears the canvas and draws every visible helper and mesh under root.
func (r *Renderer) Render(root *scene.Node, cam *camera.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed || r.dc == nil || root == nil || cam == nil {
		return
	}
	r.dc.ClearWithColor(gg.FromColor(r.bg))

	vp := cam.ViewProjection()
	lights := scene.Lights(root)
	r.faces = r.faces[:0]

	walkVisible(root, func(n *scene.Node, world geom.Mat4) {
		switch n.Kind {
		case scene.KindHelper:
			r.drawHelper(n.Helper, vp.Mul(world), cam.Near)
		case scene.KindMesh:
			r.collectFaces(n.Mesh, world, vp, cam, lights)
		}
	})

	// Farthest first so nearer faces paint over them.
	sort.SliceStable(r.faces, func(i, j int) bool { return r.faces[i].depth > r.faces[j].depth })
	for _, f := range r.faces {
		r.dc.SetColor(f.fill)
		r.dc.MoveTo(f.pts[0][0], f.pts[0][1])
		r.dc.LineTo(f.pts[1][0], f.pts[1][1])
		r.dc.LineTo(f.pts[2][0], f.pts[2][1])
		r.dc.ClosePath()
		_ = r.dc.Fill()
	}
	r.frames++
}

// walkVisible calls fn for every node whose whole ancestor chain is visible.
func walkVisible(root *scene.Node, fn func(n *scene.Node, world geom.Mat4)) {
	var visit func(n *scene.Node, parent geom.Mat4)
	visit = func(n *scene.Node, parent geom.Mat4) {
		if !n.Visible {
			return
		}
		world := parent.Mul(n.LocalMatrix())
		fn(n, world)
		for _, c := range n.Children {
			visit(c, world)
		}
	}
	visit(root, geom.Identity4())
}

func (r *Renderer) toScreen(clip geom.Vec4) (x, y float64) {
	ndc := clip.PerspDiv()
	x = float64((ndc.X + 1) / 2 * float32(r.width))
	y = float64((1 - ndc.Y) / 2 * float32(r.height))
	return x, y
}

func (r *Renderer) drawHelper(h *scene.Helper, mvp geom.Mat4, near float32) {
	if h == nil {
		return
	}
	r.dc.SetLineWidth(helperLineWidth)
	for i := 0; i+1 < len(h.Lines); i += 2 {
		a := mvp.MulVec4(geom.Vec4{X: h.Lines[i].X, Y: h.Lines[i].Y, Z: h.Lines[i].Z, W: 1})
		b := mvp.MulVec4(geom.Vec4{X: h.Lines[i+1].X, Y: h.Lines[i+1].Y, Z: h.Lines[i+1].Z, W: 1})
		if a.W <= near || b.W <= near {
			continue
		}
		seg := i / 2
		c := outlineColor
		if len(h.Colors) > 0 {
			c = h.Colors[min(seg, len(h.Colors)-1)]
		}
		x1, y1 := r.toScreen(a)
		x2, y2 := r.toScreen(b)
		r.dc.SetColor(c)
		r.dc.DrawLine(x1, y1, x2, y2)
		_ = r.dc.Stroke()
	}
}

func (r *Renderer) collectFaces(m *scene.Mesh, world, vp geom.Mat4, cam *camera.Camera, lights []scene.LightAt) {
	if m == nil || m.Geometry == nil {
		return
	}
	mat := m.Material()
	base := color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	side := scene.FrontSide
	if mat != nil {
		base, side = mat.Color, mat.Side
	}
	g := m.Geometry
	for i := 0; i < g.TriangleCount(); i++ {
		ia, ib, ic := g.Triangle(i)
		pa := world.MulPoint(g.Positions[ia])
		pb := world.MulPoint(g.Positions[ib])
		pc := world.MulPoint(g.Positions[ic])

		n := pb.Sub(pa).Cross(pc.Sub(pa)).Normal()
		if n.IsZero() {
			continue
		}
		if n.Dot(cam.Position.Sub(pa)) < 0 {
			if side == scene.FrontSide {
				continue
			}
			n = n.MulScalar(-1)
		}

		var f face
		ok := true
		for k, p := range [3]geom.Vec3{pa, pb, pc} {
			clip := vp.MulVec4(geom.Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1})
			if clip.W <= cam.Near {
				ok = false
				break
			}
			f.pts[k][0], f.pts[k][1] = r.toScreen(clip)
			f.depth += clip.W
		}
		if !ok {
			continue
		}
		f.fill = scene.Shade(base, n, lights)
		r.faces = append(r.faces, f)
	}
}

// DrawMarkers paints pin and note markers over the last rendered frame. Hidden entries
// are skipped.
func (r *Renderer) DrawMarkers(pins []annotation.ProjectedPin, notes []annotation.ProjectedNote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed || r.dc == nil {
		return
	}
	for _, p := range pins {
		if !p.Visible {
			continue
		}
		c := defaultPinColor
		if p.Pin != nil && p.Pin.Color != "" {
			if parsed, err := scene.ParseColor(p.Pin.Color); err == nil {
				c = parsed
			}
		}
		r.marker(float64(p.X), float64(p.Y), pinRadius, c)
	}
	for _, n := range notes {
		if n.Visible {
			r.marker(float64(n.X), float64(n.Y), noteRadius, noteColor)
		}
	}
}

func (r *Renderer) marker(x, y, radius float64, c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.DrawCircle(x, y, radius)
	_ = r.dc.Fill()
	r.dc.SetColor(outlineColor)
	r.dc.SetLineWidth(1.5)
	r.dc.DrawCircle(x, y, radius)
	_ = r.dc.Stroke()
}

// Image returns a copy of the canvas, or nil before the first SetSize and after Dispose.
func (r *Renderer) Image() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dc == nil || r.disposed {
		return nil
	}
	_ = r.dc.FlushGPU()
	return r.dc.Image()
}

// Dispose releases the canvas. Later calls are no-ops.
func (r *Renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.disposed = true
	if r.dc != nil {
		_ = r.dc.Close()
	}
}

// Disposed reports whether Dispose has been called.
func (r *Renderer) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}
