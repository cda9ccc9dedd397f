package graphics

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"model-viewer/internal/camera"
	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

// Renderer draws the scene graph with raylib immediate-mode calls. Render must run on
// the main goroutine between BeginDrawing and EndDrawing.
type Renderer struct {
	bg       color.RGBA
	disposed bool
	// Triangles counts the triangles submitted by the last Render.
	Triangles int
}

// NewRenderer returns a renderer clearing to black.
func NewRenderer() *Renderer {
	return &Renderer{bg: rl.Black}
}

// SetSize is a no-op; raylib tracks the framebuffer size itself.
func (r *Renderer) SetSize(width, height int) {}

func (r *Renderer) SetBackground(c color.RGBA) {
	r.bg = c
}

func vec(v geom.Vec3) rl.Vector3 { return rl.NewVector3(v.X, v.Y, v.Z) }

// Camera3D converts a viewer camera to raylib's.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(cam.Position),
		Target:     vec(cam.Target),
		Up:         vec(cam.Up),
		Fovy:       cam.FOV,
		Projection: rl.CameraPerspective,
	}
}

func (r *Renderer) Render(root *scene.Node, cam *camera.Camera) {
	if r.disposed || root == nil || cam == nil {
		return
	}
	rl.ClearBackground(r.bg)
	lights := scene.Lights(root)
	r.Triangles = 0

	rl.BeginMode3D(Camera3D(cam))
	var visit func(n *scene.Node, parent geom.Mat4)
	visit = func(n *scene.Node, parent geom.Mat4) {
		if !n.Visible {
			return
		}
		world := parent.Mul(n.LocalMatrix())
		switch n.Kind {
		case scene.KindHelper:
			drawHelper(n.Helper, world)
		case scene.KindMesh:
			r.drawMesh(n.Mesh, world, lights)
		}
		for _, c := range n.Children {
			visit(c, world)
		}
	}
	visit(root, geom.Identity4())
	rl.EndMode3D()
}

func drawHelper(h *scene.Helper, world geom.Mat4) {
	if h == nil {
		return
	}
	for i := 0; i+1 < len(h.Lines); i += 2 {
		c := rl.White
		if len(h.Colors) > 0 {
			c = h.Colors[min(i/2, len(h.Colors)-1)]
		}
		rl.DrawLine3D(vec(world.MulPoint(h.Lines[i])), vec(world.MulPoint(h.Lines[i+1])), c)
	}
}

func (r *Renderer) drawMesh(m *scene.Mesh, world geom.Mat4, lights []scene.LightAt) {
	if m == nil || m.Geometry == nil {
		return
	}
	base := color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	side := scene.FrontSide
	if mat := m.Material(); mat != nil {
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
		front := scene.Shade(base, n, lights)
		rl.DrawTriangle3D(vec(pa), vec(pb), vec(pc), front)
		r.Triangles++
		if side == scene.DoubleSide {
			back := scene.Shade(base, n.MulScalar(-1), lights)
			rl.DrawTriangle3D(vec(pa), vec(pc), vec(pb), back)
			r.Triangles++
		}
	}
}

func (r *Renderer) Dispose() { r.disposed = true }
