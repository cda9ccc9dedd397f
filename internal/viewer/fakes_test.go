package viewer

import (
	"context"
	"errors"
	"image/color"
	"sync"

	"model-viewer/internal/asset"
	"model-viewer/internal/camera"
	"model-viewer/internal/geom"
	"model-viewer/internal/primitives"
	"model-viewer/internal/scene"
)

type fakeSurface struct {
	mu        sync.Mutex
	w, h      int
	attachErr error
	attached  int
	detached  int
	resize    map[int]func(int, int)
	pointer   map[int]func(PointerEvent)
	nextID    int
}

func newFakeSurface(w, h int) *fakeSurface {
	return &fakeSurface{w: w, h: h, resize: map[int]func(int, int){}, pointer: map[int]func(PointerEvent){}}
}

func (f *fakeSurface) Size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w, f.h
}

func (f *fakeSurface) Attach() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached++
	return nil
}

func (f *fakeSurface) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached++
}

func (f *fakeSurface) OnResize(fn func(int, int)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.resize[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.resize, id)
	}
}

func (f *fakeSurface) OnPointer(fn func(PointerEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.pointer[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.pointer, id)
	}
}

// setSize changes the size and notifies listeners, like a host layout pass.
func (f *fakeSurface) setSize(w, h int) {
	f.mu.Lock()
	f.w, f.h = w, h
	fns := make([]func(int, int), 0, len(f.resize))
	for _, fn := range f.resize {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(w, h)
	}
}

func (f *fakeSurface) send(ev PointerEvent) {
	f.mu.Lock()
	fns := make([]func(PointerEvent), 0, len(f.pointer))
	for _, fn := range f.pointer {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (f *fakeSurface) listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resize) + len(f.pointer)
}

type fakeRenderer struct {
	mu       sync.Mutex
	w, h     int
	bg       color.RGBA
	renders  int
	disposed int
	// late counts renders after Dispose.
	late int
}

func (r *fakeRenderer) SetSize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w, r.h = w, h
}

func (r *fakeRenderer) SetBackground(c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bg = c
}

func (r *fakeRenderer) Render(*scene.Node, *camera.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed > 0 {
		r.late++
		return
	}
	r.renders++
}

func (r *fakeRenderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed++
}

func (r *fakeRenderer) lateRenders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.late
}

func (r *fakeRenderer) counts() (renders, disposed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders, r.disposed
}

// fakeFetcher returns node or err. When gate is set, Load waits for it to close.
type fakeFetcher struct {
	mu    sync.Mutex
	node  *scene.Node
	err   error
	gate  chan struct{}
	calls int
	panic bool
}

func (f *fakeFetcher) Load(ctx context.Context, url string, progress asset.ProgressFunc) (*scene.Node, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panic {
		panic("decoder bug")
	}
	if progress != nil {
		progress(50, 100)
		progress(100, 100)
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.node, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errNetwork = errors.New("network unreachable")

// boxModel is a 2 x 4 x 2 box whose centre sits at (1, 1, 1).
func boxModel() *scene.Node {
	g := scene.NewGroup("asset")
	n := scene.NewMeshNode("box", primitives.Cube(geom.V3(2, 4, 2)), scene.NewMaterial("m", color.RGBA{200, 200, 200, 255}))
	n.Position = geom.V3(1, 1, 1)
	g.Add(n)
	return g
}
