package graphics

import (
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"model-viewer/internal/viewer"
)

// Window is the raylib window seen as a viewer.Surface. Poll translates raylib input into
// pointer events once per frame.
type Window struct {
	mu       sync.Mutex
	width    int
	height   int
	attached bool
	nextID   int
	resize   map[int]func(int, int)
	pointer  map[int]func(viewer.PointerEvent)

	clicks   *viewer.ClickTracker
	dragging bool
	// Blocked suppresses pointer input, e.g. while the console is open.
	Blocked bool
}

// NewWindow returns a surface over the current raylib window. Call it after InitWindow.
func NewWindow() *Window {
	return &Window{
		width:   rl.GetScreenWidth(),
		height:  rl.GetScreenHeight(),
		resize:  map[int]func(int, int){},
		pointer: map[int]func(viewer.PointerEvent){},
		clicks:  viewer.NewClickTracker(),
	}
}

func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *Window) Attach() error {
	w.mu.Lock()
	w.attached = true
	w.mu.Unlock()
	return nil
}

func (w *Window) Detach() {
	w.mu.Lock()
	w.attached = false
	w.mu.Unlock()
}

func (w *Window) OnResize(fn func(int, int)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.resize[id] = fn
	return func() {
		w.mu.Lock()
		delete(w.resize, id)
		w.mu.Unlock()
	}
}

func (w *Window) OnPointer(fn func(viewer.PointerEvent)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.pointer[id] = fn
	return func() {
		w.mu.Lock()
		delete(w.pointer, id)
		w.mu.Unlock()
	}
}

func (w *Window) emitResize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	fns := make([]func(int, int), 0, len(w.resize))
	for _, fn := range w.resize {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn(width, height)
	}
}

func (w *Window) emit(ev viewer.PointerEvent) {
	w.mu.Lock()
	fns := make([]func(viewer.PointerEvent), 0, len(w.pointer))
	for _, fn := range w.pointer {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Poll reads this frame's window and mouse state and dispatches resize and pointer
// events. Call once per frame from the main goroutine.
func (w *Window) Poll() {
	if rl.IsWindowResized() {
		w.emitResize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	pos := rl.GetMousePosition()
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)

	if w.Blocked {
		if w.dragging {
			w.dragging = false
			w.emit(viewer.PointerEvent{Kind: viewer.PointerUp, X: pos.X, Y: pos.Y})
		}
		return
	}

	for _, b := range []struct {
		rl  rl.MouseButton
		btn int
	}{{rl.MouseButtonLeft, viewer.ButtonPrimary}, {rl.MouseButtonRight, viewer.ButtonSecondary}} {
		if rl.IsMouseButtonPressed(b.rl) {
			w.dragging = true
			w.emit(viewer.PointerEvent{Kind: viewer.PointerDown, X: pos.X, Y: pos.Y, Button: b.btn, Shift: shift})
			if b.btn == viewer.ButtonPrimary && w.clicks.Press(pos.X, pos.Y, time.Duration(rl.GetTime()*float64(time.Second))) {
				w.emit(viewer.PointerEvent{Kind: viewer.PointerDoubleClick, X: pos.X, Y: pos.Y, Button: b.btn, Shift: shift})
			}
		}
		if rl.IsMouseButtonReleased(b.rl) && w.dragging {
			w.dragging = false
			w.emit(viewer.PointerEvent{Kind: viewer.PointerUp, X: pos.X, Y: pos.Y, Button: b.btn, Shift: shift})
		}
	}

	if d := rl.GetMouseDelta(); w.dragging && (d.X != 0 || d.Y != 0) {
		w.emit(viewer.PointerEvent{Kind: viewer.PointerMove, X: pos.X, Y: pos.Y, DX: d.X, DY: d.Y, Shift: shift})
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		w.emit(viewer.PointerEvent{Kind: viewer.PointerWheel, X: pos.X, Y: pos.Y, Wheel: wheel})
	}
}
