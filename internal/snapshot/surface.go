package snapshot

import (
	"sync"

	"model-viewer/internal/viewer"
)

// Surface is an off-screen viewer.Surface of a fixed size. Resize and Send let callers
// drive it like a host window.
type Surface struct {
	mu       sync.Mutex
	width    int
	height   int
	attached bool
	nextID   int
	resize   map[int]func(int, int)
	pointer  map[int]func(viewer.PointerEvent)
}

// NewSurface returns a detached surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{
		width:   width,
		height:  height,
		resize:  map[int]func(int, int){},
		pointer: map[int]func(viewer.PointerEvent){},
	}
}

func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Surface) Attach() error {
	s.mu.Lock()
	s.attached = true
	s.mu.Unlock()
	return nil
}

func (s *Surface) Detach() {
	s.mu.Lock()
	s.attached = false
	s.mu.Unlock()
}

// Attached reports whether a session currently owns the surface.
func (s *Surface) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

func (s *Surface) OnResize(fn func(int, int)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.resize[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.resize, id)
		s.mu.Unlock()
	}
}

func (s *Surface) OnPointer(fn func(viewer.PointerEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.pointer[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.pointer, id)
		s.mu.Unlock()
	}
}

// Resize changes the size and notifies resize listeners.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	fns := make([]func(int, int), 0, len(s.resize))
	for _, fn := range s.resize {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(width, height)
	}
}

// Send delivers a pointer event to every pointer listener.
func (s *Surface) Send(ev viewer.PointerEvent) {
	s.mu.Lock()
	fns := make([]func(viewer.PointerEvent), 0, len(s.pointer))
	for _, fn := range s.pointer {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Listeners returns the number of registered resize and pointer callbacks.
func (s *Surface) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resize) + len(s.pointer)
}
