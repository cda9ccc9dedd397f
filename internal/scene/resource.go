package scene

import "sync"

// resource tracks the renderer-side allocations backing a geometry, material or helper.
// Renderers register release hooks when they upload data; Dispose runs them exactly once.
type resource struct {
	mu       sync.Mutex
	disposed bool
	release  []func()
}

// OnRelease registers fn to run when the resource is disposed. If the resource has already
// been disposed, fn runs immediately so late uploads do not leak.
func (r *resource) OnRelease(fn func()) {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		fn()
		return
	}
	r.release = append(r.release, fn)
	r.mu.Unlock()
}

// Dispose runs all release hooks. It reports true only on the first call.
func (r *resource) Dispose() bool {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return false
	}
	r.disposed = true
	hooks := r.release
	r.release = nil
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return true
}

// Disposed reports whether Dispose has run.
func (r *resource) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}
