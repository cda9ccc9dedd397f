package viewer

import (
	"sync"

	"model-viewer/internal/annotation"
)

// Viewer keeps exactly one live Session and re-applies the host inputs (pins, notes,
// edit mode, placement callback) to each new one.
type Viewer struct {
	mu      sync.Mutex
	opts    Options
	session *Session
	pins    []annotation.Pin
	notes   []annotation.Note
	edit    bool
	onPlace PlaceFunc
}

// New returns a viewer that builds sessions from opts. opts.URL is ignored; pass the URL
// to Load. Every session gets a fresh renderer from opts.NewRenderer; opts.Renderer is
// ignored because a torn down session disposes its renderer.
func New(opts Options) *Viewer {
	opts.URL = ""
	opts.Renderer = nil
	return &Viewer{opts: opts}
}

// Load shows the model at url. Loading the URL already shown keeps the current session;
// any other URL tears the current session down before the next one is built.
func (v *Viewer) Load(url string) (*Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session != nil && !v.session.Closed() && v.session.URL() == url {
		return v.session, nil
	}
	return v.replaceLocked(url)
}

// Reload rebuilds the session for the current URL.
func (v *Viewer) Reload() (*Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	url := ""
	if v.session != nil {
		url = v.session.URL()
	}
	return v.replaceLocked(url)
}

func (v *Viewer) replaceLocked(url string) (*Session, error) {
	if v.session != nil {
		v.session.Teardown()
		v.session = nil
	}
	opts := v.opts
	opts.URL = url
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	s.SetPins(v.pins)
	s.SetNotes(v.notes)
	s.SetEditMode(v.edit)
	s.SetPlaceFunc(v.onPlace)
	v.session = s
	return s, nil
}

// Session returns the live session, or nil.
func (v *Viewer) Session() *Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session
}

// SetPins replaces the pin set of the current and future sessions.
func (v *Viewer) SetPins(pins []annotation.Pin) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pins = annotation.SanitizePins(pins)
	if v.session != nil {
		v.session.SetPins(v.pins)
	}
}

// SetNotes replaces the note set of the current and future sessions.
func (v *Viewer) SetNotes(notes []annotation.Note) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notes = annotation.SanitizeNotes(notes)
	if v.session != nil {
		v.session.SetNotes(v.notes)
	}
}

// SetEditMode toggles pin placement.
func (v *Viewer) SetEditMode(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.edit = on
	if v.session != nil {
		v.session.SetEditMode(on)
	}
}

// EditMode reports whether pin placement is enabled.
func (v *Viewer) EditMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.edit
}

// SetPlaceFunc sets the placement callback.
func (v *Viewer) SetPlaceFunc(fn PlaceFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onPlace = fn
	if v.session != nil {
		v.session.SetPlaceFunc(fn)
	}
}

// Close tears down the live session.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session != nil {
		v.session.Teardown()
		v.session = nil
	}
}
