package viewer

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"model-viewer/internal/annotation"
	"model-viewer/internal/asset"
	"model-viewer/internal/camera"
	"model-viewer/internal/primitives"
	"model-viewer/internal/scene"
)

// DefaultBackground is the clear colour of the drawable.
var DefaultBackground = color.RGBA{0x1a, 0x1d, 0x23, 0xff}

// Scene node names.
const (
	NameRoot  = "scene"
	NameModel = "model"
)

var errNoFetcher = errors.New("viewer: no asset fetcher configured")

// Options configures a Session.
type Options struct {
	// URL of the model; empty shows the placeholder without any fetch.
	URL      string
	Surface  Surface
	Renderer Renderer
	// NewRenderer builds the renderer when Renderer is nil. Teardown disposes the
	// renderer, so a Viewer calls it once per session.
	NewRenderer func() Renderer
	Fetcher     asset.Fetcher
	// Scheduler drives Tick; nil leaves ticking to the caller.
	Scheduler  Scheduler
	Background color.RGBA
	Log        zerolog.Logger

	// OnLoadState, when set, is called after every load state change. It runs outside
	// the session lock.
	OnLoadState func(LoadState)
}

// LoadState is what the loading overlay shows.
type LoadState struct {
	Loading bool
	// Progress is the percentage downloaded, or -1 while the size is unknown.
	Progress float64
	// Err is the load failure message; empty when the load succeeded.
	Err string
	// Placeholder is set when the procedural model is shown.
	Placeholder bool
	// Dismissed hides Err from Warning.
	Dismissed bool
}

// Warning returns the message to show, or "" when there is none or it was dismissed.
func (l LoadState) Warning() string {
	if l.Dismissed {
		return ""
	}
	return l.Err
}

// inputs is the low-frequency state written by the host and read once per tick.
// A value is never modified after it is stored.
type inputs struct {
	pins    []annotation.Pin
	notes   []annotation.Note
	edit    bool
	onPlace PlaceFunc
}

type dragState struct {
	active bool
	pan    bool
}

// Session is one mounted viewer. Create it with NewSession and end it with Teardown.
type Session struct {
	id  string
	url string
	log zerolog.Logger

	surface   Surface
	renderer  Renderer
	fetcher   asset.Fetcher
	scheduler Scheduler
	onLoad    func(LoadState)

	mu        sync.Mutex
	closed    bool
	attached  bool
	root      *scene.Node
	model     *scene.Node
	cam       *camera.Camera
	controls  *camera.Controls
	width     int
	height    int
	load      LoadState
	drag      dragState
	projPins  []annotation.ProjectedPin
	projNotes []annotation.ProjectedNote
	frames    uint64
	skipped   uint64
	released  int

	in atomic.Pointer[inputs]

	cancelLoad    context.CancelFunc
	loadDone      chan struct{}
	stopLoop      func()
	cancelResize  func()
	cancelPointer func()
	teardown      sync.Once
}

// NewSession builds the scene, starts the model load and the frame loop. On error the
// partially built session is torn down before returning.
func NewSession(opts Options) (*Session, error) {
	if opts.Renderer == nil && opts.NewRenderer != nil {
		opts.Renderer = opts.NewRenderer()
	}
	if opts.Surface == nil || opts.Renderer == nil {
		return nil, fmt.Errorf("viewer: surface and renderer are required")
	}
	s := &Session{
		id:        uuid.NewString(),
		url:       opts.URL,
		surface:   opts.Surface,
		renderer:  opts.Renderer,
		fetcher:   opts.Fetcher,
		scheduler: opts.Scheduler,
		onLoad:    opts.OnLoadState,
		loadDone:  make(chan struct{}),
		load:      LoadState{Progress: -1},
	}
	s.log = opts.Log.With().Str("session", s.id).Logger()
	s.in.Store(&inputs{})

	if err := s.surface.Attach(); err != nil {
		close(s.loadDone)
		s.Teardown()
		return nil, fmt.Errorf("viewer: attach surface: %w", err)
	}

	bg := opts.Background
	if bg == (color.RGBA{}) {
		bg = DefaultBackground
	}

	s.mu.Lock()
	s.attached = true
	s.renderer.SetBackground(bg)
	s.cam = camera.New()
	s.controls = camera.NewControls(s.cam)
	s.resizeLocked(s.surface.Size())
	s.root = scene.NewGroup(NameRoot)
	s.root.Add(scene.NewLightingRig()...)
	if s.url == "" {
		s.installPlaceholderLocked()
		close(s.loadDone)
	} else {
		s.load.Loading = true
		ctx, cancel := context.WithCancel(context.Background())
		s.cancelLoad = cancel
		go s.loadAsset(ctx)
	}
	width, height := s.width, s.height
	s.mu.Unlock()

	cancelResize := s.surface.OnResize(s.Resize)
	cancelPointer := s.surface.OnPointer(s.HandlePointer)
	var stop func()
	if s.scheduler != nil {
		stop = s.scheduler.Start(s.Tick)
	}
	s.mu.Lock()
	s.cancelResize, s.cancelPointer, s.stopLoop = cancelResize, cancelPointer, stop
	s.mu.Unlock()

	s.log.Info().Str("url", s.url).Int("width", width).Int("height", height).Msg("session started")
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// URL is the model URL the session was created for.
func (s *Session) URL() string { return s.url }

// LoadDone is closed once the model (or the placeholder) is installed, or the load was
// abandoned by teardown.
func (s *Session) LoadDone() <-chan struct{} { return s.loadDone }

// LoadState returns the current load state.
func (s *Session) LoadState() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load
}

// DismissWarning hides the load warning.
func (s *Session) DismissWarning() {
	s.mu.Lock()
	if s.closed || s.load.Err == "" || s.load.Dismissed {
		s.mu.Unlock()
		return
	}
	s.load.Dismissed = true
	st := s.load
	s.mu.Unlock()
	s.notify(st)
}

func (s *Session) notify(st LoadState) {
	if s.onLoad != nil {
		s.onLoad(st)
	}
}

func (s *Session) loadAsset(ctx context.Context) {
	defer close(s.loadDone)
	node, err := s.fetch(ctx)

	s.mu.Lock()
	if s.closed || ctx.Err() != nil {
		s.mu.Unlock()
		if node != nil {
			scene.Dispose(node)
		}
		s.log.Debug().Msg("load finished after teardown, discarded")
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("url", s.url).Msg("model load failed, showing placeholder")
		s.load.Err = err.Error()
		s.installPlaceholderLocked()
	} else {
		s.installModelLocked(node, true)
	}
	s.load.Loading = false
	st := s.load
	s.mu.Unlock()
	s.notify(st)
}

// fetch runs the fetcher, turning a panic into an error so no failure escapes the
// session.
func (s *Session) fetch(ctx context.Context) (node *scene.Node, err error) {
	if s.fetcher == nil {
		return nil, errNoFetcher
	}
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, fmt.Errorf("viewer: asset fetch panicked: %v", r)
		}
	}()
	node, err = s.fetcher.Load(ctx, s.url, func(loaded, total int64) {
		p := asset.Percent(loaded, total)
		s.mu.Lock()
		if s.closed || !s.load.Loading || p == s.load.Progress {
			s.mu.Unlock()
			return
		}
		s.load.Progress = p
		st := s.load
		s.mu.Unlock()
		s.notify(st)
	})
	if err == nil && node == nil {
		err = asset.ErrNoGeometry
	}
	return node, err
}

func (s *Session) installPlaceholderLocked() {
	node, err := primitives.Placeholder()
	if err != nil {
		s.log.Error().Err(err).Msg("placeholder build failed")
		return
	}
	s.installModelLocked(node, false)
	s.load.Placeholder = true
}

// installModelLocked wraps node in the model pivot and adds it to the scene. When fit is
// set the pivot centres and scales the model and the camera is moved to frame it.
func (s *Session) installModelLocked(node *scene.Node, fit bool) {
	if s.model != nil {
		s.root.Remove(s.model)
		s.released += scene.Dispose(s.model)
	}
	pivot := scene.NewGroup(NameModel)
	pivot.Add(node)
	if fit {
		f := Fit(pivot)
		s.controls.Reset()
		s.cam.Position = FramePosition(f, s.cam.FOV, s.controls.MinDistance, s.controls.MaxDistance)
	}
	s.model = pivot
	s.root.Add(pivot)
}

// Tick advances the controls, renders, and recomputes the projected pins and notes. It
// does nothing after teardown or while the surface has no area.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.width <= 0 || s.height <= 0 {
		s.skipped++
		return
	}
	s.controls.Update()
	s.renderer.Render(s.root, s.cam)

	in := s.in.Load()
	vp := s.cam.ViewProjection()
	s.projPins = annotation.ProjectPins(s.projPins, vp, in.pins, s.width, s.height)
	s.projNotes = annotation.ProjectNotes(s.projNotes, vp, in.notes, s.width, s.height)
	s.frames++
}

// Frames returns how many ticks rendered and how many were skipped for a zero size.
func (s *Session) Frames() (rendered, skipped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames, s.skipped
}

// ProjectedPins appends the latest projected pins to dst[:0].
func (s *Session) ProjectedPins(dst []annotation.ProjectedPin) []annotation.ProjectedPin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(dst[:0], s.projPins...)
}

// ProjectedNotes appends the latest projected notes to dst[:0].
func (s *Session) ProjectedNotes(dst []annotation.ProjectedNote) []annotation.ProjectedNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(dst[:0], s.projNotes...)
}

// Resize tracks a new surface size. A zero size pauses rendering until a positive size
// arrives.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resizeLocked(width, height)
}

func (s *Session) resizeLocked(width, height int) {
	s.width, s.height = width, height
	if s.cam.SetAspect(width, height) {
		s.renderer.SetSize(width, height)
	}
}

// Size returns the tracked surface size.
func (s *Session) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Session) updateInputs(fn func(*inputs)) {
	for {
		old := s.in.Load()
		next := *old
		fn(&next)
		if s.in.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPins replaces the pins to project. Pins without a position are dropped; the
// session keeps its own copy.
func (s *Session) SetPins(pins []annotation.Pin) {
	clean := annotation.SanitizePins(pins)
	if dropped := len(pins) - len(clean); dropped > 0 {
		s.log.Debug().Int("dropped", dropped).Msg("skipped pins without position")
	}
	s.updateInputs(func(in *inputs) { in.pins = clean })
}

// SetNotes replaces the notes to project. Unanchored and deleted notes are dropped.
func (s *Session) SetNotes(notes []annotation.Note) {
	clean := annotation.SanitizeNotes(notes)
	s.updateInputs(func(in *inputs) { in.notes = clean })
}

// SetEditMode enables pin placement on double click.
func (s *Session) SetEditMode(on bool) {
	s.updateInputs(func(in *inputs) { in.edit = on })
}

// EditMode reports whether pin placement is enabled.
func (s *Session) EditMode() bool { return s.in.Load().edit }

// SetPlaceFunc sets the placement callback.
func (s *Session) SetPlaceFunc(fn PlaceFunc) {
	s.updateInputs(func(in *inputs) { in.onPlace = fn })
}

// Reset restores the default camera position and target.
func (s *Session) Reset() {
	s.withControls(func(c *camera.Controls) { c.Reset() })
}

// ZoomIn moves the camera one step toward the target.
func (s *Session) ZoomIn() {
	s.withControls(func(c *camera.Controls) { c.Camera.ZoomIn() })
}

// ZoomOut moves the camera one step away from the target.
func (s *Session) ZoomOut() {
	s.withControls(func(c *camera.Controls) { c.Camera.ZoomOut() })
}

// SetAutoRotate turns auto-rotation on or off.
func (s *Session) SetAutoRotate(on bool) {
	s.withControls(func(c *camera.Controls) { c.AutoRotate = on })
}

// AutoRotate reports whether auto-rotation is on.
func (s *Session) AutoRotate() bool {
	on := false
	s.withControls(func(c *camera.Controls) { on = c.AutoRotate })
	return on
}

func (s *Session) withControls(fn func(*camera.Controls)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.controls == nil {
		return
	}
	fn(s.controls)
}

// Camera returns a copy of the camera.
func (s *Session) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cam
}

// SetGridVisible shows or hides the ground grid.
func (s *Session) SetGridVisible(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if g := s.root.Find(scene.NameGrid); g != nil {
		g.Visible = on
	}
}

// GridVisible reports whether the ground grid is shown.
func (s *Session) GridVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return false
	}
	g := s.root.Find(scene.NameGrid)
	return g != nil && g.Visible
}

// Inspect runs fn with the scene graph while holding the session lock. fn must not
// keep the node or call back into the session.
func (s *Session) Inspect(fn func(root *scene.Node)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.root)
}

// HandlePointer feeds pointer input to the orbit controls and, in edit mode, turns a
// double click into a pin placement.
func (s *Session) HandlePointer(ev PointerEvent) {
	if ev.Kind == PointerDoubleClick {
		s.Place(ev.X, ev.Y)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	switch ev.Kind {
	case PointerDown:
		s.drag = dragState{active: true, pan: ev.Shift || ev.Button == ButtonSecondary}
		s.controls.SetDragging(true)
	case PointerMove:
		if !s.drag.active {
			return
		}
		if s.drag.pan {
			s.controls.Pan(ev.DX, ev.DY, s.height)
		} else {
			s.controls.Rotate(ev.DX, ev.DY, s.height)
		}
	case PointerUp:
		s.drag = dragState{}
		s.controls.SetDragging(false)
	case PointerWheel:
		s.controls.Dolly(ev.Wheel)
	}
}

// Place resolves a placement at pixel (x, y). The callback runs only in edit mode and
// only when the ray hits the model. Place reports whether the callback ran.
func (s *Session) Place(x, y float32) bool {
	in := s.in.Load()
	if !in.edit || in.onPlace == nil {
		return false
	}
	hit, ok := s.Pick(x, y)
	if !ok {
		return false
	}
	in.onPlace(hit.Point, hit.Normal)
	s.log.Debug().Float32("x", hit.Point.X).Float32("y", hit.Point.Y).Float32("z", hit.Point.Z).Msg("pin placed")
	return true
}

// Teardown stops the loop, cancels the model load, unregisters input, and releases every
// resource of the scene. It runs once; later calls do nothing.
func (s *Session) Teardown() {
	s.teardown.Do(func() {
		s.mu.Lock()
		s.closed = true
		stop, cancelLoad := s.stopLoop, s.cancelLoad
		cancelResize, cancelPointer := s.cancelResize, s.cancelPointer
		s.mu.Unlock()

		if stop != nil {
			stop()
		}
		if cancelLoad != nil {
			cancelLoad()
		}
		if cancelResize != nil {
			cancelResize()
		}
		if cancelPointer != nil {
			cancelPointer()
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.controls != nil {
			s.controls.Dispose()
		}
		if s.renderer != nil {
			s.renderer.Dispose()
		}
		if s.attached {
			s.surface.Detach()
			s.attached = false
		}
		if s.root != nil {
			s.released += scene.Dispose(s.root)
		}
		s.projPins, s.projNotes = nil, nil
		s.log.Info().Int("released", s.released).Msg("session torn down")
	})
}

// Renderer returns the renderer the session draws with.
func (s *Session) Renderer() Renderer { return s.renderer }

// Closed reports whether Teardown has run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Released returns how many geometries, materials and helpers the session has released.
func (s *Session) Released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
