// Package app wires the viewer to the backend: it resolves the model record, feeds pins
// and notes to the viewer, turns placements into notes, and exposes the console commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"model-viewer/internal/annotation"
	"model-viewer/internal/commands"
	"model-viewer/internal/config"
	"model-viewer/internal/content"
	"model-viewer/internal/geom"
	"model-viewer/internal/viewer"
)

// DefaultNoteText is used for a placement when no text was set with the note command.
const DefaultNoteText = "Note"

// Backend is the part of the REST client the app uses.
type Backend interface {
	annotation.Store
	GetModel(ctx context.Context, id int64) (content.Model, error)
	CreateNote(ctx context.Context, modelID int64, text string, pos *annotation.Point) (annotation.Note, error)
	DeleteNote(ctx context.Context, note annotation.Note) error
}

// App owns one viewer and the background work feeding it.
type App struct {
	cfg     config.Config
	log     zerolog.Logger
	backend Backend
	loader  *annotation.Loader
	viewer  *viewer.Viewer

	// Registry holds the viewer commands plus note and notes.
	Registry *commands.Registry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	prefs    config.Prefs
	noteText string
	notes    []annotation.Note
}

// New returns an app over a viewer built from opts. backend may be nil, in which case
// no annotations are loaded and placements are only logged.
func New(cfg config.Config, prefs config.Prefs, backend Backend, opts viewer.Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		log:      opts.Log.With().Str("component", "app").Logger(),
		backend:  backend,
		viewer:   viewer.New(opts),
		ctx:      ctx,
		cancel:   cancel,
		prefs:    prefs,
		noteText: DefaultNoteText,
	}
	if backend != nil {
		a.loader = annotation.NewLoader(backend, opts.Log)
	}
	a.viewer.SetPlaceFunc(a.place)
	a.Registry = commands.NewViewerRegistry(a)
	a.registerNoteCommands()
	return a
}

// Session returns the live session, or nil.
func (a *App) Session() *viewer.Session { return a.viewer.Session() }

// ResolveURL returns the model file location: the configured URL, else the file of the
// configured model record. A failed lookup is logged and yields "" so the placeholder
// is shown.
func (a *App) ResolveURL(ctx context.Context) string {
	if a.cfg.Model.URL != "" {
		return a.cfg.Model.URL
	}
	if a.cfg.Model.ID == 0 || a.backend == nil {
		return ""
	}
	m, err := a.backend.GetModel(ctx, a.cfg.Model.ID)
	if err != nil {
		a.log.Warn().Err(err).Int64("model", a.cfg.Model.ID).Msg("model lookup failed")
		return ""
	}
	if !m.HasAsset() {
		a.log.Warn().Int64("model", m.ID).Str("name", m.Name).Msg("model has no file")
		return ""
	}
	a.log.Info().Int64("model", m.ID).Str("name", m.Name).Msg("model resolved")
	return m.FileURL
}

// Start loads the model, starts the annotation fetch, then runs the configured
// commands.
func (a *App) Start(ctx context.Context) (*viewer.Session, error) {
	s, err := a.viewer.Load(a.ResolveURL(ctx))
	if err != nil {
		return nil, err
	}
	a.applyPrefs(s)
	a.loadAnnotations()
	for _, line := range a.cfg.Exec {
		a.Exec(line)
	}
	return a.viewer.Session(), nil
}

// Exec runs one console line, logging its error.
func (a *App) Exec(line string) {
	if err := a.Registry.ExecuteLine(line); err != nil {
		a.log.Warn().Err(err).Str("line", line).Msg("command failed")
	}
}

func (a *App) applyPrefs(s *viewer.Session) {
	a.mu.Lock()
	p := a.prefs
	a.mu.Unlock()
	s.SetGridVisible(p.GridVisible)
	s.SetAutoRotate(p.AutoRotate)
}

func (a *App) loadAnnotations() {
	if a.loader == nil || a.cfg.Model.ID == 0 {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.loader.Load(a.ctx, a.cfg.Model.ID, a.viewer.SetPins, func(notes []annotation.Note) {
			a.mu.Lock()
			a.notes = notes
			a.mu.Unlock()
			a.viewer.SetNotes(notes)
		})
	}()
}

// place turns a placement into a note at the hit point.
func (a *App) place(pos geom.Vec3, normal *geom.Vec3) {
	ev := a.log.Info().Float32("x", pos.X).Float32("y", pos.Y).Float32("z", pos.Z)
	if normal != nil {
		ev = ev.Float32("nx", normal.X).Float32("ny", normal.Y).Float32("nz", normal.Z)
	}
	ev.Msg("placement")
	if a.backend == nil || a.cfg.Model.ID == 0 {
		return
	}

	a.mu.Lock()
	text := a.noteText
	a.mu.Unlock()
	p := annotation.PointOf(pos)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		n, err := a.backend.CreateNote(a.ctx, a.cfg.Model.ID, text, &p)
		if err != nil {
			a.log.Warn().Err(err).Msg("note not saved")
			return
		}
		a.mu.Lock()
		a.notes = append(slices.Clone(a.notes), n)
		notes := a.notes
		a.mu.Unlock()
		a.viewer.SetNotes(notes)
	}()
}

// Notes returns the notes currently shown.
func (a *App) Notes() []annotation.Note {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.notes)
}

func (a *App) deleteNote(id int64) error {
	a.mu.Lock()
	i := slices.IndexFunc(a.notes, func(n annotation.Note) bool { return n.ID == id })
	if i < 0 {
		a.mu.Unlock()
		return fmt.Errorf("note %d not found", id)
	}
	target := a.notes[i]
	a.mu.Unlock()

	if a.backend == nil {
		return errors.New("no backend configured")
	}
	if err := a.backend.DeleteNote(a.ctx, target); err != nil {
		return err
	}

	a.mu.Lock()
	a.notes = slices.DeleteFunc(slices.Clone(a.notes), func(n annotation.Note) bool { return n.ID == id })
	notes := a.notes
	a.mu.Unlock()
	a.viewer.SetNotes(notes)
	return nil
}

func (a *App) registerNoteCommands() {
	note := pflag.NewFlagSet("note", pflag.ContinueOnError)
	text := note.String("text", "", "text of the next placed note")
	del := note.Int64("delete", 0, "delete the note with this id")
	a.Registry.Register("note", "--text TEXT | --delete ID", note, func() error {
		switch {
		case *del != 0:
			return a.deleteNote(*del)
		case *text != "":
			a.mu.Lock()
			a.noteText = strings.Join(append([]string{*text}, note.Args()...), " ")
			a.mu.Unlock()
			return nil
		}
		return errors.New("note: pass --text or --delete")
	})

	a.Registry.Register("notes", "list the notes", pflag.NewFlagSet("notes", pflag.ContinueOnError), func() error {
		for _, n := range a.Notes() {
			a.log.Info().Int64("id", n.ID).Str("author", n.Author).Bool("anchored", n.Anchored()).Msg(n.Text)
		}
		return nil
	})
}

// Wait blocks until background fetches and note saves finish.
func (a *App) Wait() { a.wg.Wait() }

// Prefs returns the preferences with the live session's toggles folded in.
func (a *App) Prefs() config.Prefs {
	a.mu.Lock()
	p := a.prefs
	a.mu.Unlock()
	if s := a.viewer.Session(); s != nil {
		p.GridVisible = s.GridVisible()
		p.AutoRotate = s.AutoRotate()
	}
	return p
}

// Close cancels background work, waits for it, and tears down the session.
func (a *App) Close() {
	a.cancel()
	a.wg.Wait()
	a.viewer.Close()
}
