package app

import (
	"model-viewer/internal/commands"
	"model-viewer/internal/viewer"
)

var _ commands.Target = (*App)(nil)

func (a *App) withSession(fn func(*viewer.Session)) {
	if s := a.viewer.Session(); s != nil {
		fn(s)
	}
}

func (a *App) Reset()   { a.withSession((*viewer.Session).Reset) }
func (a *App) ZoomIn()  { a.withSession((*viewer.Session).ZoomIn) }
func (a *App) ZoomOut() { a.withSession((*viewer.Session).ZoomOut) }

func (a *App) DismissWarning() { a.withSession((*viewer.Session).DismissWarning) }

func (a *App) SetAutoRotate(on bool) {
	a.mu.Lock()
	a.prefs.AutoRotate = on
	a.mu.Unlock()
	a.withSession(func(s *viewer.Session) { s.SetAutoRotate(on) })
}

func (a *App) AutoRotate() bool { return a.Prefs().AutoRotate }

func (a *App) SetGridVisible(on bool) {
	a.mu.Lock()
	a.prefs.GridVisible = on
	a.mu.Unlock()
	a.withSession(func(s *viewer.Session) { s.SetGridVisible(on) })
}

// GridVisible reports whether the ground grid is shown.
func (a *App) GridVisible() bool { return a.Prefs().GridVisible }

func (a *App) SetEditMode(on bool) { a.viewer.SetEditMode(on) }
func (a *App) EditMode() bool      { return a.viewer.EditMode() }

// Reload rebuilds the session for the same model, keeping the grid and auto-rotate
// toggles.
func (a *App) Reload() error {
	p := a.Prefs()
	a.mu.Lock()
	a.prefs = p
	a.mu.Unlock()
	s, err := a.viewer.Reload()
	if err != nil {
		return err
	}
	a.applyPrefs(s)
	return nil
}
