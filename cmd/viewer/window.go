package main

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"

	"model-viewer/internal/app"
	"model-viewer/internal/config"
	"model-viewer/internal/graphics"
	"model-viewer/internal/logger"
	"model-viewer/internal/viewer"
)

// runWindow shows the viewer in a raylib window until it is closed or ctx is done and
// returns the preferences to persist.
func runWindow(ctx context.Context, cfg config.Config, prefs config.Prefs, backend app.Backend, base viewer.Options, log *logger.Logger) config.Prefs {
	var (
		a       *app.App
		win     *graphics.Window
		sched   = &viewer.ManualScheduler{}
		hud     = graphics.NewHUD()
		console *graphics.Console
	)
	hud.ShowFPS = prefs.ShowFPS

	setup := func() {
		win = graphics.NewWindow()
		base.Surface = win
		base.NewRenderer = func() viewer.Renderer { return graphics.NewRenderer() }
		base.Scheduler = sched
		a = app.New(cfg, prefs, backend, base)
		console = graphics.NewConsole(log, a.Registry)
		console.Hotkeys = hotkeys(a, hud)
		console.SetOpen(prefs.ShowLog)
		if _, err := a.Start(ctx); err != nil {
			log.Error().Err(err).Msg("viewer start failed")
		}
	}
	update := func() {
		console.Update()
		win.Blocked = console.IsOpen()
		win.Poll()
	}
	draw := func() {
		if !sched.Step(1) {
			rl.ClearBackground(rl.Black)
		}
		hud.Draw(a.Session())
		console.Draw()
	}

	graphics.Run(graphics.Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
		Setup:  setup,
		Quit:   func() bool { return ctx.Err() != nil },
	}, update, draw)

	p := a.Prefs()
	p.ShowFPS = hud.ShowFPS
	p.ShowLog = console.IsOpen()
	a.Close()
	return p
}

// hotkeys binds single keys to console lines while the console is closed.
func hotkeys(a *app.App, hud *graphics.HUD) []graphics.Hotkey {
	line := func(s string) func() string { return func() string { return s } }
	toggle := func(cmd string) func() string { return line(cmd + " --toggle") }
	return []graphics.Hotkey{
		{Key: rl.KeyR, Line: line("reset")},
		{Key: rl.KeyEqual, Line: line("zoom --in")},
		{Key: rl.KeyKpAdd, Line: line("zoom --in")},
		{Key: rl.KeyMinus, Line: line("zoom --out")},
		{Key: rl.KeyKpSubtract, Line: line("zoom --out")},
		{Key: rl.KeyA, Line: toggle("autorotate")},
		{Key: rl.KeyE, Line: toggle("edit")},
		{Key: rl.KeyG, Line: func() string {
			if a.GridVisible() {
				return "grid --hide"
			}
			return "grid --show"
		}},
		{Key: rl.KeyN, Line: line("notes")},
		{Key: rl.KeyF1, Line: func() string {
			hud.ShowFPS = !hud.ShowFPS
			return ""
		}},
		{Key: rl.KeyF2, Line: line("dismiss")},
		{Key: rl.KeyF5, Line: line("reload")},
	}
}
