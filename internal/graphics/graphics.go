// Package graphics hosts the viewer in a raylib window: the window is the viewer's
// surface, raylib draws the scene, and a console and HUD sit on top.
package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Options configure the window.
type Options struct {
	Width  int
	Height int
	Title  string
	FPS    int
	// Setup runs once the window and its GL context exist.
	Setup func()
	// Quit, when set, ends the loop as soon as it returns true.
	Quit func() bool
}

// Run opens the window and runs the main loop until it is closed. Each frame it calls
// update (input), then clears the screen and calls draw. raylib must be driven from the
// main goroutine.
func Run(opts Options, update, draw func()) {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull) // ESC toggles the console; close via the window button
	rl.SetTargetFPS(int32(opts.FPS))
	if opts.Setup != nil {
		opts.Setup()
	}

	for !rl.WindowShouldClose() && (opts.Quit == nil || !opts.Quit()) {
		update()

		rl.BeginDrawing()
		draw()
		rl.EndDrawing()
	}
}
