package graphics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"model-viewer/internal/annotation"
	"model-viewer/internal/scene"
	"model-viewer/internal/viewer"
)

const (
	hudFontSize   = 20
	hudPadding    = 12
	hudLineHeight = hudFontSize + 4
	labelFontSize = 16
	pinRadius     = 7
	noteRadius    = 5
	// updateInterval: only refresh FPS text every N frames to reduce allocations.
	updateInterval = 30
)

var (
	hudPanelColor   = rl.NewColor(24, 24, 24, 200)
	warningColor    = rl.NewColor(245, 197, 66, 255)
	defaultPinColor = rl.NewColor(229, 72, 77, 255)
	noteColor       = rl.NewColor(245, 197, 66, 255)
	labelColor      = rl.NewColor(230, 230, 230, 255)
)

// HUD draws the 2D overlay: FPS, load progress and warnings, edit mode, and the pin and
// note markers. All state is read from the session once per frame.
type HUD struct {
	ShowFPS    bool
	frameCount uint32
	fpsText    string

	pins  []annotation.ProjectedPin
	notes []annotation.ProjectedNote
}

// NewHUD returns a HUD with the FPS counter hidden.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the overlay for s. Call after the 3D pass and before the console.
func (h *HUD) Draw(s *viewer.Session) {
	h.frameCount++
	screenW := int32(rl.GetScreenWidth())

	if h.ShowFPS {
		if h.fpsText == "" || h.frameCount%updateInterval == 0 {
			h.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		w := rl.MeasureText(h.fpsText, hudFontSize)
		rl.DrawText(h.fpsText, screenW-w-hudPadding, hudPadding, hudFontSize, rl.Green)
	}
	if s == nil {
		return
	}

	h.pins = s.ProjectedPins(h.pins)
	h.notes = s.ProjectedNotes(h.notes)
	for _, p := range h.pins {
		if !p.Visible {
			continue
		}
		c := defaultPinColor
		if parsed, err := scene.ParseColor(p.Pin.Color); p.Pin.Color != "" && err == nil {
			c = parsed
		}
		x, y := int32(p.X), int32(p.Y)
		rl.DrawCircle(x, y, pinRadius, c)
		rl.DrawCircleLines(x, y, pinRadius, rl.White)
		if p.Pin.Label != "" {
			rl.DrawText(p.Pin.Label, x+pinRadius+4, y-labelFontSize/2, labelFontSize, labelColor)
		}
	}
	for _, n := range h.notes {
		if n.Visible {
			rl.DrawCircle(int32(n.X), int32(n.Y), noteRadius, noteColor)
		}
	}

	y := int32(hudPadding)
	st := s.LoadState()
	if st.Loading {
		text := "Loading model..."
		if st.Progress >= 0 {
			text = fmt.Sprintf("Loading model... %.0f%%", st.Progress)
		}
		h.panel(text, y, rl.White)
		y += hudLineHeight + hudPadding
	}
	if msg := st.Warning(); msg != "" {
		h.panel(msg+"  (F2 to dismiss)", y, warningColor)
		y += hudLineHeight + hudPadding
	}
	if s.EditMode() {
		h.panel("Edit mode: double-click the model to place a note", y, labelColor)
	}
}

func (h *HUD) panel(text string, y int32, c rl.Color) {
	w := rl.MeasureText(text, hudFontSize)
	rl.DrawRectangle(hudPadding, y, w+2*hudPadding, hudLineHeight+hudPadding/2, hudPanelColor)
	rl.DrawText(text, 2*hudPadding, y+hudPadding/4, hudFontSize, c)
}
