package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

// Target is what the viewer commands act on.
type Target interface {
	Reset()
	ZoomIn()
	ZoomOut()
	SetAutoRotate(on bool)
	AutoRotate() bool
	SetEditMode(on bool)
	EditMode() bool
	SetGridVisible(on bool)
	DismissWarning()
	Reload() error
}

var errOneOf = errors.New("pass exactly one of the flags")

// onOffToggle resolves --on/--off/--toggle against the current state.
func onOffToggle(on, off, toggle bool, current bool) (bool, error) {
	n := 0
	for _, b := range []bool{on, off, toggle} {
		if b {
			n++
		}
	}
	if n != 1 {
		return false, errOneOf
	}
	switch {
	case on:
		return true, nil
	case off:
		return false, nil
	}
	return !current, nil
}

// NewViewerRegistry registers reset, zoom, autorotate, edit, grid, dismiss and reload
// against t.
func NewViewerRegistry(t Target) *Registry {
	r := NewRegistry()

	r.Register("reset", "restore the default camera", pflag.NewFlagSet("reset", pflag.ContinueOnError), func() error {
		t.Reset()
		return nil
	})

	zoom := pflag.NewFlagSet("zoom", pflag.ContinueOnError)
	zoomIn := zoom.Bool("in", false, "move closer")
	zoomOut := zoom.Bool("out", false, "move away")
	r.Register("zoom", "--in | --out", zoom, func() error {
		switch {
		case *zoomIn && !*zoomOut:
			t.ZoomIn()
		case *zoomOut && !*zoomIn:
			t.ZoomOut()
		default:
			return fmt.Errorf("zoom: %w (--in, --out)", errOneOf)
		}
		return nil
	})

	rot := pflag.NewFlagSet("autorotate", pflag.ContinueOnError)
	rotOn := rot.Bool("on", false, "enable")
	rotOff := rot.Bool("off", false, "disable")
	rotToggle := rot.Bool("toggle", false, "flip")
	r.Register("autorotate", "--on | --off | --toggle", rot, func() error {
		v, err := onOffToggle(*rotOn, *rotOff, *rotToggle, t.AutoRotate())
		if err != nil {
			return fmt.Errorf("autorotate: %w", err)
		}
		t.SetAutoRotate(v)
		return nil
	})

	edit := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	editOn := edit.Bool("on", false, "enable pin placement")
	editOff := edit.Bool("off", false, "disable pin placement")
	editToggle := edit.Bool("toggle", false, "flip")
	r.Register("edit", "--on | --off | --toggle", edit, func() error {
		v, err := onOffToggle(*editOn, *editOff, *editToggle, t.EditMode())
		if err != nil {
			return fmt.Errorf("edit: %w", err)
		}
		t.SetEditMode(v)
		return nil
	})

	grid := pflag.NewFlagSet("grid", pflag.ContinueOnError)
	show := grid.Bool("show", false, "show the ground grid")
	hide := grid.Bool("hide", false, "hide the ground grid")
	r.Register("grid", "--show | --hide", grid, func() error {
		if *show == *hide {
			return fmt.Errorf("grid: %w (--show, --hide)", errOneOf)
		}
		t.SetGridVisible(*show)
		return nil
	})

	r.Register("dismiss", "hide the load warning", pflag.NewFlagSet("dismiss", pflag.ContinueOnError), func() error {
		t.DismissWarning()
		return nil
	})

	r.Register("reload", "load the model again", pflag.NewFlagSet("reload", pflag.ContinueOnError), t.Reload)

	return r
}
