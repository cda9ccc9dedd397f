package app

import (
	"context"
	"errors"

	"github.com/dustin/go-humanize"

	"model-viewer/internal/config"
	"model-viewer/internal/snapshot"
	"model-viewer/internal/viewer"
)

var errNoCanvas = errors.New("headless: session has no off-screen renderer")

// HeadlessViewerOptions returns viewer options drawing each session into its own
// off-screen canvas at the configured window size, ticked by a TickerScheduler.
func HeadlessViewerOptions(cfg config.Config, base viewer.Options) (viewer.Options, *viewer.TickerScheduler) {
	w, h := cfg.Window.Width, cfg.Window.Height
	sched := viewer.NewTickerScheduler(cfg.Headless.Hz, cfg.Headless.Frames)
	base.Surface = snapshot.NewSurface(w, h)
	base.NewRenderer = func() viewer.Renderer { return snapshot.NewRenderer(w, h) }
	base.Scheduler = sched
	return base, sched
}

// RunHeadless starts the app, waits for the model and annotations, lets the ticker run
// its frames, then renders one final frame with markers and writes the snapshot and
// thumbnail. With no frame budget the loop is stopped as soon as the model and
// annotations are in.
func RunHeadless(ctx context.Context, a *App, sched *viewer.TickerScheduler) error {
	s, err := a.Start(ctx)
	if err != nil {
		return err
	}
	if !waitFor(ctx, s.LoadDone()) {
		return ctx.Err()
	}
	done := make(chan struct{})
	go func() {
		a.Wait()
		close(done)
	}()
	if !waitFor(ctx, done) {
		return ctx.Err()
	}
	if sched.MaxTicks > 0 && !waitFor(ctx, sched.Done()) {
		return ctx.Err()
	}
	sched.Stop()

	// The loop may have ended before the model landed, and --exec may have replaced the
	// session; render the live one once more.
	s = a.Session()
	if s == nil {
		return context.Canceled
	}
	r, ok := s.Renderer().(*snapshot.Renderer)
	if !ok {
		return errNoCanvas
	}
	s.Tick()
	r.DrawMarkers(s.ProjectedPins(nil), s.ProjectedNotes(nil))

	h := a.cfg.Headless
	if err := snapshot.Export(r, h.Snapshot, h.Thumbnail, h.ThumbSize); err != nil {
		return err
	}
	rendered, skipped := s.Frames()
	st := s.LoadState()
	a.log.Info().
		Str("snapshot", h.Snapshot).
		Str("thumbnail", h.Thumbnail).
		Str("frames", humanize.Comma(int64(rendered))).
		Uint64("skipped", skipped).
		Bool("placeholder", st.Placeholder).
		Str("warning", st.Warning()).
		Msg("headless run finished")
	return nil
}

func waitFor(ctx context.Context, ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}
