package annotation

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Store reads the annotation records of a model.
type Store interface {
	ListPins(ctx context.Context, modelID int64) ([]Pin, error)
	ListNotes(ctx context.Context, modelID int64) ([]Note, error)
}

// Loader fetches pins and notes concurrently. A failed fetch is logged and treated as an
// empty list so the viewer stays usable.
type Loader struct {
	Store Store
	Log   zerolog.Logger
}

// NewLoader returns a loader reading from store.
func NewLoader(store Store, log zerolog.Logger) *Loader {
	return &Loader{Store: store, Log: log.With().Str("component", "annotations").Logger()}
}

// Load fetches both lists for modelID. Each callback runs as soon as its own fetch
// resolves, so pins and notes may arrive in either order. Callbacks are skipped once ctx
// is cancelled. Load returns after both fetches finish.
func (l *Loader) Load(ctx context.Context, modelID int64, onPins func([]Pin), onNotes func([]Note)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pins, err := l.Store.ListPins(gctx, modelID)
		if err != nil {
			l.Log.Warn().Err(err).Int64("model", modelID).Msg("pin fetch failed")
			pins = nil
		}
		if ctx.Err() == nil && onPins != nil {
			onPins(SanitizePins(pins))
		}
		return nil
	})
	g.Go(func() error {
		notes, err := l.Store.ListNotes(gctx, modelID)
		if err != nil {
			l.Log.Warn().Err(err).Int64("model", modelID).Msg("note fetch failed")
			notes = nil
		}
		if ctx.Err() == nil && onNotes != nil {
			onNotes(SanitizeNotes(notes))
		}
		return nil
	})
	_ = g.Wait()
	return ctx.Err()
}
