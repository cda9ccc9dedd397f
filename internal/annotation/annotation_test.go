package annotation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/internal/camera"
	"model-viewer/internal/geom"
)

func frontCamera(w, h int) geom.Mat4 {
	c := camera.New()
	c.Position = geom.V3(0, 0, 5)
	c.SetAspect(w, h)
	return c.ViewProjection()
}

func TestProjectPoint_InFrontIsVisible(t *testing.T) {
	vp := frontCamera(800, 600)
	x, y, visible := ProjectPoint(vp, geom.Zero3, 800, 600)
	assert.True(t, visible)
	assert.InDelta(t, 400, x, 1e-3)
	assert.InDelta(t, 300, y, 1e-3)

	// Up in world space is up on screen, which is a smaller y.
	_, y, visible = ProjectPoint(vp, geom.V3(0, 1, 0), 800, 600)
	assert.True(t, visible)
	assert.Less(t, y, float32(300))
}

func TestProjectPoint_WithinSurfaceAlongLookDirection(t *testing.T) {
	c := camera.New()
	c.SetAspect(400, 300)
	vp := c.ViewProjection()
	for _, d := range []float32{0.5, 1, 3, 10, 100} {
		p := c.Position.Add(c.Direction().MulScalar(d))
		x, y, visible := ProjectPoint(vp, p, 400, 300)
		assert.True(t, visible, "distance %v", d)
		assert.True(t, x >= 0 && x <= 400, "x=%v", x)
		assert.True(t, y >= 0 && y <= 300, "y=%v", y)
	}
}

func TestProjectPoint_BehindCameraIsHidden(t *testing.T) {
	c := camera.New()
	c.SetAspect(800, 600)
	vp := c.ViewProjection()
	for _, d := range []float32{0.001, 1, 50} {
		p := c.Position.Sub(c.Direction().MulScalar(d))
		_, _, visible := ProjectPoint(vp, p, 800, 600)
		assert.False(t, visible, "distance %v", d)
	}
	_, _, visible := ProjectPoint(vp, c.Position, 800, 600)
	assert.False(t, visible)
}

func TestProjectPoint_BeyondFarIsHidden(t *testing.T) {
	vp := frontCamera(800, 600)
	_, _, visible := ProjectPoint(vp, geom.V3(0, 0, -300), 800, 600)
	assert.False(t, visible)
}

func TestProjectPins_ReusesBuffer(t *testing.T) {
	vp := frontCamera(800, 600)
	pins := []Pin{
		{ID: 1, Position: &Point{0, 0, 0}},
		{ID: 2, Position: &Point{0, 0, 10}},
	}
	out := ProjectPins(nil, vp, pins, 800, 600)
	require.Len(t, out, 2)
	assert.Same(t, &pins[0], out[0].Pin)
	assert.True(t, out[0].Visible)
	assert.False(t, out[1].Visible)

	first := &out[0]
	out = ProjectPins(out, vp, pins, 800, 600)
	assert.Same(t, first, &out[0])

	assert.Empty(t, ProjectPins(out, vp, nil, 800, 600))
}

func TestProjectNotes(t *testing.T) {
	vp := frontCamera(800, 600)
	notes := []Note{{ID: 9, Position: &Point{0, 0, 0}}}
	out := ProjectNotes(nil, vp, notes, 800, 600)
	require.Len(t, out, 1)
	assert.True(t, out[0].Visible)
	assert.InDelta(t, 400, out[0].X, 1e-3)
}

func TestSanitizePins_SkipsMalformedAndCopies(t *testing.T) {
	in := []Pin{
		{ID: 1, Position: &Point{1, 2, 3}, Normal: &Point{0, 1, 0}, Label: "femur"},
		{ID: 2},
		{ID: 3, Position: &Point{0, 0, 0}},
	}
	out := SanitizePins(in)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
	assert.Equal(t, "femur", out[0].Label)

	in[0].Position.X = 99
	in[0].Normal.Y = -1
	assert.Equal(t, float32(1), out[0].Position.X)
	assert.Equal(t, float32(1), out[0].Normal.Y)
	assert.Empty(t, SanitizePins(nil))
}

func TestSanitizeNotes(t *testing.T) {
	now := time.Now()
	in := []Note{
		{ID: 1, Author: "ana", Position: &Point{1, 1, 1}, Text: "keep"},
		{ID: 2, Author: "ana", Text: "no anchor"},
		{ID: 3, Author: "ana", Position: &Point{1, 1, 1}, DeletedAt: &now},
	}
	out := SanitizeNotes(in)
	require.Len(t, out, 1)
	assert.Equal(t, "keep", out[0].Text)
	assert.NotSame(t, in[0].Position, out[0].Position)
}

type fakeStore struct {
	pins     []Pin
	notes    []Note
	pinsErr  error
	notesErr error
}

func (f *fakeStore) ListPins(context.Context, int64) ([]Pin, error) { return f.pins, f.pinsErr }

func (f *fakeStore) ListNotes(context.Context, int64) ([]Note, error) { return f.notes, f.notesErr }

func TestLoader_FailureYieldsEmptyList(t *testing.T) {
	store := &fakeStore{
		pinsErr: errors.New("boom"),
		notes:   []Note{{ID: 1, Position: &Point{0, 0, 0}, Text: "n"}},
	}
	var mu sync.Mutex
	var gotPins []Pin
	var gotNotes []Note
	pinsCalled := false
	l := NewLoader(store, zerolog.Nop())
	err := l.Load(context.Background(), 7,
		func(p []Pin) { mu.Lock(); gotPins, pinsCalled = p, true; mu.Unlock() },
		func(n []Note) { mu.Lock(); gotNotes = n; mu.Unlock() })
	require.NoError(t, err)
	assert.True(t, pinsCalled)
	assert.Empty(t, gotPins)
	assert.Len(t, gotNotes, 1)
}

func TestLoader_CancelledSkipsCallbacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	l := NewLoader(&fakeStore{}, zerolog.Nop())
	err := l.Load(ctx, 1, func([]Pin) { called = true }, func([]Note) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
