package api

import (
	"context"
	"fmt"
	"net/http"

	"model-viewer/internal/annotation"
)

var _ annotation.Store = (*Client)(nil)

// ListPins returns every pin of a model.
func (c *Client) ListPins(ctx context.Context, modelID int64) ([]annotation.Pin, error) {
	return list[annotation.Pin](ctx, c, c.url("/institutions/%d/models/%d/pins/", c.institution, modelID))
}

// ListNotes returns the notes of a model that have not been deleted.
func (c *Client) ListNotes(ctx context.Context, modelID int64) ([]annotation.Note, error) {
	notes, err := list[annotation.Note](ctx, c, c.url("/institutions/%d/models/%d/notes/", c.institution, modelID))
	if err != nil {
		return nil, err
	}
	live := notes[:0]
	for _, n := range notes {
		if !n.Deleted() {
			live = append(live, n)
		}
	}
	return live, nil
}

type noteRequest struct {
	Text     string            `json:"text"`
	Position *annotation.Point `json:"position,omitempty"`
}

// CreateNote adds a note by the signed-in user. pos may be nil for a note that is not
// anchored to the model.
func (c *Client) CreateNote(ctx context.Context, modelID int64, text string, pos *annotation.Point) (annotation.Note, error) {
	if text == "" {
		return annotation.Note{}, fmt.Errorf("api: create note: empty text")
	}
	var n annotation.Note
	err := c.do(ctx, http.MethodPost, c.url("/institutions/%d/models/%d/notes/", c.institution, modelID),
		noteRequest{Text: text, Position: pos}, &n)
	if err != nil {
		return annotation.Note{}, err
	}
	return n, nil
}

// DeleteNote soft-deletes a note. Only the note's author may delete it.
func (c *Client) DeleteNote(ctx context.Context, note annotation.Note) error {
	if u := c.User(); u == "" || note.Author != u {
		return ErrNotAuthor
	}
	return c.do(ctx, http.MethodDelete, c.url("/institutions/%d/notes/%d/", c.institution, note.ID), nil, nil)
}
