package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/internal/annotation"
)

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:8000/api/", 1, nil)
	assert.Equal(t, "http://localhost:8000/api", c.baseURL)
	assert.NotNil(t, c.httpClient)
	assert.Equal(t, "", c.User())
}

func TestListPins_FollowsNext(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/institutions/3/models/7/pins/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"count":3,"next":null,"previous":"x","results":[{"id":3,"model":7}]}`)
			return
		}
		next := srv.URL + r.URL.Path + "?page=2"
		fmt.Fprintf(w, `{"count":3,"next":%q,"previous":null,"results":[
			{"id":1,"model":7,"position":{"x":1,"y":2,"z":3},"label":"a","order":0},
			{"id":2,"model":7,"position":{"x":0,"y":0,"z":0},"normal":{"x":0,"y":1,"z":0},"order":1}]}`, next)
	}))
	defer srv.Close()

	c := New(srv.URL, 3, StaticCredentials{AccessToken: "tok", Username: "ana"})
	pins, err := c.ListPins(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, pins, 3)
	assert.Equal(t, &annotation.Point{X: 1, Y: 2, Z: 3}, pins[0].Position)
	assert.Equal(t, &annotation.Point{X: 0, Y: 1, Z: 0}, pins[1].Normal)
	// The malformed record still comes back; the viewer skips it.
	assert.Nil(t, pins[2].Position)
}

func TestList_AcceptsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/topics/4/models/", r.URL.Path)
		fmt.Fprint(w, `[{"id":10,"topic":4,"name":"Femur","file":"https://cdn/femur.glb"}]`)
	}))
	defer srv.Close()

	models, err := New(srv.URL, 1, nil).ListModels(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "Femur", models[0].Name)
	assert.True(t, models[0].HasAsset())
}

func TestList_DetectsLoop(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"count":1,"next":%q,"results":[]}`, srv.URL+r.URL.Path)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 1, nil).ListCourses(context.Background())
	assert.Error(t, err)
}

func TestList_StopsAtPageLimit(t *testing.T) {
	var hits atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		fmt.Fprintf(w, `{"count":0,"next":"%s%s?page=%d","results":[{"id":%d}]}`, srv.URL, r.URL.Path, n+1, n)
	}))
	defer srv.Close()

	courses, err := New(srv.URL, 1, nil).ListCourses(context.Background())
	require.ErrorIs(t, err, ErrTooManyPages)
	assert.Nil(t, courses)
	assert.Equal(t, int32(maxPages), hits.Load())
}

func TestListNotes_FiltersDeleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":2,"next":null,"results":[
			{"id":1,"model":7,"author":"ana","text":"live"},
			{"id":2,"model":7,"author":"ana","text":"gone","deleted_at":"2026-01-02T03:04:05Z"}]}`)
	}))
	defer srv.Close()

	notes, err := New(srv.URL, 1, nil).ListNotes(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "live", notes[0].Text)
}

func TestCreateNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/institutions/2/models/5/notes/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body noteRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) || !assert.NotNil(t, body.Position) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "origin of the muscle", body.Text)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":42,"model":5,"author":"ana","text":%q,"position":{"x":%g,"y":%g,"z":%g}}`,
			body.Text, body.Position.X, body.Position.Y, body.Position.Z)
	}))
	defer srv.Close()

	c := New(srv.URL, 2, StaticCredentials{AccessToken: "t", Username: "ana"})
	n, err := c.CreateNote(context.Background(), 5, "origin of the muscle", &annotation.Point{X: 0.5, Y: 1, Z: -2})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n.ID)
	assert.Equal(t, float32(-2), n.Position.Z)

	_, err = c.CreateNote(context.Background(), 5, "", nil)
	assert.Error(t, err)
}

func TestDeleteNote_OnlyAuthor(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/institutions/2/notes/9/", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, 2, StaticCredentials{AccessToken: "t", Username: "ana"})
	err := c.DeleteNote(context.Background(), annotation.Note{ID: 9, Author: "ben"})
	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, c.DeleteNote(context.Background(), annotation.Note{ID: 9, Author: "ana"}))
	assert.Equal(t, int32(1), calls.Load())

	anon := New(srv.URL, 2, nil)
	assert.ErrorIs(t, anon.DeleteNote(context.Background(), annotation.Note{ID: 9}), ErrNotAuthor)
}

func TestGetModel_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 1, nil).GetModel(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Not found.")
}

func TestHierarchyPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `{"count":0,"next":null,"results":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, 6, nil)
	ctx := context.Background()
	_, err := c.ListCourses(ctx)
	require.NoError(t, err)
	_, err = c.ListSemesters(ctx, 1)
	require.NoError(t, err)
	_, err = c.ListSections(ctx, 2)
	require.NoError(t, err)
	_, err = c.ListTopics(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/institutions/6/courses/",
		"/courses/1/semesters/",
		"/semesters/2/sections/",
		"/sections/3/topics/",
	}, paths)
}
