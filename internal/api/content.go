package api

import (
	"context"
	"net/http"

	"model-viewer/internal/content"
)

func (c *Client) ListCourses(ctx context.Context) ([]content.Course, error) {
	return list[content.Course](ctx, c, c.url("/institutions/%d/courses/", c.institution))
}

func (c *Client) ListSemesters(ctx context.Context, courseID int64) ([]content.Semester, error) {
	return list[content.Semester](ctx, c, c.url("/courses/%d/semesters/", courseID))
}

func (c *Client) ListSections(ctx context.Context, semesterID int64) ([]content.Section, error) {
	return list[content.Section](ctx, c, c.url("/semesters/%d/sections/", semesterID))
}

func (c *Client) ListTopics(ctx context.Context, sectionID int64) ([]content.Topic, error) {
	return list[content.Topic](ctx, c, c.url("/sections/%d/topics/", sectionID))
}

func (c *Client) ListModels(ctx context.Context, topicID int64) ([]content.Model, error) {
	return list[content.Model](ctx, c, c.url("/topics/%d/models/", topicID))
}

// GetModel returns one model record.
func (c *Client) GetModel(ctx context.Context, id int64) (content.Model, error) {
	var m content.Model
	if err := c.do(ctx, http.MethodGet, c.url("/models/%d/", id), nil, &m); err != nil {
		return content.Model{}, err
	}
	return m, nil
}
