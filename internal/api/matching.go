package api

import (
	"context"
	"net/url"

	"github.com/jonathan/careermatch/internal/schemas"
	"github.com/jonathan/careermatch/internal/skills"
	"github.com/jonathan/careermatch/internal/types"
)

// Matching returns the user's matching result. Cards are only populated
// when the result is ready.
func (c *Client) Matching(ctx context.Context) (*types.MatchingResponse, error) {
	var resp types.MatchingResponse
	if err := c.getJSON(ctx, "/api/matching", nil, schemas.Matching, &resp); err != nil {
		return nil, err
	}
	if !resp.Ready() {
		resp.Data = nil
	}
	return &resp, nil
}

// Explain returns the detailed analysis for one matched job.
func (c *Client) Explain(ctx context.Context, jobID string) (*types.MatchingExplain, error) {
	path := "/api/matching/" + url.PathEscape(jobID) + "/explain"
	var e types.MatchingExplain
	if err := c.getJSON(ctx, path, nil, schemas.Explain, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// CoursesBySkills returns courses recommended for the given skills.
func (c *Client) CoursesBySkills(ctx context.Context, skillNames []string) ([]types.RecommendedCourse, error) {
	const path = "/api/courses/by-skills"
	var courses []types.RecommendedCourse
	if err := c.getJSON(ctx, path, skills.CourseQuery(skillNames), schemas.Courses, &courses); err != nil {
		return nil, err
	}
	if err := types.ValidateAll(courses); err != nil {
		return nil, &DecodeError{Path: path, Cause: err}
	}
	return courses, nil
}
