package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListProjectsOptions contains optional filters for listing projects.
// Zero values fall back to the defaults the web client uses.
type ListProjectsOptions struct {
	// Status filters by lifecycle state. Default: ACTIVE.
	Status ProjectStatus
	// Page is the zero-based page index.
	Page int
	// Size is the page size. Default: 50.
	Size int
	// Sort is "field,DIRECTION". Default: "updatedAt,DESC".
	Sort string
}

// ListProjects retrieves the caller's projects. The backend answers with a
// Spring page; a bare array is accepted as well.
func (c *Client) ListProjects(ctx context.Context, opts *ListProjectsOptions) ([]Project, error) {
	query := url.Values{
		"status": {string(ProjectActive)},
		"page":   {"0"},
		"size":   {"50"},
		"sort":   {"updatedAt,DESC"},
	}
	if opts != nil {
		if opts.Status != "" {
			query.Set("status", string(opts.Status))
		}
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.Size > 0 {
			query.Set("size", strconv.Itoa(opts.Size))
		}
		if opts.Sort != "" {
			query.Set("sort", opts.Sort)
		}
	}

	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/api/projects", query, nil, &raw); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects, err := decodeList[Project](raw)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a single project.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := c.call(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, fmt.Errorf("getting project %q: %w", id, err)
	}
	return &p, nil
}

// CreateProject creates a project owned by the caller.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	var p Project
	if err := c.call(ctx, http.MethodPost, "/api/projects", nil, in, &p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &p, nil
}

// UpdateProject changes a project's title, description or status.
func (c *Client) UpdateProject(ctx context.Context, id string, in UpdateProjectInput) (*Project, error) {
	var p Project
	if err := c.call(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(id), nil, in, &p); err != nil {
		return nil, fmt.Errorf("updating project %q: %w", id, err)
	}
	return &p, nil
}

// DeleteProject removes a project and its tasks. The backend refuses with
// 409 Conflict unless force is set.
func (c *Client) DeleteProject(ctx context.Context, id string, force bool) error {
	query := url.Values{"force": {strconv.FormatBool(force)}}
	if err := c.call(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), query, nil, nil); err != nil {
		return fmt.Errorf("deleting project %q: %w", id, err)
	}
	return nil
}

// decodeList accepts either a Spring page or a bare JSON array.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		return items, nil
	}

	var page Page[T]
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}
	if page.Content == nil {
		return []T{}, nil
	}
	return page.Content, nil
}
