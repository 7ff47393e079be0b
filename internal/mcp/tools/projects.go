package tools

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// ProjectsListInput is the input for taskraum_projects_list.
type ProjectsListInput struct {
	Status string `json:"status,omitempty" jsonschema:"Project status to list: ACTIVE (default), PAUSED or ARCHIVED"`
	Page   int    `json:"page,omitempty" jsonschema:"Zero-based page number"`
	Size   int    `json:"size,omitempty" jsonschema:"Page size"`
}

// ProjectsListOutput is the output for taskraum_projects_list.
type ProjectsListOutput struct {
	Projects []client.Project `json:"projects,omitzero"`
	Count    int              `json:"count"`
}

// ProjectGetInput is the input for taskraum_project_get.
type ProjectGetInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	Fresh     bool   `json:"fresh,omitempty" jsonschema:"Bypass the local cache and fetch from the server"`
}

// ProjectOutput wraps a single project.
type ProjectOutput struct {
	Project client.Project `json:"project"`
	Cached  bool           `json:"cached,omitempty"`
}

// ProjectCreateInput is the input for taskraum_project_create.
type ProjectCreateInput struct {
	Title       string `json:"title" jsonschema:"Project title, 1 to 120 characters"`
	Description string `json:"description,omitempty" jsonschema:"Optional description"`
}

// ProjectUpdateInput is the input for taskraum_project_update. Omitted
// fields keep their current value.
type ProjectUpdateInput struct {
	ProjectID   string  `json:"project_id" jsonschema:"Project ID"`
	Title       *string `json:"title,omitempty" jsonschema:"New title"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	Status      string  `json:"status,omitempty" jsonschema:"New status: ACTIVE, PAUSED or ARCHIVED"`
}

// ProjectDeleteInput is the input for taskraum_project_delete.
type ProjectDeleteInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	Force     bool   `json:"force,omitempty" jsonschema:"Must be true to delete the project together with its tasks"`
}

// DeleteOutput confirms a deletion.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// ToolProjectsList lists projects and primes the project cache.
func ToolProjectsList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectsListInput) (*sdkmcp.CallToolResult, ProjectsListOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectsListInput) (*sdkmcp.CallToolResult, ProjectsListOutput, error) {
		opts := &client.ListProjectsOptions{Page: input.Page, Size: input.Size}
		if opts.Size <= 0 {
			opts.Size = d.Config.DefaultPageSize
		}
		if input.Status != "" {
			status, err := parseProjectStatus(input.Status)
			if err != nil {
				return nil, ProjectsListOutput{}, err
			}
			opts.Status = status
		}

		projects, err := d.Client.ListProjects(ctx, opts)
		if err != nil {
			return nil, ProjectsListOutput{}, WrapAPIError(err)
		}
		if d.Cache != nil {
			d.Cache.PutAll(projects)
		}
		return nil, ProjectsListOutput{Projects: projects, Count: len(projects)}, nil
	}
}

// ToolProjectGet returns one project, cache first.
func ToolProjectGet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectGetInput) (*sdkmcp.CallToolResult, ProjectOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectGetInput) (*sdkmcp.CallToolResult, ProjectOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, ProjectOutput{}, err
		}
		p, cached, err := d.Project(ctx, input.ProjectID, input.Fresh)
		if err != nil {
			return nil, ProjectOutput{}, WrapAPIError(err)
		}
		return nil, ProjectOutput{Project: *p, Cached: cached}, nil
	}
}

// ToolProjectCreate creates a project.
func ToolProjectCreate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectCreateInput) (*sdkmcp.CallToolResult, ProjectOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectCreateInput) (*sdkmcp.CallToolResult, ProjectOutput, error) {
		in := client.CreateProjectInput{
			Title:       strings.TrimSpace(input.Title),
			Description: nonEmpty(input.Description),
		}
		if err := d.Check(in); err != nil {
			return nil, ProjectOutput{}, err
		}

		p, err := d.Client.CreateProject(ctx, in)
		if err != nil {
			return nil, ProjectOutput{}, WrapAPIError(err)
		}
		if d.Cache != nil {
			d.Cache.Put(p)
		}
		return nil, ProjectOutput{Project: *p}, nil
	}
}

// ToolProjectUpdate changes a project's title, description or status.
func ToolProjectUpdate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectUpdateInput) (*sdkmcp.CallToolResult, ProjectOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectUpdateInput) (*sdkmcp.CallToolResult, ProjectOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, ProjectOutput{}, err
		}

		in := client.UpdateProjectInput{Description: input.Description}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			in.Title = &title
		}
		if input.Status != "" {
			status, err := parseProjectStatus(input.Status)
			if err != nil {
				return nil, ProjectOutput{}, err
			}
			in.Status = &status
		}
		if in.Title == nil && in.Description == nil && in.Status == nil {
			return nil, ProjectOutput{}, ErrInvalidInput("nothing to update: pass title, description or status")
		}
		if err := d.Check(in); err != nil {
			return nil, ProjectOutput{}, err
		}

		p, err := d.Client.UpdateProject(ctx, input.ProjectID, in)
		if err != nil {
			return nil, ProjectOutput{}, WrapAPIError(err)
		}
		if d.Cache != nil {
			d.Cache.Put(p)
		}
		return nil, ProjectOutput{Project: *p}, nil
	}
}

// ToolProjectDelete deletes a project and its tasks.
func ToolProjectDelete(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectDeleteInput) (*sdkmcp.CallToolResult, DeleteOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProjectDeleteInput) (*sdkmcp.CallToolResult, DeleteOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, DeleteOutput{}, err
		}

		err := d.Client.DeleteProject(ctx, input.ProjectID, input.Force)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, DeleteOutput{}, &CodedError{
				Code:    ErrCodeConflict,
				Message: "deleting a project removes all of its tasks; pass force=true to confirm",
				Cause:   err,
			}
		}
		if err != nil {
			return nil, DeleteOutput{}, WrapAPIError(err)
		}
		if d.Cache != nil {
			d.Cache.Remove(input.ProjectID)
		}
		return nil, DeleteOutput{Deleted: true, ID: input.ProjectID}, nil
	}
}
