package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/taskraum/taskraum-mcp/internal/board"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// OverviewInput is the input for taskraum_overview.
type OverviewInput struct {
	Status string `json:"status,omitempty" jsonschema:"Project status to include: ACTIVE (default), PAUSED or ARCHIVED"`
}

// ProjectSummary holds the task counts of one project.
type ProjectSummary struct {
	ID      string               `json:"id"`
	Title   string               `json:"title"`
	Status  client.ProjectStatus `json:"status,omitempty"`
	Counts  map[string]int       `json:"counts,omitzero"`
	Total   int                  `json:"total"`
	Overdue int                  `json:"overdue"`
}

// OverviewOutput is the output for taskraum_overview.
type OverviewOutput struct {
	Projects []ProjectSummary `json:"projects,omitzero"`
	Totals   map[string]int   `json:"totals,omitzero"`
	Overdue  int              `json:"overdue"`
	Today    string           `json:"today"`
	Summary  string           `json:"summary"`
}

// ToolOverview counts tasks per column across all projects. Boards are
// fetched concurrently, at most FetchWorkers at a time.
func ToolOverview(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input OverviewInput) (*sdkmcp.CallToolResult, OverviewOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input OverviewInput) (*sdkmcp.CallToolResult, OverviewOutput, error) {
		opts := &client.ListProjectsOptions{Size: d.Config.DefaultPageSize}
		if input.Status != "" {
			status, err := parseProjectStatus(input.Status)
			if err != nil {
				return nil, OverviewOutput{}, err
			}
			opts.Status = status
		}

		projects, err := d.Client.ListProjects(ctx, opts)
		if err != nil {
			return nil, OverviewOutput{}, WrapAPIError(err)
		}
		if d.Cache != nil {
			d.Cache.PutAll(projects)
		}

		today := d.Today()
		summaries := make([]ProjectSummary, len(projects))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(1, d.Config.FetchWorkers))
		for i, p := range projects {
			g.Go(func() error {
				tasks, err := d.Client.ListAllTasks(gctx, p.ID)
				if err != nil {
					return err
				}
				summaries[i] = summarizeProject(p, tasks, today)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, OverviewOutput{}, WrapAPIError(err)
		}

		out := OverviewOutput{
			Projects: summaries,
			Totals:   make(map[string]int, len(client.TaskStatuses)),
			Today:    today,
		}
		total := 0
		for _, s := range summaries {
			for status, n := range s.Counts {
				out.Totals[status] += n
			}
			total += s.Total
			out.Overdue += s.Overdue
		}
		out.Summary = fmt.Sprintf("%s projects, %s tasks, %s overdue",
			board.FormatCount(len(summaries)), board.FormatCount(total), board.FormatCount(out.Overdue))
		return nil, out, nil
	}
}

func summarizeProject(p client.Project, tasks []client.Task, today string) ProjectSummary {
	counts := board.Counts(tasks)
	s := ProjectSummary{
		ID:     p.ID,
		Title:  p.Title,
		Status: p.Status,
		Counts: make(map[string]int, len(counts)),
		Total:  len(tasks),
	}
	for status, n := range counts {
		s.Counts[string(status)] = n
	}

	idx := board.NewIndex(tasks)
	overdue := idx.Match(board.Filter{
		Statuses:  []client.TaskStatus{client.TaskTodo, client.TaskInProgress},
		DueBefore: today,
	})
	s.Overdue = int(overdue.GetCardinality())
	return s
}
