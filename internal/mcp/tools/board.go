package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/internal/board"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// BoardInput is the input for taskraum_board.
type BoardInput struct {
	ProjectID  string   `json:"project_id" jsonschema:"Project ID"`
	Statuses   []string `json:"statuses,omitempty" jsonschema:"Only show these columns (TODO, IN_PROGRESS, DONE)"`
	Priorities []string `json:"priorities,omitempty" jsonschema:"Only tasks with one of these priorities (LOW, MEDIUM, HIGH)"`
	AssigneeID string   `json:"assignee_id,omitempty" jsonschema:"Only tasks assigned to this user"`
	DueBefore  string   `json:"due_before,omitempty" jsonschema:"Only tasks due strictly before this YYYY-MM-DD date"`
	Overdue    bool     `json:"overdue,omitempty" jsonschema:"Only open tasks that are past their due date"`
	Text       string   `json:"text,omitempty" jsonschema:"Only tasks whose title or description contains every word"`
}

// BoardOutput is the output for taskraum_board.
type BoardOutput struct {
	Project *client.Project `json:"project,omitempty"`
	Board   *board.Board    `json:"board"`
}

// ToolBoard renders a project's kanban board.
func ToolBoard(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input BoardInput) (*sdkmcp.CallToolResult, BoardOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input BoardInput) (*sdkmcp.CallToolResult, BoardOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, BoardOutput{}, err
		}
		f, err := d.boardFilter(input)
		if err != nil {
			return nil, BoardOutput{}, err
		}

		project, _, err := d.Project(ctx, input.ProjectID, false)
		if err != nil {
			return nil, BoardOutput{}, WrapAPIError(err)
		}
		tasks, err := d.Client.ListAllTasks(ctx, input.ProjectID)
		if err != nil {
			return nil, BoardOutput{}, WrapAPIError(err)
		}
		return nil, BoardOutput{
			Project: project,
			Board:   board.Build(input.ProjectID, tasks, f),
		}, nil
	}
}

func (d *Deps) boardFilter(input BoardInput) (board.Filter, error) {
	statuses, err := parseTaskStatuses(input.Statuses)
	if err != nil {
		return board.Filter{}, err
	}
	priorities, err := parsePriorities(input.Priorities)
	if err != nil {
		return board.Filter{}, err
	}

	f := board.Filter{
		Statuses:   statuses,
		Priorities: priorities,
		AssigneeID: input.AssigneeID,
		DueBefore:  input.DueBefore,
		Text:       input.Text,
	}
	if input.Overdue {
		f.DueBefore = d.Today()
		if len(f.Statuses) == 0 {
			f.Statuses = []client.TaskStatus{client.TaskTodo, client.TaskInProgress}
		}
	}
	return f, nil
}
