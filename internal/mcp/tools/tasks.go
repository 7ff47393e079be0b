package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// TasksListInput is the input for taskraum_tasks_list.
type TasksListInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	Status    string `json:"status,omitempty" jsonschema:"Board column to list: TODO, IN_PROGRESS or DONE. Omit for all columns"`
}

// TasksListOutput is the output for taskraum_tasks_list.
type TasksListOutput struct {
	Tasks []client.Task `json:"tasks,omitzero"`
	Count int           `json:"count"`
}

// TaskCreateInput is the input for taskraum_task_create.
type TaskCreateInput struct {
	ProjectID   string `json:"project_id" jsonschema:"Project ID"`
	Title       string `json:"title" jsonschema:"Task title, 1 to 160 characters"`
	Description string `json:"description,omitempty" jsonschema:"Optional description"`
	Status      string `json:"status,omitempty" jsonschema:"Initial column: TODO (default), IN_PROGRESS or DONE"`
	Priority    string `json:"priority,omitempty" jsonschema:"LOW, MEDIUM or HIGH"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date as YYYY-MM-DD"`
	AssigneeID  string `json:"assignee_id,omitempty" jsonschema:"User ID of the assignee"`
	Order       *int   `json:"order,omitempty" jsonschema:"Position within the column"`
}

// TaskUpdateInput is the input for taskraum_task_update. Omitted fields keep
// their current value.
type TaskUpdateInput struct {
	ProjectID   string  `json:"project_id" jsonschema:"Project the task belongs to"`
	TaskID      string  `json:"task_id" jsonschema:"Task ID"`
	Title       *string `json:"title,omitempty" jsonschema:"New title"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	Status      string  `json:"status,omitempty" jsonschema:"New column: TODO, IN_PROGRESS or DONE"`
	Priority    string  `json:"priority,omitempty" jsonschema:"LOW, MEDIUM or HIGH"`
	DueDate     *string `json:"due_date,omitempty" jsonschema:"Due date as YYYY-MM-DD, or an empty string to clear it"`
	AssigneeID  *string `json:"assignee_id,omitempty" jsonschema:"Assignee user ID, or an empty string to clear it"`
	Order       *int    `json:"order,omitempty" jsonschema:"Position within the column"`
}

// TaskMoveInput is the input for taskraum_task_move.
type TaskMoveInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project the task belongs to"`
	TaskID    string `json:"task_id" jsonschema:"Task ID"`
	Status    string `json:"status" jsonschema:"Target column: TODO, IN_PROGRESS or DONE"`
	Order     *int   `json:"order,omitempty" jsonschema:"Position within the target column"`
}

// TaskDeleteInput is the input for taskraum_task_delete.
type TaskDeleteInput struct {
	TaskID string `json:"task_id" jsonschema:"Task ID"`
}

// TaskOutput wraps a single task.
type TaskOutput struct {
	Task client.Task `json:"task"`
	From string      `json:"from,omitempty"`
}

// ToolTasksList lists one column, or the whole board in column order.
func ToolTasksList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TasksListInput) (*sdkmcp.CallToolResult, TasksListOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TasksListInput) (*sdkmcp.CallToolResult, TasksListOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, TasksListOutput{}, err
		}

		var (
			tasks []client.Task
			err   error
		)
		if input.Status == "" {
			tasks, err = d.Client.ListAllTasks(ctx, input.ProjectID)
		} else {
			status, perr := parseTaskStatus(input.Status)
			if perr != nil {
				return nil, TasksListOutput{}, perr
			}
			tasks, err = d.Client.ListTasks(ctx, input.ProjectID, status)
		}
		if err != nil {
			return nil, TasksListOutput{}, WrapAPIError(err)
		}
		return nil, TasksListOutput{Tasks: tasks, Count: len(tasks)}, nil
	}
}

// ToolTaskCreate adds a task to a project.
func ToolTaskCreate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskCreateInput) (*sdkmcp.CallToolResult, TaskOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskCreateInput) (*sdkmcp.CallToolResult, TaskOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, TaskOutput{}, err
		}

		in := client.CreateTaskInput{
			Title:       strings.TrimSpace(input.Title),
			Description: nonEmpty(input.Description),
			DueDate:     nonEmpty(input.DueDate),
			AssigneeID:  nonEmpty(input.AssigneeID),
			Order:       input.Order,
		}
		if input.Status != "" {
			status, err := parseTaskStatus(input.Status)
			if err != nil {
				return nil, TaskOutput{}, err
			}
			in.Status = &status
		}
		if input.Priority != "" {
			p, err := parsePriority(input.Priority)
			if err != nil {
				return nil, TaskOutput{}, err
			}
			in.Priority = &p
		}
		if err := d.Check(in); err != nil {
			return nil, TaskOutput{}, err
		}

		t, err := d.Client.CreateTask(ctx, input.ProjectID, in)
		if err != nil {
			return nil, TaskOutput{}, WrapAPIError(err)
		}
		return nil, TaskOutput{Task: *t}, nil
	}
}

// ToolTaskUpdate merges the given fields into the current task and saves it.
// The backend replaces every field on update, so the task is read first.
func ToolTaskUpdate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskUpdateInput) (*sdkmcp.CallToolResult, TaskOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskUpdateInput) (*sdkmcp.CallToolResult, TaskOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, TaskOutput{}, err
		}
		if err := requireID("task_id", input.TaskID); err != nil {
			return nil, TaskOutput{}, err
		}

		current, err := d.Client.FindTask(ctx, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, TaskOutput{}, WrapAPIError(err)
		}

		status := current.Status
		if input.Status != "" {
			if status, err = parseTaskStatus(input.Status); err != nil {
				return nil, TaskOutput{}, err
			}
		}
		order := current.Order
		if input.Order != nil {
			order = input.Order
		}
		in := client.UpdateInputFromTask(current, status, order)

		if input.Title != nil {
			in.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			in.Description = nonEmpty(*input.Description)
		}
		if input.Priority != "" {
			p, err := parsePriority(input.Priority)
			if err != nil {
				return nil, TaskOutput{}, err
			}
			in.Priority = &p
		}
		if input.DueDate != nil {
			in.DueDate = nonEmpty(*input.DueDate)
		}
		if input.AssigneeID != nil {
			in.AssigneeID = nonEmpty(*input.AssigneeID)
		}
		if err := d.Check(in); err != nil {
			return nil, TaskOutput{}, err
		}

		t, err := d.Client.UpdateTask(ctx, input.TaskID, in)
		if err != nil {
			return nil, TaskOutput{}, WrapAPIError(err)
		}
		return nil, TaskOutput{Task: *t}, nil
	}
}

// ToolTaskMove moves a task to another column.
func ToolTaskMove(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskMoveInput) (*sdkmcp.CallToolResult, TaskOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskMoveInput) (*sdkmcp.CallToolResult, TaskOutput, error) {
		if err := requireID("project_id", input.ProjectID); err != nil {
			return nil, TaskOutput{}, err
		}
		if err := requireID("task_id", input.TaskID); err != nil {
			return nil, TaskOutput{}, err
		}
		status, err := parseTaskStatus(input.Status)
		if err != nil {
			return nil, TaskOutput{}, err
		}

		current, err := d.Client.FindTask(ctx, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, TaskOutput{}, WrapAPIError(err)
		}
		from := current.Status

		t, err := d.Client.MoveTask(ctx, current, status, input.Order)
		if err != nil {
			return nil, TaskOutput{}, WrapAPIError(err)
		}
		return nil, TaskOutput{Task: *t, From: string(from)}, nil
	}
}

// ToolTaskDelete removes a task.
func ToolTaskDelete(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskDeleteInput) (*sdkmcp.CallToolResult, DeleteOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TaskDeleteInput) (*sdkmcp.CallToolResult, DeleteOutput, error) {
		if err := requireID("task_id", input.TaskID); err != nil {
			return nil, DeleteOutput{}, err
		}
		if err := d.Client.DeleteTask(ctx, input.TaskID); err != nil {
			return nil, DeleteOutput{}, WrapAPIError(err)
		}
		return nil, DeleteOutput{Deleted: true, ID: input.TaskID}, nil
	}
}
