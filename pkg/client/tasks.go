package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// ListTasks retrieves one board column of a project.
func (c *Client) ListTasks(ctx context.Context, projectID string, status TaskStatus) ([]Task, error) {
	path := "/api/projects/" + url.PathEscape(projectID) + "/tasks"
	query := url.Values{"status": {string(status)}}

	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, fmt.Errorf("listing %s tasks for project %q: %w", status, projectID, err)
	}
	tasks, err := decodeList[Task](raw)
	if err != nil {
		return nil, fmt.Errorf("listing %s tasks for project %q: %w", status, projectID, err)
	}
	return tasks, nil
}

// ListAllTasks fetches every column of a project concurrently and returns
// the tasks in board order (TODO, IN_PROGRESS, DONE).
func (c *Client) ListAllTasks(ctx context.Context, projectID string) ([]Task, error) {
	columns := make([][]Task, len(TaskStatuses))

	g, gctx := errgroup.WithContext(ctx)
	for i, status := range TaskStatuses {
		g.Go(func() error {
			tasks, err := c.ListTasks(gctx, projectID, status)
			if err != nil {
				return err
			}
			columns[i] = tasks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Task
	for _, col := range columns {
		all = append(all, col...)
	}
	if all == nil {
		all = []Task{}
	}
	return all, nil
}

// FindTask looks a task up on its project board. There is no single-task
// endpoint, so this lists the board.
func (c *Client) FindTask(ctx context.Context, projectID, taskID string) (*Task, error) {
	tasks, err := c.ListAllTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i], nil
		}
	}
	return nil, &APIError{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("task %q not found in project %q", taskID, projectID),
		Method:     http.MethodGet,
		Path:       "/api/projects/" + url.PathEscape(projectID) + "/tasks",
	}
}

// CreateTask adds a task to a project.
func (c *Client) CreateTask(ctx context.Context, projectID string, in CreateTaskInput) (*Task, error) {
	path := "/api/projects/" + url.PathEscape(projectID) + "/tasks"
	var t Task
	if err := c.call(ctx, http.MethodPost, path, nil, in, &t); err != nil {
		return nil, fmt.Errorf("creating task in project %q: %w", projectID, err)
	}
	return &t, nil
}

// UpdateTask replaces a task's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (*Task, error) {
	var t Task
	if err := c.call(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), nil, in, &t); err != nil {
		return nil, fmt.Errorf("updating task %q: %w", id, err)
	}
	return &t, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting task %q: %w", id, err)
	}
	return nil
}

// MoveTask moves a task to another column, optionally at a given position.
// The remaining fields are carried over so the update does not clear them.
func (c *Client) MoveTask(ctx context.Context, task *Task, status TaskStatus, order *int) (*Task, error) {
	return c.UpdateTask(ctx, task.ID, UpdateInputFromTask(task, status, order))
}

// UpdateInputFromTask builds a full update body from an existing task.
func UpdateInputFromTask(task *Task, status TaskStatus, order *int) UpdateTaskInput {
	return UpdateTaskInput{
		Title:       task.Title,
		Description: task.Description,
		Status:      &status,
		DueDate:     dateOnly(task.DueDate),
		Order:       order,
		Priority:    task.Priority,
		AssigneeID:  task.AssigneeID,
	}
}
