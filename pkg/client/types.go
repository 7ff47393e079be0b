package client

import (
	"fmt"
	"net/http"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project statuses
const (
	ProjectActive   ProjectStatus = "ACTIVE"
	ProjectPaused   ProjectStatus = "PAUSED"
	ProjectArchived ProjectStatus = "ARCHIVED"
)

// TaskStatus is the board column a task sits in.
type TaskStatus string

// Task statuses, in board order
const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// TaskStatuses lists every task status in board order.
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone}

// TaskPriority ranks a task.
type TaskPriority string

// Task priorities
const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectArchived:
		return true
	}
	return false
}

// ValidTaskPriority reports whether p is a known task priority.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// User is the authenticated account.
type User struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Surname *string `json:"surname"`
}

// Project groups tasks.
type Project struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId,omitempty"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      ProjectStatus `json:"status,omitempty"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	UpdatedAt   string        `json:"updatedAt,omitempty"`
}

// Task is a unit of work on a project board.
type Task struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"projectId"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      TaskStatus    `json:"status"`
	Order       *int          `json:"order"`
	Priority    *TaskPriority `json:"priority"`
	DueDate     *string       `json:"dueDate"`
	AssigneeID  *string       `json:"assigneeId"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	UpdatedAt   string        `json:"updatedAt,omitempty"`
}

// Page is a Spring Data page of results.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" jsonschema:"format=email,minLength=1"`
	Password string `json:"password" jsonschema:"minLength=8"`
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name" jsonschema:"minLength=1"`
	Surname  string `json:"surname" jsonschema:"minLength=1"`
	Email    string `json:"email" jsonschema:"format=email,minLength=1"`
	Password string `json:"password" jsonschema:"minLength=8"`
}

// CreateProjectInput is the body of POST /api/projects.
type CreateProjectInput struct {
	Title       string  `json:"title" jsonschema:"minLength=1,maxLength=120,pattern=\\S"`
	Description *string `json:"description,omitempty" jsonschema:"maxLength=2000"`
}

// UpdateProjectInput is the body of PUT /api/projects/{id}. Nil fields are
// left unchanged.
type UpdateProjectInput struct {
	Title       *string        `json:"title,omitempty" jsonschema:"minLength=1,maxLength=120,pattern=\\S"`
	Description *string        `json:"description,omitempty" jsonschema:"maxLength=2000"`
	Status      *ProjectStatus `json:"status,omitempty" jsonschema:"enum=ACTIVE,enum=PAUSED,enum=ARCHIVED"`
}

// CreateTaskInput is the body of POST /api/projects/{id}/tasks.
type CreateTaskInput struct {
	Title       string        `json:"title" jsonschema:"minLength=1,maxLength=160,pattern=\\S"`
	Description *string       `json:"description,omitempty" jsonschema:"maxLength=4000"`
	Status      *TaskStatus   `json:"status,omitempty" jsonschema:"enum=TODO,enum=IN_PROGRESS,enum=DONE"`
	DueDate     *string       `json:"dueDate,omitempty" jsonschema:"format=date"`
	Order       *int          `json:"order,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty" jsonschema:"enum=LOW,enum=MEDIUM,enum=HIGH"`
	AssigneeID  *string       `json:"assigneeId,omitempty"`
}

// UpdateTaskInput is the body of PUT /api/tasks/{id}. The backend requires
// the title on every update and treats omitted fields as null.
type UpdateTaskInput struct {
	Title       string        `json:"title" jsonschema:"minLength=1,maxLength=160,pattern=\\S"`
	Description *string       `json:"description,omitempty" jsonschema:"maxLength=4000"`
	Status      *TaskStatus   `json:"status,omitempty" jsonschema:"enum=TODO,enum=IN_PROGRESS,enum=DONE"`
	DueDate     *string       `json:"dueDate,omitempty" jsonschema:"format=date"`
	Order       *int          `json:"order,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty" jsonschema:"enum=LOW,enum=MEDIUM,enum=HIGH"`
	AssigneeID  *string       `json:"assigneeId,omitempty"`
}

// UpdateProfileInput is the body of PUT /api/me.
type UpdateProfileInput struct {
	Name    *string `json:"name,omitempty" jsonschema:"minLength=1"`
	Surname *string `json:"surname,omitempty"`
	Email   *string `json:"email,omitempty" jsonschema:"format=email"`
}

// ChangePasswordInput is the body of PUT /api/me/password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" jsonschema:"minLength=1"`
	NewPassword     string `json:"newPassword" jsonschema:"minLength=8"`
}

// APIError represents an error response from the Taskraum API.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("taskraum API error %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

// IsUnauthorized reports whether the error is an HTTP 401.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// errorResponse is the JSON structure for API errors.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
