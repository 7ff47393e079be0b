package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Session
	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_login",
		Description: "Sign in to Taskraum with email and password. Every other tool needs a session; call this first or whenever a tool returns AUTH_REQUIRED.",
	}, ToolLogin(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_register",
		Description: "Create a Taskraum account. Does not sign in; call taskraum_login afterwards.",
	}, ToolRegister(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_logout",
		Description: "Sign out and clear cached projects.",
	}, ToolLogout(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_whoami",
		Description: "Report whether a session is active and which user it belongs to. Never refreshes the session.",
	}, ToolWhoami(d))

	// Projects
	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_projects_list",
		Description: "List projects by status (ACTIVE by default), most recently updated first.",
	}, ToolProjectsList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_project_get",
		Description: "Get one project. Served from the local cache unless fresh=true.",
	}, ToolProjectGet(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_project_create",
		Description: "Create a project with a title (1 to 120 characters) and optional description.",
	}, ToolProjectCreate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_project_update",
		Description: "Change a project's title, description or status (ACTIVE, PAUSED, ARCHIVED). Omitted fields are kept.",
	}, ToolProjectUpdate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_project_delete",
		Description: "Delete a project and all of its tasks. Returns CONFLICT unless force=true.",
	}, ToolProjectDelete(d))

	// Tasks
	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_tasks_list",
		Description: "List the tasks of a project, either one column (status) or the whole board in column order.",
	}, ToolTasksList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_board",
		Description: "Show a project's kanban board: columns TODO, IN_PROGRESS and DONE with tasks sorted by position. Filter by statuses, priorities, assignee, due date, overdue or text.",
	}, ToolBoard(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_task_create",
		Description: "Create a task in a project. Status defaults to TODO.",
	}, ToolTaskCreate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_task_update",
		Description: "Edit a task. Only the given fields change; pass an empty string to clear due_date or assignee_id.",
	}, ToolTaskUpdate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_task_move",
		Description: "Move a task to another column, optionally at a position. Other fields are kept.",
	}, ToolTaskMove(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_task_delete",
		Description: "Delete a task.",
	}, ToolTaskDelete(d))

	// Profile
	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_profile_update",
		Description: "Change the signed-in user's name, surname or email.",
	}, ToolProfileUpdate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_password_change",
		Description: "Change the signed-in user's password. The new password needs at least 8 characters.",
	}, ToolPasswordChange(d))

	// Analysis
	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_overview",
		Description: "Count tasks per column and overdue tasks across all projects of a status.",
	}, ToolOverview(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "taskraum_query",
		Description: "Run a jq expression over a GET /api/... response, or over the task lists of the given projects (one input per project). Paged responses keep items under .content. Example: '.[] | select(.priority == \"HIGH\") | .title'.",
	}, ToolQuery(d))
}
