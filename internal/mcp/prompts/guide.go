package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleGuide serves the tool usage guide.
func HandleGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Taskraum Tool Guide\n\n")
		if cfg.BaseURL != "" {
			fmt.Fprintf(&sb, "Connected to `%s`.\n\n", cfg.BaseURL)
		}

		sb.WriteString("## Sessions\n")
		sb.WriteString("- Start with `taskraum_whoami`. If `authenticated` is false, call `taskraum_login`.\n")
		sb.WriteString("- Expired sessions are renewed automatically; concurrent calls share a single renewal.\n")
		sb.WriteString("- `AUTH_REQUIRED` means the renewal failed too. Ask the user for credentials and call `taskraum_login` again.\n")
		fmt.Fprintf(&sb, "- The `view` field shows where the client is. `%s` means a login is needed.\n", cfg.LoginViewPath)

		sb.WriteString("\n## Which Tool\n\n")
		sb.WriteString("| Goal | Tool |\n")
		sb.WriteString("|------|------|\n")
		sb.WriteString("| Status across all projects | `taskraum_overview` |\n")
		sb.WriteString("| One project's kanban board, filtered | `taskraum_board` |\n")
		sb.WriteString("| Raw tasks of one column | `taskraum_tasks_list` |\n")
		sb.WriteString("| Change a task's column | `taskraum_task_move` |\n")
		sb.WriteString("| Change any other task field | `taskraum_task_update` |\n")
		sb.WriteString("| Ad-hoc questions over API data | `taskraum_query` |\n")

		sb.WriteString("\n## Error Codes\n")
		sb.WriteString("- `INVALID_INPUT`: fix the arguments; the message lists each failing field\n")
		sb.WriteString("- `NOT_FOUND`: the ID is wrong or belongs to another user\n")
		sb.WriteString("- `CONFLICT`: deleting a project needs `force: true`; confirm with the user first\n")
		sb.WriteString("- `TIMEOUT`: retry once, then report\n")

		sb.WriteString("\n## Tips\n")
		sb.WriteString("- Statuses are TODO, IN_PROGRESS and DONE; priorities are LOW, MEDIUM and HIGH\n")
		sb.WriteString("- Dates are YYYY-MM-DD\n")
		sb.WriteString("- `taskraum_project_get` is served from a cache; pass `fresh: true` after edits made elsewhere\n")
		sb.WriteString("- `taskraum_query` exposes `$today`, e.g. `.[] | select(.dueDate != null and .dueDate[:10] < $today)`\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for efficient Taskraum tool usage",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
