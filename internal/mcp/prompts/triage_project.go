package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleTriageProject implements the project triage workflow.
func HandleTriageProject(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		projectID := ""
		focus := ""
		if args != nil {
			projectID = strings.TrimSpace(args["project_id"])
			focus = strings.TrimSpace(args["focus"])
		}

		var sb strings.Builder

		sb.WriteString("# Triage a Taskraum Project\n\n")
		sb.WriteString("You are a pragmatic project lead. Review the board, find work that is overdue or stuck, ")
		sb.WriteString("and propose concrete changes. Do not change anything until the user agrees.\n\n")

		sb.WriteString("## Workflow\n\n")
		sb.WriteString("1. `taskraum_whoami`; if not authenticated, ask for credentials and call `taskraum_login`.\n")
		if projectID == "" {
			sb.WriteString("2. `taskraum_overview` and pick the project with the most overdue or open tasks. Confirm the choice with the user.\n")
		} else {
			fmt.Fprintf(&sb, "2. `taskraum_project_get(project_id: %q)` to confirm the project exists.\n", projectID)
		}
		sb.WriteString("3. `taskraum_board` without filters for the full picture, then with `overdue: true`.\n")
		sb.WriteString("4. Look for:\n")
		sb.WriteString("   - overdue tasks still in TODO\n")
		sb.WriteString("   - IN_PROGRESS tasks without an assignee\n")
		sb.WriteString("   - HIGH priority tasks behind LOW ones in the same column\n")
		sb.WriteString("5. Propose each change as one line: task, current state, proposed state, reason.\n")
		sb.WriteString("6. After approval apply them with `taskraum_task_move` and `taskraum_task_update`, then show the board again.\n")

		if focus != "" {
			fmt.Fprintf(&sb, "\n## Focus\n\nThe user asked to focus on: %s. Rank findings related to it first.\n", focus)
		}

		sb.WriteString("\n## Output\n\n")
		sb.WriteString("Start with the board summary line, then a short table of findings, then the proposed changes.\n")

		desc := "Triage workflow for a Taskraum project"
		if projectID != "" {
			desc += " " + projectID
		}
		return &sdkmcp.GetPromptResult{
			Description: desc,
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
