package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "taskraum_guide",
		Description: "How to use the Taskraum tools efficiently: session handling, error codes and which tool to reach for.",
	}, HandleGuide(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "triage_project",
		Description: "RECOMMENDED: Review a project's board, surface overdue and stuck work, and propose moves and priority changes.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "project_id",
				Description: "Project to triage. Omit to pick one from taskraum_overview.",
				Required:    false,
			},
			{
				Name:        "focus",
				Description: "What to focus on, e.g. 'overdue', 'unassigned' or 'release blockers'",
				Required:    false,
			},
		},
	}, HandleTriageProject(cfg))
}
