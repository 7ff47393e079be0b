package mcp

import (
	"context"
	"slices"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// maxCompletions is the most values one completion response may carry.
const maxCompletions = 100

// complete suggests project IDs for the triage_project prompt and the board
// resource template. Suggestions come from the project cache, so they cover
// projects a tool has listed or fetched during this session.
func (s *Server) complete(_ context.Context, req *sdkmcp.CompleteRequest) (*sdkmcp.CompleteResult, error) {
	result := &sdkmcp.CompleteResult{Completion: sdkmcp.CompletionResultDetails{Values: []string{}}}
	if req.Params == nil || req.Params.Ref == nil || s.deps.Cache == nil {
		return result, nil
	}

	ref, arg := req.Params.Ref, req.Params.Argument
	switch {
	case ref.Type == "ref/prompt" && ref.Name == "triage_project" && arg.Name == "project_id":
	case ref.Type == "ref/resource" && ref.URI == boardTemplateURI && arg.Name == "id":
	default:
		return result, nil
	}

	ids := matchProjects(s.deps.Cache.Projects(), arg.Value)
	result.Completion.Total = len(ids)
	if len(ids) > maxCompletions {
		ids = ids[:maxCompletions]
		result.Completion.HasMore = true
	}
	result.Completion.Values = ids
	return result, nil
}

// matchProjects returns the IDs of projects whose ID starts with prefix or
// whose title contains it, ordered by title.
func matchProjects(projects []client.Project, prefix string) []string {
	needle := strings.ToLower(prefix)
	matched := make([]client.Project, 0, len(projects))
	for _, p := range projects {
		if strings.HasPrefix(p.ID, prefix) || strings.Contains(strings.ToLower(p.Title), needle) {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, func(a, b client.Project) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})

	ids := make([]string, len(matched))
	for i, p := range matched {
		ids[i] = p.ID
	}
	return ids
}
