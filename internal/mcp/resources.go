package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/internal/board"
	"github.com/taskraum/taskraum-mcp/internal/mcp/tools"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// Resource URI scheme: taskraum://
// Supported URIs:
//   taskraum://session
//   taskraum://projects/{id}/board

const (
	resourceScheme     = "taskraum://"
	sessionResourceURI = resourceScheme + "session"
	boardTemplateURI   = resourceScheme + "projects/{id}/board"
)

// sessionResource is the content of taskraum://session.
type sessionResource struct {
	Authenticated bool         `json:"authenticated"`
	User          *client.User `json:"user,omitempty"`
	View          string       `json:"view,omitempty"`
	History       []string     `json:"history,omitempty"`
	LoggingOut    bool         `json:"logging_out"`
	BaseURL       string       `json:"base_url"`
}

// registerResources registers resources and resource templates.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         sessionResourceURI,
		Name:        "Session",
		Description: "Current Taskraum session: signed-in user, current view and navigation history. Probing it never refreshes the session.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceSession)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: boardTemplateURI,
		Name:        "Project Board",
		Description: "Unfiltered kanban board of a project. The taskraum_board tool returns the same data with filters.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceBoard)
}

func (s *Server) handleResourceSession(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	user, err := s.deps.Client.Me(ctx)
	if err != nil {
		return nil, tools.WrapAPIError(err)
	}

	content := sessionResource{
		Authenticated: user != nil,
		User:          user,
		LoggingOut:    s.deps.Client.LoggingOut(),
		BaseURL:       s.deps.Client.BaseURL(),
	}
	if s.deps.Router != nil {
		content.View = s.deps.Router.Location()
		content.History = s.deps.Router.History()
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceBoard(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	projectID := params["project"]
	tasks, err := s.deps.Client.ListAllTasks(ctx, projectID)
	if err != nil {
		return nil, tools.WrapAPIError(err)
	}
	return toResourceResult(req.Params.URI, board.Build(projectID, tasks, board.Filter{}))
}

// Helper functions

// parseResourceURI extracts parameters from a taskraum:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + resourceScheme)
	}

	path := strings.Trim(strings.TrimPrefix(uri, resourceScheme), "/")
	if path == "" {
		return nil, tools.ErrInvalidInput("empty resource path")
	}
	parts := strings.Split(path, "/")

	params := make(map[string]string)
	switch resourceType := parts[0]; resourceType {
	case "session":
		if len(parts) != 1 {
			return nil, tools.ErrInvalidInput("session URI takes no parameters")
		}

	case "projects":
		if len(parts) != 3 || parts[1] == "" || parts[2] != "board" {
			return nil, tools.ErrInvalidInput("board URI must look like taskraum://projects/{id}/board")
		}
		params["project"] = parts[1]

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
