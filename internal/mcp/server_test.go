package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskraum/taskraum-mcp/internal/cache"
	"github.com/taskraum/taskraum-mcp/internal/config"
	"github.com/taskraum/taskraum-mcp/internal/mcp/tools"
	"github.com/taskraum/taskraum-mcp/internal/nav"
	"github.com/taskraum/taskraum-mcp/internal/query"
	"github.com/taskraum/taskraum-mcp/internal/testbackend"
	"github.com/taskraum/taskraum-mcp/internal/validate"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

func newTestServer(t *testing.T) (*testbackend.Backend, *sdkmcp.ClientSession) {
	t.Helper()
	b := testbackend.New()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	b.AddUser("ada@example.com", "correct-horse", "Ada")

	cfg := &config.Config{
		BaseURL:         srv.URL,
		LoginViewPath:   "/login",
		HomeViewPath:    "/dashboard",
		FetchWorkers:    2,
		DefaultPageSize: 50,
		QueryMaxResults: 100,
	}
	router := nav.NewRouter(cfg.LoginViewPath, cfg.LoginViewPath)
	pc, err := cache.NewProjectCache(8)
	require.NoError(t, err)
	deps := &tools.Deps{
		Client: client.New(
			client.WithBaseURL(srv.URL),
			client.WithHTTPClient(&http.Client{Jar: client.NewCookieJar(), Timeout: 5 * time.Second}),
			client.WithNavigator(router),
		),
		Router:    router,
		Cache:     pc,
		Config:    cfg,
		Validator: validate.New(),
		Query:     query.NewEngine(8),
	}

	s, err := NewServer(deps, WithBuiltinTools(), WithBuiltinPrompts())
	require.NoError(t, err)

	ctx := context.Background()
	ct, st := sdkmcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	c := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := c.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return b, cs
}

func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func readResource(t *testing.T, cs *sdkmcp.ClientSession, uri string, v any) {
	t.Helper()
	res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: uri})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, tools.MimeJSON, res.Contents[0].MIMEType)
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), v))
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	require.Error(t, err)

	_, err = NewServer(&tools.Deps{})
	require.Error(t, err)
}

func TestServer_SessionFlow(t *testing.T) {
	_, cs := newTestServer(t)

	var session sessionResource
	readResource(t, cs, sessionResourceURI, &session)
	assert.False(t, session.Authenticated)
	assert.Equal(t, "/login", session.View)

	res := callTool(t, cs, "taskraum_login", map[string]any{"email": "ada@example.com", "password": "correct-horse"})
	require.False(t, res.IsError)

	readResource(t, cs, sessionResourceURI, &session)
	assert.True(t, session.Authenticated)
	require.NotNil(t, session.User)
	assert.Equal(t, "Ada", session.User.Name)
	assert.Equal(t, "/dashboard", session.View)
	assert.Equal(t, []string{"/login"}, session.History)
}

func TestServer_ToolErrorsAreReported(t *testing.T) {
	_, cs := newTestServer(t)

	res := callTool(t, cs, "taskraum_projects_list", map[string]any{})
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "AUTH_REQUIRED")
}

func TestServer_BoardResource(t *testing.T) {
	_, cs := newTestServer(t)
	callTool(t, cs, "taskraum_login", map[string]any{"email": "ada@example.com", "password": "correct-horse"})

	res := callTool(t, cs, "taskraum_project_create", map[string]any{"title": "Launch"})
	require.False(t, res.IsError)
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var created tools.ProjectOutput
	require.NoError(t, json.Unmarshal(raw, &created))

	res = callTool(t, cs, "taskraum_task_create", map[string]any{"project_id": created.Project.ID, "title": "Announce"})
	require.False(t, res.IsError)

	var b struct {
		ProjectID string `json:"projectId"`
		Total     int    `json:"total"`
		Columns   []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"columns"`
	}
	readResource(t, cs, "taskraum://projects/"+created.Project.ID+"/board", &b)
	assert.Equal(t, created.Project.ID, b.ProjectID)
	assert.Equal(t, 1, b.Total)
	require.Len(t, b.Columns, 3)
	assert.Equal(t, 1, b.Columns[0].Count)
}

func TestServer_ListsToolsAndPrompts(t *testing.T) {
	_, cs := newTestServer(t)
	ctx := context.Background()

	toolsRes, err := cs.ListTools(ctx, &sdkmcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(toolsRes.Tools))
	for _, tool := range toolsRes.Tools {
		names = append(names, tool.Name)
	}
	assert.Len(t, names, 19)
	assert.Contains(t, names, "taskraum_board")

	promptsRes, err := cs.ListPrompts(ctx, &sdkmcp.ListPromptsParams{})
	require.NoError(t, err)
	assert.Len(t, promptsRes.Prompts, 2)
}

func TestParseResourceURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    map[string]string
		wantErr bool
	}{
		{uri: "taskraum://session", want: map[string]string{}},
		{uri: "taskraum://projects/p1/board", want: map[string]string{"project": "p1"}},
		{uri: "taskraum://projects/p1", wantErr: true},
		{uri: "taskraum://projects//board", wantErr: true},
		{uri: "taskraum://session/extra", wantErr: true},
		{uri: "taskraum://", wantErr: true},
		{uri: "taskraum://tasks/t1", wantErr: true},
		{uri: "http://session", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := parseResourceURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServer_Instructions(t *testing.T) {
	_, cs := newTestServer(t)

	result := cs.InitializeResult()
	require.NotNil(t, result)
	assert.Contains(t, result.Instructions, "taskraum_login")
	assert.Contains(t, result.Instructions, "AUTH_REQUIRED")
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, Version, result.ServerInfo.Version)
}

func TestServer_CompletesProjectIDs(t *testing.T) {
	_, cs := newTestServer(t)
	ctx := context.Background()
	callTool(t, cs, "taskraum_login", map[string]any{"email": "ada@example.com", "password": "correct-horse"})

	ids := make(map[string]string)
	for _, title := range []string{"Website relaunch", "Garden", "Web shop"} {
		res := callTool(t, cs, "taskraum_project_create", map[string]any{"title": title})
		require.False(t, res.IsError)
		raw, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		var out tools.ProjectOutput
		require.NoError(t, json.Unmarshal(raw, &out))
		ids[title] = out.Project.ID
	}

	res, err := cs.Complete(ctx, &sdkmcp.CompleteParams{
		Ref:      &sdkmcp.CompleteReference{Type: "ref/prompt", Name: "triage_project"},
		Argument: sdkmcp.CompleteParamsArgument{Name: "project_id", Value: "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ids["Web shop"], ids["Website relaunch"]}, res.Completion.Values)
	assert.Equal(t, 2, res.Completion.Total)

	res, err = cs.Complete(ctx, &sdkmcp.CompleteParams{
		Ref:      &sdkmcp.CompleteReference{Type: "ref/resource", URI: boardTemplateURI},
		Argument: sdkmcp.CompleteParamsArgument{Name: "id", Value: ids["Garden"][:4]},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Completion.Values, ids["Garden"])

	res, err = cs.Complete(ctx, &sdkmcp.CompleteParams{
		Ref:      &sdkmcp.CompleteReference{Type: "ref/prompt", Name: "triage_project"},
		Argument: sdkmcp.CompleteParamsArgument{Name: "focus", Value: "web"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Completion.Values)
}
