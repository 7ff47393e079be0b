package mcpsrv

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskraum/taskraum-mcp/internal/testbackend"
)

type projectCountInput struct {
	Status string `json:"status,omitempty"`
}

type projectCountOutput struct {
	Count int    `json:"count"`
	View  string `json:"view"`
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "test"}, nil).Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func TestNewServer_BuildsClientFromConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	b := testbackend.New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()
	b.AddUser("ada@example.com", "correct-horse", "Ada")

	s, err := NewServer(nil,
		WithBaseURL(srv.URL),
		WithoutBuiltinPrompts(),
		WithDepsTool(&mcp.Tool{Name: "project_count", Description: "Count projects"},
			func(d *Deps) func(context.Context, *mcp.CallToolRequest, projectCountInput) (*mcp.CallToolResult, projectCountOutput, error) {
				return func(ctx context.Context, req *mcp.CallToolRequest, in projectCountInput) (*mcp.CallToolResult, projectCountOutput, error) {
					projects, err := d.Client.ListProjects(ctx, nil)
					if err != nil {
						return nil, projectCountOutput{}, err
					}
					return nil, projectCountOutput{Count: len(projects), View: d.Router.Location()}, nil
				}
			}),
	)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, srv.URL, s.Deps().Client.BaseURL())
	assert.Equal(t, "/login", s.Deps().Router.Location())

	cs := connect(t, s)
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "taskraum_login", Arguments: map[string]any{
		"email": "ada@example.com", "password": "correct-horse",
	}})
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "project_count", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out projectCountOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 0, out.Count)
	assert.Equal(t, "/dashboard", out.View)

	// A session that cannot be refreshed sends the router to the login view.
	b.ExpireAccess()
	b.RevokeRefresh()
	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "project_count", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "AUTH_REQUIRED")
	assert.Equal(t, "/login", s.Deps().Router.Location())
}

func TestNewServer_WithoutBuiltins(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := NewServer(nil,
		WithoutBuiltinTools(),
		WithoutBuiltinPrompts(),
		WithTool(&mcp.Tool{Name: "echo", Description: "Echo"},
			func(ctx context.Context, req *mcp.CallToolRequest, in projectCountInput) (*mcp.CallToolResult, projectCountOutput, error) {
				return nil, projectCountOutput{View: in.Status}, nil
			}),
	)
	require.NoError(t, err)
	defer s.Close()

	cs := connect(t, s)
	list, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, list.Tools, 1)
	assert.Equal(t, "echo", list.Tools[0].Name)
}

func TestNewServer_ConfigOptions(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := NewServer(nil,
		WithBaseURL("https://tasks.example.com"),
		WithRefreshTimeout(3*time.Second),
		WithFetchWorkers(2),
		WithFetchWorkers(0),
		WithoutBuiltinPrompts(),
	)
	require.NoError(t, err)
	defer s.Close()

	cfg := s.Deps().Config
	assert.Equal(t, "https://tasks.example.com", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, 2, cfg.FetchWorkers, "non-positive values are ignored")
	assert.Equal(t, "https://tasks.example.com", s.Deps().Client.BaseURL())
}
