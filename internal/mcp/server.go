package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/internal/mcp/prompts"
	"github.com/taskraum/taskraum-mcp/internal/mcp/tools"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Registration adds tools, prompts or resources to the server. It receives
// the same Deps the builtin tools use.
type Registration func(srv *sdkmcp.Server, deps *tools.Deps)

// Server is the Taskraum MCP server: builtin tools, the session and board
// resources, prompts, and any extra registrations.
type Server struct {
	mcpServer *sdkmcp.Server
	deps      *tools.Deps

	builtinTools   bool
	builtinPrompts bool
	registrations  []Registration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithBuiltinTools enables the taskraum_* tools together with the
// taskraum:// resources they share state with.
func WithBuiltinTools() ServerOption {
	return func(s *Server) { s.builtinTools = true }
}

// WithBuiltinPrompts enables taskraum_guide and triage_project.
func WithBuiltinPrompts() ServerOption {
	return func(s *Server) { s.builtinPrompts = true }
}

// WithRegistration runs fn after the builtins are registered.
func WithRegistration(fn Registration) ServerOption {
	return func(s *Server) { s.registrations = append(s.registrations, fn) }
}

// NewServer builds the server around deps. Client and Config are required;
// Router and Cache are optional but the session resource and argument
// completion are less useful without them.
func NewServer(deps *tools.Deps, opts ...ServerOption) (*Server, error) {
	if deps == nil || deps.Client == nil || deps.Config == nil {
		return nil, fmt.Errorf("deps with a client and config is required")
	}

	s := &Server{deps: deps}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "taskraum-mcp", Version: Version},
		&sdkmcp.ServerOptions{
			Instructions:      instructions(deps, s.builtinTools),
			Logger:            slog.Default(),
			CompletionHandler: s.complete,
		},
	)
	s.mcpServer.AddReceivingMiddleware(LoggingMiddleware())

	if s.builtinTools {
		tools.Register(s.mcpServer, deps)
		s.registerResources()
	}
	if s.builtinPrompts {
		prompts.Register(s.mcpServer, &prompts.Config{
			BaseURL:       deps.Config.BaseURL,
			LoginViewPath: deps.Config.LoginViewPath,
		})
	}
	for _, fn := range s.registrations {
		fn(s.mcpServer, deps)
	}

	return s, nil
}

// instructions tells the client how sessions behave on this server.
func instructions(deps *tools.Deps, builtinTools bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Taskraum task boards at %s.", deps.Config.BaseURL)
	if !builtinTools {
		return sb.String()
	}
	sb.WriteString(" Start with taskraum_whoami; if it reports no session, call taskraum_login.")
	sb.WriteString(" Expired sessions are refreshed transparently. A tool error starting with AUTH_REQUIRED means the refresh failed and a new login is needed.")
	sb.WriteString(" Read taskraum://session for the current user and view.")
	return sb.String()
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server for testing.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}
