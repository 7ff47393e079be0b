package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/internal/cache"
	"github.com/taskraum/taskraum-mcp/internal/config"
	"github.com/taskraum/taskraum-mcp/internal/logging"
	"github.com/taskraum/taskraum-mcp/internal/mcp"
	"github.com/taskraum/taskraum-mcp/internal/mcp/tools"
	"github.com/taskraum/taskraum-mcp/internal/nav"
	"github.com/taskraum/taskraum-mcp/internal/query"
	"github.com/taskraum/taskraum-mcp/internal/validate"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// queryCacheSize is the number of compiled jq expressions kept.
const queryCacheSize = 64

// Server is the Taskraum MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a Taskraum MCP server configured from the environment
// and opts.
//
// When c is nil the server builds a client from the configuration, wired to
// the server's navigation router so that unrecoverable session failures land
// on the login view. A non-nil client is used as-is and keeps its own
// navigator.
func NewServer(c *client.Client, opts ...Option) (*Server, error) {
	cfg := &serverConfig{config: config.Load()}
	for _, opt := range opts {
		opt(cfg)
	}

	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		Format:     cfg.config.LogFormat,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	router := nav.NewRouter(cfg.config.LoginViewPath, cfg.config.LoginViewPath)
	if c == nil {
		c = newClient(cfg.config, cfg.httpClient, router)
	}
	projectCache, err := cache.NewProjectCache(cfg.config.ProjectCacheMaxItems)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create project cache: %w", err)
	}

	toolDeps := &tools.Deps{
		Client:    c,
		Router:    router,
		Cache:     projectCache,
		Config:    cfg.config,
		Validator: validate.New(),
		Query:     query.NewEngine(queryCacheSize),
	}

	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	for _, fn := range cfg.registrations {
		internalOpts = append(internalOpts, mcp.WithRegistration(fn))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       publicDeps(toolDeps),
		logCleanup: logCleanup,
	}, nil
}

// newClient builds a Taskraum client from cfg. The client navigates through
// navigator when a session cannot be recovered. httpClient may be nil; a
// cookie jar is added when it has none.
func newClient(cfg *config.Config, httpClient *http.Client, navigator client.Navigator) *client.Client {
	hc := &http.Client{Timeout: cfg.HTTPClientTimeout}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
	}
	if hc.Jar == nil {
		hc.Jar = client.NewCookieJar()
	}

	opts := []client.Option{
		client.WithBaseURL(cfg.BaseURL),
		client.WithHTTPClient(hc),
		client.WithLoginView(cfg.LoginViewPath),
		client.WithAuthPaths(client.AuthPaths{
			Login:    cfg.AuthLoginPath,
			Register: cfg.AuthRegisterPath,
			Refresh:  cfg.AuthRefreshPath,
			Logout:   cfg.AuthLogoutPath,
			Me:       cfg.AuthMePath,
		}),
		client.WithRefreshTimeout(cfg.RefreshTimeout),
	}
	if navigator != nil {
		opts = append(opts, client.WithNavigator(navigator))
	}
	return client.New(opts...)
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("starting taskraum MCP server",
		slog.String("base_url", s.deps.Client.BaseURL()),
		slog.String("version", mcp.Version),
	)
	return s.internal.Run(ctx)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server for testing.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
