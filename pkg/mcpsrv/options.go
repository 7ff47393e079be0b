package mcpsrv

import (
	"context"
	"net/http"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/internal/config"
	internalmcp "github.com/taskraum/taskraum-mcp/internal/mcp"
	"github.com/taskraum/taskraum-mcp/internal/mcp/tools"
)

type serverConfig struct {
	config     *config.Config
	httpClient *http.Client

	logLevel string
	logFile  string

	disableBuiltinTools   bool
	disableBuiltinPrompts bool

	registrations []internalmcp.Registration
}

// Option configures the server.
type Option func(*serverConfig)

// WithLogLevel overrides LOG_LEVEL (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) { cfg.logLevel = level }
}

// WithLogFile overrides LOG_FILE. Logs go to stderr when no file is set.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) { cfg.logFile = path }
}

// WithBaseURL overrides TASKRAUM_BASE_URL for a client built by NewServer.
func WithBaseURL(url string) Option {
	return func(cfg *serverConfig) { cfg.config.BaseURL = url }
}

// WithHTTPClient sets the HTTP client a client built by NewServer sends
// through. A cookie jar is added when it has none.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *serverConfig) { cfg.httpClient = c }
}

// WithRefreshTimeout overrides REFRESH_TIMEOUT_MS, the bound on one session
// refresh, for a client built by NewServer.
func WithRefreshTimeout(d time.Duration) Option {
	return func(cfg *serverConfig) {
		if d > 0 {
			cfg.config.RefreshTimeout = d
		}
	}
}

// WithFetchWorkers overrides FETCH_WORKERS, the number of projects
// taskraum_overview and taskraum_query load at once.
func WithFetchWorkers(n int) Option {
	return func(cfg *serverConfig) {
		if n > 0 {
			cfg.config.FetchWorkers = n
		}
	}
}

// WithoutBuiltinTools leaves out the taskraum_* tools and the taskraum://
// resources.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) { cfg.disableBuiltinTools = true }
}

// WithoutBuiltinPrompts leaves out taskraum_guide and triage_project.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) { cfg.disableBuiltinPrompts = true }
}

// WithTool registers a tool that needs no Taskraum access.
//
// Registration panics when the zero value of Out would fail the output
// schema the SDK infers, e.g. a nil slice without omitzero. Handler errors
// are reported to the client with an error code prefix such as NOT_FOUND.
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, _ *tools.Deps) {
			tools.AddTool[In, Out](srv, tool, handler)
		})
	}
}

// WithDepsTool registers a tool built from the server's Deps, for tools
// that call the Taskraum API or read the project cache:
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "project_title", Description: "Look up a project title"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, TitleInput) (*mcp.CallToolResult, TitleOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in TitleInput) (*mcp.CallToolResult, TitleOutput, error) {
//	            p, err := d.Client.GetProject(ctx, in.ProjectID)
//	            if err != nil {
//	                return nil, TitleOutput{}, err
//	            }
//	            return nil, TitleOutput{Title: p.Title}, nil
//	        }
//	    },
//	)
//
// A *client.APIError returned by the handler reaches the client coded the
// same way the builtin tools report it, e.g. AUTH_REQUIRED for a session
// that could not be refreshed.
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, d *tools.Deps) {
			tools.AddTool[In, Out](srv, tool, builder(publicDeps(d)))
		})
	}
}

// WithPrompt registers a prompt.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, _ *tools.Deps) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a resource template. Use a scheme other
// than taskraum://, which the builtin resources own.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server, _ *tools.Deps) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
