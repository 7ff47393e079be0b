// Package mcpsrv provides an extensible MCP server for Taskraum.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin Taskraum tools, prompts, and resources. Users can extend the
// server with custom tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server configured from the environment (TASKRAUM_BASE_URL and
// friends). Passing a nil client lets the server build one whose login
// redirects drive the server's navigation state:
//
//	server, err := mcpsrv.NewServer(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    ProjectID string `json:"project_id"`
//	}
//
//	type MyOutput struct {
//	    Count int `json:"count"`
//	}
//
//	server, err := mcpsrv.NewServer(nil,
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "count_tasks", Description: "Count tasks"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	                tasks, err := d.Client.ListAllTasks(ctx, in.ProjectID)
//	                return nil, MyOutput{Count: len(tasks)}, err
//	            }
//	        }),
//	)
//
// # Configuration
//
// Configure logging and other options:
//
//	server, err := mcpsrv.NewServer(nil,
//	    mcpsrv.WithBaseURL("https://tasks.example.com"),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/taskraum-mcp.log"),
//	)
package mcpsrv
