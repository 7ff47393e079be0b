// Package prompts contains MCP prompt implementations for Taskraum.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	BaseURL       string
	LoginViewPath string
}
