// Package tools contains MCP tool implementations for Taskraum.
package tools

import (
	"fmt"
	"strings"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// MIME type constant.
const MimeJSON = "application/json"

// nonEmpty returns nil for blank strings so optional fields stay unset.
func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func parseTaskStatus(s string) (client.TaskStatus, error) {
	status := client.TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !client.ValidTaskStatus(status) {
		return "", ErrInvalidInput(fmt.Sprintf("unknown task status %q (want TODO, IN_PROGRESS or DONE)", s))
	}
	return status, nil
}

func parseTaskStatuses(ss []string) ([]client.TaskStatus, error) {
	out := make([]client.TaskStatus, 0, len(ss))
	for _, s := range ss {
		status, err := parseTaskStatus(s)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}

func parseProjectStatus(s string) (client.ProjectStatus, error) {
	status := client.ProjectStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !client.ValidProjectStatus(status) {
		return "", ErrInvalidInput(fmt.Sprintf("unknown project status %q (want ACTIVE, PAUSED or ARCHIVED)", s))
	}
	return status, nil
}

func parsePriority(s string) (client.TaskPriority, error) {
	p := client.TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	if !client.ValidTaskPriority(p) {
		return "", ErrInvalidInput(fmt.Sprintf("unknown priority %q (want LOW, MEDIUM or HIGH)", s))
	}
	return p, nil
}

func parsePriorities(ss []string) ([]client.TaskPriority, error) {
	out := make([]client.TaskPriority, 0, len(ss))
	for _, s := range ss {
		p, err := parsePriority(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrInvalidInput(name + " is required")
	}
	return nil
}
