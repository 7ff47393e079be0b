package board

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// Filter narrows a board. Zero fields match everything.
type Filter struct {
	Statuses   []client.TaskStatus   `json:"statuses,omitempty"`
	Priorities []client.TaskPriority `json:"priorities,omitempty"`
	AssigneeID string                `json:"assigneeId,omitempty"`
	// DueBefore keeps tasks due strictly before this YYYY-MM-DD date.
	DueBefore string `json:"dueBefore,omitempty"`
	// Text keeps tasks whose title or description contains every word.
	Text string `json:"text,omitempty"`
}

// Column is one status lane of the board.
type Column struct {
	Status client.TaskStatus `json:"status"`
	Title  string            `json:"title"`
	Count  int               `json:"count"`
	Tasks  []client.Task     `json:"tasks"`
}

// Board is a project's tasks grouped by status.
type Board struct {
	ProjectID string   `json:"projectId"`
	Columns   []Column `json:"columns"`
	Total     int      `json:"total"`
	Matched   int      `json:"matched"`
	Summary   string   `json:"summary"`
}

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

// ColumnTitle renders a status as a column heading, e.g. "In Progress".
func ColumnTitle(s client.TaskStatus) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(string(s)), "_", " "))
}

// Build groups tasks into columns in board order. Columns excluded by
// f.Statuses are omitted; the others are present even when empty.
func Build(projectID string, tasks []client.Task, f Filter) *Board {
	idx := NewIndex(tasks)
	matched := idx.Match(f)

	b := &Board{
		ProjectID: projectID,
		Columns:   make([]Column, 0, len(client.TaskStatuses)),
		Total:     idx.Len(),
		Matched:   int(matched.GetCardinality()),
	}

	for _, status := range client.TaskStatuses {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, status) {
			continue
		}
		colBits := matched.Clone()
		colBits.And(unionOf(idx.byStatus, []client.TaskStatus{status}))

		colTasks := idx.Tasks(colBits)
		SortColumn(colTasks)
		b.Columns = append(b.Columns, Column{
			Status: status,
			Title:  ColumnTitle(status),
			Count:  len(colTasks),
			Tasks:  colTasks,
		})
	}

	b.Summary = summarize(b)
	return b
}

// SortColumn orders tasks by their explicit order, unordered tasks last,
// then by title.
func SortColumn(tasks []client.Task) {
	slices.SortStableFunc(tasks, func(a, b client.Task) int {
		switch {
		case a.Order != nil && b.Order != nil:
			if *a.Order != *b.Order {
				return *a.Order - *b.Order
			}
		case a.Order != nil:
			return -1
		case b.Order != nil:
			return 1
		}
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
}

func summarize(b *Board) string {
	parts := make([]string, 0, len(b.Columns))
	for _, col := range b.Columns {
		parts = append(parts, printer.Sprintf("%s %d", col.Title, col.Count))
	}
	head := printer.Sprintf("%d of %d tasks", b.Matched, b.Total)
	if len(parts) == 0 {
		return head
	}
	return head + ": " + strings.Join(parts, ", ")
}

// Counts returns the number of tasks per status across every column.
func Counts(tasks []client.Task) map[client.TaskStatus]int {
	idx := NewIndex(tasks)
	counts := make(map[client.TaskStatus]int, len(client.TaskStatuses))
	for _, s := range client.TaskStatuses {
		counts[s] = idx.Count(s)
	}
	return counts
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
