package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func prio(p client.TaskPriority) *client.TaskPriority { return &p }

func sampleTasks() []client.Task {
	return []client.Task{
		{ID: "t1", Title: "Write release notes", Status: client.TaskTodo, Priority: prio(client.PriorityLow), DueDate: strPtr("2026-11-10T00:00:00Z")},
		{ID: "t2", Title: "Fix login bug", Status: client.TaskInProgress, Priority: prio(client.PriorityHigh), AssigneeID: strPtr("u1"), Order: intPtr(1)},
		{ID: "t3", Title: "Deploy", Status: client.TaskDone, DueDate: strPtr("2026-10-01")},
		{ID: "t4", Title: "Audit login flow", Status: client.TaskTodo, Priority: prio(client.PriorityHigh), AssigneeID: strPtr("u2"), Order: intPtr(0), DueDate: strPtr("2026-10-15")},
		{ID: "t5", Title: "Backup database", Status: client.TaskTodo, Description: strPtr("Nightly snapshot"), AssigneeID: strPtr("u1")},
	}
}

func ids(tasks []client.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestBuild_ColumnsInBoardOrder(t *testing.T) {
	b := Build("p1", sampleTasks(), Filter{})

	require.Len(t, b.Columns, 3)
	assert.Equal(t, client.TaskTodo, b.Columns[0].Status)
	assert.Equal(t, "Todo", b.Columns[0].Title)
	assert.Equal(t, "In Progress", b.Columns[1].Title)
	assert.Equal(t, "Done", b.Columns[2].Title)

	assert.Equal(t, []string{"t4", "t5", "t1"}, ids(b.Columns[0].Tasks), "ordered first, then by title")
	assert.Equal(t, 5, b.Total)
	assert.Equal(t, 5, b.Matched)
	assert.Equal(t, "5 of 5 tasks: Todo 3, In Progress 1, Done 1", b.Summary)
}

func TestBuild_EmptyColumnsHaveNonNilTasks(t *testing.T) {
	b := Build("p1", nil, Filter{})
	require.Len(t, b.Columns, 3)
	for _, col := range b.Columns {
		assert.NotNil(t, col.Tasks)
		assert.Equal(t, 0, col.Count)
	}
}

func TestBuild_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"priority", Filter{Priorities: []client.TaskPriority{client.PriorityHigh}}, []string{"t4", "t2"}},
		{"assignee", Filter{AssigneeID: "u1"}, []string{"t5", "t2"}},
		{"due before", Filter{DueBefore: "2026-10-20"}, []string{"t4", "t3"}},
		{"text", Filter{Text: "login"}, []string{"t4", "t2"}},
		{"text in description", Filter{Text: "snapshot"}, []string{"t5"}},
		{"text all words", Filter{Text: "login audit"}, []string{"t4"}},
		{"combined", Filter{Priorities: []client.TaskPriority{client.PriorityHigh}, AssigneeID: "u1"}, []string{"t2"}},
		{"no match", Filter{AssigneeID: "nobody"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Build("p1", sampleTasks(), tt.filter)
			var got []string
			for _, col := range b.Columns {
				got = append(got, ids(col.Tasks)...)
			}
			if got == nil {
				got = []string{}
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), b.Matched)
		})
	}
}

func TestBuild_StatusFilterDropsColumns(t *testing.T) {
	b := Build("p1", sampleTasks(), Filter{Statuses: []client.TaskStatus{client.TaskDone}})
	require.Len(t, b.Columns, 1)
	assert.Equal(t, client.TaskDone, b.Columns[0].Status)
	assert.Equal(t, 1, b.Matched)
	assert.Equal(t, "1 of 5 tasks: Done 1", b.Summary)
}

func TestSortColumn(t *testing.T) {
	tasks := []client.Task{
		{ID: "b", Title: "beta"},
		{ID: "o2", Title: "zeta", Order: intPtr(2)},
		{ID: "a", Title: "Alpha"},
		{ID: "o1", Title: "omega", Order: intPtr(1)},
	}
	SortColumn(tasks)
	assert.Equal(t, []string{"o1", "o2", "a", "b"}, ids(tasks))
}

func TestCounts(t *testing.T) {
	counts := Counts(sampleTasks())
	assert.Equal(t, 3, counts[client.TaskTodo])
	assert.Equal(t, 1, counts[client.TaskInProgress])
	assert.Equal(t, 1, counts[client.TaskDone])
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"fix", "login", "bug"}, Tokenize("Fix login-bug, login!"))
	assert.Empty(t, Tokenize("  "))
}
