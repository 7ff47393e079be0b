// Package board builds kanban views of a project's tasks.
package board

import (
	"strings"
	"unicode"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// Index holds inverted indexes over a fixed set of tasks. Document IDs are
// positions in the task slice handed to NewIndex.
type Index struct {
	tasks []client.Task

	all        *roaring.Bitmap
	byStatus   map[client.TaskStatus]*roaring.Bitmap
	byPriority map[client.TaskPriority]*roaring.Bitmap
	byAssignee map[string]*roaring.Bitmap
	byToken    map[string]*roaring.Bitmap
	withDue    *roaring.Bitmap
}

// NewIndex indexes tasks. The slice is retained, not copied.
func NewIndex(tasks []client.Task) *Index {
	idx := &Index{
		tasks:      tasks,
		all:        roaring.New(),
		byStatus:   make(map[client.TaskStatus]*roaring.Bitmap),
		byPriority: make(map[client.TaskPriority]*roaring.Bitmap),
		byAssignee: make(map[string]*roaring.Bitmap),
		byToken:    make(map[string]*roaring.Bitmap),
		withDue:    roaring.New(),
	}

	for i := range tasks {
		t := &tasks[i]
		docID := uint32(i)
		idx.all.Add(docID)

		addTo(idx.byStatus, t.Status, docID)
		if t.Priority != nil {
			addTo(idx.byPriority, *t.Priority, docID)
		}
		if t.AssigneeID != nil && *t.AssigneeID != "" {
			addTo(idx.byAssignee, *t.AssigneeID, docID)
		}
		if t.DueDate != nil && *t.DueDate != "" {
			idx.withDue.Add(docID)
		}
		for _, tok := range Tokenize(t.Title) {
			addTo(idx.byToken, tok, docID)
		}
		if t.Description != nil {
			for _, tok := range Tokenize(*t.Description) {
				addTo(idx.byToken, tok, docID)
			}
		}
	}
	return idx
}

func addTo[K comparable](m map[K]*roaring.Bitmap, key K, docID uint32) {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(docID)
}

// Len returns the number of indexed tasks.
func (idx *Index) Len() int {
	return len(idx.tasks)
}

// Count returns how many tasks sit in status.
func (idx *Index) Count(status client.TaskStatus) int {
	if bm, ok := idx.byStatus[status]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}

// Match returns the bitmap of tasks satisfying f. Values within one filter
// field are ORed; fields are ANDed.
func (idx *Index) Match(f Filter) *roaring.Bitmap {
	result := idx.all.Clone()

	if len(f.Statuses) > 0 {
		result.And(unionOf(idx.byStatus, f.Statuses))
	}
	if len(f.Priorities) > 0 {
		result.And(unionOf(idx.byPriority, f.Priorities))
	}
	if f.AssigneeID != "" {
		result.And(unionOf(idx.byAssignee, []string{f.AssigneeID}))
	}
	for _, tok := range Tokenize(f.Text) {
		result.And(unionOf(idx.byToken, []string{tok}))
	}
	if f.DueBefore != "" {
		result.And(idx.dueBefore(f.DueBefore))
	}
	return result
}

// Tasks returns the tasks for the doc IDs in bm, in index order.
func (idx *Index) Tasks(bm *roaring.Bitmap) []client.Task {
	out := make([]client.Task, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, idx.tasks[it.Next()])
	}
	return out
}

// dueBefore scans tasks with a due date, comparing the YYYY-MM-DD prefix.
func (idx *Index) dueBefore(date string) *roaring.Bitmap {
	date = datePrefix(date)
	bm := roaring.New()
	it := idx.withDue.Iterator()
	for it.HasNext() {
		docID := it.Next()
		if datePrefix(*idx.tasks[docID].DueDate) < date {
			bm.Add(docID)
		}
	}
	return bm
}

func unionOf[K comparable](m map[K]*roaring.Bitmap, keys []K) *roaring.Bitmap {
	bm := roaring.New()
	for _, k := range keys {
		if b, ok := m[k]; ok {
			bm.Or(b)
		}
	}
	return bm
}

func datePrefix(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// Tokenize splits text into lowercase alphanumeric words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
