// Package query runs jq expressions over Taskraum API responses.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itchyny/gojq"
)

// Variables every expression may reference.
var variables = []string{"$today"}

// Doc is one labelled input, e.g. the tasks of one project.
type Doc struct {
	Label string
	Data  any
}

// Options control how results are collected.
type Options struct {
	Deduplicate bool
	MaxResults  int // 0 means unlimited
}

// Result contains the results of a jq run.
type Result struct {
	Values      []any          `json:"values"`
	Errors      []string       `json:"errors,omitempty"`
	RawCount    int            `json:"rawCount"`
	Truncated   bool           `json:"truncated,omitempty"`
	LabelCounts map[string]int `json:"labelCounts,omitempty"`
}

// Engine compiles jq expressions and keeps recently used ones.
type Engine struct {
	compiled *lru.Cache[string, *gojq.Code]
	now      func() time.Time
}

// NewEngine creates a query engine caching up to cacheSize compiled
// expressions.
func NewEngine(cacheSize int) *Engine {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	c, _ := lru.New[string, *gojq.Code](cacheSize)
	return &Engine{compiled: c, now: time.Now}
}

// Compile parses and compiles expression, reusing a cached program.
func (e *Engine) Compile(expression string) (*gojq.Code, error) {
	if code, ok := e.compiled.Get(expression); ok {
		return code, nil
	}

	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q, gojq.WithVariables(variables))
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	e.compiled.Add(expression, code)
	return code, nil
}

// Query runs expression against a single decoded JSON value.
func (e *Engine) Query(ctx context.Context, input any, expression string, opts Options) (*Result, error) {
	return e.QueryDocs(ctx, []Doc{{Label: "input", Data: input}}, expression, opts)
}

// QueryJSON decodes data and runs expression against it.
func (e *Engine) QueryJSON(ctx context.Context, data []byte, expression string, opts Options) (*Result, error) {
	input, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return e.Query(ctx, input, expression, opts)
}

// QueryDocs runs expression against every doc in turn. Runtime errors are
// collected per label instead of failing the whole run.
func (e *Engine) QueryDocs(ctx context.Context, docs []Doc, expression string, opts Options) (*Result, error) {
	code, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	today := e.now().Format(time.DateOnly)

	result := &Result{
		Values:      make([]any, 0),
		LabelCounts: make(map[string]int),
	}
	seen := make(map[string]bool)
	seenErrors := make(map[string]bool)

	for _, doc := range docs {
		if result.Truncated {
			break
		}

		iter := code.RunWithContext(ctx, doc.Data, today)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				msg := formatJQError(doc.Label, err)
				if !seenErrors[msg] {
					seenErrors[msg] = true
					result.Errors = append(result.Errors, msg)
				}
				continue
			}
			if v == nil {
				continue
			}

			result.RawCount++
			result.LabelCounts[doc.Label]++

			if opts.Deduplicate {
				key := valueKey(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}

			result.Values = append(result.Values, v)
			if opts.MaxResults > 0 && len(result.Values) >= opts.MaxResults {
				result.Truncated = true
				break
			}
		}
	}

	return result, nil
}

// Decode turns JSON bytes into the generic form gojq operates on.
func Decode(data []byte) (any, error) {
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}
	return input, nil
}

// ToInput converts a Go value, e.g. []client.Task, into gojq input by way
// of its JSON encoding.
func ToInput(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding query input: %w", err)
	}
	return Decode(data)
}

// formatJQError adds a hint to common runtime errors. gojq reports these as
// plain errors, so the hints are picked by message text.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()
	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the field may be missing on this record)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected a list but got an object, try .content[] for paged responses)"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected an object but got a list, try adding '[]')"
	}
	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}

func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
