package tools

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/taskraum/taskraum-mcp/internal/query"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// QueryInput is the input for taskraum_query.
type QueryInput struct {
	Expression  string            `json:"expression" jsonschema:"jq expression. $today holds the current date as YYYY-MM-DD"`
	Path        string            `json:"path,omitempty" jsonschema:"API path to GET, starting with /api/"`
	Params      map[string]string `json:"params,omitempty" jsonschema:"Query string parameters for path"`
	ProjectIDs  []string          `json:"project_ids,omitempty" jsonschema:"Instead of path, run against the full task list of each project"`
	Deduplicate bool              `json:"deduplicate,omitempty" jsonschema:"Drop repeated values"`
	MaxResults  int               `json:"max_results,omitempty" jsonschema:"Maximum number of values to return"`
}

// QueryOutput is the output for taskraum_query.
type QueryOutput struct {
	Values      []any          `json:"values,omitzero"`
	Errors      []string       `json:"errors,omitzero"`
	RawCount    int            `json:"raw_count"`
	Truncated   bool           `json:"truncated,omitempty"`
	LabelCounts map[string]int `json:"label_counts,omitzero"`
}

// ToolQuery runs a jq expression over an API response or over project
// task lists.
func ToolQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, QueryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, QueryOutput, error) {
		if strings.TrimSpace(input.Expression) == "" {
			return nil, QueryOutput{}, ErrInvalidInput("expression is required")
		}
		if (input.Path == "") == (len(input.ProjectIDs) == 0) {
			return nil, QueryOutput{}, ErrInvalidInput("pass exactly one of path or project_ids")
		}
		if _, err := d.Query.Compile(input.Expression); err != nil {
			return nil, QueryOutput{}, ErrInvalidInput(err.Error())
		}

		var (
			docs []query.Doc
			err  error
		)
		if input.Path != "" {
			docs, err = d.fetchPath(ctx, input.Path, input.Params)
		} else {
			docs, err = d.fetchTaskDocs(ctx, input.ProjectIDs)
		}
		if err != nil {
			return nil, QueryOutput{}, err
		}

		opts := query.Options{Deduplicate: input.Deduplicate, MaxResults: d.Config.QueryMaxResults}
		if input.MaxResults > 0 && (opts.MaxResults <= 0 || input.MaxResults < opts.MaxResults) {
			opts.MaxResults = input.MaxResults
		}

		res, err := d.Query.QueryDocs(ctx, docs, input.Expression, opts)
		if err != nil {
			return nil, QueryOutput{}, WrapAPIError(err)
		}
		return nil, QueryOutput{
			Values:      res.Values,
			Errors:      res.Errors,
			RawCount:    res.RawCount,
			Truncated:   res.Truncated,
			LabelCounts: res.LabelCounts,
		}, nil
	}
}

func (d *Deps) fetchPath(ctx context.Context, p string, params map[string]string) ([]query.Doc, error) {
	if !strings.HasPrefix(p, "/api/") || path.Clean(p) != p {
		return nil, ErrInvalidInput("path must be a clean API path starting with /api/")
	}

	r := &client.Request{Method: http.MethodGet, Path: p}
	if len(params) > 0 {
		r.Query = make(url.Values, len(params))
		for k, v := range params {
			r.Query.Set(k, v)
		}
	}
	resp, err := d.Client.Send(ctx, r)
	if err != nil {
		return nil, WrapAPIError(err)
	}

	data, err := query.Decode(resp.Body)
	if err != nil {
		return nil, &CodedError{Code: ErrCodeTaskraumError, Message: "response is not JSON", Cause: err}
	}
	return []query.Doc{{Label: p, Data: data}}, nil
}

func (d *Deps) fetchTaskDocs(ctx context.Context, projectIDs []string) ([]query.Doc, error) {
	docs := make([]query.Doc, len(projectIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, d.Config.FetchWorkers))
	for i, id := range projectIDs {
		g.Go(func() error {
			tasks, err := d.Client.ListAllTasks(gctx, id)
			if err != nil {
				return err
			}
			data, err := query.ToInput(tasks)
			if err != nil {
				return err
			}
			docs[i] = query.Doc{Label: id, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, WrapAPIError(err)
	}
	return docs, nil
}
