package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolPrefix marks the builtin tools whose annotations are derived from the
// tool name.
const toolPrefix = "taskraum_"

// AddTool registers a Taskraum tool. It panics when Out cannot be returned
// as structured content (see CheckOutputSchema). Builtin tools without
// annotations get them from their name, and every handler error reaches the
// client as a coded error.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)

	tool := *t
	if tool.Annotations == nil {
		tool.Annotations = Annotations(tool.Name)
	}
	sdkmcp.AddTool(srv, &tool, withCodedErrors(h))
}

// withCodedErrors passes handler errors through WrapAPIError so clients
// always see one of the ErrCode* prefixes.
func withCodedErrors[In, Out any](h sdkmcp.ToolHandlerFor[In, Out]) sdkmcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
		res, out, err := h(ctx, req, in)
		if err != nil {
			return res, out, WrapAPIError(err)
		}
		return res, out, nil
	}
}

// Annotations derives MCP hints from a builtin tool name. Reads end in
// _list, _get, _board, _overview, _query or _whoami; deletes end in _delete.
// Every builtin tool talks only to the configured backend. Names outside the
// taskraum_ namespace get nil.
func Annotations(name string) *sdkmcp.ToolAnnotations {
	if !strings.HasPrefix(name, toolPrefix) {
		return nil
	}
	closed := false
	a := &sdkmcp.ToolAnnotations{OpenWorldHint: &closed}

	verb := name[strings.LastIndex(name, "_")+1:]
	switch verb {
	case "list", "get", "board", "overview", "query", "whoami":
		a.ReadOnlyHint = true
		a.IdempotentHint = true
	case "delete":
		destructive := true
		a.DestructiveHint = &destructive
		a.IdempotentHint = true
	default:
		destructive := false
		a.DestructiveHint = &destructive
		a.IdempotentHint = verb == "update" || verb == "move"
	}
	return a
}

// CheckOutputSchema panics unless the zero value of T validates against the
// schema the SDK infers for it. Nil slices and maps marshal as null while
// the schema says array or object; tag them omitzero. json.RawMessage is
// rejected outright since the schema sees an array of bytes.
func CheckOutputSchema[T any](toolName string) {
	if err := checkOutput(reflect.TypeFor[T]()); err != nil {
		panic(fmt.Sprintf("AddTool %q: %v", toolName, err))
	}
}

var (
	anyType        = reflect.TypeFor[any]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
)

func checkOutput(rt reflect.Type) error {
	if rt == anyType {
		return nil
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if paths := rawMessagePaths(rt, "", map[reflect.Type]bool{}); len(paths) > 0 {
		return fmt.Errorf("output type %s holds json.RawMessage at %s; use any and decode into it",
			rt, strings.Join(paths, ", "))
	}

	// Inference failures are left to the SDK, which reports them itself.
	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return nil
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	if err := resolved.Validate(&v); err != nil {
		return fmt.Errorf("zero value of output type %s is %s, which fails its schema: %w; tag nil slices and maps omitzero",
			rt, data, err)
	}
	return nil
}

// rawMessagePaths lists the exported field paths of t that are
// json.RawMessage, looking through pointers, slices, arrays and maps.
func rawMessagePaths(t reflect.Type, path string, seen map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == rawMessageType {
		return []string{path}
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	defer delete(seen, t)

	switch t.Kind() {
	case reflect.Struct:
		var found []string
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			found = append(found, rawMessagePaths(f.Type, joinPath(path, f.Name), seen)...)
		}
		return found
	case reflect.Slice, reflect.Array:
		return rawMessagePaths(t.Elem(), joinPath(path, "[]"), seen)
	case reflect.Map:
		return rawMessagePaths(t.Elem(), joinPath(path, "[value]"), seen)
	}
	return nil
}

func joinPath(path, elem string) string {
	if path == "" {
		return elem
	}
	return path + "." + elem
}
