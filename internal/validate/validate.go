// Package validate checks request payloads against JSON Schemas reflected
// from their Go types before they are sent to the backend.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Error lists every constraint a payload violates.
type Error struct {
	Type     string
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Type, strings.Join(e.Problems, "; "))
}

// Validator compiles one schema per payload type and caches it.
type Validator struct {
	reflector *invopop.Reflector

	mu      sync.Mutex
	schemas map[reflect.Type]*jsonschema.Schema
}

// New creates a Validator.
func New() *Validator {
	return &Validator{
		reflector: &invopop.Reflector{
			DoNotReference: true,
			ExpandedStruct: true,
			Anonymous:      true,
		},
		schemas: make(map[reflect.Type]*jsonschema.Schema),
	}
}

var defaultValidator = New()

// Check validates payload with the package's shared Validator.
func Check(payload any) error {
	return defaultValidator.Check(payload)
}

// Check validates payload against the schema of its type. It returns nil or
// an *Error.
func (v *Validator) Check(payload any) error {
	t := reflect.TypeOf(payload)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return &Error{Type: "payload", Problems: []string{"payload is required"}}
	}

	schema, err := v.schemaFor(t)
	if err != nil {
		return err
	}

	// Round-trip through JSON so the instance looks exactly like what goes
	// on the wire.
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", t.Name(), err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decoding %s: %w", t.Name(), err)
	}

	if err := schema.Validate(instance); err != nil {
		return &Error{Type: t.Name(), Problems: extractProblems(err)}
	}
	return nil
}

// Schema returns the JSON Schema document for payload's type.
func (v *Validator) Schema(payload any) (map[string]any, error) {
	doc, err := v.reflect(reflect.TypeOf(payload))
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema for %T is not an object", payload)
	}
	return m, nil
}

func (v *Validator) schemaFor(t reflect.Type) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.schemas[t]; ok {
		return s, nil
	}

	doc, err := v.reflect(t)
	if err != nil {
		return nil, err
	}

	url := "mem://" + t.PkgPath() + "/" + t.Name() + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("adding schema for %s: %w", t.Name(), err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %s: %w", t.Name(), err)
	}

	v.schemas[t] = compiled
	return compiled, nil
}

// reflect builds the schema as a plain JSON value, the form the compiler
// accepts as a resource.
func (v *Validator) reflect(t reflect.Type) (any, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, errors.New("cannot reflect a nil type")
	}

	raw, err := json.Marshal(v.reflector.ReflectFromType(t))
	if err != nil {
		return nil, fmt.Errorf("marshaling schema for %s: %w", t.Name(), err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling schema for %s: %w", t.Name(), err)
	}
	return doc, nil
}

var printer = message.NewPrinter(language.English)

// extractProblems flattens a validation error into sorted "path: message"
// lines, one per leaf failure.
func extractProblems(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	seen := make(map[string]struct{})
	var out []string
	collect(verr, func(path, msg string) {
		line := msg
		if path != "" {
			line = path + ": " + msg
		}
		if _, dup := seen[line]; dup {
			return
		}
		seen[line] = struct{}{}
		out = append(out, line)
	})
	slices.Sort(out)
	return out
}

func collect(err *jsonschema.ValidationError, emit func(path, msg string)) {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			path := ""
			if len(err.InstanceLocation) > 0 {
				path = "/" + strings.Join(err.InstanceLocation, "/")
			}
			emit(path, msg)
		}
	}
	for _, cause := range err.Causes {
		collect(cause, emit)
	}
}
