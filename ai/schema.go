package ai

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReplySchema is the reflected JSON schema of a reply type together with
// its compiled validator
type ReplySchema struct {
	Name     string
	document map[string]any
	compiled *validator.Schema
}

// NewReplySchema reflects T into a JSON schema and compiles it
func NewReplySchema[T any](name string) (*ReplySchema, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	raw, err := json.Marshal(reflector.Reflect(new(T)))
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := validator.NewCompiler()
	if err := compiler.AddResource(name+".json", document); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile(name + ".json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return &ReplySchema{Name: name, document: document, compiled: compiled}, nil
}

// Document returns the schema as sent to the model, without meta keys
func (s *ReplySchema) Document() map[string]any {
	out := make(map[string]any, len(s.document))
	for k, v := range s.document {
		if k == "$schema" || k == "$id" {
			continue
		}
		out[k] = v
	}
	return out
}

// Validate checks an already-parsed JSON value against the schema and
// returns one message per failing location
func (s *ReplySchema) Validate(value any) []string {
	err := s.compiled.Validate(value)
	if err == nil {
		return nil
	}
	var validationErr *validator.ValidationError
	if !stderrors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	byPath := make(map[string][]string)
	collectErrors(validationErr, byPath)

	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		for _, msg := range byPath[path] {
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	return result
}

var printer = message.NewPrinter(language.English)

// collectErrors gathers leaf errors by instance location
func collectErrors(err *validator.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		for _, seen := range byPath[path] {
			if seen == msg {
				msg = ""
				break
			}
		}
		if msg != "" {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collectErrors(cause, byPath)
	}
}
