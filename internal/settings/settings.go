// Package settings holds the four values that drive the panel and the stores
// that persist them and announce changes.
//
// Settings live in a YAML file under the XDG config directory:
//
//	~/.config/mdpanel/settings.yaml
//
//	file-path: /home/me/notes/todo.md
//	start-line: 1
//	end-line: 0        # 0 = until end of file
//	kanban-enabled: true
//
// A path ending in .toml is read and written as TOML instead.
package settings

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Limits mirror settings.schema.json.
const (
	MinStartLine = 1
	MaxLine      = 9999
)

// Settings configures what the panel shows.
type Settings struct {
	FilePath      string `yaml:"file-path" toml:"file-path" json:"file-path"`
	StartLine     int    `yaml:"start-line" toml:"start-line" json:"start-line"`
	EndLine       int    `yaml:"end-line" toml:"end-line" json:"end-line"`
	KanbanEnabled bool   `yaml:"kanban-enabled" toml:"kanban-enabled" json:"kanban-enabled"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{StartLine: MinStartLine}
}

// Configured reports whether a file has been chosen.
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.FilePath) != ""
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

//go:embed settings.schema.json
var schemaJSON string

const schemaURL = "https://mdpanel.local/settings.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add settings schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Validate checks s against the settings schema and returns the first
// violation as a *ValidationError.
func (s Settings) Validate() error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return firstLeaf(ve)
		}
		return err
	}
	return nil
}

func firstLeaf(ve *jsonschema.ValidationError) *ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{
		Field: strings.TrimPrefix(ve.InstanceLocation, "/"),
		Err:   fmt.Errorf("%s", ve.Message),
	}
}
