package protocol

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Validator holds the compiled message schemas. Schemas are embedded so
// validation works regardless of the working directory.
type Validator struct {
	Hello   *jsonschema.Schema
	Intent  *jsonschema.Schema
	Welcome *jsonschema.Schema
	Delta   *jsonschema.Schema
	Chat    *jsonschema.Schema
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	compile := func(name string) (*jsonschema.Schema, error) {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		s, err := jsonschema.CompileString(name, string(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		return s, nil
	}

	v := &Validator{}
	var err error
	if v.Hello, err = compile("hello.schema.json"); err != nil {
		return nil, err
	}
	if v.Intent, err = compile("intent.schema.json"); err != nil {
		return nil, err
	}
	if v.Welcome, err = compile("welcome.schema.json"); err != nil {
		return nil, err
	}
	if v.Delta, err = compile("delta.schema.json"); err != nil {
		return nil, err
	}
	if v.Chat, err = compile("chat.schema.json"); err != nil {
		return nil, err
	}
	return v, nil
}

// ValidateBytes checks a raw JSON message against a schema.
func ValidateBytes(s *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
