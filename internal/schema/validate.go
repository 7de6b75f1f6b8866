package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Compile turns a schema document into a compiled JSON Schema.
func Compile(schemaDoc map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schemaDoc)
	if err != nil {
		return nil, &SchemaError{Resource: "schema document", Cause: err}
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, &SchemaError{Resource: "schema document", Cause: err}
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, &SchemaError{Resource: "schema document", Cause: fmt.Errorf("%w: %v", ErrSchemaMalformed, err)}
	}
	return compiled, nil
}

// ValidateConfig checks a config payload against a schema document. A nil
// schema accepts everything; validation problems come back wrapped so
// callers can degrade instead of aborting.
func ValidateConfig(schemaDoc, payload map[string]any) error {
	if len(schemaDoc) == 0 {
		return nil
	}
	compiled, err := Compile(schemaDoc)
	if err != nil {
		return err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	// jsonschema validates plain decoded JSON, so round-trip the payload to
	// strip Go-specific value types (time.Time, int vs float64).
	encoded, err := json.Marshal(payload)
	if err != nil {
		return &SchemaError{Resource: "config payload", Cause: err}
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return &SchemaError{Resource: "config payload", Cause: err}
	}
	if err := compiled.Validate(decoded); err != nil {
		return &SchemaError{Resource: "config payload", Cause: err}
	}
	return nil
}
