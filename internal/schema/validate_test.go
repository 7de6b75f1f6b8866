package schema

import (
	"errors"
	"testing"
)

func TestValidateConfigAcceptsMatchingPayload(t *testing.T) {
	schemaDoc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"accentColor": map[string]any{"type": "string"},
			"columns":     map[string]any{"type": "integer"},
		},
	}

	err := ValidateConfig(schemaDoc, map[string]any{
		"accentColor": "#fff",
		"columns":     3,
	})
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidateConfigRejectsWrongTypes(t *testing.T) {
	schemaDoc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"columns": map[string]any{"type": "integer"},
		},
	}

	err := ValidateConfig(schemaDoc, map[string]any{"columns": "three"})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestValidateConfigNilSchemaAcceptsAnything(t *testing.T) {
	if err := ValidateConfig(nil, map[string]any{"anything": true}); err != nil {
		t.Fatalf("nil schema should accept payloads, got %v", err)
	}
}

func TestCompileRejectsMalformedSchema(t *testing.T) {
	_, err := Compile(map[string]any{"type": 42})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}
