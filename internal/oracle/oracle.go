// Package oracle owns the generative-oracle boundary and its retry policy.
//
// Ownership boundary:
// - the Oracle capability interface and request shape
// - response schema construction
// - bounded-retry client and failure taxonomy
package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Schema names the structured response shape an invocation must conform to.
type Schema struct {
	Name       string
	Definition *jsonschema.Definition
}

// Request is a single oracle invocation: one prompt, one target schema.
// Temperature zero leaves the oracle's default sampling in place. The
// attempt deadline travels on the context.
type Request struct {
	Prompt      string
	Schema      Schema
	Temperature float32
}

// Oracle is the external generative service: it returns a schema-conforming
// JSON object or fails. Implementations must honor ctx cancellation.
type Oracle interface {
	Invoke(ctx context.Context, req Request) (json.RawMessage, error)
}

// SchemaFor derives a response schema from the artifact type the stage
// expects back.
func SchemaFor(name string, v any) (Schema, error) {
	def, err := jsonschema.GenerateSchemaForType(v)
	if err != nil {
		return Schema{}, fmt.Errorf("oracle: schema for %s: %w", name, err)
	}
	return Schema{Name: name, Definition: def}, nil
}

// MustSchemaFor is SchemaFor for package-level schema construction.
func MustSchemaFor(name string, v any) Schema {
	s, err := SchemaFor(name, v)
	if err != nil {
		panic(err)
	}
	return s
}
