package gameconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsonschemaValidate "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// compiledSchema is generated once from wireformat.Game's field structure
// with invopop/jsonschema, then compiled once with santhosh-tekuri/jsonschema
// for repeated validation — mirroring reglet's SchemaCompiler cache, but here
// there is exactly one schema (the game config shape) rather than one per
// plugin.
var (
	schemaOnce sync.Once
	schema     *jsonschemaValidate.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschemaValidate.Schema, error) {
	schemaOnce.Do(func() {
		reflector := &jsonschema.Reflector{ExpandedStruct: true}
		generated := reflector.Reflect(&wireformat.Game{})
		data, err := json.Marshal(generated)
		if err != nil {
			schemaErr = fmt.Errorf("marshal generated schema: %w", err)
			return
		}

		compiler := jsonschemaValidate.NewCompiler()
		compiler.Draft = jsonschemaValidate.Draft2020
		if err := compiler.AddResource("game.json", bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("game.json")
	})
	return schema, schemaErr
}

// validateSchema re-encodes game as generic JSON and checks it against the
// generated schema, catching shape mismatches a plain struct decode
// wouldn't (e.g. wrong-typed YAML values for props/res).
func validateSchema(game *wireformat.Game) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game for validation: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("decode game for validation: %w", err)
	}

	if err := s.Validate(generic); err != nil {
		var ve *jsonschemaValidate.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("schema validation: %s", formatSchemaError(ve))
		}
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

func formatSchemaError(err *jsonschemaValidate.ValidationError) string {
	var messages []string
	var collect func(*jsonschemaValidate.ValidationError)
	collect = func(e *jsonschemaValidate.ValidationError) {
		if e.Message != "" {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", loc, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)
	if len(messages) == 0 {
		return "validation failed"
	}
	out := messages[0]
	for _, m := range messages[1:] {
		out += "; " + m
	}
	return out
}
