package schema

import "github.com/invopop/jsonschema"

// Get reflects the JSON schema of T with every definition inlined.
// Usage: see https://github.com/invopop/jsonschema?tab=readme-ov-file
func Get[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T
	return reflector.Reflect(v)
}

// Named is a schema together with the name it is published under.
type Named struct {
	Name   string             `json:"name"`
	Schema *jsonschema.Schema `json:"schema"`
}
