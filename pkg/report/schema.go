package report

import (
	"github.com/invopop/jsonschema"
)

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T

	return reflector.Reflect(v)
}

// Schema returns the JSON schema of the structured scoring payload, for CI
// consumers that parse json or yaml output.
func Schema() *jsonschema.Schema {
	return generateSchema[BatchReport]()
}
