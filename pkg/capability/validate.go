package capability

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateParams checks params against the capability's declared parameter
// schema. A nil or empty schema accepts anything. Violations come back as a
// *ValidationError listing every failed constraint.
func ValidateParams(meta Meta, params map[string]any) error {
	if len(meta.ParamsSchema) == 0 {
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(meta.ParamsSchema)
	dataLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed for capability %s: %w", meta.ID, err)
	}

	if result.Valid() {
		return nil
	}

	causes := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		causes = append(causes, desc.String())
	}

	return &ValidationError{CapabilityID: meta.ID, Causes: causes}
}
