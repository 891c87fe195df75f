// internal/workers/matching/generate-recommendations/validation.go
package generaterecommendations

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"partner-match-workers/internal/models"
)

// catalogSchema is the structural contract for partner catalog payloads.
// It enforces field types only; a record missing id or name still passes
// here and is skipped with a warning during scoring, so one broken
// record never rejects the whole catalog.
var catalogSchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":   map[string]interface{}{"type": "string"},
			"name": map[string]interface{}{"type": "string"},
			"level": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"", "local", "regional", "national"},
			},
			"location": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"address": map[string]interface{}{"type": "string"},
					"country": map[string]interface{}{"type": "string"},
					"region":  map[string]interface{}{"type": "string"},
				},
			},
			"focusAreas": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"projects": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"resources": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"budgetMin": map[string]interface{}{"type": "number", "minimum": 0},
			"budgetMax": map[string]interface{}{"type": "number", "minimum": 0},
		},
	},
}

func validateCatalog(partners []models.Partner) error {
	schemaLoader := gojsonschema.NewGoLoader(catalogSchema)
	documentLoader := gojsonschema.NewGoLoader(partners)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("catalog schema validation: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("catalog payload invalid: %s", strings.Join(problems, "; "))
	}

	return nil
}
