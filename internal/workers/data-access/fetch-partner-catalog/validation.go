// internal/workers/data-access/fetch-partner-catalog/validation.go
package fetchpartnercatalog

import "partner-match-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"queryType"},
		Properties: map[string]validation.Property{
			"queryType": {
				Type:        "string",
				Description: "Predefined catalog query to run",
				Enum:        []string{"all_partners", "partners_by_sector", "partners_by_region"},
			},
			"sector": {
				Type:        "string",
				Description: "Sector filter for partners_by_sector",
				MaxLength:   intPtr(100),
			},
			"region": {
				Type:        "string",
				Description: "Region filter for partners_by_region",
				MaxLength:   intPtr(100),
			},
			"skipCache": {
				Type:        "boolean",
				Description: "Bypass the Redis snapshot and query PostgreSQL directly",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"partners": {
				Type:        "array",
				Description: "Partner records matching the query",
			},
			"rowCount": {
				Type:        "integer",
				Description: "Number of partners returned",
			},
			"queryExecutionTime": {
				Type:        "integer",
				Description: "Query execution time in milliseconds",
			},
			"fromCache": {
				Type:        "boolean",
				Description: "Whether the snapshot cache served the result",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}
