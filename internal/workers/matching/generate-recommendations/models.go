// internal/workers/matching/generate-recommendations/models.go
package generaterecommendations

import (
	"partner-match-workers/internal/matching"
	"partner-match-workers/internal/models"
)

type Input struct {
	RequestID string                  `json:"requestId,omitempty"`
	Criteria  models.MatchingCriteria `json:"criteria"`

	// Partners is an optional inline catalog. When empty the worker loads
	// the catalog from the snapshot cache or the database.
	Partners []models.Partner `json:"partners,omitempty"`

	// CurrentProjects narrows suggested projects; it never affects scoring.
	CurrentProjects []string `json:"currentProjects,omitempty"`

	SkipCache bool `json:"skipCache,omitempty"`
}

type Output struct {
	RequestID         string                         `json:"requestId"`
	Recommendations   []models.PartnerRecommendation `json:"recommendations"`
	TopRecommendation *models.PartnerRecommendation  `json:"topRecommendation,omitempty"`
	Warnings          []matching.Warning             `json:"warnings,omitempty"`
	CatalogSize       int                            `json:"catalogSize"`
	CatalogSource     string                         `json:"catalogSource"` // inline, cache, database
	DurationMs        int64                          `json:"durationMs"`
}
