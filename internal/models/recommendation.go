// internal/models/recommendation.go
package models

// MatchingFactors holds the four independent factor scores, each in [0,1].
type MatchingFactors struct {
	SectorMatch       float64 `json:"sectorMatch"`
	LocationRelevance float64 `json:"locationRelevance"`
	ProjectAlignment  float64 `json:"projectAlignment"`
	ResourceFit       float64 `json:"resourceFit"`
}

// MatchScore is one (partner, criteria) evaluation. Created fresh on
// every ranking call, never cached or persisted.
type MatchScore struct {
	PartnerID       string          `json:"partnerId"`
	Score           float64         `json:"score"`
	MatchingFactors MatchingFactors `json:"matchingFactors"`
	Reasons         []string        `json:"reasons"`
}

// PartnerRecommendation is a presentation-ready pairing of a partner
// with its score and up to two suggested projects.
type PartnerRecommendation struct {
	Partner           Partner    `json:"partner"`
	MatchScore        MatchScore `json:"matchScore"`
	SuggestedProjects []string   `json:"suggestedProjects,omitempty"`
}
