// internal/workers/matching/score-partner/models.go
package scorepartner

import "partner-match-workers/internal/models"

type Input struct {
	Partner  models.Partner          `json:"partner"`
	Criteria models.MatchingCriteria `json:"criteria"`
}

type Output struct {
	MatchScore models.MatchScore `json:"matchScore"`

	// AboveThreshold mirrors the recommendation filter so process models
	// can branch without re-implementing the cutoff.
	AboveThreshold bool `json:"aboveThreshold"`
}
