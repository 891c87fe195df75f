// internal/matching/aggregate.go
package matching

import (
	"fmt"
	"sort"
	"strings"

	"partner-match-workers/internal/models"
)

const (
	// reasonThreshold is the factor score at which a factor is considered
	// materially contributing and earns a reason string.
	reasonThreshold = 0.5

	// maxReasons caps the reasons retained per match.
	maxReasons = 4

	// fallbackReason is returned when no factor qualifies, so callers
	// never see an empty reasons list.
	fallbackReason = "Limited alignment with current criteria"
)

// ScorePartner evaluates one partner against the criteria: four factor
// scores, a fixed weighted aggregate, and display-ready reasons.
func ScorePartner(p models.Partner, c models.MatchingCriteria) (models.MatchScore, error) {
	factors, err := scoreFactors(p, c)
	if err != nil {
		return models.MatchScore{}, err
	}

	w := DefaultWeights
	score := factors.SectorMatch*w.SectorMatch +
		factors.LocationRelevance*w.LocationRelevance +
		factors.ProjectAlignment*w.ProjectAlignment +
		factors.ResourceFit*w.ResourceFit

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return models.MatchScore{
		PartnerID:       p.ID,
		Score:           score,
		MatchingFactors: factors,
		Reasons:         buildReasons(p, c, factors),
	}, nil
}

type reasonCandidate struct {
	score float64
	text  string
}

// buildReasons synthesizes one sentence per materially contributing
// factor, ordered by factor score descending, capped at maxReasons.
func buildReasons(p models.Partner, c models.MatchingCriteria, f models.MatchingFactors) []string {
	var candidates []reasonCandidate

	if f.SectorMatch >= reasonThreshold {
		matched := matchedSectors(p, c.SectorHints())
		candidates = append(candidates, reasonCandidate{
			score: f.SectorMatch,
			text:  fmt.Sprintf("Strong sector alignment in %s", strings.Join(matched, ", ")),
		})
	}

	if f.LocationRelevance >= reasonThreshold {
		text := fmt.Sprintf("Located in requested region %s", c.Location)
		if c.IsNational() {
			text = "Available for projects in any region"
		}
		candidates = append(candidates, reasonCandidate{
			score: f.LocationRelevance,
			text:  text,
		})
	}

	if f.ProjectAlignment >= reasonThreshold {
		candidates = append(candidates, reasonCandidate{
			score: f.ProjectAlignment,
			text:  fmt.Sprintf("Track record of %s projects", strings.ToLower(c.ProjectType)),
		})
	}

	if f.ResourceFit >= reasonThreshold && (len(p.Resources) > 0 || p.BudgetMax > 0) {
		candidates = append(candidates, reasonCandidate{
			score: f.ResourceFit,
			text:  "Resource capacity fits the requested budget",
		})
	}

	if len(candidates) == 0 {
		return []string{fallbackReason}
	}

	// Stable sort keeps the sector/location/project/resource declaration
	// order on equal factor scores, so output is deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxReasons {
		candidates = candidates[:maxReasons]
	}

	reasons := make([]string, len(candidates))
	for i, rc := range candidates {
		reasons[i] = rc.text
	}
	return reasons
}
