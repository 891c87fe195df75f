// internal/matching/scoring.go
package matching

import (
	"errors"
	"fmt"
	"strings"

	"partner-match-workers/internal/models"
)

var (
	ErrInvalidCriteria   = errors.New("INVALID_CRITERIA")
	ErrCatalogTooLarge   = errors.New("CATALOG_TOO_LARGE")
	ErrPartnerUnscorable = errors.New("PARTNER_SCORING_ERROR")
)

// maxConsideredProjects bounds the project-alignment denominator so a
// single matching project dominates: one hit against a short project
// list already scores high instead of being diluted by list length.
const maxConsideredProjects = 3

// ValidateCriteria checks the basic shape of a criteria object. A
// criteria with neither sectors nor a project type gives the engine
// nothing to match on. A BudgetRange max of 0 means no budget
// constraint, so the min/max ordering is only enforced when max is set;
// negative bounds are rejected in either position.
func ValidateCriteria(c models.MatchingCriteria) error {
	if len(c.SectorHints()) == 0 {
		return fmt.Errorf("%w: criteria needs at least one sector or a project type", ErrInvalidCriteria)
	}
	if c.BudgetRange[0] < 0 || c.BudgetRange[1] < 0 {
		return fmt.Errorf("%w: budget bounds must not be negative, got [%v, %v]", ErrInvalidCriteria, c.BudgetRange[0], c.BudgetRange[1])
	}
	if c.BudgetRange[1] != 0 && c.BudgetRange[0] > c.BudgetRange[1] {
		return fmt.Errorf("%w: budget range min %v exceeds max %v", ErrInvalidCriteria, c.BudgetRange[0], c.BudgetRange[1])
	}
	if c.Urgency != "" && !c.Urgency.IsValid() {
		return fmt.Errorf("%w: unknown urgency %q", ErrInvalidCriteria, c.Urgency)
	}
	return nil
}

// scoreFactors computes the four factor scores for one partner. Each
// factor is computable without reference to any other. A partner with no
// identity cannot be referenced back from a MatchScore, so it is
// unscorable; everything else degrades to a low or neutral score.
func scoreFactors(p models.Partner, c models.MatchingCriteria) (models.MatchingFactors, error) {
	if p.ID == "" || p.Name == "" {
		return models.MatchingFactors{}, fmt.Errorf("%w: partner record missing id or name", ErrPartnerUnscorable)
	}

	return models.MatchingFactors{
		SectorMatch:       sectorMatch(p, c),
		LocationRelevance: locationRelevance(p, c),
		ProjectAlignment:  projectAlignment(p, c),
		ResourceFit:       resourceFit(p, c),
	}, nil
}

// sectorMatch is the fraction of requested sectors covered by the
// partner's focus areas, case-insensitive exact tag match.
func sectorMatch(p models.Partner, c models.MatchingCriteria) float64 {
	hints := c.SectorHints()
	if len(hints) == 0 {
		return 0
	}
	matched := matchedSectors(p, hints)
	return float64(len(matched)) / float64(len(hints))
}

// matchedSectors returns the requested sectors present in the partner's
// focus areas, preserving request order for stable reason text.
func matchedSectors(p models.Partner, hints []string) []string {
	var matched []string
	for _, hint := range hints {
		for _, area := range p.FocusAreas {
			if strings.EqualFold(strings.TrimSpace(hint), strings.TrimSpace(area)) {
				matched = append(matched, hint)
				break
			}
		}
	}
	return matched
}

// locationRelevance gives full credit for a national request or a region
// match, partial credit when the requested location names the partner's
// country (same-country proximity), and zero otherwise. Partners without
// location data score zero here rather than erroring.
func locationRelevance(p models.Partner, c models.MatchingCriteria) float64 {
	if c.IsNational() {
		return 1.0
	}
	if p.Location == nil {
		return 0
	}
	if strings.EqualFold(p.Location.Region, c.Location) {
		return 1.0
	}
	if p.Location.Country != "" && strings.EqualFold(p.Location.Country, c.Location) {
		return 0.3
	}
	return 0
}

// projectAlignment is the fraction of the partner's projects whose text
// contains the requested project type, with the denominator capped at
// maxConsideredProjects so one strong hit is not diluted.
func projectAlignment(p models.Partner, c models.MatchingCriteria) float64 {
	if c.ProjectType == "" || len(p.Projects) == 0 {
		return 0
	}

	needle := strings.ToLower(c.ProjectType)
	matching := 0
	for _, project := range p.Projects {
		if strings.Contains(strings.ToLower(project), needle) {
			matching++
		}
	}

	considered := len(p.Projects)
	if considered > maxConsideredProjects {
		considered = maxConsideredProjects
	}
	score := float64(matching) / float64(considered)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// resourceFit combines budget compatibility and declared resource
// capacity. Absence of data on either side is neutral (0.5), never a
// hard mismatch, so newly registered partners are not starved of
// recommendations.
func resourceFit(p models.Partner, c models.MatchingCriteria) float64 {
	hasBudget := p.BudgetMax > 0 && c.BudgetRange[1] > 0
	hasResources := len(p.Resources) > 0

	if !hasBudget && !hasResources {
		return 0.5
	}

	var total float64
	signals := 0

	if hasBudget {
		if p.BudgetMin <= c.BudgetRange[1] && p.BudgetMax >= c.BudgetRange[0] {
			total += 1.0 // Ranges overlap
		}
		signals++
	}

	if hasResources {
		switch {
		case len(p.Resources) >= 4:
			total += 1.0
		case len(p.Resources) >= 2:
			total += 0.75
		default:
			total += 0.5
		}
		signals++
	}

	return total / float64(signals)
}
