// internal/matching/ranker.go
package matching

import (
	"fmt"
	"sort"
	"strings"

	"partner-match-workers/internal/models"
)

const (
	// MinScoreThreshold filters noise: a match at or below this aggregate
	// score is not a real recommendation.
	MinScoreThreshold = 0.3

	// MaxRecommendations caps the recommendation list.
	MaxRecommendations = 5

	// MaxSuggestedProjects caps suggested projects per recommendation.
	MaxSuggestedProjects = 2

	// DefaultMaxCatalogSize bounds worst-case ranking latency when the
	// caller does not configure a limit.
	DefaultMaxCatalogSize = 1000
)

// Warning records a soft per-partner failure. The partner was skipped
// and ranking continued.
type Warning struct {
	PartnerID string `json:"partnerId"`
	Message   string `json:"message"`
}

// Rank scores every partner in the catalog, filters out weak matches,
// orders deterministically, and truncates to the top results.
//
// Per-partner scoring failures are collected as warnings, never
// propagated. An empty catalog yields an empty result. A catalog above
// maxCatalogSize fails with ErrCatalogTooLarge so callers page or
// pre-filter instead of receiving silently truncated output.
func Rank(catalog []models.Partner, criteria models.MatchingCriteria, maxCatalogSize int) ([]models.MatchScore, []Warning, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return nil, nil, err
	}
	if maxCatalogSize <= 0 {
		maxCatalogSize = DefaultMaxCatalogSize
	}
	if len(catalog) > maxCatalogSize {
		return nil, nil, fmt.Errorf("%w: %d partners exceeds limit %d", ErrCatalogTooLarge, len(catalog), maxCatalogSize)
	}

	nameByID := make(map[string]string, len(catalog))
	var scores []models.MatchScore
	var warnings []Warning

	for _, partner := range catalog {
		score, err := ScorePartner(partner, criteria)
		if err != nil {
			warnings = append(warnings, Warning{
				PartnerID: partner.ID,
				Message:   err.Error(),
			})
			continue
		}
		if score.Score <= MinScoreThreshold {
			continue
		}
		nameByID[partner.ID] = partner.Name
		scores = append(scores, score)
	}

	// Deterministic order: score desc, then sector match desc, then
	// partner name asc. Repeated calls with identical inputs must
	// produce identical output.
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		si, sj := scores[i].MatchingFactors.SectorMatch, scores[j].MatchingFactors.SectorMatch
		if si != sj {
			return si > sj
		}
		return nameByID[scores[i].PartnerID] < nameByID[scores[j].PartnerID]
	})

	if len(scores) > MaxRecommendations {
		scores = scores[:MaxRecommendations]
	}

	return scores, warnings, nil
}

// BuildRecommendations pairs ranked scores back with their partners and
// selects suggested projects: partner projects containing the requested
// project type, minus anything already in flight, capped at two.
func BuildRecommendations(catalog []models.Partner, criteria models.MatchingCriteria, currentProjects []string, scores []models.MatchScore) []models.PartnerRecommendation {
	partnerByID := make(map[string]models.Partner, len(catalog))
	for _, p := range catalog {
		partnerByID[p.ID] = p
	}

	inFlight := make(map[string]bool, len(currentProjects))
	for _, cp := range currentProjects {
		inFlight[strings.ToLower(cp)] = true
	}

	recommendations := make([]models.PartnerRecommendation, 0, len(scores))
	for _, score := range scores {
		partner, ok := partnerByID[score.PartnerID]
		if !ok {
			continue
		}
		recommendations = append(recommendations, models.PartnerRecommendation{
			Partner:           partner,
			MatchScore:        score,
			SuggestedProjects: suggestProjects(partner, criteria, inFlight),
		})
	}
	return recommendations
}

func suggestProjects(p models.Partner, c models.MatchingCriteria, inFlight map[string]bool) []string {
	if c.ProjectType == "" {
		return nil
	}
	needle := strings.ToLower(c.ProjectType)

	var suggested []string
	for _, project := range p.Projects {
		lower := strings.ToLower(project)
		if !strings.Contains(lower, needle) || inFlight[lower] {
			continue
		}
		suggested = append(suggested, project)
		if len(suggested) == MaxSuggestedProjects {
			break
		}
	}
	return suggested
}
