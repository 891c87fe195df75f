// internal/matching/ranker_test.go
package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-match-workers/internal/models"
)

func createTestCatalog() []models.Partner {
	return []models.Partner{
		createTestPartner("p-alpha", "Alpha", "Maharashtra",
			[]string{"education"}, []string{"Education drive"}),
		createTestPartner("p-beta", "Beta", "Delhi",
			[]string{"healthcare"}, nil),
		createTestPartner("p-gamma", "Gamma", "Maharashtra",
			[]string{"education", "healthcare"}, []string{"Education camp", "Health checkup"}),
	}
}

// ==========================
// Ranking Tests
// ==========================

func TestRank_FiltersAndOrders(t *testing.T) {
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, warnings, err := Rank(createTestCatalog(), criteria, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Alpha and Gamma clear the threshold; Beta has nothing in common
	// with the request and is filtered out.
	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Greater(t, s.Score, MinScoreThreshold)
		assert.NotEqual(t, "p-beta", s.PartnerID)
	}

	// Descending by aggregate score.
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Score, scores[i].Score)
	}
	assert.Equal(t, "p-alpha", scores[0].PartnerID)
}

func TestRank_Deterministic(t *testing.T) {
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")
	catalog := createTestCatalog()

	first, _, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)
	second, _, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRank_TieBreakByName(t *testing.T) {
	// Identical records except id and name rank alphabetically.
	catalog := []models.Partner{
		createTestPartner("p-z", "Zenith Foundation", "Maharashtra",
			[]string{"education"}, []string{"Education drive"}),
		createTestPartner("p-a", "Asha Trust", "Maharashtra",
			[]string{"education"}, []string{"Education drive"}),
	}
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, _, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "p-a", scores[0].PartnerID)
	assert.Equal(t, "p-z", scores[1].PartnerID)
}

func TestRank_CapsAtFive(t *testing.T) {
	var catalog []models.Partner
	for i := 0; i < 12; i++ {
		catalog = append(catalog, createTestPartner(
			fmt.Sprintf("p-%02d", i),
			fmt.Sprintf("Partner %02d", i),
			"Maharashtra",
			[]string{"education"},
			[]string{"Education drive"},
		))
	}
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, _, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)
	assert.Len(t, scores, MaxRecommendations)
}

func TestRank_EmptyCatalog(t *testing.T) {
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, warnings, err := Rank(nil, criteria, 0)
	assert.NoError(t, err)
	assert.Empty(t, scores)
	assert.Empty(t, warnings)
}

func TestRank_CatalogTooLarge(t *testing.T) {
	catalog := createTestCatalog()
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	_, _, err := Rank(catalog, criteria, 2)
	assert.ErrorIs(t, err, ErrCatalogTooLarge)
}

func TestRank_InvalidCriteria(t *testing.T) {
	_, _, err := Rank(createTestCatalog(), models.MatchingCriteria{Location: "Maharashtra"}, 0)
	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestRank_BadRecordBecomesWarning(t *testing.T) {
	catalog := createTestCatalog()
	catalog = append(catalog, models.Partner{ID: "p-broken"}) // no name

	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, warnings, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "p-broken", warnings[0].PartnerID)
	for _, s := range scores {
		assert.NotEqual(t, "p-broken", s.PartnerID)
	}
}

func TestRank_NationalLocation(t *testing.T) {
	criteria := createTestCriteria([]string{"education", "healthcare"}, "National", "education")

	scores, _, err := Rank(createTestCatalog(), criteria, 0)
	require.NoError(t, err)
	require.NotEmpty(t, scores)
	for _, s := range scores {
		assert.InDelta(t, 1.0, s.MatchingFactors.LocationRelevance, 1e-9, "partner %s", s.PartnerID)
	}
}

// ==========================
// Recommendation Assembly Tests
// ==========================

func TestBuildRecommendations(t *testing.T) {
	catalog := createTestCatalog()
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, _, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)

	recommendations := BuildRecommendations(catalog, criteria, nil, scores)
	require.Len(t, recommendations, len(scores))

	for i, rec := range recommendations {
		assert.Equal(t, scores[i].PartnerID, rec.Partner.ID)
		assert.Equal(t, scores[i], rec.MatchScore)
		assert.LessOrEqual(t, len(rec.SuggestedProjects), MaxSuggestedProjects)
	}

	assert.Equal(t, []string{"Education drive"}, recommendations[0].SuggestedProjects)
}

func TestBuildRecommendations_ExcludesInFlightProjects(t *testing.T) {
	catalog := createTestCatalog()
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, _, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)

	recommendations := BuildRecommendations(catalog, criteria, []string{"education drive"}, scores)
	require.NotEmpty(t, recommendations)
	assert.Empty(t, recommendations[0].SuggestedProjects)
}

func TestBuildRecommendations_SuggestionCap(t *testing.T) {
	partner := createTestPartner("p-many", "Many Projects", "Maharashtra",
		[]string{"education"},
		[]string{"Education A", "Education B", "Education C", "Education D"})
	catalog := []models.Partner{partner}
	criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

	scores, _, err := Rank(catalog, criteria, 0)
	require.NoError(t, err)
	require.Len(t, scores, 1)

	recommendations := BuildRecommendations(catalog, criteria, nil, scores)
	require.Len(t, recommendations, 1)
	assert.Equal(t, []string{"Education A", "Education B"}, recommendations[0].SuggestedProjects)
}
