// internal/matching/aggregate_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-match-workers/internal/models"
)

// ==========================
// Weight Invariant Tests
// ==========================

func TestDefaultWeights(t *testing.T) {
	assert.NoError(t, DefaultWeights.Validate())
	assert.InDelta(t, 1.0, DefaultWeights.Sum(), 1e-9)

	assert.InDelta(t, 0.35, DefaultWeights.SectorMatch, 1e-9)
	assert.InDelta(t, 0.25, DefaultWeights.LocationRelevance, 1e-9)
	assert.InDelta(t, 0.25, DefaultWeights.ProjectAlignment, 1e-9)
	assert.InDelta(t, 0.15, DefaultWeights.ResourceFit, 1e-9)
}

func TestWeightsValidate_RejectsBadSum(t *testing.T) {
	w := Weights{SectorMatch: 0.5, LocationRelevance: 0.5, ProjectAlignment: 0.5, ResourceFit: 0.5}
	assert.Error(t, w.Validate())
}

// ==========================
// Aggregate Scoring Tests
// ==========================

func TestScorePartner(t *testing.T) {
	tests := []struct {
		name          string
		partner       models.Partner
		criteria      models.MatchingCriteria
		expectedScore float64
	}{
		{
			name: "full alignment minus neutral resources",
			partner: createTestPartner("p-alpha", "Alpha", "Maharashtra",
				[]string{"education"}, []string{"Education drive"}),
			criteria:      createTestCriteria([]string{"education"}, "Maharashtra", "education"),
			expectedScore: 0.925, // 0.35 + 0.25 + 0.25 + 0.15*0.5
		},
		{
			name: "no alignment anywhere",
			partner: createTestPartner("p-beta", "Beta", "Delhi",
				[]string{"healthcare"}, nil),
			criteria:      createTestCriteria([]string{"education"}, "Maharashtra", "education"),
			expectedScore: 0.075, // only the neutral resource factor contributes
		},
		{
			name: "sector only",
			partner: createTestPartner("p-gamma", "Gamma", "Delhi",
				[]string{"education"}, nil),
			criteria:      createTestCriteria([]string{"education"}, "Maharashtra", "education"),
			expectedScore: 0.425, // 0.35 + 0.15*0.5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := ScorePartner(tt.partner, tt.criteria)
			require.NoError(t, err)

			assert.Equal(t, tt.partner.ID, score.PartnerID)
			assert.InDelta(t, tt.expectedScore, score.Score, 1e-9)
			assert.GreaterOrEqual(t, score.Score, 0.0)
			assert.LessOrEqual(t, score.Score, 1.0)
			assert.NotEmpty(t, score.Reasons)
		})
	}
}

func TestScorePartner_SectorMonotonicity(t *testing.T) {
	// Adding sector overlap while everything else stays fixed never
	// lowers the aggregate score.
	criteria := createTestCriteria([]string{"education", "healthcare", "environment"}, "Maharashtra", "education")

	narrow := createTestPartner("p-1", "Narrow", "Maharashtra", []string{"education"}, []string{"Education drive"})
	wide := createTestPartner("p-2", "Wide", "Maharashtra", []string{"education", "healthcare"}, []string{"Education drive"})

	narrowScore, err := ScorePartner(narrow, criteria)
	require.NoError(t, err)
	wideScore, err := ScorePartner(wide, criteria)
	require.NoError(t, err)

	assert.Greater(t, wideScore.MatchingFactors.SectorMatch, narrowScore.MatchingFactors.SectorMatch)
	assert.GreaterOrEqual(t, wideScore.Score, narrowScore.Score)
}

// ==========================
// Reason Synthesis Tests
// ==========================

func TestScorePartner_Reasons(t *testing.T) {
	t.Run("strong factors produce ordered reasons", func(t *testing.T) {
		partner := createTestPartner("p-alpha", "Alpha", "Maharashtra",
			[]string{"education"}, []string{"Education drive"})
		criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

		score, err := ScorePartner(partner, criteria)
		require.NoError(t, err)

		// Resources and budget are both absent, so the resource reason is
		// withheld even though the factor sits at the neutral 0.5.
		assert.Equal(t, []string{
			"Strong sector alignment in education",
			"Located in requested region Maharashtra",
			"Track record of education projects",
		}, score.Reasons)
	})

	t.Run("national request gets the any-region reason", func(t *testing.T) {
		partner := createTestPartner("p-alpha", "Alpha", "Maharashtra",
			[]string{"education"}, nil)
		criteria := createTestCriteria([]string{"education"}, "National", "education")

		score, err := ScorePartner(partner, criteria)
		require.NoError(t, err)
		assert.Contains(t, score.Reasons, "Available for projects in any region")
	})

	t.Run("weak match falls back to a single generic reason", func(t *testing.T) {
		partner := createTestPartner("p-beta", "Beta", "Delhi", []string{"healthcare"}, nil)
		criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

		score, err := ScorePartner(partner, criteria)
		require.NoError(t, err)
		assert.Equal(t, []string{"Limited alignment with current criteria"}, score.Reasons)
	})

	t.Run("never more than four reasons", func(t *testing.T) {
		partner := createTestPartner("p-full", "Full House", "Maharashtra",
			[]string{"education"}, []string{"Education drive"})
		partner.Resources = []string{"field staff", "vehicles", "training center", "warehouse"}
		partner.BudgetMin = 100000
		partner.BudgetMax = 900000
		criteria := createTestCriteria([]string{"education"}, "Maharashtra", "education")

		score, err := ScorePartner(partner, criteria)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(score.Reasons), 4)
		assert.Contains(t, score.Reasons, "Resource capacity fits the requested budget")
	})
}
