// internal/workers/matching/generate-recommendations/handler_test.go
package generaterecommendations

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	commonerrors "partner-match-workers/internal/common/errors"
	"partner-match-workers/internal/common/logger"
	"partner-match-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:        10 * time.Second,
		CacheTTL:       5 * time.Minute,
		MaxCatalogSize: 100,
		SlowRankingMs:  500,
	}
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	testLog := logger.NewTestLogger(t)
	return NewHandler(config, db, redisClient, testLog)
}

func createTestPartner(id, name, region string, focusAreas, projects []string) models.Partner {
	return models.Partner{
		ID:         id,
		Name:       name,
		Level:      models.PartnerLevelRegional,
		Location:   &models.Location{Address: "12 MG Road", Country: "India", Region: region},
		FocusAreas: focusAreas,
		Projects:   projects,
	}
}

func createTestInput() *Input {
	return &Input{
		Criteria: models.MatchingCriteria{
			Sectors:     []string{"education"},
			Location:    "Maharashtra",
			ProjectType: "education",
			BudgetRange: [2]float64{100000, 1000000},
			Urgency:     models.UrgencyMedium,
		},
		Partners: []models.Partner{
			createTestPartner("p-alpha", "Alpha", "Maharashtra",
				[]string{"education"}, []string{"Education drive"}),
			createTestPartner("p-beta", "Beta", "Delhi",
				[]string{"healthcare"}, nil),
		},
	}
}

func assertStandardErrorCode(t *testing.T, err error, code commonerrors.ErrorCode) {
	t.Helper()
	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineCatalog(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	require.NotNil(t, output)

	assert.NotEmpty(t, output.RequestID)
	assert.Equal(t, "inline", output.CatalogSource)
	assert.Equal(t, 2, output.CatalogSize)
	assert.Empty(t, output.Warnings)

	// Alpha clears the threshold, Beta does not.
	require.Len(t, output.Recommendations, 1)
	rec := output.Recommendations[0]
	assert.Equal(t, "p-alpha", rec.Partner.ID)
	assert.InDelta(t, 0.925, rec.MatchScore.Score, 1e-9)
	assert.Equal(t, []string{"Education drive"}, rec.SuggestedProjects)
	assert.NotEmpty(t, rec.MatchScore.Reasons)

	require.NotNil(t, output.TopRecommendation)
	assert.Equal(t, "p-alpha", output.TopRecommendation.Partner.ID)
}

func TestHandler_Execute_RequestIDPassthrough(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	input := createTestInput()
	input.RequestID = "req-42"

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "req-42", output.RequestID)
}

func TestHandler_Execute_CurrentProjectsNarrowSuggestions(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	input := createTestInput()
	input.CurrentProjects = []string{"Education drive"}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, output.Recommendations, 1)

	// Scoring is unchanged; only the suggestion list narrows.
	assert.InDelta(t, 0.925, output.Recommendations[0].MatchScore.Score, 1e-9)
	assert.Empty(t, output.Recommendations[0].SuggestedProjects)
}

func TestHandler_Execute_BrokenRecordBecomesWarning(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	input := createTestInput()
	input.Partners = append(input.Partners, models.Partner{ID: "p-broken"})

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, output.Warnings, 1)
	assert.Equal(t, "p-broken", output.Warnings[0].PartnerID)
	require.Len(t, output.Recommendations, 1)
	assert.Equal(t, "p-alpha", output.Recommendations[0].Partner.ID)
}

func TestHandler_Execute_EmptyCatalog(t *testing.T) {
	// An inline empty catalog falls through to loading; supply a cached
	// empty snapshot so the result is an empty recommendation set.
	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(catalogCacheKey).SetVal("[]")

	handler := createTestHandler(t, nil, redisClient, nil)

	input := createTestInput()
	input.Partners = nil

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, output.Recommendations)
	assert.Nil(t, output.TopRecommendation)
	assert.Equal(t, "cache", output.CatalogSource)
}

// ==========================
// Catalog Loading Tests
// ==========================

func TestHandler_Execute_CatalogFromCache(t *testing.T) {
	cached := []models.Partner{
		createTestPartner("p-alpha", "Alpha", "Maharashtra",
			[]string{"education"}, []string{"Education drive"}),
	}
	cachedData, _ := json.Marshal(cached)

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(catalogCacheKey).SetVal(string(cachedData))

	handler := createTestHandler(t, nil, redisClient, nil)

	input := createTestInput()
	input.Partners = nil

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "cache", output.CatalogSource)
	require.Len(t, output.Recommendations, 1)
	assert.Equal(t, "p-alpha", output.Recommendations[0].Partner.ID)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_CatalogFromDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(catalogCacheKey).RedisNil()

	rows := sqlmock.NewRows([]string{
		"id", "name", "level", "address", "country", "region",
		"focus_areas", "projects", "resources", "budget_min", "budget_max",
	}).AddRow(
		"p-alpha", "Alpha", "regional", "12 MG Road", "India", "Maharashtra",
		pq.StringArray{"education"}, pq.StringArray{"Education drive"}, pq.StringArray(nil),
		0.0, 0.0,
	)
	mock.ExpectQuery(`SELECT(.|\n)+FROM partners(.|\n)+ORDER BY name`).
		WillReturnRows(rows)

	redisMock.Regexp().ExpectSet(catalogCacheKey, `.*`, 5*time.Minute).SetVal("OK")

	handler := createTestHandler(t, db, redisClient, nil)

	input := createTestInput()
	input.Partners = nil

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "database", output.CatalogSource)
	require.Len(t, output.Recommendations, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnreadableSnapshotFallsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(catalogCacheKey).SetVal("{not json")

	rows := sqlmock.NewRows([]string{
		"id", "name", "level", "address", "country", "region",
		"focus_areas", "projects", "resources", "budget_min", "budget_max",
	}).AddRow(
		"p-alpha", "Alpha", "regional", "12 MG Road", "India", "Maharashtra",
		pq.StringArray{"education"}, pq.StringArray(nil), pq.StringArray(nil),
		0.0, 0.0,
	)
	mock.ExpectQuery(`SELECT(.|\n)+FROM partners(.|\n)+ORDER BY name`).
		WillReturnRows(rows)

	redisMock.Regexp().ExpectSet(catalogCacheKey, `.*`, 5*time.Minute).SetVal("OK")

	handler := createTestHandler(t, db, redisClient, nil)

	input := createTestInput()
	input.Partners = nil

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "database", output.CatalogSource)
}

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestHandler_Execute_SnapshotRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient := setupRedis(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "level", "address", "country", "region",
		"focus_areas", "projects", "resources", "budget_min", "budget_max",
	}).AddRow(
		"p-alpha", "Alpha", "regional", "12 MG Road", "India", "Maharashtra",
		pq.StringArray{"education"}, pq.StringArray{"Education drive"}, pq.StringArray(nil),
		0.0, 0.0,
	)
	mock.ExpectQuery(`SELECT(.|\n)+FROM partners(.|\n)+ORDER BY name`).
		WillReturnRows(rows)

	handler := createTestHandler(t, db, redisClient, nil)

	input := createTestInput()
	input.Partners = nil

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "database", first.CatalogSource)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Second run reads the snapshot written by the first; no further SQL
	// expectations exist, so a database hit would fail the test.
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "cache", second.CatalogSource)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("nil input", func(t *testing.T) {
		handler := createTestHandler(t, nil, nil, nil)
		_, err := handler.Execute(context.Background(), nil)
		assertStandardErrorCode(t, err, commonerrors.ErrCodeInvalidCriteria)
	})

	t.Run("criteria without sector hints", func(t *testing.T) {
		handler := createTestHandler(t, nil, nil, nil)
		input := createTestInput()
		input.Criteria = models.MatchingCriteria{Location: "Maharashtra"}

		_, err := handler.Execute(context.Background(), input)
		assertStandardErrorCode(t, err, commonerrors.ErrCodeInvalidCriteria)
	})

	t.Run("catalog over configured limit", func(t *testing.T) {
		config := createTestConfig()
		config.MaxCatalogSize = 1
		handler := createTestHandler(t, nil, nil, config)

		_, err := handler.Execute(context.Background(), createTestInput())
		assertStandardErrorCode(t, err, commonerrors.ErrCodeCatalogTooLarge)
	})

	t.Run("structurally invalid catalog", func(t *testing.T) {
		handler := createTestHandler(t, nil, nil, nil)
		input := createTestInput()
		input.Partners[0].BudgetMin = -5

		_, err := handler.Execute(context.Background(), input)
		assertStandardErrorCode(t, err, commonerrors.ErrCodeCatalogInvalid)
	})

	t.Run("no catalog and no database", func(t *testing.T) {
		handler := createTestHandler(t, nil, nil, nil)
		input := createTestInput()
		input.Partners = nil

		_, err := handler.Execute(context.Background(), input)
		assertStandardErrorCode(t, err, commonerrors.ErrCodeCatalogFetchFailed)
	})

	t.Run("database failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM partners`).
			WillReturnError(sql.ErrConnDone)

		handler := createTestHandler(t, db, nil, nil)
		input := createTestInput()
		input.Partners = nil

		_, execErr := handler.Execute(context.Background(), input)
		assertStandardErrorCode(t, execErr, commonerrors.ErrCodeCatalogFetchFailed)
	})
}

func TestHandler_Execute_Deterministic(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	input := createTestInput()
	input.RequestID = "req-repeat"

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.TopRecommendation, second.TopRecommendation)
}
