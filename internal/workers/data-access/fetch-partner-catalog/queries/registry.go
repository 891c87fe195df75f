// internal/workers/data-access/fetch-partner-catalog/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"partner-match-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// QueryFunc returns: partners, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Partner, int, int64, error)

var Registry = map[models.CatalogQueryType]QueryFunc{
	models.CatalogQueryAllPartners:      AllPartners,
	models.CatalogQueryPartnersBySector: PartnersBySector,
	models.CatalogQueryPartnersByRegion: PartnersByRegion,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.CatalogQueryType, params map[string]interface{}) ([]models.Partner, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}
