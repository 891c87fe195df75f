// internal/workers/data-access/fetch-partner-catalog/models.go
package fetchpartnercatalog

import "partner-match-workers/internal/models"

type Input struct {
	QueryType string `json:"queryType"`
	Sector    string `json:"sector,omitempty"`
	Region    string `json:"region,omitempty"`
	SkipCache bool   `json:"skipCache,omitempty"`
}

type Output struct {
	Partners           []models.Partner `json:"partners"`
	RowCount           int              `json:"rowCount"`
	QueryExecutionTime int64            `json:"queryExecutionTime"` // milliseconds
	FromCache          bool             `json:"fromCache"`
}

type CatalogQueryType = models.CatalogQueryType

// Export constants for external use
var (
	QueryAllPartners      = models.CatalogQueryAllPartners
	QueryPartnersBySector = models.CatalogQueryPartnersBySector
	QueryPartnersByRegion = models.CatalogQueryPartnersByRegion
)
