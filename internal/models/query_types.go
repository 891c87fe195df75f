// internal/models/query_types.go
package models

// CatalogQueryType identifies a predefined partner catalog query.
// Worker inputs carry the string form; free-form SQL is never accepted.
type CatalogQueryType string

const (
	CatalogQueryAllPartners      CatalogQueryType = "all_partners"
	CatalogQueryPartnersBySector CatalogQueryType = "partners_by_sector"
	CatalogQueryPartnersByRegion CatalogQueryType = "partners_by_region"
)
