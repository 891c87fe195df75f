// internal/workers/data-access/fetch-partner-catalog/queries/catalog.go
package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"partner-match-workers/internal/models"
)

const partnerColumns = `
	id, name, level, address, country, region,
	focus_areas, projects, resources, budget_min, budget_max`

func AllPartners(ctx context.Context, db *sql.DB, _ map[string]interface{}) ([]models.Partner, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT`+partnerColumns+`
		FROM partners
		ORDER BY name`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	partners, err := scanPartners(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return partners, len(partners), execTime, nil
}

func PartnersBySector(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Partner, int, int64, error) {
	sector, ok := params["sector"].(string)
	if !ok || sector == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT`+partnerColumns+`
		FROM partners
		WHERE $1 ILIKE ANY(focus_areas)
		ORDER BY name`, sector)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	partners, err := scanPartners(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return partners, len(partners), execTime, nil
}

func PartnersByRegion(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Partner, int, int64, error) {
	region, ok := params["region"].(string)
	if !ok || region == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	// National partners serve every region, so they are always included.
	rows, err := db.QueryContext(ctx, `
		SELECT`+partnerColumns+`
		FROM partners
		WHERE region ILIKE $1 OR level = 'national'
		ORDER BY name`, region)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	partners, err := scanPartners(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return partners, len(partners), execTime, nil
}

func scanPartners(rows *sql.Rows) ([]models.Partner, error) {
	var partners []models.Partner

	for rows.Next() {
		var p models.Partner
		var level, address, country, region sql.NullString
		var focusAreas, projects, resources pq.StringArray
		var budgetMin, budgetMax sql.NullFloat64

		err := rows.Scan(
			&p.ID, &p.Name, &level, &address, &country, &region,
			&focusAreas, &projects, &resources, &budgetMin, &budgetMax,
		)
		if err != nil {
			return nil, err
		}

		p.Level = models.PartnerLevel(level.String)
		if address.String != "" || country.String != "" || region.String != "" {
			p.Location = &models.Location{
				Address: address.String,
				Country: country.String,
				Region:  region.String,
			}
		}
		p.FocusAreas = focusAreas
		p.Projects = projects
		p.Resources = resources
		p.BudgetMin = budgetMin.Float64
		p.BudgetMax = budgetMax.Float64

		partners = append(partners, p)
	}

	return partners, rows.Err()
}
