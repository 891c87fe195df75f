// internal/models/partner.go
package models

// PartnerLevel is the categorical tier of a partner organization.
type PartnerLevel string

const (
	PartnerLevelLocal    PartnerLevel = "local"
	PartnerLevelRegional PartnerLevel = "regional"
	PartnerLevelNational PartnerLevel = "national"
)

// IsValid reports whether the level is one of the closed set.
func (l PartnerLevel) IsValid() bool {
	switch l {
	case PartnerLevelLocal, PartnerLevelRegional, PartnerLevelNational:
		return true
	}
	return false
}

// Location is a partner's geographic record. Region is the primary
// matching key; Address is display-only.
type Location struct {
	Address string `json:"address"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

// Partner is a candidate organization from the CRUD store. The engine
// treats it as read-only input; records may be incomplete (partners are
// externally sourced), so optional fields carry zero values rather than
// failing.
type Partner struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Level      PartnerLevel `json:"level"`
	Location   *Location    `json:"location,omitempty"`
	FocusAreas []string     `json:"focusAreas"`
	Projects   []string     `json:"projects,omitempty"`
	Resources  []string     `json:"resources,omitempty"`

	// Budget capacity hints in the same units as criteria budget ranges.
	// Zero means unknown, not zero capacity.
	BudgetMin float64 `json:"budgetMin,omitempty"`
	BudgetMax float64 `json:"budgetMax,omitempty"`
}
