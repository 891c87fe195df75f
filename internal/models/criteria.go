// internal/models/criteria.go
package models

import "strings"

// Urgency is only a tie-break signal, never a primary score component.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// LocationNational means the requester has no geographic constraint.
const LocationNational = "National"

// MatchingCriteria is the requester's intent for one recommendation
// request. It is immutable for the duration of a ranking call; callers
// mutate a copy and re-request.
type MatchingCriteria struct {
	Sectors     []string   `json:"sectors"`
	Location    string     `json:"location"`
	ProjectType string     `json:"projectType"`
	BudgetRange [2]float64 `json:"budgetRange"`
	Urgency     Urgency    `json:"urgency"`
}

// SectorHints returns the sector tags used for sector matching: the
// requested sectors, or the singleton project type when none are given.
func (c MatchingCriteria) SectorHints() []string {
	if len(c.Sectors) > 0 {
		return c.Sectors
	}
	if c.ProjectType != "" {
		return []string{c.ProjectType}
	}
	return nil
}

// IsNational reports whether the criteria has no geographic constraint.
func (c MatchingCriteria) IsNational() bool {
	return c.Location == "" || strings.EqualFold(c.Location, LocationNational)
}
