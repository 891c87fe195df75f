// internal/matching/weights.go

// Package matching implements the partner recommendation engine: weighted
// multi-factor compatibility scoring, ranking, and reason generation over
// an in-memory partner catalog. The computation is pure and synchronous;
// callers own all I/O.
package matching

import (
	"fmt"
	"math"
)

// Weights defines the fixed contribution of each factor to the aggregate
// score. The same weights apply to every call; there is no dynamic
// reweighting. Sector fit is the primary driver of a usable match,
// location is a strong secondary constraint, and resource fit is the
// weakest signal because partner resource data is frequently missing.
type Weights struct {
	SectorMatch       float64
	LocationRelevance float64
	ProjectAlignment  float64
	ResourceFit       float64
}

// DefaultWeights are the production weights. They must sum to 1.0;
// Validate is checked in tests and at worker startup.
var DefaultWeights = Weights{
	SectorMatch:       0.35,
	LocationRelevance: 0.25,
	ProjectAlignment:  0.25,
	ResourceFit:       0.15,
}

// Sum returns the total of all factor weights.
func (w Weights) Sum() float64 {
	return w.SectorMatch + w.LocationRelevance + w.ProjectAlignment + w.ResourceFit
}

// Validate checks the sum-to-one invariant within floating point tolerance.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("factor weights must sum to 1.0, got %v", w.Sum())
	}
	return nil
}
