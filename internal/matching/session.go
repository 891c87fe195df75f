// internal/matching/session.go
package matching

import (
	"errors"
	"sync"

	"partner-match-workers/internal/models"
)

// State is the lifecycle of a matching session.
type State string

const (
	StateIdle      State = "idle"
	StateComputing State = "computing"
	StateReady     State = "ready"
	StateFailed    State = "failed"
)

// Result is the outcome of one recommendation request.
type Result struct {
	Recommendations   []models.PartnerRecommendation `json:"recommendations"`
	TopRecommendation *models.PartnerRecommendation  `json:"topRecommendation,omitempty"`
	Warnings          []Warning                      `json:"warnings,omitempty"`
}

// ByLevel returns the recommendations whose partner operates at the
// given tier, preserving rank order. The partner detail view groups
// candidates this way (local vs regional vs national).
func (r *Result) ByLevel(level models.PartnerLevel) []models.PartnerRecommendation {
	var filtered []models.PartnerRecommendation
	for _, rec := range r.Recommendations {
		if rec.Partner.Level == level {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Session is a thin stateful wrapper over the pure ranking functions for
// callers that want a cached "last computed" result. The scoring logic
// itself carries no session state; every Recommend call recomputes from
// the supplied snapshot. Safe for concurrent use.
type Session struct {
	mu             sync.Mutex
	maxCatalogSize int
	state          State
	lastResult     *Result
	lastErr        error
}

// NewSession creates an idle session. maxCatalogSize <= 0 selects
// DefaultMaxCatalogSize.
func NewSession(maxCatalogSize int) *Session {
	return &Session{
		maxCatalogSize: maxCatalogSize,
		state:          StateIdle,
	}
}

// Recommend ranks the catalog against the criteria and caches the
// result. currentProjects only narrows suggested projects; it never
// affects scoring. Invalid criteria or an oversized catalog moves the
// session to Failed; per-partner scoring problems surface as warnings
// on a Ready result.
func (s *Session) Recommend(catalog []models.Partner, criteria models.MatchingCriteria, currentProjects []string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateComputing

	scores, warnings, err := Rank(catalog, criteria, s.maxCatalogSize)
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		s.lastResult = nil
		return nil, err
	}

	recommendations := BuildRecommendations(catalog, criteria, currentProjects, scores)

	result := &Result{
		Recommendations: recommendations,
		Warnings:        warnings,
	}
	if len(recommendations) > 0 {
		top := recommendations[0]
		result.TopRecommendation = &top
	}

	s.state = StateReady
	s.lastErr = nil
	s.lastResult = result
	return result, nil
}

// Last returns the cached result of the most recent successful
// Recommend, if any.
func (s *Session) Last() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return nil, false
	}
	return s.lastResult, true
}

// Err returns the error that moved the session to Failed, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Refresh clears cached error state and returns the session to Idle.
// It does not mutate inputs; the next Recommend recomputes from scratch.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.lastErr = nil
	s.lastResult = nil
}

// IsInvalidInput reports whether err is a caller problem (bad criteria
// or oversized catalog) rather than an engine fault.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidCriteria) || errors.Is(err, ErrCatalogTooLarge)
}
