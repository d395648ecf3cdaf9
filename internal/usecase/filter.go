package usecase

import (
	"strings"
	"time"

	"SigTrail/internal/domain/models"
	"SigTrail/pkg/identity"
)

// AccountNameResolver resolves an account id to a display name for
// search-by-name. Optional; a nil resolver simply disables name matching.
type AccountNameResolver func(accountID string) (string, bool)

// FilterResult holds the narrowed collections. Slices are always fresh
// copies; the inputs are never mutated or aliased.
type FilterResult struct {
	Origin     []models.OriginSignal
	Executions []models.ExecutionRecord
}

// ApplyFilter narrows both collections by the ANDed criteria. It is pure,
// deterministic, and order-preserving: records are only removed, never
// reordered. The zero criteria is the identity filter (still copying).
func ApplyFilter(criteria models.FilterCriteria, origin []models.OriginSignal, executions []models.ExecutionRecord, resolve AccountNameResolver) FilterResult {
	criteria = normalizeCriteria(criteria)

	res := FilterResult{
		Origin:     make([]models.OriginSignal, 0, len(origin)),
		Executions: make([]models.ExecutionRecord, 0, len(executions)),
	}

	if criteria.Source != models.SourceExecution {
		for _, s := range origin {
			if matchOrigin(criteria, s) {
				res.Origin = append(res.Origin, s)
			}
		}
	}
	if criteria.Source != models.SourceOrigin {
		for _, e := range executions {
			if matchExecution(criteria, e, resolve) {
				res.Executions = append(res.Executions, e)
			}
		}
	}
	return res
}

// normalizeCriteria repairs malformed user input instead of rejecting it:
// filter criteria come from user-facing controls and must never hard-fail
// the view. An inverted date range is swapped.
func normalizeCriteria(c models.FilterCriteria) models.FilterCriteria {
	if c.Status == "" {
		c.Status = models.ClassAll
	}
	if c.Source == "" {
		c.Source = models.SourceAll
	}
	if c.From != nil && c.To != nil && c.To.Before(*c.From) {
		c.From, c.To = c.To, c.From
	}
	return c
}

func matchOrigin(c models.FilterCriteria, s models.OriginSignal) bool {
	if c.Status != models.ClassAll && s.Status.Class() != c.Status {
		return false
	}
	if !inRange(c, s.Timestamp) {
		return false
	}
	if c.Search != "" && !searchOrigin(c.Search, s) {
		return false
	}
	return true
}

func matchExecution(c models.FilterCriteria, e models.ExecutionRecord, resolve AccountNameResolver) bool {
	// Executions have no pending state; a pending filter excludes them all.
	if c.Status == models.ClassPending {
		return false
	}
	if c.Status != models.ClassAll && e.Outcome.Class() != c.Status {
		return false
	}
	if !inRange(c, e.Timestamp) {
		return false
	}
	if c.OwnerID != "" && identity.Normalize(e.OwnerID) != identity.Normalize(c.OwnerID) {
		return false
	}
	if c.Search != "" && !searchExecution(c.Search, e, resolve) {
		return false
	}
	return true
}

// inRange applies an inclusive lower bound and an upper bound inclusive of
// the entire end day, matching calendar-day user expectations.
func inRange(c models.FilterCriteria, ts time.Time) bool {
	if c.From != nil && ts.Before(*c.From) {
		return false
	}
	if c.To != nil && !ts.Before(c.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func searchOrigin(q string, s models.OriginSignal) bool {
	return containsFold(s.ID, q) ||
		containsFold(s.Instrument, q) ||
		containsFold(string(s.Action), q)
}

func searchExecution(q string, e models.ExecutionRecord, resolve AccountNameResolver) bool {
	if containsFold(e.ID, q) || containsFold(e.OriginSignalRef, q) || containsFold(e.AccountID, q) {
		return true
	}
	if resolve != nil {
		if name, ok := resolve(e.AccountID); ok && containsFold(name, q) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
