package usecase

import (
	"context"

	"SigTrail/internal/domain/models"
	domrepo "SigTrail/internal/domain/repository"
	"SigTrail/pkg/identity"
	applogger "SigTrail/pkg/logger"
)

// ExecutionCorrelator retrieves execution records for a scope. It applies the
// same privilege and normalization rules as OriginFetcher, independently per
// record, and never assumes the origin fetch has already run: the two fetches
// are issued concurrently by the Tracker.
type ExecutionCorrelator struct {
	source domrepo.SignalSource
	log    *applogger.Logger
}

func NewExecutionCorrelator(source domrepo.SignalSource, log *applogger.Logger) *ExecutionCorrelator {
	return &ExecutionCorrelator{source: source, log: log}
}

// FetchExecutions returns the execution records visible to scope. A record
// linking to an origin signal the scope cannot see is still returned here;
// the composer reports it as orphaned.
func (c *ExecutionCorrelator) FetchExecutions(ctx context.Context, scope models.QueryScope) ([]models.ExecutionRecord, error) {
	all, err := c.source.ExecutionRecords(ctx, scope.BotID)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}
	if scope.Privileged {
		return all, nil
	}

	owner := identity.Normalize(scope.OwnerID)
	out := make([]models.ExecutionRecord, 0, len(all))
	for _, e := range all {
		if e.OwnerID == "" {
			if c.log != nil {
				c.log.Warn("execution record without owner excluded",
					applogger.String("execution_id", e.ID),
					applogger.String("origin_ref", e.OriginSignalRef))
			}
			continue
		}
		if identity.Normalize(e.OwnerID) == owner {
			out = append(out, e)
		}
	}
	return out, nil
}
