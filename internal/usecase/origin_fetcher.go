package usecase

import (
	"context"

	"SigTrail/internal/domain/models"
	domrepo "SigTrail/internal/domain/repository"
	"SigTrail/pkg/identity"
	applogger "SigTrail/pkg/logger"
)

// OriginFetcher retrieves origin signals for a scope, applying owner
// filtering on normalized identifiers.
type OriginFetcher struct {
	source domrepo.SignalSource
	log    *applogger.Logger
}

func NewOriginFetcher(source domrepo.SignalSource, log *applogger.Logger) *OriginFetcher {
	return &OriginFetcher{source: source, log: log}
}

// FetchOrigin returns the origin signals visible to scope. Privileged scopes
// see every signal in the bot's scope; otherwise only signals whose
// normalized owner matches. Signals with no owner are excluded from
// non-privileged results and logged, never coerced to match.
func (f *OriginFetcher) FetchOrigin(ctx context.Context, scope models.QueryScope) ([]models.OriginSignal, error) {
	all, err := f.source.OriginSignals(ctx, scope.BotID)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}
	if scope.Privileged {
		return all, nil
	}

	owner := identity.Normalize(scope.OwnerID)
	if !identity.IsWellFormed(scope.OwnerID) && f.log != nil {
		f.log.Warn("origin fetch: malformed scope owner id",
			applogger.String("raw", scope.OwnerID),
			applogger.String("normalized", owner))
	}

	out := make([]models.OriginSignal, 0, len(all))
	for _, s := range all {
		if s.OwnerID == "" {
			if f.log != nil {
				f.log.Warn("origin signal without owner excluded",
					applogger.String("signal_id", s.ID),
					applogger.String("bot_id", scope.BotID))
			}
			continue
		}
		if identity.Normalize(s.OwnerID) == owner {
			out = append(out, s)
		}
	}
	return out, nil
}
