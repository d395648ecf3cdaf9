package usecase

import (
	"context"
	"sync"
	"time"

	"SigTrail/internal/domain/models"
	domrepo "SigTrail/internal/domain/repository"
	applogger "SigTrail/pkg/logger"
)

// TrackingSnapshot is what the presentation layer consumes: the composed
// hierarchical view, summary metrics, and the coordinator's status flags.
type TrackingSnapshot struct {
	Correlated []models.CorrelatedSignal
	Orphaned   []models.ExecutionRecord
	Metrics    models.TrackingMetrics
	Loading    bool
	Err        *models.FetchError
}

// SessionOption configures a TrackingSession.
type SessionOption func(*TrackingSession)

// WithCriteria sets the initial filter criteria.
func WithCriteria(c models.FilterCriteria) SessionOption {
	return func(s *TrackingSession) { s.criteria = c }
}

// WithAggregateInterval enables periodic metric re-aggregation; 0 disables.
func WithAggregateInterval(d time.Duration) SessionOption {
	return func(s *TrackingSession) { s.aggInterval = d }
}

// WithTrackerOptions forwards options to the session's coordinator.
func WithTrackerOptions(opts ...TrackerOption) SessionOption {
	return func(s *TrackingSession) { s.trackerOpts = opts }
}

// TrackingSession is the single composed entry point wiring coordinator →
// filter → composer/aggregator for one consumer and scope. Two sessions
// never share coordinator state.
type TrackingSession struct {
	tracker   *Tracker
	agg       *Aggregator
	directory domrepo.AccountDirectory
	log       *applogger.Logger
	scope     models.QueryScope

	mu       sync.RWMutex
	criteria models.FilterCriteria

	aggInterval time.Duration
	trackerOpts []TrackerOption
}

// NewTrackingSession builds a session over a signal source. The directory is
// optional (nil disables search-by-name).
func NewTrackingSession(source domrepo.SignalSource, directory domrepo.AccountDirectory, metrics domrepo.Metrics, log *applogger.Logger, scope models.QueryScope, opts ...SessionOption) *TrackingSession {
	s := &TrackingSession{
		directory: directory,
		log:       log,
		scope:     scope,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tracker = NewTracker(
		NewOriginFetcher(source, log),
		NewExecutionCorrelator(source, log),
		metrics, log, s.trackerOpts...,
	)
	s.agg = NewAggregator(s.filteredSnapshot, s.aggInterval)
	s.agg.Start()
	return s
}

// Refresh triggers a fetch cycle (deduped against an in-flight one) and
// schedules metric re-aggregation once it settles.
func (s *TrackingSession) Refresh(ctx context.Context) {
	if !s.tracker.Trigger(ctx, s.scope) {
		return
	}
	go func() {
		if err := s.tracker.Wait(ctx); err != nil {
			return
		}
		s.agg.Recalculate()
	}()
}

// Wait blocks until the in-flight cycle (if any) settles.
func (s *TrackingSession) Wait(ctx context.Context) error {
	return s.tracker.Wait(ctx)
}

// SetCriteria replaces the filter criteria without re-fetching.
func (s *TrackingSession) SetCriteria(c models.FilterCriteria) {
	s.mu.Lock()
	s.criteria = c
	s.mu.Unlock()
	s.agg.Recalculate()
}

// Criteria returns the current filter criteria.
func (s *TrackingSession) Criteria() models.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Snapshot recomputes filtering and composition over the latest fetch and
// pairs them with the deferred aggregator's metrics.
func (s *TrackingSession) Snapshot() TrackingSnapshot {
	state := s.tracker.State()
	snap := TrackingSnapshot{
		Loading: state.Loading,
		Err:     state.Err,
		Metrics: s.agg.Metrics(),
	}
	if state.Result == nil {
		return snap
	}
	origin, executions := s.filtered(state.Result)
	view := Compose(origin, executions, s.log)
	snap.Correlated = view.Signals
	snap.Orphaned = view.Orphaned
	return snap
}

// AggregateNow recomputes metrics synchronously over the current filtered
// collections. Test and summary-endpoint convenience; the hot path always
// defers via the aggregator.
func (s *TrackingSession) AggregateNow() models.TrackingMetrics {
	return Aggregate(s.filteredSnapshot())
}

// Close stops the periodic aggregation loop.
func (s *TrackingSession) Close() {
	s.agg.Stop()
}

func (s *TrackingSession) filteredSnapshot() ([]models.OriginSignal, []models.ExecutionRecord) {
	state := s.tracker.State()
	if state.Result == nil {
		return nil, nil
	}
	return s.filtered(state.Result)
}

func (s *TrackingSession) filtered(res *FetchResult) ([]models.OriginSignal, []models.ExecutionRecord) {
	s.mu.RLock()
	criteria := s.criteria
	s.mu.RUnlock()

	fr := ApplyFilter(criteria, res.Origin, res.Executions, s.resolver())
	return fr.Origin, fr.Executions
}

func (s *TrackingSession) resolver() AccountNameResolver {
	if s.directory == nil {
		return nil
	}
	return func(accountID string) (string, bool) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		return s.directory.ResolveAccountName(ctx, accountID)
	}
}
