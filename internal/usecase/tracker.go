package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SigTrail/internal/domain/models"
	domrepo "SigTrail/internal/domain/repository"
	applogger "SigTrail/pkg/logger"

	"github.com/google/uuid"
)

const (
	// DefaultMinLoading keeps a fast fetch from flashing the loading
	// indicator on and off.
	DefaultMinLoading = 500 * time.Millisecond
	// DefaultFetchTimeout is the ceiling past which a cycle is failed and
	// its late results discarded.
	DefaultFetchTimeout = 3 * time.Second
)

// FetchResult is the raw pair of collections produced by one fetch cycle.
// Consumers receive it as an owned snapshot and must treat it as immutable;
// filtering and composition always produce new collections.
type FetchResult struct {
	Origin     []models.OriginSignal
	Executions []models.ExecutionRecord
}

// TrackerState is a point-in-time view of the coordinator. A failed cycle
// keeps the last successful Result in place so consumers never flash to
// empty on a transient failure.
type TrackerState struct {
	Result  *FetchResult
	Err     *models.FetchError
	Loading bool
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMinLoading sets the minimum visible loading duration.
func WithMinLoading(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d >= 0 {
			t.minLoading = d
		}
	}
}

// WithFetchTimeout sets the cycle ceiling.
func WithFetchTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithSkipLoadingState suppresses the Loading flag for consumers already
// tracked by an enclosing coordinator. Cycles still run and dedup.
func WithSkipLoadingState(skip bool) TrackerOption {
	return func(t *Tracker) { t.skipLoading = skip }
}

// Tracker guarantees at most one in-flight fetch cycle per consumer and a
// stable, non-flickering loading signal. Each consumer owns its own Tracker:
// state is an explicit per-instance object, never a process-wide flag, so
// independent tracking sessions cannot cross-talk.
type Tracker struct {
	origins *OriginFetcher
	execs   *ExecutionCorrelator
	metrics domrepo.Metrics
	log     *applogger.Logger

	minLoading  time.Duration
	timeout     time.Duration
	skipLoading bool

	mu         sync.Mutex
	inFlight   bool
	generation uint64
	loading    bool
	result     *FetchResult
	err        *models.FetchError
	cycleDone  chan struct{}
}

func NewTracker(origins *OriginFetcher, execs *ExecutionCorrelator, metrics domrepo.Metrics, log *applogger.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		origins:    origins,
		execs:      execs,
		metrics:    metrics,
		log:        log,
		minLoading: DefaultMinLoading,
		timeout:    DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trigger starts a fetch cycle unless one is already in flight, in which
// case the call is a logged no-op (not queued, not an error) and false is
// returned. Callers needing guaranteed freshness re-trigger after the
// current cycle settles.
func (t *Tracker) Trigger(ctx context.Context, scope models.QueryScope) bool {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		if t.log != nil {
			t.log.Debug("fetch trigger skipped: cycle in flight",
				applogger.String("bot_id", scope.BotID))
		}
		if t.metrics != nil {
			t.metrics.RecordSkippedTrigger()
		}
		return false
	}
	t.inFlight = true
	t.generation++
	gen := t.generation
	if !t.skipLoading {
		t.loading = true
	}
	done := make(chan struct{})
	t.cycleDone = done
	t.mu.Unlock()

	go t.runCycle(ctx, scope, gen, done)
	return true
}

// Refresh re-triggers regardless of any cached result. Always safe to call
// immediately; it shares Trigger's dedup.
func (t *Tracker) Refresh(ctx context.Context, scope models.QueryScope) bool {
	return t.Trigger(ctx, scope)
}

// State returns the current snapshot.
func (t *Tracker) State() TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TrackerState{Result: t.result, Err: t.err, Loading: t.loading}
}

// Wait blocks until the in-flight cycle (if any) settles or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.cycleDone
	inFlight := t.inFlight
	t.mu.Unlock()
	if !inFlight || done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cycleOutcome struct {
	res *FetchResult
	err *models.FetchError
}

func (t *Tracker) runCycle(ctx context.Context, scope models.QueryScope, gen uint64, done chan struct{}) {
	start := time.Now()
	cycleID := uuid.NewString()

	fetchCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resCh := make(chan cycleOutcome, 1)
	go t.fanOut(fetchCtx, scope, resCh)

	ceiling := time.NewTimer(t.timeout)
	defer ceiling.Stop()

	var out cycleOutcome
	select {
	case out = <-resCh:
	case <-ceiling.C:
		// Ceiling exceeded: fail the cycle now and discard whatever the
		// abandoned fetches eventually produce.
		t.expire(gen, done, start)
		go func() {
			late := <-resCh
			if t.log != nil {
				t.log.Debug("late fetch result discarded",
					applogger.String("cycle_id", cycleID),
					applogger.Bool("had_error", late.err != nil))
			}
		}()
		return
	}

	// Hold completion to the loading floor, clamped by the ceiling.
	if rem := t.minLoading - time.Since(start); rem > 0 {
		floor := time.NewTimer(rem)
		select {
		case <-floor.C:
		case <-ceiling.C:
		}
		floor.Stop()
	}

	t.apply(gen, out, done, start, cycleID)
}

// fanOut issues both fetches without sequencing dependency and settles once
// both have.
func (t *Tracker) fanOut(ctx context.Context, scope models.QueryScope, resCh chan<- cycleOutcome) {
	type item struct {
		name   string
		origin []models.OriginSignal
		execs  []models.ExecutionRecord
		err    error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := t.origins.FetchOrigin(ctx, scope)
		ch <- item{name: "origin", origin: v, err: err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := t.execs.FetchExecutions(ctx, scope)
		ch <- item{name: "executions", execs: v, err: err}
	}()
	go func() { wg.Wait(); close(ch) }()

	out := cycleOutcome{res: &FetchResult{}}
	for it := range ch {
		if it.err != nil {
			if out.err == nil {
				out.err = asFetchError(it.err)
			}
			continue
		}
		switch it.name {
		case "origin":
			out.res.Origin = it.origin
		case "executions":
			out.res.Executions = it.execs
		}
	}
	if out.err != nil {
		out.res = nil
	}
	resCh <- out
}

// apply installs a settled outcome, unless a newer generation superseded
// this cycle in the meantime.
func (t *Tracker) apply(gen uint64, out cycleOutcome, done chan struct{}, start time.Time, cycleID string) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		if t.log != nil {
			t.log.Debug("stale fetch cycle dropped", applogger.String("cycle_id", cycleID))
		}
		return
	}
	outcome := "success"
	if out.err != nil {
		t.err = out.err
		outcome = "error"
		// keep t.result: last successful snapshot stays visible
	} else {
		t.err = nil
		t.result = out.res
	}
	t.inFlight = false
	if !t.skipLoading {
		t.loading = false
	}
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.RecordFetchCycle(outcome, time.Since(start))
	}
	close(done)
}

// expire fails the current cycle with a timeout and bumps the generation so
// any late result is rejected on arrival.
func (t *Tracker) expire(gen uint64, done chan struct{}, start time.Time) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		return
	}
	t.generation++
	t.err = models.NewTimeoutError(fmt.Errorf("fetch cycle exceeded %s", t.timeout))
	t.inFlight = false
	if !t.skipLoading {
		t.loading = false
	}
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.RecordFetchCycle("timeout", time.Since(start))
	}
	close(done)
}

func asFetchError(err error) *models.FetchError {
	if fe, ok := err.(*models.FetchError); ok {
		return fe
	}
	return models.NewNetworkError(err)
}
