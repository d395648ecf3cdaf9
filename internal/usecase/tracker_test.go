package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SigTrail/internal/domain/models"
)

func newTestTracker(src *fakeSource, m *fakeMetrics, opts ...TrackerOption) *Tracker {
	l := testLogger()
	return NewTracker(NewOriginFetcher(src, l), NewExecutionCorrelator(src, l), m, l, opts...)
}

func TestTrackerDedupesInFlightTrigger(t *testing.T) {
	src := &fakeSource{
		origin: []models.OriginSignal{{ID: "SIG-1", OwnerID: "USR-100"}},
		delay:  100 * time.Millisecond,
	}
	m := newFakeMetrics()
	tr := newTestTracker(src, m, WithMinLoading(0), WithFetchTimeout(2*time.Second))
	scope := models.QueryScope{BotID: "BOT-1", Privileged: true}

	if !tr.Trigger(context.Background(), scope) {
		t.Fatalf("first trigger must start a cycle")
	}
	if tr.Trigger(context.Background(), scope) {
		t.Fatalf("second trigger must be a no-op while in flight")
	}
	if err := tr.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	on, en := src.calls()
	if on != 1 || en != 1 {
		t.Fatalf("expected exactly one fetch pair, got %d/%d", on, en)
	}
	if m.skippedCount() != 1 {
		t.Fatalf("skipped trigger not recorded, got %d", m.skippedCount())
	}

	// settled cycle frees the slot
	if !tr.Trigger(context.Background(), scope) {
		t.Fatalf("trigger after settle must start a new cycle")
	}
	_ = tr.Wait(context.Background())
	on, _ = src.calls()
	if on != 2 {
		t.Fatalf("expected second fetch, got %d", on)
	}
}

func TestTrackerMinLoadingFloor(t *testing.T) {
	src := &fakeSource{origin: []models.OriginSignal{{ID: "SIG-1"}}}
	tr := newTestTracker(src, newFakeMetrics(),
		WithMinLoading(200*time.Millisecond), WithFetchTimeout(2*time.Second))
	scope := models.QueryScope{BotID: "BOT-1", Privileged: true}

	start := time.Now()
	tr.Trigger(context.Background(), scope)

	if st := tr.State(); !st.Loading {
		t.Fatalf("loading must be on during the floor window")
	}
	if err := tr.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("cycle settled before the loading floor: %v", elapsed)
	}
	if st := tr.State(); st.Loading || st.Result == nil {
		t.Fatalf("unexpected state after settle: %+v", st)
	}
}

func TestTrackerErrorKeepsLastResult(t *testing.T) {
	src := &fakeSource{origin: []models.OriginSignal{{ID: "SIG-1", OwnerID: "USR-100"}}}
	tr := newTestTracker(src, newFakeMetrics(), WithMinLoading(0), WithFetchTimeout(time.Second))
	scope := models.QueryScope{BotID: "BOT-1", Privileged: true}

	tr.Trigger(context.Background(), scope)
	if err := tr.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if st := tr.State(); st.Result == nil || st.Err != nil {
		t.Fatalf("first cycle should succeed: %+v", st)
	}

	src.setError(errors.New("source down"))
	tr.Trigger(context.Background(), scope)
	if err := tr.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	st := tr.State()
	if st.Err == nil || st.Err.Kind != models.FetchNetworkFailure {
		t.Fatalf("expected network error, got %+v", st.Err)
	}
	if st.Result == nil || len(st.Result.Origin) != 1 {
		t.Fatalf("failed cycle must retain the last successful result: %+v", st.Result)
	}

	// recovery clears the error
	src.setError(nil)
	tr.Trigger(context.Background(), scope)
	_ = tr.Wait(context.Background())
	if st := tr.State(); st.Err != nil {
		t.Fatalf("recovered cycle must clear the error: %+v", st.Err)
	}
}

func TestTrackerTimeoutDiscardsLateResult(t *testing.T) {
	src := &fakeSource{
		origin:    []models.OriginSignal{{ID: "SIG-1"}},
		delay:     500 * time.Millisecond,
		ignoreCtx: true,
	}
	m := newFakeMetrics()
	tr := newTestTracker(src, m, WithMinLoading(0), WithFetchTimeout(50*time.Millisecond))
	scope := models.QueryScope{BotID: "BOT-1", Privileged: true}

	tr.Trigger(context.Background(), scope)
	if err := tr.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	st := tr.State()
	if st.Err == nil || st.Err.Kind != models.FetchTimeout {
		t.Fatalf("expected timeout error, got %+v", st.Err)
	}
	if st.Result != nil {
		t.Fatalf("no prior success, result must stay nil")
	}
	if m.cycleCount("timeout") != 1 {
		t.Fatalf("timeout cycle not recorded")
	}

	// the abandoned fetch settles later; its result must not surface
	time.Sleep(600 * time.Millisecond)
	if st := tr.State(); st.Result != nil || st.Err == nil {
		t.Fatalf("late result leaked into state: %+v", st)
	}

	// and the tracker accepts a fresh trigger
	src.mu.Lock()
	src.delay = 0
	src.mu.Unlock()
	if !tr.Trigger(context.Background(), scope) {
		t.Fatalf("trigger after timeout must start a new cycle")
	}
	_ = tr.Wait(context.Background())
	if st := tr.State(); st.Err != nil || st.Result == nil {
		t.Fatalf("fresh cycle after timeout failed: %+v", st)
	}
}

func TestTrackerSkipLoadingState(t *testing.T) {
	src := &fakeSource{delay: 100 * time.Millisecond}
	tr := newTestTracker(src, newFakeMetrics(),
		WithMinLoading(0), WithFetchTimeout(time.Second), WithSkipLoadingState(true))
	scope := models.QueryScope{BotID: "BOT-1", Privileged: true}

	tr.Trigger(context.Background(), scope)
	if st := tr.State(); st.Loading {
		t.Fatalf("skip-loading tracker must never raise the flag")
	}
	_ = tr.Wait(context.Background())
}

func TestTrackerWaitWithoutCycle(t *testing.T) {
	tr := newTestTracker(&fakeSource{}, newFakeMetrics())
	if err := tr.Wait(context.Background()); err != nil {
		t.Fatalf("wait with no cycle must return immediately: %v", err)
	}
}

func TestTrackerIndependentInstances(t *testing.T) {
	slow := &fakeSource{delay: 200 * time.Millisecond}
	fast := &fakeSource{origin: []models.OriginSignal{{ID: "SIG-1"}}}
	trSlow := newTestTracker(slow, newFakeMetrics(), WithMinLoading(0), WithFetchTimeout(time.Second))
	trFast := newTestTracker(fast, newFakeMetrics(), WithMinLoading(0), WithFetchTimeout(time.Second))
	scope := models.QueryScope{BotID: "BOT-1", Privileged: true}

	trSlow.Trigger(context.Background(), scope)
	// the slow tracker's in-flight cycle must not block the other instance
	if !trFast.Trigger(context.Background(), scope) {
		t.Fatalf("trackers share no state; fast trigger must start")
	}
	if err := trFast.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if st := trFast.State(); st.Result == nil {
		t.Fatalf("fast tracker should have settled")
	}
	_ = trSlow.Wait(context.Background())
}
