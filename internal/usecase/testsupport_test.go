package usecase

import (
	"context"
	"sync"
	"time"

	"SigTrail/internal/domain/models"
	applogger "SigTrail/pkg/logger"
)

// fakeSource is a controllable SignalSource: fixed collections, optional
// per-call delay and error, and call counting.
type fakeSource struct {
	mu        sync.Mutex
	origin    []models.OriginSignal
	execs     []models.ExecutionRecord
	delay     time.Duration
	ignoreCtx bool // simulate a source that cannot be cancelled
	err       error
	originN   int
	execsN    int
}

func (f *fakeSource) OriginSignals(ctx context.Context, botID string) ([]models.OriginSignal, error) {
	f.mu.Lock()
	f.originN++
	delay, ignoreCtx, err := f.delay, f.ignoreCtx, f.err
	out := append([]models.OriginSignal(nil), f.origin...)
	f.mu.Unlock()
	if err := f.sleep(ctx, delay, ignoreCtx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeSource) ExecutionRecords(ctx context.Context, botID string) ([]models.ExecutionRecord, error) {
	f.mu.Lock()
	f.execsN++
	delay, ignoreCtx, err := f.delay, f.ignoreCtx, f.err
	out := append([]models.ExecutionRecord(nil), f.execs...)
	f.mu.Unlock()
	if err := f.sleep(ctx, delay, ignoreCtx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeSource) sleep(ctx context.Context, delay time.Duration, ignoreCtx bool) error {
	if delay <= 0 {
		return nil
	}
	if ignoreCtx {
		time.Sleep(delay)
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.originN, f.execsN
}

func (f *fakeSource) setError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// fakeMetrics counts recorder calls.
type fakeMetrics struct {
	mu       sync.Mutex
	cycles   map[string]int
	skipped  int
	stored   int
	errors   int
	latency  int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{cycles: make(map[string]int)}
}

func (m *fakeMetrics) RecordEventStored(backend, botID string) {
	m.mu.Lock()
	m.stored++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordFetchCycle(outcome string, d time.Duration) {
	m.mu.Lock()
	m.cycles[outcome]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordSkippedTrigger() {
	m.mu.Lock()
	m.skipped++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(op string, seconds float64) {
	m.mu.Lock()
	m.latency++
	m.mu.Unlock()
}

func (m *fakeMetrics) skippedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}

func (m *fakeMetrics) cycleCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles[outcome]
}

func testLogger() *applogger.Logger {
	l, _ := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	return l
}

func msPtr(v int64) *int64 { return &v }

func tsAt(day int, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
}
