package usecase

import (
	"sync"
	"time"

	"SigTrail/internal/domain/models"
)

// Aggregate reduces a pair of collections into summary counters. Pure; the
// zero-input case returns all-zero metrics without dividing by zero.
func Aggregate(origin []models.OriginSignal, executions []models.ExecutionRecord) models.TrackingMetrics {
	m := models.TrackingMetrics{Total: len(origin) + len(executions)}

	var procSum int64
	var procN int
	for _, s := range origin {
		switch s.Status.Class() {
		case models.ClassSuccess:
			m.SuccessCount++
		case models.ClassFailed:
			m.FailedCount++
		case models.ClassPending:
			m.PendingCount++
		}
		if s.ProcessingTimeMs != nil {
			procSum += *s.ProcessingTimeMs
			procN++
		}
	}
	for _, e := range executions {
		switch e.Outcome.Class() {
		case models.ClassSuccess:
			m.SuccessCount++
		default:
			m.FailedCount++
		}
	}

	if procN > 0 {
		m.AvgProcessingTimeMs = float64(procSum) / float64(procN)
	}
	if m.Total > 0 {
		m.SuccessRatePct = float64(m.SuccessCount) / float64(m.Total) * 100
	}
	return m
}

// SnapshotFunc supplies the collections to aggregate. Invoked on every
// (re-)aggregation so periodic runs always see the latest fetch.
type SnapshotFunc func() ([]models.OriginSignal, []models.ExecutionRecord)

// Aggregator keeps best-effort summary metrics off the latency-sensitive
// path. Recalculation always runs on its own goroutine, never the caller's
// stack; metrics gate nothing, they are telemetry for the summary display.
type Aggregator struct {
	mu       sync.RWMutex
	metrics  models.TrackingMetrics
	snapshot SnapshotFunc

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	started  bool
	startMu  sync.Mutex
}

// NewAggregator creates an aggregator over a snapshot provider. interval is
// the periodic re-aggregation cadence; 0 disables periodic runs (on-demand
// Recalculate still works).
func NewAggregator(snapshot SnapshotFunc, interval time.Duration) *Aggregator {
	return &Aggregator{
		snapshot: snapshot,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Metrics returns the latest computed snapshot.
func (a *Aggregator) Metrics() models.TrackingMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.metrics
}

// Recalculate schedules one aggregation pass on a fresh goroutine and
// returns immediately.
func (a *Aggregator) Recalculate() {
	go a.run()
}

// Start launches the periodic re-aggregation loop. No-op when the interval
// is 0 or Start was already called.
func (a *Aggregator) Start() {
	if a.interval <= 0 {
		return
	}
	a.startMu.Lock()
	if a.started {
		a.startMu.Unlock()
		return
	}
	a.started = true
	a.startMu.Unlock()

	go func() {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stopCh:
				return
			case <-ticker.C:
				a.run()
			}
		}
	}()
}

// Stop halts the periodic loop. Safe to call more than once.
func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
}

func (a *Aggregator) run() {
	if a.snapshot == nil {
		return
	}
	origin, executions := a.snapshot()
	m := Aggregate(origin, executions)

	a.mu.Lock()
	a.metrics = m
	a.mu.Unlock()
}
