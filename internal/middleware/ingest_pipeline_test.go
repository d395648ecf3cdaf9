package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SigTrail/internal/domain/models"
	domrepo "SigTrail/internal/domain/repository"
)

type stubProc struct {
	mu      sync.Mutex
	err     error
	calls   int   // events delivered downstream
	batches []int // sizes of ProcessBatch invocations
}

func (s *stubProc) Process(ctx context.Context, ev *domrepo.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *stubProc) ProcessBatch(ctx context.Context, evs []*domrepo.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, len(evs))
	s.calls += len(evs)
	return nil
}

func (s *stubProc) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubProc) batchSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batches...)
}

func (s *stubProc) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

type stubMetrics struct {
	mu     sync.Mutex
	errs   map[string]int
	events int
}

func newStubMetrics() *stubMetrics { return &stubMetrics{errs: make(map[string]int)} }

func (s *stubMetrics) RecordEventStored(backend, botID string) {
	s.mu.Lock()
	s.events++
	s.mu.Unlock()
}

func (s *stubMetrics) RecordError(kind string) {
	s.mu.Lock()
	s.errs[kind]++
	s.mu.Unlock()
}

func (s *stubMetrics) RecordFetchCycle(outcome string, d time.Duration) {}
func (s *stubMetrics) RecordSkippedTrigger()                           {}
func (s *stubMetrics) RecordLatency(op string, seconds float64)        {}

func (s *stubMetrics) errCount(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[kind]
}

func signalEvent(botID, id string) *domrepo.AlertEvent {
	return &domrepo.AlertEvent{
		Kind:   domrepo.EventSignal,
		BotID:  botID,
		Signal: &models.OriginSignal{ID: id},
	}
}

func TestPipelineForwardsValidEvent(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m)

	if err := p.Process(context.Background(), signalEvent("BOT-1", "SIG-1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("downstream not called")
	}
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m)

	cases := []*domrepo.AlertEvent{
		nil,
		{Kind: domrepo.EventSignal, BotID: ""},
		{Kind: domrepo.EventSignal, BotID: "BOT-1"}, // nil payload
		{Kind: domrepo.EventExecution, BotID: "BOT-1", Execution: &models.ExecutionRecord{ID: "EXE-1"}}, // missing origin ref
		{Kind: "unknown", BotID: "BOT-1"},
	}
	for i, ev := range cases {
		if err := p.Process(context.Background(), ev); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.count() != 0 {
		t.Fatalf("invalid events must not reach downstream")
	}
	if m.errCount("pipeline_validate") != len(cases) {
		t.Fatalf("validation errors not counted: %d", m.errCount("pipeline_validate"))
	}
}

func TestPipelineThrottlesPerBot(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m, WithMaxRPS(1))

	if err := p.Process(context.Background(), signalEvent("BOT-1", "SIG-1")); err != nil {
		t.Fatalf("first event: %v", err)
	}
	// immediate second event for the same bot is dropped silently
	if err := p.Process(context.Background(), signalEvent("BOT-1", "SIG-2")); err != nil {
		t.Fatalf("throttled event must not error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("throttle leaked an event downstream")
	}
	if m.errCount("pipeline_throttle") != 1 {
		t.Fatalf("throttle not counted")
	}

	// a different bot has its own window
	if err := p.Process(context.Background(), signalEvent("BOT-2", "SIG-3")); err != nil {
		t.Fatalf("other bot: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("per-bot throttle must not block other bots")
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &stubProc{err: errors.New("backend down")}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m, WithBufferSize(4))

	if err := p.Process(context.Background(), signalEvent("BOT-1", "SIG-1")); err == nil {
		t.Fatalf("downstream failure must surface")
	}
	if m.errCount("pipeline_process") != 1 {
		t.Fatalf("process error not counted")
	}

	// backend recovers; Start drains the buffered event
	proc.setErr(nil)
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if proc.count() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("buffered event never flushed, calls=%d", proc.count())
}

func TestPipelineFlushesFullBatch(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m, WithBatch(3, time.Hour))

	for i := 0; i < 3; i++ {
		p.bufCh <- signalEvent("BOT-1", "SIG-1")
	}
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sizes := proc.batchSizes(); len(sizes) == 1 {
			if sizes[0] != 3 {
				t.Fatalf("expected one batch of 3, got %v", sizes)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("full batch never flushed, batches=%v", proc.batchSizes())
}

func TestPipelineFlushesPartialBatchOnTimeout(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m, WithBatch(100, 30*time.Millisecond))

	p.bufCh <- signalEvent("BOT-1", "SIG-1")
	p.bufCh <- signalEvent("BOT-1", "SIG-2")
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sizes := proc.batchSizes(); len(sizes) == 1 {
			if sizes[0] != 2 {
				t.Fatalf("expected partial batch of 2, got %v", sizes)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("partial batch never flushed, batches=%v", proc.batchSizes())
}

func TestPipelineRequeuesFailedBatch(t *testing.T) {
	proc := &stubProc{err: errors.New("backend down")}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m, WithBufferSize(4), WithBatch(2, 20*time.Millisecond))

	p.bufCh <- signalEvent("BOT-1", "SIG-1")
	p.bufCh <- signalEvent("BOT-1", "SIG-2")
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.errCount("pipeline_flush") >= 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if m.errCount("pipeline_flush") == 0 {
		t.Fatalf("failed flush not counted")
	}

	// backend recovers; the requeued events flush on a later tick
	proc.setErr(nil)
	deadline = time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if proc.count() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("requeued events never flushed, calls=%d", proc.count())
}
