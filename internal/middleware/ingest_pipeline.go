package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	domrepo "SigTrail/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, ev *domrepo.AlertEvent) error
	ProcessBatch(ctx context.Context, evs []*domrepo.AlertEvent) error
}

// IngestPipeline sits between the alert feed and the backend. It validates
// events, throttles per bot, and buffers with retry when the backend is
// unavailable. Buffered events drain in batches.
type IngestPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	batchSz  int
	batchTO  time.Duration
	bufCh    chan *domrepo.AlertEvent
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-bot last accepted time
}

type PipelineOption func(*IngestPipeline)

// WithMaxRPS sets the max accepted events per second per bot.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithBatch sets the flush batch size and the max time a buffered event
// waits before a partial batch is flushed.
func WithBatch(size int, timeout time.Duration) PipelineOption {
	return func(p *IngestPipeline) {
		if size > 0 {
			p.batchSz = size
		}
		if timeout > 0 {
			p.batchTO = timeout
		}
	}
}

func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   50,
		bufSize:  2000,
		batchSz:  100,
		batchTO:  200 * time.Millisecond,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *domrepo.AlertEvent, p.bufSize)
	return p
}

// Start launches background flushing of buffered events. Events accumulate
// into batches of up to the configured size; a partial batch is flushed once
// the batch timeout elapses.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.flushLoop(ctx)
}

func (p *IngestPipeline) flushLoop(ctx context.Context) {
	backoff := 50 * time.Millisecond
	batch := make([]*domrepo.AlertEvent, 0, p.batchSz)
	timer := time.NewTimer(p.batchTO)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.proc.ProcessBatch(ctx, batch); err != nil {
			if backoff < 2*time.Second {
				backoff *= 2
			}
			p.metrics.RecordError("pipeline_flush")
			time.Sleep(backoff)
			// requeue what fits; drop the rest
			for _, ev := range batch {
				select {
				case p.bufCh <- ev:
				default:
					p.metrics.RecordError("pipeline_buffer_drop")
				}
			}
		} else {
			backoff = 50 * time.Millisecond
		}
		batch = batch[:0]
	}
	resetTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.batchTO)
	}

	for {
		select {
		case <-p.stopCh:
			flush()
			return
		case ev := <-p.bufCh:
			if ev == nil {
				continue
			}
			batch = append(batch, ev)
			if len(batch) >= p.batchSz {
				flush()
				resetTimer()
			}
		case <-timer.C:
			flush()
			timer.Reset(p.batchTO)
		}
	}
}

// Stop halts background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards an event downstream, buffering
// on backend errors.
func (p *IngestPipeline) Process(ctx context.Context, ev *domrepo.AlertEvent) error {
	start := time.Now()
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(ev.BotID, start) {
		// throttled; count and drop
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, ev); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- ev:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEvent(ev *domrepo.AlertEvent) error {
	if ev == nil {
		return fmt.Errorf("event nil")
	}
	if ev.BotID == "" {
		return fmt.Errorf("bot id empty")
	}
	switch ev.Kind {
	case domrepo.EventSignal:
		if ev.Signal == nil || ev.Signal.ID == "" {
			return fmt.Errorf("signal payload invalid")
		}
	case domrepo.EventExecution:
		if ev.Execution == nil || ev.Execution.ID == "" {
			return fmt.Errorf("execution payload invalid")
		}
		if ev.Execution.OriginSignalRef == "" {
			return fmt.Errorf("execution missing origin ref")
		}
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}

func (p *IngestPipeline) allow(botID string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	last := p.lastSeen[botID]
	if last.IsZero() {
		p.lastSeen[botID] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[botID] = now
	return true
}
