package usecase

import (
	"context"
	"fmt"
	"time"

	drepo "SigTrail/internal/domain/repository"
)

// AlertProcessor routes ingested alert events to the configured backend:
// either published to Kafka for the consumer to drain, or written straight
// to storage.
type AlertProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
}

func NewAlertProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
) *AlertProcessor {
	return &AlertProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single alert event.
func (p *AlertProcessor) Process(ctx context.Context, ev *drepo.AlertEvent) error {
	if ev == nil {
		return fmt.Errorf("alert event is nil")
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, ev)
	case "clickhouse":
		err = p.storeEvent(ctx, ev)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process alert: %w", err)
	}

	p.metrics.RecordEventStored(p.backend, ev.BotID)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple alert events at once.
func (p *AlertProcessor) ProcessBatch(ctx context.Context, evs []*drepo.AlertEvent) error {
	if len(evs) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, evs)
	case "clickhouse":
		for _, ev := range evs {
			if err = p.storeEvent(ctx, ev); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, ev := range evs {
		p.metrics.RecordEventStored(p.backend, ev.BotID)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

func (p *AlertProcessor) storeEvent(ctx context.Context, ev *drepo.AlertEvent) error {
	switch ev.Kind {
	case drepo.EventSignal:
		if ev.Signal == nil {
			return fmt.Errorf("signal event without payload")
		}
		return p.store.StoreSignal(ctx, ev.BotID, ev.Signal)
	case drepo.EventExecution:
		if ev.Execution == nil {
			return fmt.Errorf("execution event without payload")
		}
		return p.store.StoreExecution(ctx, ev.BotID, ev.Execution)
	default:
		return fmt.Errorf("unknown event kind: %s", ev.Kind)
	}
}

// Close closes underlying resources if available.
func (p *AlertProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
