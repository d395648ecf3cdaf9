package usecase

import (
	"context"

	drepo "SigTrail/internal/domain/repository"
	mid "SigTrail/internal/middleware"
)

// AlertCollector drains the upstream alert feed and hands events to the
// ingest pipeline (or straight to the processor when no pipeline is wired).
type AlertCollector struct {
	stream  drepo.AlertStream
	proc    *AlertProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

func NewAlertCollector(stream drepo.AlertStream, proc *AlertProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *AlertCollector {
	return &AlertCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected reports whether the feed connection is up.
func (c *AlertCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *AlertCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	evCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, evCh, errCh)
	return nil
}

func (c *AlertCollector) consume(ctx context.Context, evCh <-chan *drepo.AlertEvent, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case ev := <-evCh:
			if ev == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, ev)
			} else {
				_ = c.proc.Process(ctx, ev)
			}
		}
	}
}

// Processor returns the underlying AlertProcessor for lifecycle management.
func (c *AlertCollector) Processor() *AlertProcessor { return c.proc }

// Shutdown stops the pipeline and closes the feed.
func (c *AlertCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
