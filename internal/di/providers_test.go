package di

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SigTrail/internal/domain/repository"
	applogger "SigTrail/pkg/logger"

	kafkago "github.com/segmentio/kafka-go"
)

type recordingMetrics struct {
	mu        sync.Mutex
	errors    map[string]int
	latencies map[string]int
}

var _ repository.Metrics = (*recordingMetrics)(nil)

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{errors: make(map[string]int), latencies: make(map[string]int)}
}

func (r *recordingMetrics) RecordEventStored(backend, botID string) {}

func (r *recordingMetrics) RecordError(kind string) {
	r.mu.Lock()
	r.errors[kind]++
	r.mu.Unlock()
}

func (r *recordingMetrics) RecordFetchCycle(outcome string, d time.Duration) {}
func (r *recordingMetrics) RecordSkippedTrigger()                            {}

func (r *recordingMetrics) RecordLatency(op string, seconds float64) {
	r.mu.Lock()
	r.latencies[op]++
	r.mu.Unlock()
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// The hook chain is built against the repository.Metrics port, so any
// implementation of it can observe consumer outcomes.
func TestConsumerHooksRecordOutcomes(t *testing.T) {
	rec := newRecordingMetrics()
	chain := consumerHooks(rec, testLogger(t))

	km := kafkago.Message{Headers: []kafkago.Header{{Key: "trace_id", Value: []byte("t-1")}}}
	ctx, km, data, err := chain.BeforeHandle(context.Background(), "alerts", km, []byte("payload"))
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if got := string(data); got != "payload" {
		t.Fatalf("payload mangled: %q", got)
	}
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("hooks must not impose a deadline")
	}

	chain.AfterHandle(ctx, "alerts", km, data, nil)
	if rec.latencies["kafka_consume"] != 1 {
		t.Fatalf("consume latency not recorded: %v", rec.latencies)
	}

	chain.OnError(ctx, "alerts", km, data, errors.New("handler failed"))
	if rec.errors["consume"] != 1 {
		t.Fatalf("consume error not recorded: %v", rec.errors)
	}
}
