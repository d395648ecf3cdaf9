package repository

import (
	"context"
	"time"

	"SigTrail/internal/domain/models"
)

// SignalSource is the opaque data source the tracking core queries. Both
// reads are independent and may be issued concurrently; results are snapshots
// owned by the caller.
type SignalSource interface {
	OriginSignals(ctx context.Context, botID string) ([]models.OriginSignal, error)
	ExecutionRecords(ctx context.Context, botID string) ([]models.ExecutionRecord, error)
}

// AccountDirectory resolves an account id to its display name, when known.
// Used only for search-by-name; a missing name never fails a filter.
type AccountDirectory interface {
	ResolveAccountName(ctx context.Context, accountID string) (string, bool)
}

// AlertStream delivers raw alert events (origin signals and execution
// reports) from the upstream gateway.
type AlertStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *AlertEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// AlertEventKind tags what an ingested event carries.
type AlertEventKind string

const (
	EventSignal    AlertEventKind = "signal"
	EventExecution AlertEventKind = "execution"
)

// AlertEvent is one ingested event. Exactly one of Signal/Execution is set,
// according to Kind.
type AlertEvent struct {
	Kind      AlertEventKind
	BotID     string
	Signal    *models.OriginSignal
	Execution *models.ExecutionRecord
}

// Publisher forwards alert events to the message backend.
type Publisher interface {
	Publish(ctx context.Context, ev *AlertEvent) error
	PublishBatch(ctx context.Context, evs []*AlertEvent) error
	Close() error
}

// Storage persists alert events and serves scope queries.
type Storage interface {
	SignalSource
	StoreSignal(ctx context.Context, botID string, s *models.OriginSignal) error
	StoreExecution(ctx context.Context, botID string, e *models.ExecutionRecord) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics is the telemetry port. Implemented by pkg/metrics on Prometheus.
type Metrics interface {
	RecordEventStored(backend, botID string)
	RecordError(kind string)
	RecordFetchCycle(outcome string, d time.Duration)
	RecordSkippedTrigger()
	RecordLatency(op string, seconds float64)
}
