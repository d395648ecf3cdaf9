package usecase

import (
	"context"
	"time"

	domrepo "SigTrail/internal/domain/repository"
	pkgkafka "SigTrail/pkg/kafka"
)

// KafkaAlertsHandler consumes alert events from Kafka and writes them to
// storage.
type KafkaAlertsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaAlertsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaAlertsHandler {
	return &KafkaAlertsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaAlertsHandler) Topic() string { return h.topic }

func (h *KafkaAlertsHandler) Handle(ctx context.Context, b []byte) error {
	ev, err := domrepo.DecodeAlertEvent(b)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	switch ev.Kind {
	case domrepo.EventSignal:
		if ev.Signal == nil {
			h.metrics.RecordError("consumer_empty_payload")
			return nil
		}
		err = h.storage.StoreSignal(ctx, ev.BotID, ev.Signal)
		// E2E latency from signal time to landing (approx)
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ev.Signal.Timestamp).Seconds())
	case domrepo.EventExecution:
		if ev.Execution == nil {
			h.metrics.RecordError("consumer_empty_payload")
			return nil
		}
		err = h.storage.StoreExecution(ctx, ev.BotID, ev.Execution)
	default:
		h.metrics.RecordError("consumer_unknown_kind")
		return nil
	}
	h.metrics.RecordLatency("store_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordEventStored("clickhouse", ev.BotID)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaAlertsHandler)(nil)
