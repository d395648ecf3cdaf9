package repository

import (
	"context"
	"fmt"

	"SigTrail/internal/domain/repository"
	pkgkafka "SigTrail/pkg/kafka"
)

// KafkaAlertPublisher implements Publisher on the alert topic. Events are
// keyed by bot id so per-bot ordering survives partitioning.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, ev *repository.AlertEvent) error {
	b, err := repository.EncodeAlertEvent(ev)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.BotID), b)
}

func (p *KafkaAlertPublisher) PublishBatch(ctx context.Context, evs []*repository.AlertEvent) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(evs))
	for _, ev := range evs {
		b, err := repository.EncodeAlertEvent(ev)
		if err != nil {
			return fmt.Errorf("encode alert: %w", err)
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(ev.BotID), Value: b})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
