package repository

import (
	"testing"
	"time"

	"SigTrail/internal/domain/models"

	"github.com/shopspring/decimal"
)

func TestAlertEventSignalRoundTrip(t *testing.T) {
	ms := int64(42)
	ev := &AlertEvent{
		Kind:  EventSignal,
		BotID: "BOT-1",
		Signal: &models.OriginSignal{
			ID:               "SIG-1",
			Action:           models.ActionEnterLong,
			Instrument:       "EURUSD",
			Timestamp:        time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
			OwnerID:          "USR-100",
			Status:           models.StatusProcessed,
			Amount:           decimal.RequireFromString("1250.50"),
			ProcessingTimeMs: &ms,
		},
	}
	b, err := EncodeAlertEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeAlertEvent(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != EventSignal || got.BotID != "BOT-1" || got.Signal == nil {
		t.Fatalf("envelope mangled: %+v", got)
	}
	s := got.Signal
	if s.ID != "SIG-1" || s.Action != models.ActionEnterLong || !s.Amount.Equal(ev.Signal.Amount) {
		t.Fatalf("signal mangled: %+v", s)
	}
	if !s.Timestamp.Equal(ev.Signal.Timestamp) {
		t.Fatalf("timestamp mangled: %v", s.Timestamp)
	}
	if s.ProcessingTimeMs == nil || *s.ProcessingTimeMs != 42 {
		t.Fatalf("processing time lost: %v", s.ProcessingTimeMs)
	}
}

func TestAlertEventExecutionRoundTrip(t *testing.T) {
	ev := &AlertEvent{
		Kind:  EventExecution,
		BotID: "BOT-1",
		Execution: &models.ExecutionRecord{
			ID:              "EXE-1",
			OriginSignalRef: "SIG-1",
			AccountID:       "ACC-7",
			OwnerID:         "USR-100",
			Outcome:         models.OutcomeFailed,
			Timestamp:       time.Date(2025, 6, 10, 9, 5, 0, 0, time.UTC),
			FailureReason:   "insufficient margin",
		},
	}
	b, err := EncodeAlertEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeAlertEvent(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	e := got.Execution
	if e == nil || e.OriginSignalRef != "SIG-1" || e.Outcome != models.OutcomeFailed || e.FailureReason != "insufficient margin" {
		t.Fatalf("execution mangled: %+v", e)
	}
}

func TestDecodeAlertEventBadAmount(t *testing.T) {
	raw := []byte(`{"kind":"signal","bot_id":"BOT-1","signal":{"id":"SIG-1","ts":1749546000,"amount":"not-a-number"}}`)
	got, err := DecodeAlertEvent(raw)
	if err != nil {
		t.Fatalf("bad amount must not fail decode: %v", err)
	}
	if !got.Signal.Amount.IsZero() {
		t.Fatalf("bad amount must degrade to zero, got %v", got.Signal.Amount)
	}
}

func TestDecodeAlertEventInvalidJSON(t *testing.T) {
	if _, err := DecodeAlertEvent([]byte("{nope")); err == nil {
		t.Fatalf("expected decode error")
	}
}
