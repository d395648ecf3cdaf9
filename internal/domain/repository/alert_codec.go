package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"SigTrail/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Wire schema shared by the Kafka publisher and consumer handler. Timestamps
// travel as unix seconds; amounts as decimal strings.

type signalWire struct {
	ID           string `json:"id"`
	Action       string `json:"action"`
	Instrument   string `json:"instrument"`
	TS           int64  `json:"ts"`
	OwnerID      string `json:"owner_id"`
	Status       string `json:"status"`
	Amount       string `json:"amount"`
	ErrorMessage string `json:"error,omitempty"`
	ProcessingMs *int64 `json:"processing_ms,omitempty"`
}

type executionWire struct {
	ID            string `json:"id"`
	OriginRef     string `json:"origin_ref"`
	AccountID     string `json:"account_id"`
	OwnerID       string `json:"owner_id"`
	Outcome       string `json:"outcome"`
	TS            int64  `json:"ts"`
	FailureReason string `json:"failure_reason,omitempty"`
}

type eventWire struct {
	Kind      string         `json:"kind"`
	BotID     string         `json:"bot_id"`
	Signal    *signalWire    `json:"signal,omitempty"`
	Execution *executionWire `json:"execution,omitempty"`
}

// EncodeAlertEvent serializes an event for the alert topic.
func EncodeAlertEvent(ev *AlertEvent) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("alert event is nil")
	}
	w := eventWire{Kind: string(ev.Kind), BotID: ev.BotID}
	if ev.Signal != nil {
		s := ev.Signal
		w.Signal = &signalWire{
			ID:           s.ID,
			Action:       string(s.Action),
			Instrument:   s.Instrument,
			TS:           s.Timestamp.Unix(),
			OwnerID:      s.OwnerID,
			Status:       string(s.Status),
			Amount:       s.Amount.String(),
			ErrorMessage: s.ErrorMessage,
			ProcessingMs: s.ProcessingTimeMs,
		}
	}
	if ev.Execution != nil {
		e := ev.Execution
		w.Execution = &executionWire{
			ID:            e.ID,
			OriginRef:     e.OriginSignalRef,
			AccountID:     e.AccountID,
			OwnerID:       e.OwnerID,
			Outcome:       string(e.Outcome),
			TS:            e.Timestamp.Unix(),
			FailureReason: e.FailureReason,
		}
	}
	return json.Marshal(w)
}

// DecodeAlertEvent parses a message from the alert topic. Amounts that fail
// to parse degrade to zero rather than poisoning the batch.
func DecodeAlertEvent(b []byte) (*AlertEvent, error) {
	var w eventWire
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("decode alert event: %w", err)
	}
	ev := &AlertEvent{Kind: AlertEventKind(w.Kind), BotID: w.BotID}
	if w.Signal != nil {
		amount, err := decimal.NewFromString(w.Signal.Amount)
		if err != nil {
			amount = decimal.Zero
		}
		ev.Signal = &models.OriginSignal{
			ID:               w.Signal.ID,
			Action:           models.SignalAction(w.Signal.Action),
			Instrument:       w.Signal.Instrument,
			Timestamp:        time.Unix(w.Signal.TS, 0).UTC(),
			OwnerID:          w.Signal.OwnerID,
			Status:           models.SignalStatus(w.Signal.Status),
			Amount:           amount,
			ErrorMessage:     w.Signal.ErrorMessage,
			ProcessingTimeMs: w.Signal.ProcessingMs,
		}
	}
	if w.Execution != nil {
		ev.Execution = &models.ExecutionRecord{
			ID:              w.Execution.ID,
			OriginSignalRef: w.Execution.OriginRef,
			AccountID:       w.Execution.AccountID,
			OwnerID:         w.Execution.OwnerID,
			Outcome:         models.ExecutionOutcome(w.Execution.Outcome),
			Timestamp:       time.Unix(w.Execution.TS, 0).UTC(),
			FailureReason:   w.Execution.FailureReason,
		}
	}
	return ev, nil
}
