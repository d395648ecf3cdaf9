package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SigTrail/internal/domain/models"
	"SigTrail/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// ClickHouseSignalStore implements Storage on ClickHouse: alert inserts plus
// the scope queries the tracking core reads from.
type ClickHouseSignalStore struct {
	db          *sql.DB
	signalTable string
	execTable   string
	queryLimit  int
}

// NewClickHouseSignalStore creates a ClickHouse-backed signal store.
// queryLimit caps how many recent rows a scope query returns.
func NewClickHouseSignalStore(db *sql.DB, signalTable, execTable string, queryLimit int) repository.Storage {
	if queryLimit <= 0 {
		queryLimit = 500
	}
	return &ClickHouseSignalStore{
		db:          db,
		signalTable: signalTable,
		execTable:   execTable,
		queryLimit:  queryLimit,
	}
}

func (s *ClickHouseSignalStore) StoreSignal(ctx context.Context, botID string, sig *models.OriginSignal) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (bot_id, id, action, instrument, ts, owner_id, status, amount, error_message, processing_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.signalTable)
	var procMs sql.NullInt64
	if sig.ProcessingTimeMs != nil {
		procMs = sql.NullInt64{Int64: *sig.ProcessingTimeMs, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, q,
		botID,
		sig.ID,
		string(sig.Action),
		sig.Instrument,
		sig.Timestamp,
		sig.OwnerID,
		string(sig.Status),
		sig.Amount.String(),
		sig.ErrorMessage,
		procMs,
	)
	return err
}

func (s *ClickHouseSignalStore) StoreExecution(ctx context.Context, botID string, e *models.ExecutionRecord) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (bot_id, id, origin_ref, account_id, owner_id, outcome, ts, failure_reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.execTable)
	_, err := s.db.ExecContext(ctx, q,
		botID,
		e.ID,
		e.OriginSignalRef,
		e.AccountID,
		e.OwnerID,
		string(e.Outcome),
		e.Timestamp,
		e.FailureReason,
	)
	return err
}

func (s *ClickHouseSignalStore) OriginSignals(ctx context.Context, botID string) ([]models.OriginSignal, error) {
	q := fmt.Sprintf(
		"SELECT id, action, instrument, ts, owner_id, status, amount, error_message, processing_ms FROM %s WHERE bot_id = ? ORDER BY ts DESC LIMIT ?",
		s.signalTable)
	rows, err := s.db.QueryContext(ctx, q, botID, s.queryLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OriginSignal
	for rows.Next() {
		var sig models.OriginSignal
		var action, status, amount string
		var ts time.Time
		var procMs sql.NullInt64
		if err := rows.Scan(&sig.ID, &action, &sig.Instrument, &ts, &sig.OwnerID, &status, &amount, &sig.ErrorMessage, &procMs); err != nil {
			return nil, err
		}
		sig.Action = models.SignalAction(action)
		sig.Status = models.SignalStatus(status)
		sig.Timestamp = ts
		if dec, err := decimal.NewFromString(amount); err == nil {
			sig.Amount = dec
		}
		if procMs.Valid {
			v := procMs.Int64
			sig.ProcessingTimeMs = &v
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStore) ExecutionRecords(ctx context.Context, botID string) ([]models.ExecutionRecord, error) {
	q := fmt.Sprintf(
		"SELECT id, origin_ref, account_id, owner_id, outcome, ts, failure_reason FROM %s WHERE bot_id = ? ORDER BY ts DESC LIMIT ?",
		s.execTable)
	rows, err := s.db.QueryContext(ctx, q, botID, s.queryLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ExecutionRecord
	for rows.Next() {
		var e models.ExecutionRecord
		var outcome string
		var ts time.Time
		if err := rows.Scan(&e.ID, &e.OriginSignalRef, &e.AccountID, &e.OwnerID, &outcome, &ts, &e.FailureReason); err != nil {
			return nil, err
		}
		e.Outcome = models.ExecutionOutcome(outcome)
		e.Timestamp = ts
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSignalStore) Close() error {
	return nil // pool is managed by pkg/clickhouse
}
