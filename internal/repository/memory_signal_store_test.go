package repository

import (
	"context"
	"testing"

	"SigTrail/internal/domain/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemorySignalStore()
	ctx := context.Background()

	sig := &models.OriginSignal{ID: "SIG-1", OwnerID: "USR-100", Status: models.StatusProcessed}
	if err := store.StoreSignal(ctx, "BOT-1", sig); err != nil {
		t.Fatalf("store signal: %v", err)
	}
	exe := &models.ExecutionRecord{ID: "EXE-1", OriginSignalRef: "SIG-1", OwnerID: "USR-100", Outcome: models.OutcomeSuccess}
	if err := store.StoreExecution(ctx, "BOT-1", exe); err != nil {
		t.Fatalf("store execution: %v", err)
	}

	signals, err := store.OriginSignals(ctx, "BOT-1")
	if err != nil {
		t.Fatalf("origin signals: %v", err)
	}
	if len(signals) != 1 || signals[0].ID != "SIG-1" {
		t.Fatalf("unexpected signals %+v", signals)
	}
	execs, err := store.ExecutionRecords(ctx, "BOT-1")
	if err != nil {
		t.Fatalf("execution records: %v", err)
	}
	if len(execs) != 1 || execs[0].ID != "EXE-1" {
		t.Fatalf("unexpected executions %+v", execs)
	}
}

func TestMemoryStoreScopedByBot(t *testing.T) {
	store := NewMemorySignalStore()
	ctx := context.Background()
	_ = store.StoreSignal(ctx, "BOT-1", &models.OriginSignal{ID: "SIG-1"})

	signals, err := store.OriginSignals(ctx, "BOT-2")
	if err != nil {
		t.Fatalf("origin signals: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("bot scoping broken: %+v", signals)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemorySignalStore()
	ctx := context.Background()
	_ = store.StoreSignal(ctx, "BOT-1", &models.OriginSignal{ID: "SIG-1"})

	first, _ := store.OriginSignals(ctx, "BOT-1")
	first[0].ID = "mutated"

	second, _ := store.OriginSignals(ctx, "BOT-1")
	if second[0].ID != "SIG-1" {
		t.Fatalf("reads must return copies, got %+v", second)
	}
}
