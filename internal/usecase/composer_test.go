package usecase

import (
	"testing"

	"SigTrail/internal/domain/models"
)

func TestComposePartitionsByOutcome(t *testing.T) {
	origin := []models.OriginSignal{
		{ID: "SIG-1", Status: models.StatusProcessed},
		{ID: "SIG-2", Status: models.StatusPending},
	}
	execs := []models.ExecutionRecord{
		{ID: "EXE-1", OriginSignalRef: "SIG-1", Outcome: models.OutcomeSuccess},
		{ID: "EXE-2", OriginSignalRef: "SIG-1", Outcome: models.OutcomeFailed},
		{ID: "EXE-3", OriginSignalRef: "SIG-1", Outcome: models.OutcomeSuccess},
	}
	view := Compose(origin, execs, nil)
	if len(view.Signals) != 2 {
		t.Fatalf("expected 2 correlated signals, got %d", len(view.Signals))
	}
	first := view.Signals[0]
	if first.Signal.ID != "SIG-1" || len(first.Succeeded) != 2 || len(first.Failed) != 1 {
		t.Fatalf("bad partition: %+v", first)
	}
	second := view.Signals[1]
	if len(second.Succeeded) != 0 || len(second.Failed) != 0 {
		t.Fatalf("SIG-2 should have no executions: %+v", second)
	}
	if len(view.Orphaned) != 0 {
		t.Fatalf("no orphans expected, got %+v", view.Orphaned)
	}
}

func TestComposeOrphanedExecutions(t *testing.T) {
	origin := []models.OriginSignal{{ID: "SIG-1"}}
	execs := []models.ExecutionRecord{
		{ID: "EXE-1", OriginSignalRef: "SIG-1", Outcome: models.OutcomeSuccess},
		{ID: "EXE-2", OriginSignalRef: "SIG-404", Outcome: models.OutcomeSuccess},
	}
	view := Compose(origin, execs, testLogger())
	if len(view.Orphaned) != 1 || view.Orphaned[0].ID != "EXE-2" {
		t.Fatalf("expected EXE-2 orphaned, got %+v", view.Orphaned)
	}
	if len(view.Signals[0].Succeeded) != 1 {
		t.Fatalf("SIG-1 correlation lost: %+v", view.Signals[0])
	}
}

func TestComposePreservesOriginOrder(t *testing.T) {
	origin := []models.OriginSignal{{ID: "SIG-3"}, {ID: "SIG-1"}, {ID: "SIG-2"}}
	view := Compose(origin, nil, nil)
	for i, want := range []string{"SIG-3", "SIG-1", "SIG-2"} {
		if view.Signals[i].Signal.ID != want {
			t.Fatalf("order broken at %d: got %s want %s", i, view.Signals[i].Signal.ID, want)
		}
	}
}

func TestComposeEmptyInputs(t *testing.T) {
	view := Compose(nil, nil, nil)
	if len(view.Signals) != 0 || len(view.Orphaned) != 0 {
		t.Fatalf("empty inputs must compose to empty view: %+v", view)
	}
}
